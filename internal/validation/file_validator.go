package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "taxicli/internal/errors"
)

// FileValidator checks input and output paths before a command touches them
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks that path exists, is a regular file and is readable.
// A missing file is a NOT_FOUND error naming the path.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return apperrors.NewNotFoundError("file "+path).WithContext("path", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}

	// Check if file is readable by opening it
	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateCSVFile checks that path is a readable .csv or .txt file
func (v *FileValidator) ValidateCSVFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	return v.checkExtension(path, ".csv", ".txt")
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateOutputFile prepares the parent directory of path and checks the
// extension when any are given. An existing directory at path is rejected.
func (v *FileValidator) ValidateOutputFile(path string, extensions ...string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path))
	}
	if len(extensions) > 0 {
		if err := v.checkExtension(path, extensions...); err != nil {
			return err
		}
	}
	return v.ValidateOutputDirectory(filepath.Dir(path))
}

func (v *FileValidator) checkExtension(path string, allowed ...string) error {
	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	v.logger.Error("Unexpected file extension",
		slog.String("file", path),
		slog.String("extension", ext))
	return apperrors.NewAppValidationError(
		fmt.Sprintf("file %s must have extension %s (got %q)", path, strings.Join(allowed, " or "), ext))
}
