package exporter

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"

	"taxicli/internal/config"
	apperrors "taxicli/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance. Relative paths are
// resolved against paths.BaseDir; a nil paths leaves them untouched.
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger}
}

// StreamWriter provides streaming CSV writing for large datasets. Rows go
// to a temporary file next to the target, which replaces the target only
// when Close succeeds.
type StreamWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
	rows   int
	done   bool
}

// CreateStreamWriter creates a new streaming CSV writer with the header
// already written.
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string, bom bool) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	w.logger.Debug("Creating CSV stream writer",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("header_count", len(headers)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, apperrors.NewStorageError("failed to create directory", err).WithContext("path", fullPath)
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return nil, apperrors.NewStorageError("failed to create file", err).WithContext("path", fullPath)
	}

	s := &StreamWriter{
		path:   fullPath,
		file:   file,
		writer: csv.NewWriter(file),
	}

	if bom {
		if _, err := file.Write(utf8BOM); err != nil {
			s.Abort()
			return nil, apperrors.NewStorageError("failed to write BOM", err).WithContext("path", fullPath)
		}
	}

	if len(headers) > 0 {
		if err := s.writer.Write(headers); err != nil {
			s.Abort()
			return nil, apperrors.NewStorageError("failed to write headers", err).WithContext("path", fullPath)
		}
	}

	return s, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return apperrors.NewStorageError("failed to write record", err).WithContext("path", s.path)
	}
	s.rows++
	return nil
}

// Path returns the resolved file path
func (s *StreamWriter) Path() string {
	return s.path
}

// Rows returns the number of records written so far
func (s *StreamWriter) Rows() int {
	return s.rows
}

// Close flushes the stream and moves it into place. On failure the target
// is left as it was.
func (s *StreamWriter) Close() error {
	if s.done {
		return nil
	}
	s.done = true

	tmp := s.file.Name()
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		_ = s.file.Close()
		_ = os.Remove(tmp)
		return apperrors.NewStorageError("failed to flush csv", err).WithContext("path", s.path)
	}
	if err := s.file.Close(); err != nil {
		_ = os.Remove(tmp)
		return apperrors.NewStorageError("failed to close csv", err).WithContext("path", s.path)
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		_ = os.Remove(tmp)
		return apperrors.NewStorageError("failed to set file mode", err).WithContext("path", s.path)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return apperrors.NewStorageError("failed to move csv into place", err).WithContext("path", s.path)
	}
	return nil
}

// Abort discards everything written so far
func (s *StreamWriter) Abort() {
	if s.done {
		return
	}
	s.done = true
	_ = s.file.Close()
	_ = os.Remove(s.file.Name())
}

// resolvePath resolves a relative path against the base directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil || w.paths.BaseDir == "" {
		return filePath
	}
	return filepath.Join(w.paths.BaseDir, filePath)
}
