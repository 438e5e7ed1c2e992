package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every resolved path the commands read or write.
// This is the single source of truth for file locations.
type Paths struct {
	BaseDir      string
	RawFile      string
	EnrichedFile string
	RunsDB       string
	PlotsDir     string
	ReportsDir   string
	LogsDir      string
}

// Resolve makes every configured path absolute. Relative entries are joined
// to BaseDir, which itself defaults to the working directory.
func (c PathsConfig) Resolve() (*Paths, error) {
	base := c.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %q: %w", c.BaseDir, err)
	}

	join := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:      base,
		RawFile:      join(c.RawFile),
		EnrichedFile: join(c.EnrichedFile),
		RunsDB:       join(c.RunsDB),
		PlotsDir:     join(c.PlotsDir),
		ReportsDir:   join(c.ReportsDir),
		LogsDir:      join(c.LogsDir),
	}, nil
}

// EnsureDirectories creates the output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(p.EnrichedFile),
		filepath.Dir(p.RunsDB),
		p.PlotsDir,
		p.ReportsDir,
		p.LogsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// PlotPath returns the path for a file in the plots directory
func (p *Paths) PlotPath(filename string) string {
	return filepath.Join(p.PlotsDir, filename)
}

// ReportPath returns the path for a file in the reports directory
func (p *Paths) ReportPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.ReportsDir, filename)
}

// LogPath returns the path for a log file
func (p *Paths) LogPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.BaseDir, filename)
}

// LogPathResolution logs the resolved paths at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		return
	}

	logger.Debug("Path resolution summary",
		slog.String("base", p.BaseDir),
		slog.Group("files",
			slog.String("raw", p.RawFile),
			slog.String("enriched", p.EnrichedFile),
			slog.String("runs_db", p.RunsDB),
		),
		slog.Group("directories",
			slog.String("plots", p.PlotsDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
