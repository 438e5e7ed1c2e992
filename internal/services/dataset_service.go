package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"taxicli/internal/dataprocessing"
	"taxicli/internal/validation"
	"taxicli/pkg/contracts/domain"
)

// DatasetSnapshot is one load of the enriched file
type DatasetSnapshot struct {
	Path       string                   `json:"path"`
	LoadedAt   time.Time                `json:"loaded_at"`
	ModTime    time.Time                `json:"mod_time"`
	Summary    domain.DatasetSummary    `json:"summary"`
	Checks     []validation.ColumnCheck `json:"checks"`
	Violations []string                 `json:"violations"`
}

// ValidationResult is the validator outcome served by the API
type ValidationResult struct {
	Path       string                   `json:"path"`
	Rows       int                      `json:"rows"`
	Valid      bool                     `json:"valid"`
	Violations []string                 `json:"violations"`
	Checks     []validation.ColumnCheck `json:"checks"`
	LoadedAt   time.Time                `json:"loaded_at"`
}

// DatasetService keeps the last good load of the enriched file in memory
type DatasetService struct {
	path       string
	summarizer *dataprocessing.Summarizer
	validator  *validation.CuratedValidator
	logger     *slog.Logger

	mu       sync.RWMutex
	snapshot *DatasetSnapshot
	lastErr  error

	// onReload is called after every reload attempt; tests hook it.
	onReload func(error)
}

// NewDatasetService creates a dataset service for the enriched file at path
func NewDatasetService(path string, summarizer *dataprocessing.Summarizer, validator *validation.CuratedValidator, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	if summarizer == nil {
		summarizer = dataprocessing.NewSummarizer(logger, dataprocessing.DefaultSummaryOptions())
	}
	if validator == nil {
		validator = validation.NewCuratedValidator(logger)
	}
	return &DatasetService{
		path:       path,
		summarizer: summarizer,
		validator:  validator,
		logger:     logger.With(slog.String("service", "dataset")),
	}
}

// Path returns the watched enriched file
func (s *DatasetService) Path() string {
	return s.path
}

// Reload reads the enriched file and replaces the cached snapshot. On
// failure the previous snapshot stays in place.
func (s *DatasetService) Reload(ctx context.Context) error {
	snapshot, err := s.load()

	s.mu.Lock()
	s.lastErr = err
	if err == nil {
		s.snapshot = snapshot
	}
	hook := s.onReload
	s.mu.Unlock()

	if err != nil {
		s.logger.WarnContext(ctx, "dataset reload failed",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
	} else {
		s.logger.InfoContext(ctx, "dataset loaded",
			slog.String("path", s.path),
			slog.Int("rows", snapshot.Summary.Rows),
			slog.Int("violations", len(snapshot.Violations)))
	}

	if hook != nil {
		hook(err)
	}
	return err
}

func (s *DatasetService) load() (*DatasetSnapshot, error) {
	df, err := dataprocessing.LoadEnrichedFile(s.path)
	if err != nil {
		return nil, err
	}

	summary, err := s.summarizer.SummarizeFrame(df)
	if err != nil {
		return nil, err
	}
	summary.Source = s.path

	checks := s.validator.Check(df)

	snapshot := &DatasetSnapshot{
		Path:       s.path,
		LoadedAt:   time.Now(),
		Summary:    summary,
		Checks:     checks,
		Violations: validation.Messages(checks),
	}
	if info, statErr := os.Stat(s.path); statErr == nil {
		snapshot.ModTime = info.ModTime()
	}
	return snapshot, nil
}

// Snapshot returns the cached snapshot, loading it on first use
func (s *DatasetService) Snapshot(ctx context.Context) (*DatasetSnapshot, error) {
	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()
	if snapshot != nil {
		return snapshot, nil
	}

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrDatasetNotLoaded
	}
	return s.snapshot, nil
}

// Summary returns the statistics of the enriched file
func (s *DatasetService) Summary(ctx context.Context) (domain.DatasetSummary, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return domain.DatasetSummary{}, err
	}
	return snapshot.Summary, nil
}

// Validation returns the validator outcome for the enriched file
func (s *DatasetService) Validation(ctx context.Context) (ValidationResult, error) {
	snapshot, err := s.Snapshot(ctx)
	if err != nil {
		return ValidationResult{}, err
	}
	return ValidationResult{
		Path:       snapshot.Path,
		Rows:       snapshot.Summary.Rows,
		Valid:      len(snapshot.Violations) == 0,
		Violations: snapshot.Violations,
		Checks:     snapshot.Checks,
		LoadedAt:   snapshot.LoadedAt,
	}, nil
}

// LastError returns the error of the most recent reload, nil after a
// successful one
func (s *DatasetService) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Loaded reports whether a snapshot is cached
func (s *DatasetService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil
}

// Watch reloads the dataset whenever the enriched file is written or
// created. The parent directory is watched so the file may appear after
// Watch starts. It runs until ctx is cancelled.
func (s *DatasetService) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "watching dataset for changes", slog.String("path", s.path))

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			_ = s.Reload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.ErrorContext(ctx, "dataset watcher error", slog.String("error", err.Error()))
		}
	}
}
