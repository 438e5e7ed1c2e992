package services

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "taxicli/internal/errors"
	"taxicli/internal/runstore"
	"taxicli/pkg/contracts/domain"
)

// MaxRunsLimit caps a single runs page
const MaxRunsLimit = 500

// RunLister is the part of the run ledger the service reads
type RunLister interface {
	List(ctx context.Context, command string, limit int) ([]domain.RunRecord, error)
	Get(ctx context.Context, id string) (domain.RunRecord, error)
}

// RunService serves the run ledger
type RunService struct {
	store  RunLister
	logger *slog.Logger
}

// NewRunService creates a run service. store may be nil when no ledger is
// available; every call then fails with ErrRunLedgerUnavailable.
func NewRunService(store RunLister, logger *slog.Logger) *RunService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunService{store: store, logger: logger.With(slog.String("service", "runs"))}
}

// List returns the most recent runs, optionally filtered by command
func (s *RunService) List(ctx context.Context, command string, limit int) ([]domain.RunRecord, error) {
	if s.store == nil {
		return nil, ErrRunLedgerUnavailable
	}
	if limit < 0 || limit > MaxRunsLimit {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("limit must be between 0 and %d", MaxRunsLimit)).
			WithContext("limit", limit)
	}
	if limit == 0 {
		limit = runstore.DefaultListLimit
	}

	runs, err := s.store.List(ctx, command, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list runs", slog.String("error", err.Error()))
		return nil, err
	}
	return runs, nil
}

// Get returns a single run
func (s *RunService) Get(ctx context.Context, id string) (domain.RunRecord, error) {
	if s.store == nil {
		return domain.RunRecord{}, ErrRunLedgerUnavailable
	}
	return s.store.Get(ctx, id)
}

// Available reports whether a ledger is configured
func (s *RunService) Available() bool {
	return s.store != nil
}
