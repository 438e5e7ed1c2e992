package http

import (
	"context"

	"taxicli/internal/services"
	"taxicli/pkg/contracts/domain"
)

// DatasetProvider serves the cached enriched dataset
type DatasetProvider interface {
	Snapshot(ctx context.Context) (*services.DatasetSnapshot, error)
	Summary(ctx context.Context) (domain.DatasetSummary, error)
	Validation(ctx context.Context) (services.ValidationResult, error)
}

// RunProvider serves the run ledger
type RunProvider interface {
	List(ctx context.Context, command string, limit int) ([]domain.RunRecord, error)
	Get(ctx context.Context, id string) (domain.RunRecord, error)
}
