package cli

import (
	"context"
	"log/slog"

	"taxicli/internal/infrastructure"
	"taxicli/internal/runstore"
	"taxicli/pkg/contracts/domain"
)

// RecordRun appends run to the ledger at path. A ledger that cannot be
// opened or written only produces a warning so the command result stands.
func RecordRun(ctx context.Context, path string, run domain.RunRecord, logger *slog.Logger) (domain.RunRecord, bool) {
	logger = infrastructure.WithComponent(logger, "run_ledger")

	store, err := runstore.Open(ctx, path)
	if err != nil {
		infrastructure.WithError(logger, err).Warn("run ledger unavailable", slog.String("path", path))
		return run, false
	}
	defer store.Close()

	recorded, err := store.Record(ctx, run)
	if err != nil {
		infrastructure.WithError(logger, err).Warn("failed to record run", slog.String("run_command", run.Command))
		return run, false
	}

	logger.Debug("run recorded", slog.String("run_id", recorded.ID), slog.String("status", string(recorded.Status)))
	return recorded, true
}
