package runstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taxicli/internal/errors"
	"taxicli/pkg/contracts/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndGet(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	started := time.Date(2025, 9, 15, 8, 0, 0, 0, time.UTC)
	saved, err := store.Record(ctx, domain.RunRecord{
		Command:    "curate",
		Input:      "data/nyc_taxi_raw.csv",
		Output:     "data/nyc_taxi_enriched.csv",
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		RowsIn:     8,
		RowsOut:    4,
		Dropped: map[domain.DropReason]int{
			domain.DropMissingField:        1,
			domain.DropNonPositiveDistance: 1,
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, domain.RunStatusSucceeded, saved.Status)

	got, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "curate", got.Command)
	assert.Equal(t, "data/nyc_taxi_enriched.csv", got.Output)
	assert.True(t, started.Equal(got.StartedAt))
	assert.Equal(t, 1500*time.Millisecond, got.Duration())
	assert.Equal(t, 8, got.RowsIn)
	assert.Equal(t, 4, got.RowsOut)
	assert.Equal(t, 1, got.Dropped[domain.DropMissingField])
	assert.Equal(t, domain.RunStatusSucceeded, got.Status)
	assert.Empty(t, got.Error)
}

func TestGetMissing(t *testing.T) {
	_, err := openTestStore(t).Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestListOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	base := time.Date(2025, 9, 15, 8, 0, 0, 0, time.UTC)
	runs := []domain.RunRecord{
		{Command: "curate", Input: "a.csv", StartedAt: base},
		{Command: "validate", Input: "b.csv", StartedAt: base.Add(time.Minute), Violations: 2},
		{Command: "curate", Input: "c.csv", StartedAt: base.Add(2 * time.Minute), Status: domain.RunStatusFailed, Error: "Input file c.csv not found."},
	}
	for _, r := range runs {
		_, err := store.Record(ctx, r)
		require.NoError(t, err)
	}

	all, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c.csv", "b.csv", "a.csv"}, []string{all[0].Input, all[1].Input, all[2].Input})
	assert.Equal(t, domain.RunStatusFailed, all[0].Status)
	assert.Equal(t, "Input file c.csv not found.", all[0].Error)
	assert.Equal(t, 2, all[1].Violations)
	assert.Nil(t, all[1].Dropped)

	curate, err := store.List(ctx, "curate", 0)
	require.NoError(t, err)
	assert.Len(t, curate, 2)

	limited, err := store.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "c.csv", limited[0].Input)
}

func TestOpenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	first, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = first.Record(ctx, domain.RunRecord{Command: "validate", Input: "x.csv"})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	runs, err := second.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, path, second.Path())
}

func TestListEmpty(t *testing.T) {
	runs, err := openTestStore(t).List(context.Background(), "", 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}
