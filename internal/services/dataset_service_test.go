package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taxicli/internal/errors"
	"taxicli/internal/shared/testutil"
)

const enrichedHeader = "trip_distance,trip_duration,trip_speed_mph,tip_percentage,is_peak_hour,trip_type"

func validEnriched() string {
	return testutil.RawCSV(enrichedHeader,
		"10,600,60,25,1,short",
		"2,1200,6,10,0,medium",
		"30,2700,40,0,1,long",
	)
}

func newTestDatasetService(t *testing.T, path string) *DatasetService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	return NewDatasetService(path, nil, nil, logger)
}

func TestDatasetServiceSummaryAndValidation(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "enriched.csv", validEnriched())
	svc := newTestDatasetService(t, path)
	ctx := context.Background()

	assert.False(t, svc.Loaded())

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, path, summary.Source)
	assert.True(t, svc.Loaded())

	result, err := svc.Validation(ctx)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, 3, result.Rows)
	assert.Empty(t, result.Violations)
	assert.NotNil(t, result.Violations)
	assert.Len(t, result.Checks, 4)
}

func TestDatasetServiceReportsViolations(t *testing.T) {
	content := testutil.RawCSV(enrichedHeader,
		"10,600,150,25,1,short",
		"2,1200,6,10,2,medium",
	)
	path := testutil.WriteFile(t, t.TempDir(), "enriched.csv", content)

	result, err := newTestDatasetService(t, path).Validation(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, []string{
		"Unrealistic speeds found: 1 records",
		"Invalid peak hour indicators: 1 records",
	}, result.Violations)
}

func TestDatasetServiceMissingFile(t *testing.T) {
	svc := newTestDatasetService(t, filepath.Join(t.TempDir(), "absent.csv"))

	_, err := svc.Summary(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	assert.False(t, svc.Loaded())
	assert.Equal(t, err, svc.LastError())
}

func TestDatasetServiceKeepsLastGoodSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "enriched.csv", validEnriched())
	svc := newTestDatasetService(t, path)
	ctx := context.Background()

	require.NoError(t, svc.Reload(ctx))

	require.NoError(t, os.WriteFile(path, []byte("trip_type\n"), 0644))
	require.Error(t, svc.Reload(ctx))

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Rows)
	assert.Error(t, svc.LastError())
}

func TestDatasetServiceWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "enriched.csv")
	svc := newTestDatasetService(t, path)

	reloaded := make(chan error, 16)
	svc.onReload = func(err error) { reloaded <- err }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Watch(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(validEnriched()), 0644))

	deadline := time.After(5 * time.Second)
	for !svc.Loaded() {
		select {
		case <-reloaded:
		case <-deadline:
			t.Fatal("dataset was not reloaded after the file was written")
		}
	}

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Rows)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
