package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxicli/internal/shared/testutil"
)

func TestHealthCheck(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	tests := []struct {
		name          string
		dataset       func(t *testing.T) *DatasetService
		runs          *RunService
		wantDataset   string
		wantRuns      string
		wantReadiness string
	}{
		{
			name:          "nothing configured",
			dataset:       func(*testing.T) *DatasetService { return nil },
			wantDataset:   "unavailable",
			wantRuns:      "unavailable",
			wantReadiness: "not_ready",
		},
		{
			name: "dataset missing",
			dataset: func(t *testing.T) *DatasetService {
				svc := newTestDatasetService(t, filepath.Join(dir, "absent.csv"))
				_ = svc.Reload(ctx)
				return svc
			},
			runs:          NewRunService(stubLister{}, nil),
			wantDataset:   "unavailable",
			wantRuns:      "ready",
			wantReadiness: "not_ready",
		},
		{
			name: "dataset loaded",
			dataset: func(t *testing.T) *DatasetService {
				path := testutil.WriteFile(t, t.TempDir(), "enriched.csv", validEnriched())
				svc := newTestDatasetService(t, path)
				require.NoError(t, svc.Reload(ctx))
				return svc
			},
			wantDataset:   "ready",
			wantRuns:      "unavailable",
			wantReadiness: "ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hs := NewHealthService("1.2.3", tt.dataset(t), tt.runs, nil)

			status := hs.HealthCheck(ctx)
			assert.Equal(t, "ok", status.Status)
			assert.Equal(t, "1.2.3", status.Version)
			assert.Equal(t, tt.wantDataset, status.Services["dataset"].Status)
			assert.Equal(t, tt.wantRuns, status.Services["runs"].Status)
			assert.Contains(t, status.Runtime, "go_version")

			assert.Equal(t, tt.wantReadiness, hs.ReadinessCheck(ctx).Status)
		})
	}
}
