package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxicli/internal/config"
	apierrors "taxicli/internal/errors"
	"taxicli/internal/infrastructure"
	"taxicli/internal/shared/testutil"
	"taxicli/pkg/contracts/domain"
)

const enrichedCSV = `trip_distance,trip_duration,trip_speed_mph,tip_percentage,is_peak_hour,trip_type
10,600,60,25,1,short
2,1200,6,10,0,medium
30,2700,40,0,1,long
`

type testApp struct {
	*Application
	paths *config.Paths
}

func newTestApp(t *testing.T, withDataset bool, providers *infrastructure.OTelProviders) *testApp {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	paths, err := cfg.Paths.Resolve()
	require.NoError(t, err)

	if withDataset {
		testutil.WriteFile(t, paths.BaseDir, "data/nyc_taxi_enriched.csv", enrichedCSV)
	}

	logger, _ := testutil.NewTestLogger(t)
	a, err := NewApplication(context.Background(), cfg, paths, logger, providers)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.runStore.Close() })

	return &testApp{Application: a, paths: paths}
}

func (a *testApp) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestNewApplicationRequiresConfig(t *testing.T) {
	_, err := NewApplication(context.Background(), nil, nil, nil, nil)
	require.Error(t, err)
	assert.True(t, apierrors.IsType(err, apierrors.ErrTypeConfig))
}

func TestHealthEndpoints(t *testing.T) {
	a := newTestApp(t, false, nil)

	rec := a.get(t, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, config.AppVersion, body["version"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	svcs := body["services"].(map[string]interface{})
	assert.Equal(t, "unavailable", svcs["dataset"].(map[string]interface{})["status"])
	assert.Equal(t, "ready", svcs["runs"].(map[string]interface{})["status"])

	rec = a.get(t, "/api/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", decode(t, rec)["status"])
}

func TestDatasetEndpoints(t *testing.T) {
	a := newTestApp(t, true, nil)

	rec := a.get(t, "/api/dataset/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), decode(t, rec)["rows"])

	rec = a.get(t, "/api/dataset/validation")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["valid"])
	assert.Empty(t, body["violations"])

	rec = a.get(t, "/api/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDatasetUnavailable(t *testing.T) {
	a := newTestApp(t, false, nil)

	for _, target := range []string{"/api/dataset/summary", "/api/dataset/validation", "/report"} {
		t.Run(target, func(t *testing.T) {
			rec := a.get(t, target)
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, apierrors.TypeServiceDown, body["type"])
			assert.Equal(t, "DATASET_UNAVAILABLE", body["error_code"])
		})
	}
}

func TestRunsEndpoints(t *testing.T) {
	a := newTestApp(t, false, nil)
	ctx := context.Background()

	curate, err := a.runStore.Record(ctx, domain.RunRecord{
		Command: domain.CommandCurate, Input: "raw.csv", Output: "enriched.csv", RowsIn: 8, RowsOut: 4,
	})
	require.NoError(t, err)
	_, err = a.runStore.Record(ctx, domain.RunRecord{Command: domain.CommandValidate, Input: "enriched.csv"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCount  int
	}{
		{name: "all", target: "/api/runs", wantStatus: http.StatusOK, wantCount: 2},
		{name: "filtered", target: "/api/runs?command=curate", wantStatus: http.StatusOK, wantCount: 1},
		{name: "limited", target: "/api/runs?limit=1", wantStatus: http.StatusOK, wantCount: 1},
		{name: "bad limit", target: "/api/runs?limit=abc", wantStatus: http.StatusBadRequest},
		{name: "limit too large", target: "/api/runs?limit=100000", wantStatus: http.StatusBadRequest},
		{name: "bad command", target: "/api/runs?command=scrape", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.get(t, tt.target)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			body := decode(t, rec)
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, apierrors.TypeValidation, body["type"])
				return
			}
			assert.Equal(t, float64(tt.wantCount), body["count"])
		})
	}

	t.Run("by id", func(t *testing.T) {
		rec := a.get(t, "/api/runs/"+curate.ID)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, curate.ID, body["id"])
		assert.Equal(t, float64(4), body["rows_out"])
	})

	t.Run("missing id", func(t *testing.T) {
		rec := a.get(t, "/api/runs/does-not-exist")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestReportEndpoint(t *testing.T) {
	a := newTestApp(t, true, nil)

	rec := a.get(t, "/report")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<svg")
	assert.Contains(t, rec.Body.String(), config.DefaultReportAuthor)

	root := a.get(t, "/")
	assert.Equal(t, http.StatusTemporaryRedirect, root.Code)
	assert.Equal(t, "/report", root.Header().Get("Location"))
}

func TestMetricsEndpoint(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		a := newTestApp(t, false, nil)
		rec := a.get(t, "/metrics")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("enabled", func(t *testing.T) {
		providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
			ServiceName: "taxicli-test", ServiceVersion: "test", TraceExporter: "none", EnableMetrics: true, SampleRatio: 1,
		}, nil)
		require.NoError(t, err)
		defer providers.Shutdown(context.Background())

		a := newTestApp(t, false, providers)
		require.Equal(t, http.StatusOK, a.get(t, "/api/health").Code)

		rec := a.get(t, "/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `route="/api/health"`)
	})
}

func TestUnknownRoute(t *testing.T) {
	a := newTestApp(t, false, nil)

	rec := a.get(t, "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apierrors.TypeNotFound, decode(t, rec)["type"])
}

func TestServeShutsDownOnCancel(t *testing.T) {
	a := newTestApp(t, true, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	url := fmt.Sprintf("http://%s/api/health/ready", ln.Addr().String())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
