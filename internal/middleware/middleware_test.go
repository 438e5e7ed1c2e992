package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "taxicli/internal/errors"
	"taxicli/internal/infrastructure"
	"taxicli/internal/shared/testutil"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetReqID(r.Context())
		assert.Equal(t, seen, infrastructure.GetTraceID(r.Context()))
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	})
}

func TestStructuredLogger(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)

	h := RequestID(StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.True(t, handler.ContainsMessage("request completed"))
}

func TestRecoverer(t *testing.T) {
	errorHandler := apierrors.NewErrorHandler(nil, false)
	h := RequestID(Recoverer(errorHandler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apierrors.TypeInternal, body["type"])
	assert.Equal(t, rec.Header().Get(RequestIDHeader), body["trace_id"])
}

func TestRateLimiter(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	// A near-zero refill rate makes the burst the whole budget.
	rl := NewRateLimiter(0.0001, 2, logger)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			assert.Contains(t, rec.Body.String(), apierrors.TypeRateLimit)
		}
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestTimeout(t *testing.T) {
	t.Run("sets deadline", func(t *testing.T) {
		var hasDeadline bool
		h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasDeadline = r.Context().Deadline()
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.True(t, hasDeadline)
	})

	t.Run("expired deadline reaches handler", func(t *testing.T) {
		errorHandler := apierrors.NewErrorHandler(nil, false)
		h := Timeout(time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
			errorHandler.HandleError(w, r, r.Context().Err())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	})

	t.Run("zero disables", func(t *testing.T) {
		var hasDeadline bool
		h := Timeout(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hasDeadline = r.Context().Deadline()
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.False(t, hasDeadline)
	})
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr", remote: "10.0.0.1:5555", want: "10.0.0.1"},
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.2"}, remote: "10.0.0.1:5555", want: "1.2.3.4"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "5.6.7.8"}, remote: "10.0.0.1:5555", want: "5.6.7.8"},
		{name: "no port", remote: "pipe", want: "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, RealIP(req))
		})
	}
}

func TestOTelMiddleware_RecordsRoutePattern(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceName:    "taxicli-test",
		ServiceVersion: "test",
		TraceExporter:  "none",
		EnableMetrics:  true,
		SampleRatio:    1,
	}, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(NewOTelMiddleware(providers.Tracer, metrics, nil).Handler)
	r.Get("/api/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	scrape := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(scrape.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, "http_requests_total")
	assert.Contains(t, out, `route="/api/runs/{id}"`)
	assert.NotContains(t, out, `route="/api/runs/42"`)
}

func TestOTelMiddleware_NilInstrumentation(t *testing.T) {
	h := NewOTelMiddleware(nil, nil, nil).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unrouted", nil))
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
