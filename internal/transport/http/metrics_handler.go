package http

import (
	"net/http"

	apierrors "taxicli/internal/errors"
)

// MetricsHandler exposes the Prometheus scrape endpoint
type MetricsHandler struct {
	exporter http.Handler
}

// NewMetricsHandler wraps the Prometheus handler. A nil exporter means
// metrics are disabled.
func NewMetricsHandler(exporter http.Handler) *MetricsHandler {
	return &MetricsHandler{exporter: exporter}
}

// GetMetrics handles GET /metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		apierrors.WriteError(w, apierrors.NewWithDetails(http.StatusServiceUnavailable,
			"SERVICE_UNAVAILABLE", "Metrics are disabled", "telemetry.metrics_enabled is false"))
		return
	}
	h.exporter.ServeHTTP(w, r)
}
