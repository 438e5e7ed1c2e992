package http

import (
	"log/slog"
	"net/http"
	"time"

	apierrors "taxicli/internal/errors"
	"taxicli/internal/report"
)

// ReportHandler renders the HTML report of the cached dataset
type ReportHandler struct {
	dataset      DatasetProvider
	renderer     *report.Renderer
	author       string
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a report handler. An empty author falls back to
// the renderer default.
func NewReportHandler(dataset DatasetProvider, renderer *report.Renderer, author string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		dataset:      dataset,
		renderer:     renderer,
		author:       author,
		logger:       logger.With(slog.String("handler", "report")),
		errorHandler: errorHandler,
	}
}

// ServeReport handles GET /report
func (h *ReportHandler) ServeReport(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.dataset.Snapshot(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, datasetError(err))
		return
	}

	page, err := h.renderer.Render(report.Input{
		Summary:    snapshot.Summary,
		Violations: snapshot.Violations,
		Author:     h.author,
		Date:       snapshot.ModTime,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Last-Modified", snapshot.ModTime.UTC().Format(http.TimeFormat))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(page); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write report", slog.String("error", err.Error()))
		return
	}

	h.logger.DebugContext(r.Context(), "report served",
		slog.Int("bytes", len(page)),
		slog.Time("loaded_at", snapshot.LoadedAt),
		slog.Duration("age", time.Since(snapshot.LoadedAt)),
	)
}

// RedirectToReport redirects root requests to the report page
func RedirectToReport(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/report", http.StatusTemporaryRedirect)
}
