package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "taxicli/internal/errors"
)

// DatasetHandler serves statistics and validation of the enriched dataset
type DatasetHandler struct {
	service      DatasetProvider
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service DatasetProvider, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/summary", h.GetSummary)
	r.Get("/validation", h.GetValidation)

	return r
}

// GetSummary handles GET /api/dataset/summary
func (h *DatasetHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, datasetError(err))
		return
	}
	render.JSON(w, r, summary)
}

// GetValidation handles GET /api/dataset/validation
func (h *DatasetHandler) GetValidation(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Validation(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, datasetError(err))
		return
	}

	h.logger.DebugContext(r.Context(), "validation served",
		slog.Int("rows", result.Rows),
		slog.Int("violations", len(result.Violations)),
	)
	render.JSON(w, r, result)
}

// datasetError reports load failures of the enriched file as 503: the
// server is fine, the file is missing or broken until the next write.
func datasetError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return apierrors.DatasetUnavailableError(err)
}
