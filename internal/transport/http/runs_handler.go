package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "taxicli/internal/errors"
	"taxicli/internal/middleware"
	"taxicli/internal/runstore"
	"taxicli/internal/services"
	"taxicli/pkg/contracts/domain"
)

// RunsResponse is the body of GET /api/runs
type RunsResponse struct {
	Runs    []domain.RunRecord `json:"runs"`
	Count   int                `json:"count"`
	Command string             `json:"command,omitempty"`
	Limit   int                `json:"limit"`
}

// RunsHandler serves the run ledger
type RunsHandler struct {
	service      RunProvider
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	params       *middleware.QueryParamValidator
}

// NewRunsHandler creates a new runs handler
func NewRunsHandler(service RunProvider, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *RunsHandler {
	return &RunsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "runs_handler")),
		errorHandler: errorHandler,
		params:       middleware.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the run ledger routes
func (h *RunsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListRuns)
	r.Get("/{id}", h.GetRun)

	return r
}

// ListRuns handles GET /api/runs
func (h *RunsHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.params.ValidateInt(w, r, "limit", 1, services.MaxRunsLimit, runstore.DefaultListLimit)
	if !ok {
		return
	}
	command, ok := h.params.ValidateEnum(w, r, "command", domain.RunCommands, "")
	if !ok {
		return
	}

	runs, err := h.service.List(r.Context(), command, limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, runsError(err))
		return
	}

	render.JSON(w, r, RunsResponse{
		Runs:    runs,
		Count:   len(runs),
		Command: command,
		Limit:   limit,
	})
}

// GetRun handles GET /api/runs/{id}
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, runsError(err))
		return
	}

	render.JSON(w, r, run)
}

func runsError(err error) error {
	if errors.Is(err, services.ErrRunLedgerUnavailable) {
		return apierrors.NewWithDetails(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
			"Run ledger is not available", err.Error())
	}
	return err
}
