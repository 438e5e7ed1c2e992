package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"taxicli/internal/config"
	apierrors "taxicli/internal/errors"
	"taxicli/internal/dataprocessing"
	"taxicli/internal/infrastructure"
	customMiddleware "taxicli/internal/middleware"
	"taxicli/internal/report"
	"taxicli/internal/runstore"
	"taxicli/internal/services"
	handlers "taxicli/internal/transport/http"
	"taxicli/internal/validation"
)

// Application is the read-only web viewer of the enriched dataset
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.PipelineMetrics

	Dataset *services.DatasetService
	Runs    *services.RunService
	Health  *services.HealthService

	runStore     *runstore.Store
	errorHandler *apierrors.ErrorHandler
}

// NewApplication wires services, handlers and the HTTP server. providers may
// be nil, which disables tracing and the metrics endpoint.
func NewApplication(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Application, error) {
	if cfg == nil || paths == nil {
		return nil, apierrors.NewConfigError("configuration and paths are required", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		errorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	if providers != nil {
		metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
		a.Metrics = metrics
	}

	a.initializeServices(ctx)
	a.setupRouter()
	a.createServer()

	return a, nil
}

// initializeServices creates the dataset, run and health services. A run
// ledger that cannot be opened leaves /api/runs answering 503.
func (a *Application) initializeServices(ctx context.Context) {
	opts := dataprocessing.OptionsFromConfig(a.Config)
	summarizer := dataprocessing.NewSummarizer(a.Logger, opts.Summary)
	validator := validation.NewCuratedValidator(a.Logger)
	a.Dataset = services.NewDatasetService(a.Paths.EnrichedFile, summarizer, validator, a.Logger)

	store, err := runstore.Open(ctx, a.Paths.RunsDB)
	if err != nil {
		a.Logger.WarnContext(ctx, "run ledger unavailable",
			slog.String("path", a.Paths.RunsDB),
			slog.String("error", err.Error()))
		a.Runs = services.NewRunService(nil, a.Logger)
	} else {
		a.runStore = store
		a.Runs = services.NewRunService(store, a.Logger)
	}

	a.Health = services.NewHealthService(config.AppVersion, a.Dataset, a.Runs, a.Logger)
}

// setupRouter configures the HTTP router with all routes.
// Order: RequestID → OTel → Logger → Recoverer → SecurityHeaders → RateLimit → Timeout
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)

	otelMiddleware := customMiddleware.NewOTelMiddleware(nil, a.Metrics, a.Logger)
	if a.OTelProviders != nil {
		otelMiddleware = customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger)
	}
	r.Use(otelMiddleware.Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.errorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if rl := a.Config.Server.RateLimit; rl.Enabled {
		r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
	}

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	// Prometheus scrapes skip the request timeout
	var exporter http.Handler
	if a.OTelProviders != nil {
		exporter = a.OTelProviders.PrometheusHTTP
	}
	r.Get("/metrics", handlers.NewMetricsHandler(exporter).GetMetrics)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout))

		a.setupAPIRoutes(r)

		reportHandler := handlers.NewReportHandler(a.Dataset, report.NewRenderer(a.Logger),
			a.Config.Report.Author, a.Logger, a.errorHandler)
		r.Get("/report", reportHandler.ServeReport)
		r.Get("/", handlers.RedirectToReport)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.Health, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)

		r.Mount("/dataset", handlers.NewDatasetHandler(a.Dataset, a.Logger, a.errorHandler).Routes())
		r.Mount("/runs", handlers.NewRunsHandler(a.Runs, a.Logger, a.errorHandler).Routes())
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Run serves HTTP and watches the enriched file until ctx is cancelled,
// then shuts the server down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if err := a.Dataset.Reload(ctx); err != nil {
		a.Logger.WarnContext(ctx, "enriched dataset not loaded at startup",
			slog.String("path", a.Dataset.Path()),
			slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Starting web viewer",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("address", ln.Addr().String()),
		slog.String("dataset", a.Dataset.Path()))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Without the watcher the viewer keeps serving the startup snapshot
	g.Go(func() error {
		if err := a.Dataset.Watch(gctx); err != nil {
			a.Logger.ErrorContext(gctx, "dataset watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the server and releases the run ledger
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down web viewer")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if err := a.runStore.Close(); err != nil {
		errs = append(errs, fmt.Errorf("run ledger close error: %w", err))
	}

	a.Logger.InfoContext(ctx, "Web viewer shutdown complete")
	return errors.Join(errs...)
}
