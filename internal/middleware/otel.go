package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"taxicli/internal/infrastructure"
)

// OTelMiddleware traces HTTP requests and records request metrics
type OTelMiddleware struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
	logger  *slog.Logger
}

// NewOTelMiddleware creates the middleware. A nil tracer or metrics set
// disables that half of the instrumentation.
func NewOTelMiddleware(tracer trace.Tracer, metrics *infrastructure.PipelineMetrics, logger *slog.Logger) *OTelMiddleware {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OTelMiddleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "otel_middleware")),
	}
}

// Handler returns the middleware handler function
func (m *OTelMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := m.tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.URLPathKey.String(r.URL.Path),
				semconv.ServerAddressKey.String(r.Host),
				semconv.UserAgentOriginalKey.String(r.UserAgent()),
				semconv.ClientAddressKey.String(RealIP(r)),
			),
		)
		defer span.End()

		if sc := span.SpanContext(); sc.IsValid() {
			ctx = infrastructure.WithTraceID(ctx, sc.TraceID().String())
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		duration := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		// The route pattern is only known once chi has matched the request
		route := routePattern(r)
		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			semconv.HTTPRouteKey.String(route),
			semconv.HTTPResponseStatusCodeKey.Int(status),
			semconv.HTTPResponseBodySizeKey.Int(ww.BytesWritten()),
			attribute.Float64("http.request.duration", duration.Seconds()),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		m.metrics.RecordHTTPRequest(ctx, r.Method, route, status, duration)

		m.logger.DebugContext(ctx, "request traced",
			slog.String("method", r.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("duration", duration),
		)
	})
}

// routePattern returns the matched chi pattern, or the raw path for
// unmatched requests.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
