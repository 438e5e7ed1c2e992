package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"taxicli/internal/config"
)

const (
	MeterName = "taxicli"
)

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	TraceExporter  string // "stdout", "none"
	EnableMetrics  bool
	SampleRatio    float64
}

// OTelConfigFrom maps the telemetry section of the application config
func OTelConfigFrom(cfg config.TelemetryConfig) *OTelConfig {
	return &OTelConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: config.AppVersion,
		TraceExporter:  cfg.TracesExporter,
		EnableMetrics:  cfg.MetricsEnabled,
		SampleRatio:    1.0,
	}
}

// OTelProviders holds the OpenTelemetry providers. Tracer and Meter are
// always usable; they are no-ops when the matching signal is disabled.
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Logger         *slog.Logger
}

// InitializeOTel initializes tracing and metrics
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if cfg == nil {
		cfg = OTelConfigFrom(config.Default().Telemetry)
	}
	if logger == nil {
		logger = GetLogger()
	}

	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		attribute.String("service.instance.id", generateInstanceID()),
	)

	providers := &OTelProviders{
		Logger: logger,
		Tracer: otel.GetTracerProvider().Tracer(MeterName),
		Meter:  noop.NewMeterProvider().Meter(MeterName),
	}

	if err := initializeTracing(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if cfg.EnableMetrics {
		if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.DebugContext(ctx, "OpenTelemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	return providers, nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	var exporter sdktrace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case "stdout":
		exporter, err = stdouttrace.New(
			stdouttrace.WithWriter(os.Stderr),
			stdouttrace.WithPrettyPrint(),
		)
	case "none", "":
		return nil
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetTracerProvider(tp)

	return nil
}

// initializeMetrics sets up the Prometheus-backed meter. Each provider gets
// its own registry so repeated initialization never collides.
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))
	otel.SetMeterProvider(mp)

	return nil
}

// PipelineMetrics holds the application metrics
type PipelineMetrics struct {
	RowsTotal     metric.Int64Counter
	RowsDropped   metric.Int64Counter
	StageDuration metric.Float64Histogram
	Violations    metric.Int64Counter

	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

// CreatePipelineMetrics creates the application metrics on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsTotal, err := meter.Int64Counter(
		"pipeline_rows_total",
		metric.WithDescription("Rows emitted by each pipeline stage"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"pipeline_rows_dropped_total",
		metric.WithDescription("Rows rejected by the cleaner, by reason"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"pipeline_stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	violations, err := meter.Int64Counter(
		"curated_violations_total",
		metric.WithDescription("Rows violating a derived column bound, by column"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsTotal:           rowsTotal,
		RowsDropped:         rowsDropped,
		StageDuration:       stageDuration,
		Violations:          violations,
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
	}, nil
}

// RecordStage records row count and duration for one pipeline stage
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage string, rows int, duration time.Duration, success bool) {
	if m == nil {
		return
	}

	stageAttr := attribute.String("stage", stage)
	status := "success"
	if !success {
		status = "failure"
	}

	if success {
		m.RowsTotal.Add(ctx, int64(rows), metric.WithAttributes(stageAttr))
	}
	m.StageDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(stageAttr, attribute.String("status", status)))
}

// RecordDropped records rows dropped for each cleaning reason
func (m *PipelineMetrics) RecordDropped(ctx context.Context, dropped map[string]int) {
	if m == nil {
		return
	}
	for reason, n := range dropped {
		if n == 0 {
			continue
		}
		m.RowsDropped.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
	}
}

// RecordViolations records validator findings for one column
func (m *PipelineMetrics) RecordViolations(ctx context.Context, column string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.Violations.Add(ctx, int64(n), metric.WithAttributes(attribute.String("column", column)))
}

// RecordHTTPRequest records one served HTTP request
func (m *PipelineMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// Shutdown gracefully shuts down OpenTelemetry providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
}
