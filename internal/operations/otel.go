package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"taxicli/internal/infrastructure"
)

const (
	TracerName = "taxicli.operation"
)

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs.
// A nil *OperationTracer is valid and records nothing.
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer backed by the given providers
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	if providers == nil {
		return &OperationTracer{tracer: otel.Tracer(TracerName)}, nil
	}

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	return &OperationTracer{
		tracer:  providers.Tracer,
		metrics: metrics,
	}, nil
}

// Metrics returns the pipeline metrics, nil when none are recorded
func (pt *OperationTracer) Metrics() *infrastructure.PipelineMetrics {
	if pt == nil {
		return nil
	}
	return pt.metrics
}

// TraceOperationExecution creates a span for the entire pipeline execution
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, req OperationRequest) (context.Context, trace.Span) {
	if pt == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return pt.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", req.ID),
			attribute.String("operation.input", req.Input),
			attribute.String("operation.output", req.Output),
		),
	)
}

// TraceStageExecution creates a span for individual Step execution
func (pt *OperationTracer) TraceStageExecution(ctx context.Context, operationID, stageID string) (context.Context, trace.Span) {
	if pt == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return pt.tracer.Start(ctx, "operation.step."+stageID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", stageID),
		),
	)
}

// RecordStageCompletion records step metrics and closes out its span
func (pt *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stageID string, rows int, duration time.Duration, err error) {
	if pt == nil {
		return
	}

	success := err == nil
	pt.metrics.RecordStage(ctx, stageID, rows, duration, success)

	span.SetAttributes(
		attribute.Int("step.rows", rows),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	)
	if success {
		span.SetStatus(codes.Ok, "step completed")
		return
	}
	span.RecordError(err, trace.WithAttributes(attribute.String("step.id", stageID)))
	span.SetStatus(codes.Error, err.Error())
}

// RecordOperationCompletion records the final pipeline outcome on its span
// together with the dropped-row and violation counters.
func (pt *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, state *OperationState) {
	if pt == nil {
		return
	}

	stats := state.Stats()
	dropped := make(map[string]int, len(stats.Dropped))
	for reason, n := range stats.Dropped {
		dropped[string(reason)] = n
	}
	pt.metrics.RecordDropped(ctx, dropped)
	for _, check := range state.Checks() {
		pt.metrics.RecordViolations(ctx, check.Column, check.Violations)
	}

	span.SetAttributes(
		attribute.String("operation.status", string(state.GetStatus())),
		attribute.Int("operation.rows_read", stats.RowsRead),
		attribute.Int("operation.rows_kept", stats.RowsKept),
		attribute.Int("operation.violations", len(state.Violations())),
	)
	if err := state.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "operation completed")
}
