package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Manager orchestrates pipeline execution
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a new operation manager. A nil tracer disables
// instrumentation.
func NewManager(registry *Registry, config *Config, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		registry: registry,
		config:   config,
		tracer:   tracer,
		logger:   logger.With(slog.String("component", "operations")),
	}
}

// Execute runs every registered step in order. The first failing step
// fails the operation and the steps after it are skipped. The response is
// always returned, also on error.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, req)
	defer span.End()

	state := NewOperationState(req)
	steps := m.registry.List()
	for _, step := range steps {
		state.AddStage(NewStepState(step.ID(), step.Name()))
	}

	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", req.ID),
		slog.String("input", req.Input),
		slog.String("output", req.Output),
		slog.Int("step_count", len(steps)))

	state.Start()
	err := m.executeSequential(ctx, state, steps)

	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	m.tracer.RecordOperationCompletion(ctx, span, state)

	if err != nil {
		m.logger.ErrorContext(ctx, "operation_error",
			slog.String("operation_id", req.ID),
			slog.String("step", FailedStep(err)),
			slog.String("error", err.Error()))
	} else {
		m.logger.InfoContext(ctx, "operation_complete",
			slog.String("operation_id", req.ID),
			slog.Duration("duration", state.Duration()),
			slog.Int("violations", len(state.Violations())))
	}

	return m.createResponse(state), err
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err := NewCancellationError(step.ID(), ctxErr)
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return err
		}

		if err := m.executeStage(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("Previous step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStage runs one step, under its deadline when one is configured.
// A step that returns without error has completed, however long it took.
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewFatalError(fmt.Sprintf("state for step %s not found", step.ID()), nil)
	}

	if err := step.Validate(state); err != nil {
		vErr := NewValidationError(step.ID(), err.Error())
		stepState.Fail(vErr)
		return vErr
	}

	stageCtx := ctx
	timeout := m.config.GetStageTimeout(step.ID())
	if timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	stageCtx, span := m.tracer.TraceStageExecution(stageCtx, state.ID, step.ID())
	defer span.End()

	m.logger.InfoContext(stageCtx, "stage_started",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()))

	stepState.Start()
	start := time.Now()
	err := step.Execute(stageCtx, state)
	duration := time.Since(start)

	if err != nil {
		err = m.wrapStageError(ctx, step.ID(), timeout, err)
		stepState.Fail(err)
		m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), 0, duration, err)
		m.logger.ErrorContext(stageCtx, "stage_failed",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return err
	}

	// Steps that did not report their own outcome count the current records.
	if stepState.GetStatus() == StepStatusActive {
		stepState.Complete(len(state.Records()), "")
	}
	summary := stepState.Summary()
	m.tracer.RecordStageCompletion(stageCtx, span, step.ID(), summary.Rows, duration, nil)

	m.logger.InfoContext(stageCtx, "stage_completed",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()),
		slog.Int("rows", summary.Rows),
		slog.Duration("duration", duration))
	return nil
}

func (m *Manager) wrapStageError(ctx context.Context, stepID string, timeout time.Duration, err error) error {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		if opErr.Step == "" {
			opErr.Step = stepID
		}
		return opErr
	}
	if ctx.Err() != nil {
		return NewCancellationError(stepID, err)
	}
	if timeout > 0 && errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(stepID, timeout.String())
	}
	return NewExecutionError(stepID, err)
}

// skipRemaining marks the given steps as skipped
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if stepState := state.GetStage(step.ID()); stepState != nil && stepState.GetStatus() == StepStatusPending {
			stepState.Skip(reason)
		}
	}
}

// createResponse creates a operation response from state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	violations := state.Violations()
	if violations == nil {
		violations = []string{}
	}

	resp := &OperationResponse{
		ID:         state.ID,
		Status:     state.GetStatus(),
		Duration:   state.Duration(),
		Steps:      state.StepSummaries(),
		Stats:      state.Stats(),
		Output:     state.Output(),
		Violations: violations,
		Checks:     state.Checks(),
	}
	if err := state.Err(); err != nil {
		resp.Error = err.Error()
	}
	return resp
}
