package operations

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Step represents a single Step in the operation
type Step interface {
	// ID returns the unique identifier for this Step
	ID() string

	// Name returns the human-readable name for this Step
	Name() string

	// Execute runs the Step with the given context and operation state
	Execute(ctx context.Context, state *OperationState) error

	// Validate checks if the Step can be executed with the current state
	Validate(state *OperationState) error
}

// StepStatus represents the current status of a Step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState represents the runtime state of a Step
type StepState struct {
	mu        sync.RWMutex
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Rows      int        `json:"rows"`
	Message   string     `json:"message"`
	Error     error      `json:"-"`
}

// NewStepState creates a new Step state with default values
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:     id,
		Name:   name,
		Status: StepStatusPending,
	}
}

// Start marks the Step as active and sets the start time
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.EndTime = nil
	s.Status = StepStatusActive
}

// Complete marks the Step as completed with the number of rows it produced
func (s *StepState) Complete(rows int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
	s.Rows = rows
	s.Message = message
}

// Fail marks the Step as failed with the given error
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err
}

// Skip marks the Step as skipped with the given reason
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusSkipped
	s.Message = reason
}

// GetStatus returns the current status
func (s *StepState) GetStatus() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration returns the duration of the Step execution
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// Summary snapshots the state for reporting
func (s *StepState) Summary() StepSummary {
	duration := s.Duration()

	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := StepSummary{
		ID:       s.ID,
		Name:     s.Name,
		Status:   s.Status,
		Duration: duration,
		Rows:     s.Rows,
		Message:  s.Message,
	}
	if s.Error != nil {
		summary.Error = s.Error.Error()
	}
	return summary
}

// BaseStage provides common functionality for Step implementations
type BaseStage struct {
	id   string
	name string
}

// NewBaseStage creates a new base Step
func NewBaseStage(id, name string) BaseStage {
	return BaseStage{id: id, name: name}
}

// ID returns the Step ID
func (b *BaseStage) ID() string {
	if b == nil {
		return ""
	}
	return b.id
}

// Name returns the Step name
func (b *BaseStage) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// Validate provides a default validation that always passes
func (b *BaseStage) Validate(state *OperationState) error {
	if b == nil {
		return fmt.Errorf("BaseStage is nil")
	}
	return nil
}
