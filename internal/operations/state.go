package operations

import (
	"sync"
	"time"

	"taxicli/internal/dataprocessing"
	"taxicli/internal/validation"
	"taxicli/pkg/contracts/domain"
)

// OperationStatusValue represents the overall operation status enum
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// OperationState is the state of one pipeline execution. Steps hand data
// to each other through the table, record and output fields.
type OperationState struct {
	mu sync.RWMutex

	ID        string
	Status    OperationStatusValue
	StartTime time.Time
	EndTime   *time.Time
	Error     error

	Request OperationRequest

	steps map[string]*StepState
	order []string

	table      *dataprocessing.RawTable
	records    []domain.TripRecord
	stats      domain.CleanStats
	output     string
	violations []string
	checks     []validation.ColumnCheck
}

// NewOperationState creates a new operation state
func NewOperationState(req OperationRequest) *OperationState {
	return &OperationState{
		ID:        req.ID,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Request:   req,
		steps:     make(map[string]*StepState),
		stats:     domain.NewCleanStats(),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStatus returns the operation status
func (p *OperationState) GetStatus() OperationStatusValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// Err returns the error that ended the operation
func (p *OperationState) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Error
}

// AddStage registers the state of a Step, keeping insertion order
func (p *OperationState) AddStage(state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.steps[state.ID]; !exists {
		p.order = append(p.order, state.ID)
	}
	p.steps[state.ID] = state
}

// GetStage returns the state of a specific Step
func (p *OperationState) GetStage(stageID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.steps[stageID]
}

// StepSummaries returns the step summaries in execution order
func (p *OperationState) StepSummaries() []StepSummary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	summaries := make([]StepSummary, 0, len(p.order))
	for _, id := range p.order {
		summaries = append(summaries, p.steps[id].Summary())
	}
	return summaries
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}

// Table returns the parsed raw table
func (p *OperationState) Table() *dataprocessing.RawTable {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.table
}

// SetTable stores the parsed raw table
func (p *OperationState) SetTable(table *dataprocessing.RawTable) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.table = table
}

// Records returns the current trip records
func (p *OperationState) Records() []domain.TripRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.records
}

// SetRecords replaces the current trip records
func (p *OperationState) SetRecords(records []domain.TripRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = records
}

// Stats returns the cleaning statistics
func (p *OperationState) Stats() domain.CleanStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stats
}

// SetStats stores the cleaning statistics
func (p *OperationState) SetStats(stats domain.CleanStats) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats = stats
}

// Output returns the resolved path of the persisted enriched file
func (p *OperationState) Output() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.output
}

// SetOutput stores the resolved output path
func (p *OperationState) SetOutput(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.output = path
}

// Violations returns the validator messages
func (p *OperationState) Violations() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.violations
}

// Checks returns the per-column validator results
func (p *OperationState) Checks() []validation.ColumnCheck {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.checks
}

// SetValidation stores the validator results
func (p *OperationState) SetValidation(checks []validation.ColumnCheck, violations []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.checks = checks
	p.violations = violations
}
