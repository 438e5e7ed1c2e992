package operations

import (
	"time"

	"taxicli/internal/validation"
	"taxicli/pkg/contracts/domain"
)

// Step identifiers
const (
	StageIDLoad     = "load"
	StageIDClean    = "clean"
	StageIDDerive   = "derive"
	StageIDPersist  = "persist"
	StageIDValidate = "validate"
)

// Step names
const (
	StageNameLoad     = "Load Raw Trips"
	StageNameClean    = "Clean Trips"
	StageNameDerive   = "Derive Features"
	StageNamePersist  = "Persist Enriched Data"
	StageNameValidate = "Validate Enriched Data"
)


// OperationRequest represents a request to run the curation pipeline
type OperationRequest struct {
	ID              string `json:"id"`
	Input           string `json:"input"`
	Output          string `json:"output"`
	TimestampPolicy string `json:"timestamp_policy,omitempty"`
}

// StepSummary is the reported outcome of one step
type StepSummary struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Duration time.Duration `json:"duration"`
	Rows     int           `json:"rows"`
	Message  string        `json:"message,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// OperationResponse represents the response from a pipeline execution
type OperationResponse struct {
	ID         string                   `json:"id"`
	Status     OperationStatusValue     `json:"status"`
	Duration   time.Duration            `json:"duration"`
	Steps      []StepSummary            `json:"steps"`
	Stats      domain.CleanStats        `json:"stats"`
	Output     string                   `json:"output,omitempty"`
	Violations []string                 `json:"violations"`
	Checks     []validation.ColumnCheck `json:"checks,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// Step returns the summary of the step with id.
func (r *OperationResponse) Step(id string) (StepSummary, bool) {
	for _, s := range r.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return StepSummary{}, false
}
