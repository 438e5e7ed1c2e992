package domain

import "time"

// RunStatus is the outcome of a recorded command run.
type RunStatus string

const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Commands that write to the run ledger.
const (
	CommandCurate   = "curate"
	CommandValidate = "validate"
)

// RunCommands lists the commands a run may be recorded for.
var RunCommands = []string{CommandCurate, CommandValidate}

// RunRecord is one entry of the run ledger.
type RunRecord struct {
	ID         string             `json:"id"`
	Command    string             `json:"command"`
	Input      string             `json:"input"`
	Output     string             `json:"output,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	RowsIn     int                `json:"rows_in"`
	RowsOut    int                `json:"rows_out"`
	Dropped    map[DropReason]int `json:"dropped,omitempty"`
	Violations int                `json:"violations"`
	Status     RunStatus          `json:"status"`
	Error      string             `json:"error,omitempty"`
}

// Duration is the wall time of the run.
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
