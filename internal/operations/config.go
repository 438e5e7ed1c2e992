package operations

import (
	"time"
)

// Config represents the operation execution configuration
type Config struct {
	// Step-specific deadlines. A step without an entry runs until it
	// finishes or the caller cancels.
	StageTimeouts map[string]time.Duration `json:"stage_timeouts"`
}

// NewConfig returns the default operation configuration, with no step
// deadlines.
func NewConfig() *Config {
	return &Config{StageTimeouts: make(map[string]time.Duration)}
}

// GetStageTimeout returns the deadline for a specific Step, 0 when none
func (c *Config) GetStageTimeout(stageID string) time.Duration {
	if c == nil {
		return 0
	}
	if timeout, ok := c.StageTimeouts[stageID]; ok && timeout > 0 {
		return timeout
	}
	return 0
}

// SetStageTimeout sets the deadline for a specific Step. Zero removes it.
func (c *Config) SetStageTimeout(stageID string, timeout time.Duration) {
	if c.StageTimeouts == nil {
		c.StageTimeouts = make(map[string]time.Duration)
	}
	if timeout <= 0 {
		delete(c.StageTimeouts, stageID)
		return
	}
	c.StageTimeouts[stageID] = timeout
}
