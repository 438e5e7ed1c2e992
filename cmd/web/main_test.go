package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"taxicli/internal/cli"
	"taxicli/internal/infrastructure"
)

func TestRunRejectsBadFlags(t *testing.T) {
	t.Setenv("TAXI_PATHS_BASE_DIR", t.TempDir())
	t.Setenv("TAXI_TELEMETRY_METRICS_ENABLED", "false")
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"-listen", ":80"}},
		{name: "port out of range", args: []string{"-port", "70000"}},
		{name: "negative port", args: []string{"-port", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, cli.ExitFailure, run(tt.args, &stderr))
			assert.NotEmpty(t, stderr.String())
		})
	}
}
