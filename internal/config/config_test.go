package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults only",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, TimestampPolicyDrop, cfg.Cleaning.TimestampPolicy)
				assert.Equal(t, "data/nyc_taxi_raw.csv", cfg.Paths.RawFile)
				assert.Equal(t, "data/nyc_taxi_enriched.csv", cfg.Paths.EnrichedFile)
				assert.Equal(t, 30, cfg.Plots.SpeedBins)
				assert.Equal(t, 20, cfg.Plots.TipBins)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, ProjectName, cfg.Report.Project)
				assert.Equal(t, "none", cfg.Telemetry.TracesExporter)
			},
		},
		{
			name: "yaml overrides defaults",
			file: `
logging:
  level: debug
cleaning:
  timestamp_policy: fail
server:
  port: 9090
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, TimestampPolicyFail, cfg.Cleaning.TimestampPolicy)
				assert.Equal(t, 9090, cfg.Server.Port)
				// untouched sections keep defaults
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "plots", cfg.Paths.PlotsDir)
			},
		},
		{
			name: "env overrides yaml",
			env: map[string]string{
				"TAXI_SERVER_PORT":           "7070",
				"TAXI_LOGGING_LEVEL":         "WARN",
				"TAXI_PATHS_BASE_DIR":        "/srv/taxi",
				"TAXI_SERVER_RATE_LIMIT_RPS": "5",
			},
			file: `
server:
  port: 9090
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "/srv/taxi", cfg.Paths.BaseDir)
				assert.Equal(t, 5.0, cfg.Server.RateLimit.RPS)
			},
		},
		{
			name:    "invalid timestamp policy",
			env:     map[string]string{"TAXI_CLEANING_TIMESTAMP_POLICY": "ignore"},
			wantErr: true,
		},
		{
			name:    "invalid port",
			file:    "server:\n  port: 70000\n",
			wantErr: true,
		},
		{
			name:    "file output without path",
			file:    "logging:\n  output: file\n  file_path: \"\"\n",
			wantErr: true,
		},
		{
			name:    "write timeout shorter than request timeout",
			env:     map[string]string{"TAXI_SERVER_WRITE_TIMEOUT": "1s"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFile(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.validate())
}

func TestPeakHours(t *testing.T) {
	assert.Equal(t, [...]int{7, 8, 17, 18}, PeakHours)
	assert.Less(t, ShortTripMaxMinutes, MediumTripMaxMinutes)
}

func TestExampleConfigMatchesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("..", "..", "configs", "config.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}
