package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. TAXI_LOGGING_LEVEL.
const EnvPrefix = "TAXI"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Cleaning  CleaningConfig  `yaml:"cleaning" envconfig:"CLEANING"`
	Plots     PlotsConfig     `yaml:"plots" envconfig:"PLOTS"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths, relative to BaseDir unless absolute
type PathsConfig struct {
	BaseDir      string `yaml:"base_dir" envconfig:"BASE_DIR"`
	RawFile      string `yaml:"raw_file" envconfig:"RAW_FILE" validate:"required"`
	EnrichedFile string `yaml:"enriched_file" envconfig:"ENRICHED_FILE" validate:"required"`
	RunsDB       string `yaml:"runs_db" envconfig:"RUNS_DB" validate:"required"`
	PlotsDir     string `yaml:"plots_dir" envconfig:"PLOTS_DIR" validate:"required"`
	ReportsDir   string `yaml:"reports_dir" envconfig:"REPORTS_DIR" validate:"required"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// CleaningConfig controls how the cleaner treats bad rows
type CleaningConfig struct {
	TimestampPolicy string `yaml:"timestamp_policy" envconfig:"TIMESTAMP_POLICY" validate:"oneof=drop fail"`
}

// PlotsConfig controls the chart workbook
type PlotsConfig struct {
	Workbook      string `yaml:"workbook" envconfig:"WORKBOOK" validate:"required"`
	SummaryFile   string `yaml:"summary_file" envconfig:"SUMMARY_FILE" validate:"required"`
	SpeedBins     int    `yaml:"speed_bins" envconfig:"SPEED_BINS" validate:"min=1,max=200"`
	TipBins       int    `yaml:"tip_bins" envconfig:"TIP_BINS" validate:"min=1,max=200"`
	ScatterSample int    `yaml:"scatter_sample" envconfig:"SCATTER_SAMPLE" validate:"min=1"`
}

// ReportConfig controls the HTML/PDF report
type ReportConfig struct {
	Markdown      string        `yaml:"markdown" envconfig:"MARKDOWN"`
	HTMLFile      string        `yaml:"html_file" envconfig:"HTML_FILE" validate:"required"`
	PDFFile       string        `yaml:"pdf_file" envconfig:"PDF_FILE"`
	Author        string        `yaml:"author" envconfig:"AUTHOR" validate:"required"`
	Project       string        `yaml:"project" envconfig:"PROJECT" validate:"required"`
	ChromeTimeout time.Duration `yaml:"chrome_timeout" envconfig:"CHROME_TIMEOUT" validate:"gt=0"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gt=0"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
	RequestTimeout  time.Duration   `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" validate:"gt=0"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TracesExporter string `yaml:"traces_exporter" envconfig:"TRACES_EXPORTER" validate:"oneof=none stdout"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// Load builds the configuration from defaults, then the YAML file if one
// is found, then environment variables.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit YAML path; an empty path skips the file.
func LoadFile(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a matching variable are left untouched.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

var validate = validator.New()

// validate validates the configuration
func (c *Config) validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)
	c.Cleaning.TimestampPolicy = strings.ToLower(c.Cleaning.TimestampPolicy)

	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging file_path is required for output %q", c.Logging.Output)
	}

	if c.Server.WriteTimeout < c.Server.RequestTimeout {
		return fmt.Errorf("server write timeout (%s) must not be shorter than request timeout (%s)",
			c.Server.WriteTimeout, c.Server.RequestTimeout)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/taxicli.log",
		},
		Paths: PathsConfig{
			RawFile:      "data/nyc_taxi_raw.csv",
			EnrichedFile: "data/nyc_taxi_enriched.csv",
			RunsDB:       "data/runs.db",
			PlotsDir:     "plots",
			ReportsDir:   "reports",
			LogsDir:      "logs",
		},
		Cleaning: CleaningConfig{
			TimestampPolicy: TimestampPolicyDrop,
		},
		Plots: PlotsConfig{
			Workbook:      "nyc_taxi_features.xlsx",
			SummaryFile:   "summary.json",
			SpeedBins:     DefaultSpeedBins,
			TipBins:       DefaultTipBins,
			ScatterSample: DefaultScatterSample,
		},
		Report: ReportConfig{
			HTMLFile:      "report.html",
			PDFFile:       "report.pdf",
			Author:        DefaultReportAuthor,
			Project:       ProjectName,
			ChromeTimeout: 60 * time.Second,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  20 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			TracesExporter: "none",
			MetricsEnabled: true,
		},
	}
}
