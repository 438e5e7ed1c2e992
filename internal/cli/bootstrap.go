package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"

	"taxicli/internal/config"
	"taxicli/internal/infrastructure"
)

// Exit codes shared by the commands
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitViolations = 2
)

// Env is what every command needs before doing work
type Env struct {
	Config    *config.Config
	Paths     *config.Paths
	Logger    *slog.Logger
	Providers *infrastructure.OTelProviders
}

// Bootstrap loads configuration, resolves paths and initializes logging and
// telemetry for command. Telemetry failures are logged, not fatal.
func Bootstrap(command string) (*Env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return BootstrapWith(command, cfg)
}

// BootstrapWith is Bootstrap with an already loaded configuration
func BootstrapWith(command string, cfg *config.Config) (*Env, error) {
	paths, err := cfg.Paths.Resolve()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = filepath.Join(paths.LogsDir, command+".log")
	}
	cfg.Logging.FilePath = paths.LogPath(cfg.Logging.FilePath)

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = logger.With(slog.String("command", command))

	env := &Env{Config: cfg, Paths: paths, Logger: logger}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		logger.Warn("telemetry disabled", slog.String("error", err.Error()))
	} else {
		env.Providers = providers
	}

	logger.Debug("command bootstrapped", slog.String("version", config.AppVersion))
	paths.LogPathResolution(logger)

	return env, nil
}

// Close flushes telemetry and closes the log file
func (e *Env) Close() {
	if e == nil {
		return
	}
	if e.Providers != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Providers.Shutdown(ctx); err != nil {
			e.Logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}
	_ = infrastructure.CloseLogFile()
}

// IsTerminal reports whether w writes to an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// AbsPath resolves a path given on the command line against the working
// directory. Configured defaults are already absolute.
func AbsPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
