package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	dataset   *DatasetService
	runs      *RunService
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service. dataset and runs may be nil.
func NewHealthService(version string, dataset *DatasetService, runs *RunService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		dataset:   dataset,
		runs:      runs,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status with the state of each
// dependency. The server is "ok" even when the dataset is missing; the
// dataset entry then reports "unavailable".
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
		Services: map[string]ServiceHealth{
			"dataset": hs.checkDatasetHealth(),
			"runs":    hs.checkRunsHealth(),
		},
	}

	hs.logger.DebugContext(ctx, "health check completed", slog.String("status", status.Status))
	return status
}

// ReadinessCheck is ready once the dataset has been loaded
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	dataset := hs.checkDatasetHealth()
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  map[string]ServiceHealth{"dataset": dataset},
	}
	if dataset.Status != "ready" {
		status.Status = "not_ready"
	}
	return status
}

func (hs *HealthService) checkDatasetHealth() ServiceHealth {
	if hs.dataset == nil {
		return ServiceHealth{Status: "unavailable", Message: "no dataset configured"}
	}
	if hs.dataset.Loaded() {
		return ServiceHealth{Status: "ready"}
	}
	health := ServiceHealth{Status: "unavailable", Message: "dataset not loaded"}
	if err := hs.dataset.LastError(); err != nil {
		health.Message = err.Error()
	}
	return health
}

func (hs *HealthService) checkRunsHealth() ServiceHealth {
	if hs.runs == nil || !hs.runs.Available() {
		return ServiceHealth{Status: "unavailable", Message: "run ledger not configured"}
	}
	return ServiceHealth{Status: "ready"}
}
