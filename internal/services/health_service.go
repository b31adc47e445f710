package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// ReportStatus is the subset of ReportService the health check reads
type ReportStatus interface {
	Loaded() bool
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	reports   ReportStatus
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
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version string, reports ReportStatus, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		reports:   reports,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthCheck returns overall health status. The service is degraded until a report is loaded.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
		},
		Services: map[string]ServiceHealth{},
	}

	report := ServiceHealth{Status: "ok", Uptime: time.Since(hs.startTime).Round(time.Second).String()}
	if hs.reports == nil || !hs.reports.Loaded() {
		report = ServiceHealth{Status: "unavailable", Message: "report not loaded"}
		status.Status = "degraded"
	}
	status.Services["report"] = report

	hs.logger.DebugContext(ctx, "HealthCheck: completed", slog.String("status", status.Status))
	return status
}
