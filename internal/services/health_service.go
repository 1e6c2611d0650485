package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"roomreports/internal/reports"
	"roomreports/pkg/contracts"
)

// Service health states
const (
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusDegraded = "degraded"
)

// DashboardView exposes the dashboard state to health checks
type DashboardView interface {
	View() reports.ViewState
}

// ClientCounter reports connected live clients
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	dashboard DashboardView
	clients   ClientCounter
	exportDir string
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]any           `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// NewHealthService creates a health service. clients may be nil when the
// live view is disabled.
func NewHealthService(dashboard DashboardView, clients ClientCounter, exportDir string, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		dashboard: dashboard,
		clients:   clients,
		exportDir: exportDir,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}
}

// ReadinessCheck reports each dependency. A failed report load degrades
// the service but does not make it unready: the dashboard still serves
// the last good snapshot.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services: map[string]ServiceHealth{
			"dashboard": hs.checkDashboardHealth(),
			"websocket": hs.checkWebSocketHealth(),
			"exports":   hs.checkExportHealth(),
		},
	}

	for _, sh := range status.Services {
		switch sh.Status {
		case StatusNotReady:
			status.Status = StatusNotReady
		case StatusDegraded:
			if status.Status == StatusReady {
				status.Status = StatusDegraded
			}
		}
	}

	if status.Status != StatusReady {
		hs.logger.WarnContext(ctx, "ReadinessCheck: not fully ready", slog.String("status", status.Status))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]any{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]any {
	info := contracts.GetVersionInfo()
	return map[string]any{
		"version":     info.Version,
		"api_version": info.APIVersion,
		"build_time":  info.BuildTime,
		"git_commit":  info.GitCommit,
		"go_version":  info.GoVersion,
		"os":          info.OS,
		"arch":        info.Architecture,
		"uptime":      time.Since(hs.startTime).Seconds(),
		"start_time":  hs.startTime.Format(time.RFC3339),
	}
}

func (hs *HealthService) checkDashboardHealth() ServiceHealth {
	if hs.dashboard == nil {
		return ServiceHealth{Status: StatusNotReady, Message: "dashboard not initialized"}
	}

	v := hs.dashboard.View()
	switch {
	case v.Error != "":
		return ServiceHealth{Status: StatusDegraded, Message: v.Error}
	case v.Snapshot == nil:
		return ServiceHealth{Status: StatusReady, Message: fmt.Sprintf("no report loaded (%s)", v.Status)}
	default:
		return ServiceHealth{
			Status:  StatusReady,
			Message: fmt.Sprintf("report from %s", v.Snapshot.Source),
			Uptime:  time.Since(v.Snapshot.FetchedAt).Round(time.Second).String(),
		}
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.clients == nil {
		return ServiceHealth{Status: StatusReady, Message: "live view disabled"}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%d clients connected", hs.clients.ClientCount()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

func (hs *HealthService) checkExportHealth() ServiceHealth {
	if hs.exportDir == "" {
		return ServiceHealth{Status: StatusReady, Message: "exports stream to the client"}
	}
	if err := os.MkdirAll(hs.exportDir, 0755); err != nil {
		return ServiceHealth{Status: StatusNotReady, Message: fmt.Sprintf("cannot create export directory: %v", err)}
	}
	tmp, err := os.CreateTemp(hs.exportDir, ".health-*")
	if err != nil {
		return ServiceHealth{Status: StatusNotReady, Message: fmt.Sprintf("export directory not writable: %v", err)}
	}
	tmp.Close()
	os.Remove(tmp.Name())
	return ServiceHealth{Status: StatusReady, Message: hs.exportDir}
}
