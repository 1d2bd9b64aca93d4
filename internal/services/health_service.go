package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"eduboard/pkg/contracts"
)

const backendCheckTimeout = 5 * time.Second

// Component states reported by ReadinessCheck.
const (
	StatusReady       = "ready"
	StatusNotReady    = "not_ready"
	StatusDisabled    = "disabled"
	StatusUnavailable = "unavailable"
)

// ClientCounter reports connected WebSocket clients.
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	backend   BackendClient
	hub       ClientCounter
	dashboard *DashboardService
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
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Required bool   `json:"required"`
}

// NewHealthService creates a health service. backend and hub may be nil.
func NewHealthService(dashboard *DashboardService, backend BackendClient, hub ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		backend:   backend,
		hub:       hub,
		dashboard: dashboard,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   contracts.Version,
	}
}

// ReadinessCheck reports each component. Only required components decide
// the overall status; the remote backend is optional.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now().UTC(),
		Version:   contracts.Version,
		Services: map[string]ServiceHealth{
			"normalizer": hs.checkDashboard(),
			"websocket":  hs.checkWebSocket(),
			"backend":    hs.checkBackend(ctx),
		},
	}

	for name, svc := range status.Services {
		if svc.Required && svc.Status != StatusReady {
			status.Status = StatusNotReady
			hs.logger.WarnContext(ctx, "component not ready",
				slog.String("service", name),
				slog.String("message", svc.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now().UTC(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(hs.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
		},
	}
}

// VersionInfo describes the running build.
type VersionInfo struct {
	contracts.VersionInfo
	StartTime     time.Time `json:"start_time"`
	UptimeSeconds float64   `json:"uptime_seconds"`
}

// Version returns version information
func (hs *HealthService) Version() VersionInfo {
	return VersionInfo{
		VersionInfo:   contracts.GetVersionInfo(),
		StartTime:     hs.startTime.UTC(),
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
	}
}

func (hs *HealthService) checkDashboard() ServiceHealth {
	if hs.dashboard == nil {
		return ServiceHealth{Status: StatusNotReady, Message: "dashboard service not initialized", Required: true}
	}
	msg := "no workbook loaded"
	if up, err := hs.dashboard.Current(); err == nil {
		msg = "serving " + up.Info.FileName
	}
	return ServiceHealth{Status: StatusReady, Message: msg, Required: true}
}

func (hs *HealthService) checkWebSocket() ServiceHealth {
	if hs.hub == nil {
		return ServiceHealth{Status: StatusDisabled}
	}
	return ServiceHealth{Status: StatusReady, Message: fmt.Sprintf("%d clients connected", hs.hub.ClientCount())}
}

func (hs *HealthService) checkBackend(ctx context.Context) ServiceHealth {
	if hs.backend == nil {
		return ServiceHealth{Status: StatusDisabled, Message: "submission disabled"}
	}
	ctx, cancel := context.WithTimeout(ctx, backendCheckTimeout)
	defer cancel()

	if err := hs.backend.HealthCheck(ctx); err != nil {
		return ServiceHealth{Status: StatusUnavailable, Message: err.Error()}
	}
	return ServiceHealth{Status: StatusReady, Message: "backend reachable"}
}
