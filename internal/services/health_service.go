package services

import (
	"context"
	"log/slog"
	"time"

	"taxwizz/internal/config"
	"taxwizz/internal/store"
	"taxwizz/internal/validation"
	"taxwizz/pkg/contracts"
)

// Health states reported by the health endpoints.
const (
	HealthStatusHealthy  = "healthy"
	HealthStatusDegraded = "degraded"
)

// HealthCheck is the result of one dependency probe.
type HealthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthReport is the full health endpoint response.
type HealthReport struct {
	Status    string        `json:"status"`
	Version   string        `json:"version"`
	Uptime    string        `json:"uptime"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []HealthCheck `json:"checks"`
}

// HealthService reports liveness, readiness, and version information.
type HealthService struct {
	paths     *config.Paths
	users     store.UserStore
	logger    *slog.Logger
	startedAt time.Time
	now       func() time.Time
}

// NewHealthService creates a new health service
func NewHealthService(paths *config.Paths, users store.UserStore, logger *slog.Logger) *HealthService {
	return &HealthService{
		paths:     paths,
		users:     users,
		logger:    logger.With(slog.String("component", "health")),
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// Check probes the service's dependencies and reports overall health. Any
// failing check degrades the whole report.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	checks := []HealthCheck{
		s.checkDataDir(),
		s.checkUserStore(),
	}

	status := HealthStatusHealthy
	for _, check := range checks {
		if check.Status != HealthStatusHealthy {
			status = HealthStatusDegraded
			break
		}
	}

	if status != HealthStatusHealthy {
		s.logger.WarnContext(ctx, "health check degraded")
	}

	return HealthReport{
		Status:    status,
		Version:   contracts.Version,
		Uptime:    s.now().Sub(s.startedAt).Round(time.Second).String(),
		Timestamp: s.now(),
		Checks:    checks,
	}
}

// Ready reports whether the service can take traffic.
func (s *HealthService) Ready(ctx context.Context) bool {
	return s.Check(ctx).Status == HealthStatusHealthy
}

// Version returns build and runtime version details.
func (s *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

// Uptime returns how long the service has been running.
func (s *HealthService) Uptime() time.Duration {
	return s.now().Sub(s.startedAt)
}

func (s *HealthService) checkDataDir() HealthCheck {
	if err := validation.DirWritable(s.paths.DataDir); err != nil {
		return HealthCheck{Name: "data_dir", Status: HealthStatusDegraded, Message: err.Error()}
	}
	return HealthCheck{Name: "data_dir", Status: HealthStatusHealthy}
}

func (s *HealthService) checkUserStore() HealthCheck {
	// The seeded admin account always exists; failure to resolve it means
	// the store is broken.
	if _, err := s.users.FindByUsername("admin"); err != nil {
		return HealthCheck{Name: "user_store", Status: HealthStatusDegraded, Message: err.Error()}
	}
	return HealthCheck{Name: "user_store", Status: HealthStatusHealthy}
}
