package health

import (
	"context"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/triage-intake-server/internal/domain"
)

type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateWarning   HealthState = "warning"
	HealthStateUnhealthy HealthState = "unhealthy"
)

// severity orders states from best to worst
var severity = map[HealthState]int{
	HealthStateHealthy:   0,
	HealthStateWarning:   1,
	HealthStateUnhealthy: 2,
}

type HealthStatus struct {
	Overall    HealthState                `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Uptime     string                     `json:"uptime"`
	Components map[string]ComponentHealth `json:"components"`
}

type ComponentHealth struct {
	Status  HealthState `json:"status"`
	Message string      `json:"message"`
}

type HealthCheck interface {
	Name() string
	Check(ctx context.Context) ComponentHealth
}

// HealthChecker runs its checks on demand. None of them perform network I/O.
type HealthChecker struct {
	checks  []HealthCheck
	started time.Time
	mutex   sync.RWMutex
}

func NewHealthChecker(checks ...HealthCheck) *HealthChecker {
	return &HealthChecker{
		checks:  checks,
		started: time.Now(),
	}
}

// RegisterCheck adds a check to the checker
func (h *HealthChecker) RegisterCheck(check HealthCheck) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.checks = append(h.checks, check)
}

// GetStatus runs every check and reports the worst component state as overall
func (h *HealthChecker) GetStatus(ctx context.Context) *HealthStatus {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	status := &HealthStatus{
		Overall:    HealthStateHealthy,
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(h.started).Round(time.Second).String(),
		Components: make(map[string]ComponentHealth, len(h.checks)),
	}

	for _, check := range h.checks {
		result := check.Check(ctx)
		status.Components[check.Name()] = result
		if severity[result.Status] > severity[status.Overall] {
			status.Overall = result.Status
		}
	}

	return status
}

type breakerStater interface {
	State() gobreaker.State
}

// DiagnosisHealthCheck reports the credential and circuit breaker of the diagnosis client
type DiagnosisHealthCheck struct {
	config  *domain.DiagnosisConfig
	breaker breakerStater
}

func NewDiagnosisHealthCheck(config *domain.DiagnosisConfig, breaker breakerStater) *DiagnosisHealthCheck {
	return &DiagnosisHealthCheck{config: config, breaker: breaker}
}

func (d *DiagnosisHealthCheck) Name() string {
	return "diagnosis"
}

func (d *DiagnosisHealthCheck) Check(ctx context.Context) ComponentHealth {
	if d.config.APIKey == "" {
		return ComponentHealth{Status: HealthStateUnhealthy, Message: "API credential is not configured"}
	}

	switch d.breaker.State() {
	case gobreaker.StateOpen:
		return ComponentHealth{Status: HealthStateUnhealthy, Message: "circuit breaker open"}
	case gobreaker.StateHalfOpen:
		return ComponentHealth{Status: HealthStateWarning, Message: "circuit breaker half-open"}
	default:
		return ComponentHealth{Status: HealthStateHealthy, Message: "circuit breaker closed"}
	}
}

// NotificationHealthCheck reports whether staff notifications can be delivered.
// Notifications are best effort so a missing webhook is only a warning.
type NotificationHealthCheck struct {
	config *domain.NotificationConfig
}

func NewNotificationHealthCheck(config *domain.NotificationConfig) *NotificationHealthCheck {
	return &NotificationHealthCheck{config: config}
}

func (n *NotificationHealthCheck) Name() string {
	return "notification"
}

func (n *NotificationHealthCheck) Check(ctx context.Context) ComponentHealth {
	if n.config.WebhookURL == "" {
		return ComponentHealth{Status: HealthStateWarning, Message: "webhook URL is not configured"}
	}
	return ComponentHealth{Status: HealthStateHealthy, Message: "webhook configured"}
}
