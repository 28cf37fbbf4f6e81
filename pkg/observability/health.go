package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionCounter reports how many checkout sessions are currently live.
type SessionCounter interface {
	LiveSessions() int
}

// HealthStatus is the JSON body of the health endpoint.
type HealthStatus struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	LiveSessions int               `json:"liveSessions"`
	Checks       map[string]string `json:"checks"`
}

// HealthChecker aggregates the service's dependency checks. The attempt
// audit store is optional; sessions is optional too and only enriches
// the report.
type HealthChecker struct {
	auditPool *pgxpool.Pool
	sessions  SessionCounter
}

// NewHealthChecker creates a HealthChecker. auditPool may be nil when the
// attempt audit log is not configured.
func NewHealthChecker(auditPool *pgxpool.Pool, sessions SessionCounter) *HealthChecker {
	return &HealthChecker{auditPool: auditPool, sessions: sessions}
}

// Check pings every configured dependency.
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now(),
		Checks:    make(map[string]string),
	}

	if h.auditPool == nil {
		status.Checks["attempt_audit"] = "not configured"
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := h.auditPool.Ping(pingCtx); err != nil {
			status.Checks["attempt_audit"] = "unhealthy: " + err.Error()
			status.Status = "unhealthy"
		} else {
			status.Checks["attempt_audit"] = "healthy"
		}
	}

	if h.sessions != nil {
		status.LiveSessions = h.sessions.LiveSessions()
	}
	return status
}

// HealthHandler serves the health status, 503 when any check fails.
func (h *HealthChecker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := h.Check(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if status.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	}
}
