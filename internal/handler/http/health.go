package http

import (
	"context"
	"database/sql"
	"net/http"
	"sort"
	"time"

	"ai-pulse/internal/handler/http/respond"
)

// Health states.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus is the result of one health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Pinger is a dependency that can be probed, such as the redis cache store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports the health of the cache backends and provider breakers.
// An unreachable backend is unhealthy; an open breaker only degrades the service
// because cached newsletters are still served.
type HealthHandler struct {
	Version string

	// DB is the sqlite cache database. Nil when the cache is not persisted to sqlite.
	DB *sql.DB

	// Pingers are extra dependencies keyed by check name.
	Pingers map[string]Pinger

	Breakers BreakerStatus
}

// ServeHTTP reports every check.
//
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse "A cache backend is unreachable"
// @Router       /health [get]
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := h.run(ctx)
	status := overall(checks)

	code := http.StatusOK
	if status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) run(ctx context.Context) map[string]CheckStatus {
	checks := make(map[string]CheckStatus)
	if h.DB != nil {
		checks["database"] = checkDatabase(ctx, h.DB)
	}
	for name, p := range h.Pingers {
		if err := p.Ping(ctx); err != nil {
			checks[name] = CheckStatus{Status: StatusUnhealthy, Message: err.Error()}
			continue
		}
		checks[name] = CheckStatus{Status: StatusHealthy}
	}
	if h.Breakers != nil {
		checks["circuit_breakers"] = checkBreakers(h.Breakers)
	}
	return checks
}

func overall(checks map[string]CheckStatus) string {
	status := StatusHealthy
	for _, c := range checks {
		switch c.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

// checkDatabase pings db and reports connection pool statistics.
func checkDatabase(ctx context.Context, db *sql.DB) CheckStatus {
	if err := db.PingContext(ctx); err != nil {
		return CheckStatus{Status: StatusUnhealthy, Message: err.Error()}
	}

	stats := db.Stats()
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
	if stats.MaxOpenConnections == 0 {
		return CheckStatus{Status: StatusHealthy, Details: details}
	}

	utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
	details["utilization_percent"] = utilization
	if utilization >= 80.0 {
		return CheckStatus{
			Status:  StatusDegraded,
			Message: "connection pool utilization above 80%",
			Details: details,
		}
	}
	return CheckStatus{Status: StatusHealthy, Details: details}
}

func checkBreakers(b BreakerStatus) CheckStatus {
	var open []string
	details := make(map[string]any)
	for name, st := range b.Status() {
		details[name] = st.State
		if st.IsOpen {
			open = append(open, name)
		}
	}
	if len(open) == 0 {
		return CheckStatus{Status: StatusHealthy, Details: details}
	}
	sort.Strings(open)
	details["open"] = open
	return CheckStatus{
		Status:  StatusDegraded,
		Message: "circuit breaker open",
		Details: details,
	}
}

// ReadyHandler answers readiness probes. It fails only when a cache backend is unreachable.
type ReadyHandler struct {
	Health *HealthHandler
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if overall(h.Health.run(ctx)) == StatusUnhealthy {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	respond.Document(w, http.StatusOK, "text/plain", []byte("ready"))
}

// LiveHandler answers liveness probes.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	respond.Document(w, http.StatusOK, "text/plain", []byte("alive"))
}
