package circuitbreaker

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// Status is a snapshot of one service breaker.
type Status struct {
	State       string     `json:"state"`
	Failures    int        `json:"failures"`
	LastFailure *time.Time `json:"lastFailure"`
	IsOpen      bool       `json:"isOpen"`

	// TimeSinceLastFailureMs is nil when the service has not failed since the last reset.
	TimeSinceLastFailureMs *int64 `json:"timeSinceLastFailureMs"`
}

// Registry keeps one breaker per named service, created on first use.
//
// A breaker whose last recorded failure is older than its Timeout is replaced by a
// fresh closed breaker the next time it is consulted, so the failure count restarts
// from zero instead of going through a half-open probe.
type Registry struct {
	newConfig func(name string) Config
	now       func() time.Time

	mu       sync.Mutex
	services map[string]*serviceBreaker
}

type serviceBreaker struct {
	cfg         Config
	cb          *CircuitBreaker
	failures    int
	lastFailure time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithClock overrides the clock used for failure timestamps and cool-down checks.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) { r.now = now }
}

// WithConfig overrides the per-service configuration. Defaults to ServiceConfig.
func WithConfig(fn func(name string) Config) RegistryOption {
	return func(r *Registry) { r.newConfig = fn }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		newConfig: ServiceConfig,
		now:       time.Now,
		services:  make(map[string]*serviceBreaker),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs fn through the breaker for service. When the breaker is open, fn is not
// called and the returned error satisfies IsRejection.
func (r *Registry) Execute(service string, fn func() (interface{}, error)) (interface{}, error) {
	r.mu.Lock()
	sb := r.breakerLocked(service)
	cb := sb.cb
	r.mu.Unlock()

	result, err := cb.Execute(fn)

	if IsRejection(err) {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// The breaker may have been replaced while fn was running; only account on the current one.
	if cur := r.services[service]; cur == nil || cur.cb != cb {
		return result, err
	}
	if err != nil {
		sb.failures++
		sb.lastFailure = r.now()
	} else {
		sb.failures = 0
		sb.lastFailure = time.Time{}
	}
	return result, err
}

// IsOpen reports whether calls to service are currently rejected.
func (r *Registry) IsOpen(service string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.breakerLocked(service).cb.IsOpen()
}

// Reset replaces the breaker for service with a fresh closed one.
func (r *Registry) Reset(service string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[service] = r.newServiceBreaker(service)
}

// Status returns a snapshot of every breaker created so far, keyed by service name.
func (r *Registry) Status() map[string]Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	out := make(map[string]Status, len(r.services))
	for _, name := range r.namesLocked() {
		sb := r.breakerLocked(name)
		st := Status{
			State:    sb.cb.State().String(),
			Failures: sb.failures,
			IsOpen:   sb.cb.State() == gobreaker.StateOpen,
		}
		if !sb.lastFailure.IsZero() {
			lf := sb.lastFailure
			since := now.Sub(lf).Milliseconds()
			st.LastFailure = &lf
			st.TimeSinceLastFailureMs = &since
		}
		out[name] = st
	}
	return out
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// breakerLocked returns the breaker for service, creating it or replacing it once the
// cool-down after the last failure has elapsed. r.mu must be held.
func (r *Registry) breakerLocked(service string) *serviceBreaker {
	sb, ok := r.services[service]
	if !ok {
		sb = r.newServiceBreaker(service)
		r.services[service] = sb
		return sb
	}
	if sb.failures > 0 && r.now().Sub(sb.lastFailure) > sb.cfg.Timeout {
		slog.Info("circuit breaker auto-reset",
			slog.String("circuit", service),
			slog.Int("failures", sb.failures),
			slog.Time("last_failure", sb.lastFailure))
		circuitAutoResets.WithLabelValues(service).Inc()
		sb = r.newServiceBreaker(service)
		r.services[service] = sb
	}
	return sb
}

func (r *Registry) newServiceBreaker(service string) *serviceBreaker {
	cfg := r.newConfig(service)
	cfg.Name = service
	return &serviceBreaker{cfg: cfg, cb: New(cfg)}
}
