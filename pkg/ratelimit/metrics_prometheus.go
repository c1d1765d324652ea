package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements Metrics using Prometheus.
//
// Collectors are registered on the Registerer passed to NewPrometheusMetrics,
// so tests can use an isolated prometheus.NewRegistry().
type PrometheusMetrics struct {
	// allowedTotal counts calls admitted immediately.
	allowedTotal *prometheus.CounterVec

	// waitsTotal counts calls that had to wait for a slot.
	waitsTotal *prometheus.CounterVec

	// waitDuration tracks how long callers waited.
	// Buckets cover the 100ms buffer up to a full minute window.
	waitDuration *prometheus.HistogramVec

	// inWindow is the number of calls counted in the current window.
	inWindow *prometheus.GaugeVec
}

// NewPrometheusMetrics creates and registers the limiter collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		allowedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outbound_ratelimit_allowed_total",
				Help: "Total number of outbound calls admitted without waiting",
			},
			[]string{"limiter"},
		),
		waitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "outbound_ratelimit_waits_total",
				Help: "Total number of outbound calls delayed by the rate limiter",
			},
			[]string{"limiter"},
		),
		waitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "outbound_ratelimit_wait_seconds",
				Help:    "Time spent waiting for a rate limit slot",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"limiter"},
		),
		inWindow: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "outbound_ratelimit_in_window",
				Help: "Number of calls counted in the current sliding window",
			},
			[]string{"limiter"},
		),
	}

	reg.MustRegister(m.allowedTotal, m.waitsTotal, m.waitDuration, m.inWindow)
	return m
}

// RecordAllowed increments the admitted counter.
func (m *PrometheusMetrics) RecordAllowed(limiter string) {
	m.allowedTotal.WithLabelValues(limiter).Inc()
}

// RecordWait increments the wait counter and observes d.
func (m *PrometheusMetrics) RecordWait(limiter string, d time.Duration) {
	m.waitsTotal.WithLabelValues(limiter).Inc()
	m.waitDuration.WithLabelValues(limiter).Observe(d.Seconds())
}

// SetInWindow sets the in-window gauge.
func (m *PrometheusMetrics) SetInWindow(limiter string, n int) {
	m.inWindow.WithLabelValues(limiter).Set(float64(n))
}
