package resilience

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilience_attempts_total",
			Help: "Total number of guarded call attempts by service and outcome",
		},
		[]string{"service", "outcome"},
	)

	attemptDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resilience_attempt_duration_seconds",
			Help:    "Duration of a single guarded call attempt",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 45, 60},
		},
		[]string{"service"},
	)
)
