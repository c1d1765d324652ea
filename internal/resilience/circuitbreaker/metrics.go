package circuitbreaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	circuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"circuit"},
	)

	circuitOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_opened_total",
			Help: "Total number of times a circuit breaker tripped open",
		},
		[]string{"circuit"},
	)

	circuitAutoResets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_auto_resets_total",
			Help: "Total number of circuit breakers reset after the cool-down elapsed",
		},
		[]string{"circuit"},
	)
)
