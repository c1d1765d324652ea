// Package slo derives service level indicators from recent API requests and
// exports them as gauges.
package slo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets for the public API.
const (
	// AvailabilitySLO is the target share of non-5xx responses, in percent.
	AvailabilitySLO = 99.5

	// LatencyP95SLO is the p95 target in seconds. Most reads are served from the cache.
	LatencyP95SLO = 1.0

	// LatencyP99SLO is the p99 target in seconds. It covers a cache miss that waits
	// for a generation call.
	LatencyP99SLO = 60.0

	// ErrorRateSLO is the maximum acceptable 5xx ratio.
	ErrorRateSLO = 0.005
)

// These gauges are refreshed by Tracker.Run and Tracker.Report.
var (
	// SLOAvailability is the non-5xx ratio (0-1) over the tracker window.
	SLOAvailability = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_availability_ratio",
			Help: "Current availability ratio (0-1), target: 0.995",
		},
	)

	SLOLatencyP95 = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_latency_p95_seconds",
			Help: "Current p95 latency in seconds, target: 1",
		},
	)

	SLOLatencyP99 = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_latency_p99_seconds",
			Help: "Current p99 latency in seconds, target: 60",
		},
	)

	// SLOErrorRate is the 5xx ratio (0-1) over the tracker window.
	SLOErrorRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_error_rate_ratio",
			Help: "Current error rate ratio (0-1), target: 0.005",
		},
	)
)

// UpdateAvailability sets the availability gauge.
func UpdateAvailability(ratio float64) {
	SLOAvailability.Set(ratio)
}

// UpdateLatencyP95 sets the p95 latency gauge.
func UpdateLatencyP95(seconds float64) {
	SLOLatencyP95.Set(seconds)
}

// UpdateLatencyP99 sets the p99 latency gauge.
func UpdateLatencyP99(seconds float64) {
	SLOLatencyP99.Set(seconds)
}

// UpdateErrorRate sets the error rate gauge.
func UpdateErrorRate(ratio float64) {
	SLOErrorRate.Set(ratio)
}
