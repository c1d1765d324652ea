package worker

import (
	"github.com/prometheus/client_golang/prometheus"

	"ai-pulse/internal/pkg/config"
)

// WorkerMetrics tracks refresh job runs and the worker's configuration loading.
//
// Metrics:
//   - worker_refresh_runs_total{status}: runs by status (started, success, failure)
//   - worker_refresh_duration_seconds: duration of each run
//   - worker_refresh_items: items in the last generated newsletter
//   - worker_refresh_last_success_timestamp: Unix time of the last success
//   - worker_config_*: see config.ConfigMetrics
type WorkerMetrics struct {
	*config.ConfigMetrics

	RunsTotal            *prometheus.CounterVec
	DurationSeconds      prometheus.Histogram
	Items                prometheus.Gauge
	LastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates the worker metrics and registers them on reg.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	m := &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker", reg),

		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_refresh_runs_total",
			Help: "Total number of refresh job runs by status",
		}, []string{"status"}),

		DurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_refresh_duration_seconds",
			Help:    "Duration of refresh job runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 900},
		}),

		Items: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "worker_refresh_items",
			Help: "Number of items in the last refreshed newsletter",
		}),

		LastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "worker_refresh_last_success_timestamp",
			Help: "Unix timestamp of the last successful refresh",
		}),
	}
	reg.MustRegister(m.RunsTotal, m.DurationSeconds, m.Items, m.LastSuccessTimestamp)
	return m
}

// RecordJobRun counts a run with the given status.
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.RunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes a run duration.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.DurationSeconds.Observe(seconds)
}

// RecordSuccess records the item count of a refreshed newsletter and the success time.
func (m *WorkerMetrics) RecordSuccess(items int) {
	m.Items.Set(float64(items))
	m.LastSuccessTimestamp.SetToCurrentTime()
}
