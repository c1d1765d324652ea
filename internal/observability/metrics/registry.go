// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of in-flight HTTP requests
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Business metrics track newsletter generation
var (
	// GenerationRequestsTotal counts provider calls by provider and status
	GenerationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_requests_total",
			Help: "Total number of content generation provider calls",
		},
		[]string{"provider", "status"}, // status: success, failure
	)

	// GenerationDuration measures one provider call
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Time taken by one content generation provider call",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"provider"},
	)

	// NewsletterFetchTotal counts newsletter fetches by result
	NewsletterFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsletter_fetch_total",
			Help: "Total number of newsletter fetches",
		},
		[]string{"result"}, // result: cache_hit, generated, or an error kind
	)

	// NewsletterFetchDuration measures fetches that reached the provider
	NewsletterFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsletter_fetch_duration_seconds",
			Help:    "Time taken to generate a newsletter, including repair",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// NewsletterRepairsTotal counts JSON repair attempts by result
	NewsletterRepairsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsletter_repairs_total",
			Help: "Total number of malformed JSON repair attempts",
		},
		[]string{"result"}, // result: success, failure
	)

	// NewsletterItems tracks the item count of the last generated newsletter
	NewsletterItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "newsletter_items",
			Help: "Number of items in the most recently generated newsletter",
		},
	)

	// NewsletterGroundingSources tracks the citation count of the last generated newsletter
	NewsletterGroundingSources = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "newsletter_grounding_sources",
			Help: "Number of grounding sources in the most recently generated newsletter",
		},
	)

	// LinkChecksTotal counts link validations by result
	LinkChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "link_checks_total",
			Help: "Total number of item link validations",
		},
		[]string{"result"}, // result: valid, invalid, cached
	)
)

// Database metrics track cache store performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordOperationDuration records the duration of a named store operation
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
