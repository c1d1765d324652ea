package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ai-pulse/internal/handler/http/responsewriter"
	"ai-pulse/internal/observability/metrics"
	"ai-pulse/internal/observability/slo"
)

// routeLabels are the only path values used as metric labels; anything else is
// reported as "other" so scanners cannot blow up label cardinality.
var routeLabels = map[string]bool{
	PathNewsletter:   true,
	PathRefresh:      true,
	PathRSS:          true,
	PathDigest:       true,
	PathStatus:       true,
	PathCacheClear:   true,
	PathCacheCleanup: true,
	PathHealth:       true,
	PathReady:        true,
	PathLive:         true,
	PathMetrics:      true,
}

func routeLabel(path string) string {
	if routeLabels[path] {
		return path
	}
	return "other"
}

// MetricsMiddleware records request metrics and feeds the SLO tracker.
// Prometheus scrapes are left out of the SLO window.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.ActiveConnections.Inc()
		defer metrics.ActiveConnections.Dec()

		wrapped := responsewriter.Wrap(w)
		start := time.Now()
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start)

		metrics.RecordHTTPRequest(r.Method, routeLabel(r.URL.Path),
			strconv.Itoa(wrapped.StatusCode()), duration, wrapped.BytesWritten())
		if r.URL.Path != PathMetrics {
			slo.Default.Observe(wrapped.StatusCode(), duration)
		}
	})
}

// MetricsHandler serves the Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
