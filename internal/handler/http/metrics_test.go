package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-pulse/internal/observability/metrics"
	"ai-pulse/internal/observability/slo"
)

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{PathNewsletter, PathNewsletter},
		{PathRSS, PathRSS},
		{PathCacheCleanup, PathCacheCleanup},
		{"/api/newsletter/123", "other"},
		{"/wp-login.php", "other"},
		{"", "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, routeLabel(tt.path), tt.path)
	}
}

func TestMetricsMiddleware_CountsRequests(t *testing.T) {
	h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, PathDigest, "418")
	before := testutil.ToFloat64(counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, PathDigest+"?format=html", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestMetricsMiddleware_UnknownPathsShareLabel(t *testing.T) {
	h := MetricsMiddleware(http.NotFoundHandler())
	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "other", "404")
	before := testutil.ToFloat64(counter)

	for _, p := range []string{"/a", "/b", "/c/d"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}

func TestMetricsMiddleware_ActiveConnections(t *testing.T) {
	var during float64
	before := testutil.ToFloat64(metrics.ActiveConnections)
	h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = testutil.ToFloat64(metrics.ActiveConnections)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, PathHealth, nil))
	assert.Equal(t, before+1, during)
	assert.Equal(t, before, testutil.ToFloat64(metrics.ActiveConnections))
}

func TestMetricsHandler(t *testing.T) {
	MetricsMiddleware(okHandler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, PathStatus, nil))

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathMetrics, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_requests_total")
	assert.Contains(t, string(body), "http_request_duration_seconds")
}

func TestMetricsMiddleware_FeedsSLOTracker(t *testing.T) {
	h := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	before := slo.Default.Report().Requests
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, PathStatus, nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, PathMetrics, nil))

	after := slo.Default.Report().Requests
	if before < slo.DefaultWindow {
		assert.Equal(t, before+1, after, "only the non-metrics request counts")
	}
}
