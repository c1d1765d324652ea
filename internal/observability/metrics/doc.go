// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes the application metrics:
//   - HTTP request metrics (duration, count, size)
//   - Business metrics (provider calls, newsletter fetches, repairs, link checks)
//   - Cache store query metrics
//
// All metrics are registered with the Prometheus default registry and exposed via
// the /metrics endpoint.
//
// Example usage:
//
//	import "ai-pulse/internal/observability/metrics"
//
//	func generate(ctx context.Context) {
//	    start := time.Now()
//	    resp, err := provider.Generate(ctx, req)
//	    metrics.RecordGeneration("Gemini API", err == nil, time.Since(start))
//	}
package metrics
