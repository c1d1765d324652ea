// Package observability groups the logging, metrics and tracing packages shared by
// the API, the worker and the CLI.
//
// Subpackages:
//   - logging: slog construction and context propagation
//   - metrics: Prometheus metrics for HTTP, generation and the cache store
//   - tracing: OpenTelemetry provider setup, HTTP middleware and span helpers
package observability
