// Package tracing provides OpenTelemetry tracing integration.
//
// Binaries call Init once at startup. HTTP requests are traced by Middleware and
// the newsletter pipeline opens spans with StartSpan around fetches and provider calls.
//
// Example usage:
//
//	import "ai-pulse/internal/observability/tracing"
//
//	func main() {
//	    _, shutdown := tracing.Init()
//	    defer shutdown(context.Background())
//	}
//
//	func fetch(ctx context.Context) (err error) {
//	    ctx, span := tracing.StartSpan(ctx, "newsletter.fetch")
//	    defer func() { tracing.EndSpan(span, err) }()
//	    // ...
//	}
package tracing
