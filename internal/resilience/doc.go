// Package resilience guards calls to external services.
//
// Execute combines three patterns:
//   - a per-attempt timeout
//   - retries with exponential backoff and jitter (package retry)
//   - a circuit breaker per service name (package circuitbreaker)
//
// Usage Example:
//
//	exec := resilience.NewExecutor(resilience.WithLogger(logger))
//	text, err := resilience.Execute(ctx, exec, resilience.Options{
//	    ServiceName: "Gemini",
//	    Timeout:     45 * time.Second,
//	}, func(ctx context.Context) (string, error) {
//	    return callModel(ctx)
//	})
//	if errors.Is(err, resilience.ErrServiceUnavailable) {
//	    // breaker open
//	}
package resilience
