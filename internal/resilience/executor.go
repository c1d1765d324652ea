package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ai-pulse/internal/resilience/circuitbreaker"
	"ai-pulse/internal/resilience/retry"
)

// DefaultTimeout bounds a single attempt when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Options configures one Execute call.
type Options struct {
	// ServiceName selects the circuit breaker and labels logs and errors.
	ServiceName string

	// MaxAttempts overrides the executor's retry.Config when positive.
	MaxAttempts int

	// Timeout bounds each attempt. Zero uses DefaultTimeout.
	Timeout time.Duration
}

// Executor runs operations with a per-attempt timeout, retries with exponential
// backoff and a circuit breaker per service. Safe for concurrent use.
type Executor struct {
	breakers *circuitbreaker.Registry
	retry    retry.Config
	sleep    func(ctx context.Context, d time.Duration) error
	jitter   func(max time.Duration) time.Duration
	logger   *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithRegistry shares a breaker registry between executors.
func WithRegistry(r *circuitbreaker.Registry) Option {
	return func(e *Executor) { e.breakers = r }
}

// WithRetryConfig replaces retry.DefaultConfig.
func WithRetryConfig(cfg retry.Config) Option {
	return func(e *Executor) { e.retry = cfg }
}

// WithSleep replaces the backoff wait, for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) { e.sleep = sleep }
}

// WithJitter replaces the jitter source, for tests.
func WithJitter(jitter func(max time.Duration) time.Duration) Option {
	return func(e *Executor) { e.jitter = jitter }
}

// WithLogger sets the logger used for attempt failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor creates an executor with retry.DefaultConfig and a fresh breaker registry.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		breakers: circuitbreaker.NewRegistry(),
		retry:    retry.DefaultConfig(),
		sleep:    retry.Sleep,
		jitter:   retry.Jitter,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Status reports every service breaker the executor has used.
func (e *Executor) Status() map[string]circuitbreaker.Status {
	return e.breakers.Status()
}

// Breakers exposes the registry, e.g. for manual resets.
func (e *Executor) Breakers() *circuitbreaker.Registry {
	return e.breakers
}

// Execute runs op until it succeeds or the attempts are used up.
//
// Every attempt goes through the breaker for opts.ServiceName; an open breaker fails the
// call at once with an error matching ErrServiceUnavailable. An attempt that outlives
// opts.Timeout fails with an error matching ErrTimeout and its late result is discarded.
// After the last failed attempt the returned *ExhaustedError wraps the last error.
// Cancelling ctx stops retrying and returns ctx.Err().
func Execute[T any](ctx context.Context, e *Executor, opts Options, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	maxAttempts := opts.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = e.retry.MaxAttempts
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	logger := e.logger.With(slog.String("service", opts.ServiceName))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		start := time.Now()
		res, err := e.breakers.Execute(opts.ServiceName, func() (interface{}, error) {
			return attemptWithTimeout(ctx, opts, op)
		})
		attemptDuration.WithLabelValues(opts.ServiceName).Observe(time.Since(start).Seconds())

		if circuitbreaker.IsRejection(err) {
			attemptsTotal.WithLabelValues(opts.ServiceName, "rejected").Inc()
			logger.Warn("call rejected by open circuit breaker")
			return zero, &UnavailableError{Service: opts.ServiceName}
		}
		if err == nil {
			attemptsTotal.WithLabelValues(opts.ServiceName, "success").Inc()
			v, _ := res.(T)
			return v, nil
		}

		lastErr = err
		attemptsTotal.WithLabelValues(opts.ServiceName, outcome(err)).Inc()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		logger.Warn("attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.Any("error", err))

		if attempt < maxAttempts {
			delay := e.retry.Delay(attempt, e.jitter(e.retry.MaxJitter))
			if err := e.sleep(ctx, delay); err != nil {
				return zero, err
			}
		}
	}

	return zero, &ExhaustedError{Attempts: maxAttempts, Last: lastErr}
}

type attemptResult[T any] struct {
	value T
	err   error
}

// attemptWithTimeout races op against opts.Timeout. op receives a context that is
// cancelled when the timeout fires; a result delivered afterwards is dropped.
func attemptWithTimeout[T any](ctx context.Context, opts Options, op func(ctx context.Context) (T, error)) (interface{}, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	done := make(chan attemptResult[T], 1)
	go func() {
		v, err := op(attemptCtx)
		done <- attemptResult[T]{value: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
				return nil, &TimeoutError{Service: opts.ServiceName, Timeout: opts.Timeout}
			}
			return nil, r.err
		}
		return r.value, nil
	case <-attemptCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, &TimeoutError{Service: opts.ServiceName, Timeout: opts.Timeout}
	}
}

func outcome(err error) string {
	if errors.Is(err, ErrTimeout) {
		return "timeout"
	}
	return "failure"
}
