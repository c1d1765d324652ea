package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Config configures a SlidingWindow.
type Config struct {
	// Limit is the maximum number of calls in any Window.
	Limit int

	// Window is the length of the sliding window.
	Window time.Duration

	// Buffer is added to every computed wait so the woken caller lands just past
	// the moment the oldest call leaves the window.
	Buffer time.Duration
}

// DefaultConfig returns the generative model quota: 50 calls per minute.
func DefaultConfig() Config {
	return Config{
		Limit:  50,
		Window: time.Minute,
		Buffer: 100 * time.Millisecond,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", c.Limit)
	}
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %v", c.Window)
	}
	if c.Buffer < 0 {
		return fmt.Errorf("buffer must not be negative, got %v", c.Buffer)
	}
	return nil
}

// SlidingWindow admits at most Limit calls in any Window, tracked by call timestamp.
// It is safe for concurrent use.
type SlidingWindow struct {
	name    string
	cfg     Config
	clock   Clock
	sleep   SleepFunc
	metrics Metrics
	logger  *slog.Logger

	mu       sync.Mutex
	requests []time.Time
}

// Option configures a SlidingWindow.
type Option func(*SlidingWindow)

// WithClock overrides the system clock.
func WithClock(c Clock) Option {
	return func(l *SlidingWindow) { l.clock = c }
}

// WithSleep overrides how Wait blocks.
func WithSleep(s SleepFunc) Option {
	return func(l *SlidingWindow) { l.sleep = s }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(l *SlidingWindow) { l.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *SlidingWindow) { l.logger = logger }
}

// NewSlidingWindow creates a limiter. An invalid cfg falls back to DefaultConfig.
func NewSlidingWindow(name string, cfg Config, opts ...Option) *SlidingWindow {
	l := &SlidingWindow{
		name:    name,
		cfg:     cfg,
		clock:   &SystemClock{},
		sleep:   sleepContext,
		metrics: NoOpMetrics{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := cfg.Validate(); err != nil {
		l.logger.Warn("invalid rate limit config, using defaults",
			slog.String("limiter", name),
			slog.Any("error", err))
		l.cfg = DefaultConfig()
	}
	return l
}

// Wait blocks until a call may proceed and records it. After every sleep the
// window is checked again, since other callers may have taken the freed slot.
func (l *SlidingWindow) Wait(ctx context.Context) error {
	waited := time.Duration(0)
	for {
		wait, ok := l.reserve()
		if ok {
			if waited > 0 {
				l.metrics.RecordWait(l.name, waited)
			} else {
				l.metrics.RecordAllowed(l.name)
			}
			return nil
		}

		l.logger.Info("rate limit reached, waiting",
			slog.String("limiter", l.name),
			slog.Duration("wait", wait))
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
		waited += wait
	}
}

// Allow records a call and reports true when a slot is free. Otherwise it returns
// false and how long to wait before trying again.
func (l *SlidingWindow) Allow() (bool, time.Duration) {
	wait, ok := l.reserve()
	return ok, wait
}

// InWindow returns the number of calls counted in the current window.
func (l *SlidingWindow) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(l.clock.Now())
	return len(l.requests)
}

func (l *SlidingWindow) reserve() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.pruneLocked(now)

	if len(l.requests) >= l.cfg.Limit {
		// requests is in arrival order, so the first one is the oldest.
		oldest := l.requests[0]
		return l.cfg.Window - now.Sub(oldest) + l.cfg.Buffer, false
	}

	l.requests = append(l.requests, now)
	l.metrics.SetInWindow(l.name, len(l.requests))
	return 0, true
}

// pruneLocked drops timestamps at least Window old. l.mu must be held.
func (l *SlidingWindow) pruneLocked(now time.Time) {
	i := 0
	for i < len(l.requests) && now.Sub(l.requests[i]) >= l.cfg.Window {
		i++
	}
	if i > 0 {
		l.requests = append(l.requests[:0], l.requests[i:]...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
