// Package ratelimit provides a client-side sliding-window rate limiter for
// outbound calls to quota-limited APIs.
//
// Callers block in Wait until a slot is free instead of being rejected.
package ratelimit

import (
	"context"
	"time"
)

// Clock provides an abstraction for time operations to enable testing.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// SystemClock is a Clock implementation that uses the system time.
type SystemClock struct{}

// Now returns the current system time.
func (c *SystemClock) Now() time.Time {
	return time.Now()
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Metrics records limiter activity.
//
// Implementations can use Prometheus or be no-ops.
type Metrics interface {
	// RecordAllowed records a call admitted without waiting.
	RecordAllowed(limiter string)

	// RecordWait records that a caller had to wait d for a slot.
	RecordWait(limiter string, d time.Duration)

	// SetInWindow records the number of calls currently counted in the window.
	SetInWindow(limiter string, n int)
}

// NoOpMetrics implements Metrics with no-op methods.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordAllowed(string)             {}
func (NoOpMetrics) RecordWait(string, time.Duration) {}
func (NoOpMetrics) SetInWindow(string, int)          {}
