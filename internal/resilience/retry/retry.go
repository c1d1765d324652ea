// Package retry provides exponential backoff with jitter for retrying failed operations.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Config holds the configuration for retry logic.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first one
	MaxAttempts int

	// BaseDelay is the delay after the first failed attempt, before jitter
	BaseDelay time.Duration

	// MaxDelay caps every delay, jitter included
	MaxDelay time.Duration

	// MaxJitter is the upper bound (exclusive) of the random delay added to each backoff
	MaxJitter time.Duration
}

// DefaultConfig returns a default retry configuration: 3 attempts, 1s base delay,
// 10s cap and up to 1s of jitter.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    10 * time.Second,
		MaxJitter:   1 * time.Second,
	}
}

// GenerationConfig returns configuration for generative model calls.
// Attempts are kept low because every call is billed.
func GenerationConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 2
	return cfg
}

// Backoff returns the exponential part of the delay after failed attempt n (1-based):
// BaseDelay * 2^(n-1), capped at MaxDelay.
func (c Config) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := c.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if c.MaxDelay > 0 && d >= c.MaxDelay {
			return c.MaxDelay
		}
	}
	if c.MaxDelay > 0 && d > c.MaxDelay {
		return c.MaxDelay
	}
	return d
}

// Delay returns min(Backoff(attempt) + jitter, MaxDelay).
func (c Config) Delay(attempt int, jitter time.Duration) time.Duration {
	d := c.Backoff(attempt) + jitter
	if c.MaxDelay > 0 && d > c.MaxDelay {
		return c.MaxDelay
	}
	return d
}

// Jitter returns a random duration in [0, max).
func Jitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	// #nosec G404 -- Using math/rand is acceptable for jitter calculation.
	// Cryptographic randomness is not required for retry backoff jitter.
	return time.Duration(rand.Int63n(int64(max)))
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
