package resilience

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrServiceUnavailable indicates the circuit breaker for a service is open.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrTimeout indicates a single attempt exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrRetriesExhausted indicates every attempt failed.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// UnavailableError is returned without calling the operation when the breaker is open.
type UnavailableError struct {
	Service string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("Service %s is temporarily unavailable (circuit breaker open)", e.Service)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrServiceUnavailable
}

// TimeoutError is recorded for an attempt that did not finish within Timeout.
type TimeoutError struct {
	Service string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timeout after %dms", e.Service, e.Timeout.Milliseconds())
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// ExhaustedError wraps the last attempt's error after all attempts failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("Failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrRetriesExhausted, e.Last}
}
