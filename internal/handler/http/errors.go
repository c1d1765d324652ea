package http

import (
	"context"
	"errors"
	"net/http"

	"ai-pulse/internal/handler/http/respond"
	"ai-pulse/internal/resilience"
	"ai-pulse/internal/usecase/newsletter"
)

// RetryAfterUnavailable is advertised while the provider breaker is open.
const RetryAfterUnavailable = "300"

const msgCancelled = "The request was cancelled before the report was ready."

// fetchStatus maps a newsletter failure to an HTTP status. Problems with what the
// provider returned are 502, an open breaker is 503 and timeouts are 504.
func fetchStatus(err error) int {
	switch {
	case errors.Is(err, newsletter.ErrProviderBlocked),
		errors.Is(err, newsletter.ErrProviderIncomplete),
		errors.Is(err, newsletter.ErrExtractionFailed),
		errors.Is(err, newsletter.ErrRepairFailed),
		errors.Is(err, newsletter.ErrSchemaInvalid):
		return http.StatusBadGateway
	case errors.Is(err, resilience.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, resilience.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, resilience.ErrRetriesExhausted):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, newsletter.ErrUnknown):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeFetchError sends the user-facing message of a newsletter failure.
func writeFetchError(w http.ResponseWriter, err error) {
	code := fetchStatus(err)
	if code == http.StatusServiceUnavailable && errors.Is(err, resilience.ErrServiceUnavailable) {
		w.Header().Set("Retry-After", RetryAfterUnavailable)
	}

	msg := msgCancelled
	if code == http.StatusGatewayTimeout {
		msg = "The request timed out."
	}
	// Provider messages can echo request URLs or keys.
	var fe *newsletter.Error
	if errors.As(err, &fe) {
		msg = respond.SanitizeError(fe)
	}
	respond.Fail(w, code, respond.NewAppError(code, msg, err))
}
