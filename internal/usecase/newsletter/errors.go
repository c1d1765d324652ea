package newsletter

import (
	"context"
	"errors"
	"strings"

	"ai-pulse/internal/resilience"
)

// Sentinel errors for newsletter generation. Errors returned by Fetch match one of
// these, a resilience sentinel, or a context error.
var (
	// ErrProviderBlocked indicates the provider returned no candidates, usually
	// because the prompt was blocked.
	ErrProviderBlocked = errors.New("provider blocked the request")

	// ErrProviderIncomplete indicates a candidate without usable text.
	ErrProviderIncomplete = errors.New("provider response incomplete")

	// ErrExtractionFailed indicates no JSON object delimiters were found.
	ErrExtractionFailed = errors.New("no JSON object in response")

	// ErrParseFailed indicates the extracted text is not valid JSON.
	// Fetch recovers from it with one repair call and never returns it.
	ErrParseFailed = errors.New("malformed JSON")

	// ErrSchemaInvalid indicates valid JSON that does not match the newsletter schema.
	ErrSchemaInvalid = errors.New("newsletter does not match schema")

	// ErrRepairFailed indicates the repair call could not produce valid JSON.
	ErrRepairFailed = errors.New("JSON repair failed")

	// ErrUnknown classifies failures that match no other kind.
	ErrUnknown = errors.New("unclassified generation failure")
)

// User-facing messages.
const (
	msgNoReport       = "The AI analyst did not produce a report."
	msgEmptyResponse  = "The AI response was empty."
	msgNoJSON         = "Failed to find a valid JSON object in the AI response."
	msgRepairFailed   = "The AI analyst returned a report with a formatting issue. The automatic repair failed. Please try refreshing the page."
	msgSchemaInvalid  = "The AI analyst returned a report in an unexpected format."
	msgSourcesTrouble = "The AI analyst is having trouble reaching its sources. Please try again in a moment."
	msgUnknown        = "An unknown error occurred while generating the report."
)

// Error is a failed fetch. Message is safe to show to end users; errors.Is matches
// both Kind and anything in the Err chain.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

// userError converts any failure into an *Error carrying a friendly message.
// Context cancellation is returned unchanged so callers can tell it apart.
func userError(err error) error {
	if err == nil {
		return nil
	}
	if isContextErr(err) {
		return err
	}

	var fe *Error
	if errors.As(err, &fe) {
		out := *fe
		out.Message = friendly(fe.Message)
		return &out
	}

	msg := err.Error()
	if msg == "" {
		msg = msgUnknown
	}
	return newError(kindOf(err), friendly(msg), err)
}

// cause returns the underlying error of an *Error, or err itself.
func cause(err error) error {
	var fe *Error
	if errors.As(err, &fe) && fe.Err != nil {
		return fe.Err
	}
	return err
}

func isContextErr(err error) bool {
	if errors.Is(err, resilience.ErrTimeout) {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// friendly rewrites provider messages that are meaningless to readers.
func friendly(msg string) string {
	if strings.Contains(msg, "INTERNAL") {
		return msgSourcesTrouble
	}
	return msg
}

func kindOf(err error) error {
	switch {
	case errors.Is(err, resilience.ErrServiceUnavailable):
		return resilience.ErrServiceUnavailable
	case errors.Is(err, resilience.ErrRetriesExhausted):
		return resilience.ErrRetriesExhausted
	case errors.Is(err, resilience.ErrTimeout):
		return resilience.ErrTimeout
	default:
		return ErrUnknown
	}
}

// KindLabel names the kind of a fetch error for metrics and logs.
func KindLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrProviderBlocked):
		return "provider_blocked"
	case errors.Is(err, ErrProviderIncomplete):
		return "provider_incomplete"
	case errors.Is(err, ErrExtractionFailed):
		return "extraction_failed"
	case errors.Is(err, ErrRepairFailed):
		return "repair_failed"
	case errors.Is(err, ErrSchemaInvalid):
		return "schema_invalid"
	case errors.Is(err, resilience.ErrServiceUnavailable):
		return "service_unavailable"
	case errors.Is(err, resilience.ErrRetriesExhausted):
		return "retries_exhausted"
	case errors.Is(err, resilience.ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, ErrUnknown):
		return "unknown"
	default:
		return "unknown"
	}
}
