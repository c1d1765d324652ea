// Package requestid assigns every HTTP request an id that is echoed in the response
// and attached to log records.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	// RequestIDKey is the context key holding the request id.
	RequestIDKey contextKey = "request_id"

	// RequestIDHeader carries the id in requests and responses.
	RequestIDHeader = "X-Request-ID"

	// maxLength bounds client supplied ids.
	maxLength = 128
)

// FromContext returns the request id, or "" when there is none.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID stores id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// New returns a fresh request id.
func New() string {
	return uuid.New().String()
}

// Middleware reuses a well-formed X-Request-ID from the client or generates a new one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !valid(id) {
			id = New()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

// valid accepts printable ASCII without spaces, so ids are safe to log and echo.
func valid(id string) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
