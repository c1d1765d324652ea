package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		expected string
	}{
		{"with request ID", WithRequestID(context.Background(), "test-id-123"), "test-id-123"},
		{"without request ID", context.Background(), ""},
		{"with invalid type in context", context.WithValue(context.Background(), RequestIDKey, 12345), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromContext(tt.ctx))
		})
	}
}

func serve(t *testing.T, header string) (seen string, rec *httptest.ResponseRecorder) {
	t.Helper()
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/newsletter", nil)
	if header != "" {
		req.Header.Set(RequestIDHeader, header)
	}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return seen, rec
}

func TestMiddleware_KeepsClientID(t *testing.T) {
	seen, rec := serve(t, "client-id-456")

	assert.Equal(t, "client-id-456", seen)
	assert.Equal(t, "client-id-456", rec.Header().Get(RequestIDHeader))
}

func TestMiddleware_GeneratesID(t *testing.T) {
	seen, rec := serve(t, "")

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestMiddleware_ReplacesMalformedID(t *testing.T) {
	for _, bad := range []string{"has space", "tab\there", strings.Repeat("x", maxLength+1), "naïve"} {
		seen, _ := serve(t, bad)
		assert.NotEqual(t, bad, seen)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err, "input %q", bad)
	}
}
