package http

import (
	"net/http"

	"ai-pulse/internal/handler/http/respond"
)

// Input limits enforced by InputValidation.
const (
	MaxAuthorizationHeader = 8 << 10
	MaxPathLength          = 2 << 10
	DefaultMaxBodyBytes    = 1 << 20
)

// InputValidation rejects oversized Authorization headers and paths and caps the
// request body at maxBody bytes. The API takes no request bodies today, so the cap is small.
func InputValidation(maxBody int64) Middleware {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.Header.Get("Authorization")) > MaxAuthorizationHeader {
				respond.JSON(w, http.StatusBadRequest, map[string]string{"error": "authorization header too large"})
				return
			}
			if len(r.URL.Path) > MaxPathLength {
				respond.JSON(w, http.StatusRequestURITooLong, map[string]string{"error": "URI too long"})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
			next.ServeHTTP(w, r)
		})
	}
}
