// Package auth guards the admin endpoints with HS256 bearer tokens carrying a role claim.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ai-pulse/internal/handler/http/requestid"
	"ai-pulse/internal/handler/http/respond"
)

type ctxKey string

const ctxUser ctxKey = "user"

// UserFromContext returns the subject of the authenticated admin token, if any.
func UserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(ctxUser).(string)
	return user, ok
}

// RequireAdmin rejects requests without a valid admin token. An empty secret
// disables the protected endpoints entirely.
func RequireAdmin(secret []byte, now func() time.Time) func(http.Handler) http.Handler {
	if now == nil {
		now = time.Now
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(secret) == 0 {
				recordDecision("disabled")
				respond.JSON(w, http.StatusServiceUnavailable,
					map[string]string{"error": "admin API is not configured"})
				return
			}

			claims, err := ParseToken(r.Header.Get("Authorization"), secret, now)
			if err != nil {
				recordDecision("unauthorized")
				w.Header().Set("WWW-Authenticate", `Bearer realm="ai-pulse"`)
				respond.SafeError(w, http.StatusUnauthorized, fmt.Errorf("unauthorized: %w", err))
				return
			}
			if claims.Role != RoleAdmin {
				recordDecision("forbidden")
				slog.WarnContext(r.Context(), "forbidden admin request",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("subject", claims.Subject),
					slog.String("role", claims.Role),
					slog.String("path", r.URL.Path))
				respond.SafeError(w, http.StatusForbidden, errors.New("forbidden"))
				return
			}

			recordDecision("allowed")
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUser, claims.Subject)))
		})
	}
}
