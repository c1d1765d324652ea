package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	pkgconfig "ai-pulse/internal/pkg/config"
)

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	// AllowedOrigins holds exact origins. "*" allows any origin without credentials.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string

	// MaxAge is how long browsers may cache a preflight answer, in seconds.
	MaxAge int
}

// LoadCORSConfig reads CORS_ALLOWED_ORIGINS (comma separated). Without it no
// cross-origin request is allowed.
func LoadCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: pkgconfig.LoadEnvStringList("CORS_ALLOWED_ORIGINS", nil),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		MaxAge:         86400,
	}
}

func (c CORSConfig) allowed(origin string) (allowOrigin string, credentials bool) {
	for _, o := range c.AllowedOrigins {
		switch {
		case o == "*":
			return "*", false
		case strings.EqualFold(o, origin):
			return origin, true
		}
	}
	return "", false
}

// CORS sets CORS headers for allowed origins and answers their preflight requests.
// Requests from other origins pass through without CORS headers, so browsers block them.
func CORS(cfg CORSConfig, logger *slog.Logger) Middleware {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			allowOrigin, credentials := cfg.allowed(origin)
			if allowOrigin == "" {
				logger.Debug("CORS: origin not allowed",
					slog.String("origin", origin),
					slog.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowOrigin)
			h.Add("Vary", "Origin")
			if credentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
