package http

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"ai-pulse/internal/handler/http/requestid"
	"ai-pulse/internal/handler/http/respond"
	"ai-pulse/internal/handler/http/responsewriter"
	"ai-pulse/internal/observability/logging"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies mw so that the first one listed is the outermost.
func Chain(h http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Logging logs one record per request. It also stores a request-scoped logger in the
// context for handlers to pick up with logging.FromContext.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := responsewriter.Wrap(w)

			reqLogger := logging.WithRequestID(r.Context(), logger)
			next.ServeHTTP(wrapped, r.WithContext(logging.WithLogger(r.Context(), reqLogger)))

			duration := time.Since(start)
			level := slog.LevelInfo
			switch {
			case wrapped.StatusCode() >= 500:
				level = slog.LevelError
			case wrapped.StatusCode() >= 400:
				level = slog.LevelWarn
			}

			reqLogger.LogAttrs(r.Context(), level, "request completed",
				slog.String("trace_id", trace.SpanFromContext(r.Context()).SpanContext().TraceID().String()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.Int("status", wrapped.StatusCode()),
				slog.Int("bytes", wrapped.BytesWritten()),
				slog.Duration("duration", duration),
			)
		})
	}
}

// Recover turns a panic into a 500 response and logs it with the stack.
// http.ErrAbortHandler is re-raised so the server can abort the connection.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				logger.Error("panic recovered",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
				respond.SafeError(w, http.StatusInternalServerError, errors.New("internal error"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type requestRecord struct {
	mu         sync.Mutex
	timestamps []time.Time
}

// RateLimiter is a per client IP sliding-window limiter for endpoints that can
// trigger a generation call.
type RateLimiter struct {
	records sync.Map // map[string]*requestRecord
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter allows limit requests per window and client IP.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{limit: limit, window: window, now: time.Now}
}

// Limit answers 429 with Retry-After once a client exceeds the limit.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := rl.allow(extractIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Round(time.Second)/time.Second)+1))
			respond.JSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allow records the request when it fits in the window. Otherwise it returns how long
// until the oldest request leaves the window.
func (rl *RateLimiter) allow(ip string) (bool, time.Duration) {
	now := rl.now()
	val, _ := rl.records.LoadOrStore(ip, &requestRecord{})
	record := val.(*requestRecord)

	record.mu.Lock()
	defer record.mu.Unlock()

	record.timestamps = pruned(record.timestamps, now.Add(-rl.window))
	if len(record.timestamps) >= rl.limit {
		return false, record.timestamps[0].Add(rl.window).Sub(now)
	}
	record.timestamps = append(record.timestamps, now)
	return true, 0
}

// Cleanup forgets clients with no request inside the window and returns how many
// were removed.
func (rl *RateLimiter) Cleanup() int {
	cutoff := rl.now().Add(-rl.window)
	removed := 0
	rl.records.Range(func(key, value any) bool {
		record := value.(*requestRecord)
		record.mu.Lock()
		record.timestamps = pruned(record.timestamps, cutoff)
		empty := len(record.timestamps) == 0
		record.mu.Unlock()
		if empty {
			rl.records.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Clients returns the number of tracked client IPs.
func (rl *RateLimiter) Clients() int {
	n := 0
	rl.records.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// pruned drops timestamps at or before cutoff. Timestamps are in ascending order.
func pruned(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}

// extractIP prefers the first X-Forwarded-For address, then X-Real-IP, then RemoteAddr.
// The API is expected to run behind a proxy that sets these headers.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := parseFirstIP(xff); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(xri); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func parseFirstIP(s string) string {
	first, _, _ := strings.Cut(s, ",")
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return ip.String()
	}
	return ""
}
