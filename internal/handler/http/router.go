package http

import (
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"ai-pulse/internal/handler/http/auth"
	"ai-pulse/internal/handler/http/requestid"
	"ai-pulse/internal/observability/tracing"
)

// Routes.
const (
	PathNewsletter   = "/api/newsletter"
	PathRefresh      = "/api/newsletter/refresh"
	PathRSS          = "/rss.xml"
	PathDigest       = "/api/digest"
	PathStatus       = "/api/status"
	PathCacheClear   = "/api/cache/clear"
	PathCacheCleanup = "/api/cache/cleanup"
	PathHealth       = "/health"
	PathReady        = "/health/ready"
	PathLive         = "/health/live"
	PathMetrics      = "/metrics"

	// PathSwagger serves the Swagger UI and its doc.json.
	PathSwagger = "/swagger/"
)

// DefaultRequestTimeout bounds a request. It is longer than a generation attempt
// plus one repair call so the handler, not the middleware, reports provider timeouts.
const DefaultRequestTimeout = 3 * time.Minute

// RouterConfig holds everything NewRouter wires together.
type RouterConfig struct {
	Newsletter *NewsletterHandler
	Health     *HealthHandler

	// AdminSecret signs admin tokens. Admin routes answer 503 while it is empty.
	AdminSecret []byte

	// RateLimiter limits generation-triggering requests per client IP. Nil disables it.
	RateLimiter *RateLimiter

	CORS CORSConfig

	// Security selects response security headers. Nil uses DefaultSecurityConfig.
	Security *SecurityConfig

	RequestTimeout time.Duration
	MaxBodyBytes   int64
	Logger         *slog.Logger
	Now            func() time.Time
}

// NewRouter builds the API handler.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Security == nil {
		sec := DefaultSecurityConfig()
		cfg.Security = &sec
	}

	public := func(h http.HandlerFunc) http.Handler {
		if cfg.RateLimiter == nil {
			return h
		}
		return cfg.RateLimiter.Limit(h)
	}
	admin := auth.RequireAdmin(cfg.AdminSecret, cfg.Now)

	nh := cfg.Newsletter
	mux := http.NewServeMux()
	mux.Handle("GET "+PathNewsletter, public(nh.Get))
	mux.Handle("GET "+PathRSS, public(nh.RSS))
	mux.Handle("GET "+PathDigest, public(nh.Digest))
	mux.HandleFunc("GET "+PathStatus, nh.Status)
	mux.Handle("POST "+PathRefresh, admin(http.HandlerFunc(nh.Refresh)))
	mux.Handle("POST "+PathCacheClear, admin(http.HandlerFunc(nh.ClearCache)))
	mux.Handle("POST "+PathCacheCleanup, admin(http.HandlerFunc(nh.CleanupCache)))

	if cfg.Health != nil {
		mux.Handle("GET "+PathHealth, cfg.Health)
		mux.Handle("GET "+PathReady, &ReadyHandler{Health: cfg.Health})
	}
	mux.Handle("GET "+PathLive, LiveHandler{})
	mux.Handle("GET "+PathMetrics, MetricsHandler())
	mux.Handle("GET "+PathSwagger, httpSwagger.WrapHandler)

	return Chain(mux,
		requestid.Middleware,
		tracing.Middleware,
		Logging(cfg.Logger),
		Recover(cfg.Logger),
		MetricsMiddleware,
		CORS(cfg.CORS, cfg.Logger),
		SecurityHeaders(*cfg.Security),
		InputValidation(cfg.MaxBodyBytes),
		Timeout(cfg.RequestTimeout),
	)
}
