package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	_ "ai-pulse/docs" // swagger docs
	"ai-pulse/internal/bootstrap"
	hhttp "ai-pulse/internal/handler/http"
	"ai-pulse/internal/infra/worker"
	"ai-pulse/internal/observability/logging"
	"ai-pulse/internal/observability/slo"
	"ai-pulse/internal/observability/tracing"
	pkgconfig "ai-pulse/internal/pkg/config"
)

// Per client IP limits for the routes that can trigger a generation call, and
// the SLO gauge refresh period.
const (
	clientRateLimit   = 30
	clientRateWindow  = time.Minute
	clientCleanupTick = 5 * time.Minute
	sloInterval       = time.Minute
)

// @title           AI Pulse API
// @version         1.0
// @description     Serves the AI generated healthcare newsletter as JSON, RSS and a weekly digest,
// @description     with cache and circuit breaker status and admin cache controls.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description HS256 JWT with role=admin, sent as "Bearer {token}". Mint one with `pulse token`.

func main() {
	// .env is optional, real environment variables win
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	_, shutdownTracing := tracing.Init()
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shut down tracing", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := bootstrap.LoadConfig(logger, pkgconfig.NewConfigMetrics("api", prometheus.DefaultRegisterer))
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.Any("error", err))
		}
	}()

	go app.Run(ctx)
	go slo.Default.Run(ctx, sloInterval)

	scheduler := startScheduler(ctx, logger, app)
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		scheduler.Stop(stopCtx)
	}()

	runServer(ctx, cancel, logger, app)
}

// startScheduler refreshes the newsletter on REFRESH_SCHEDULE so readers rarely
// wait for a generation call.
func startScheduler(ctx context.Context, logger *slog.Logger, app *bootstrap.App) *worker.Scheduler {
	metrics := worker.NewWorkerMetrics(prometheus.DefaultRegisterer)
	wcfg := worker.LoadConfigFromEnv(logger, metrics.ConfigMetrics)

	job := worker.NewRefreshJob(app.Service, wcfg.RefreshTimeout, metrics, logger)
	scheduler, err := worker.NewScheduler(ctx, wcfg, job, logger)
	if err != nil {
		logger.Error("failed to create refresh scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("refresh scheduler started",
		slog.String("schedule", wcfg.Schedule),
		slog.String("timezone", wcfg.Timezone),
		slog.Time("next_run", scheduler.Next()))

	if wcfg.RunOnStart {
		go func() { _ = job.Run(ctx) }()
	}
	return scheduler
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	return pkgconfig.LoadEnvString("VERSION", "dev")
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, app *bootstrap.App) {
	version := getVersion()

	secret := []byte(os.Getenv("ADMIN_JWT_SECRET"))
	if len(secret) == 0 {
		logger.Warn("ADMIN_JWT_SECRET is not set, admin endpoints are disabled")
	} else if len(secret) < 32 {
		logger.Error("ADMIN_JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}

	limiter := hhttp.NewRateLimiter(clientRateLimit, clientRateWindow)
	go hhttp.StartRateLimitCleanup(ctx, limiter, clientCleanupTick, logger)

	cors := hhttp.LoadCORSConfig()
	logger.Info("CORS configured", slog.Any("allowed_origins", cors.AllowedOrigins))

	security := hhttp.DefaultSecurityConfig()
	security.ReportOnly = pkgconfig.LoadEnvBool("CSP_REPORT_ONLY", false).Value
	if security.ReportOnly {
		logger.Warn("CSP is in report-only mode")
	}

	handler := hhttp.NewRouter(hhttp.RouterConfig{
		Newsletter:  app.NewsletterHandler(),
		Health:      app.Health(version),
		AdminSecret: secret,
		RateLimiter: limiter,
		CORS:        cors,
		Security:    &security,
		Logger:      logger,
	})

	port := pkgconfig.LoadEnvInt("API_PORT", 8080, func(v int) error { return pkgconfig.ValidateIntRange(v, 1, 65535) })
	for _, w := range port.Warnings {
		logger.Warn("Configuration fallback applied", slog.String("warning", w))
	}
	addr := net.JoinHostPort("", strconv.Itoa(port.Value))

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version),
			slog.String("generator", app.Service.ServiceName()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	// stops the janitor, the limiter cleanup and in-flight scheduled runs
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
