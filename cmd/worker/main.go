package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"ai-pulse/internal/bootstrap"
	"ai-pulse/internal/infra/worker"
	"ai-pulse/internal/observability/logging"
	"ai-pulse/internal/observability/tracing"
	pkgconfig "ai-pulse/internal/pkg/config"
)

// The worker keeps a shared cache warm, so it needs a store other processes can read.
func main() {
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	_, shutdownTracing := tracing.Init()
	defer func() { _ = shutdownTracing(context.Background()) }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.LoadConfig(logger, pkgconfig.NewConfigMetrics("app", prometheus.DefaultRegisterer))
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.CacheStore == bootstrap.StoreMemory {
		logger.Warn("CACHE_STORE=memory: refreshed newsletters are not visible to other processes")
	}

	metrics := worker.NewWorkerMetrics(prometheus.DefaultRegisterer)
	wcfg := worker.LoadConfigFromEnv(logger, metrics.ConfigMetrics)
	logger.Info("worker configuration loaded",
		slog.String("schedule", wcfg.Schedule),
		slog.String("timezone", wcfg.Timezone),
		slog.Duration("refresh_timeout", wcfg.RefreshTimeout),
		slog.Bool("run_on_start", wcfg.RunOnStart),
		slog.Int("health_port", wcfg.HealthPort))

	healthServer := worker.NewHealthServer(fmt.Sprintf(":%d", wcfg.HealthPort), prometheus.DefaultGatherer, logger)
	healthDone := make(chan struct{})
	go func() {
		defer close(healthDone)
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

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

	job := worker.NewRefreshJob(app.Service, wcfg.RefreshTimeout, metrics, logger)
	scheduler, err := worker.NewScheduler(ctx, wcfg, job, logger)
	if err != nil {
		logger.Error("failed to create refresh scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	healthServer.SetReady(true)
	logger.Info("worker started", slog.Time("next_run", scheduler.Next()))

	if wcfg.RunOnStart {
		go func() { _ = job.Run(ctx) }()
	}

	<-ctx.Done()
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)

	stopCtx, cancel := context.WithTimeout(context.Background(), wcfg.RefreshTimeout+5*time.Second)
	defer cancel()
	scheduler.Stop(stopCtx)
	<-healthDone
	logger.Info("worker stopped")
}
