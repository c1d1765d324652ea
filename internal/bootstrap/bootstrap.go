// Package bootstrap builds the object graph shared by the API, the worker and the CLI:
// generator, resilience executor, rate limiter, newsletter cache with its store, the
// newsletter service and the optional link checker.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"ai-pulse/internal/cache"
	"ai-pulse/internal/config"
	"ai-pulse/internal/domain/entity"
	handler "ai-pulse/internal/handler/http"
	redisstore "ai-pulse/internal/infra/adapter/persistence/redis"
	sqlitestore "ai-pulse/internal/infra/adapter/persistence/sqlite"
	"ai-pulse/internal/infra/db"
	"ai-pulse/internal/infra/generator"
	"ai-pulse/internal/infra/linkcheck"
	"ai-pulse/internal/observability/slo"
	"ai-pulse/internal/resilience"
	"ai-pulse/internal/usecase/newsletter"
	"ai-pulse/pkg/ratelimit"
)

// App is the wired application.
type App struct {
	Config    *Config
	Generator generator.Generator
	Executor  *resilience.Executor
	Limiter   *ratelimit.SlidingWindow
	Cache     *cache.Cache[*entity.Newsletter]
	Service   *newsletter.Service

	// LinkChecker is nil unless link checking is enabled.
	LinkChecker *linkcheck.Checker

	// DB and Redis are set for the matching cache store only.
	DB    *sql.DB
	Redis *redisstore.CacheStore

	logger *slog.Logger
}

type options struct {
	gen        generator.Generator
	registerer prometheus.Registerer
	forceLinks bool
}

// Option customizes New.
type Option func(*options)

// WithGenerator uses g instead of building one from the configuration.
func WithGenerator(g generator.Generator) Option {
	return func(o *options) { o.gen = g }
}

// WithRegisterer registers the rate limiter metrics on r instead of the default registry.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *options) { o.registerer = r }
}

// WithLinkCheck enables link checking regardless of the configuration.
func WithLinkCheck() Option {
	return func(o *options) { o.forceLinks = true }
}

// New wires the application. The caller must Close the returned App.
func New(ctx context.Context, cfg *Config, logger *slog.Logger, opts ...Option) (*App, error) {
	o := options{registerer: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{Config: cfg, logger: logger}

	store, err := app.openStore(ctx)
	if err != nil {
		return nil, err
	}

	prompt, err := loadPrompt(cfg.PromptPath)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Generator = o.gen
	if app.Generator == nil {
		if app.Generator, err = generator.New(ctx, cfg.Generator, logger); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("create generator: %w", err)
		}
	}

	app.Executor = resilience.NewExecutor(resilience.WithLogger(logger))
	app.Limiter = ratelimit.NewSlidingWindow("generator",
		ratelimit.Config{
			Limit:  cfg.Generator.RateLimit,
			Window: cfg.Generator.RateWindow,
			Buffer: ratelimit.DefaultConfig().Buffer,
		},
		ratelimit.WithMetrics(ratelimit.NewPrometheusMetrics(o.registerer)),
		ratelimit.WithLogger(logger))

	app.Cache = cache.New[*entity.Newsletter](ctx, cache.Options{
		Name:   "newsletter",
		Store:  store,
		Logger: logger,
	})

	var svcOpts []newsletter.Option
	svcOpts = append(svcOpts, newsletter.WithLogger(logger))
	if cfg.LinkCheck || o.forceLinks {
		app.LinkChecker = linkcheck.New(ctx, linkcheck.Config{}, linkcheck.WithLogger(logger))
		svcOpts = append(svcOpts, newsletter.WithPostProcessor(app.LinkChecker.Filter))
	}

	app.Service = newsletter.NewService(app.Generator, app.Cache, app.Executor, app.Limiter, prompt,
		newsletter.Config{
			Timeout:     cfg.Generator.Timeout,
			MaxAttempts: cfg.Generator.MaxAttempts,
			Search:      true,
		}, svcOpts...)

	logger.Info("application wired",
		slog.String("generator", app.Generator.Name()),
		slog.String("cache_store", cfg.CacheStore),
		slog.Bool("link_check", app.LinkChecker != nil),
		slog.Int("rate_limit", cfg.Generator.RateLimit),
		slog.Duration("rate_window", cfg.Generator.RateWindow))
	return app, nil
}

func (a *App) openStore(ctx context.Context) (cache.Store, error) {
	switch a.Config.CacheStore {
	case StoreSQLite:
		database, err := db.OpenSQLite(ctx, a.Config.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.DB = database
		return sqlitestore.NewCacheStore(database), nil
	case StoreRedis:
		rs, err := redisstore.NewCacheStoreWithURL(ctx, a.Config.RedisURL)
		if err != nil {
			return nil, err
		}
		a.Redis = rs
		return rs, nil
	default:
		return nil, nil
	}
}

func loadPrompt(path string) (string, error) {
	pc, err := config.LoadPromptConfig(path)
	if err != nil {
		return "", fmt.Errorf("load prompt config: %w", err)
	}
	return newsletter.BuildPrompt(pc)
}

// Health builds the health handler for the configured dependencies.
func (a *App) Health(version string) *handler.HealthHandler {
	h := &handler.HealthHandler{
		Version:  version,
		DB:       a.DB,
		Pingers:  map[string]handler.Pinger{},
		Breakers: a.Executor,
	}
	if a.Redis != nil {
		h.Pingers["redis"] = a.Redis
	}
	return h
}

// NewsletterHandler builds the newsletter endpoints around the wired service.
func (a *App) NewsletterHandler() *handler.NewsletterHandler {
	h := &handler.NewsletterHandler{
		Service:         a.Service,
		Cache:           a.Cache,
		Breakers:        a.Executor,
		Limiter:         a.Limiter,
		LimiterCapacity: a.Config.Generator.RateLimit,
		Site:            a.Config.Site,
		SLO:             slo.Default,
	}
	if a.LinkChecker != nil {
		h.LinkCache = a.LinkChecker
	}
	return h
}

// Run starts the cache janitor and blocks until ctx is done.
func (a *App) Run(ctx context.Context) {
	a.Cache.Run(ctx, cache.CleanupInterval, cache.SnapshotInterval)
}

// Close saves a final cache snapshot and releases the store connections.
func (a *App) Close() error {
	if a.Cache != nil {
		a.Cache.SaveSnapshot(context.Background())
	}
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}
