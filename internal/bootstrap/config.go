package bootstrap

import (
	"fmt"
	"log/slog"
	"strings"

	"ai-pulse/internal/config"
	"ai-pulse/internal/infra/render"
	pkgconfig "ai-pulse/internal/pkg/config"
)

// Cache store backends accepted by CACHE_STORE.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config is the process-wide configuration shared by every binary.
type Config struct {
	Generator *config.GeneratorConfig

	// PromptPath is an optional YAML file overriding the default prompt.
	PromptPath string

	// CacheStore selects where cache entries are persisted. Default: memory
	CacheStore string
	SQLitePath string
	RedisURL   string

	// LinkCheck drops items with dead links before a newsletter is cached.
	LinkCheck bool

	Site render.Site
}

// LoadConfig reads the shared configuration from the environment. Invalid optional
// values fall back to defaults and are logged; a missing API key or an unusable
// cache store selection is an error.
func LoadConfig(logger *slog.Logger, metrics *pkgconfig.ConfigMetrics) (*Config, error) {
	gen, warnings, err := config.LoadGeneratorConfig(metrics)
	if err != nil {
		return nil, err
	}

	store := pkgconfig.LoadEnvWithFallback("CACHE_STORE", StoreMemory,
		pkgconfig.OneOf(StoreMemory, StoreSQLite, StoreRedis))
	warnings = append(warnings, pkgconfig.Record(metrics, "cache_store", store)...)

	linkCheck := pkgconfig.LoadEnvBool("LINKCHECK_ENABLED", false)
	warnings = append(warnings, pkgconfig.Record(metrics, "linkcheck_enabled", linkCheck)...)

	site := render.DefaultSite()
	baseURL := pkgconfig.LoadEnvWithFallback("PUBLIC_BASE_URL", site.BaseURL, pkgconfig.ValidateURL("http", "https"))
	warnings = append(warnings, pkgconfig.Record(metrics, "public_base_url", baseURL)...)
	site.BaseURL = baseURL.Value
	site.Title = pkgconfig.LoadEnvString("SITE_TITLE", site.Title)

	for _, w := range warnings {
		logger.Warn("Configuration fallback applied", slog.String("warning", w))
	}

	cfg := &Config{
		Generator:  gen,
		PromptPath: pkgconfig.LoadEnvString("PROMPT_CONFIG_PATH", ""),
		CacheStore: strings.ToLower(store.Value),
		SQLitePath: pkgconfig.LoadEnvString("CACHE_SQLITE_PATH", ""),
		RedisURL:   pkgconfig.LoadEnvString("REDIS_URL", ""),
		LinkCheck:  linkCheck.Value,
		Site:       site,
	}
	if cfg.CacheStore == StoreRedis && cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required when CACHE_STORE=redis")
	}
	return cfg, nil
}
