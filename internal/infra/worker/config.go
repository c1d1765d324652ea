package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ai-pulse/internal/pkg/config"
)

// WorkerConfig controls when and how long the scheduled refresh runs.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// Invalid environment values never stop the worker; they fall back to the default
// and are reported as warnings and config metrics.
type WorkerConfig struct {
	// Schedule is the cron expression for the refresh job.
	// Default: "*/30 * * * *"
	Schedule string

	// Timezone is the IANA timezone the schedule is evaluated in.
	// Default: "UTC"
	Timezone string

	// RefreshTimeout bounds one refresh: both generation attempts, the backoff
	// between them and the repair call.
	// Range: 10s-30m. Default: 3 minutes
	RefreshTimeout time.Duration

	// RunOnStart refreshes once right after startup so a cold cache is warmed
	// before the first scheduled run.
	RunOnStart bool

	// HealthPort is the port of the health and metrics server.
	// Range: 1024-65535. Default: 9091
	HealthPort int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		Schedule:       "*/30 * * * *",
		Timezone:       "UTC",
		RefreshTimeout: 3 * time.Minute,
		RunOnStart:     true,
		HealthPort:     9091,
	}
}

// Validate checks every field and reports all problems together.
func (c *WorkerConfig) Validate() error {
	var errs []error
	if err := config.ValidateCronSchedule(c.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.RefreshTimeout, 10*time.Second, 30*time.Minute); err != nil {
		errs = append(errs, fmt.Errorf("refresh timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	return errors.Join(errs...)
}

// Location returns the schedule's timezone. It falls back to UTC for names that do
// not load, which Validate would have reported.
func (c *WorkerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfigFromEnv loads the worker configuration, falling back to defaults field by
// field. It never fails.
//
// Environment variables:
//   - REFRESH_SCHEDULE: cron expression (default: "*/30 * * * *")
//   - REFRESH_TIMEZONE: IANA timezone name (default: "UTC")
//   - REFRESH_TIMEOUT: duration, e.g. "2m" (default: 2 minutes)
//   - REFRESH_ON_START: bool (default: true)
//   - WORKER_HEALTH_PORT: integer 1024-65535 (default: 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *config.ConfigMetrics) *WorkerConfig {
	cfg := DefaultConfig()
	var warnings []string

	schedule := config.LoadEnvWithFallback("REFRESH_SCHEDULE", cfg.Schedule, config.ValidateCronSchedule)
	cfg.Schedule = schedule.Value
	warnings = append(warnings, config.Record(metrics, "refresh_schedule", schedule)...)

	tz := config.LoadEnvWithFallback("REFRESH_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = tz.Value
	warnings = append(warnings, config.Record(metrics, "refresh_timezone", tz)...)

	timeout := config.LoadEnvDuration("REFRESH_TIMEOUT", cfg.RefreshTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 10*time.Second, 30*time.Minute)
	})
	cfg.RefreshTimeout = timeout.Value
	warnings = append(warnings, config.Record(metrics, "refresh_timeout", timeout)...)

	onStart := config.LoadEnvBool("REFRESH_ON_START", cfg.RunOnStart)
	cfg.RunOnStart = onStart.Value
	warnings = append(warnings, config.Record(metrics, "refresh_on_start", onStart)...)

	port := config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = port.Value
	warnings = append(warnings, config.Record(metrics, "health_port", port)...)

	for _, w := range warnings {
		logger.Warn("Configuration fallback applied", slog.String("warning", w))
	}
	if metrics != nil {
		metrics.SetFallbackActive(len(warnings) > 0)
		metrics.RecordLoadTimestamp()
	}
	return &cfg
}
