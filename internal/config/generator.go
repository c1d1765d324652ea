// Package config holds application-level settings: generator selection and the
// newsletter prompt.
package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "ai-pulse/internal/pkg/config"
)

// Generator types accepted by GENERATOR_TYPE.
const (
	GeneratorGemini = "gemini"
	GeneratorClaude = "claude"
	GeneratorOpenAI = "openai"
)

// GeneratorConfig selects and tunes the content generation provider.
type GeneratorConfig struct {
	// Type is one of gemini, claude or openai. Default: gemini
	Type string

	// Model overrides the provider's default model when set.
	Model string

	// APIKey is read from the variable matching Type:
	// GEMINI_API_KEY, ANTHROPIC_API_KEY or OPENAI_API_KEY.
	APIKey string

	// Timeout bounds one generation attempt. Default: 45s
	Timeout time.Duration

	// MaxAttempts is the number of attempts per fetch. Default: 2
	MaxAttempts int

	// RateLimit is the number of calls allowed per RateWindow. Default: 50 per 1m
	RateLimit  int
	RateWindow time.Duration
}

// ServiceName is the breaker and log name of the configured provider.
func (c *GeneratorConfig) ServiceName() string {
	switch c.Type {
	case GeneratorClaude:
		return "Claude API"
	case GeneratorOpenAI:
		return "OpenAI API"
	default:
		return "Gemini API"
	}
}

// LoadGeneratorConfig reads the generator settings. Malformed values fall back to
// defaults and are returned as warnings; a missing API key is an error.
func LoadGeneratorConfig(metrics *pkgconfig.ConfigMetrics) (*GeneratorConfig, []string, error) {
	var warnings []string

	typ := pkgconfig.LoadEnvWithFallback("GENERATOR_TYPE", GeneratorGemini,
		pkgconfig.OneOf(GeneratorGemini, GeneratorClaude, GeneratorOpenAI))
	warnings = append(warnings, pkgconfig.Record(metrics, "generator_type", typ)...)

	timeout := pkgconfig.LoadEnvDuration("GENERATOR_TIMEOUT", 45*time.Second,
		func(d time.Duration) error { return pkgconfig.ValidateDuration(d, time.Second, 10*time.Minute) })
	warnings = append(warnings, pkgconfig.Record(metrics, "generator_timeout", timeout)...)

	attempts := pkgconfig.LoadEnvInt("GENERATOR_MAX_ATTEMPTS", 2,
		func(v int) error { return pkgconfig.ValidateIntRange(v, 1, 5) })
	warnings = append(warnings, pkgconfig.Record(metrics, "generator_max_attempts", attempts)...)

	limit := pkgconfig.LoadEnvInt("GENERATOR_RATE_LIMIT", 50,
		func(v int) error { return pkgconfig.ValidateIntRange(v, 1, 10000) })
	warnings = append(warnings, pkgconfig.Record(metrics, "generator_rate_limit", limit)...)

	window := pkgconfig.LoadEnvDuration("GENERATOR_RATE_WINDOW", time.Minute, pkgconfig.ValidatePositiveDuration)
	warnings = append(warnings, pkgconfig.Record(metrics, "generator_rate_window", window)...)

	cfg := &GeneratorConfig{
		Type:        strings.ToLower(typ.Value),
		Model:       pkgconfig.LoadEnvString("GENERATOR_MODEL", ""),
		Timeout:     timeout.Value,
		MaxAttempts: attempts.Value,
		RateLimit:   limit.Value,
		RateWindow:  window.Value,
	}
	cfg.APIKey = pkgconfig.LoadEnvString(apiKeyEnv(cfg.Type), "")

	if metrics != nil {
		metrics.RecordLoadTimestamp()
	}
	if err := cfg.Validate(); err != nil {
		return nil, warnings, fmt.Errorf("invalid generator configuration: %w", err)
	}
	return cfg, warnings, nil
}

// Validate checks configuration correctness.
func (c *GeneratorConfig) Validate() error {
	switch c.Type {
	case GeneratorGemini, GeneratorClaude, GeneratorOpenAI:
	default:
		return fmt.Errorf("GENERATOR_TYPE %q is not supported", c.Type)
	}
	if c.APIKey == "" {
		return fmt.Errorf("%s is required when GENERATOR_TYPE=%s", apiKeyEnv(c.Type), c.Type)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("GENERATOR_TIMEOUT must be positive")
	}
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("GENERATOR_MAX_ATTEMPTS must be positive")
	}
	if c.RateLimit <= 0 || c.RateWindow <= 0 {
		return fmt.Errorf("GENERATOR_RATE_LIMIT and GENERATOR_RATE_WINDOW must be positive")
	}
	return nil
}

func apiKeyEnv(typ string) string {
	switch typ {
	case GeneratorClaude:
		return "ANTHROPIC_API_KEY"
	case GeneratorOpenAI:
		return "OPENAI_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}
