package generator

import (
	"context"
	"fmt"
	"log/slog"

	"ai-pulse/internal/config"
)

// New creates the Generator selected by cfg.Type.
func New(ctx context.Context, cfg *config.GeneratorConfig, logger *slog.Logger) (Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("generator config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	name := cfg.ServiceName()
	switch cfg.Type {
	case config.GeneratorClaude:
		return NewClaude(cfg.APIKey, cfg.Model, name, logger), nil
	case config.GeneratorOpenAI:
		return NewOpenAI(cfg.APIKey, cfg.Model, name, logger), nil
	case config.GeneratorGemini:
		return NewGemini(ctx, cfg.APIKey, cfg.Model, name, logger)
	default:
		return nil, fmt.Errorf("unsupported generator type %q", cfg.Type)
	}
}
