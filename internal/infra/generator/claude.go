package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"ai-pulse/internal/observability/metrics"
	"ai-pulse/internal/observability/tracing"
)

const (
	// DefaultClaudeModel is used when no model is configured.
	DefaultClaudeModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

	// claudeMaxTokens leaves room for a full newsletter document.
	claudeMaxTokens = 8192
)

// Claude generates content with the Anthropic Messages API.
// Search is not available, so responses never carry grounding.
type Claude struct {
	client anthropic.Client
	model  string
	name   string
	logger *slog.Logger
}

// NewClaude creates a Claude adapter for the given API key.
func NewClaude(apiKey, model, serviceName string, logger *slog.Logger) *Claude {
	if model == "" {
		model = DefaultClaudeModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Claude{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		name:   serviceName,
		logger: logger,
	}
}

// Name implements Generator.
func (c *Claude) Name() string { return c.name }

// Generate implements Generator.
func (c *Claude) Generate(ctx context.Context, req Request) (resp *Response, err error) {
	requestID := uuid.New().String()
	ctx, span := tracing.StartSpan(ctx, "generator.generate",
		attribute.String("provider", c.name),
		attribute.String("model", c.model))
	defer func() { tracing.EndSpan(span, err) }()

	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: claudeMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	duration := time.Since(start)
	metrics.RecordGeneration(c.name, err == nil, duration)

	if err != nil {
		c.logger.WarnContext(ctx, "claude call failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return nil, fmt.Errorf("claude api error: %w", err)
	}

	c.logger.InfoContext(ctx, "claude call completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.String("stop_reason", string(message.StopReason)))
	return fromClaude(message), nil
}

// fromClaude converts a Messages API response into a single candidate holding the
// first text block.
func fromClaude(msg *anthropic.Message) *Response {
	if msg == nil {
		return &Response{}
	}
	cand := Candidate{FinishReason: claudeFinishReason(msg.StopReason)}
	for _, block := range msg.Content {
		if block.Type == "text" {
			cand.Text = block.Text
			break
		}
	}
	return &Response{Candidates: []Candidate{cand}}
}

func claudeFinishReason(r anthropic.StopReason) string {
	switch r {
	case anthropic.StopReasonEndTurn, anthropic.StopReasonStopSequence, "":
		return FinishReasonStop
	case anthropic.StopReasonMaxTokens:
		return "MAX_TOKENS"
	case "refusal":
		return "SAFETY"
	default:
		return strings.ToUpper(string(r))
	}
}
