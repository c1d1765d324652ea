package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"

	"ai-pulse/internal/observability/metrics"
	"ai-pulse/internal/observability/tracing"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = openai.GPT4oMini

// OpenAI generates content with the Chat Completions API.
// Search is not available, so responses never carry grounding.
type OpenAI struct {
	client *openai.Client
	model  string
	name   string
	logger *slog.Logger
}

// NewOpenAI creates an OpenAI adapter for the given API key.
func NewOpenAI(apiKey, model, serviceName string, logger *slog.Logger) *OpenAI {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAI{
		client: openai.NewClient(apiKey),
		model:  model,
		name:   serviceName,
		logger: logger,
	}
}

// Name implements Generator.
func (o *OpenAI) Name() string { return o.name }

// Generate implements Generator.
func (o *OpenAI) Generate(ctx context.Context, req Request) (resp *Response, err error) {
	requestID := uuid.New().String()
	ctx, span := tracing.StartSpan(ctx, "generator.generate",
		attribute.String("provider", o.name),
		attribute.String("model", o.model))
	defer func() { tracing.EndSpan(span, err) }()

	start := time.Now()
	out, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: req.Prompt,
		}},
	})
	duration := time.Since(start)
	metrics.RecordGeneration(o.name, err == nil, duration)

	if err != nil {
		o.logger.WarnContext(ctx, "openai call failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return nil, fmt.Errorf("openai api error: %w", err)
	}

	o.logger.InfoContext(ctx, "openai call completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("choices", len(out.Choices)))
	return fromOpenAI(out), nil
}

// fromOpenAI converts a chat completion. An empty choice list yields no candidates.
func fromOpenAI(out openai.ChatCompletionResponse) *Response {
	resp := &Response{}
	for _, choice := range out.Choices {
		resp.Candidates = append(resp.Candidates, Candidate{
			Text:         choice.Message.Content,
			FinishReason: openAIFinishReason(choice.FinishReason),
		})
	}
	return resp
}

func openAIFinishReason(r openai.FinishReason) string {
	switch r {
	case openai.FinishReasonStop, "":
		return FinishReasonStop
	case openai.FinishReasonLength:
		return "MAX_TOKENS"
	case openai.FinishReasonContentFilter:
		return "SAFETY"
	default:
		return strings.ToUpper(string(r))
	}
}
