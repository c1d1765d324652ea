package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"

	"ai-pulse/internal/observability/metrics"
	"ai-pulse/internal/observability/tracing"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini generates content with the Gemini API. Search requests enable the
// Google Search tool so the response carries grounding metadata.
type Gemini struct {
	models *genai.Models
	model  string
	name   string
	logger *slog.Logger
}

// NewGemini creates a Gemini adapter for the given API key.
func NewGemini(ctx context.Context, apiKey, model, serviceName string, logger *slog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gemini{models: client.Models, model: model, name: serviceName, logger: logger}, nil
}

// Name implements Generator.
func (g *Gemini) Name() string { return g.name }

// Generate implements Generator.
func (g *Gemini) Generate(ctx context.Context, req Request) (resp *Response, err error) {
	requestID := uuid.New().String()
	ctx, span := tracing.StartSpan(ctx, "generator.generate",
		attribute.String("provider", g.name),
		attribute.String("model", g.model),
		attribute.Bool("search", req.Search))
	defer func() { tracing.EndSpan(span, err) }()

	cfg := &genai.GenerateContentConfig{}
	if req.Search {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	g.logger.DebugContext(ctx, "calling gemini",
		slog.String("request_id", requestID),
		slog.String("model", g.model),
		slog.Int("prompt_length", len(req.Prompt)))

	start := time.Now()
	out, err := g.models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	duration := time.Since(start)
	metrics.RecordGeneration(g.name, err == nil, duration)

	if err != nil {
		g.logger.WarnContext(ctx, "gemini call failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	resp = fromGenAI(out)
	g.logger.InfoContext(ctx, "gemini call completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", duration),
		slog.Int("candidates", len(resp.Candidates)))
	return resp, nil
}

// fromGenAI converts a Gemini response. Only the first part of each candidate is read.
func fromGenAI(out *genai.GenerateContentResponse) *Response {
	resp := &Response{}
	if out == nil {
		return resp
	}
	for _, c := range out.Candidates {
		if c == nil {
			continue
		}
		cand := Candidate{
			FinishReason:  string(c.FinishReason),
			SafetyRatings: fromSafetyRatings(c.SafetyRatings),
		}
		if c.Content != nil && len(c.Content.Parts) > 0 && c.Content.Parts[0] != nil {
			cand.Text = c.Content.Parts[0].Text
		}
		if c.GroundingMetadata != nil {
			for _, chunk := range c.GroundingMetadata.GroundingChunks {
				if chunk == nil || chunk.Web == nil {
					continue
				}
				cand.Grounding = append(cand.Grounding, GroundingChunk{URI: chunk.Web.URI, Title: chunk.Web.Title})
			}
		}
		resp.Candidates = append(resp.Candidates, cand)
	}
	if pf := out.PromptFeedback; pf != nil {
		resp.PromptFeedback = &PromptFeedback{
			BlockReason:   string(pf.BlockReason),
			SafetyRatings: fromSafetyRatings(pf.SafetyRatings),
		}
	}
	return resp
}

func fromSafetyRatings(in []*genai.SafetyRating) []SafetyRating {
	if len(in) == 0 {
		return nil
	}
	out := make([]SafetyRating, 0, len(in))
	for _, r := range in {
		if r == nil {
			continue
		}
		out = append(out, SafetyRating{Category: string(r.Category), Probability: string(r.Probability)})
	}
	return out
}
