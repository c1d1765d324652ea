// Package generator adapts content generation providers (Gemini, Claude, OpenAI)
// to one provider-neutral request/response shape.
//
// Adapters perform a single call. Retries, timeouts and circuit breaking are the
// caller's concern, so a Generator is always wrapped in a resilience.Executor.
package generator

import (
	"context"
	"strings"
)

// FinishReasonStop is the finish reason of a candidate that completed normally.
const FinishReasonStop = "STOP"

// Request is one generation call.
type Request struct {
	Prompt string

	// Search asks the provider to ground the answer with web search when it can.
	Search bool
}

// SafetyRating is a provider's safety judgement for one harm category.
type SafetyRating struct {
	Category    string
	Probability string
}

// GroundingChunk is a web page the provider cited. Either field may be empty.
type GroundingChunk struct {
	URI   string
	Title string
}

// Candidate is one generated answer. Text is empty when the provider returned no text part.
type Candidate struct {
	Text          string
	FinishReason  string
	SafetyRatings []SafetyRating
	Grounding     []GroundingChunk
}

// PromptFeedback explains why a prompt produced no candidates.
type PromptFeedback struct {
	BlockReason   string
	SafetyRatings []SafetyRating
}

// Response is the provider-neutral result of a generation call.
type Response struct {
	Candidates     []Candidate
	PromptFeedback *PromptFeedback
}

// Generator produces content for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name is the service name used for circuit breaking, logs and metrics.
	Name() string
}

// Func adapts a function to the Generator interface.
type Func struct {
	ServiceName string
	Fn          func(ctx context.Context, req Request) (*Response, error)
}

func (f Func) Generate(ctx context.Context, req Request) (*Response, error) { return f.Fn(ctx, req) }
func (f Func) Name() string                                                 { return f.ServiceName }

// TextResponse builds a single-candidate response that completed normally.
func TextResponse(text string) *Response {
	return &Response{Candidates: []Candidate{{Text: text, FinishReason: FinishReasonStop}}}
}

// HarmCategoryLabel strips the HARM_CATEGORY_ prefix from a category name.
func HarmCategoryLabel(category string) string {
	return strings.TrimPrefix(category, "HARM_CATEGORY_")
}
