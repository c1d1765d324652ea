package newsletter

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"ai-pulse/internal/domain/entity"
	"ai-pulse/internal/infra/generator"
)

// fencedBlock matches a ```json or bare ``` fenced block and captures its body.
var fencedBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ExtractJSON returns the JSON object embedded in model output. A fenced block is
// unwrapped first; the result is then sliced from the first '{' to the last '}'.
// It reports false when no such pair exists.
func ExtractJSON(text string) (string, bool) {
	s := strings.TrimSpace(text)
	if m := fencedBlock.FindStringSubmatch(s); m != nil && m[1] != "" {
		s = strings.TrimSpace(m[1])
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

// parsePayload decodes and validates extracted JSON. Malformed JSON yields
// ErrParseFailed; well-formed JSON of the wrong shape yields ErrSchemaInvalid.
func parsePayload(s string) (*entity.Payload, error) {
	var p entity.Payload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, newError(ErrParseFailed, msgRepairFailed, err)
		}
		return nil, newError(ErrSchemaInvalid, msgSchemaInvalid, err)
	}
	if err := entity.ValidatePayload(&p); err != nil {
		return nil, newError(ErrSchemaInvalid, msgSchemaInvalid, err)
	}
	return &p, nil
}

// groundingSources keeps chunks carrying both uri and title, first occurrence per uri.
func groundingSources(chunks []generator.GroundingChunk) []entity.GroundingSource {
	out := make([]entity.GroundingSource, 0, len(chunks))
	seen := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		if c.URI == "" || c.Title == "" || seen[c.URI] {
			continue
		}
		seen[c.URI] = true
		out = append(out, entity.GroundingSource{URI: c.URI, Title: c.Title})
	}
	return out
}

// checkResponse returns the text of the first candidate or the error explaining
// why there is none.
func checkResponse(resp *generator.Response) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		msg := msgNoReport
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			msg = "The request was blocked. Reason: " + resp.PromptFeedback.BlockReason + "."
			if details := ratingDetails(resp.PromptFeedback.SafetyRatings); details != "" {
				msg += " Details: " + details
			}
		}
		return "", newError(ErrProviderBlocked, msg, nil)
	}

	c := resp.Candidates[0]
	if c.Text == "" {
		msg := msgEmptyResponse
		if c.FinishReason != "" && c.FinishReason != generator.FinishReasonStop {
			msg = "The AI response was incomplete. Reason: " + c.FinishReason + "."
			if details := ratingDetails(c.SafetyRatings); details != "" {
				msg += " Details: " + details
			}
		}
		return "", newError(ErrProviderIncomplete, msg, nil)
	}
	return c.Text, nil
}

func ratingDetails(ratings []generator.SafetyRating) string {
	parts := make([]string, 0, len(ratings))
	for _, r := range ratings {
		category := generator.HarmCategoryLabel(r.Category)
		if category == "" {
			category = "Unknown"
		}
		parts = append(parts, category+": "+r.Probability)
	}
	return strings.Join(parts, ", ")
}
