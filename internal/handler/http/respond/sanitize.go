package respond

import (
	"regexp"
)

// Patterns are applied in order; the more specific Anthropic key goes before the
// generic sk- form, which skips text that is already masked.
var (
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	openaiKeyPattern    = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	googleKeyPattern    = regexp.MustCompile(`AIza[0-9A-Za-z_-]{20,}`)
	bearerPattern       = regexp.MustCompile(`(?i)bearer\s+[a-z0-9._-]+`)

	// credentials inside a URL, with or without a user name (redis://:secret@host)
	urlPasswordPattern = regexp.MustCompile(`://([^:/@\s]*):([^@/\s]+)@`)
)

// SanitizeError returns err's message with API keys, bearer tokens and URL passwords masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = googleKeyPattern.ReplaceAllString(msg, "AIza****")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ****")
	msg = urlPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
