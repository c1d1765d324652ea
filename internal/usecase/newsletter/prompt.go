package newsletter

import (
	"strings"
	"text/template"

	"ai-pulse/internal/config"
)

var promptTemplate = template.Must(template.New("prompt").Parse(`
You are an AI assistant for {{.Publisher}}, generating a curated newsletter called "{{.Publication}}" on {{.Topic}}.
Your task is to find recent information using Google Search and format it into a single, valid JSON object.

**IMPORTANT**: Your entire response MUST be ONLY the JSON object. Do not include any introductory text, closing remarks, or markdown formatting like ` + "```json" + `.

Use the following strict JSON structure. Pay very close attention to comma placement, especially for the last item in any array.

**JSON OUTPUT EXAMPLE:**
{
  "newsletter": [
    {
      "categoryTitle": "{{(index .Categories 0).Title}}",
      "items": [
        {
          "title": "Example AI Model X Released by Tech Giant",
          "summary": "Tech Giant has just announced the release of their new flagship model, AI Model X, which promises groundbreaking performance in natural language understanding.",
          "sourceUrl": "https://example.com/news/ai-model-x",
          "sourceType": "Web",
          "imageUrl": "https://example.com/images/ai-model-x-thumbnail.jpg"
        }
      ]
    }
  ]
}

**NEWSLETTER REQUIREMENTS:**
1.  **Recency:** All information must be from the last {{.RecencyDays}} days.
2.  **Sources:** {{.Sources}}
3.  **Categories:** Generate content for the following {{len .Categories}} categories:
{{- range .Categories}}
    - "{{.Title}}"{{if .Guidance}}: {{.Guidance}}{{end}}
{{- end}}
4.  **Content:**
    - ` + "`title`" + `: The original title of the source article/post.
    - ` + "`summary`" + `: A concise 1-2 sentence summary.
    - ` + "`sourceUrl`" + `: The direct URL to the content.
    - ` + "`sourceType`" + `: Must be one of: 'YouTube', 'X', 'LinkedIn', 'Journal', 'Web'.
    - ` + "`imageUrl`" + `: A relevant thumbnail URL. If none is found, this MUST be ` + "`null`" + `.

Now, generate the JSON for today's "{{.Publication}}" based on these requirements.
`))

// BuildPrompt renders the generation prompt for cfg. cfg must have passed Validate.
func BuildPrompt(cfg *config.PromptConfig) (string, error) {
	var b strings.Builder
	if err := promptTemplate.Execute(&b, cfg); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RepairPrompt asks the provider to fix a malformed JSON document.
func RepairPrompt(broken string) string {
	return "The following JSON string is invalid. Please fix it and return only the corrected JSON object. " +
		"Do not add any commentary or markdown formatting. Broken JSON: " + broken
}
