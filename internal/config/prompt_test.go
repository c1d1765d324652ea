package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultPromptConfig(t *testing.T) {
	cfg := DefaultPromptConfig()

	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Categories, 6)
	assert.Equal(t, "New LLM Announcements & Releases", cfg.Categories[0].Title)
	assert.Equal(t, "Healthcare LLM Advancements", cfg.Categories[5].Title)
	assert.Equal(t, 7, cfg.RecencyDays)
}

func TestLoadPromptConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadPromptConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPromptConfig(), cfg)
}

func TestLoadPromptConfig_Override(t *testing.T) {
	path := writeFile(t, `
publication: "Radiology AI Weekly"
recency_days: 14
categories:
  - title: "Imaging Models"
    guidance: "Focus on FDA-cleared tools."
  - title: "Datasets"
`)

	cfg, err := LoadPromptConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Radiology AI Weekly", cfg.Publication)
	assert.Equal(t, 14, cfg.RecencyDays)
	assert.Equal(t, []Category{
		{Title: "Imaging Models", Guidance: "Focus on FDA-cleared tools."},
		{Title: "Datasets"},
	}, cfg.Categories)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "GreyBrain AI", cfg.Publisher)
}

func TestLoadPromptConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{name: "invalid yaml", content: "categories: [unclosed", errMsg: "failed to parse prompt config"},
		{name: "empty categories", content: "categories: []", errMsg: "at least one category is required"},
		{name: "missing title", content: "categories:\n  - guidance: x", errMsg: "categories[0]: title is required"},
		{name: "duplicate title", content: "categories:\n  - title: A\n  - title: A", errMsg: "duplicate title"},
		{name: "bad recency", content: "recency_days: 0", errMsg: "recency_days must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPromptConfig(writeFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadPromptConfig_FileNotFound(t *testing.T) {
	_, err := LoadPromptConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt config")
}
