package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Category is one newsletter section the model is asked to fill.
type Category struct {
	Title string `yaml:"title"`

	// Guidance is an optional instruction appended after the title.
	Guidance string `yaml:"guidance,omitempty"`
}

// PromptConfig describes the newsletter the model is asked to produce.
type PromptConfig struct {
	Publication string     `yaml:"publication"`
	Publisher   string     `yaml:"publisher"`
	Topic       string     `yaml:"topic"`
	RecencyDays int        `yaml:"recency_days"`
	Sources     string     `yaml:"sources"`
	Categories  []Category `yaml:"categories"`
}

// DefaultPromptConfig returns the built-in six-category newsletter.
func DefaultPromptConfig() *PromptConfig {
	return &PromptConfig{
		Publication: "GreyBrain AI Pulse",
		Publisher:   "GreyBrain AI",
		Topic:       "Large Language Models (LLMs) and healthcare",
		RecencyDays: 7,
		Sources:     "Use a mix of YouTube, X, LinkedIn, academic journals (like NPJ Digital Medicine), and reputable web news.",
		Categories: []Category{
			{Title: "New LLM Announcements & Releases"},
			{
				Title:    "LLM Productivity Hacks & Tips",
				Guidance: "Cover various practical tips, tricks, and hacks for using LLMs more effectively in daily tasks.",
			},
			{
				Title:    "AI Tool/Tip of the Day",
				Guidance: "Spotlight a single, practical productivity hack, tip, or a useful AI tool. This should be concise and highly actionable for the reader.",
			},
			{Title: "Emerging Deep Agents & AI Tools"},
			{
				Title:    "Academic Research & Papers",
				Guidance: "Include recent papers and insights, but also cover news and updates on popular academic research and writing tools like Consensus, Paperpal, Geni, Research Rabbit, and Semantic Scholar.",
			},
			{Title: "Healthcare LLM Advancements"},
		},
	}
}

// LoadPromptConfig loads the prompt from a YAML file. An empty path returns the
// defaults; fields missing from the file keep their default values.
// The path parameter is expected to come from a trusted source (env var or CLI flag).
func LoadPromptConfig(path string) (*PromptConfig, error) {
	cfg := DefaultPromptConfig()
	if path == "" {
		return cfg, nil
	}

	// #nosec G304 -- path is provided by trusted source (env var or CLI flag), not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse prompt config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("prompt config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration.
func (c *PromptConfig) Validate() error {
	if c.Publication == "" {
		return fmt.Errorf("publication is required")
	}
	if c.RecencyDays <= 0 {
		return fmt.Errorf("recency_days must be positive")
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	seen := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		if cat.Title == "" {
			return fmt.Errorf("categories[%d]: title is required", i)
		}
		if seen[cat.Title] {
			return fmt.Errorf("categories[%d]: duplicate title %q", i, cat.Title)
		}
		seen[cat.Title] = true
	}
	return nil
}
