// Package render turns a newsletter into the documents it is published as: an RSS 2.0
// feed and a weekly digest in HTML and plain text.
//
// Model-written text is untrusted; it is stripped of markup before it is embedded.
package render

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Site describes the publication the documents belong to.
type Site struct {
	Title       string
	Description string
	Tagline     string

	// BaseURL is the public address of the web front end, without trailing slash.
	BaseURL string

	Publisher string
	Contact   string
}

// DefaultSite returns the GreyBrain AI Pulse publication.
func DefaultSite() Site {
	return Site{
		Title:       "GreyBrain AI Pulse",
		Description: "The intelligent briefing on AI in medicine, curated by GreyBrain AI",
		Tagline:     "Your Weekly AI Healthcare Intelligence Brief",
		BaseURL:     "https://greybrain-ai-pulse.com",
		Publisher:   "GreyBrain AI",
		Contact:     "contact@greybrain.ai",
	}
}

func (s Site) withDefaults() Site {
	d := DefaultSite()
	if s.Title == "" {
		s.Title = d.Title
	}
	if s.Description == "" {
		s.Description = d.Description
	}
	if s.Tagline == "" {
		s.Tagline = d.Tagline
	}
	if s.BaseURL == "" {
		s.BaseURL = d.BaseURL
	}
	s.BaseURL = strings.TrimRight(s.BaseURL, "/")
	if s.Publisher == "" {
		s.Publisher = d.Publisher
	}
	if s.Contact == "" {
		s.Contact = d.Contact
	}
	return s
}

var strict = bluemonday.StrictPolicy()

// plainText strips every tag from model output and decodes entities, leaving text
// that the caller escapes for its own output format.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
