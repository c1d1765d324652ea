// Package entity defines the core domain entities and validation logic for the application.
// It contains the newsletter artifact produced by each generation cycle, its sections and
// items, the grounding sources cited by the model, and the domain-specific errors.
package entity

import "time"

// SourceType classifies where a newsletter item was published.
type SourceType string

const (
	SourceTypeYouTube  SourceType = "YouTube"
	SourceTypeX        SourceType = "X"
	SourceTypeLinkedIn SourceType = "LinkedIn"
	SourceTypeJournal  SourceType = "Journal"
	SourceTypeWeb      SourceType = "Web"
)

// SourceTypes lists every accepted SourceType in display order.
var SourceTypes = []SourceType{
	SourceTypeYouTube,
	SourceTypeX,
	SourceTypeLinkedIn,
	SourceTypeJournal,
	SourceTypeWeb,
}

// Valid reports whether t is one of the known source types.
func (t SourceType) Valid() bool {
	for _, known := range SourceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Item is a single curated link inside a newsletter section.
// ID is always derived from SourceURL so the same article keeps the same identity
// across generation cycles.
type Item struct {
	ID         string     `json:"id"`
	Title      string     `json:"title" validate:"required"`
	Summary    string     `json:"summary" validate:"required"`
	SourceURL  string     `json:"sourceUrl" validate:"required"`
	SourceType SourceType `json:"sourceType" validate:"required,sourcetype"`
	ImageURL   *string    `json:"imageUrl,omitempty"`
}

// Section groups items under a category heading.
type Section struct {
	CategoryTitle string `json:"categoryTitle" validate:"required"`
	Items         []Item `json:"items" validate:"required,dive"`
}

// GroundingSource is a web page the model cited while generating the newsletter.
type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Newsletter is one complete generated artifact. It is built fresh on every successful
// generation cycle and never mutated afterwards.
type Newsletter struct {
	Sections         []Section         `json:"newsletter"`
	GroundingSources []GroundingSource `json:"groundingSources"`
	GeneratedAt      time.Time         `json:"generatedAt"`
}

// Payload is the JSON document the generation provider is asked to return.
type Payload struct {
	Newsletter []Section `json:"newsletter" validate:"required,dive"`
}

// ItemID derives the stable identity of an item from its source URL.
func ItemID(sourceURL string) string {
	return sourceURL
}

// ItemCount returns the total number of items across all sections.
func (n *Newsletter) ItemCount() int {
	total := 0
	for _, s := range n.Sections {
		total += len(s.Items)
	}
	return total
}

// AllItems flattens the sections into a single slice, keeping section order.
func (n *Newsletter) AllItems() []Item {
	items := make([]Item, 0, n.ItemCount())
	for _, s := range n.Sections {
		items = append(items, s.Items...)
	}
	return items
}

// NewNewsletter assigns ids to every item of the payload and wraps it with the
// grounding sources and generation time.
func NewNewsletter(p *Payload, sources []GroundingSource, generatedAt time.Time) *Newsletter {
	sections := make([]Section, len(p.Newsletter))
	for i, s := range p.Newsletter {
		items := make([]Item, len(s.Items))
		for j, it := range s.Items {
			it.ID = ItemID(it.SourceURL)
			items[j] = it
		}
		sections[i] = Section{CategoryTitle: s.CategoryTitle, Items: items}
	}
	if sources == nil {
		sources = []GroundingSource{}
	}
	return &Newsletter{
		Sections:         sections,
		GroundingSources: sources,
		GeneratedAt:      generatedAt,
	}
}
