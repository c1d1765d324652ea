package render

import (
	"bytes"
	"encoding/xml"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-pulse/internal/domain/entity"
)

var generatedAt = time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)

func sampleNewsletter() *entity.Newsletter {
	return entity.NewNewsletter(&entity.Payload{Newsletter: []entity.Section{
		{
			CategoryTitle: "Clinical AI",
			Items: []entity.Item{
				{Title: "Model <b>X</b> & friends", Summary: "Reads <script>alert(1)</script>scans.", SourceURL: "https://example.com/a", SourceType: entity.SourceTypeJournal},
				{Title: "Second", Summary: "Two.", SourceURL: "https://example.com/b", SourceType: entity.SourceTypeWeb},
				{Title: "Third", Summary: "Three.", SourceURL: "https://example.com/c", SourceType: entity.SourceTypeX},
			},
		},
		{
			CategoryTitle: "Policy",
			Items: []entity.Item{
				{Title: "Rule change", Summary: "Regulators act.", SourceURL: "https://example.com/d", SourceType: entity.SourceTypeYouTube},
			},
		},
		{CategoryTitle: "Empty"},
	}}, []entity.GroundingSource{{URI: "https://g/1", Title: "one"}, {URI: "https://g/2", Title: "two"}}, generatedAt)
}

func TestRSS_ParsesAsFeed(t *testing.T) {
	now := generatedAt.Add(5 * time.Minute)
	out, err := RSS(sampleNewsletter(), Site{BaseURL: "https://pulse.test/"}, now)
	require.NoError(t, err)

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, "GreyBrain AI Pulse", feed.Title)
	assert.Equal(t, "https://pulse.test", feed.Link)
	assert.Equal(t, "2.0", feed.FeedVersion)
	require.NotNil(t, feed.Image)
	assert.Equal(t, "https://pulse.test/logo.png", feed.Image.URL)

	require.Len(t, feed.Items, 4)

	first := feed.Items[0]
	assert.Equal(t, "Model X & friends", first.Title)
	assert.Equal(t, "https://example.com/a", first.Link)
	assert.Equal(t, "https://example.com/a", first.GUID)
	assert.Equal(t, []string{"Clinical AI"}, first.Categories)
	assert.Contains(t, first.Description, "Source: Journal | Category: Clinical AI")
	assert.NotContains(t, first.Description, "<script>")

	assert.Equal(t, "Rule change", feed.Items[3].Title)
}

func TestRSS_ItemDatesCountBackFromGeneration(t *testing.T) {
	out, err := RSS(sampleNewsletter(), Site{}, generatedAt)
	require.NoError(t, err)

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(out))
	require.NoError(t, err)

	for i, item := range feed.Items {
		require.NotNil(t, item.PublishedParsed, "item %d", i)
		want := generatedAt.Add(-time.Duration(i) * time.Minute)
		assert.True(t, item.PublishedParsed.Equal(want), "item %d: got %v want %v", i, item.PublishedParsed, want)
	}
}

func TestRSS_ChannelMetadata(t *testing.T) {
	now := generatedAt.Add(time.Hour)
	out, err := RSS(sampleNewsletter(), Site{}, now)
	require.NoError(t, err)

	var doc rssDoc
	require.NoError(t, xml.Unmarshal(out, &doc))

	assert.Equal(t, FeedTTLMinutes, doc.Channel.TTL)
	assert.Equal(t, "Mon, 09 Mar 2026 13:00:00 GMT", doc.Channel.LastBuildDate)
	assert.Equal(t, "Mon, 09 Mar 2026 12:00:00 GMT", doc.Channel.PubDate)
	assert.Equal(t, []string{"Technology", "Healthcare", "Artificial Intelligence"}, doc.Channel.Categories)
	assert.Equal(t, "contact@greybrain.ai (GreyBrain AI)", doc.Channel.ManagingEditor)
	assert.Equal(t, "false", doc.Channel.Items[0].GUID.IsPermaLink)
}

func TestRSS_EmptyNewsletter(t *testing.T) {
	out, err := RSS(&entity.Newsletter{}, Site{}, generatedAt)
	require.NoError(t, err)

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
	assert.Equal(t, "GreyBrain AI Pulse", feed.Title)
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"tags stripped", "<p>hello <em>world</em></p>", "hello world"},
		{"ampersand kept", "R&D", "R&D"},
		{"script removed", "<script>x()</script>ok", "ok"},
		{"trimmed", "  spaced  ", "spaced"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plainText(tt.in))
		})
	}
}
