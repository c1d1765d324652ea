package render

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklyDigest_Subject(t *testing.T) {
	now := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	d, err := WeeklyDigest(sampleNewsletter(), Site{}, now)
	require.NoError(t, err)

	assert.Equal(t, "GreyBrain AI Pulse - Weekly Digest (Mar 2, 2026 - Mar 9, 2026)", d.Subject)
}

func TestWeeklyDigest_HTML(t *testing.T) {
	d, err := WeeklyDigest(sampleNewsletter(), Site{BaseURL: "https://pulse.test"}, generatedAt)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(d.HTML))
	require.NoError(t, err)

	sections := doc.Find("section.section")
	require.Equal(t, 2, sections.Length(), "sections without items are skipped")
	assert.Equal(t, "Clinical AI", sections.First().Find("h2").Text())

	titles := sections.First().Find("article.item h3 a")
	require.Equal(t, DigestItemsPerSection, titles.Length())
	assert.Equal(t, "Model X & friends", titles.First().Text())
	href, ok := titles.First().Attr("href")
	require.True(t, ok)
	assert.Equal(t, "https://example.com/a", href)

	assert.Equal(t, 0, doc.Find("script").Length())
	assert.Contains(t, doc.Find("footer").Text(), "curated by AI from 2 sources")
	assert.Contains(t, doc.Find("footer").Text(), "2026 GreyBrain AI")
}

func TestWeeklyDigest_Text(t *testing.T) {
	d, err := WeeklyDigest(sampleNewsletter(), Site{BaseURL: "https://pulse.test"}, generatedAt)
	require.NoError(t, err)

	assert.Contains(t, d.Text, "CLINICAL AI\n===========\n")
	assert.Contains(t, d.Text, "• Model X & friends\n")
	assert.Contains(t, d.Text, "Source: Journal | Read more: https://example.com/a")
	assert.NotContains(t, d.Text, "Third")
	assert.Contains(t, d.Text, "POLICY\n======\n")
	assert.Contains(t, d.Text, "Read the full briefing: https://pulse.test")
}
