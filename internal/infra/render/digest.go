package render

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"ai-pulse/internal/domain/entity"
)

// DigestItemsPerSection caps how many items of each section make the digest.
const DigestItemsPerSection = 2

const digestDateFormat = "Jan 2, 2006"

// Digest is a weekly email edition of the newsletter.
type Digest struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

type digestSection struct {
	Title     string
	Heading   string
	Underline string
	Items     []digestItem
}

type digestItem struct {
	Title      string
	Summary    string
	URL        string
	SourceType string
}

type digestData struct {
	Site        Site
	Subject     string
	WeekStart   string
	WeekEnd     string
	Sections    []digestSection
	SourceCount int
	Year        int
}

var digestHTML = htmltemplate.Must(htmltemplate.New("digest").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Subject}}</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; color: #1f2937;">
<header class="header" style="text-align: center; padding: 24px 0;">
<h1>{{.Site.Title}}</h1>
<p class="tagline">{{.Site.Tagline}}</p>
<p class="week">{{.WeekStart}} - {{.WeekEnd}}</p>
</header>
{{range .Sections}}<section class="section">
<h2>{{.Title}}</h2>
{{range .Items}}<article class="item">
<h3><a href="{{.URL}}">{{.Title}}</a></h3>
<p class="summary">{{.Summary}}</p>
<p class="meta">Source: {{.SourceType}} | <a class="read-more" href="{{.URL}}">Read more</a></p>
</article>
{{end}}</section>
{{end}}<footer class="footer" style="text-align: center; color: #6b7280; font-size: 12px;">
<p>This digest was curated by AI from {{.SourceCount}} sources.</p>
<p><a href="{{.Site.BaseURL}}">Read the full briefing</a> | <a href="{{.Site.BaseURL}}/rss.xml">RSS</a></p>
<p>&copy; {{.Year}} {{.Site.Publisher}}</p>
</footer>
</body>
</html>
`))

var digestText = texttemplate.Must(texttemplate.New("digest").Parse(`{{.Site.Title}}
{{.Site.Tagline}}
{{.WeekStart}} - {{.WeekEnd}}
{{range .Sections}}
{{.Heading}}
{{.Underline}}
{{range .Items}}
• {{.Title}}
{{.Summary}}
Source: {{.SourceType}} | Read more: {{.URL}}
{{end}}{{end}}
---
This digest was curated by AI from {{.SourceCount}} sources.
Read the full briefing: {{.Site.BaseURL}}
(c) {{.Year}} {{.Site.Publisher}}
`))

// WeeklyDigest renders the top items of each section as an email covering the
// seven days that end at now.
func WeeklyDigest(n *entity.Newsletter, site Site, now time.Time) (*Digest, error) {
	site = site.withDefaults()
	data := digestData{
		Site:        site,
		WeekStart:   now.AddDate(0, 0, -7).Format(digestDateFormat),
		WeekEnd:     now.Format(digestDateFormat),
		SourceCount: len(n.GroundingSources),
		Year:        now.Year(),
	}
	data.Subject = fmt.Sprintf("%s - Weekly Digest (%s - %s)", site.Title, data.WeekStart, data.WeekEnd)

	for _, section := range n.Sections {
		if len(section.Items) == 0 {
			continue
		}
		title := plainText(section.CategoryTitle)
		ds := digestSection{
			Title:     title,
			Heading:   strings.ToUpper(title),
			Underline: strings.Repeat("=", len([]rune(title))),
		}
		for i, item := range section.Items {
			if i == DigestItemsPerSection {
				break
			}
			ds.Items = append(ds.Items, digestItem{
				Title:      plainText(item.Title),
				Summary:    plainText(item.Summary),
				URL:        item.SourceURL,
				SourceType: string(item.SourceType),
			})
		}
		data.Sections = append(data.Sections, ds)
	}

	var html, text bytes.Buffer
	if err := digestHTML.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render digest html: %w", err)
	}
	if err := digestText.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render digest text: %w", err)
	}
	return &Digest{Subject: data.Subject, HTML: html.String(), Text: text.String()}, nil
}
