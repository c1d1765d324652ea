package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"ai-pulse/internal/domain/entity"
)

// rssDateFormat is RFC 1123 with the GMT zone name RSS readers expect.
const rssDateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// FeedTTLMinutes tells readers how long to cache the feed; it matches the refresh cadence.
const FeedTTLMinutes = 30

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Atom    string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title          string      `xml:"title"`
	Description    string      `xml:"description"`
	Link           string      `xml:"link"`
	AtomLink       rssAtomLink `xml:"atom:link"`
	Language       string      `xml:"language"`
	LastBuildDate  string      `xml:"lastBuildDate"`
	PubDate        string      `xml:"pubDate"`
	TTL            int         `xml:"ttl"`
	Image          rssImage    `xml:"image"`
	ManagingEditor string      `xml:"managingEditor"`
	WebMaster      string      `xml:"webMaster"`
	Categories     []string    `xml:"category"`
	Generator      string      `xml:"generator"`
	Items          []rssItem   `xml:"item"`
}

type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssImage struct {
	URL    string `xml:"url"`
	Title  string `xml:"title"`
	Link   string `xml:"link"`
	Width  int    `xml:"width"`
	Height int    `xml:"height"`
}

type rssItem struct {
	Title       cdata     `xml:"title"`
	Description cdata     `xml:"description"`
	Link        string    `xml:"link"`
	GUID        rssGUID   `xml:"guid"`
	PubDate     string    `xml:"pubDate"`
	Category    cdata     `xml:"category"`
	Source      rssSource `xml:"source"`
}

type cdata struct {
	Text string `xml:",cdata"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssSource struct {
	URL   string `xml:"url,attr"`
	Value string `xml:",chardata"`
}

// RSS renders n as an RSS 2.0 feed. Items keep section order; each is dated one
// minute before the previous one, counting back from the generation time, so
// readers list them in that order.
func RSS(n *entity.Newsletter, site Site, now time.Time) ([]byte, error) {
	site = site.withDefaults()
	contact := fmt.Sprintf("%s (%s)", site.Contact, site.Publisher)

	generatedAt := n.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = now
	}

	doc := rssDoc{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:       site.Title,
			Description: site.Description,
			Link:        site.BaseURL,
			AtomLink: rssAtomLink{
				Href: site.BaseURL + "/rss.xml",
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Language:      "en-us",
			LastBuildDate: now.UTC().Format(rssDateFormat),
			PubDate:       generatedAt.UTC().Format(rssDateFormat),
			TTL:           FeedTTLMinutes,
			Image: rssImage{
				URL:    site.BaseURL + "/logo.png",
				Title:  site.Title,
				Link:   site.BaseURL,
				Width:  144,
				Height: 144,
			},
			ManagingEditor: contact,
			WebMaster:      contact,
			Categories:     []string{"Technology", "Healthcare", "Artificial Intelligence"},
			Generator:      site.Title + " Generator",
		},
	}

	i := 0
	for _, section := range n.Sections {
		category := plainText(section.CategoryTitle)
		for _, item := range section.Items {
			doc.Channel.Items = append(doc.Channel.Items, rssItem{
				Title:       cdata{plainText(item.Title)},
				Description: cdata{fmt.Sprintf("%s\n\nSource: %s | Category: %s", plainText(item.Summary), item.SourceType, category)},
				Link:        item.SourceURL,
				GUID:        rssGUID{IsPermaLink: "false", Value: item.ID},
				PubDate:     generatedAt.Add(-time.Duration(i) * time.Minute).UTC().Format(rssDateFormat),
				Category:    cdata{category},
				Source:      rssSource{URL: item.SourceURL, Value: string(item.SourceType)},
			})
			i++
		}
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode rss: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
