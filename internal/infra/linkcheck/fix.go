package linkcheck

import (
	"net/url"
	"regexp"
	"strings"
)

var schemePattern = regexp.MustCompile(`(?i)^https?://`)

// trackingParams are removed from every link. Any utm_* parameter is removed as well.
var trackingParams = []string{"fbclid", "gclid"}

// FixURL normalizes a model-supplied link: it adds a missing https scheme, moves
// Twitter and mobile or short YouTube links to their canonical hosts and strips
// tracking parameters. Text that does not parse as a URL is returned trimmed.
func FixURL(raw string) string {
	fixed := strings.TrimSpace(raw)
	if fixed == "" {
		return ""
	}
	if !schemePattern.MatchString(fixed) {
		fixed = "https://" + fixed
	}

	u, err := url.Parse(fixed)
	if err != nil || u.Host == "" {
		return fixed
	}

	query := u.Query()
	changed := false

	switch strings.ToLower(u.Host) {
	case "twitter.com", "www.twitter.com", "mobile.twitter.com", "www.x.com":
		u.Host = "x.com"
	case "m.youtube.com":
		u.Host = "www.youtube.com"
	case "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			u.Host = "www.youtube.com"
			u.Path = "/watch"
			u.RawPath = ""
			query.Set("v", id)
			changed = true
		}
	}

	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), "utm_") {
			query.Del(key)
			changed = true
		}
	}
	for _, key := range trackingParams {
		if query.Has(key) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Alternatives suggests other spellings of a link that failed validation:
// the other Twitter host, the www variant and plain http.
func Alternatives(raw string) []string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil
	}

	var out []string
	host := strings.ToLower(u.Hostname())
	swap := func(newHost string) {
		alt := *u
		alt.Host = newHost
		if port := u.Port(); port != "" {
			alt.Host += ":" + port
		}
		out = append(out, alt.String())
	}

	switch host {
	case "twitter.com":
		swap("x.com")
	case "x.com":
		swap("twitter.com")
	}
	if after, ok := strings.CutPrefix(host, "www."); ok {
		swap(after)
	} else {
		swap("www." + host)
	}
	if u.Scheme == "https" {
		alt := *u
		alt.Scheme = "http"
		out = append(out, alt.String())
	}
	return out
}
