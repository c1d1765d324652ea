// Package csp builds Content-Security-Policy header values.
package csp

import (
	"strings"
)

// Header names.
const (
	HeaderEnforce    = "Content-Security-Policy"
	HeaderReportOnly = "Content-Security-Policy-Report-Only"
)

// directiveOrder fixes the order of directives in the built header.
var directiveOrder = []string{
	"default-src",
	"script-src",
	"style-src",
	"img-src",
	"font-src",
	"connect-src",
	"frame-ancestors",
	"form-action",
	"base-uri",
	"object-src",
	"report-uri",
}

// Policy is a fluent Content-Security-Policy builder.
//
//	policy := csp.New().
//	    DefaultSrc("'none'").
//	    StyleSrc("'unsafe-inline'").
//	    Build()
//	// "default-src 'none'; style-src 'unsafe-inline'"
//
// A Policy is not safe for concurrent modification. Build it once at startup and
// only call Build and HeaderName afterwards.
type Policy struct {
	directives map[string][]string
	reportOnly bool
}

// New creates an empty policy.
func New() *Policy {
	return &Policy{directives: make(map[string][]string)}
}

func (p *Policy) set(directive string, sources []string) *Policy {
	p.directives[directive] = sources
	return p
}

// DefaultSrc sets the fallback for every fetch directive that is not set.
func (p *Policy) DefaultSrc(sources ...string) *Policy { return p.set("default-src", sources) }

// ScriptSrc sets script-src.
func (p *Policy) ScriptSrc(sources ...string) *Policy { return p.set("script-src", sources) }

// StyleSrc sets style-src.
func (p *Policy) StyleSrc(sources ...string) *Policy { return p.set("style-src", sources) }

// ImgSrc sets img-src.
func (p *Policy) ImgSrc(sources ...string) *Policy { return p.set("img-src", sources) }

// FontSrc sets font-src.
func (p *Policy) FontSrc(sources ...string) *Policy { return p.set("font-src", sources) }

// ConnectSrc sets connect-src.
func (p *Policy) ConnectSrc(sources ...string) *Policy { return p.set("connect-src", sources) }

// FrameAncestors sets frame-ancestors. "'none'" forbids framing entirely.
func (p *Policy) FrameAncestors(sources ...string) *Policy { return p.set("frame-ancestors", sources) }

// FormAction sets form-action.
func (p *Policy) FormAction(sources ...string) *Policy { return p.set("form-action", sources) }

// BaseURI sets base-uri.
func (p *Policy) BaseURI(sources ...string) *Policy { return p.set("base-uri", sources) }

// ObjectSrc sets object-src.
func (p *Policy) ObjectSrc(sources ...string) *Policy { return p.set("object-src", sources) }

// ReportURI sets the endpoint browsers post violation reports to.
func (p *Policy) ReportURI(uri string) *Policy { return p.set("report-uri", []string{uri}) }

// ReportOnly switches the policy to report violations without enforcing them.
func (p *Policy) ReportOnly(enabled bool) *Policy {
	p.reportOnly = enabled
	return p
}

// Build renders the header value. Directives without sources are skipped.
func (p *Policy) Build() string {
	parts := make([]string, 0, len(p.directives))
	for _, d := range directiveOrder {
		if sources := p.directives[d]; len(sources) > 0 {
			parts = append(parts, d+" "+strings.Join(sources, " "))
		}
	}
	return strings.Join(parts, "; ")
}

// HeaderName returns the header the policy is sent in.
func (p *Policy) HeaderName() string {
	if p.reportOnly {
		return HeaderReportOnly
	}
	return HeaderEnforce
}

// APIPolicy is for JSON, XML and plain text responses that never render as a page.
func APIPolicy() *Policy {
	return New().
		DefaultSrc("'none'").
		FrameAncestors("'none'").
		BaseURI("'none'").
		FormAction("'none'")
}

// SwaggerUIPolicy is for the bundled Swagger UI. Its index page boots with an inline
// script and loads doc.json from the same origin.
func SwaggerUIPolicy() *Policy {
	return New().
		DefaultSrc("'self'").
		ScriptSrc("'self'", "'unsafe-inline'").
		StyleSrc("'self'", "'unsafe-inline'").
		ImgSrc("'self'", "data:").
		FontSrc("'self'", "data:").
		ConnectSrc("'self'").
		FrameAncestors("'none'").
		BaseURI("'self'").
		FormAction("'self'").
		ObjectSrc("'none'")
}

// DigestPolicy is for the rendered digest email preview. The template uses inline
// styles and remote item images, and no script of any kind.
func DigestPolicy() *Policy {
	return New().
		DefaultSrc("'none'").
		StyleSrc("'unsafe-inline'").
		ImgSrc("https:", "data:").
		FrameAncestors("'none'").
		BaseURI("'none'").
		FormAction("'none'").
		ObjectSrc("'none'")
}
