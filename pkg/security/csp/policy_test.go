package csp

import (
	"testing"
)

func TestBuild_Order(t *testing.T) {
	got := New().
		ObjectSrc("'none'").
		StyleSrc("'self'", "'unsafe-inline'").
		DefaultSrc("'self'").
		Build()

	want := "default-src 'self'; style-src 'self' 'unsafe-inline'; object-src 'none'"
	if got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestBuild_Empty(t *testing.T) {
	if got := New().Build(); got != "" {
		t.Errorf("empty policy built %q", got)
	}
	if got := New().ScriptSrc().Build(); got != "" {
		t.Errorf("directive without sources built %q", got)
	}
}

func TestBuild_ReplacesDirective(t *testing.T) {
	got := New().DefaultSrc("'self'").DefaultSrc("'none'").Build()
	if got != "default-src 'none'" {
		t.Errorf("Build() = %q", got)
	}
}

func TestReportURI(t *testing.T) {
	got := New().DefaultSrc("'none'").ReportURI("/csp-report").Build()
	if got != "default-src 'none'; report-uri /csp-report" {
		t.Errorf("Build() = %q", got)
	}
}

func TestHeaderName(t *testing.T) {
	p := New()
	if p.HeaderName() != HeaderEnforce {
		t.Errorf("HeaderName() = %q, want %q", p.HeaderName(), HeaderEnforce)
	}
	p.ReportOnly(true)
	if p.HeaderName() != HeaderReportOnly {
		t.Errorf("HeaderName() = %q, want %q", p.HeaderName(), HeaderReportOnly)
	}
}

func TestAPIPolicy(t *testing.T) {
	want := "default-src 'none'; frame-ancestors 'none'; form-action 'none'; base-uri 'none'"
	if got := APIPolicy().Build(); got != want {
		t.Errorf("APIPolicy() = %q, want %q", got, want)
	}
}

func TestDigestPolicy(t *testing.T) {
	want := "default-src 'none'; style-src 'unsafe-inline'; img-src https: data:; " +
		"frame-ancestors 'none'; form-action 'none'; base-uri 'none'; object-src 'none'"
	if got := DigestPolicy().Build(); got != want {
		t.Errorf("DigestPolicy() = %q, want %q", got, want)
	}
}

func TestSwaggerUIPolicy(t *testing.T) {
	want := "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data:; font-src 'self' data:; connect-src 'self'; frame-ancestors 'none'; " +
		"form-action 'self'; base-uri 'self'; object-src 'none'"
	if got := SwaggerUIPolicy().Build(); got != want {
		t.Errorf("SwaggerUIPolicy() = %q, want %q", got, want)
	}
}
