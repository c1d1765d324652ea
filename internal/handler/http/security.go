package http

import (
	"net/http"
	"sort"
	"strings"

	"ai-pulse/pkg/security/csp"
)

// SecurityConfig selects the Content-Security-Policy for each response.
type SecurityConfig struct {
	// Default applies when no entry of Paths matches. Nil sends no policy.
	Default *csp.Policy

	// Paths maps path prefixes to policies. The longest matching prefix wins.
	Paths map[string]*csp.Policy

	// ReportOnly sends every policy as Content-Security-Policy-Report-Only.
	ReportOnly bool
}

// DefaultSecurityConfig locks down every response, lets the HTML digest use
// inline styles and remote images, and gives the Swagger UI its own assets.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		Default: csp.APIPolicy(),
		Paths: map[string]*csp.Policy{
			PathDigest:  csp.DigestPolicy(),
			PathSwagger: csp.SwaggerUIPolicy(),
		},
	}
}

type builtPolicy struct {
	prefix string
	header string
	value  string
}

func buildPolicy(prefix string, p *csp.Policy, reportOnly bool) builtPolicy {
	if p == nil {
		return builtPolicy{prefix: prefix}
	}
	p.ReportOnly(reportOnly)
	return builtPolicy{prefix: prefix, header: p.HeaderName(), value: p.Build()}
}

// SecurityHeaders sets the Content-Security-Policy plus headers that stop MIME
// sniffing, framing and referrer leakage. Policies are built once.
func SecurityHeaders(cfg SecurityConfig) Middleware {
	def := buildPolicy("", cfg.Default, cfg.ReportOnly)
	paths := make([]builtPolicy, 0, len(cfg.Paths))
	for prefix, p := range cfg.Paths {
		paths = append(paths, buildPolicy(prefix, p, cfg.ReportOnly))
	}
	sort.Slice(paths, func(i, j int) bool { return len(paths[i].prefix) > len(paths[j].prefix) })

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy := def
			for _, p := range paths {
				if strings.HasPrefix(r.URL.Path, p.prefix) {
					policy = p
					break
				}
			}

			h := w.Header()
			if policy.value != "" {
				h.Set(policy.header, policy.value)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			next.ServeHTTP(w, r)
		})
	}
}
