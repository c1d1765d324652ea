package entity

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// payloadValidator returns the shared validator configured with json field names
// and the sourcetype rule.
func payloadValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("sourcetype", func(fl validator.FieldLevel) bool {
			return SourceType(fl.Field().String()).Valid()
		})
		validate = v
	})
	return validate
}

// ValidatePayload checks a decoded provider payload against the newsletter schema.
// A syntactically valid document that is missing the newsletter key, has empty titles
// or uses an unknown source type is rejected with ValidationErrors.
func ValidatePayload(p *Payload) error {
	if p == nil {
		return &ValidationError{Field: "newsletter", Message: "payload is required"}
	}
	err := payloadValidator().Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate payload: %w", err)
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &ValidationError{
			Field:   strings.TrimPrefix(fe.Namespace(), "Payload."),
			Message: fieldMessage(fe),
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "sourcetype":
		return fmt.Sprintf("must be one of YouTube, X, LinkedIn, Journal, Web (got %q)", fe.Value())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ValidateURL validates the format and safety of a URL.
// It checks that the URL is well-formed, uses HTTP/HTTPS scheme, and has a valid host.
// When allowPrivate is false it also blocks hosts resolving to private addresses.
func ValidateURL(rawURL string, allowPrivate bool) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "url", Message: "URL is invalid"}
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	if allowPrivate {
		return nil
	}

	ips, err := net.LookupIP(parsedURL.Hostname())
	if err == nil {
		for _, ip := range ips {
			if isPrivateIP(ip) {
				return &ValidationError{
					Field:   "url",
					Message: "url cannot point to private network",
				}
			}
		}
	}

	return nil
}

// isPrivateIP checks if an IP address is in a private or restricted range:
// loopback, link-local (including cloud metadata) and RFC 1918 networks.
func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsPrivate() {
		return true
	}
	_, metadata, _ := net.ParseCIDR("169.254.0.0/16")
	return metadata.Contains(ip)
}
