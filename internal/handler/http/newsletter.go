package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ai-pulse/internal/cache"
	"ai-pulse/internal/domain/entity"
	"ai-pulse/internal/handler/http/auth"
	"ai-pulse/internal/handler/http/respond"
	"ai-pulse/internal/infra/render"
	"ai-pulse/internal/observability/logging"
	"ai-pulse/internal/observability/slo"
	"ai-pulse/internal/resilience/circuitbreaker"
)

// NewsletterService produces the newsletter.
type NewsletterService interface {
	Fetch(ctx context.Context) (*entity.Newsletter, error)
	Refresh(ctx context.Context) (*entity.Newsletter, error)
	Cached(ctx context.Context) (*entity.Newsletter, bool)
	ServiceName() string
}

// CacheAdmin exposes cache maintenance.
type CacheAdmin interface {
	Stats() cache.Stats
	Clear(ctx context.Context)
	Cleanup(ctx context.Context)
}

// BreakerStatus reports circuit breaker state per service.
type BreakerStatus interface {
	Status() map[string]circuitbreaker.Status
}

// LimiterUsage reports how many provider calls are in the current rate window.
type LimiterUsage interface {
	InWindow() int
}

// NewsletterHandler serves the newsletter and its renderings.
type NewsletterHandler struct {
	Service  NewsletterService
	Cache    CacheAdmin
	Breakers BreakerStatus
	Limiter  LimiterUsage

	// LimiterCapacity is the number of calls allowed per window, for the status page.
	LimiterCapacity int

	// LinkCache is the link checker's result cache. Nil when link checking is off.
	LinkCache interface{ Stats() cache.Stats }

	// SLO reports request indicators for the status page. Optional.
	SLO interface{ Report() slo.Report }

	Site render.Site
	Now  func() time.Time
}

func (h *NewsletterHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Get serves the newsletter as JSON, generating it when nothing is cached.
//
// @Summary      Current newsletter
// @Description  Returns the cached newsletter, or generates one on a cache miss.
// @Tags         newsletter
// @Produce      json
// @Success      200 {object} entity.Newsletter
// @Failure      429 {object} map[string]string "Too many requests from this client"
// @Failure      502 {object} map[string]string "Provider returned an unusable report"
// @Failure      503 {object} map[string]string "Circuit breaker open"
// @Failure      504 {object} map[string]string "Provider timed out"
// @Router       /api/newsletter [get]
func (h *NewsletterHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.Fetch(r.Context())
	if err != nil {
		writeFetchError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	respond.JSON(w, http.StatusOK, n)
}

// RSS serves the newsletter as an RSS 2.0 feed.
//
// @Summary      RSS feed
// @Tags         newsletter
// @Produce      xml
// @Success      200 {string} string "RSS 2.0 document"
// @Failure      502 {object} map[string]string "Provider returned an unusable report"
// @Failure      503 {object} map[string]string "Circuit breaker open"
// @Failure      504 {object} map[string]string "Provider timed out"
// @Router       /rss.xml [get]
func (h *NewsletterHandler) RSS(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.Fetch(r.Context())
	if err != nil {
		writeFetchError(w, err)
		return
	}
	body, err := render.RSS(n, h.Site, h.now())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", render.FeedTTLMinutes*60))
	respond.Document(w, http.StatusOK, "application/rss+xml; charset=utf-8", body)
}

// Digest serves the weekly digest. format=html or format=text return the rendered
// body; anything else returns subject and both bodies as JSON.
//
// @Summary      Weekly digest
// @Tags         newsletter
// @Produce      json,html,plain
// @Param        format query string false "Output format" Enums(json, html, text)
// @Success      200 {object} render.Digest
// @Failure      400 {object} map[string]string "Unknown format"
// @Failure      502 {object} map[string]string "Provider returned an unusable report"
// @Failure      503 {object} map[string]string "Circuit breaker open"
// @Failure      504 {object} map[string]string "Provider timed out"
// @Router       /api/digest [get]
func (h *NewsletterHandler) Digest(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	switch format {
	case "", "json", "html", "text":
	default:
		respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("format must be json, html or text"))
		return
	}

	n, err := h.Service.Fetch(r.Context())
	if err != nil {
		writeFetchError(w, err)
		return
	}
	d, err := render.WeeklyDigest(n, h.Site, h.now())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	switch format {
	case "html":
		respond.Document(w, http.StatusOK, "text/html; charset=utf-8", []byte(d.HTML))
	case "text":
		respond.Document(w, http.StatusOK, "text/plain; charset=utf-8", []byte(d.Text))
	default:
		respond.JSON(w, http.StatusOK, d)
	}
}

// StatusResponse is the body of the status endpoint.
type StatusResponse struct {
	Service         string                           `json:"service"`
	Timestamp       time.Time                        `json:"timestamp"`
	Newsletter      NewsletterStatus                 `json:"newsletter"`
	Cache           cache.Stats                      `json:"cache"`
	CircuitBreakers map[string]circuitbreaker.Status `json:"circuitBreakers"`
	RateLimiter     *RateLimiterStatus               `json:"rateLimiter,omitempty"`
	LinkCache       *cache.Stats                     `json:"linkCache,omitempty"`
	SLO             *slo.Report                      `json:"slo,omitempty"`
}

// NewsletterStatus describes the cached newsletter.
type NewsletterStatus struct {
	Cached      bool       `json:"cached"`
	GeneratedAt *time.Time `json:"generatedAt,omitempty"`
	Sections    int        `json:"sections"`
	Items       int        `json:"items"`
}

// RateLimiterStatus is the provider call budget in the current window.
type RateLimiterStatus struct {
	InWindow int `json:"inWindow"`
	Limit    int `json:"limit"`
}

// Status reports cache, breaker and rate limiter state without calling the provider.
//
// @Summary      Service status
// @Tags         status
// @Produce      json
// @Success      200 {object} StatusResponse
// @Router       /api/status [get]
func (h *NewsletterHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Service:         h.Service.ServiceName(),
		Timestamp:       h.now().UTC(),
		Cache:           h.Cache.Stats(),
		CircuitBreakers: map[string]circuitbreaker.Status{},
	}
	if n, ok := h.Service.Cached(r.Context()); ok {
		at := n.GeneratedAt
		resp.Newsletter = NewsletterStatus{
			Cached:      true,
			GeneratedAt: &at,
			Sections:    len(n.Sections),
			Items:       n.ItemCount(),
		}
	}
	if h.Breakers != nil {
		resp.CircuitBreakers = h.Breakers.Status()
	}
	if h.Limiter != nil {
		resp.RateLimiter = &RateLimiterStatus{InWindow: h.Limiter.InWindow(), Limit: h.LimiterCapacity}
	}
	if h.LinkCache != nil {
		stats := h.LinkCache.Stats()
		resp.LinkCache = &stats
	}
	if h.SLO != nil {
		report := h.SLO.Report()
		resp.SLO = &report
	}
	w.Header().Set("Cache-Control", "no-store")
	respond.JSON(w, http.StatusOK, resp)
}

// Refresh regenerates the newsletter. Admin only.
//
// @Summary      Regenerate the newsletter
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} entity.Newsletter
// @Failure      401 {object} map[string]string "Missing or invalid token"
// @Failure      403 {object} map[string]string "Admin role required"
// @Failure      502 {object} map[string]string "Provider returned an unusable report"
// @Failure      503 {object} map[string]string "Circuit breaker open"
// @Failure      504 {object} map[string]string "Provider timed out"
// @Router       /api/newsletter/refresh [post]
func (h *NewsletterHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	logging.FromContext(r.Context()).Info("newsletter refresh requested", "user", user)

	n, err := h.Service.Refresh(r.Context())
	if err != nil {
		writeFetchError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, n)
}

// ClearCache drops every cache entry, the persisted copies included. Admin only.
//
// @Summary      Clear the cache
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} map[string]int
// @Failure      401 {object} map[string]string "Missing or invalid token"
// @Failure      403 {object} map[string]string "Admin role required"
// @Router       /api/cache/clear [post]
func (h *NewsletterHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	before := h.Cache.Stats().Size
	h.Cache.Clear(r.Context())
	logging.FromContext(r.Context()).Info("cache cleared", "entries", before)
	respond.JSON(w, http.StatusOK, map[string]any{"cleared": before})
}

// CleanupCache purges expired entries. Admin only.
//
// @Summary      Purge expired cache entries
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Failure      401 {object} map[string]string "Missing or invalid token"
// @Failure      403 {object} map[string]string "Admin role required"
// @Router       /api/cache/cleanup [post]
func (h *NewsletterHandler) CleanupCache(w http.ResponseWriter, r *http.Request) {
	before := h.Cache.Stats().Size
	h.Cache.Cleanup(r.Context())
	after := h.Cache.Stats()
	respond.JSON(w, http.StatusOK, map[string]any{"removed": before - after.Size, "cache": after})
}
