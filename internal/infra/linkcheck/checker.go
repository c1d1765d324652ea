// Package linkcheck verifies the links of a generated newsletter before it is published.
//
// Models invent or mangle URLs. The checker normalizes every link with FixURL, sends a
// HEAD request to it and drops items whose link does not resolve. Results are cached
// so repeated refreshes do not hammer the same hosts.
package linkcheck

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"ai-pulse/internal/cache"
	"ai-pulse/internal/domain/entity"
	"ai-pulse/internal/observability/metrics"
	"ai-pulse/internal/observability/tracing"
	"ai-pulse/internal/resilience/circuitbreaker"
)

// Defaults for Config.
const (
	DefaultTimeout       = 10 * time.Second
	DefaultCacheTTL      = time.Hour
	DefaultConcurrency   = 5
	DefaultRatePerSecond = 10
	DefaultMaxRedirects  = 10
	DefaultUserAgent     = "GreyBrain AI Pulse Bot 1.0"
)

// Config tunes a Checker. Zero values use the package defaults.
type Config struct {
	Timeout       time.Duration
	CacheTTL      time.Duration
	Concurrency   int
	RatePerSecond float64
	MaxRedirects  int
	UserAgent     string

	// AllowPrivate permits links to loopback and private networks. Only tests set it.
	AllowPrivate bool
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.RatePerSecond <= 0 {
		c.RatePerSecond = DefaultRatePerSecond
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = DefaultMaxRedirects
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

// Result is the outcome of validating one link.
type Result struct {
	URL          string        `json:"url"`
	FixedURL     string        `json:"fixedUrl"`
	Valid        bool          `json:"valid"`
	Checked      bool          `json:"checked"`
	Status       int           `json:"status,omitempty"`
	RedirectURL  string        `json:"redirectUrl,omitempty"`
	Error        string        `json:"error,omitempty"`
	ResponseTime time.Duration `json:"responseTime"`
}

// Report summarizes a CheckNewsletter run.
type Report struct {
	Checked int      `json:"checked"`
	Valid   int      `json:"valid"`
	Fixed   int      `json:"fixed"`
	Dropped []Result `json:"dropped"`
}

// Checker validates links. It is safe for concurrent use.
type Checker struct {
	cfg     Config
	client  *http.Client
	results *cache.Cache[Result]
	breaker *circuitbreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient replaces the HTTP client. Its CheckRedirect is kept as given.
func WithHTTPClient(c *http.Client) Option {
	return func(ch *Checker) { ch.client = c }
}

// WithLogger sets the checker logger.
func WithLogger(l *slog.Logger) Option {
	return func(ch *Checker) { ch.logger = l }
}

// WithLimiter replaces the request pacing limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(ch *Checker) { ch.limiter = l }
}

// New creates a Checker with an in-memory result cache.
func New(ctx context.Context, cfg Config, opts ...Option) *Checker {
	cfg = cfg.withDefaults()
	c := &Checker{
		cfg:     cfg,
		breaker: circuitbreaker.New(circuitbreaker.LinkCheckConfig()),
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Concurrency),
		logger:  slog.Default(),
	}
	c.client = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", len(via))
			}
			if err := entity.ValidateURL(req.URL.String(), cfg.AllowPrivate); err != nil {
				return fmt.Errorf("redirect target rejected: %w", err)
			}
			return nil
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.results = cache.New[Result](ctx, cache.Options{
		Name:          "linkcheck",
		MaxSize:       1000,
		DefaultTTL:    cfg.CacheTTL,
		ImportantKeys: []string{},
		Logger:        c.logger,
	})
	return c
}

// Validate checks one link. The link is normalized with FixURL first and the result
// is cached under the normalized form. When the breaker is open the link is reported
// valid but unchecked, so an outage on our side never strips content.
func (c *Checker) Validate(ctx context.Context, raw string) Result {
	fixed := FixURL(raw)
	if res, ok := c.results.Get(ctx, fixed); ok {
		metrics.RecordLinkCheck("cached")
		res.URL = raw
		return res
	}

	res := Result{URL: raw, FixedURL: fixed}
	if err := entity.ValidateURL(fixed, c.cfg.AllowPrivate); err != nil {
		res.Error = err.Error()
		res.Checked = true
		metrics.RecordLinkCheck("blocked")
		c.results.Set(ctx, fixed, res, c.cfg.CacheTTL)
		return res
	}

	if err := c.limiter.Wait(ctx); err != nil {
		res.Error = err.Error()
		return res
	}

	start := time.Now()
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.head(ctx, fixed)
	})
	res.ResponseTime = time.Since(start)

	switch {
	case circuitbreaker.IsRejection(err):
		res.Valid = true
		res.Error = "not checked: " + err.Error()
		metrics.RecordLinkCheck("skipped")
		return res
	case ctx.Err() != nil:
		res.Error = ctx.Err().Error()
		return res
	case err != nil:
		res.Checked = true
		res.Error = requestError(err)
	default:
		resp := out.(*headResult)
		res.Checked = true
		res.Status = resp.status
		res.Valid = resp.status >= 200 && resp.status < 400
		if resp.finalURL != fixed {
			res.RedirectURL = resp.finalURL
		}
	}

	if res.Valid {
		metrics.RecordLinkCheck("valid")
	} else {
		metrics.RecordLinkCheck("invalid")
	}
	c.results.Set(ctx, fixed, res, c.cfg.CacheTTL)
	return res
}

type headResult struct {
	status   int
	finalURL string
}

// head returns an error only for transport failures, which are what the breaker counts.
func (c *Checker) head(ctx context.Context, target string) (*headResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	return &headResult{status: resp.StatusCode, finalURL: resp.Request.URL.String()}, nil
}

func requestError(err error) string {
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return "request timeout"
	}
	return err.Error()
}

// CheckNewsletter validates every item link of n with bounded concurrency and returns
// a copy in which links are normalized and items with broken links are removed.
// Item ids follow the normalized link. Sections left without items are dropped.
func (c *Checker) CheckNewsletter(ctx context.Context, n *entity.Newsletter) (out *entity.Newsletter, report Report, err error) {
	ctx, span := tracing.StartSpan(ctx, "linkcheck.newsletter", attribute.Int("items", n.ItemCount()))
	defer func() { tracing.EndSpan(span, err) }()

	items := n.AllItems()
	results := make([]Result, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for i, item := range items {
		g.Go(func() error {
			results[i] = c.Validate(gctx, item.SourceURL)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, Report{}, err
	}

	out = &entity.Newsletter{
		Sections:         make([]entity.Section, 0, len(n.Sections)),
		GroundingSources: n.GroundingSources,
		GeneratedAt:      n.GeneratedAt,
	}
	report.Checked = len(items)
	report.Dropped = []Result{}

	i := 0
	for _, section := range n.Sections {
		kept := make([]entity.Item, 0, len(section.Items))
		for _, item := range section.Items {
			res := results[i]
			i++
			if !res.Valid {
				report.Dropped = append(report.Dropped, res)
				continue
			}
			report.Valid++
			if res.FixedURL != item.SourceURL {
				report.Fixed++
				item.SourceURL = res.FixedURL
				item.ID = entity.ItemID(res.FixedURL)
			}
			kept = append(kept, item)
		}
		if len(kept) > 0 {
			out.Sections = append(out.Sections, entity.Section{CategoryTitle: section.CategoryTitle, Items: kept})
		}
	}

	span.SetAttributes(attribute.Int("dropped", len(report.Dropped)))
	c.logger.InfoContext(ctx, "newsletter links checked",
		slog.Int("checked", report.Checked),
		slog.Int("valid", report.Valid),
		slog.Int("fixed", report.Fixed),
		slog.Int("dropped", len(report.Dropped)))
	return out, report, nil
}

// Filter runs CheckNewsletter and returns the checked copy. When no item survives, n is
// returned unchanged: losing every link at once points at our own network, not the model.
func (c *Checker) Filter(ctx context.Context, n *entity.Newsletter) (*entity.Newsletter, error) {
	out, report, err := c.CheckNewsletter(ctx, n)
	if err != nil {
		return nil, err
	}
	if report.Checked > 0 && report.Valid == 0 {
		c.logger.WarnContext(ctx, "every link failed validation, keeping newsletter unchanged",
			slog.Int("checked", report.Checked))
		return n, nil
	}
	return out, nil
}

// Stats reports usage of the result cache.
func (c *Checker) Stats() cache.Stats {
	return c.results.Stats()
}

// ClearCache forgets every cached result.
func (c *Checker) ClearCache(ctx context.Context) {
	c.results.Clear(ctx)
}
