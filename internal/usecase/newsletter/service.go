package newsletter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"ai-pulse/internal/cache"
	"ai-pulse/internal/domain/entity"
	"ai-pulse/internal/infra/generator"
	"ai-pulse/internal/observability/metrics"
	"ai-pulse/internal/observability/tracing"
	"ai-pulse/internal/resilience"
)

// Defaults for the generation call.
const (
	DefaultTimeout     = 45 * time.Second
	DefaultMaxAttempts = 2
)

// Limiter paces outbound provider calls. Wait blocks until a call may proceed.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Config tunes the generation call. Zero values use the package defaults.
type Config struct {
	// Timeout bounds each provider attempt.
	Timeout time.Duration

	// MaxAttempts is the number of attempts for the main call. The repair call
	// always makes a single attempt.
	MaxAttempts int

	// Search enables provider-side web search for the main call.
	Search bool

	// TTL is how long a generated newsletter stays cached.
	TTL time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.TTL <= 0 {
		c.TTL = cache.NewsletterTTL
	}
	return c
}

// PostProcessor rewrites a freshly generated newsletter before it is cached,
// for example to drop items with broken links.
type PostProcessor func(ctx context.Context, n *entity.Newsletter) (*entity.Newsletter, error)

// Service generates newsletters and keeps the latest one cached.
// It owns none of its collaborators, so tests can inject fresh ones per case.
type Service struct {
	gen     generator.Generator
	cache   *cache.Cache[*entity.Newsletter]
	exec    *resilience.Executor
	limiter Limiter
	prompt  string
	cfg     Config
	post    []PostProcessor
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPostProcessor adds a step that runs on every generated newsletter, in the
// order added, before the result is cached.
func WithPostProcessor(p PostProcessor) Option {
	return func(s *Service) { s.post = append(s.post, p) }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService wires a Service. prompt is the rendered generation prompt (see BuildPrompt).
func NewService(
	gen generator.Generator,
	store *cache.Cache[*entity.Newsletter],
	exec *resilience.Executor,
	limiter Limiter,
	prompt string,
	cfg Config,
	opts ...Option,
) *Service {
	s := &Service{
		gen:     gen,
		cache:   store,
		exec:    exec,
		limiter: limiter,
		prompt:  prompt,
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch returns the cached newsletter or generates a new one.
//
// Generation runs strictly in order: rate limit, provider call through the executor,
// response checks, JSON extraction, parse (with one repair call on malformed JSON),
// schema validation, then write-through to the cache. Failures are returned as *Error
// with a message fit for end users, except context cancellation which is returned as is.
func (s *Service) Fetch(ctx context.Context) (n *entity.Newsletter, err error) {
	ctx, span := tracing.StartSpan(ctx, "newsletter.fetch", attribute.String("service", s.gen.Name()))
	defer func() { tracing.EndSpan(span, err) }()

	if cached, ok := s.Cached(ctx); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		metrics.RecordNewsletterFetch("cache_hit")
		s.logger.DebugContext(ctx, "returning cached newsletter")
		return cached, nil
	}
	return s.generateAndRecord(ctx)
}

// Refresh generates a new newsletter without consulting the cache. The cached
// newsletter is replaced only when generation succeeds.
func (s *Service) Refresh(ctx context.Context) (n *entity.Newsletter, err error) {
	ctx, span := tracing.StartSpan(ctx, "newsletter.refresh", attribute.String("service", s.gen.Name()))
	defer func() { tracing.EndSpan(span, err) }()

	return s.generateAndRecord(ctx)
}

// Cached returns the cached newsletter without calling the provider.
func (s *Service) Cached(ctx context.Context) (*entity.Newsletter, bool) {
	n, ok := s.cache.Get(ctx, cache.NewsletterKey)
	if !ok || n == nil {
		return nil, false
	}
	return n, true
}

// ServiceName is the name of the provider behind this service.
func (s *Service) ServiceName() string {
	return s.gen.Name()
}

func (s *Service) generateAndRecord(ctx context.Context) (*entity.Newsletter, error) {
	s.logger.InfoContext(ctx, "generating fresh newsletter", slog.String("service", s.gen.Name()))
	start := time.Now()

	n, err := s.generate(ctx)
	if err != nil {
		err = userError(err)
		metrics.RecordNewsletterFetch(KindLabel(err))
		s.logger.ErrorContext(ctx, "newsletter generation failed",
			slog.String("kind", KindLabel(err)),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", cause(err)),
			slog.String("message", err.Error()))
		return nil, err
	}

	duration := time.Since(start)
	metrics.RecordNewsletterFetch("generated")
	metrics.RecordNewsletterGenerated(n.ItemCount(), len(n.GroundingSources), duration)
	s.logger.InfoContext(ctx, "newsletter generated",
		slog.Int("sections", len(n.Sections)),
		slog.Int("items", n.ItemCount()),
		slog.Int("grounding_sources", len(n.GroundingSources)),
		slog.Duration("duration", duration))
	return n, nil
}

func (s *Service) generate(ctx context.Context) (*entity.Newsletter, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := s.call(ctx, generator.Request{Prompt: s.prompt, Search: s.cfg.Search}, s.cfg.MaxAttempts)
	if err != nil {
		return nil, err
	}

	text, err := checkResponse(resp)
	if err != nil {
		return nil, err
	}

	raw, ok := ExtractJSON(text)
	if !ok {
		s.logger.WarnContext(ctx, "no JSON object in provider response", slog.Int("length", len(text)))
		return nil, newError(ErrExtractionFailed, msgNoJSON, nil)
	}

	payload, err := parsePayload(raw)
	if errors.Is(err, ErrParseFailed) {
		s.logger.WarnContext(ctx, "initial JSON parsing failed, attempting repair", slog.Any("error", cause(err)))
		payload, err = s.repair(ctx, raw)
		metrics.RecordRepair(err == nil)
	}
	if err != nil {
		return nil, err
	}

	n := entity.NewNewsletter(payload, groundingSources(resp.Candidates[0].Grounding), s.now())
	for _, p := range s.post {
		if n, err = p(ctx, n); err != nil {
			return nil, err
		}
	}
	s.cache.Set(ctx, cache.NewsletterKey, n, s.cfg.TTL)
	return n, nil
}

// repair makes exactly one call asking the provider to fix broken. Any failure
// except a schema mismatch of the repaired document is ErrRepairFailed.
func (s *Service) repair(ctx context.Context, broken string) (*entity.Payload, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := s.call(ctx, generator.Request{Prompt: RepairPrompt(broken)}, 1)
	if err != nil {
		return nil, newError(ErrRepairFailed, msgRepairFailed, err)
	}
	text, err := checkResponse(resp)
	if err != nil {
		return nil, newError(ErrRepairFailed, msgRepairFailed, errors.New("repair returned no text"))
	}
	raw, ok := ExtractJSON(text)
	if !ok {
		return nil, newError(ErrRepairFailed, msgRepairFailed, errors.New("no JSON object in repaired text"))
	}

	payload, err := parsePayload(raw)
	var fe *Error
	if errors.As(err, &fe) && fe.Kind == ErrParseFailed {
		return nil, newError(ErrRepairFailed, msgRepairFailed, fe.Err)
	}
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "repaired malformed JSON")
	return payload, nil
}

func (s *Service) call(ctx context.Context, req generator.Request, attempts int) (*generator.Response, error) {
	return resilience.Execute(ctx, s.exec, resilience.Options{
		ServiceName: s.gen.Name(),
		MaxAttempts: attempts,
		Timeout:     s.cfg.Timeout,
	}, func(ctx context.Context) (*generator.Response, error) {
		return s.gen.Generate(ctx, req)
	})
}
