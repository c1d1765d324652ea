// Package cache provides a TTL cache with least-recently-used eviction, hit/miss accounting
// and optional persistence to a durable key-value Store so that entries survive restarts.
//
// Entries are persisted in two ways:
//   - important entries (a designated key, or a TTL above ImportantTTL) are written
//     individually under Prefix+key as soon as they are set
//   - the whole in-memory map is written under Prefix+"main" by SaveSnapshot, which Run
//     calls on SnapshotInterval
//
// A Cache is safe for concurrent use.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"
)

// Default settings, matching the refresh cadence of the newsletter pipeline.
const (
	// DefaultMaxSize is the maximum number of live entries.
	DefaultMaxSize = 100

	// DefaultTTL applies to ordinary API responses.
	DefaultTTL = 5 * time.Minute

	// NewsletterTTL is kept below the 30 minute refresh interval so a stale
	// artifact never outlives more than one refresh cycle.
	NewsletterTTL = 20 * time.Minute

	// NewsletterKey is the key the generated newsletter is stored under.
	NewsletterKey = "newsletter-data"

	// ImportantTTL is the TTL above which entries are persisted individually.
	ImportantTTL = 10 * time.Minute

	// CleanupInterval is how often Run purges expired entries.
	CleanupInterval = 10 * time.Minute

	// SnapshotInterval is how often Run writes the whole map to the store.
	SnapshotInterval = 2 * time.Minute

	// DefaultPrefix namespaces every key written to the durable store.
	DefaultPrefix = "ai_pulse_cache_"

	// snapshotKey is the suffix of the whole-map snapshot record.
	snapshotKey = "main"
)

// Entry is the in-memory wrapper around a cached value.
type Entry[V any] struct {
	Value          V
	CreatedAt      time.Time
	TTL            time.Duration
	HitCount       int
	LastAccessedAt time.Time
}

// Expired reports whether the entry is stale at now.
func (e *Entry[V]) Expired(now time.Time) bool {
	return !now.Before(e.CreatedAt.Add(e.TTL))
}

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Size        int      `json:"size"`
	TotalHits   int64    `json:"totalHits"`
	TotalMisses int64    `json:"totalMisses"`
	Sets        int64    `json:"sets"`
	Evictions   int64    `json:"evictions"`
	HitRate     float64  `json:"hitRate"`
	MemoryUsage int      `json:"approximateMemoryUsage"`
	Keys        []string `json:"keys"`
}

// Options configures a Cache. Zero values fall back to the package defaults.
type Options struct {
	// Name labels the cache in logs and metrics.
	Name string

	MaxSize      int
	DefaultTTL   time.Duration
	ImportantTTL time.Duration

	// ImportantKeys are always persisted individually regardless of TTL.
	ImportantKeys []string

	// Prefix namespaces keys in Store.
	Prefix string

	// Store persists entries. Nil keeps the cache memory-only.
	Store Store

	Logger *slog.Logger

	// Now overrides the clock, for tests.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = "default"
	}
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultMaxSize
	}
	if o.DefaultTTL <= 0 {
		o.DefaultTTL = DefaultTTL
	}
	if o.ImportantTTL <= 0 {
		o.ImportantTTL = ImportantTTL
	}
	if o.ImportantKeys == nil {
		o.ImportantKeys = []string{NewsletterKey}
	}
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Cache is a TTL cache with LRU eviction.
type Cache[V any] struct {
	opts   Options
	store  Store
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	entries   map[string]*Entry[V]
	hits      int64
	misses    int64
	sets      int64
	evictions int64
}

// New creates a cache and loads any previously persisted, still-live entries from the store.
func New[V any](ctx context.Context, opts Options) *Cache[V] {
	opts = opts.withDefaults()
	c := &Cache[V]{
		opts:    opts,
		store:   opts.Store,
		logger:  opts.Logger.With(slog.String("cache", opts.Name)),
		now:     opts.Now,
		entries: make(map[string]*Entry[V]),
	}
	c.load(ctx)
	return c
}

// Get returns the live value stored under key. Expired entries are purged on access.
func (c *Cache[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	now := c.now()

	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		c.mu.Unlock()
		cacheMisses.WithLabelValues(c.opts.Name).Inc()
		return zero, false
	}
	if e.Expired(now) {
		delete(c.entries, key)
		c.misses++
		size := len(c.entries)
		c.mu.Unlock()
		cacheMisses.WithLabelValues(c.opts.Name).Inc()
		cacheEntries.WithLabelValues(c.opts.Name).Set(float64(size))
		c.removeFromStore(ctx, key)
		return zero, false
	}
	e.HitCount++
	e.LastAccessedAt = now
	c.hits++
	v := e.Value
	c.mu.Unlock()

	cacheHits.WithLabelValues(c.opts.Name).Inc()
	return v, true
}

// Set stores value under key for ttl. A ttl of zero or less uses DefaultTTL.
// When the cache is full and key is new, the least recently accessed entry is evicted first.
func (c *Cache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.opts.DefaultTTL
	}
	now := c.now()

	c.mu.Lock()
	var evicted string
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.opts.MaxSize {
		evicted = c.evictLRULocked()
	}
	e := &Entry[V]{
		Value:          value,
		CreatedAt:      now,
		TTL:            ttl,
		LastAccessedAt: now,
	}
	c.entries[key] = e
	c.sets++
	size := len(c.entries)
	rec := toRecord(e)
	c.mu.Unlock()

	cacheEntries.WithLabelValues(c.opts.Name).Set(float64(size))
	if evicted != "" {
		cacheEvictions.WithLabelValues(c.opts.Name, "lru").Inc()
		c.removeFromStore(ctx, evicted)
	}
	if c.important(key, ttl) {
		c.saveRecord(ctx, key, rec)
	}
}

// Delete removes key from memory and from the store.
func (c *Cache[V]) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	size := len(c.entries)
	c.mu.Unlock()

	cacheEntries.WithLabelValues(c.opts.Name).Set(float64(size))
	c.removeFromStore(ctx, key)
}

// Cleanup purges every expired entry from memory and from the store.
func (c *Cache[V]) Cleanup(ctx context.Context) {
	now := c.now()

	c.mu.Lock()
	var expired []string
	for key, e := range c.entries {
		if e.Expired(now) {
			delete(c.entries, key)
			c.evictions++
			expired = append(expired, key)
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	cacheEntries.WithLabelValues(c.opts.Name).Set(float64(size))
	for _, key := range expired {
		cacheEvictions.WithLabelValues(c.opts.Name, "expired").Inc()
		c.removeFromStore(ctx, key)
	}
	if len(expired) > 0 {
		c.logger.Debug("cache cleanup removed expired entries", slog.Int("count", len(expired)))
	}
}

// Clear empties memory and the store and resets every counter.
func (c *Cache[V]) Clear(ctx context.Context) {
	c.mu.Lock()
	c.entries = make(map[string]*Entry[V])
	c.hits, c.misses, c.sets, c.evictions = 0, 0, 0, 0
	c.mu.Unlock()

	cacheEntries.WithLabelValues(c.opts.Name).Set(0)
	if c.store == nil {
		return
	}
	if err := c.store.DeletePrefix(ctx, c.opts.Prefix); err != nil {
		c.logger.Warn("failed to clear cache store", slog.Any("error", err))
	}
}

// Stats returns usage statistics. HitRate is a percentage rounded to two decimals.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rate float64
	if total := c.hits + c.misses; total > 0 {
		rate = math.Round(float64(c.hits)/float64(total)*100*100) / 100
	}

	usage := 0
	if b, err := json.Marshal(c.snapshotLocked()); err == nil {
		usage = len(b)
	}

	return Stats{
		Size:        len(c.entries),
		TotalHits:   c.hits,
		TotalMisses: c.misses,
		Sets:        c.sets,
		Evictions:   c.evictions,
		HitRate:     rate,
		MemoryUsage: usage,
		Keys:        keys,
	}
}

// Len returns the number of entries currently held, including not yet purged expired ones.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLRULocked removes the entry with the oldest LastAccessedAt and returns its key.
func (c *Cache[V]) evictLRULocked() string {
	var (
		lruKey string
		oldest time.Time
		found  bool
	)
	for key, e := range c.entries {
		if !found || e.LastAccessedAt.Before(oldest) {
			lruKey, oldest, found = key, e.LastAccessedAt, true
		}
	}
	if found {
		delete(c.entries, lruKey)
		c.evictions++
	}
	return lruKey
}

func (c *Cache[V]) important(key string, ttl time.Duration) bool {
	if ttl > c.opts.ImportantTTL {
		return true
	}
	for _, k := range c.opts.ImportantKeys {
		if k == key {
			return true
		}
	}
	return false
}
