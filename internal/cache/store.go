package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store is a durable key-value backend for cache persistence.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value stored under key. ok is false when the key does not exist.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists every key starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// record is the persisted form of an entry. Times are Unix milliseconds and
// expiry is the TTL in milliseconds.
type record[V any] struct {
	Data         V     `json:"data"`
	Timestamp    int64 `json:"timestamp"`
	Expiry       int64 `json:"expiry"`
	Hits         int   `json:"hits"`
	LastAccessed int64 `json:"lastAccessed"`
}

func toRecord[V any](e *Entry[V]) record[V] {
	return record[V]{
		Data:         e.Value,
		Timestamp:    e.CreatedAt.UnixMilli(),
		Expiry:       e.TTL.Milliseconds(),
		Hits:         e.HitCount,
		LastAccessed: e.LastAccessedAt.UnixMilli(),
	}
}

func (r record[V]) entry() *Entry[V] {
	return &Entry[V]{
		Value:          r.Data,
		CreatedAt:      time.UnixMilli(r.Timestamp),
		TTL:            time.Duration(r.Expiry) * time.Millisecond,
		HitCount:       r.Hits,
		LastAccessedAt: time.UnixMilli(r.LastAccessed),
	}
}

// snapshotLocked builds the whole-map snapshot. c.mu must be held.
func (c *Cache[V]) snapshotLocked() map[string]record[V] {
	snap := make(map[string]record[V], len(c.entries))
	for k, e := range c.entries {
		snap[k] = toRecord(e)
	}
	return snap
}

// SaveSnapshot writes the whole in-memory map to the store under Prefix+"main".
func (c *Cache[V]) SaveSnapshot(ctx context.Context) {
	if c.store == nil {
		return
	}
	c.mu.Lock()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	b, err := json.Marshal(snap)
	if err != nil {
		c.logger.Warn("failed to encode cache snapshot", slog.Any("error", err))
		return
	}
	if err := c.store.Set(ctx, c.opts.Prefix+snapshotKey, b); err != nil {
		c.logger.Warn("failed to save cache snapshot", slog.Any("error", err))
		cacheStoreErrors.WithLabelValues(c.opts.Name, "snapshot").Inc()
	}
}

func (c *Cache[V]) saveRecord(ctx context.Context, key string, rec record[V]) {
	if c.store == nil {
		return
	}
	b, err := json.Marshal(rec)
	if err != nil {
		c.logger.Warn("failed to encode cache item", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := c.store.Set(ctx, c.opts.Prefix+key, b); err != nil {
		c.logger.Warn("failed to save cache item", slog.String("key", key), slog.Any("error", err))
		cacheStoreErrors.WithLabelValues(c.opts.Name, "set").Inc()
	}
}

func (c *Cache[V]) removeFromStore(ctx context.Context, key string) {
	if c.store == nil {
		return
	}
	if err := c.store.Delete(ctx, c.opts.Prefix+key); err != nil {
		c.logger.Warn("failed to remove cache item", slog.String("key", key), slog.Any("error", err))
		cacheStoreErrors.WithLabelValues(c.opts.Name, "delete").Inc()
	}
}

// load restores the snapshot and then the individually persisted entries, which are
// newer than the snapshot when both exist. Expired records are skipped and removed.
func (c *Cache[V]) load(ctx context.Context) {
	if c.store == nil {
		return
	}
	now := c.now()
	mainKey := c.opts.Prefix + snapshotKey
	loaded := 0

	if b, ok, err := c.store.Get(ctx, mainKey); err != nil {
		c.logger.Warn("failed to read cache snapshot", slog.Any("error", err))
	} else if ok {
		var snap map[string]record[V]
		if err := json.Unmarshal(b, &snap); err != nil {
			c.logger.Warn("failed to decode cache snapshot", slog.Any("error", err))
		} else {
			for k, r := range snap {
				if e := r.entry(); !e.Expired(now) {
					c.entries[k] = e
					loaded++
				}
			}
		}
	}

	keys, err := c.store.Keys(ctx, c.opts.Prefix)
	if err != nil {
		c.logger.Warn("failed to list cache items", slog.Any("error", err))
		keys = nil
	}
	for _, fullKey := range keys {
		if fullKey == mainKey {
			continue
		}
		key := strings.TrimPrefix(fullKey, c.opts.Prefix)
		b, ok, err := c.store.Get(ctx, fullKey)
		if err != nil || !ok {
			continue
		}
		var r record[V]
		if err := json.Unmarshal(b, &r); err != nil {
			c.logger.Warn("failed to decode cache item", slog.String("key", key), slog.Any("error", err))
			continue
		}
		e := r.entry()
		if e.Expired(now) {
			if err := c.store.Delete(ctx, fullKey); err != nil {
				c.logger.Warn("failed to remove expired cache item", slog.String("key", key), slog.Any("error", err))
			}
			continue
		}
		if _, seen := c.entries[key]; !seen {
			loaded++
		}
		c.entries[key] = e
	}

	// Loading may exceed MaxSize if the limit was lowered between runs.
	for len(c.entries) > c.opts.MaxSize {
		c.evictLRULocked()
	}

	cacheEntries.WithLabelValues(c.opts.Name).Set(float64(len(c.entries)))
	if loaded > 0 {
		c.logger.Info("cache restored from store", slog.Int("entries", len(c.entries)))
	}
}

// MemoryStore is an in-process Store. It does not survive restarts and is meant for
// single-binary deployments without a durable backend, and for tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	s.mu.Lock()
	s.data[key] = v
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			delete(s.data, k)
		}
	}
	return nil
}
