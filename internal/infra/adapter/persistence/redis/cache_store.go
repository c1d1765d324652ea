// Package redis implements the durable cache store on Redis so that the API and the
// worker can share one cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"ai-pulse/internal/cache"
)

// scanBatch is the COUNT hint passed to SCAN.
const scanBatch = 100

// CacheStore persists cache records as plain Redis string keys.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore wraps an existing client.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// NewCacheStoreWithURL connects using a redis:// URL and verifies the connection.
func NewCacheStoreWithURL(ctx context.Context, url string) (*CacheStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &CacheStore{client: client}, nil
}

var _ cache.Store = (*CacheStore)(nil)

// Close closes the Redis connection.
func (s *CacheStore) Close() error {
	return s.client.Close()
}

// Ping reports whether Redis is reachable.
func (s *CacheStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, true, nil
}

func (s *CacheStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *CacheStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, globPrefix(prefix), scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan %s: %w", prefix, err)
	}
	return keys, nil
}

func (s *CacheStore) DeletePrefix(ctx context.Context, prefix string) error {
	keys, err := s.Keys(ctx, prefix)
	if err != nil {
		return err
	}
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		if err := s.client.Del(ctx, keys[start:end]...).Err(); err != nil {
			return fmt.Errorf("redis del prefix %s: %w", prefix, err)
		}
	}
	return nil
}

// globPrefix escapes glob metacharacters so prefix is matched literally.
func globPrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(prefix) + "*"
}
