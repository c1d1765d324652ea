package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-pulse/internal/cache"
	"ai-pulse/internal/resilience/circuitbreaker"
)

// CacheStore persists cache records in the cache_entries table.
// Writes and key listing go through a circuit breaker.
type CacheStore struct {
	db  circuitbreaker.Querier
	now func() time.Time
}

// NewCacheStore wraps an open database whose schema was created by db.MigrateUp.
func NewCacheStore(db *sql.DB) *CacheStore {
	return &CacheStore{db: circuitbreaker.NewDBCircuitBreaker(db), now: time.Now}
}

var _ cache.Store = (*CacheStore)(nil)

func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const query = `SELECT value FROM cache_entries WHERE cache_key = ? LIMIT 1`
	var value []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("Get: QueryRowContext: %w", err)
	}
	return value, true, nil
}

func (s *CacheStore) Set(ctx context.Context, key string, value []byte) error {
	const query = `
INSERT INTO cache_entries (cache_key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(cache_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, key, value, s.now().UnixMilli()); err != nil {
		return fmt.Errorf("Set: ExecContext: %w", err)
	}
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM cache_entries WHERE cache_key = ?`
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("Delete: ExecContext: %w", err)
	}
	return nil
}

func (s *CacheStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	const query = `
SELECT cache_key
FROM cache_entries
WHERE cache_key LIKE ? ESCAPE '\'
ORDER BY cache_key ASC`
	rows, err := s.db.QueryContext(ctx, query, likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("Keys: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	keys := make([]string, 0, 16)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("Keys: Scan: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Keys: rows.Err: %w", err)
	}
	return keys, nil
}

func (s *CacheStore) DeletePrefix(ctx context.Context, prefix string) error {
	const query = `DELETE FROM cache_entries WHERE cache_key LIKE ? ESCAPE '\'`
	if _, err := s.db.ExecContext(ctx, query, likePrefix(prefix)); err != nil {
		return fmt.Errorf("DeletePrefix: ExecContext: %w", err)
	}
	return nil
}

// likePrefix escapes LIKE wildcards in prefix; cache prefixes contain underscores.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
