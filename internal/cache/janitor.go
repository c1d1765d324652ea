package cache

import (
	"context"
	"log/slog"
	"time"
)

// Run purges expired entries every cleanupInterval and writes a snapshot every
// snapshotInterval until ctx is cancelled. A final snapshot is written on shutdown.
// Zero intervals fall back to CleanupInterval and SnapshotInterval.
func (c *Cache[V]) Run(ctx context.Context, cleanupInterval, snapshotInterval time.Duration) {
	if cleanupInterval <= 0 {
		cleanupInterval = CleanupInterval
	}
	if snapshotInterval <= 0 {
		snapshotInterval = SnapshotInterval
	}

	cleanup := time.NewTicker(cleanupInterval)
	defer cleanup.Stop()
	snapshot := time.NewTicker(snapshotInterval)
	defer snapshot.Stop()

	c.logger.Info("cache janitor started",
		slog.Duration("cleanup_interval", cleanupInterval),
		slog.Duration("snapshot_interval", snapshotInterval))

	for {
		select {
		case <-ctx.Done():
			// the parent context is already done, give the final write its own deadline
			saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			c.SaveSnapshot(saveCtx)
			cancel()
			c.logger.Info("cache janitor stopped")
			return

		case <-cleanup.C:
			c.Cleanup(ctx)

		case <-snapshot.C:
			c.SaveSnapshot(ctx)
		}
	}
}
