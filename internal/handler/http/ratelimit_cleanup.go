package http

import (
	"context"
	"log/slog"
	"time"
)

// StartRateLimitCleanup prunes idle clients from rl every interval until ctx is done.
// It blocks, so run it in its own goroutine.
func StartRateLimitCleanup(ctx context.Context, rl *RateLimiter, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("rate limit cleanup started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("rate limit cleanup stopped")
			return
		case <-ticker.C:
			if removed := rl.Cleanup(); removed > 0 {
				logger.Debug("rate limit cleanup completed",
					slog.Int("removed", removed),
					slog.Int("clients", rl.Clients()))
			}
		}
	}
}
