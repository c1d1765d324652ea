// Package logging provides structured logging utilities with context propagation.
//
// It wraps log/slog with the helpers the binaries share: JSON and text handlers,
// LOG_LEVEL parsing, request id propagation and a logger carried in the context.
//
// Example usage:
//
//	import "ai-pulse/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    slog.SetDefault(logger)
//	    logger.Info("api started", slog.String("addr", ":8080"))
//	}
//
//	func handleRequest(ctx context.Context) {
//	    logger := logging.WithRequestID(ctx, slog.Default())
//	    logger.Info("serving newsletter")
//	}
package logging
