// Package cmd contains the pulse CLI commands.
package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ai-pulse/internal/bootstrap"
	"ai-pulse/internal/observability/logging"
)

var (
	version = "dev"

	// loadApp wires the application from the environment. Tests replace it.
	loadApp = func(ctx context.Context, logger *slog.Logger, opts ...bootstrap.Option) (*bootstrap.App, error) {
		cfg, err := bootstrap.LoadConfig(logger, nil)
		if err != nil {
			return nil, err
		}
		return bootstrap.New(ctx, cfg, logger, opts...)
	}

	// now is the clock used for rendered documents.
	now = time.Now
)

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. Every call returns fresh commands, so flag
// state never leaks between runs.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pulse",
		Short: "Generate and inspect the AI Pulse newsletter",
		Long: `pulse drives the newsletter pipeline from the command line.

Configuration comes from the environment (and an optional .env file), the same
variables the API server reads.

Example usage:
  pulse generate               # Print the newsletter, generating it on a cache miss
  pulse generate --json        # Print the newsletter as JSON
  pulse rss > rss.xml          # Render the RSS feed
  pulse digest --format text   # Render the weekly digest
  pulse links https://x.com/a  # Check links
  pulse cache stats            # Show cache statistics`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			_ = godotenv.Load()
			slog.SetDefault(logging.NewTextLogger())
		},
	}

	root.AddCommand(
		newGenerateCmd(),
		newRSSCmd(),
		newDigestCmd(),
		newLinksCmd(),
		newCacheCmd(),
		newTokenCmd(),
	)
	return root
}

// withApp wires the application, runs fn and closes the application.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) error, opts ...bootstrap.Option) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := loadApp(ctx, slog.Default(), opts...)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(ctx, app)
}
