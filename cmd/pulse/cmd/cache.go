package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ai-pulse/internal/bootstrap"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the newsletter cache",
		Long: `Inspect or clear the newsletter cache. Only persisted stores (CACHE_STORE=sqlite
or redis) carry entries between runs.`,
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(_ context.Context, app *bootstrap.App) error {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(app.Cache.Stats())
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry, including persisted ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				before := app.Cache.Len()
				app.Cache.Clear(ctx)
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "cleared %d entries\n", before)
				return err
			})
		},
	}

	cmd.AddCommand(stats, clearCmd)
	return cmd
}
