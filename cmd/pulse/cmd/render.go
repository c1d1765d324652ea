package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ai-pulse/internal/bootstrap"
	"ai-pulse/internal/infra/render"
)

func newRSSCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rss",
		Short: "Render the newsletter as an RSS 2.0 feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				n, err := app.Service.Fetch(ctx)
				if err != nil {
					return err
				}
				feed, err := render.RSS(n, app.Config.Site, now())
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(feed)
				return err
			})
		},
	}
}

func newDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Render the weekly digest",
		Long: `Render the weekly digest: the top two items of every section.

Examples:
  pulse digest                  # HTML body
  pulse digest --format text    # Plain text body`,
		Args: cobra.NoArgs,
		RunE: runDigest,
	}
	cmd.Flags().String("format", "html", "output format: html or text")
	return cmd
}

func runDigest(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "html" && format != "text" {
		return fmt.Errorf("unknown format %q: use html or text", format)
	}

	return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
		n, err := app.Service.Fetch(ctx)
		if err != nil {
			return err
		}
		d, err := render.WeeklyDigest(n, app.Config.Site, now())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(cmd.ErrOrStderr(), "Subject: %s\n", d.Subject)
		if format == "text" {
			_, err = fmt.Fprint(out, d.Text)
		} else {
			_, err = fmt.Fprint(out, d.HTML)
		}
		return err
	})
}
