package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ai-pulse/internal/bootstrap"
	"ai-pulse/internal/domain/entity"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print the newsletter",
		Long: `Print the cached newsletter, generating a new one on a cache miss.

Examples:
  pulse generate                  # Readable outline
  pulse generate --json           # Full newsletter as JSON
  pulse generate --refresh        # Skip the cache
  pulse generate --check-links    # Drop items whose links do not resolve`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}
	cmd.Flags().Bool("json", false, "output as JSON")
	cmd.Flags().Bool("refresh", false, "generate a new newsletter even when one is cached")
	cmd.Flags().Bool("check-links", false, "validate links and drop broken items")
	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	refresh, _ := cmd.Flags().GetBool("refresh")
	checkLinks, _ := cmd.Flags().GetBool("check-links")

	var opts []bootstrap.Option
	if checkLinks {
		opts = append(opts, bootstrap.WithLinkCheck())
	}

	return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
		fetch := app.Service.Fetch
		if refresh {
			fetch = app.Service.Refresh
		}
		n, err := fetch(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(n)
		}
		return printOutline(cmd.OutOrStdout(), n)
	}, opts...)
}

func printOutline(w io.Writer, n *entity.Newsletter) error {
	if _, err := fmt.Fprintf(w, "Generated %s: %d items in %d sections\n",
		n.GeneratedAt.Format("2006-01-02 15:04 MST"), n.ItemCount(), len(n.Sections)); err != nil {
		return err
	}
	for _, s := range n.Sections {
		fmt.Fprintf(w, "\n%s\n", s.CategoryTitle)
		for _, it := range s.Items {
			fmt.Fprintf(w, "  - %s [%s]\n    %s\n", it.Title, it.SourceType, it.SourceURL)
		}
	}
	if len(n.GroundingSources) > 0 {
		fmt.Fprintf(w, "\n%d grounding sources\n", len(n.GroundingSources))
	}
	return nil
}
