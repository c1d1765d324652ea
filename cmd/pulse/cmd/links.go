package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"ai-pulse/internal/infra/linkcheck"
)

func newLinksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links <url>...",
		Short: "Normalize and check links",
		Long: `Normalize every link the way newsletter items are normalized, then check
that it resolves. Exits with an error when any link is broken.

Examples:
  pulse links twitter.com/someone/status/1
  pulse links --json https://example.com/a https://example.com/b`,
		Args: cobra.MinimumNArgs(1),
		RunE: runLinks,
	}
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func runLinks(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	checker := linkcheck.New(cmd.Context(), linkcheck.Config{}, linkcheck.WithLogger(slog.Default()))

	results := make([]linkcheck.Result, 0, len(args))
	broken := 0
	for _, raw := range args {
		r := checker.Validate(cmd.Context(), raw)
		if !r.Valid {
			broken++
		}
		results = append(results, r)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			state := "OK  "
			if !r.Valid {
				state = "FAIL"
			}
			line := fmt.Sprintf("%s %s", state, r.FixedURL)
			if r.Status != 0 {
				line += fmt.Sprintf(" (%d)", r.Status)
			}
			if r.Error != "" {
				line += ": " + r.Error
			}
			if alts := linkcheck.Alternatives(r.FixedURL); !r.Valid && len(alts) > 0 {
				line += fmt.Sprintf("\n     try: %v", alts)
			}
			fmt.Fprintln(out, line)
		}
	}

	if broken > 0 {
		return fmt.Errorf("%d of %d links are broken", broken, len(results))
	}
	return nil
}
