package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ai-pulse/internal/handler/http/auth"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin token for the API",
		Long: `Issue an HS256 token signed with ADMIN_JWT_SECRET for the admin endpoints
(refresh, cache clear, cache cleanup).

Examples:
  pulse token --subject ops
  pulse token --subject ci --ttl 15m`,
		Args: cobra.NoArgs,
		RunE: runToken,
	}
	cmd.Flags().String("subject", "admin", "token subject")
	cmd.Flags().String("role", auth.RoleAdmin, "token role")
	cmd.Flags().Duration("ttl", time.Hour, "token lifetime")
	return cmd
}

func runToken(cmd *cobra.Command, _ []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	role, _ := cmd.Flags().GetString("role")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	secret := os.Getenv("ADMIN_JWT_SECRET")
	if secret == "" {
		return errors.New("ADMIN_JWT_SECRET is not set")
	}
	token, err := auth.IssueToken([]byte(secret), subject, role, ttl, now())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
