package commands

import (
	"fmt"
	"time"

	"quizgen/internal/middleware"
	"quizgen/internal/version"

	"github.com/spf13/cobra"
)

// TokenCommand returns the token command, which issues a bearer token signed with the server secret
func TokenCommand(secret func() string) *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user",
		Long: `Issue an HS256 bearer token for a user, signed with auth.jwt_secret.

Use it to call the authenticated endpoints (subscription, quiz results, stats)
during development.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := secret()
			if s == "" {
				return fmt.Errorf("auth.jwt_secret is not configured")
			}
			token, err := middleware.IssueToken(s, userID, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID placed in the sub claim (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// VersionCommand returns the version command
func VersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "version %s, commit %s, built %s\n", version.Version, version.Commit, version.BuildTime)
		},
	}
}
