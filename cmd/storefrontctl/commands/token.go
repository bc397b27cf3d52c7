package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"storefront-service/internal/auth"
	"storefront-service/internal/config"
)

var (
	adminID    string
	username   string
	tokenTTL   time.Duration
	jsonOutput bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage admin bearer tokens",
}

// tokenIssueCmd signs a token with JWT_SECRET
var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue an admin bearer token",
	Long: `Issue a signed admin token for the catalog write endpoints.

Examples:
  storefrontctl token issue --admin-id 1 --username alice
  storefrontctl token issue --admin-id 1 --username alice --ttl 1h --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTokenIssue(cmd)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenIssueCmd)
	tokenIssueCmd.Flags().StringVar(&adminID, "admin-id", "", "Admin identifier (required)")
	tokenIssueCmd.Flags().StringVar(&username, "username", "", "Admin username")
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "Token lifetime (defaults to JWT_TTL)")
	tokenIssueCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	_ = tokenIssueCmd.MarkFlagRequired("admin-id")
}

func runTokenIssue(cmd *cobra.Command) error {
	ac, err := config.LoadAuth()
	if err != nil {
		return err
	}
	ttl := ac.TokenTTL
	if tokenTTL > 0 {
		ttl = tokenTTL
	}

	token, expires, err := auth.NewTokenIssuer(ac.JWTSecret, ac.Issuer, ttl).Issue(adminID, username)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{
			"token":      token,
			"expires_at": expires.UTC().Format(time.RFC3339),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expires.UTC().Format(time.RFC3339))
	}
	return nil
}
