package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"storefront-service/internal/config"
)

var (
	// Global flags
	dbURL   string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "storefrontctl",
	Short: "Operator tooling for the storefront service",
	Long: `storefrontctl manages a storefront deployment from the command line.

Commands:
  migrate  - Apply the catalog schema
  token    - Issue admin bearer tokens
  export   - Write the product catalog to an .xlsx file`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (defaults to the POSTGRES_* environment)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

// databaseURL returns --db, or the URL built from the environment.
func databaseURL() (string, error) {
	if dbURL != "" {
		return dbURL, nil
	}
	pc, err := config.LoadPostgres()
	if err != nil {
		return "", fmt.Errorf("no --db given and %w", err)
	}
	return pc.URL(), nil
}
