// Package cli provides the cobra commands of the seek binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/seek/internal/version"
)

// NewRootCmd builds the seek command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "seek",
		Short: "Bang resolution engine and search backend",
		Long: `seek resolves DuckDuckGo-style bangs (!g, !gh, ...) against a built-in
catalog merged with each user's custom bangs, and proxies everything else to
SearXNG with instant answers.

Use 'seek serve' to run the HTTP service. The other subcommands work on the
database and the catalog without starting the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}
	root.SetVersionTemplate(version.String() + "\n")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newCatalogCmd(),
		newResolveCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
