package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/seek/internal/domain"
)

func newResolveCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "resolve QUERY...",
		Short: "Print the redirect target of a bang query",
		Long: `Resolve QUERY against the catalog the way an anonymous /search request
does and print the target URL. Exits non-zero when no bang matches.

Examples:
  seek resolve '!gh react hooks'
  seek resolve --file bangs.yaml '!wiki backups'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, _, err := loadCatalog(file)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")

			target, ok := domain.ResolveQuery(domain.CatalogTable(catalog), query)
			if !ok {
				return fmt.Errorf("no bang matches %q", query)
			}
			fmt.Fprintln(cmd.OutOrStdout(), target.URL)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", os.Getenv("SEEK_CATALOG_FILE"), "catalog extension file (YAML)")
	return cmd
}
