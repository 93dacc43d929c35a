package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/seek/internal/domain"
	"github.com/MrSnakeDoc/seek/internal/sources/catalogfile"
)

// catalogReport describes what happened to the entries of an extension file.
type catalogReport struct {
	Added    int      `json:"added"`
	Skipped  []string `json:"skipped"`
	Rejected []string `json:"rejected"`
}

// loadCatalog returns the shipped catalog extended with the entries of path.
// An empty path returns the shipped catalog alone.
func loadCatalog(path string) (domain.Catalog, catalogReport, error) {
	base := domain.DefaultCatalog()
	report := catalogReport{Skipped: []string{}, Rejected: []string{}}
	if path == "" {
		return base, report, nil
	}

	file, err := catalogfile.NewLoader(path).Load()
	if err != nil {
		return domain.Catalog{}, report, err
	}
	defs, skipped := catalogfile.NewMapper().MapBangs(file)
	merged, rejected := base.Extend(defs)

	report.Added = len(defs) - len(rejected)
	report.Skipped = append(report.Skipped, skipped...)
	for _, r := range rejected {
		report.Rejected = append(report.Rejected, fmt.Sprintf("%q collides with an existing shortcut", r.Shortcut))
	}
	return merged, report, nil
}

func newCatalogCmd() *cobra.Command {
	var (
		file   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the built-in bang catalog",
		Long: `Print the built-in bangs, optionally extended with a catalog file
(defaults to SEEK_CATALOG_FILE).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, report, err := loadCatalog(file)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeIndentedJSON(out, catalog.Entries())
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SHORTCUT\tLABEL\tURL")
			for _, b := range catalog.Entries() {
				fmt.Fprintf(tw, "!%s\t%s\t%s\n", b.Shortcut, b.Label, b.URL)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%d bangs", catalog.Len())
			if file != "" {
				fmt.Fprintf(out, " (%d from %s)", report.Added, file)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", os.Getenv("SEEK_CATALOG_FILE"), "catalog extension file (YAML)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	cmd.AddCommand(newCatalogCheckCmd())
	return cmd
}

func newCatalogCheckCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Validate a catalog extension file",
		Long: `Parse FILE the way the server does and report the entries it would
skip (invalid) or reject (shortcut already taken). Exits non-zero when any
entry would be dropped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, report, err := loadCatalog(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeIndentedJSON(out, report); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "%d bangs added\n", report.Added)
				for _, s := range report.Skipped {
					fmt.Fprintf(out, "skipped: %s\n", s)
				}
				for _, r := range report.Rejected {
					fmt.Fprintf(out, "rejected: %s\n", r)
				}
			}
			if dropped := len(report.Skipped) + len(report.Rejected); dropped > 0 {
				return fmt.Errorf("%d catalog entries would be dropped", dropped)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
