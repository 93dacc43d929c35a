package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/seek/internal/config"
	"github.com/MrSnakeDoc/seek/internal/logger"
	"github.com/MrSnakeDoc/seek/internal/store/postgres"
)

func newMigrateCmd() *cobra.Command {
	var (
		status   bool
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply the embedded SQL migrations to SEEK_DATABASE_URL.

Migrations are applied in version order inside a transaction each, under an
advisory lock, so running this next to starting replicas is safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.New(logLevel, true)
			defer func() { _ = log.Sync() }()

			pool, err := postgres.Connect(cmd.Context(), postgres.ConnectOptions{URL: config.DatabaseURL()}, log)
			if err != nil {
				return err
			}
			defer pool.Close()

			out := cmd.OutOrStdout()
			if status {
				all, err := postgres.GetMigrations()
				if err != nil {
					return err
				}
				applied, err := postgres.AppliedVersions(cmd.Context(), pool)
				if err != nil {
					return err
				}
				for _, m := range all {
					state := "pending"
					if slices.Contains(applied, m.Version) {
						state = "applied"
					}
					fmt.Fprintf(out, "%03d %-24s %s\n", m.Version, m.Name, state)
				}
				return nil
			}

			applied, err := postgres.Migrate(cmd.Context(), pool)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(out, "database is up to date")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(out, "applied migration %03d\n", v)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "list migrations and whether they are applied, without applying")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level")
	return cmd
}
