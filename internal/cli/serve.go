package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/seek/internal/app"
	"github.com/MrSnakeDoc/seek/internal/config"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Long: `Connect to Postgres (required) and Redis (optional), apply pending
migrations when SEEK_MIGRATE_ON_START is true, then serve until SIGINT/SIGTERM.

All settings come from SEEK_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			log := app.NewLogger(cfg)
			defer func() { _ = log.Sync() }()

			a, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				log.Errorf("failed to start: %v", err)
				return err
			}
			return a.Run()
		},
	}
}
