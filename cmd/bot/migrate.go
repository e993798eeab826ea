package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"phl311.app/bot/core/db"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the replies and summary_runs tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			database, err := db.New(ctx, a.cfg.DB)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer database.Close()

			if err := database.Migrate(ctx); err != nil {
				return err
			}
			slog.InfoContext(ctx, "migrations applied")
			return nil
		},
	}
}
