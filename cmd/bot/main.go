// Command bot runs the one-shot jobs: the daily summary, lookups from the
// terminal and database migrations.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"phl311.app/bot/common/id"
	"phl311.app/bot/common/logger"
	"phl311.app/bot/common/otel"
	"phl311.app/bot/core/config"
)

type app struct {
	cfg       config.Config
	telemetry *otel.Telemetry
}

func main() {
	ctx := context.Background()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.ErrorContext(ctx, "command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "bot",
		Short:         "Philadelphia 311 bot jobs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.telemetry.Shutdown(cmd.Context())
		},
	}

	root.AddCommand(
		newSummaryCmd(a),
		newLookupCmd(a),
		newMigrateCmd(a),
	)
	return root
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	a.telemetry, err = otel.Setup(ctx, cfg.OTel)
	if err != nil {
		return fmt.Errorf("initializing otel: %w", err)
	}
	logger.Setup(cfg)

	if err := id.Init(id.NodeCLI); err != nil {
		return fmt.Errorf("initializing id generator: %w", err)
	}
	return nil
}
