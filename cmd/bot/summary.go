package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"phl311.app/bot/core/db"
	"phl311.app/bot/internal/carto"
	"phl311.app/bot/internal/geo"
	"phl311.app/bot/internal/model"
	"phl311.app/bot/internal/poster"
	"phl311.app/bot/internal/service"
	"phl311.app/bot/internal/stats"
	"phl311.app/bot/internal/store"
)

type summaryOptions struct {
	dryRun          bool
	noDB            bool
	noNeighborhoods bool
	force           bool
}

func newSummaryCmd(a *app) *cobra.Command {
	opts := &summaryOptions{}

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Post yesterday's opened, delayed and closed request summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSummary(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "log posts instead of publishing them")
	cmd.Flags().BoolVar(&opts.noDB, "no-db", false, "do not record the run in postgres")
	cmd.Flags().BoolVar(&opts.noNeighborhoods, "no-neighborhoods", false, "skip the neighborhood breakdown")
	cmd.Flags().BoolVar(&opts.force, "force", false, "post even if today's summary already went out")
	return cmd
}

func (a *app) runSummary(cmd *cobra.Command, opts *summaryOptions) error {
	ctx := cmd.Context()
	cfg := a.cfg

	loc, err := cfg.Summary.Location()
	if err != nil {
		return err
	}

	var p poster.Poster
	switch {
	case opts.dryRun:
		p = poster.NewLog()
	case cfg.GitLab.Enabled():
		gl, err := poster.NewGitLab(cfg.GitLab)
		if err != nil {
			return err
		}
		p = gl
	default:
		return errors.New("GITLAB_TOKEN and GITLAB_PROJECT_ID are required unless --dry-run is set")
	}

	var locator geo.Locator
	if !opts.noNeighborhoods {
		hoods, err := geo.Load(cfg.Summary.NeighborhoodsPath, cfg.Summary.NeighborhoodKey)
		if err != nil {
			return fmt.Errorf("loading neighborhoods (use --no-neighborhoods to skip): %w", err)
		}
		slog.InfoContext(ctx, "neighborhoods loaded", "count", hoods.Len())
		locator = hoods
	}

	// Dry runs stay out of the ledger so they never block the real post.
	var stores *store.Stores
	if !opts.noDB && !opts.dryRun {
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		stores = store.NewStores(database.Pool())

		if !opts.force {
			last, err := stores.SummaryRuns().Latest(ctx)
			switch {
			case errors.Is(err, store.ErrNotFound):
			case err != nil:
				return fmt.Errorf("checking previous run: %w", err)
			case postedOn(last, time.Now(), loc):
				slog.InfoContext(ctx, "summary already posted today, skipping", "run_id", last.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "summary run %d already posted today (use --force to post again)\n", last.ID)
				return nil
			}
		}
	}

	delay := cfg.Summary.PostDelay
	if opts.dryRun {
		delay = 0
	}

	services := service.NewServices(service.ServicesConfig{
		Source:  carto.New(cfg.Carto),
		Poster:  p,
		Locator: locator,
		Stores:  stores,
		Summary: service.SummaryConfig{
			Paginator:        stats.Paginator{MaxLength: cfg.Summary.MaxLength, SuffixMargin: cfg.Summary.SuffixMargin},
			TopNeighborhoods: cfg.Summary.TopNeighborhoods,
			PostDelay:        delay,
			Location:         loc,
		},
	})

	run, err := services.Summary().Run(ctx)
	if err != nil {
		return fmt.Errorf("summary run: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "summary run %d posted %d messages\n", run.ID, run.Posts)
	return nil
}

// postedOn reports whether run succeeded on now's calendar day in loc.
func postedOn(run *model.SummaryRun, now time.Time, loc *time.Location) bool {
	if run == nil || run.Status != model.SummaryRunStatusSucceeded {
		return false
	}
	y1, m1, d1 := run.StartedAt.In(loc).Date()
	y2, m2, d2 := now.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
