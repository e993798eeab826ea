package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"phl311.app/bot/common/id"
	"phl311.app/bot/common/logger"
	"phl311.app/bot/internal/geo"
	"phl311.app/bot/internal/model"
	"phl311.app/bot/internal/poster"
	"phl311.app/bot/internal/stats"
	"phl311.app/bot/internal/store"
	"phl311.app/bot/internal/summary"
)

type SummaryConfig struct {
	Paginator        stats.Paginator
	TopNeighborhoods int
	PostDelay        time.Duration
	Location         *time.Location
}

type SummaryService interface {
	// Run builds every daily summary and posts them. Nothing is posted if
	// any summary fails to build.
	Run(ctx context.Context) (*model.SummaryRun, error)
}

type summaryService struct {
	source  summary.Source
	poster  poster.Poster
	locator geo.Locator
	runs    store.SummaryRunStore
	cfg     SummaryConfig
	now     func() time.Time
}

// NewSummaryService wires the daily summary job. locator and runs may be nil,
// which skips the neighborhood thread and run bookkeeping respectively.
func NewSummaryService(source summary.Source, p poster.Poster, locator geo.Locator, runs store.SummaryRunStore, cfg SummaryConfig) SummaryService {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &summaryService{
		source:  source,
		poster:  p,
		locator: locator,
		runs:    runs,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *summaryService) Run(ctx context.Context) (*model.SummaryRun, error) {
	now := s.now().In(s.cfg.Location)

	runID, err := id.New()
	if err != nil {
		return nil, fmt.Errorf("generating run id: %w", err)
	}
	run := &model.SummaryRun{ID: runID, StartedAt: now, Status: model.SummaryRunStatusRunning}

	ctx = logger.WithLogFields(ctx, logger.LogFields{RunID: &runID, Component: "bot.summary"})
	span := logger.StartSpan(ctx, "summary.run")
	defer span.End()
	ctx = span.Context()

	if s.runs != nil {
		if err := s.runs.Start(ctx, run); err != nil {
			return nil, fmt.Errorf("recording run start: %w", err)
		}
	}

	posts, runErr := s.run(ctx, now)
	run.Posts = posts
	run.Status = model.SummaryRunStatusSucceeded
	if runErr != nil {
		span.RecordError(runErr)
		run.Status = model.SummaryRunStatusFailed
		run.Error = logger.Ptr(runErr.Error())
	}
	span.SetAttributes(attribute.Int("summary.posts", posts))

	if s.runs != nil {
		if err := s.runs.Finish(ctx, run.ID, run.Status, run.Posts, run.Error); err != nil {
			slog.ErrorContext(ctx, "failed to record run finish", "error", err)
		}
	}
	finished := s.now()
	run.FinishedAt = &finished

	if runErr != nil {
		return run, runErr
	}

	slog.InfoContext(ctx, "summary run complete", "posts", posts)
	return run, nil
}

func (s *summaryService) run(ctx context.Context, now time.Time) (int, error) {
	window := summary.NewWindow(now, s.cfg.Location)

	var results []summary.Result
	for i, sm := range summary.Daily(s.source, window) {
		result, err := summary.Summarize(ctx, sm, summary.Options{
			IncludeBreakdown: i == 0,
			Paginator:        s.cfg.Paginator,
			TopNeighborhoods: s.cfg.TopNeighborhoods,
			Locator:          s.locator,
		})
		if err != nil {
			return 0, err
		}
		results = append(results, result)
	}

	pacer := poster.NewPacer(s.cfg.PostDelay)
	posts := 0

	for _, r := range results {
		if err := pacer.Wait(ctx); err != nil {
			return posts, err
		}
		if _, err := s.poster.Post(ctx, r.FirstMessage, ""); err != nil {
			return posts, fmt.Errorf("posting %s summary: %w", r.Label, err)
		}
		posts++
	}

	for _, r := range results {
		for _, thread := range r.Threads {
			refs, err := poster.PostThread(ctx, s.poster, thread, pacer)
			posts += len(refs)
			if err != nil {
				return posts, fmt.Errorf("posting %s breakdown: %w", r.Label, err)
			}
		}
	}

	return posts, nil
}
