package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"phl311.app/bot/core/db"
	"phl311.app/bot/internal/model"
)

type summaryRunStore struct {
	q db.Querier
}

func newSummaryRunStore(q db.Querier) SummaryRunStore {
	return &summaryRunStore{q: q}
}

const startSummaryRunSQL = `
INSERT INTO summary_runs (id, started_at, status, posts)
VALUES ($1, $2, $3, 0)`

func (s *summaryRunStore) Start(ctx context.Context, run *model.SummaryRun) error {
	if run.Status == "" {
		run.Status = model.SummaryRunStatusRunning
	}
	if _, err := s.q.Exec(ctx, startSummaryRunSQL, run.ID, run.StartedAt, string(run.Status)); err != nil {
		return fmt.Errorf("inserting summary run: %w", err)
	}
	return nil
}

const finishSummaryRunSQL = `
UPDATE summary_runs
SET finished_at = now(), status = $2, posts = $3, error = $4
WHERE id = $1`

func (s *summaryRunStore) Finish(ctx context.Context, id int64, status model.SummaryRunStatus, posts int, errMsg *string) error {
	tag, err := s.q.Exec(ctx, finishSummaryRunSQL, id, string(status), posts, errMsg)
	if err != nil {
		return fmt.Errorf("finishing summary run %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const latestSummaryRunSQL = `
SELECT id, started_at, finished_at, status, posts, error
FROM summary_runs
ORDER BY started_at DESC
LIMIT 1`

func (s *summaryRunStore) Latest(ctx context.Context) (*model.SummaryRun, error) {
	var (
		run    model.SummaryRun
		status string
	)
	err := s.q.QueryRow(ctx, latestSummaryRunSQL).Scan(
		&run.ID,
		&run.StartedAt,
		&run.FinishedAt,
		&status,
		&run.Posts,
		&run.Error,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching latest summary run: %w", err)
	}
	run.Status = model.SummaryRunStatus(status)
	return &run, nil
}
