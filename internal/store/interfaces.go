package store

import (
	"context"
	"errors"

	"phl311.app/bot/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ReplyStore is the ledger of mentions the bot has answered.
type ReplyStore interface {
	HasReplied(ctx context.Context, noteID int64) (bool, error)
	// Create is a no-op when the note already has a reply.
	Create(ctx context.Context, reply *model.Reply) error
	GetByNote(ctx context.Context, noteID int64) (*model.Reply, error)
}

// SummaryRunStore records executions of the daily summary job.
type SummaryRunStore interface {
	Start(ctx context.Context, run *model.SummaryRun) error
	Finish(ctx context.Context, id int64, status model.SummaryRunStatus, posts int, errMsg *string) error
	Latest(ctx context.Context) (*model.SummaryRun, error)
}
