package worker

import (
	"context"

	"phl311.app/bot/internal/model"
	"phl311.app/bot/internal/queue"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// MentionProcessor answers a single mention.
type MentionProcessor interface {
	Process(ctx context.Context, mention model.Mention) error
}

// ReplyStore mirrors store.ReplyStore, defined here to avoid import cycles.
type ReplyStore interface {
	HasReplied(ctx context.Context, noteID int64) (bool, error)
	Create(ctx context.Context, reply *model.Reply) error
}
