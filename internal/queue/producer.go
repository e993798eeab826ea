package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"phl311.app/bot/internal/model"
)

type MentionMessage struct {
	Mention model.Mention
	TraceID *string
	Attempt int
}

type Producer interface {
	Enqueue(ctx context.Context, msg MentionMessage) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, msg MentionMessage) error {
	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	traceID := ""
	if msg.TraceID != nil {
		traceID = *msg.TraceID
	}

	fields := messageValues(Message{Mention: msg.Mention, TraceID: traceID}, attempt)

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue mention: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued mention",
		"note_id", msg.Mention.NoteID,
		"project_id", msg.Mention.ProjectID,
		"issue_iid", msg.Mention.IssueIID,
		"attempt", attempt)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
