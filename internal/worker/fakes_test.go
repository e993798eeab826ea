package worker

import (
	"context"
	"sync"

	"phl311.app/bot/internal/model"
	"phl311.app/bot/internal/poster"
	"phl311.app/bot/internal/queue"
)

type fakeConsumer struct {
	mu       sync.Mutex
	readFn   func(ctx context.Context) ([]queue.Message, error)
	acked    []string
	requeued []string
	dlq      []string
}

func (f *fakeConsumer) Read(ctx context.Context) ([]queue.Message, error) {
	if f.readFn != nil {
		return f.readFn(ctx)
	}
	return nil, nil
}

func (f *fakeConsumer) Ack(_ context.Context, msg queue.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, msg.ID)
	return nil
}

func (f *fakeConsumer) Requeue(_ context.Context, msg queue.Message, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requeued = append(f.requeued, msg.ID)
	return nil
}

func (f *fakeConsumer) SendDLQ(_ context.Context, msg queue.Message, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dlq = append(f.dlq, msg.ID)
	return nil
}

type fakeProcessor struct {
	processFn func(ctx context.Context, m model.Mention) error
}

func (f *fakeProcessor) Process(ctx context.Context, m model.Mention) error {
	if f.processFn != nil {
		return f.processFn(ctx, m)
	}
	return nil
}

type fakeQuerier struct {
	queryFn func(ctx context.Context, where string) ([]model.ServiceRequest, error)
	calls   int
}

func (f *fakeQuerier) Query(ctx context.Context, where string) ([]model.ServiceRequest, error) {
	f.calls++
	if f.queryFn != nil {
		return f.queryFn(ctx, where)
	}
	return nil, nil
}

type reply struct {
	target poster.Target
	text   string
}

type fakeReplier struct {
	replyFn func(ctx context.Context, target poster.Target, text string) (string, error)
	replies []reply
}

func (f *fakeReplier) Reply(ctx context.Context, target poster.Target, text string) (string, error) {
	f.replies = append(f.replies, reply{target: target, text: text})
	if f.replyFn != nil {
		return f.replyFn(ctx, target, text)
	}
	return "note-1", nil
}

type fakeReplyStore struct {
	hasRepliedFn func(ctx context.Context, noteID int64) (bool, error)
	createFn     func(ctx context.Context, r *model.Reply) error
	created      []model.Reply
}

func (f *fakeReplyStore) HasReplied(ctx context.Context, noteID int64) (bool, error) {
	if f.hasRepliedFn != nil {
		return f.hasRepliedFn(ctx, noteID)
	}
	return false, nil
}

func (f *fakeReplyStore) Create(ctx context.Context, r *model.Reply) error {
	f.created = append(f.created, *r)
	if f.createFn != nil {
		return f.createFn(ctx, r)
	}
	return nil
}
