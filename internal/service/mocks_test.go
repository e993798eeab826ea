package service_test

import (
	"context"
	"fmt"

	"phl311.app/bot/internal/model"
	"phl311.app/bot/internal/queue"
)

type mockProducer struct {
	enqueueFn func(ctx context.Context, msg queue.MentionMessage) error
	enqueued  []queue.MentionMessage
}

func (m *mockProducer) Enqueue(ctx context.Context, msg queue.MentionMessage) error {
	m.enqueued = append(m.enqueued, msg)
	if m.enqueueFn != nil {
		return m.enqueueFn(ctx, msg)
	}
	return nil
}

func (m *mockProducer) Close() error { return nil }

type mockSource struct {
	queryFn func(ctx context.Context, where string) ([]model.ServiceRequest, error)
	countFn func(ctx context.Context, where string) (int, error)
}

func (m *mockSource) Query(ctx context.Context, where string) ([]model.ServiceRequest, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, where)
	}
	return nil, nil
}

func (m *mockSource) Count(ctx context.Context, where string) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, where)
	}
	return 0, nil
}

type post struct {
	text    string
	replyTo string
}

type mockPoster struct {
	postFn func(ctx context.Context, text, replyTo string) (string, error)
	posts  []post
}

func (m *mockPoster) Post(ctx context.Context, text, replyTo string) (string, error) {
	m.posts = append(m.posts, post{text: text, replyTo: replyTo})
	if m.postFn != nil {
		return m.postFn(ctx, text, replyTo)
	}
	return fmt.Sprintf("p%d", len(m.posts)), nil
}

type finishCall struct {
	id     int64
	status model.SummaryRunStatus
	posts  int
	errMsg *string
}

type mockSummaryRunStore struct {
	started  []model.SummaryRun
	finished []finishCall
}

func (m *mockSummaryRunStore) Start(_ context.Context, run *model.SummaryRun) error {
	m.started = append(m.started, *run)
	return nil
}

func (m *mockSummaryRunStore) Finish(_ context.Context, id int64, status model.SummaryRunStatus, posts int, errMsg *string) error {
	m.finished = append(m.finished, finishCall{id: id, status: status, posts: posts, errMsg: errMsg})
	return nil
}

func (m *mockSummaryRunStore) Latest(context.Context) (*model.SummaryRun, error) {
	return nil, nil
}

type mockLocator struct{}

func (mockLocator) Locate(_, lon float64) (string, bool) {
	if lon < 0 {
		return "West Philadelphia", true
	}
	return "", false
}
