// Package poster publishes bot messages and paces them.
package poster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"phl311.app/bot/common/logger"
)

var ErrEmptyThread = errors.New("thread has no messages")

// Poster publishes a message. replyTo is the ref of the message being
// replied to, or empty for a new top-level post.
type Poster interface {
	Post(ctx context.Context, text, replyTo string) (string, error)
}

// Target addresses a reply into an existing issue discussion.
type Target struct {
	ProjectID    int64
	IssueIID     int64
	DiscussionID string
}

// Replier answers a user inside their own discussion.
type Replier interface {
	Reply(ctx context.Context, target Target, text string) (string, error)
}

// PostThread posts chunks in order, each one replying to the previous.
// Every chunk waits on pacer first, so successive posts are spaced by its
// delay; a nil pacer posts back to back. It returns the refs of every
// message posted before any failure.
func PostThread(ctx context.Context, p Poster, chunks []string, pacer *Pacer) ([]string, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyThread
	}

	span := logger.StartSpan(ctx, "poster.thread")
	defer span.End()
	ctx = span.Context()

	refs := make([]string, 0, len(chunks))
	replyTo := ""
	for i, chunk := range chunks {
		if err := pacer.Wait(ctx); err != nil {
			span.RecordError(err)
			return refs, err
		}
		ref, err := p.Post(ctx, chunk, replyTo)
		if err != nil {
			span.RecordError(err)
			return refs, fmt.Errorf("posting message %d/%d: %w", i+1, len(chunks), err)
		}
		refs = append(refs, ref)
		replyTo = ref
	}

	slog.DebugContext(ctx, "thread posted", "messages", len(refs), "root", refs[0])
	return refs, nil
}

// Pacer enforces a minimum delay between successive posts. The first Wait
// returns immediately.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a Pacer allowing one post per delay. A non-positive delay
// disables pacing.
func NewPacer(delay time.Duration) *Pacer {
	if delay <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Wait blocks until the next post may go out. A nil Pacer never waits.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting to post: %w", err)
	}
	return nil
}
