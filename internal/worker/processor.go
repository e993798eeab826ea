package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"phl311.app/bot/common/id"
	"phl311.app/bot/common/logger"
	"phl311.app/bot/internal/lookup"
	"phl311.app/bot/internal/model"
	"phl311.app/bot/internal/poster"
)

type ResponderConfig struct {
	// Window is how old a mention may be and still get an answer.
	Window   time.Duration
	Location *time.Location
}

// Responder looks up the case number in a mention and replies in the
// mention's discussion.
type Responder struct {
	querier lookup.Querier
	replier poster.Replier
	replies ReplyStore
	cfg     ResponderConfig
	now     func() time.Time
}

func NewResponder(querier lookup.Querier, replier poster.Replier, replies ReplyStore, cfg ResponderConfig) *Responder {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Responder{
		querier: querier,
		replier: replier,
		replies: replies,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (r *Responder) Process(ctx context.Context, m model.Mention) error {
	now := r.now().In(r.cfg.Location)

	if r.cfg.Window > 0 && now.Sub(m.CreatedAt) > r.cfg.Window {
		slog.InfoContext(ctx, "mention too old, skipping",
			"created_at", m.CreatedAt,
			"window", r.cfg.Window)
		return nil
	}

	replied, err := r.replies.HasReplied(ctx, m.NoteID)
	if err != nil {
		return fmt.Errorf("checking reply ledger: %w", err)
	}
	if replied {
		slog.InfoContext(ctx, "mention already answered, skipping")
		return nil
	}

	srID, ok := lookup.ParseIdentifier(m.Body)
	if !ok {
		slog.InfoContext(ctx, "no case number in mention, staying silent",
			"body", logger.Truncate(m.Body, 200))
		return nil
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{ServiceRequestID: &srID})

	response, ok, err := lookup.FormatCase(ctx, r.querier, srID, now)
	if errors.Is(err, lookup.ErrInconsistentRecord) {
		// Retrying will not fix the source data.
		slog.WarnContext(ctx, "inconsistent service request, not replying", "error", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("looking up service request: %w", err)
	}
	if !ok {
		slog.InfoContext(ctx, "no single matching service request, staying silent")
		return nil
	}

	ref, err := r.replier.Reply(ctx, poster.Target{
		ProjectID:    m.ProjectID,
		IssueIID:     m.IssueIID,
		DiscussionID: m.DiscussionID,
	}, fmt.Sprintf("@%s %s", m.Author, response))
	if err != nil {
		return fmt.Errorf("posting reply: %w", err)
	}

	// The reply is already public. Failing from here on would requeue the
	// mention and answer it twice, so ledger errors are only logged.
	replyID, err := id.New()
	if err != nil {
		slog.ErrorContext(ctx, "generating reply id", "error", err, "reply_ref", ref)
		return nil
	}

	if err := r.replies.Create(ctx, &model.Reply{
		ID:               replyID,
		NoteID:           m.NoteID,
		ProjectID:        m.ProjectID,
		IssueIID:         m.IssueIID,
		DiscussionID:     m.DiscussionID,
		Author:           m.Author,
		ServiceRequestID: srID,
		ReplyRef:         ref,
		CreatedAt:        now,
	}); err != nil {
		slog.ErrorContext(ctx, "recording reply", "error", err, "reply_ref", ref)
		return nil
	}

	slog.InfoContext(ctx, "replied to mention", "reply_ref", ref)
	return nil
}
