package poster

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"phl311.app/bot/common/logger"
)

// Log writes messages to the logger instead of publishing them. Used for dry
// runs and when no GitLab project is configured.
type Log struct {
	seq atomic.Int64
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) Post(ctx context.Context, text, replyTo string) (string, error) {
	ref := l.next()
	slog.InfoContext(ctx, "dry run post",
		"ref", ref,
		"reply_to", replyTo,
		"length", len([]rune(text)),
		"text", text)
	return ref, nil
}

func (l *Log) Reply(ctx context.Context, target Target, text string) (string, error) {
	ref := l.next()
	slog.InfoContext(ctx, "dry run reply",
		"ref", ref,
		"project_id", target.ProjectID,
		"issue_iid", target.IssueIID,
		"discussion_id", target.DiscussionID,
		"text", logger.Truncate(text, 500))
	return ref, nil
}

func (l *Log) next() string {
	return fmt.Sprintf("dry-run-%d", l.seq.Add(1))
}
