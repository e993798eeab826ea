package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"phl311.app/bot/internal/model"
	"phl311.app/bot/internal/queue"
)

// GitLab usernames may contain dots and hyphens but cannot end with a dot.
// The leading class keeps email addresses from matching.
var mentionPattern = regexp.MustCompile(`(?:^|[^A-Za-z0-9_.@])@([A-Za-z0-9_](?:[A-Za-z0-9_.-]*[A-Za-z0-9_-])?)`)

// ExtractMentions returns the distinct lowercased usernames mentioned in text.
func ExtractMentions(text string) []string {
	seen := map[string]bool{}
	mentions := []string{}
	for _, m := range mentionPattern.FindAllStringSubmatch(text, -1) {
		name := strings.ToLower(m[1])
		if seen[name] {
			continue
		}
		seen[name] = true
		mentions = append(mentions, name)
	}
	return mentions
}

// NoteEvent is the part of a GitLab note webhook the bot cares about.
type NoteEvent struct {
	NoteID       int64
	ProjectID    int64
	IssueIID     int64
	DiscussionID string
	NoteableType string
	Author       string
	Body         string
	CreatedAt    time.Time
	TraceID      *string
}

type MentionResult struct {
	Enqueued bool
	Reason   string
}

type MentionService interface {
	HandleNote(ctx context.Context, event NoteEvent) (*MentionResult, error)
}

type mentionService struct {
	botUsername string
	queue       queue.Producer
}

func NewMentionService(botUsername string, producer queue.Producer) MentionService {
	return &mentionService{
		botUsername: strings.ToLower(strings.TrimPrefix(botUsername, "@")),
		queue:       producer,
	}
}

func (s *mentionService) HandleNote(ctx context.Context, event NoteEvent) (*MentionResult, error) {
	if event.NoteableType != "Issue" {
		return &MentionResult{Reason: "not an issue note"}, nil
	}
	if strings.EqualFold(event.Author, s.botUsername) {
		return &MentionResult{Reason: "own note"}, nil
	}
	if !s.mentionsBot(event.Body) {
		return &MentionResult{Reason: "bot not mentioned"}, nil
	}
	if event.NoteID == 0 || event.ProjectID == 0 || event.IssueIID == 0 {
		return nil, fmt.Errorf("note event missing note, project or issue id")
	}

	if err := s.queue.Enqueue(ctx, queue.MentionMessage{
		Mention: model.Mention{
			NoteID:       event.NoteID,
			ProjectID:    event.ProjectID,
			IssueIID:     event.IssueIID,
			DiscussionID: event.DiscussionID,
			Author:       event.Author,
			Body:         event.Body,
			CreatedAt:    event.CreatedAt,
		},
		TraceID: event.TraceID,
		Attempt: 1,
	}); err != nil {
		return nil, fmt.Errorf("enqueueing mention: %w", err)
	}

	slog.InfoContext(ctx, "mention enqueued", "note_id", event.NoteID, "author", event.Author)
	return &MentionResult{Enqueued: true}, nil
}

func (s *mentionService) mentionsBot(body string) bool {
	for _, m := range ExtractMentions(body) {
		if m == s.botUsername {
			return true
		}
	}
	return false
}
