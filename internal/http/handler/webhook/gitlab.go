package webhook

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"phl311.app/bot/common/logger"
	"phl311.app/bot/internal/http/dto"
	"phl311.app/bot/internal/service"
)

// Note timestamps have arrived in each of these formats.
var noteTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05 -0700",
}

type GitLabWebhookHandler struct {
	mentions    service.MentionService
	secret      string
	traceHeader string
}

func NewGitLabWebhookHandler(mentions service.MentionService, secret, traceHeader string) *GitLabWebhookHandler {
	return &GitLabWebhookHandler{
		mentions:    mentions,
		secret:      secret,
		traceHeader: traceHeader,
	}
}

func (h *GitLabWebhookHandler) HandleEvent(c *gin.Context) {
	ctx := c.Request.Context()

	token := c.GetHeader("X-Gitlab-Token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing webhook token"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook token"})
		return
	}

	var payload dto.GitLabNoteHook
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if payload.ObjectKind != "note" {
		slog.DebugContext(ctx, "ignoring gitlab event", "object_kind", payload.ObjectKind)
		c.JSON(http.StatusOK, dto.WebhookResponse{Status: "ok", Reason: "event type not supported"})
		return
	}

	noteID := payload.ObjectAttributes.ID
	ctx = logger.WithLogFields(ctx, logger.LogFields{NoteID: &noteID})

	event := service.NoteEvent{
		NoteID:       noteID,
		ProjectID:    payload.ProjectID,
		IssueIID:     payload.Issue.IID,
		DiscussionID: payload.ObjectAttributes.DiscussionID,
		NoteableType: payload.ObjectAttributes.NoteableType,
		Author:       payload.User.Username,
		Body:         payload.ObjectAttributes.Note,
		CreatedAt:    parseNoteTime(payload.ObjectAttributes.CreatedAt),
	}

	traceID := c.GetHeader(h.traceHeader)
	if traceID == "" {
		if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
			traceID = spanCtx.TraceID().String()
		}
	}
	if traceID != "" {
		event.TraceID = &traceID
	}

	result, err := h.mentions.HandleNote(ctx, event)
	if err != nil {
		slog.ErrorContext(ctx, "failed to handle gitlab note", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
		return
	}

	slog.InfoContext(ctx, "gitlab note processed",
		"project_id", event.ProjectID,
		"issue_iid", event.IssueIID,
		"author", event.Author,
		"enqueued", result.Enqueued,
		"reason", result.Reason)

	c.JSON(http.StatusOK, dto.WebhookResponse{Status: "ok", Enqueued: result.Enqueued, Reason: result.Reason})
}

// parseNoteTime falls back to the receive time so a malformed timestamp
// never makes a fresh mention look stale.
func parseNoteTime(raw string) time.Time {
	for _, layout := range noteTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}
