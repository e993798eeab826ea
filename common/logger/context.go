package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment, so business context (service_request_id,
// note_id, run_id, etc.) is included in every log statement without repeating it.
type LogFields struct {
	ServiceRequestID *int64  // 311 case number being looked up
	NoteID           *int64  // GitLab note that mentioned the bot
	MessageID        *string // Redis stream message ID
	RunID            *int64  // Summary run ID
	SummaryKind      *string // Summary label (e.g., "still open", "delayed")
	Component        string  // Component name (OTel semantic convention style, e.g., "bot.worker.reclaimer")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
// Context timeouts and cancellation are preserved.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

// mergeFields merges two LogFields, preferring non-nil/non-empty values from 'new'.
func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.ServiceRequestID != nil {
		result.ServiceRequestID = new.ServiceRequestID
	}
	if new.NoteID != nil {
		result.NoteID = new.NoteID
	}
	if new.MessageID != nil {
		result.MessageID = new.MessageID
	}
	if new.RunID != nil {
		result.RunID = new.RunID
	}
	if new.SummaryKind != nil {
		result.SummaryKind = new.SummaryKind
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{RunID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens s to maxLen runes, appending "..." if truncated.
// Used when logging note bodies and where-clauses.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
