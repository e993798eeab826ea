package model

import "time"

// Mention is a GitLab note that addressed the bot.
type Mention struct {
	NoteID       int64     `json:"note_id"`
	ProjectID    int64     `json:"project_id"`
	IssueIID     int64     `json:"issue_iid"`
	DiscussionID string    `json:"discussion_id"`
	Author       string    `json:"author"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"`
}

// Reply records that the bot answered a mention, so redelivered queue
// messages never produce a second answer.
type Reply struct {
	ID               int64     `json:"id"`
	NoteID           int64     `json:"note_id"`
	ProjectID        int64     `json:"project_id"`
	IssueIID         int64     `json:"issue_iid"`
	DiscussionID     string    `json:"discussion_id"`
	Author           string    `json:"author"`
	ServiceRequestID int64     `json:"service_request_id"`
	ReplyRef         string    `json:"reply_ref"`
	CreatedAt        time.Time `json:"created_at"`
}
