package dto

// GitLabNoteHook is the subset of GitLab's note webhook payload the bot reads.
type GitLabNoteHook struct {
	ObjectKind string `json:"object_kind"`
	User       struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	ProjectID        int64 `json:"project_id"`
	ObjectAttributes struct {
		ID           int64  `json:"id"`
		Note         string `json:"note"`
		NoteableType string `json:"noteable_type"`
		DiscussionID string `json:"discussion_id"`
		CreatedAt    string `json:"created_at"`
	} `json:"object_attributes"`
	Issue struct {
		IID int64 `json:"iid"`
	} `json:"issue"`
}

type WebhookResponse struct {
	Status   string `json:"status"`
	Enqueued bool   `json:"enqueued"`
	Reason   string `json:"reason,omitempty"`
}
