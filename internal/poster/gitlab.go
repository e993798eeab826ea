package poster

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"phl311.app/bot/core/config"
)

// GitLab posts summaries as discussions on a fixed issue and replies to
// mentions in the discussion they came from.
type GitLab struct {
	client       *gitlab.Client
	projectID    int64
	summaryIssue int64
}

func NewGitLab(cfg config.GitLabConfig) (*GitLab, error) {
	client, err := newClient(cfg.BaseURL, cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating gitlab client: %w", err)
	}
	return &GitLab{
		client:       client,
		projectID:    cfg.ProjectID,
		summaryIssue: cfg.SummaryIssue,
	}, nil
}

// Post starts a new discussion on the summary issue, or appends to the
// discussion named by replyTo. The returned ref is the discussion ID so a
// whole thread lands in one discussion.
func (g *GitLab) Post(ctx context.Context, text, replyTo string) (string, error) {
	if replyTo == "" {
		discussion, _, err := g.client.Discussions.CreateIssueDiscussion(
			g.projectID,
			g.summaryIssue,
			&gitlab.CreateIssueDiscussionOptions{Body: gitlab.Ptr(text)},
			gitlab.WithContext(ctx),
		)
		if err != nil {
			return "", fmt.Errorf("creating gitlab discussion: %w", err)
		}
		return discussion.ID, nil
	}

	_, err := g.addNote(ctx, Target{ProjectID: g.projectID, IssueIID: g.summaryIssue, DiscussionID: replyTo}, text)
	if err != nil {
		return "", err
	}
	return replyTo, nil
}

// Reply adds a note to target's discussion and returns the new note ID.
// Top-level notes have no discussion yet, so those start a new one.
func (g *GitLab) Reply(ctx context.Context, target Target, text string) (string, error) {
	if target.DiscussionID != "" {
		return g.addNote(ctx, target, text)
	}

	discussion, _, err := g.client.Discussions.CreateIssueDiscussion(
		target.ProjectID,
		target.IssueIID,
		&gitlab.CreateIssueDiscussionOptions{Body: gitlab.Ptr(text)},
		gitlab.WithContext(ctx),
	)
	if err != nil {
		return "", fmt.Errorf("creating gitlab discussion: %w", err)
	}
	if len(discussion.Notes) == 0 {
		return discussion.ID, nil
	}
	return strconv.FormatInt(int64(discussion.Notes[0].ID), 10), nil
}

func (g *GitLab) addNote(ctx context.Context, target Target, text string) (string, error) {
	note, _, err := g.client.Discussions.AddIssueDiscussionNote(
		target.ProjectID,
		target.IssueIID,
		target.DiscussionID,
		&gitlab.AddIssueDiscussionNoteOptions{Body: gitlab.Ptr(text)},
		gitlab.WithContext(ctx),
	)
	if err != nil {
		return "", fmt.Errorf("adding gitlab discussion note: %w", err)
	}
	return strconv.FormatInt(int64(note.ID), 10), nil
}

func newClient(baseURL, token string) (*gitlab.Client, error) {
	if baseURL == "" {
		return gitlab.NewClient(token)
	}
	apiURL := strings.TrimSuffix(baseURL, "/") + "/api/v4"
	return gitlab.NewClient(token, gitlab.WithBaseURL(apiURL))
}
