package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"phl311.app/bot/core/db"
	"phl311.app/bot/internal/model"
)

type replyStore struct {
	q db.Querier
}

func newReplyStore(q db.Querier) ReplyStore {
	return &replyStore{q: q}
}

const hasRepliedSQL = `SELECT EXISTS (SELECT 1 FROM replies WHERE note_id = $1)`

func (s *replyStore) HasReplied(ctx context.Context, noteID int64) (bool, error) {
	var exists bool
	if err := s.q.QueryRow(ctx, hasRepliedSQL, noteID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking reply for note %d: %w", noteID, err)
	}
	return exists, nil
}

const createReplySQL = `
INSERT INTO replies (id, note_id, project_id, issue_iid, discussion_id, author, service_request_id, reply_ref, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (note_id) DO NOTHING`

func (s *replyStore) Create(ctx context.Context, r *model.Reply) error {
	_, err := s.q.Exec(ctx, createReplySQL,
		r.ID,
		r.NoteID,
		r.ProjectID,
		r.IssueIID,
		r.DiscussionID,
		r.Author,
		r.ServiceRequestID,
		r.ReplyRef,
		r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting reply for note %d: %w", r.NoteID, err)
	}
	return nil
}

const getReplyByNoteSQL = `
SELECT id, note_id, project_id, issue_iid, discussion_id, author, service_request_id, reply_ref, created_at
FROM replies
WHERE note_id = $1`

func (s *replyStore) GetByNote(ctx context.Context, noteID int64) (*model.Reply, error) {
	var r model.Reply
	err := s.q.QueryRow(ctx, getReplyByNoteSQL, noteID).Scan(
		&r.ID,
		&r.NoteID,
		&r.ProjectID,
		&r.IssueIID,
		&r.DiscussionID,
		&r.Author,
		&r.ServiceRequestID,
		&r.ReplyRef,
		&r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching reply for note %d: %w", noteID, err)
	}
	return &r, nil
}
