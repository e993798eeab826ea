package store

import (
	"phl311.app/bot/core/db"
)

type Stores struct {
	q db.Querier
}

// NewStores builds stores over a pool or a transaction.
func NewStores(q db.Querier) *Stores {
	return &Stores{q: q}
}

func (s *Stores) Replies() ReplyStore {
	return newReplyStore(s.q)
}

func (s *Stores) SummaryRuns() SummaryRunStore {
	return newSummaryRunStore(s.q)
}
