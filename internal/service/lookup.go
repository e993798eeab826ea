package service

import (
	"context"
	"time"

	"phl311.app/bot/internal/lookup"
)

// LookupService answers free-text case questions without posting anything.
type LookupService interface {
	Preview(ctx context.Context, text string) (string, bool, error)
}

type lookupService struct {
	querier lookup.Querier
	loc     *time.Location
	now     func() time.Time
}

func NewLookupService(querier lookup.Querier, loc *time.Location) LookupService {
	if loc == nil {
		loc = time.UTC
	}
	return &lookupService{querier: querier, loc: loc, now: time.Now}
}

func (s *lookupService) Preview(ctx context.Context, text string) (string, bool, error) {
	return lookup.FormatResponse(ctx, s.querier, text, s.now().In(s.loc))
}
