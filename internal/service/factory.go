package service

import (
	"phl311.app/bot/internal/geo"
	"phl311.app/bot/internal/poster"
	"phl311.app/bot/internal/queue"
	"phl311.app/bot/internal/store"
	"phl311.app/bot/internal/summary"
)

type ServicesConfig struct {
	// Source backs both summaries and lookups.
	Source      summary.Source
	Poster      poster.Poster
	Locator     geo.Locator
	Stores      *store.Stores
	Producer    queue.Producer
	BotUsername string
	Summary     SummaryConfig
}

type Services struct {
	cfg ServicesConfig
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{cfg: cfg}
}

func (s *Services) Summary() SummaryService {
	var runs store.SummaryRunStore
	if s.cfg.Stores != nil {
		runs = s.cfg.Stores.SummaryRuns()
	}
	return NewSummaryService(s.cfg.Source, s.cfg.Poster, s.cfg.Locator, runs, s.cfg.Summary)
}

func (s *Services) Lookup() LookupService {
	return NewLookupService(s.cfg.Source, s.cfg.Summary.Location)
}

func (s *Services) Mentions() MentionService {
	return NewMentionService(s.cfg.BotUsername, s.cfg.Producer)
}
