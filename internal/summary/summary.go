// Package summary builds the daily 311 summary posts: one headline message
// per window plus optional breakdown threads.
package summary

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"phl311.app/bot/common/logger"
	"phl311.app/bot/internal/geo"
	"phl311.app/bot/internal/model"
	"phl311.app/bot/internal/stats"
)

// Source is the read side of the service request dataset.
type Source interface {
	Query(ctx context.Context, where string) ([]model.ServiceRequest, error)
	Count(ctx context.Context, where string) (int, error)
}

// Dataset is the set of requests a summary reports on.
type Dataset []model.ServiceRequest

// Summary is one kind of daily report.
type Summary interface {
	Label() string
	FirstMessage(ctx context.Context, data Dataset) (string, error)
	FetchData(ctx context.Context) (Dataset, error)
}

const DefaultTopNeighborhoods = 15

var breakdownNoun = map[stats.GroupKey]string{
	stats.KeyServiceName: "type",
	stats.KeyAgency:      "agency",
	stats.KeyStatus:      "status",
}

type Options struct {
	IncludeBreakdown bool
	// BreakdownKey defaults to the service type.
	BreakdownKey     stats.GroupKey
	Paginator        stats.Paginator
	TopNeighborhoods int
	// Locator may be nil, in which case the neighborhood thread is skipped.
	Locator geo.Locator
}

// Result is everything a summary wants posted. Threads are reply chains,
// each already paginated.
type Result struct {
	Label        string
	FirstMessage string
	Threads      [][]string
}

// Posts returns the number of individual posts in the result.
func (r Result) Posts() int {
	n := 1
	for _, t := range r.Threads {
		n += len(t)
	}
	return n
}

// Summarize fetches the summary's data and renders its messages.
func Summarize(ctx context.Context, s Summary, opts Options) (Result, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{SummaryKind: logger.Ptr(s.Label())})

	data, err := s.FetchData(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetching %s data: %w", s.Label(), err)
	}

	first, err := s.FirstMessage(ctx, data)
	if err != nil {
		return Result{}, fmt.Errorf("building %s first message: %w", s.Label(), err)
	}

	result := Result{Label: s.Label(), FirstMessage: first}
	if !opts.IncludeBreakdown {
		return result, nil
	}

	paginator := opts.Paginator
	if paginator.MaxLength == 0 {
		paginator = stats.DefaultPaginator
	}

	key := opts.BreakdownKey
	if key == "" {
		key = stats.KeyServiceName
	}
	breakdown, err := stats.AggregateBy(data, key)
	if err != nil {
		return Result{}, fmt.Errorf("grouping %s cases: %w", s.Label(), err)
	}
	header := fmt.Sprintf("Yesterday's %s cases by %s:", s.Label(), breakdownNoun[key])
	result.Threads = append(result.Threads, paginator.Paginate(header, breakdown))

	if opts.Locator == nil {
		slog.WarnContext(ctx, "no neighborhood locator configured, skipping neighborhood breakdown")
		return result, nil
	}

	top := opts.TopNeighborhoods
	if top <= 0 {
		top = DefaultTopNeighborhoods
	}
	located := geo.Geocode(opts.Locator, data)
	byHood := stats.Top(stats.Aggregate(located, geo.NeighborhoodOf), top)
	header = fmt.Sprintf("%s out of %s yesterday's %s cases have locations. The top %d neighborhoods are:",
		humanize.Comma(int64(len(located))), humanize.Comma(int64(len(data))), s.Label(), top)
	result.Threads = append(result.Threads, paginator.Paginate(header, byHood))

	slog.InfoContext(ctx, "summary built",
		"requests", len(data),
		"located", len(located),
		"threads", len(result.Threads))

	return result, nil
}
