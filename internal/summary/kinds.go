package summary

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
)

// Opened reports requests opened yesterday that are still open.
type Opened struct {
	Source Source
	Window Window
}

func (Opened) Label() string { return "still open" }

func (o Opened) FetchData(ctx context.Context) (Dataset, error) {
	where := fmt.Sprintf("requested_datetime >= '%s' AND status = 'Open'", o.Window.Yesterday)
	return o.Source.Query(ctx, where)
}

func (o Opened) FirstMessage(ctx context.Context, data Dataset) (string, error) {
	total, err := o.Source.Count(ctx, fmt.Sprintf("requested_datetime >= '%s'", o.Window.Yesterday))
	if err != nil {
		return "", fmt.Errorf("counting new requests: %w", err)
	}
	return fmt.Sprintf("On %s, there were %s new requests and %s are still open.",
		o.Window.Date, humanize.Comma(int64(total)), humanize.Comma(int64(len(data)))), nil
}

// Delayed reports open requests whose expected close date was yesterday.
type Delayed struct {
	Source Source
	Window Window
}

func (Delayed) Label() string { return "delayed" }

func (d Delayed) FetchData(ctx context.Context) (Dataset, error) {
	where := fmt.Sprintf("status = 'Open' AND expected_datetime >= '%s' AND expected_datetime < '%s'",
		d.Window.Yesterday, d.Window.Today)
	return d.Source.Query(ctx, where)
}

func (d Delayed) FirstMessage(_ context.Context, data Dataset) (string, error) {
	return fmt.Sprintf("On %s, %s requests were expected to be closed but remain open.",
		d.Window.Date, humanize.Comma(int64(len(data)))), nil
}

// Closed reports requests updated and closed yesterday.
type Closed struct {
	Source Source
	Window Window
}

func (Closed) Label() string { return "closed" }

func (c Closed) FetchData(ctx context.Context) (Dataset, error) {
	where := fmt.Sprintf("status = 'Closed' AND updated_datetime >= '%s' AND updated_datetime < '%s'",
		c.Window.Yesterday, c.Window.Today)
	return c.Source.Query(ctx, where)
}

func (c Closed) FirstMessage(_ context.Context, data Dataset) (string, error) {
	return fmt.Sprintf("On %s, %s requests were updated and are marked as closed.",
		c.Window.Date, humanize.Comma(int64(len(data)))), nil
}

// Daily returns the summaries posted every morning, opened first.
func Daily(src Source, w Window) []Summary {
	return []Summary{
		Opened{Source: src, Window: w},
		Delayed{Source: src, Window: w},
		Closed{Source: src, Window: w},
	}
}
