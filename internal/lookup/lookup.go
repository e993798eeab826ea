// Package lookup answers "what is the status of case #NNNNNNN?" messages.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"phl311.app/bot/internal/model"
)

// ErrInconsistentRecord is returned when the single matching row lacks a
// field every rendered answer depends on.
var ErrInconsistentRecord = errors.New("service request is missing its status")

// Querier runs a where-clause against the service request table.
type Querier interface {
	Query(ctx context.Context, where string) ([]model.ServiceRequest, error)
}

// Case numbers are at least seven digits long.
var identifierPattern = regexp.MustCompile(`[0-9]{7,}`)

const dateLayout = "01/02/2006"

// relativeMagnitudes follow go-humanize's defaults, except that sub-second
// deltas read "a moment" so every value carries its ago/from now label.
var relativeMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "a moment %s", DivBy: 1},
	{D: 2 * time.Second, Format: "1 second %s", DivBy: 1},
	{D: time.Minute, Format: "%d seconds %s", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 minute %s", DivBy: 1},
	{D: time.Hour, Format: "%d minutes %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 hour %s", DivBy: 1},
	{D: humanize.Day, Format: "%d hours %s", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "1 day %s", DivBy: 1},
	{D: humanize.Week, Format: "%d days %s", DivBy: humanize.Day},
	{D: 2 * humanize.Week, Format: "1 week %s", DivBy: 1},
	{D: humanize.Month, Format: "%d weeks %s", DivBy: humanize.Week},
	{D: 2 * humanize.Month, Format: "1 month %s", DivBy: 1},
	{D: humanize.Year, Format: "%d months %s", DivBy: humanize.Month},
	{D: 18 * humanize.Month, Format: "1 year %s", DivBy: 1},
	{D: 2 * humanize.Year, Format: "2 years %s", DivBy: 1},
	{D: humanize.LongTime, Format: "%d years %s", DivBy: humanize.Year},
	{D: math.MaxInt64, Format: "a long while %s", DivBy: 1},
}

// ParseIdentifier returns the first run of seven or more digits in text.
// Later runs are ignored. A run too large for int64 counts as no match.
func ParseIdentifier(text string) (int64, bool) {
	match := identifierPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(match, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// WhereID is the where-clause selecting one case by number.
func WhereID(id int64) string {
	return fmt.Sprintf("service_request_id = %d", id)
}

// FormatResponse builds the reply for a free-text message.
//
// ok is false when the text holds no case number, or when the number matches
// zero or several rows; those messages get no reply at all. err is reserved
// for query failures and inconsistent data.
func FormatResponse(ctx context.Context, q Querier, text string, now time.Time) (string, bool, error) {
	id, ok := ParseIdentifier(text)
	if !ok {
		return "", false, nil
	}
	return FormatCase(ctx, q, id, now)
}

// FormatCase is FormatResponse for a case number that is already parsed.
func FormatCase(ctx context.Context, q Querier, id int64, now time.Time) (string, bool, error) {
	rows, err := q.Query(ctx, WhereID(id))
	if err != nil {
		return "", false, fmt.Errorf("querying service request %d: %w", id, err)
	}
	if len(rows) != 1 {
		return "", false, nil
	}

	response, err := Render(id, rows[0], now)
	if err != nil {
		return "", false, err
	}
	return response, true, nil
}

// Render formats one service request. Fields without a value are omitted.
func Render(id int64, r model.ServiceRequest, now time.Time) (string, error) {
	if r.Status == "" {
		return "", fmt.Errorf("service request %d: %w", id, ErrInconsistentRecord)
	}

	status := r.Status
	if r.IsDelayed(now) {
		status += ", Delayed"
	}

	fields := []struct {
		label string
		value string
	}{
		{"Status", status},
		{"Type", r.ServiceName},
		{"Agency", r.AgencyResponsible},
		{"Address", r.Address},
		{"Requested Date", formatTimestamp(r.RequestedAt, now)},
		{"Expected Date", formatTimestamp(r.ExpectedAt, now)},
		{"Last Updated", formatTimestamp(r.UpdatedAt, now)},
		{"Notes", deref(r.Notes)},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi, here's some info on case # %d:\n\n", id)
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
	}
	return b.String(), nil
}

// formatTimestamp renders "MM/DD/YYYY (3 days ago)" in now's location.
func formatTimestamp(t *time.Time, now time.Time) string {
	if t == nil {
		return ""
	}
	local := t.In(now.Location())
	relative := humanize.CustomRelTime(now, local, "from now", "ago", relativeMagnitudes)
	return fmt.Sprintf("%s (%s)", local.Format(dateLayout), relative)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
