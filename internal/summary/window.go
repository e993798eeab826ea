package summary

import (
	"fmt"
	"time"
)

const whereDateLayout = "01/02/2006"

// Window is the reporting day a summary covers, fixed at construction time.
type Window struct {
	// Yesterday and Today are MM/DD/YYYY dates for where clauses.
	Yesterday string
	Today     string
	// Date is yesterday as "January 2nd".
	Date string
}

// NewWindow builds the window ending at the start of now's day in loc.
func NewWindow(now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	today := now.In(loc)
	yesterday := today.AddDate(0, 0, -1)

	return Window{
		Yesterday: yesterday.Format(whereDateLayout),
		Today:     today.Format(whereDateLayout),
		Date:      ordinalDate(yesterday),
	}
}

func ordinalDate(t time.Time) string {
	return fmt.Sprintf("%s %d%s", t.Month(), t.Day(), ordinalSuffix(t.Day()))
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
