// Package stats aggregates journal records into ISO-week buckets for the
// trailing eight weeks and derives the small summary figures the dashboard
// and the stats command display. Everything here is pure.
package stats

import (
	"fmt"
	"time"
)

// Week identifies an ISO-8601 week. Year is the ISO week-numbering year,
// which differs from the calendar year for a few days around January 1.
type Week struct {
	Year   int `json:"year"`
	Number int `json:"number"`
}

// Label returns the display label, e.g. "W7".
func (w Week) Label() string {
	return fmt.Sprintf("W%d", w.Number)
}

// String returns "2025-W07".
func (w Week) String() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Number)
}

// WeekOf returns the ISO week containing the UTC calendar date of t.
//
// The date is moved to the Thursday of its week (Monday=1 .. Sunday=7); the
// year of that Thursday is the ISO year and the week number counts
// seven-day blocks from January 1 of that year.
func WeekOf(t time.Time) Week {
	u := t.UTC()
	date := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)

	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	thursday := date.AddDate(0, 0, 4-weekday)

	yearStart := time.Date(thursday.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int(thursday.Sub(yearStart).Hours() / 24)

	return Week{
		Year:   thursday.Year(),
		Number: (days + 1 + 6) / 7,
	}
}

// WeekLabel returns the "W<n>" label for the ISO week containing t.
func WeekLabel(t time.Time) string {
	return WeekOf(t).Label()
}
