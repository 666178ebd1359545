package stats

import (
	"time"

	"github.com/fyrsmithlabs/leaderlog/internal/journal"
)

// WindowWeeks is the number of trailing weeks Weekly reports, current week included.
const WindowWeeks = 8

// Bucket holds per-kind record counts for one ISO week.
type Bucket struct {
	Label           string `json:"label"`
	Week            Week   `json:"week"`
	Reflections     int    `json:"reflections"`
	Accomplishments int    `json:"accomplishments"`
	Triggers        int    `json:"triggers"`
}

// Total returns the number of records of any kind in the bucket.
func (b Bucket) Total() int {
	return b.Reflections + b.Accomplishments + b.Triggers
}

// Count returns the count for one record kind.
func (b Bucket) Count(kind journal.Kind) int {
	switch kind {
	case journal.KindReflection:
		return b.Reflections
	case journal.KindTrigger:
		return b.Triggers
	case journal.KindAccomplishment:
		return b.Accomplishments
	default:
		return 0
	}
}

// Weekly buckets state into the WindowWeeks ISO weeks ending with the week
// containing now, oldest first. Every bucket is present even when empty;
// records outside the window are ignored.
func Weekly(state journal.AppState, now time.Time) []Bucket {
	buckets := make([]Bucket, 0, WindowWeeks)
	index := make(map[Week]int, WindowWeeks)

	// Step back in UTC: AddDate in a zone with DST can land an hour short of
	// a UTC midnight and skip a week.
	anchor := now.UTC()
	for i := WindowWeeks - 1; i >= 0; i-- {
		w := WeekOf(anchor.AddDate(0, 0, -7*i))
		index[w] = len(buckets)
		buckets = append(buckets, Bucket{Label: w.Label(), Week: w})
	}

	bump := func(t time.Time, fn func(*Bucket)) {
		if i, ok := index[WeekOf(t)]; ok {
			fn(&buckets[i])
		}
	}
	for _, r := range state.Reflections {
		bump(r.Date, func(b *Bucket) { b.Reflections++ })
	}
	for _, a := range state.Accomplishments {
		bump(a.Date, func(b *Bucket) { b.Accomplishments++ })
	}
	for _, t := range state.Triggers {
		bump(t.Timestamp, func(b *Bucket) { b.Triggers++ })
	}

	return buckets
}

// Series extracts one kind's counts from buckets, in bucket order, as the
// float slice chart widgets take.
func Series(buckets []Bucket, kind journal.Kind) []float64 {
	out := make([]float64, len(buckets))
	for i, b := range buckets {
		out[i] = float64(b.Count(kind))
	}
	return out
}

// Totals are all-time record counts.
type Totals struct {
	Reflections     int `json:"reflections"`
	Accomplishments int `json:"accomplishments"`
	Triggers        int `json:"triggers"`
}

// TotalsOf counts every record in state regardless of date.
func TotalsOf(state journal.AppState) Totals {
	return Totals{
		Reflections:     len(state.Reflections),
		Accomplishments: len(state.Accomplishments),
		Triggers:        len(state.Triggers),
	}
}

// SeverityCounts tallies triggers by severity band. All three bands are
// present in the result.
func SeverityCounts(triggers []journal.Trigger) map[journal.Severity]int {
	out := map[journal.Severity]int{
		journal.SeverityLow:    0,
		journal.SeverityMedium: 0,
		journal.SeverityHigh:   0,
	}
	for _, t := range triggers {
		out[t.Severity()]++
	}
	return out
}

// CategoryCounts tallies reflections by category. Every known category is
// present in the result.
func CategoryCounts(reflections []journal.Reflection) map[journal.Category]int {
	out := make(map[journal.Category]int, len(journal.Categories))
	for _, c := range journal.Categories {
		out[c] = 0
	}
	for _, r := range reflections {
		out[r.Category]++
	}
	return out
}

// AverageIntensity returns the mean trigger intensity, or 0 with no triggers.
func AverageIntensity(triggers []journal.Trigger) float64 {
	if len(triggers) == 0 {
		return 0
	}
	sum := 0
	for _, t := range triggers {
		sum += t.Intensity
	}
	return float64(sum) / float64(len(triggers))
}
