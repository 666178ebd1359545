package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/leaderlog/internal/journal"
)

// FormatDate renders a record date in local time, e.g. "Mar 12, 2025 9:30 AM".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 2, 2006 3:04 PM")
}

// Truncate shortens s to at most width runes, ending in "…" when cut.
// Newlines are folded into spaces so list rows stay on one line.
func Truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

// FormatIntensity renders a trigger intensity as "7/10".
func FormatIntensity(intensity int) string {
	return fmt.Sprintf("%d/%d", intensity, journal.MaxIntensity)
}

// intensityBadge colors an intensity by its severity band.
func intensityBadge(intensity int) string {
	label := fmt.Sprintf("[%s]", FormatIntensity(intensity))
	switch journal.SeverityFor(intensity) {
	case journal.SeverityLow:
		return healthyStyle.Render(label)
	case journal.SeverityMedium:
		return warningStyle.Render(label)
	default:
		return errorStyle.Render(label)
	}
}

// pluralize returns "1 entry" / "3 entries" style counts.
func pluralize(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
