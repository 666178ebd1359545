package insight

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fyrsmithlabs/leaderlog/internal/journal"
)

// RecentWindow is how far back records are sent to the generator.
const RecentWindow = 30

// Recent keeps the records dated strictly after now minus RecentWindow
// calendar days. Input order is preserved.
func Recent(state journal.AppState, now time.Time) journal.AppState {
	cutoff := now.AddDate(0, 0, -RecentWindow)

	out := journal.Empty()
	for _, r := range state.Reflections {
		if r.Date.After(cutoff) {
			out.Reflections = append(out.Reflections, r)
		}
	}
	for _, t := range state.Triggers {
		if t.Timestamp.After(cutoff) {
			out.Triggers = append(out.Triggers, t)
		}
	}
	for _, a := range state.Accomplishments {
		if a.Date.After(cutoff) {
			out.Accomplishments = append(out.Accomplishments, a)
		}
	}
	return out
}

func isEmpty(s journal.AppState) bool {
	return len(s.Reflections) == 0 && len(s.Triggers) == 0 && len(s.Accomplishments) == 0
}

type promptReflection struct {
	Date     time.Time        `json:"date"`
	Category journal.Category `json:"category"`
	Content  string           `json:"content"`
}

type promptTrigger struct {
	Date    time.Time `json:"date"`
	Trigger string    `json:"trigger"`
	Notes   string    `json:"notes"`
}

type promptAccomplishment struct {
	Date  time.Time `json:"date"`
	Title string    `json:"title"`
}

// BuildPrompt renders the coaching request for recent records. Only the
// fields a coach needs are embedded: trigger intensity and accomplishment
// details are left out.
func BuildPrompt(recent journal.AppState) (string, error) {
	reflections := make([]promptReflection, 0, len(recent.Reflections))
	for _, r := range recent.Reflections {
		reflections = append(reflections, promptReflection{Date: r.Date, Category: r.Category, Content: r.Content})
	}
	triggers := make([]promptTrigger, 0, len(recent.Triggers))
	for _, t := range recent.Triggers {
		triggers = append(triggers, promptTrigger{Date: t.Timestamp, Trigger: t.Trigger, Notes: t.Notes})
	}
	accomplishments := make([]promptAccomplishment, 0, len(recent.Accomplishments))
	for _, a := range recent.Accomplishments {
		accomplishments = append(accomplishments, promptAccomplishment{Date: a.Date, Title: a.Title})
	}

	rj, err := json.Marshal(reflections)
	if err != nil {
		return "", fmt.Errorf("encode reflections: %w", err)
	}
	tj, err := json.Marshal(triggers)
	if err != nil {
		return "", fmt.Errorf("encode triggers: %w", err)
	}
	aj, err := json.Marshal(accomplishments)
	if err != nil {
		return "", fmt.Errorf("encode accomplishments: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a leadership coach. Analyze the following entries from a user's leadership development log for the past %d days.\n\n", RecentWindow)
	fmt.Fprintf(&b, "Reflections:\n%s\n\n", rj)
	fmt.Fprintf(&b, "Emotional Triggers:\n%s\n\n", tj)
	fmt.Fprintf(&b, "Accomplishments:\n%s\n\n", aj)
	b.WriteString("Provide a brief, encouraging, and constructive summary (approx 150 words).\n")
	b.WriteString("Highlight 1 key strength demonstrated and 1 area for growth.\n")
	b.WriteString("Format the response in Markdown.\n")
	return b.String(), nil
}
