// Package journal holds the leadership journal domain: the three record
// kinds, the application state that groups them, and the Store that owns
// that state and persists it after every mutation.
package journal

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies a reflection. The set is closed.
type Category string

const (
	// CategoryProgress covers leadership progress.
	CategoryProgress Category = "Leadership Progress"
	// CategoryCommunication covers communication.
	CategoryCommunication Category = "Communication"
	// CategoryStress covers stress management.
	CategoryStress Category = "Stress Management"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryProgress, CategoryCommunication, CategoryStress}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Short returns the one-word alias used on the command line.
func (c Category) Short() string {
	switch c {
	case CategoryProgress:
		return "progress"
	case CategoryCommunication:
		return "communication"
	case CategoryStress:
		return "stress"
	default:
		return string(c)
	}
}

// ParseCategory accepts either the full category name or its short alias,
// case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, c.Short()) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Severity is the band derived from a trigger's intensity.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Intensity bounds and the value forms start with.
const (
	MinIntensity     = 1
	MaxIntensity     = 10
	DefaultIntensity = 5
)

// SeverityFor bands an intensity: <=3 low, 4-6 medium, >=7 high.
func SeverityFor(intensity int) Severity {
	switch {
	case intensity <= 3:
		return SeverityLow
	case intensity <= 6:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// Kind names one of the three record collections.
type Kind string

const (
	KindReflection     Kind = "reflection"
	KindTrigger        Kind = "trigger"
	KindAccomplishment Kind = "accomplishment"
)

// Reflection is a categorized free-text journal entry.
type Reflection struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	Content  string    `json:"content"`
	Category Category  `json:"category"`
}

// Trigger is a logged emotional-activation event.
type Trigger struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Trigger   string    `json:"trigger"`
	Notes     string    `json:"notes"`
	Intensity int       `json:"intensity"`
}

// Severity returns the trigger's intensity band.
func (t Trigger) Severity() Severity {
	return SeverityFor(t.Intensity)
}

// Accomplishment is a logged win. Details are optional.
type Accomplishment struct {
	ID      string    `json:"id"`
	Date    time.Time `json:"date"`
	Title   string    `json:"title"`
	Details string    `json:"details"`
}

// AppState is the entire persisted state. Collections keep insertion order.
type AppState struct {
	Reflections     []Reflection     `json:"reflections"`
	Triggers        []Trigger        `json:"triggers"`
	Accomplishments []Accomplishment `json:"accomplishments"`
}

// Empty returns a state with empty, non-nil collections.
func Empty() AppState {
	return AppState{
		Reflections:     []Reflection{},
		Triggers:        []Trigger{},
		Accomplishments: []Accomplishment{},
	}
}

// Normalize replaces nil collections with empty ones so the state
// serializes as [] rather than null.
func (s AppState) Normalize() AppState {
	if s.Reflections == nil {
		s.Reflections = []Reflection{}
	}
	if s.Triggers == nil {
		s.Triggers = []Trigger{}
	}
	if s.Accomplishments == nil {
		s.Accomplishments = []Accomplishment{}
	}
	return s
}

// Clone returns a deep copy of s.
func (s AppState) Clone() AppState {
	out := AppState{
		Reflections:     make([]Reflection, len(s.Reflections)),
		Triggers:        make([]Trigger, len(s.Triggers)),
		Accomplishments: make([]Accomplishment, len(s.Accomplishments)),
	}
	copy(out.Reflections, s.Reflections)
	copy(out.Triggers, s.Triggers)
	copy(out.Accomplishments, s.Accomplishments)
	return out
}

// Len returns the number of records in the collection named by kind.
func (s AppState) Len(kind Kind) int {
	switch kind {
	case KindReflection:
		return len(s.Reflections)
	case KindTrigger:
		return len(s.Triggers)
	case KindAccomplishment:
		return len(s.Accomplishments)
	default:
		return 0
	}
}

// NewestFirst returns items in reverse insertion order without modifying them.
func NewestFirst[T any](items []T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return out
}
