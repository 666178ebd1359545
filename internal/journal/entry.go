package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmptyField indicates a required text field is empty or whitespace-only.
	ErrEmptyField = errors.New("required field is empty")

	// ErrIntensityRange indicates a trigger intensity outside [1,10].
	ErrIntensityRange = errors.New("intensity out of range")

	// ErrUnknownCategory indicates a reflection category outside the closed set.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnknownKind indicates a collection name that is not a record kind.
	ErrUnknownKind = errors.New("unknown record kind")

	// ErrDuplicateID indicates a second record with an id already in its collection.
	ErrDuplicateID = errors.New("duplicate record id")
)

// newID returns a fresh record id.
func newID() string {
	return uuid.NewString()
}

func required(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyField, field)
	}
	return v, nil
}

// NewReflection builds a reflection stamped at now.
func NewReflection(content string, category Category, now time.Time) (Reflection, error) {
	c, err := required("content", content)
	if err != nil {
		return Reflection{}, err
	}
	if !category.Valid() {
		return Reflection{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return Reflection{
		ID:       newID(),
		Date:     now.UTC(),
		Content:  c,
		Category: category,
	}, nil
}

// NewTrigger builds a trigger stamped at now.
func NewTrigger(trigger, notes string, intensity int, now time.Time) (Trigger, error) {
	tr, err := required("trigger", trigger)
	if err != nil {
		return Trigger{}, err
	}
	if intensity < MinIntensity || intensity > MaxIntensity {
		return Trigger{}, fmt.Errorf("%w: %d (must be %d-%d)", ErrIntensityRange, intensity, MinIntensity, MaxIntensity)
	}
	return Trigger{
		ID:        newID(),
		Timestamp: now.UTC(),
		Trigger:   tr,
		Notes:     strings.TrimSpace(notes),
		Intensity: intensity,
	}, nil
}

// NewAccomplishment builds an accomplishment stamped at now.
func NewAccomplishment(title, details string, now time.Time) (Accomplishment, error) {
	t, err := required("title", title)
	if err != nil {
		return Accomplishment{}, err
	}
	return Accomplishment{
		ID:      newID(),
		Date:    now.UTC(),
		Title:   t,
		Details: strings.TrimSpace(details),
	}, nil
}

// Validate checks a reflection that did not come from NewReflection.
func (r Reflection) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: id", ErrEmptyField)
	}
	if _, err := required("content", r.Content); err != nil {
		return err
	}
	if !r.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, r.Category)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("%w: date", ErrEmptyField)
	}
	return nil
}

// Validate checks a trigger that did not come from NewTrigger.
func (t Trigger) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: id", ErrEmptyField)
	}
	if _, err := required("trigger", t.Trigger); err != nil {
		return err
	}
	if t.Intensity < MinIntensity || t.Intensity > MaxIntensity {
		return fmt.Errorf("%w: %d", ErrIntensityRange, t.Intensity)
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp", ErrEmptyField)
	}
	return nil
}

// Validate checks an accomplishment that did not come from NewAccomplishment.
func (a Accomplishment) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: id", ErrEmptyField)
	}
	if _, err := required("title", a.Title); err != nil {
		return err
	}
	if a.Date.IsZero() {
		return fmt.Errorf("%w: date", ErrEmptyField)
	}
	return nil
}

// Validate checks every record and that ids are unique within each
// collection. All problems are reported, joined.
func (s AppState) Validate() error {
	var errs []error
	errs = append(errs, validateAll(KindReflection, s.Reflections, Reflection.Validate, func(r Reflection) string { return r.ID })...)
	errs = append(errs, validateAll(KindTrigger, s.Triggers, Trigger.Validate, func(t Trigger) string { return t.ID })...)
	errs = append(errs, validateAll(KindAccomplishment, s.Accomplishments, Accomplishment.Validate, func(a Accomplishment) string { return a.ID })...)
	return errors.Join(errs...)
}

func validateAll[T any](kind Kind, items []T, validate func(T) error, id func(T) string) []error {
	var errs []error
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if err := validate(item); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", kind, id(item), err))
			continue
		}
		if _, dup := seen[id(item)]; dup {
			errs = append(errs, fmt.Errorf("%s %s: %w", kind, id(item), ErrDuplicateID))
			continue
		}
		seen[id(item)] = struct{}{}
	}
	return errs
}

// ParseKind maps a collection name (singular, plural, or "win") to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reflection", "reflections", "reflect":
		return KindReflection, nil
	case "trigger", "triggers":
		return KindTrigger, nil
	case "accomplishment", "accomplishments", "win", "wins":
		return KindAccomplishment, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}
