package insight

import "github.com/fyrsmithlabs/leaderlog/internal/journal"

// scrub passes every text field that BuildPrompt sends through sc. recent is
// modified in place; Recent already returns fresh slices.
func scrub(sc Scrubber, recent journal.AppState) (journal.AppState, int, error) {
	if sc == nil {
		return recent, 0, nil
	}

	total := 0
	clean := func(s *string) error {
		out, n, err := sc.Redact(*s)
		if err != nil {
			return err
		}
		*s = out
		total += n
		return nil
	}

	for i := range recent.Reflections {
		if err := clean(&recent.Reflections[i].Content); err != nil {
			return recent, 0, err
		}
	}
	for i := range recent.Triggers {
		if err := clean(&recent.Triggers[i].Trigger); err != nil {
			return recent, 0, err
		}
		if err := clean(&recent.Triggers[i].Notes); err != nil {
			return recent, 0, err
		}
	}
	for i := range recent.Accomplishments {
		if err := clean(&recent.Accomplishments[i].Title); err != nil {
			return recent, 0, err
		}
	}
	return recent, total, nil
}
