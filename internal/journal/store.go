package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/leaderlog/internal/logging"
)

// ErrPersist wraps a failed save. The in-memory mutation that triggered the
// save is kept; only the on-disk snapshot is stale.
var ErrPersist = errors.New("persist state")

// Saver writes the whole application state as one blob.
type Saver interface {
	Save(ctx context.Context, state AppState) error
}

// Loader reads the whole application state.
type Loader interface {
	Load(ctx context.Context) (AppState, error)
}

// Store owns the in-memory AppState and rewrites it through a Saver after
// every mutation. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	state   AppState
	saver   Saver
	logger  *logging.Logger
	lastErr error
}

// NewStore creates a store seeded with state. A nil logger discards logs.
func NewStore(state AppState, saver Saver, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		state:  state.Normalize().Clone(),
		saver:  saver,
		logger: logger.Named("store"),
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// LastSaveError returns the error from the most recent save, or nil if it succeeded.
func (s *Store) LastSaveError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// AddReflection validates and appends r, then saves.
func (s *Store) AddReflection(ctx context.Context, r Reflection) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return s.mutate(ctx, "reflection added", func(st *AppState) error {
		if containsID(st.Reflections, r.ID, func(x Reflection) string { return x.ID }) {
			return fmt.Errorf("%w: reflection %s", ErrDuplicateID, r.ID)
		}
		st.Reflections = append(st.Reflections, r)
		return nil
	}, zap.String("id", r.ID), zap.String("category", string(r.Category)))
}

// AddTrigger validates and appends t, then saves.
func (s *Store) AddTrigger(ctx context.Context, t Trigger) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.mutate(ctx, "trigger added", func(st *AppState) error {
		if containsID(st.Triggers, t.ID, func(x Trigger) string { return x.ID }) {
			return fmt.Errorf("%w: trigger %s", ErrDuplicateID, t.ID)
		}
		st.Triggers = append(st.Triggers, t)
		return nil
	}, zap.String("id", t.ID), zap.Int("intensity", t.Intensity))
}

// AddAccomplishment validates and appends a, then saves.
func (s *Store) AddAccomplishment(ctx context.Context, a Accomplishment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return s.mutate(ctx, "accomplishment added", func(st *AppState) error {
		if containsID(st.Accomplishments, a.ID, func(x Accomplishment) string { return x.ID }) {
			return fmt.Errorf("%w: accomplishment %s", ErrDuplicateID, a.ID)
		}
		st.Accomplishments = append(st.Accomplishments, a)
		return nil
	}, zap.String("id", a.ID))
}

// Delete removes the first record with id from the collection named by kind.
// An unknown id is a no-op: it reports false, returns nil and does not save.
func (s *Store) Delete(ctx context.Context, kind Kind, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed bool
	switch kind {
	case KindReflection:
		s.state.Reflections, removed = removeFirst(s.state.Reflections, func(r Reflection) bool { return r.ID == id })
	case KindTrigger:
		s.state.Triggers, removed = removeFirst(s.state.Triggers, func(t Trigger) bool { return t.ID == id })
	case KindAccomplishment:
		s.state.Accomplishments, removed = removeFirst(s.state.Accomplishments, func(a Accomplishment) bool { return a.ID == id })
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if !removed {
		s.logger.Debug(ctx, "delete: id not found", zap.String("kind", string(kind)), zap.String("id", id))
		return false, nil
	}

	s.logger.Info(ctx, "record deleted", zap.String("kind", string(kind)), zap.String("id", id))
	return true, s.saveLocked(ctx)
}

// Replace swaps the whole state, as when importing an exported blob, and saves.
func (s *Store) Replace(ctx context.Context, state AppState) error {
	next := state.Normalize().Clone()
	if err := next.Validate(); err != nil {
		return err
	}

	return s.mutate(ctx, "state replaced", func(st *AppState) error {
		*st = next
		return nil
	}, zap.Int("reflections", len(next.Reflections)),
		zap.Int("triggers", len(next.Triggers)),
		zap.Int("accomplishments", len(next.Accomplishments)))
}

// Reload replaces the in-memory state with what l returns, without saving.
// It is used after another process rewrote the journal, and reports whether
// the state differs from what the store held. On error the state is kept.
func (s *Store) Reload(ctx context.Context, l Loader) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := l.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("reload journal: %w", err)
	}
	next := loaded.Normalize().Clone()
	if sameContent(s.state, next) {
		return false, nil
	}

	s.state = next
	s.logger.Info(ctx, "state reloaded",
		zap.Int("reflections", len(next.Reflections)),
		zap.Int("triggers", len(next.Triggers)),
		zap.Int("accomplishments", len(next.Accomplishments)))
	return true, nil
}

// sameContent compares by JSON form; time.Time values read back from disk
// lose their monotonic reading and location, so == is too strict.
func sameContent(a, b AppState) bool {
	aj, err := json.Marshal(a.Normalize())
	if err != nil {
		return false
	}
	bj, err := json.Marshal(b.Normalize())
	if err != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}

// mutate applies fn under the write lock and saves the result. If fn fails
// nothing is saved; fn must leave the state untouched in that case.
func (s *Store) mutate(ctx context.Context, msg string, fn func(*AppState) error, fields ...zap.Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(&s.state); err != nil {
		return err
	}
	s.logger.Info(ctx, msg, fields...)
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	err := s.saver.Save(ctx, s.state.Clone())
	if err != nil {
		s.lastErr = fmt.Errorf("%w: %w", ErrPersist, err)
		s.logger.Warn(ctx, "save failed, keeping in-memory state", zap.Error(err))
		return s.lastErr
	}
	s.lastErr = nil
	return nil
}

func containsID[T any](items []T, id string, get func(T) string) bool {
	for _, item := range items {
		if get(item) == id {
			return true
		}
	}
	return false
}

// removeFirst returns items without the first element matching and whether
// one was removed. The input slice is not modified.
func removeFirst[T any](items []T, match func(T) bool) ([]T, bool) {
	for i, item := range items {
		if match(item) {
			out := make([]T, 0, len(items)-1)
			out = append(out, items[:i]...)
			return append(out, items[i+1:]...), true
		}
	}
	return items, false
}
