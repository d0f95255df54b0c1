// Package game holds the in-memory campaign state and every domain operation
// that mutates it.
//
// All operations are synchronous. Each one derives the next state from the
// current state and replaces only the top-level slices it touches, so a
// Snapshot taken earlier is never affected by a later mutation. Invalid
// indices are ignored.
package game

import (
	"sync"

	"github.com/marcus/dmscreen/internal/models"
)

// Observer is notified after every mutation with the fields that changed.
// The state passed in is a private copy.
type Observer interface {
	StateChanged(state models.GameState, fields []models.Field)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(state models.GameState, fields []models.Field)

// StateChanged implements Observer
func (f ObserverFunc) StateChanged(state models.GameState, fields []models.Field) {
	f(state, fields)
}

// Store is the single source of truth for the campaign state
type Store struct {
	mu        sync.RWMutex
	state     models.GameState
	roller    Roller
	observers []Observer
}

// Option configures a Store
type Option func(*Store)

// WithRoller sets the random source used for initiative and bastion events
func WithRoller(r Roller) Option {
	return func(s *Store) { s.roller = r }
}

// WithObserver registers an observer at construction time
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observers = append(s.observers, o) }
}

// New creates a store holding a copy of initial
func New(initial models.GameState, opts ...Option) *Store {
	st := initial.Clone()
	st.Normalize()
	st.ClampBounds()
	clampTurn(&st)
	s := &Store{state: st}
	for _, opt := range opts {
		opt(s)
	}
	if s.roller == nil {
		s.roller = NewRoller()
	}
	return s
}

// AddObserver registers o for all subsequent mutations
func (s *Store) AddObserver(o Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() models.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Replace swaps in a whole new state with out of range counters clamped.
// Every field is reported as changed.
func (s *Store) Replace(state models.GameState) {
	next := state.Clone()
	next.Normalize()
	next.ClampBounds()
	clampTurn(&next)
	s.mutate(func(st *models.GameState) []models.Field {
		*st = next
		return models.AllFields
	})
}

// ToggleDarkMode flips the dark mode preference
func (s *Store) ToggleDarkMode() {
	s.mutate(func(st *models.GameState) []models.Field {
		st.DarkMode = !st.DarkMode
		return fields(models.FieldDarkMode)
	})
}

// SetDarkMode sets the dark mode preference
func (s *Store) SetDarkMode(on bool) {
	s.mutate(func(st *models.GameState) []models.Field {
		if st.DarkMode == on {
			return nil
		}
		st.DarkMode = on
		return fields(models.FieldDarkMode)
	})
}

// mutate applies fn to a shallow copy of the state. fn must copy any slice it
// modifies and returns the changed fields; returning none discards the copy.
func (s *Store) mutate(fn func(st *models.GameState) []models.Field) {
	s.mu.Lock()
	next := s.state
	changed := fn(&next)
	if len(changed) == 0 {
		s.mu.Unlock()
		return
	}
	s.state = next
	var snap models.GameState
	observers := s.observers
	if len(observers) > 0 {
		snap = s.state.Clone()
	}
	s.mu.Unlock()

	for _, o := range observers {
		o.StateChanged(snap, changed)
	}
}

func fields(f ...models.Field) []models.Field { return f }

func clampTurn(st *models.GameState) {
	if st.CurrentTurnIndex < 0 || st.CurrentTurnIndex >= len(st.Encounter) {
		st.CurrentTurnIndex = models.NoTurn
	}
	if st.CurrentRound < 0 {
		st.CurrentRound = 0
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
