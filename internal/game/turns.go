package game

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/marcus/dmscreen/internal/models"
)

// Phase is the turn-order state machine state
type Phase int

const (
	// PhaseIdle means combat has not started (round 0)
	PhaseIdle Phase = iota
	// PhaseInCombat means round is 1 or more
	PhaseInCombat
)

func (p Phase) String() string {
	if p == PhaseInCombat {
		return "in combat"
	}
	return "idle"
}

// SortedEntry is one row of the derived turn order
type SortedEntry struct {
	Index     int // position in the stored encounter
	Character models.Character
}

// SortedView returns the encounter in turn order for the current sort key
func (s *Store) SortedView() []SortedEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order := sortedOrder(s.state)
	out := make([]SortedEntry, len(order))
	for pos, idx := range order {
		out[pos] = SortedEntry{Index: idx, Character: s.state.Encounter[idx].Clone()}
	}
	return out
}

// CombatPhase reports whether combat is running
func (s *Store) CombatPhase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return phaseOf(s.state)
}

func phaseOf(st models.GameState) Phase {
	if st.CurrentRound >= 1 {
		return PhaseInCombat
	}
	return PhaseIdle
}

// sortedOrder returns encounter indices in turn order. Initiative sorts
// descending, name ascending by locale collation; ties keep insertion order.
func sortedOrder(st models.GameState) []int {
	order := make([]int, len(st.Encounter))
	for i := range order {
		order[i] = i
	}
	enc := st.Encounter
	if st.SortBy == models.SortName {
		col := collate.New(language.English)
		sort.SliceStable(order, func(a, b int) bool {
			return col.CompareString(enc[order[a]].Name, enc[order[b]].Name) < 0
		})
		return order
	}
	sort.SliceStable(order, func(a, b int) bool {
		return enc[order[a]].Initiative > enc[order[b]].Initiative
	})
	return order
}

func firstTurn(st models.GameState) int {
	order := sortedOrder(st)
	if len(order) == 0 {
		return models.NoTurn
	}
	return order[0]
}

func positionOf(order []int, idx int) int {
	for pos, i := range order {
		if i == idx {
			return pos
		}
	}
	return -1
}

func setTurn(st *models.GameState, round, turn int) []models.Field {
	var changed []models.Field
	if st.CurrentRound != round {
		st.CurrentRound = round
		changed = append(changed, models.FieldCurrentRound)
	}
	if st.CurrentTurnIndex != turn {
		st.CurrentTurnIndex = turn
		changed = append(changed, models.FieldCurrentTurnIndex)
	}
	return changed
}

// StartCombat sets round 1 and gives the turn to the top of the sorted view
func (s *Store) StartCombat() {
	s.mutate(func(st *models.GameState) []models.Field {
		return setTurn(st, 1, firstTurn(*st))
	})
}

// NextTurn advances to the next combatant in sorted order. Wrapping past
// the last combatant starts a new round. No-op outside combat.
func (s *Store) NextTurn() {
	s.mutate(func(st *models.GameState) []models.Field {
		if phaseOf(*st) != PhaseInCombat || len(st.Encounter) == 0 {
			return nil
		}
		order := sortedOrder(*st)
		pos := positionOf(order, st.CurrentTurnIndex)
		if pos < 0 {
			return setTurn(st, st.CurrentRound, order[0])
		}
		round := st.CurrentRound
		pos++
		if pos == len(order) {
			pos = 0
			round++
		}
		return setTurn(st, round, order[pos])
	})
}

// PreviousTurn steps back one combatant, wrapping to the last. The round
// number is never decremented. No-op outside combat.
func (s *Store) PreviousTurn() {
	s.mutate(func(st *models.GameState) []models.Field {
		if phaseOf(*st) != PhaseInCombat || len(st.Encounter) == 0 {
			return nil
		}
		order := sortedOrder(*st)
		pos := positionOf(order, st.CurrentTurnIndex)
		switch {
		case pos < 0:
			pos = 0
		case pos == 0:
			pos = len(order) - 1
		default:
			pos--
		}
		return setTurn(st, st.CurrentRound, order[pos])
	})
}

// EndRound starts the next round at the top of the sorted view, wherever
// the turn pointer was. No-op outside combat.
func (s *Store) EndRound() {
	s.mutate(func(st *models.GameState) []models.Field {
		if phaseOf(*st) != PhaseInCombat {
			return nil
		}
		return setTurn(st, st.CurrentRound+1, firstTurn(*st))
	})
}

// ResetCombat returns to the idle phase
func (s *Store) ResetCombat() {
	s.mutate(func(st *models.GameState) []models.Field {
		return setTurn(st, 0, models.NoTurn)
	})
}
