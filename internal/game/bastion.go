package game

import (
	"math"
	"strings"

	"github.com/marcus/dmscreen/internal/models"
)

// BastionEvents is the table a maintained bastion draws from each turn
var BastionEvents = []string{
	"Bandits attack your Bastion!",
	"A wandering trader brings rare goods.",
	"A magical anomaly appears: arcane research speeds up!",
	"Your bastion gains +10 gp from trade.",
	"One facility gets sabotaged!",
	"An NPC asks for sanctuary.",
	"Nothing happens this turn.",
	"You find a hidden vault: gain 1 uncommon magic item!",
}

func editBastion(st *models.GameState, i int, fn func(b *models.Bastion) bool) []models.Field {
	if i < 0 || i >= len(st.Bastions) {
		return nil
	}
	next := append([]models.Bastion(nil), st.Bastions...)
	b := next[i].Clone()
	if !fn(&b) {
		return nil
	}
	next[i] = b
	st.Bastions = next
	return fields(models.FieldBastions)
}

// AddBastion appends b. A new bastion starts processing from the current day.
func (s *Store) AddBastion(b models.Bastion) {
	b = b.Clone()
	s.mutate(func(st *models.GameState) []models.Field {
		if b.LastProcessedDay < 0 || b.LastProcessedDay > st.CurrentDay {
			b.LastProcessedDay = st.CurrentDay
		}
		st.Bastions = append(append([]models.Bastion(nil), st.Bastions...), b)
		return fields(models.FieldBastions)
	})
}

// RemoveBastion deletes bastion i
func (s *Store) RemoveBastion(i int) {
	s.mutate(func(st *models.GameState) []models.Field {
		if i < 0 || i >= len(st.Bastions) {
			return nil
		}
		next := make([]models.Bastion, 0, len(st.Bastions)-1)
		next = append(next, st.Bastions[:i]...)
		st.Bastions = append(next, st.Bastions[i+1:]...)
		return fields(models.FieldBastions)
	})
}

// AddBastionFacility appends a facility name to bastion i. Blank names are
// ignored.
func (s *Store) AddBastionFacility(i int, facility string) {
	facility = strings.TrimSpace(facility)
	if facility == "" {
		return
	}
	s.mutate(func(st *models.GameState) []models.Field {
		return editBastion(st, i, func(b *models.Bastion) bool {
			b.Facilities = append(b.Facilities, facility)
			return true
		})
	})
}

// RemoveBastionFacility deletes facility fi from bastion i
func (s *Store) RemoveBastionFacility(i, fi int) {
	s.mutate(func(st *models.GameState) []models.Field {
		return editBastion(st, i, func(b *models.Bastion) bool {
			if fi < 0 || fi >= len(b.Facilities) {
				return false
			}
			b.Facilities = append(b.Facilities[:fi], b.Facilities[fi+1:]...)
			return true
		})
	})
}

// IssueBastionOrder sets the standing order of bastion i
func (s *Store) IssueBastionOrder(i int, order models.BastionOrder) {
	s.mutate(func(st *models.GameState) []models.Field {
		return editBastion(st, i, func(b *models.Bastion) bool {
			if b.CurrentOrder == order {
				return false
			}
			b.CurrentOrder = order
			return true
		})
	})
}

// SaveBastionNote sets the free-text note of bastion i
func (s *Store) SaveBastionNote(i int, note string) {
	s.mutate(func(st *models.GameState) []models.Field {
		return editBastion(st, i, func(b *models.Bastion) bool {
			if b.Note == note {
				return false
			}
			b.Note = note
			return true
		})
	})
}

// ProcessSingleBastion runs every bastion turn that has elapsed for bastion i
func (s *Store) ProcessSingleBastion(i int) {
	s.mutate(func(st *models.GameState) []models.Field {
		day := st.CurrentDay
		return editBastion(st, i, func(b *models.Bastion) bool {
			return s.catchUp(b, day)
		})
	})
}

// ProcessAllBastions runs elapsed bastion turns for every bastion
func (s *Store) ProcessAllBastions() {
	s.mutate(func(st *models.GameState) []models.Field {
		next := append([]models.Bastion(nil), st.Bastions...)
		changed := false
		for i := range next {
			b := next[i].Clone()
			if s.catchUp(&b, st.CurrentDay) {
				next[i] = b
				changed = true
			}
		}
		if !changed {
			return nil
		}
		st.Bastions = next
		return fields(models.FieldBastions)
	})
}

// catchUp advances b one turn at a time until fewer than seven days remain
// unprocessed. A maintained bastion draws a fresh event on each turn.
func (s *Store) catchUp(b *models.Bastion, day int) bool {
	advanced := false
	for day-b.LastProcessedDay >= models.BastionTurnDays {
		b.LastProcessedDay += models.BastionTurnDays
		b.TurnDay += models.BastionTurnDays
		if b.CurrentOrder == models.OrderMaintain {
			b.LastEvent = BastionEvents[s.roller.Intn(len(BastionEvents))]
		}
		advanced = true
	}
	return advanced
}

// AdvanceDays moves the campaign calendar forward. Non-finite or
// non-positive values are ignored and fractions truncate toward zero.
func (s *Store) AdvanceDays(n float64) {
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return
	}
	if n > math.MaxInt32 {
		n = math.MaxInt32
	}
	days := int(n)
	if days == 0 {
		return
	}
	s.mutate(func(st *models.GameState) []models.Field {
		st.CurrentDay += days
		return fields(models.FieldCurrentDay)
	})
}

// ResetDay returns the calendar to day 0 along with every bastion's
// processing marker.
func (s *Store) ResetDay() {
	s.mutate(func(st *models.GameState) []models.Field {
		next := make([]models.Bastion, len(st.Bastions))
		for i, b := range st.Bastions {
			b = b.Clone()
			b.LastProcessedDay = 0
			next[i] = b
		}
		st.Bastions = next
		st.CurrentDay = 0
		return fields(models.FieldCurrentDay, models.FieldBastions)
	})
}
