package game

import (
	"fmt"

	"github.com/marcus/dmscreen/internal/models"
)

// editCharacter copies the encounter, deep-copies character i and hands it
// to fn. fn reports whether it changed anything.
func editCharacter(st *models.GameState, i int, fn func(c *models.Character) bool) []models.Field {
	if i < 0 || i >= len(st.Encounter) {
		return nil
	}
	next := append([]models.Character(nil), st.Encounter...)
	c := next[i].Clone()
	if !fn(&c) {
		return nil
	}
	next[i] = c
	st.Encounter = next
	return fields(models.FieldEncounter)
}

// AddCharacter appends c to the encounter
func (s *Store) AddCharacter(c models.Character) {
	c = c.Clone()
	if c.Abilities == nil {
		c.Abilities = []models.Ability{}
	}
	c.ClampBounds()
	s.mutate(func(st *models.GameState) []models.Field {
		st.Encounter = append(append([]models.Character(nil), st.Encounter...), c)
		return fields(models.FieldEncounter)
	})
}

// AddPlayerToEncounter appends a character derived from player pi with the
// given hit points as both current and maximum.
func (s *Store) AddPlayerToEncounter(pi, hp int) {
	s.mutate(func(st *models.GameState) []models.Field {
		if pi < 0 || pi >= len(st.Players) {
			return nil
		}
		c := models.PlayerToCharacter(st.Players[pi])
		if hp > 0 {
			c.HP, c.MaxHP = hp, hp
		}
		st.Encounter = append(append([]models.Character(nil), st.Encounter...), c)
		return fields(models.FieldEncounter)
	})
}

// RemoveCharacter deletes entry i. The turn pointer follows the active
// character; removing the active character clears it.
func (s *Store) RemoveCharacter(i int) {
	s.mutate(func(st *models.GameState) []models.Field {
		if i < 0 || i >= len(st.Encounter) {
			return nil
		}
		next := make([]models.Character, 0, len(st.Encounter)-1)
		next = append(next, st.Encounter[:i]...)
		next = append(next, st.Encounter[i+1:]...)
		st.Encounter = next

		changed := fields(models.FieldEncounter)
		switch turn := st.CurrentTurnIndex; {
		case turn == i:
			st.CurrentTurnIndex = models.NoTurn
			changed = append(changed, models.FieldCurrentTurnIndex)
		case turn > i:
			st.CurrentTurnIndex = turn - 1
			changed = append(changed, models.FieldCurrentTurnIndex)
		}
		return changed
	})
}

// UpdateCharacter replaces entry i with c. Hit points and ability uses are
// clamped to their maxima.
func (s *Store) UpdateCharacter(i int, c models.Character) {
	c = c.Clone()
	if c.Abilities == nil {
		c.Abilities = []models.Ability{}
	}
	c.ClampBounds()
	s.mutate(func(st *models.GameState) []models.Field {
		return editCharacter(st, i, func(cur *models.Character) bool {
			*cur = c
			return true
		})
	})
}

// ApplyAdjustment adds delta to the hit points of entry i, clamped to
// [0, maxHp]. Negative deltas are damage, positive deltas healing.
func (s *Store) ApplyAdjustment(i, delta int) {
	s.mutate(func(st *models.GameState) []models.Field {
		return editCharacter(st, i, func(c *models.Character) bool {
			hp := clamp(c.HP+delta, 0, c.MaxHP)
			if hp == c.HP {
				return false
			}
			c.HP = hp
			return true
		})
	})
}

// RollInitiative overwrites the initiative of entry i with d20 plus its
// initiative modifier.
func (s *Store) RollInitiative(i int) {
	s.mutate(func(st *models.GameState) []models.Field {
		return editCharacter(st, i, func(c *models.Character) bool {
			c.Initiative = RollDie(s.roller, 20) + c.InitiativeMod
			return true
		})
	})
}

// RollAllInitiative rolls initiative for every entry in insertion order
func (s *Store) RollAllInitiative() {
	s.mutate(func(st *models.GameState) []models.Field {
		if len(st.Encounter) == 0 {
			return nil
		}
		next := make([]models.Character, len(st.Encounter))
		for i, c := range st.Encounter {
			c = c.Clone()
			c.Initiative = RollDie(s.roller, 20) + c.InitiativeMod
			next[i] = c
		}
		st.Encounter = next
		return fields(models.FieldEncounter)
	})
}

// CopyEncounter appends a duplicate of entry i named "<name> (<suffix>)",
// using the first suffix in a, b, ... z, aa, ab, ... that gives a name not
// already present.
func (s *Store) CopyEncounter(i int) {
	s.mutate(func(st *models.GameState) []models.Field {
		if i < 0 || i >= len(st.Encounter) {
			return nil
		}
		names := make(map[string]bool, len(st.Encounter))
		for _, c := range st.Encounter {
			names[c.Name] = true
		}
		src := st.Encounter[i]
		dup := src.Clone()
		for n := 0; ; n++ {
			name := fmt.Sprintf("%s (%s)", src.Name, copySuffix(n))
			if !names[name] {
				dup.Name = name
				break
			}
		}
		st.Encounter = append(append([]models.Character(nil), st.Encounter...), dup)
		return fields(models.FieldEncounter)
	})
}

// copySuffix returns the n-th copy suffix: a..z, then aa..az, ba, ...
func copySuffix(n int) string {
	var b []byte
	for n++; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('a' + (n-1)%26)}, b...)
	}
	return string(b)
}

// UpdateCondition sets the free-text status of entry i
func (s *Store) UpdateCondition(i int, text string) {
	s.mutate(func(st *models.GameState) []models.Field {
		return editCharacter(st, i, func(c *models.Character) bool {
			if c.Status == text {
				return false
			}
			c.Status = text
			return true
		})
	})
}

// AddAbility appends a to the abilities of entry ci
func (s *Store) AddAbility(ci int, a models.Ability) {
	if a.Max < 0 {
		a.Max = 0
	}
	a.Used = clamp(a.Used, 0, a.Max)
	s.mutate(func(st *models.GameState) []models.Field {
		return editCharacter(st, ci, func(c *models.Character) bool {
			c.Abilities = append(c.Abilities, a)
			return true
		})
	})
}

// RemoveAbility deletes ability ai from entry ci
func (s *Store) RemoveAbility(ci, ai int) {
	s.mutate(func(st *models.GameState) []models.Field {
		return editCharacter(st, ci, func(c *models.Character) bool {
			if ai < 0 || ai >= len(c.Abilities) {
				return false
			}
			c.Abilities = append(c.Abilities[:ai], c.Abilities[ai+1:]...)
			return true
		})
	})
}

// AdjustAbility adds delta to the used count of ability ai on entry ci,
// clamped to [0, max].
func (s *Store) AdjustAbility(ci, ai, delta int) {
	s.mutate(func(st *models.GameState) []models.Field {
		return editCharacter(st, ci, func(c *models.Character) bool {
			if ai < 0 || ai >= len(c.Abilities) {
				return false
			}
			used := clamp(c.Abilities[ai].Used+delta, 0, c.Abilities[ai].Max)
			if used == c.Abilities[ai].Used {
				return false
			}
			c.Abilities[ai].Used = used
			return true
		})
	})
}

// ToggleSort flips the sort key. Stored order is never changed.
func (s *Store) ToggleSort() {
	s.mutate(func(st *models.GameState) []models.Field {
		st.SortBy = st.SortBy.Toggle()
		return fields(models.FieldSortBy)
	})
}

// SetSort sets the sort key
func (s *Store) SetSort(m models.SortMode) {
	if !m.Valid() {
		return
	}
	s.mutate(func(st *models.GameState) []models.Field {
		if st.SortBy == m {
			return nil
		}
		st.SortBy = m
		return fields(models.FieldSortBy)
	})
}
