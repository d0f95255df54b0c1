package game

import (
	"github.com/marcus/dmscreen/internal/models"
)

// AddPlayer appends p to the party
func (s *Store) AddPlayer(p models.Player) {
	p = p.Clone()
	s.mutate(func(st *models.GameState) []models.Field {
		st.Players = append(append([]models.Player(nil), st.Players...), p)
		return fields(models.FieldPlayers)
	})
}

// RemovePlayer deletes player i
func (s *Store) RemovePlayer(i int) {
	s.mutate(func(st *models.GameState) []models.Field {
		if i < 0 || i >= len(st.Players) {
			return nil
		}
		next := make([]models.Player, 0, len(st.Players)-1)
		next = append(next, st.Players[:i]...)
		st.Players = append(next, st.Players[i+1:]...)
		return fields(models.FieldPlayers)
	})
}

// UpdatePlayer replaces player i
func (s *Store) UpdatePlayer(i int, p models.Player) {
	p = p.Clone()
	s.mutate(func(st *models.GameState) []models.Field {
		if i < 0 || i >= len(st.Players) {
			return nil
		}
		next := append([]models.Player(nil), st.Players...)
		next[i] = p
		st.Players = next
		return fields(models.FieldPlayers)
	})
}

// AddDeathSave starts tracking death saves for name
func (s *Store) AddDeathSave(name string) {
	s.mutate(func(st *models.GameState) []models.Field {
		st.DeathSaves = append(append([]models.DeathSave(nil), st.DeathSaves...), models.DeathSave{Name: name})
		return fields(models.FieldDeathSaves)
	})
}

// RemoveDeathSave stops tracking entry i
func (s *Store) RemoveDeathSave(i int) {
	s.mutate(func(st *models.GameState) []models.Field {
		if i < 0 || i >= len(st.DeathSaves) {
			return nil
		}
		next := make([]models.DeathSave, 0, len(st.DeathSaves)-1)
		next = append(next, st.DeathSaves[:i]...)
		st.DeathSaves = append(next, st.DeathSaves[i+1:]...)
		return fields(models.FieldDeathSaves)
	})
}

func editDeathSave(st *models.GameState, i int, fn func(d *models.DeathSave) bool) []models.Field {
	if i < 0 || i >= len(st.DeathSaves) {
		return nil
	}
	next := append([]models.DeathSave(nil), st.DeathSaves...)
	if !fn(&next[i]) {
		return nil
	}
	st.DeathSaves = next
	return fields(models.FieldDeathSaves)
}

// AdjustDeathSave adds delta to one counter of entry i, clamped to [0, 3]
func (s *Store) AdjustDeathSave(i int, kind models.DeathSaveKind, delta int) {
	s.mutate(func(st *models.GameState) []models.Field {
		return editDeathSave(st, i, func(d *models.DeathSave) bool {
			var counter *int
			switch kind {
			case models.DeathSaveSuccesses:
				counter = &d.Successes
			case models.DeathSaveFailures:
				counter = &d.Failures
			default:
				return false
			}
			v := clamp(*counter+delta, 0, models.MaxDeathSaves)
			if v == *counter {
				return false
			}
			*counter = v
			return true
		})
	})
}

// ToggleStable flips the stable flag of entry i
func (s *Store) ToggleStable(i int) {
	s.mutate(func(st *models.GameState) []models.Field {
		return editDeathSave(st, i, func(d *models.DeathSave) bool {
			d.Stable = !d.Stable
			return true
		})
	})
}

// ResetDeathSave clears both counters and the stable flag of entry i
func (s *Store) ResetDeathSave(i int) {
	s.mutate(func(st *models.GameState) []models.Field {
		return editDeathSave(st, i, func(d *models.DeathSave) bool {
			if d.Successes == 0 && d.Failures == 0 && !d.Stable {
				return false
			}
			d.Successes, d.Failures, d.Stable = 0, 0, false
			return true
		})
	})
}

// AddLink appends a bookmark. The URL must carry an http or https scheme.
func (s *Store) AddLink(l models.Link) error {
	if err := models.ValidateLinkURL(l.URL); err != nil {
		return err
	}
	s.mutate(func(st *models.GameState) []models.Field {
		st.Links = append(append([]models.Link(nil), st.Links...), l)
		return fields(models.FieldLinks)
	})
	return nil
}

// RemoveLink deletes link i
func (s *Store) RemoveLink(i int) {
	s.mutate(func(st *models.GameState) []models.Field {
		if i < 0 || i >= len(st.Links) {
			return nil
		}
		next := make([]models.Link, 0, len(st.Links)-1)
		next = append(next, st.Links[:i]...)
		st.Links = append(next, st.Links[i+1:]...)
		return fields(models.FieldLinks)
	})
}

// UpdateLink replaces link i
func (s *Store) UpdateLink(i int, l models.Link) error {
	if err := models.ValidateLinkURL(l.URL); err != nil {
		return err
	}
	s.mutate(func(st *models.GameState) []models.Field {
		if i < 0 || i >= len(st.Links) {
			return nil
		}
		next := append([]models.Link(nil), st.Links...)
		next[i] = l
		st.Links = next
		return fields(models.FieldLinks)
	})
	return nil
}
