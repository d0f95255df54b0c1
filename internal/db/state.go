package db

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/marcus/dmscreen/internal/models"
)

// Storage keys, one per state field. The values are stable across versions.
const (
	KeyEncounter        = "dndEncounter"
	KeyPlayers          = "players"
	KeyDeathSaves       = "deathSaves"
	KeyLinks            = "links"
	KeyBastions         = "bastions"
	KeyCurrentDay       = "currentDay"
	KeySortBy           = "sortBy"
	KeyDarkMode         = "darkMode"
	KeyCurrentRound     = "currentRound"
	KeyCurrentTurnIndex = "currentTurnIndex"
)

var fieldKeys = map[models.Field]string{
	models.FieldEncounter:        KeyEncounter,
	models.FieldPlayers:          KeyPlayers,
	models.FieldDeathSaves:       KeyDeathSaves,
	models.FieldLinks:            KeyLinks,
	models.FieldBastions:         KeyBastions,
	models.FieldCurrentDay:       KeyCurrentDay,
	models.FieldSortBy:           KeySortBy,
	models.FieldDarkMode:         KeyDarkMode,
	models.FieldCurrentRound:     KeyCurrentRound,
	models.FieldCurrentTurnIndex: KeyCurrentTurnIndex,
}

// KeyFor returns the storage key of field f
func KeyFor(f models.Field) string {
	return fieldKeys[f]
}

// encodeField renders field f of st as its stored text
func encodeField(st models.GameState, f models.Field) (string, error) {
	var v any
	switch f {
	case models.FieldEncounter:
		v = st.Encounter
	case models.FieldPlayers:
		v = st.Players
	case models.FieldDeathSaves:
		v = st.DeathSaves
	case models.FieldLinks:
		v = st.Links
	case models.FieldBastions:
		v = st.Bastions
	case models.FieldCurrentDay:
		return strconv.Itoa(st.CurrentDay), nil
	case models.FieldSortBy:
		return string(st.SortBy), nil
	case models.FieldDarkMode:
		return strconv.FormatBool(st.DarkMode), nil
	case models.FieldCurrentRound:
		return strconv.Itoa(st.CurrentRound), nil
	case models.FieldCurrentTurnIndex:
		return strconv.Itoa(st.CurrentTurnIndex), nil
	default:
		return "", fmt.Errorf("unknown field %q", f)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeField parses raw into field f of st
func decodeField(st *models.GameState, f models.Field, raw string) error {
	switch f {
	case models.FieldEncounter:
		return json.Unmarshal([]byte(raw), &st.Encounter)
	case models.FieldPlayers:
		return json.Unmarshal([]byte(raw), &st.Players)
	case models.FieldDeathSaves:
		return json.Unmarshal([]byte(raw), &st.DeathSaves)
	case models.FieldLinks:
		return json.Unmarshal([]byte(raw), &st.Links)
	case models.FieldBastions:
		return json.Unmarshal([]byte(raw), &st.Bastions)
	case models.FieldCurrentDay:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("negative day %d", n)
		}
		st.CurrentDay = n
	case models.FieldSortBy:
		m, err := models.ParseSortMode(raw)
		if err != nil {
			return err
		}
		st.SortBy = m
	case models.FieldDarkMode:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		st.DarkMode = b
	case models.FieldCurrentRound:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("negative round %d", n)
		}
		st.CurrentRound = n
	case models.FieldCurrentTurnIndex:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		st.CurrentTurnIndex = n
	default:
		return fmt.Errorf("unknown field %q", f)
	}
	return nil
}

// LoadState reads every field independently. A missing or unreadable value
// falls back to that field's default; it never fails the whole load.
func (db *DB) LoadState() (models.GameState, error) {
	st := models.DefaultState()
	def := models.DefaultState()
	for _, f := range models.AllFields {
		key := fieldKeys[f]
		raw, ok, err := db.Get(key)
		if err != nil {
			return st, err
		}
		if !ok {
			continue
		}
		if err := decodeField(&st, f, raw); err != nil {
			slog.Debug("stored value unreadable, using default", "key", key, "err", err)
			restoreDefault(&st, def, f)
		}
	}
	st.Normalize()
	if st.CurrentTurnIndex < models.NoTurn || st.CurrentTurnIndex >= len(st.Encounter) {
		st.CurrentTurnIndex = models.NoTurn
	}
	return st, nil
}

// restoreDefault resets field f, undoing any partial decode
func restoreDefault(st *models.GameState, def models.GameState, f models.Field) {
	switch f {
	case models.FieldEncounter:
		st.Encounter = def.Encounter
	case models.FieldPlayers:
		st.Players = def.Players
	case models.FieldDeathSaves:
		st.DeathSaves = def.DeathSaves
	case models.FieldLinks:
		st.Links = def.Links
	case models.FieldBastions:
		st.Bastions = def.Bastions
	case models.FieldCurrentDay:
		st.CurrentDay = def.CurrentDay
	case models.FieldSortBy:
		st.SortBy = def.SortBy
	case models.FieldDarkMode:
		st.DarkMode = def.DarkMode
	case models.FieldCurrentRound:
		st.CurrentRound = def.CurrentRound
	case models.FieldCurrentTurnIndex:
		st.CurrentTurnIndex = def.CurrentTurnIndex
	}
}

// SaveFields writes the named fields of st in one transaction
func (db *DB) SaveFields(st models.GameState, fields ...models.Field) error {
	st.Normalize()
	pairs := make(map[string]string, len(fields))
	for _, f := range fields {
		key, ok := fieldKeys[f]
		if !ok {
			return fmt.Errorf("unknown field %q", f)
		}
		v, err := encodeField(st, f)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		pairs[key] = v
	}
	return db.setMany(pairs)
}

// SaveState writes every field of st
func (db *DB) SaveState(st models.GameState) error {
	return db.SaveFields(st, models.AllFields...)
}
