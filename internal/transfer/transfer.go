// Package transfer reads and writes the portable JSON export file.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcus/dmscreen/internal/models"
)

// ExportFileName is the default file name for exports
const ExportFileName = "dm-screen-export.json"

// FormatVersion is written to every export
const FormatVersion = 3

// ErrNotObject is returned when the import payload is valid JSON but not an
// object
var ErrNotObject = errors.New("import payload must be a JSON object")

type exportDoc struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	models.GameState
}

// Export renders state as an indented export document stamped with now
func Export(state models.GameState, now time.Time) ([]byte, error) {
	st := state.Clone()
	st.Normalize()
	data, err := json.MarshalIndent(exportDoc{
		Version:    FormatVersion,
		ExportedAt: now.UTC(),
		GameState:  st,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return append(data, '\n'), nil
}

// Import parses an export document. Every field is optional and defaults on
// its own when missing or null; an unreadable field also defaults. Malformed
// JSON or a non-object is an error.
func Import(data []byte) (models.GameState, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		if t := bytes.TrimSpace(data); len(t) > 0 && t[0] != '{' && json.Valid(t) {
			return models.GameState{}, ErrNotObject
		}
		return models.GameState{}, fmt.Errorf("parse import: %w", err)
	}
	if raw == nil {
		return models.GameState{}, ErrNotObject
	}

	st := models.DefaultState()
	// decode leaves dst zeroed unless key holds a readable value
	decode := func(key string, dst any, zero func()) {
		v, ok := raw[key]
		if !ok || string(bytes.TrimSpace(v)) == "null" {
			return
		}
		if err := json.Unmarshal(v, dst); err != nil {
			slog.Debug("import field unreadable, using default", "field", key, "err", err)
			zero()
		}
	}

	var enc []models.Character
	decode("encounter", &enc, func() { enc = nil })
	var players []models.Player
	decode("players", &players, func() { players = nil })
	var saves []models.DeathSave
	decode("deathSaves", &saves, func() { saves = nil })
	var links []models.Link
	decode("links", &links, func() { links = nil })
	var bastions []models.Bastion
	decode("bastions", &bastions, func() { bastions = nil })
	var day, round int
	decode("currentDay", &day, func() { day = 0 })
	decode("currentRound", &round, func() { round = 0 })
	turn := models.NoTurn
	decode("currentTurnIndex", &turn, func() { turn = models.NoTurn })
	var sortBy models.SortMode
	decode("sortBy", &sortBy, func() { sortBy = "" })
	var dark bool
	decode("darkMode", &dark, func() { dark = false })

	st.Encounter, st.Players, st.DeathSaves, st.Links, st.Bastions = enc, players, saves, links, bastions
	if day > 0 {
		st.CurrentDay = day
	}
	if round > 0 {
		st.CurrentRound = round
	}
	if turn >= 0 && turn < len(enc) {
		st.CurrentTurnIndex = turn
	}
	st.SortBy = sortBy
	st.DarkMode = dark
	st.Normalize()
	return st, nil
}
