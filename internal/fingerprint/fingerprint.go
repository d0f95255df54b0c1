// Package fingerprint computes a stable digest of the syncable campaign
// state, used to decide whether a push is needed.
package fingerprint

import (
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/marcus/dmscreen/internal/models"
)

// Fingerprint is a 16 hex digit digest. The zero value means "never pushed".
type Fingerprint string

// IsZero reports whether f is the zero fingerprint
func (f Fingerprint) IsZero() bool { return f == "" }

func (f Fingerprint) String() string { return string(f) }

// syncable fixes the field order of the encoded subset. Round and turn
// pointers are not part of it.
type syncable struct {
	Encounter  []models.Character `json:"encounter"`
	Players    []models.Player    `json:"players"`
	DeathSaves []models.DeathSave `json:"deathSaves"`
	Links      []models.Link      `json:"links"`
	Bastions   []models.Bastion   `json:"bastions"`
	CurrentDay int                `json:"currentDay"`
	SortBy     models.SortMode    `json:"sortBy"`
	DarkMode   bool               `json:"darkMode"`
}

// Of returns the fingerprint of state
func Of(state models.GameState) Fingerprint {
	st := state.Clone()
	st.Normalize()
	data, err := json.Marshal(syncable{
		Encounter:  st.Encounter,
		Players:    st.Players,
		DeathSaves: st.DeathSaves,
		Links:      st.Links,
		Bastions:   st.Bastions,
		CurrentDay: st.CurrentDay,
		SortBy:     st.SortBy,
		DarkMode:   st.DarkMode,
	})
	if err != nil {
		// Only plain values are encoded, so this is unreachable in practice.
		return ""
	}
	return Sum(data)
}

// Sum digests raw bytes into a Fingerprint
func Sum(data []byte) Fingerprint {
	h := strconv.FormatUint(xxhash.Sum64(data), 16)
	for len(h) < 16 {
		h = "0" + h
	}
	return Fingerprint(h)
}
