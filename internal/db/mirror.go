package db

import (
	"log/slog"

	"github.com/marcus/dmscreen/internal/models"
)

// Mirror persists store mutations as they happen. Write failures are
// logged and otherwise ignored; the in-memory store stays authoritative.
type Mirror struct {
	db *DB
}

// NewMirror returns a mirror writing to db
func NewMirror(db *DB) *Mirror {
	return &Mirror{db: db}
}

// StateChanged writes the changed fields of state
func (m *Mirror) StateChanged(state models.GameState, fields []models.Field) {
	if err := m.db.SaveFields(state, fields...); err != nil {
		slog.Warn("persist state", "fields", fields, "err", err)
	}
}
