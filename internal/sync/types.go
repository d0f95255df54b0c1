// Package sync pushes the campaign state to a remote document store and
// detects conflicts when a session starts.
//
// The remote holds one whole document per user and the last write wins.
// There is no queue: a push either reaches the remote or is retried on the
// next tick.
package sync

import (
	"context"
	"time"

	"github.com/marcus/dmscreen/internal/models"
)

// RemoteStore is the remote document service
type RemoteStore interface {
	// Get returns nil, nil when the user has no document.
	Get(ctx context.Context, userID string) (*models.SyncRecord, error)
	// Set overwrites the user's document and returns the stamped time.
	Set(ctx context.Context, userID string, state models.GameState) (time.Time, error)
}

// LastSyncStore records, per user, the last time this device and the remote
// agreed.
type LastSyncStore interface {
	GetLastSync(userID string) (time.Time, bool, error)
	SetLastSync(userID string, t time.Time) error
}

// Status is the externally visible push state
type Status int

const (
	StatusIdle Status = iota
	StatusSyncing
	StatusSynced
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSyncing:
		return "syncing"
	case StatusSynced:
		return "synced"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Accessor returns the state to push
type Accessor func() models.GameState

// StatusFunc receives every status transition
type StatusFunc func(Status)

// ErrorFunc receives a human readable message for each failed push
type ErrorFunc func(msg string)

// LoadResult is the outcome of comparing the remote document with the
// local state at session start.
type LoadResult struct {
	HasRemote    bool
	HasConflict  bool
	LocalIsNewer bool
	Remote       *models.SyncRecord

	RemoteLastSync time.Time
	LocalLastSync  time.Time // zero when no local record exists
}
