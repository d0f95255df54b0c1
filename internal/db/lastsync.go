package db

import (
	"fmt"
	"time"
)

const lastSyncPrefix = "lastSync_"

func lastSyncKey(userID string) string {
	return lastSyncPrefix + userID
}

// GetLastSync returns the last-sync time recorded locally for userID
func (db *DB) GetLastSync(userID string) (time.Time, bool, error) {
	raw, ok, err := db.Get(lastSyncKey(userID))
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse last sync for %s: %w", userID, err)
	}
	return t, true, nil
}

// SetLastSync records t as the last-sync time for userID
func (db *DB) SetLastSync(userID string, t time.Time) error {
	return db.Set(lastSyncKey(userID), t.UTC().Format(time.RFC3339Nano))
}

// ClearLastSync forgets the last-sync time for userID
func (db *DB) ClearLastSync(userID string) error {
	return db.Delete(lastSyncKey(userID))
}
