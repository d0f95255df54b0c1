package serverdb

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Document is the stored state of one user.
type Document struct {
	UserID   string
	Data     []byte
	LastSync time.Time
	DeviceID string
}

// GetDocument returns the user's document, or nil if none has been written.
func (db *ServerDB) GetDocument(userID string) (*Document, error) {
	var (
		d        Document
		data     string
		lastSync string
	)
	err := db.conn.QueryRow(
		`SELECT user_id, data, last_sync, device_id FROM documents WHERE user_id = ?`, userID,
	).Scan(&d.UserID, &data, &lastSync, &d.DeviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	d.Data = []byte(data)
	d.LastSync, err = time.Parse(time.RFC3339Nano, lastSync)
	if err != nil {
		return nil, fmt.Errorf("parse last_sync for %s: %w", userID, err)
	}
	return &d, nil
}

// PutDocument overwrites the user's document and stamps it with now.
// The stamped time is returned.
func (db *ServerDB) PutDocument(userID string, data []byte, deviceID string, now time.Time) (time.Time, error) {
	stamp := now.UTC()
	_, err := db.conn.Exec(`
		INSERT INTO documents (user_id, data, last_sync, device_id) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET data = excluded.data, last_sync = excluded.last_sync, device_id = excluded.device_id
	`, userID, string(data), stamp.Format(time.RFC3339Nano), deviceID)
	if err != nil {
		return time.Time{}, fmt.Errorf("put document: %w", err)
	}
	return stamp, nil
}

// DeleteDocument removes the user's document. Deleting a missing document
// is not an error.
func (db *ServerDB) DeleteDocument(userID string) error {
	if _, err := db.conn.Exec(`DELETE FROM documents WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// CountDocuments returns the number of stored documents.
func (db *ServerDB) CountDocuments() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
