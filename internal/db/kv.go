package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// Get returns the raw value stored under key
func (db *DB) Get(key string) (string, bool, error) {
	var v string
	err := db.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores a raw value under key
func (db *DB) Set(key, value string) error {
	return db.setMany(map[string]string{key: value})
}

// Delete removes key. Deleting a missing key is not an error.
func (db *DB) Delete(key string) error {
	return db.withWriteLock(func() error {
		_, err := db.conn.Exec(`DELETE FROM kv WHERE key = ?`, key)
		return err
	})
}

// setMany writes all pairs in one transaction
func (db *DB) setMany(pairs map[string]string) error {
	if len(pairs) == 0 {
		return nil
	}
	return db.withWriteLock(func() error {
		tx, err := db.conn.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()
		stmt, err := tx.Prepare(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for k, v := range pairs {
			if _, err := stmt.Exec(k, v); err != nil {
				return fmt.Errorf("set %s: %w", k, err)
			}
		}
		return tx.Commit()
	})
}
