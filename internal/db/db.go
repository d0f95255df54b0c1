// Package db is the local persistence mirror: a small SQLite key-value store
// holding each top-level slice of the campaign state under a stable key.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const dbFile = "dmscreen.db"

// DB wraps the database connection
type DB struct {
	conn    *sql.DB
	dataDir string
}

// Open opens (creating if needed) the database in dataDir and runs any
// pending migrations.
func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	conn, err := sql.Open("sqlite", filepath.Join(dataDir, dbFile))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL lets the tracker read while a sync writes
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	// matches the write lock timeout
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	conn.Exec("PRAGMA synchronous=NORMAL")

	db := &DB{conn: conn, dataDir: dataDir}
	if _, err := db.RunMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

// Close closes the database
func (db *DB) Close() error {
	return db.conn.Close()
}

// DataDir returns the directory holding the database
func (db *DB) DataDir() string {
	return db.dataDir
}

// withWriteLock runs fn while holding the cross-process write lock
func (db *DB) withWriteLock(fn func() error) error {
	l := newFileLock(db.dataDir)
	if err := l.acquire(lockTimeout); err != nil {
		return err
	}
	defer l.release()
	return fn()
}
