package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
)

type migration struct {
	version int
	name    string
	up      func(tx *sql.Tx) error
}

var migrations = []migration{
	{1, "create kv", func(tx *sql.Tx) error {
		_, err := tx.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
		return err
	}},
	{2, "kv updated_at", func(tx *sql.Tx) error {
		ok, err := columnExists(tx, "kv", "updated_at")
		if err != nil || ok {
			return err
		}
		// SQLite rejects non-constant defaults on ADD COLUMN
		if _, err := tx.Exec(`ALTER TABLE kv ADD COLUMN updated_at DATETIME NOT NULL DEFAULT '1970-01-01 00:00:00'`); err != nil {
			return err
		}
		_, err = tx.Exec(`UPDATE kv SET updated_at = CURRENT_TIMESTAMP`)
		return err
	}},
}

// GetSchemaVersion returns the stored schema version, 0 for a fresh database
func (db *DB) GetSchemaVersion() (int, error) {
	var v string
	err := db.conn.QueryRow(`SELECT value FROM schema_info WHERE key = 'version'`).Scan(&v)
	if err != nil {
		// missing table or row both mean nothing has run yet
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse schema version %q: %w", v, err)
	}
	return n, nil
}

// RunMigrations applies pending migrations and returns how many ran
func (db *DB) RunMigrations() (int, error) {
	if _, err := db.conn.Exec(schemaInfo); err != nil {
		return 0, fmt.Errorf("create schema_info: %w", err)
	}
	current, err := db.GetSchemaVersion()
	if err != nil {
		return 0, err
	}
	if current >= SchemaVersion {
		return 0, nil
	}

	ran := 0
	err = db.withWriteLock(func() error {
		// another process may have migrated while we waited
		current, err := db.GetSchemaVersion()
		if err != nil {
			return err
		}
		if current == 0 {
			if _, err := db.conn.Exec(schema); err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
			ran = len(migrations)
			return db.setSchemaVersion(SchemaVersion)
		}
		for _, m := range migrations {
			if m.version <= current {
				continue
			}
			if err := db.applyMigration(m); err != nil {
				return err
			}
			slog.Debug("db migration applied", "version", m.version, "name", m.name)
			ran++
		}
		return nil
	})
	return ran, err
}

func (db *DB) applyMigration(m migration) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := m.up(tx); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO schema_info (key, value) VALUES ('version', ?)`, strconv.Itoa(m.version)); err != nil {
		return err
	}
	return tx.Commit()
}

func (db *DB) setSchemaVersion(v int) error {
	_, err := db.conn.Exec(`INSERT OR REPLACE INTO schema_info (key, value) VALUES ('version', ?)`, strconv.Itoa(v))
	return err
}

func columnExists(tx *sql.Tx, table, column string) (bool, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
