package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const kvSchemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLite implements Provider on a single key/value table.
type SQLite struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
func OpenSQLite(dsn string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(kvSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

func (s *SQLite) Read(key string) ([]byte, error) {
	var value []byte
	err := s.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: read %s: %w", key, os.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLite) Write(key string, value []byte) error {
	_, err := s.conn.Exec(`
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storage: write %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Delete(key string) error {
	if _, err := s.conn.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}
