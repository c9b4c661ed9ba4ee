// Package store persists processed documents in SQLite. It sits outside the
// pipeline proper: the pipeline mutates documents, the caller saves them.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close() //nolint:errcheck,gosec // already failing, close is best effort
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close() //nolint:errcheck,gosec // already failing, close is best effort
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func migrate(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			url          TEXT,
			source       TEXT,
			summary      TEXT NOT NULL,
			key_points   TEXT,
			keywords     TEXT,
			tier         TEXT,
			published_at TIMESTAMP,
			processed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_documents_processed_at ON documents(processed_at);
		CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source);
		CREATE TABLE IF NOT EXISTS cache_entries (
			hash       TEXT PRIMARY KEY,
			summary    TEXT NOT NULL,
			key_points TEXT,
			keywords   TEXT,
			created_at TIMESTAMP NOT NULL,
			ttl_ns     INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("create documents table: %w", err)
	}

	return nil
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	return nil
}
