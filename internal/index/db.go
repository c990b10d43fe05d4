// Package index mirrors the trace log into a SQLite database for querying.
// The trace log stays the source of truth; the index can be rebuilt from it
// at any time.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB is a trace index connection
type DB struct {
	conn   *sql.DB
	logger *slog.Logger
	dbPath string
}

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	seq             INTEGER PRIMARY KEY AUTOINCREMENT,
	entry_key       TEXT NOT NULL UNIQUE,
	session         TEXT,
	timestamp       TEXT NOT NULL,
	file            TEXT NOT NULL,
	conversation_id TEXT,
	message_id      TEXT,
	role            TEXT,
	added           INTEGER NOT NULL,
	deleted         INTEGER NOT NULL,
	ast_count       INTEGER NOT NULL,
	summary         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_entries_file ON entries(file);
CREATE INDEX IF NOT EXISTS idx_entries_session ON entries(session);

CREATE TABLE IF NOT EXISTS nodes (
	entry_seq  INTEGER NOT NULL REFERENCES entries(seq) ON DELETE CASCADE,
	type       TEXT NOT NULL,
	name       TEXT,
	start_line INTEGER NOT NULL,
	end_line   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nodes_entry ON nodes(entry_seq);
`

// Open opens or creates the index at dbPath
func Open(dbPath string, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Pragmas are per connection.
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug("Opened trace index", "path", dbPath)
	return &DB{conn: conn, logger: logger, dbPath: dbPath}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the database file location.
func (db *DB) Path() string {
	return db.dbPath
}

// WithTx executes fn within a transaction. The transaction is rolled back
// when fn returns an error and committed otherwise.
func (db *DB) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("failed to rollback transaction", "error", err.Error(), "rollback_error", rbErr.Error())
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
