package index

import (
	"context"
	"database/sql"
	"fmt"

	"agenttrace/internal/diff"
	"agenttrace/internal/tracelog"
)

// FileChurn aggregates the indexed changes of one file.
type FileChurn struct {
	File       string `json:"file"`
	Changes    int    `json:"changes"`
	Added      int    `json:"added"`
	Deleted    int    `json:"deleted"`
	LastChange string `json:"lastChange"`
}

// SessionSummary describes one watcher run.
type SessionSummary struct {
	Session string `json:"session"`
	Entries int    `json:"entries"`
	First   string `json:"first"`
	Last    string `json:"last"`
}

// EntryKey identifies an entry across syncs: its id when present, otherwise
// the hash of the JSON block it was parsed from.
func EntryKey(e *tracelog.Entry) string {
	if e.ID != "" {
		return e.ID
	}
	return "sha256:" + diff.ContentHash(string(e.Raw))
}

// Sync inserts entries not yet indexed and returns how many were added.
func (db *DB) Sync(ctx context.Context, entries []tracelog.Entry) (int, error) {
	added := 0
	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		insertEntry, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO entries
				(entry_key, session, timestamp, file, conversation_id, message_id, role, added, deleted, ast_count, summary)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = insertEntry.Close() }()

		insertNode, err := tx.PrepareContext(ctx, `
			INSERT INTO nodes (entry_seq, type, name, start_line, end_line) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() { _ = insertNode.Close() }()

		for i := range entries {
			e := &entries[i]
			res, err := insertEntry.ExecContext(ctx,
				EntryKey(e), nullString(e.Session), e.Timestamp, e.File,
				e.Conversation.ID, e.Conversation.MessageID, e.Conversation.Role,
				e.Change.Added, e.Change.Deleted, len(e.AST.Nodes), e.Summary,
			)
			if err != nil {
				return fmt.Errorf("failed to index entry for %s: %w", e.File, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				continue
			}
			seq, err := res.LastInsertId()
			if err != nil {
				return err
			}
			for _, node := range e.AST.Nodes {
				if _, err := insertNode.ExecContext(ctx, seq, node.Type, node.Name, node.Start, node.End); err != nil {
					return fmt.Errorf("failed to index node for %s: %w", e.File, err)
				}
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	db.logger.Debug("Synced trace index", "added", added, "total", len(entries))
	return added, nil
}

// Count returns the number of indexed entries.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n)
	return n, err
}

// Churn returns per-file totals, most changed lines first.
func (db *DB) Churn(ctx context.Context, limit int) ([]FileChurn, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT file, COUNT(*), SUM(added), SUM(deleted), MAX(timestamp)
		FROM entries
		GROUP BY file
		ORDER BY SUM(added) + SUM(deleted) DESC, file ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []FileChurn
	for rows.Next() {
		var c FileChurn
		if err := rows.Scan(&c.File, &c.Changes, &c.Added, &c.Deleted, &c.LastChange); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Sessions summarizes indexed entries per watcher run, oldest first.
// Entries without a session are grouped under "".
func (db *DB) Sessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT COALESCE(session, ''), COUNT(*), MIN(timestamp), MAX(timestamp)
		FROM entries
		GROUP BY COALESCE(session, '')
		ORDER BY MIN(timestamp) ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []SessionSummary
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.Session, &s.Entries, &s.First, &s.Last); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// NodeTypes counts indexed syntax nodes by type for file, or for every file
// when file is empty.
func (db *DB) NodeTypes(ctx context.Context, file string) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT n.type, COUNT(*)
		FROM nodes n JOIN entries e ON e.seq = n.entry_seq
		WHERE ? = '' OR e.file = ?
		GROUP BY n.type`, file, file)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[typ] = n
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
