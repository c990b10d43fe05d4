package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenttrace/internal/conversation"
	"agenttrace/internal/diff"
	"agenttrace/internal/syntax"
	"agenttrace/internal/tracelog"
)

func strp(s string) *string { return &s }

func testEntry(id, session, ts, file string, added, deleted int, nodeTypes ...string) tracelog.Entry {
	nodes := make([]syntax.Node, 0, len(nodeTypes))
	for i, typ := range nodeTypes {
		nodes = append(nodes, syntax.Node{Type: typ, Name: strp("n"), Start: i + 1, End: i + 1})
	}
	return tracelog.Entry{
		TraceEntry:   true,
		ID:           id,
		Session:      session,
		Timestamp:    ts,
		File:         file,
		Conversation: conversation.Ref{ID: strp("c1"), Role: strp("assistant")},
		Change:       diff.Change{Added: added, Deleted: deleted},
		AST:          syntax.Result{Nodes: nodes},
		Summary:      "summary",
		Raw:          []byte(`{"trace_entry":true,"file":"` + file + `","timestamp":"` + ts + `"}`),
	}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), ".agenttrace", "trace.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSync_Idempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	entries := []tracelog.Entry{
		testEntry("01A", "s1", "2026-02-07T10:00:00Z", "a.py", 3, 1, "function_definition"),
		testEntry("01B", "s1", "2026-02-07T10:00:05Z", "b.py", 1, 0),
	}

	added, err := db.Sync(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	entries = append(entries, testEntry("01C", "s2", "2026-02-07T11:00:00Z", "a.py", 2, 2, "class_definition", "function_definition"))
	added, err = db.Sync(ctx, entries)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSync_LegacyEntriesKeyedByContent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	legacy := testEntry("", "", "2025-01-01T00:00:00Z", "old.ts", 1, 0)
	added, err := db.Sync(ctx, []tracelog.Entry{legacy, legacy})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Contains(t, EntryKey(&legacy), "sha256:")
}

func TestChurn(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Sync(ctx, []tracelog.Entry{
		testEntry("01A", "s1", "2026-02-07T10:00:00Z", "a.py", 3, 1),
		testEntry("01B", "s1", "2026-02-07T10:00:05Z", "b.py", 10, 0),
		testEntry("01C", "s2", "2026-02-07T11:00:00Z", "a.py", 2, 2),
	})
	require.NoError(t, err)

	churn, err := db.Churn(ctx, 0)
	require.NoError(t, err)
	require.Len(t, churn, 2)
	assert.Equal(t, FileChurn{File: "b.py", Changes: 1, Added: 10, Deleted: 0, LastChange: "2026-02-07T10:00:05Z"}, churn[0])
	assert.Equal(t, FileChurn{File: "a.py", Changes: 2, Added: 5, Deleted: 3, LastChange: "2026-02-07T11:00:00Z"}, churn[1])

	top, err := db.Churn(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestSessionsAndNodeTypes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := db.Sync(ctx, []tracelog.Entry{
		testEntry("01A", "s1", "2026-02-07T10:00:00Z", "a.py", 1, 0, "function_definition"),
		testEntry("01B", "s2", "2026-02-07T11:00:00Z", "a.py", 1, 0, "function_definition", "class_definition"),
		testEntry("01C", "s2", "2026-02-07T11:00:01Z", "b.py", 1, 0, "class_definition"),
	})
	require.NoError(t, err)

	sessions, err := db.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, SessionSummary{Session: "s1", Entries: 1, First: "2026-02-07T10:00:00Z", Last: "2026-02-07T10:00:00Z"}, sessions[0])
	assert.Equal(t, 2, sessions[1].Entries)

	all, err := db.NodeTypes(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"function_definition": 2, "class_definition": 2}, all)

	forA, err := db.NodeTypes(ctx, "a.py")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"function_definition": 2, "class_definition": 1}, forA)
}
