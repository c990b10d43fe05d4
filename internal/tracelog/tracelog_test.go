package tracelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenttrace/internal/conversation"
	"agenttrace/internal/diff"
	"agenttrace/internal/syntax"
)

func strp(s string) *string { return &s }

func sampleEntry(file string) *Entry {
	change := diff.Compute("a", "a\nb")
	nodes := []syntax.Node{{Type: "function_definition", Name: strp("foo"), Start: 1, End: 2}}
	return &Entry{
		TraceEntry:    true,
		SchemaVersion: SchemaVersion,
		ID:            "01J0000000000000000000000",
		Session:       "3f1c1f9e-8f6a-4b0e-9b7e-2f4a4a7d1c11",
		Timestamp:     "2026-02-07T10:10:31Z",
		Conversation: conversation.Ref{
			ID:        strp("c1"),
			MessageID: strp("m1"),
			Role:      strp("assistant"),
			Excerpt:   strp("adding foo"),
		},
		ConversationWindow: []conversation.Ref{{ID: strp("c1"), MessageID: strp("m1"), Role: strp("assistant")}},
		File:               file,
		Change:             change,
		AST:                syntax.Result{Nodes: nodes, Language: ".py", OK: true, Confidence: 1},
		Summary:            BuildSummary(change, nodes),
	}
}

func TestBuildSummary(t *testing.T) {
	change := diff.Change{Added: 3, Deleted: 1}
	assert.Equal(t, "+3 -1; no AST matches", BuildSummary(change, nil))

	nodes := []syntax.Node{
		{Type: "function_definition", Name: strp("foo"), Start: 1, End: 2},
		{Type: "class_definition", Name: strp("Bar"), Start: 4, End: 5},
	}
	assert.Equal(t, "+3 -1; function_definition foo (1-2), class_definition Bar (4-5)", BuildSummary(change, nodes))
}

func TestFormat(t *testing.T) {
	data, err := Format(sampleEntry("src/app.py"))
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "\n### 2026-02-07T10:10:31Z\n"))
	assert.Contains(t, text, "Conversation: id=c1 message_id=m1 role=assistant\n")
	assert.Contains(t, text, "Excerpt: adding foo\n")
	assert.Contains(t, text, "File: `src/app.py`\n")
	assert.Contains(t, text, "Summary: +1 -0; function_definition foo (1-2)\n")
	assert.Contains(t, text, "```json\n{\n  \"trace_entry\": true,")
	assert.True(t, strings.HasSuffix(text, "\n```"))
}

func TestFormat_NullConversation(t *testing.T) {
	e := sampleEntry("a.py")
	e.Conversation = conversation.Ref{}

	data, err := Format(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Conversation: id=null message_id=null role=null\n")
	assert.NotContains(t, string(data), "Excerpt:")
}

func TestAppendAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs", "agent-trace.md")
	w, err := NewWriter(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("# Agent Trace\n"), 0644))
	require.NoError(t, w.Append(sampleEntry("a.py")))
	require.NoError(t, w.Append(sampleEntry("b.py")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Agent Trace\n"), "prior content must be preserved")

	entries, err := Load(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.py", entries[0].File)
	assert.Equal(t, "b.py", entries[1].File)
	assert.Equal(t, 1, entries[0].Change.Added)
	assert.Equal(t, "c1::m1::assistant", entries[0].ConversationKey())
	assert.NotEmpty(t, entries[0].Raw)
	require.Len(t, entries[0].AST.Nodes, 1)
	assert.Equal(t, "foo", entries[0].AST.Nodes[0].NameOr(""))
}

func TestParse_SkipsForeignBlocks(t *testing.T) {
	source := "# Log\n\n" +
		"```json\n{\"trace_entry\": false, \"file\": \"x\"}\n```\n\n" +
		"```json\n{ not json\n```\n\n" +
		"```go\npackage main\n```\n\n" +
		"```json\n[1, 2]\n```\n\n" +
		"```json\n{\"trace_entry\": true, \"timestamp\": \"t\", \"file\": \"kept.py\", \"change\": {\"added\": 1, \"deleted\": 0, \"hunks\": []}}\n```\n"

	entries, err := Parse([]byte(source))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kept.py", entries[0].File)
	assert.Equal(t, "unknown::unknown::unknown", entries[0].ConversationKey())
}

func TestLoad_Missing(t *testing.T) {
	entries, err := Load(filepath.Join(t.TempDir(), "missing.md"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
