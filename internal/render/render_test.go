package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"agenttrace/internal/conversation"
	"agenttrace/internal/diff"
	"agenttrace/internal/syntax"
	"agenttrace/internal/tracelog"
)

func strp(s string) *string { return &s }

func entry(convID, msgID, role, file, summary string, added, deleted, nodes int) tracelog.Entry {
	ns := make([]syntax.Node, nodes)
	for i := range ns {
		ns[i] = syntax.Node{Type: "function_declaration", Start: i + 1, End: i + 1}
	}
	return tracelog.Entry{
		TraceEntry:   true,
		Timestamp:    "2026-02-07T10:00:00Z",
		Conversation: conversation.Ref{ID: strp(convID), MessageID: strp(msgID), Role: strp(role), Excerpt: strp("x")},
		File:         file,
		Summary:      summary,
		Change:       diff.Change{Added: added, Deleted: deleted},
		AST:          syntax.Result{Nodes: ns},
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a&amp;b", Sanitize("a&b"))
	assert.Equal(t, "&lt;tag&gt;", Sanitize("<tag>"))
	assert.Equal(t, "unknown", Sanitize(""))
	assert.Equal(t, "unknown", SanitizePtr(nil))
	assert.Equal(t, "ok", SanitizePtr(strp("ok")))
}

func TestRenderSVG_Empty(t *testing.T) {
	svg := string(RenderSVG(nil))
	assert.Equal(t, `<svg xmlns="http://www.w3.org/2000/svg" width="800" height="120"></svg>`, svg)
	assert.NotContains(t, svg, "<rect")
}

func TestRenderSVG_Labels(t *testing.T) {
	svg := string(RenderSVG([]tracelog.Entry{
		entry("c1", "m1", "user", "scripts/trace_watch", "+1 -0", 1, 0, 0),
	}))

	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, ">Conversation<")
	assert.Contains(t, svg, ">Change<")
	assert.Contains(t, svg, ">scripts/trace_watch<")
	assert.Contains(t, svg, ">+1 -0<")
	assert.Contains(t, svg, ">user m1<")
	assert.Contains(t, svg, `width="1000" height="180"`)
	assert.Equal(t, 1, strings.Count(svg, "<line "))
}

func TestRenderSVG_GroupsConversations(t *testing.T) {
	entries := []tracelog.Entry{
		entry("c1", "m1", "assistant", "a.ts", "+1 -0", 1, 0, 1),
		entry("c1", "m1", "assistant", "b.ts", "+2 -1", 2, 1, 0),
		entry("c2", "m2", "assistant", "<c>.ts", "+1 -1", 1, 1, 0),
	}
	entries = append(entries, entries...)
	svg := string(RenderSVG(entries))

	// two conversation boxes plus six change boxes plus the background
	assert.Equal(t, 9, strings.Count(svg, "<rect "))
	assert.Equal(t, 6, strings.Count(svg, "<line "))
	assert.Contains(t, svg, "&lt;c&gt;.ts")
	assert.Contains(t, svg, `height="364"`)
	// the fourth change links back to the first conversation row
	assert.Contains(t, svg, `<line x1="460" y1="70" x2="520" y2="226"`)
}

func TestRenderSVG_NullConversation(t *testing.T) {
	e := entry("c", "m", "r", "a.py", "+0 -0", 0, 0, 0)
	e.Conversation = conversation.Ref{}

	svg := string(RenderSVG([]tracelog.Entry{e}))
	assert.Contains(t, svg, ">unknown unknown<")
}

func TestBuildUIData(t *testing.T) {
	data := BuildUIData([]tracelog.Entry{
		entry("c1", "m1", "assistant", "src/a.ts", "+1 -0", 1, 0, 1),
		entry("c1", "m1", "assistant", "src/b.ts", "+2 -1", 2, 1, 0),
	})

	require.Len(t, data.Conversations, 1)
	assert.Equal(t, "c1::m1::assistant", data.Conversations[0].Key)
	assert.Equal(t, 2, data.Conversations[0].ChangeCount)
	require.Len(t, data.Changes, 2)
	assert.Equal(t, 1, data.Changes[0].AstCount)
	assert.Equal(t, 0, data.Changes[1].AstCount)
	assert.Equal(t, 1, data.Changes[1].Deleted)
	assert.Equal(t, 1, data.Changes[1].Index)
	assert.Len(t, data.Files, 2)
}

func TestBuildUIData_AggregatesFiles(t *testing.T) {
	data := BuildUIData([]tracelog.Entry{
		entry("c1", "m1", "user", "a.py", "", 3, 1, 0),
		entry("c2", "m2", "assistant", "b.py", "", 1, 0, 0),
		entry("c2", "m2", "assistant", "a.py", "", 2, 2, 0),
	})

	require.Len(t, data.Files, 2)
	assert.Equal(t, FileRow{File: "a.py", Changes: 2, Added: 5, Deleted: 3}, data.Files[0])
	assert.Equal(t, FileRow{File: "b.py", Changes: 1, Added: 1, Deleted: 0}, data.Files[1])
	assert.Len(t, data.Conversations, 2)
}

func TestBuildUIData_Empty(t *testing.T) {
	data := BuildUIData(nil)
	assert.NotNil(t, data.Conversations)
	assert.NotNil(t, data.Changes)
	assert.NotNil(t, data.Files)
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(BuildUIData(nil))
	require.NoError(t, err)

	page := string(html)
	assert.Contains(t, page, `<svg id="graph"`)
	assert.Contains(t, page, `<script type="application/json" id="trace-data">`)
	assert.Contains(t, page, "Reset Filters")
	assert.NotContains(t, page, "<script src=")
}

func TestRenderHTML_EmbedsEscapedPayload(t *testing.T) {
	e := entry("c1", "m1", "user", "</script><b>.ts", "+1 -0", 1, 0, 0)
	html, err := RenderHTML(BuildUIData([]tracelog.Entry{e}))
	require.NoError(t, err)

	page := string(html)
	assert.NotContains(t, page, "</script><b>")

	start := strings.Index(page, `id="trace-data">`) + len(`id="trace-data">`)
	end := strings.Index(page[start:], "</script>")
	require.True(t, end > 0)

	var data UIData
	require.NoError(t, json.Unmarshal([]byte(page[start:start+end]), &data))
	require.Len(t, data.Changes, 1)
	assert.Equal(t, "</script><b>.ts", data.Changes[0].File)
}

func TestEncodeUIData(t *testing.T) {
	data := BuildUIData([]tracelog.Entry{entry("c1", "m1", "user", "a.py", "+1 -0", 1, 0, 0)})

	out, err := EncodeUIData(data, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"conversationKey": "c1::m1::user"`)

	out, err = EncodeUIData(data, FormatYAML)
	require.NoError(t, err)
	var decoded UIData
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, data.Changes, decoded.Changes)
	assert.Equal(t, "c1", *decoded.Conversations[0].ID)

	_, err = EncodeUIData(data, "xml")
	assert.Error(t, err)
}
