package syntax

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }

func TestSummarizeNodes(t *testing.T) {
	tests := []struct {
		name  string
		nodes []Node
		want  string
	}{
		{"empty", nil, "no AST matches"},
		{
			"named and unnamed",
			[]Node{
				{Type: "function_definition", Name: strp("foo"), Start: 1, End: 2},
				{Type: "block", Start: 2, End: 2},
			},
			"function_definition foo (1-2), block (2-2)",
		},
		{
			"truncated after three",
			[]Node{
				{Type: "a", Start: 1, End: 1},
				{Type: "b", Start: 2, End: 2},
				{Type: "c", Start: 3, End: 3},
				{Type: "d", Start: 4, End: 4},
			},
			"a (1-1), b (2-2), c (3-3), ...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SummarizeNodes(tt.nodes))
		})
	}
}

func TestResultUnmarshal(t *testing.T) {
	var legacy Result
	assert.NoError(t, json.Unmarshal([]byte(`[{"type":"function_declaration","name":"foo","start":1,"end":2}]`), &legacy))
	assert.Len(t, legacy.Nodes, 1)
	assert.True(t, legacy.OK)

	var current Result
	assert.NoError(t, json.Unmarshal([]byte(`{"nodes":null,"language":".py","grammar_version":null,"ok":false,"confidence":0}`), &current))
	assert.NotNil(t, current.Nodes)
	assert.Equal(t, ".py", current.Language)
	assert.False(t, current.OK)

	var null Result
	assert.NoError(t, json.Unmarshal([]byte(`null`), &null))
}
