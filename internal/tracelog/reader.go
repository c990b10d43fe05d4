package tracelog

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"agenttrace/internal/errors"
)

// Load reads every entry from the log at path. A missing log has no entries.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, errors.New(errors.ReadFailed, "Cannot read trace log", err)
	}
	return Parse(data)
}

// Parse extracts entries from the fenced json blocks of a trace log. Blocks
// that are not JSON objects with trace_entry set are skipped.
func Parse(source []byte) ([]Entry, error) {
	blocks, err := jsonBlocks(source)
	if err != nil {
		return nil, errors.New(errors.ReadFailed, "Cannot parse trace log", err)
	}

	entries := make([]Entry, 0, len(blocks))
	for _, block := range blocks {
		var e Entry
		if err := json.Unmarshal(block, &e); err != nil {
			continue
		}
		if !e.TraceEntry {
			continue
		}
		e.Raw = block
		entries = append(entries, e)
	}
	return entries, nil
}

// jsonBlocks returns the contents of every fenced code block whose info
// string names json.
func jsonBlocks(source []byte) ([][]byte, error) {
	var blocks [][]byte
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		fenced, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if string(fenced.Language(source)) != "json" {
			return ast.WalkSkipChildren, nil
		}

		var content bytes.Buffer
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			content.Write(line.Value(source))
		}
		if trimmed := bytes.TrimSpace(content.Bytes()); len(trimmed) > 0 && trimmed[0] == '{' {
			blocks = append(blocks, trimmed)
		}
		return ast.WalkSkipChildren, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return nil, err
	}
	return blocks, nil
}
