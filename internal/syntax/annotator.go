package syntax

import (
	"context"
	"fmt"
	"log/slog"

	"agenttrace/internal/diff"
)

// identifierTypes are child node types treated as a node's name.
var identifierTypes = map[string]bool{
	"identifier":      true,
	"name":            true,
	"type_identifier": true,
}

// Annotator extracts syntax nodes overlapping changed regions.
type Annotator struct {
	registry *Registry
	logger   *slog.Logger
}

// NewAnnotator creates an annotator over registry. A nil registry behaves as
// an empty one.
func NewAnnotator(registry *Registry, logger *slog.Logger) *Annotator {
	if registry == nil {
		registry = NewEmptyRegistry()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Annotator{registry: registry, logger: logger}
}

// Annotate parses text and returns the deduplicated nodes, in pre-order, whose
// line span intersects any hunk's new-side range. Unsupported extensions and
// parse failures yield an empty result with OK=false.
func (a *Annotator) Annotate(ctx context.Context, path, text string, hunks []diff.Hunk) Result {
	ext := Ext(path)
	result := Result{Nodes: []Node{}, Language: ext}

	capability, ok := a.registry.Lookup(ext)
	if !ok {
		return result
	}
	if capability.GrammarVersion != "" {
		v := capability.GrammarVersion
		result.GrammarVersion = &v
	}

	tree, err := capability.Parser.Parse(ctx, []byte(text))
	if err != nil {
		a.logger.Debug("Parse failed", "path", path, "language", string(capability.Language), "error", err.Error())
		return result
	}
	defer tree.Close()

	root := tree.Root()
	result.OK = true
	result.Confidence = 1
	if root.HasError() {
		result.Confidence = 0.5
	}

	result.Nodes = CollectNodes(root, hunks)
	return result
}

// CollectNodes walks root in pre-order over named children and records every
// node whose span intersects a hunk. The result is deduplicated by
// (type, name, start, end) and capped at MaxNodes.
func CollectNodes(root SyntaxNode, hunks []diff.Hunk) []Node {
	nodes := []Node{}
	if root == nil || len(hunks) == 0 {
		return nodes
	}

	type span struct{ start, end int }
	ranges := make([]span, 0, len(hunks))
	for _, h := range hunks {
		s, e := h.NewRange()
		ranges = append(ranges, span{s, e})
	}
	intersects := func(start, end int) bool {
		for _, r := range ranges {
			if !(end < r.start || start > r.end) {
				return true
			}
		}
		return false
	}

	seen := make(map[string]bool)
	var walk func(n SyntaxNode) bool
	walk = func(n SyntaxNode) bool {
		start, end := n.StartLine(), n.EndLine()
		if intersects(start, end) {
			node := Node{Type: n.Type(), Name: nodeName(n), Start: start, End: end}
			key := dedupKey(node)
			if !seen[key] {
				seen[key] = true
				nodes = append(nodes, node)
				if len(nodes) == MaxNodes {
					return false
				}
			}
		}
		for _, child := range n.NamedChildren() {
			if !walk(child) {
				return false
			}
		}
		return true
	}
	walk(root)

	return nodes
}

func nodeName(n SyntaxNode) *string {
	for _, child := range n.NamedChildren() {
		if identifierTypes[child.Type()] {
			name := child.Text()
			return &name
		}
	}
	return nil
}

func dedupKey(n Node) string {
	return fmt.Sprintf("%s:%s:%d:%d", n.Type, n.NameOr(""), n.Start, n.End)
}
