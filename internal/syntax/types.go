// Package syntax extracts the syntax nodes that overlap changed line ranges.
// Parsing is a capability resolved per file extension; an extension with no
// registered capability is a normal condition, not an error.
package syntax

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
)

// MaxNodes caps the nodes recorded per trace entry.
const MaxNodes = 12

// Language represents a supported programming language.
type Language string

const (
	LangGo         Language = "go"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
)

// LanguageFromExtension returns the Language for a file extension.
func LanguageFromExtension(ext string) (Language, bool) {
	switch strings.ToLower(ext) {
	case ".go":
		return LangGo, true
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript, true
	case ".ts", ".mts", ".cts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	case ".py", ".pyi":
		return LangPython, true
	case ".rs":
		return LangRust, true
	case ".java":
		return LangJava, true
	default:
		return "", false
	}
}

// Ext returns the lowercase extension used as the registry key for path.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Node is a syntactic construct recorded in a trace entry. Start and End are
// 1-based inclusive line numbers.
type Node struct {
	Type  string  `json:"type"`
	Name  *string `json:"name"`
	Start int     `json:"start"`
	End   int     `json:"end"`
}

// NameOr returns the node name or fallback when the node has none.
func (n Node) NameOr(fallback string) string {
	if n.Name == nil {
		return fallback
	}
	return *n.Name
}

// Result is the annotation attached to a trace entry.
type Result struct {
	Nodes          []Node  `json:"nodes"`
	Language       string  `json:"language"`
	GrammarVersion *string `json:"grammar_version"`
	OK             bool    `json:"ok"`
	Confidence     float64 `json:"confidence"`
}

// UnmarshalJSON accepts both the object form and the bare node array written
// by older trace logs. A bare array decodes as an available parse.
func (r *Result) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var nodes []Node
		if err := json.Unmarshal(trimmed, &nodes); err != nil {
			return err
		}
		*r = Result{Nodes: nodes, OK: true, Confidence: 1}
		return nil
	}

	type plain Result
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*r = Result(p)
	if r.Nodes == nil {
		r.Nodes = []Node{}
	}
	return nil
}

// Tree is a parsed syntax tree.
type Tree interface {
	Root() SyntaxNode
	Close()
}

// SyntaxNode is the view of a parse tree node the annotator needs.
type SyntaxNode interface {
	Type() string
	// StartLine and EndLine are 1-based.
	StartLine() int
	EndLine() int
	NamedChildren() []SyntaxNode
	Text() string
	HasError() bool
}

// Parser turns source text into a syntax tree.
type Parser interface {
	Parse(ctx context.Context, source []byte) (Tree, error)
}
