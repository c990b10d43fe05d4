//go:build cgo

package syntax

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// builtinExtensions lists the extensions backed by bundled grammars.
var builtinExtensions = []string{
	".py", ".pyi",
	".ts", ".mts", ".cts", ".tsx",
	".js", ".jsx", ".mjs", ".cjs",
	".go", ".rs", ".java",
}

func builtinCapabilities() []Capability {
	caps := make([]Capability, 0, len(builtinExtensions))
	for _, ext := range builtinExtensions {
		lang, ok := LanguageFromExtension(ext)
		if !ok {
			continue
		}
		tsLang, err := getLanguage(lang)
		if err != nil {
			continue
		}
		caps = append(caps, Capability{
			Extension: ext,
			Language:  lang,
			Parser:    &treeSitterParser{lang: tsLang},
		})
	}
	return caps
}

// getLanguage returns the tree-sitter Language for a given language identifier.
func getLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangGo:
		return golang.GetLanguage(), nil
	case LangJavaScript:
		return javascript.GetLanguage(), nil
	case LangTypeScript:
		return typescript.GetLanguage(), nil
	case LangTSX:
		return tsx.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	case LangRust:
		return rust.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// treeSitterParser parses with a fresh sitter.Parser per call; sitter
// parsers are not safe for concurrent use.
type treeSitterParser struct {
	lang *sitter.Language
}

func (p *treeSitterParser) Parse(ctx context.Context, source []byte) (Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.lang)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return &sitterTree{tree: tree, source: source}, nil
}

type sitterTree struct {
	tree   *sitter.Tree
	source []byte
}

func (t *sitterTree) Root() SyntaxNode {
	return sitterNode{node: t.tree.RootNode(), source: t.source}
}

func (t *sitterTree) Close() {
	t.tree.Close()
}

type sitterNode struct {
	node   *sitter.Node
	source []byte
}

func (n sitterNode) Type() string   { return n.node.Type() }
func (n sitterNode) StartLine() int { return int(n.node.StartPoint().Row) + 1 }
func (n sitterNode) EndLine() int   { return int(n.node.EndPoint().Row) + 1 }
func (n sitterNode) HasError() bool { return n.node.HasError() }
func (n sitterNode) Text() string   { return n.node.Content(n.source) }

func (n sitterNode) NamedChildren() []SyntaxNode {
	count := int(n.node.NamedChildCount())
	children := make([]SyntaxNode, 0, count)
	for i := 0; i < count; i++ {
		child := n.node.NamedChild(i)
		if child == nil {
			continue
		}
		children = append(children, sitterNode{node: child, source: n.source})
	}
	return children
}
