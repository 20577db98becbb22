package symbols

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// SymbolType classifies the enclosing symbol of a changed range.
type SymbolType string

const (
	SymbolFunction SymbolType = "function"
	SymbolMethod   SymbolType = "method"
	SymbolClass    SymbolType = "class"
	SymbolUnknown  SymbolType = "unknown"
)

// DefaultPadding is the symmetric line window around a changed range when no
// padding is configured.
const DefaultPadding = 30

// SymbolContext is the extracted context around a changed line range.
type SymbolContext struct {
	Language         Language
	SymbolName       string
	SymbolType       SymbolType
	Snippet          string
	SnippetStartLine int
	SnippetEndLine   int
}

// ExtractContext locates the symbol enclosing [startLine, endLine] in src and
// returns it together with a padded snippet window. Unsupported languages and
// parse failures degrade to an unknown-symbol window; this never fails.
func ExtractContext(path, src string, startLine, endLine, padding int) SymbolContext {
	if padding <= 0 {
		padding = DefaultPadding
	}

	lang := LanguageFromPath(path)
	snippet, winStart, winEnd := window(src, startLine, endLine, padding)
	sc := SymbolContext{
		Language:         lang,
		SymbolType:       SymbolUnknown,
		Snippet:          snippet,
		SnippetStartLine: winStart,
		SnippetEndLine:   winEnd,
	}
	if lang == LangUnknown {
		return sc
	}

	g := grammar(lang)
	if g == nil {
		return sc
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g)

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil || tree == nil {
		return sc
	}
	defer tree.Close()

	startByte, endByte := ByteRange(src, startLine, endLine)
	node := smallestCoveringNode(tree.RootNode(), uint32(startByte), uint32(endByte))
	if node == nil {
		return sc
	}

	fnTypes := functionNodeTypes(lang)
	clsTypes := classNodeTypes(lang)

	// Walk ancestors outward until one qualifies as a symbol boundary.
	for n := node; n != nil; n = n.Parent() {
		nodeType := n.Type()
		switch {
		case fnTypes[nodeType]:
			sc.SymbolType = SymbolFunction
			if nodeType == "method_declaration" || nodeType == "method_definition" || hasClassAncestor(n, clsTypes) {
				sc.SymbolType = SymbolMethod
			}
			sc.SymbolName = nodeName(n, src)
			return sc
		case clsTypes[nodeType]:
			sc.SymbolType = SymbolClass
			sc.SymbolName = nodeName(n, src)
			return sc
		}
	}
	return sc
}

// smallestCoveringNode descends to the smallest named node whose byte span
// fully contains [startByte, endByte).
func smallestCoveringNode(root *sitter.Node, startByte, endByte uint32) *sitter.Node {
	if root == nil || root.StartByte() > startByte || root.EndByte() < endByte {
		return nil
	}
	node := root
	for {
		var next *sitter.Node
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child != nil && child.StartByte() <= startByte && child.EndByte() >= endByte {
				next = child
				break
			}
		}
		if next == nil {
			return node
		}
		node = next
	}
}

// hasClassAncestor reports whether any strict ancestor is a class-like node.
func hasClassAncestor(node *sitter.Node, clsTypes map[string]bool) bool {
	for n := node.Parent(); n != nil; n = n.Parent() {
		if clsTypes[n.Type()] {
			return true
		}
	}
	return false
}

// nodeName extracts a declared name from a symbol node, or "" when the node
// carries no identifiable name (anonymous functions, grouped declarations).
func nodeName(node *sitter.Node, src string) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return nameNode.Content([]byte(src))
	}
	// Go type_declaration wraps the name inside a type_spec child.
	if node.Type() == "type_declaration" {
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child != nil && child.Type() == "type_spec" {
				if nameNode := child.ChildByFieldName("name"); nameNode != nil {
					return nameNode.Content([]byte(src))
				}
			}
		}
	}
	return ""
}

// window returns padding lines of context on each side of the changed range,
// clamped to file bounds, with the 1-based window line numbers.
func window(src string, startLine, endLine, padding int) (string, int, int) {
	lines := strings.Split(src, "\n")
	// A trailing newline produces a phantom empty last element.
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	last := len(lines)
	if last == 0 {
		return "", 1, 1
	}

	winStart := startLine - padding
	if winStart < 1 {
		winStart = 1
	}
	winEnd := endLine + padding
	if winEnd > last {
		winEnd = last
	}
	if winStart > last {
		winStart = last
	}
	if winEnd < winStart {
		winEnd = winStart
	}
	return strings.Join(lines[winStart-1:winEnd], "\n"), winStart, winEnd
}
