package symbols

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
)

// MaxChunksPerFile bounds embedding cost on pathological files.
const MaxChunksPerFile = 200

// Chunk is a symbol-bounded slice of a source file.
type Chunk struct {
	StartLine  int
	EndLine    int
	SymbolType SymbolType
	SymbolName string
	Snippet    string
}

// ChunkFile splits src into symbol-level chunks. Files in unsupported
// languages, files that fail to parse, and files with no symbols fall back to
// a single chunk spanning the whole file.
func ChunkFile(path, src string) []Chunk {
	chunks := symbolChunks(path, src)
	if len(chunks) == 0 {
		return []Chunk{wholeFileChunk(src)}
	}
	return chunks
}

func symbolChunks(path, src string) []Chunk {
	lang := LanguageFromPath(path)
	g := grammar(lang)
	if g == nil {
		return nil
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g)

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil || tree == nil {
		return nil
	}
	defer tree.Close()

	fnTypes := functionNodeTypes(lang)
	clsTypes := classNodeTypes(lang)

	var chunks []Chunk
	var walk func(*sitter.Node, bool)
	walk = func(node *sitter.Node, insideClass bool) {
		if node == nil || len(chunks) >= MaxChunksPerFile {
			return
		}
		nodeType := node.Type()

		if fnTypes[nodeType] {
			st := SymbolFunction
			if nodeType == "method_declaration" || nodeType == "method_definition" || insideClass {
				st = SymbolMethod
			}
			chunks = append(chunks, chunkFromNode(node, src, st))
			return // nested closures stay inside the enclosing symbol's chunk
		}
		if clsTypes[nodeType] {
			chunks = append(chunks, chunkFromNode(node, src, SymbolClass))
			// Descend so methods become their own finer-grained chunks.
			for i := 0; i < int(node.NamedChildCount()); i++ {
				walk(node.NamedChild(i), true)
			}
			return
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			walk(node.NamedChild(i), insideClass)
		}
	}
	walk(tree.RootNode(), false)
	return chunks
}

func chunkFromNode(node *sitter.Node, src string, st SymbolType) Chunk {
	return Chunk{
		StartLine:  int(node.StartPoint().Row) + 1,
		EndLine:    int(node.EndPoint().Row) + 1,
		SymbolType: st,
		SymbolName: nodeName(node, src),
		Snippet:    node.Content([]byte(src)),
	}
}

func wholeFileChunk(src string) Chunk {
	return Chunk{
		StartLine:  1,
		EndLine:    LineCount(src),
		SymbolType: SymbolUnknown,
		Snippet:    src,
	}
}
