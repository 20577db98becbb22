package symbols

import (
	"strings"
	"testing"
)

const goSource = `package demo

import "fmt"

func Add(a, b int) int {
	return a + b
}

type Greeter struct {
	name string
}

func (g *Greeter) Greet() string {
	return "hello " + g.name
}

func main() {
	fmt.Println(Add(1, 2))
}
`

const pySource = `import os


def top(x):
    return x * 2


class Worker:
    def __init__(self, name):
        self.name = name

    def run(self):
        return os.getpid()
`

func TestExtractContext_GoFunction(t *testing.T) {
	sc := ExtractContext("demo.go", goSource, 6, 6, 5)
	if sc.Language != LangGo {
		t.Fatalf("Language = %q, want go", sc.Language)
	}
	if sc.SymbolType != SymbolFunction {
		t.Errorf("SymbolType = %q, want function", sc.SymbolType)
	}
	if sc.SymbolName != "Add" {
		t.Errorf("SymbolName = %q, want Add", sc.SymbolName)
	}
	if sc.SnippetStartLine != 1 || sc.SnippetEndLine != 11 {
		t.Errorf("window = [%d,%d], want [1,11]", sc.SnippetStartLine, sc.SnippetEndLine)
	}
}

func TestExtractContext_GoMethod(t *testing.T) {
	sc := ExtractContext("demo.go", goSource, 14, 14, 3)
	if sc.SymbolType != SymbolMethod {
		t.Errorf("SymbolType = %q, want method", sc.SymbolType)
	}
	if sc.SymbolName != "Greet" {
		t.Errorf("SymbolName = %q, want Greet", sc.SymbolName)
	}
}

func TestExtractContext_PythonMethod(t *testing.T) {
	sc := ExtractContext("worker.py", pySource, 13, 13, 2)
	if sc.SymbolType != SymbolMethod {
		t.Errorf("SymbolType = %q, want method (enclosing class ancestor)", sc.SymbolType)
	}
	if sc.SymbolName != "run" {
		t.Errorf("SymbolName = %q, want run", sc.SymbolName)
	}
}

func TestExtractContext_PythonFreeFunction(t *testing.T) {
	sc := ExtractContext("worker.py", pySource, 5, 5, 2)
	if sc.SymbolType != SymbolFunction {
		t.Errorf("SymbolType = %q, want function", sc.SymbolType)
	}
	if sc.SymbolName != "top" {
		t.Errorf("SymbolName = %q, want top", sc.SymbolName)
	}
}

func TestExtractContext_UnsupportedExtension(t *testing.T) {
	src := strings.Repeat("line\n", 100)
	sc := ExtractContext("notes.txt", src, 50, 50, 30)
	if sc.Language != LangUnknown {
		t.Errorf("Language = %q, want unknown", sc.Language)
	}
	if sc.SymbolType != SymbolUnknown {
		t.Errorf("SymbolType = %q, want unknown", sc.SymbolType)
	}
	if sc.SymbolName != "" {
		t.Errorf("SymbolName = %q, want empty", sc.SymbolName)
	}
	if sc.SnippetStartLine != 20 || sc.SnippetEndLine != 80 {
		t.Errorf("window = [%d,%d], want [20,80]", sc.SnippetStartLine, sc.SnippetEndLine)
	}
}

func TestExtractContext_WindowClampedAtBounds(t *testing.T) {
	src := "one\ntwo\nthree\n"
	sc := ExtractContext("small.txt", src, 1, 1, 30)
	if sc.SnippetStartLine != 1 || sc.SnippetEndLine != 3 {
		t.Errorf("window = [%d,%d], want [1,3]", sc.SnippetStartLine, sc.SnippetEndLine)
	}
	if sc.Snippet != "one\ntwo\nthree" {
		t.Errorf("Snippet = %q", sc.Snippet)
	}
}

func TestChunkFile_Go(t *testing.T) {
	chunks := ChunkFile("demo.go", goSource)
	var names []string
	for _, c := range chunks {
		names = append(names, string(c.SymbolType)+":"+c.SymbolName)
	}
	want := map[string]bool{
		"function:Add":  false,
		"method:Greet":  false,
		"class:Greeter": false,
		"function:main": false,
	}
	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}
	for n, seen := range want {
		if !seen {
			t.Errorf("missing chunk %s (got %v)", n, names)
		}
	}
}

func TestChunkFile_NoSymbolsFallsBackToWholeFile(t *testing.T) {
	src := "just\nsome\ntext\n"
	chunks := ChunkFile("notes.txt", src)
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	c := chunks[0]
	if c.SymbolType != SymbolUnknown || c.StartLine != 1 || c.EndLine != 3 {
		t.Errorf("chunk = %+v, want whole-file unknown chunk [1,3]", c)
	}
	if c.Snippet != src {
		t.Errorf("Snippet = %q, want full source", c.Snippet)
	}
}
