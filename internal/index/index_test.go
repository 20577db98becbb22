package index

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/glintbot/glint/internal/llm"
)

// fakeEmbedder returns a fixed vector, or a scripted error after n calls.
type fakeEmbedder struct {
	calls    int
	failFrom int // 0 = never fail
	err      error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.failFrom > 0 && f.calls >= f.failFrom {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func (f *fakeEmbedder) Model() string { return "fake-embed" }

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBuild_IndexesSourceFilesOnly(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":              "package main\n\nfunc main() {}\n",
		"util.py":              "def util():\n    return 1\n",
		"README.md":            "# readme\n",
		"vendor/dep/dep.go":    "package dep\n\nfunc Dep() {}\n",
		".git/objects/aa":      "binary",
		"node_modules/x/x.js":  "function x() {}\n",
		"sub/helper.ts":        "function helper() { return 2; }\n",
	})

	emb := &fakeEmbedder{}
	idx, err := Build(context.Background(), root, emb, Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if idx == nil {
		t.Fatal("Build returned nil index")
	}

	paths := make(map[string]bool)
	for _, e := range idx.Entries {
		paths[e.Path] = true
		if len(e.Embedding) == 0 {
			t.Errorf("entry %s has empty embedding", e.ID)
		}
		if e.FileHash == "" || e.ID == "" {
			t.Errorf("entry %s missing hash or id", e.Path)
		}
	}
	for _, want := range []string{"main.go", "util.py", "sub/helper.ts"} {
		if !paths[want] {
			t.Errorf("expected %s in index, got %v", want, paths)
		}
	}
	for _, banned := range []string{"README.md", "vendor/dep/dep.go", "node_modules/x/x.js"} {
		if paths[banned] {
			t.Errorf("%s must not be indexed", banned)
		}
	}
	if idx.Model != "fake-embed" {
		t.Errorf("Model = %q, want fake-embed", idx.Model)
	}
}

func TestBuild_QuotaAbortsFailOpen(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.go": "package a\n\nfunc A() {}\n",
		"b.go": "package b\n\nfunc B() {}\n",
	})

	emb := &fakeEmbedder{failFrom: 2, err: &llm.QuotaError{Provider: "fake"}}
	idx, err := Build(context.Background(), root, emb, Options{})
	if err != nil {
		t.Fatalf("Quota must not surface as error, got: %v", err)
	}
	if idx != nil {
		t.Fatal("Quota must abort construction and return a nil index")
	}
}

func TestBuild_GenericEmbedErrorSkipsChunk(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.go": "package a\n\nfunc A() {}\n\nfunc B() {}\n",
	})

	emb := &fakeEmbedder{failFrom: 2, err: errors.New("boom")}
	idx, err := Build(context.Background(), root, emb, Options{})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if idx == nil {
		t.Fatal("generic embed errors must not abort the build")
	}
	if len(idx.Entries) != 1 {
		t.Errorf("len(Entries) = %d, want 1 (later chunks skipped)", len(idx.Entries))
	}
}

func TestBuildOrLoad_DisabledSkipsEmbedding(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.go": "package a\n"})

	emb := &fakeEmbedder{}
	idx, err := BuildOrLoad(context.Background(), root, filepath.Join(root, ".glint", "index.json"), emb, Options{Disabled: true})
	if err != nil {
		t.Fatalf("BuildOrLoad error: %v", err)
	}
	if idx != nil {
		t.Error("disabled build must return nil index")
	}
	if emb.calls != 0 {
		t.Errorf("disabled build made %d embedding calls, want 0", emb.calls)
	}
}

func TestBuildOrLoad_PersistAndReload(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.go": "package a\n\nfunc A() {}\n"})
	path := filepath.Join(root, ".glint", "index.json")

	emb := &fakeEmbedder{}
	idx, err := BuildOrLoad(context.Background(), root, path, emb, Options{})
	if err != nil {
		t.Fatalf("BuildOrLoad error: %v", err)
	}
	if idx == nil || len(idx.Entries) == 0 {
		t.Fatal("expected a populated index")
	}
	callsAfterBuild := emb.calls

	// Second call loads the snapshot without re-embedding.
	idx2, err := BuildOrLoad(context.Background(), root, path, emb, Options{})
	if err != nil {
		t.Fatalf("BuildOrLoad (reload) error: %v", err)
	}
	if emb.calls != callsAfterBuild {
		t.Errorf("reload made %d extra embedding calls", emb.calls-callsAfterBuild)
	}
	if len(idx2.Entries) != len(idx.Entries) {
		t.Errorf("reloaded entries = %d, want %d", len(idx2.Entries), len(idx.Entries))
	}
	if idx2.Entries[0].ID != idx.Entries[0].ID {
		t.Error("entry IDs must be stable across persist/load")
	}
}

func TestBuild_PathFilter(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"keep.go": "package keep\n\nfunc K() {}\n",
		"drop.go": "package drop\n\nfunc D() {}\n",
	})

	emb := &fakeEmbedder{}
	idx, err := Build(context.Background(), root, emb, Options{
		PathFilter: func(path string) bool { return path == "keep.go" },
	})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	for _, e := range idx.Entries {
		if e.Path != "keep.go" {
			t.Errorf("filtered path %s leaked into index", e.Path)
		}
	}
	if len(idx.Entries) == 0 {
		t.Error("expected keep.go entries")
	}
}
