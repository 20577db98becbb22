package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glintbot/glint/internal/llm"
)

func TestCache_PutGetSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := Open(path, 24*time.Hour, true)

	key := Key("gpt-4o", []llm.Message{{Role: "user", Content: "hi"}})

	if _, ok := c.Get(key); ok {
		t.Error("Expected cache miss before put")
	}

	c.Put(key, Entry{Text: "[]", PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15})
	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Expected cache hit after put")
	}
	if got.Text != "[]" || got.TotalTokens != 15 {
		t.Errorf("Entry = %+v, want text [] and 15 tokens", got)
	}

	if err := c.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	// Reload from disk
	c2 := Open(path, 24*time.Hour, true)
	got, ok = c2.Get(key)
	if !ok {
		t.Fatal("Expected cache hit after reload")
	}
	if got.Text != "[]" {
		t.Errorf("Text after reload = %q, want %q", got.Text, "[]")
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := Open(path, time.Second, true)

	key := Key("gpt-4o", []llm.Message{{Role: "user", Content: "expire"}})
	c.Put(key, Entry{Text: "data", Timestamp: time.Now().Add(-2 * time.Second)})

	if _, ok := c.Get(key); ok {
		t.Error("Expected miss for expired entry")
	}
}

func TestCache_Disabled(t *testing.T) {
	c := Open(filepath.Join(t.TempDir(), "cache.json"), time.Hour, false)
	c.Put("key", Entry{Text: "data"})
	if _, ok := c.Get("key"); ok {
		t.Error("Disabled cache must always miss")
	}
	if err := c.Save(); err != nil {
		t.Errorf("Save on disabled cache: %v", err)
	}
}

func TestKey_Determinism(t *testing.T) {
	msgs := []llm.Message{
		{Role: "system", Content: "review code"},
		{Role: "user", Content: "diff"},
	}
	if Key("m", msgs) != Key("m", msgs) {
		t.Error("Key must be deterministic for identical input")
	}
	if Key("m", msgs) == Key("other", msgs) {
		t.Error("Key must depend on model identifier")
	}
	reordered := []llm.Message{msgs[1], msgs[0]}
	if Key("m", msgs) == Key("m", reordered) {
		t.Error("Key must depend on message order")
	}
}

func TestCache_MissingFile(t *testing.T) {
	c := Open(filepath.Join(t.TempDir(), "nope", "cache.json"), time.Hour, true)
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0 for missing file", c.Len())
	}
}
