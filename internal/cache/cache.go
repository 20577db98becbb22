package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/glintbot/glint/internal/llm"
)

// Entry is one memoized model response.
type Entry struct {
	Text             string    `json:"text"`
	PromptTokens     int       `json:"promptTokens"`
	CompletionTokens int       `json:"completionTokens"`
	TotalTokens      int       `json:"totalTokens"`
	Timestamp        time.Time `json:"timestamp"`
}

// Cache memoizes chat responses in a single JSON file.
type Cache struct {
	mu      sync.Mutex
	path    string
	ttl     time.Duration
	enabled bool
	entries map[string]Entry
	dirty   bool
}

// Open loads the cache file at path, creating an empty cache if the file is
// missing or unreadable. A missing cache is never an error.
func Open(path string, ttl time.Duration, enabled bool) *Cache {
	c := &Cache{
		path:    path,
		ttl:     ttl,
		enabled: enabled,
		entries: make(map[string]Entry),
	}
	if !enabled {
		return c
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return c
	}
	c.entries = entries
	return c
}

// Key derives the cache key for a model and an ordered message list.
func Key(model string, messages []llm.Message) string {
	h := sha256.New()
	h.Write([]byte(model))
	for _, m := range messages {
		fmt.Fprintf(h, "\x00%s\x00%s", m.Role, m.Content)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get retrieves an entry by key. Expired entries are misses.
func (c *Cache) Get(key string) (Entry, bool) {
	if !c.enabled {
		return Entry{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return Entry{}, false
	}
	if c.ttl > 0 && time.Since(entry.Timestamp) > c.ttl {
		delete(c.entries, key)
		c.dirty = true
		return Entry{}, false
	}
	return entry, true
}

// Put stores an entry under key. The file is not written until Save.
func (c *Cache) Put(key string, entry Entry) {
	if !c.enabled {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.dirty = true
	c.mu.Unlock()
}

// Save writes the cache to disk if anything changed since load. Expired
// entries are dropped on the way out.
func (c *Cache) Save() error {
	if !c.enabled {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}
	if c.ttl > 0 {
		for key, entry := range c.entries {
			if time.Since(entry.Timestamp) > c.ttl {
				delete(c.entries, key)
			}
		}
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replacing cache: %w", err)
	}
	c.dirty = false
	return nil
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes the cache file and empties the in-memory map.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
	c.dirty = false
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing cache file: %w", err)
	}
	return nil
}

// Stats describes the on-disk cache state.
type Stats struct {
	Path    string `json:"path"`
	Entries int    `json:"entries"`
	Expired int    `json:"expired"`
	Bytes   int64  `json:"bytes"`
}

// GetStats returns information about the cache.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := Stats{Path: c.path, Entries: len(c.entries)}
	for _, entry := range c.entries {
		if c.ttl > 0 && time.Since(entry.Timestamp) > c.ttl {
			stats.Expired++
		}
	}
	if info, err := os.Stat(c.path); err == nil {
		stats.Bytes = info.Size()
	}
	return stats
}
