// Package index builds and persists the repository embedding index.
//
// The index is a flat list of symbol-level chunks, one embedding vector per
// chunk, written as a single JSON snapshot under the project-local .glint
// directory. It is treated as a coarse cache: a persisted index is loaded
// as-is without per-entry staleness checks, and invalidation is a full
// rebuild. Quota errors from the embedding provider abort construction and
// return a nil index so the run proceeds without retrieval.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/glintbot/glint/internal/llm"
	"github.com/glintbot/glint/internal/logging"
	"github.com/glintbot/glint/internal/redact"
	"github.com/glintbot/glint/internal/symbols"
)

// Entry is one embedded chunk.
type Entry struct {
	ID         string             `json:"id"`
	Path       string             `json:"path"`
	StartLine  int                `json:"startLine"`
	EndLine    int                `json:"endLine"`
	SymbolType symbols.SymbolType `json:"symbolType"`
	SymbolName string             `json:"symbolName,omitempty"`
	Snippet    string             `json:"snippet"`
	FileHash   string             `json:"fileHash"`
	Embedding  []float32          `json:"embedding"`
}

// RepoIndex is an immutable snapshot of the indexed repository.
type RepoIndex struct {
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"createdAt"`
	Entries   []Entry   `json:"entries"`
}

// Options controls index construction.
type Options struct {
	// Disabled skips construction entirely; no embedding calls are made.
	Disabled bool
	// PathFilter restricts which files are indexed; nil admits everything.
	PathFilter func(string) bool
	// ShowProgress renders a progress bar on stderr during embedding.
	ShowProgress bool
}

// Directories never walked during index construction.
var denylist = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".glint":       true,
	".cache":       true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"__pycache__":  true,
	".venv":        true,
	"venv":         true,
}

// BuildOrLoad returns the persisted index at path when present and parseable,
// otherwise builds a fresh one from the working tree at root and persists it.
// A nil index (with nil error) means retrieval is unavailable for this run.
func BuildOrLoad(ctx context.Context, root, path string, embedder llm.Embedder, opts Options) (*RepoIndex, error) {
	if opts.Disabled || embedder == nil {
		return nil, nil
	}
	if idx, err := Load(path); err == nil && idx != nil {
		return idx, nil
	}
	idx, err := Build(ctx, root, embedder, opts)
	if err != nil || idx == nil {
		return idx, err
	}
	if err := Persist(path, idx); err != nil {
		return nil, err
	}
	return idx, nil
}

// Load reads a persisted index. Returns (nil, error) when the file is
// missing or malformed.
func Load(path string) (*RepoIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx RepoIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing index: %w", err)
	}
	return &idx, nil
}

// Persist writes the index snapshot to path.
func Persist(path string, idx *RepoIndex) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("marshaling index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing index: %w", err)
	}
	return nil
}

// Build walks the working tree at root, chunks every admitted source file,
// and embeds each chunk. Quota errors abort and return (nil, nil); other
// per-chunk embedding errors skip only that chunk.
func Build(ctx context.Context, root string, embedder llm.Embedder, opts Options) (*RepoIndex, error) {
	files, err := collectFiles(root, opts.PathFilter)
	if err != nil {
		return nil, err
	}

	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("indexing"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
	}

	idx := &RepoIndex{
		Model:     embedder.Model(),
		CreatedAt: time.Now().UTC(),
	}

	for _, rel := range files {
		if bar != nil {
			bar.Add(1)
		}
		data, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			continue
		}
		src := string(data)
		fileHash := fmt.Sprintf("%x", sha256.Sum256(data))

		for _, chunk := range symbols.ChunkFile(rel, src) {
			// Secrets never reach the embedding provider or the on-disk index.
			chunk.Snippet = redact.Secrets(chunk.Snippet)
			text := embeddingText(rel, chunk)
			vector, err := embedder.Embed(ctx, text)
			if err != nil {
				if llm.IsQuota(err) {
					logging.L().Warnw("embedding quota exhausted, disabling retrieval for this run", "path", rel)
					return nil, nil
				}
				logging.L().Debugw("skipping chunk", "path", rel, "startLine", chunk.StartLine, "error", err)
				continue
			}
			idx.Entries = append(idx.Entries, Entry{
				ID:         entryID(fileHash, chunk),
				Path:       rel,
				StartLine:  chunk.StartLine,
				EndLine:    chunk.EndLine,
				SymbolType: chunk.SymbolType,
				SymbolName: chunk.SymbolName,
				Snippet:    chunk.Snippet,
				FileHash:   fileHash,
				Embedding:  vector,
			})
		}
	}
	return idx, nil
}

func collectFiles(root string, filter func(string) bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			if path != root && denylist[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !symbols.IsSourcePath(rel) || redact.SensitivePath(rel) {
			return nil
		}
		if filter != nil && !filter(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return files, nil
}

// embeddingText is what gets embedded per chunk: path and symbol identity
// anchor the vector so structurally similar code in different files stays
// distinguishable.
func embeddingText(path string, c symbols.Chunk) string {
	return fmt.Sprintf("%s\n%s %s\n%s", path, c.SymbolType, c.SymbolName, c.Snippet)
}

func entryID(fileHash string, c symbols.Chunk) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%d:%s", fileHash, c.StartLine, c.EndLine, c.Snippet)))
	return fmt.Sprintf("%x", h[:16])
}
