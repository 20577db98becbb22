// Package retrieve finds indexed chunks related to a query snippet.
//
// Scoring is cosine similarity over the flat index plus a small locality
// bonus favoring chunks from the same file, then the same directory, as the
// code under review. Retrieval is strictly best-effort: any embedding
// failure yields an empty result, never an error.
package retrieve

import (
	"context"
	"math"
	"path"
	"sort"

	"github.com/glintbot/glint/internal/index"
	"github.com/glintbot/glint/internal/llm"
	"github.com/glintbot/glint/internal/logging"
	"github.com/glintbot/glint/internal/symbols"
)

// Locality bonuses are additive on top of cosine similarity. The exact
// values are tuning constants, not load-bearing semantics.
const (
	sameFileBonus = 0.05
	sameDirBonus  = 0.02
)

// Related is one retrieved chunk, projected to the fields used in prompts.
type Related struct {
	Path       string
	StartLine  int
	EndLine    int
	SymbolType symbols.SymbolType
	SymbolName string
	Snippet    string
	Score      float64
}

// TopK embeds query and returns up to k indexed chunks ranked by similarity.
// pathHint is the repository-relative path of the code under review and
// drives the locality bonus. Returns an empty list when the index is absent
// or empty, k is not positive, or embedding fails.
func TopK(ctx context.Context, idx *index.RepoIndex, embedder llm.Embedder, query, pathHint string, k int) []Related {
	if idx == nil || len(idx.Entries) == 0 || k <= 0 || embedder == nil {
		return nil
	}

	queryVec, err := embedder.Embed(ctx, query)
	if err != nil {
		if llm.IsQuota(err) {
			logging.L().Warnw("query embedding quota exhausted, skipping retrieval", "path", pathHint)
		} else {
			logging.L().Debugw("query embedding failed, skipping retrieval", "path", pathHint, "error", err)
		}
		return nil
	}

	hintDir := path.Dir(pathHint)
	scored := make([]Related, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		score := Cosine(queryVec, e.Embedding)
		switch {
		case e.Path == pathHint:
			score += sameFileBonus
		case path.Dir(e.Path) == hintDir:
			score += sameDirBonus
		}
		scored = append(scored, Related{
			Path:       e.Path,
			StartLine:  e.StartLine,
			EndLine:    e.EndLine,
			SymbolType: e.SymbolType,
			SymbolName: e.SymbolName,
			Snippet:    e.Snippet,
			Score:      score,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

// Cosine returns the cosine similarity of two vectors, or 0 when either is
// zero-length or the dimensions differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
