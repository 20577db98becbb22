package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/glintbot/glint/internal/cache"
	"github.com/glintbot/glint/internal/config"
	"github.com/glintbot/glint/internal/diff"
	"github.com/glintbot/glint/internal/index"
	"github.com/glintbot/glint/internal/llm"
	"github.com/glintbot/glint/internal/logging"
	"github.com/glintbot/glint/internal/redact"
	"github.com/glintbot/glint/internal/retrieve"
	"github.com/glintbot/glint/internal/symbols"
)

// maxResponseTokens bounds a single model response.
const maxResponseTokens = 2000

// SourceFunc fetches the post-change content of a repository file. Local
// runs read from disk; pull-request runs fetch at the head ref.
type SourceFunc func(ctx context.Context, path string) (string, error)

// Engine runs the review pipeline over a set of changed files. Chat, Embed,
// Cache, and Index may each be nil; the corresponding stage is skipped.
type Engine struct {
	Cfg    config.Config
	Chat   llm.ChatClient
	Embed  llm.Embedder
	Cache  *cache.Cache
	Index  *index.RepoIndex
	Source SourceFunc
}

// RunSummary reports what a review run did and what it cost.
type RunSummary struct {
	FilesReviewed    int           `json:"filesReviewed"`
	FilesSkipped     int           `json:"filesSkipped"`
	HunksReviewed    int           `json:"hunksReviewed"`
	LLMCalls         int           `json:"llmCalls"`
	CacheHits        int           `json:"cacheHits"`
	PromptTokens     int           `json:"promptTokens"`
	CompletionTokens int           `json:"completionTokens"`
	TotalTokens      int           `json:"totalTokens"`
	CostUSD          float64       `json:"costUSD,omitempty"`
	IndexEntries     int           `json:"indexEntries"`
	RetrievalK       int           `json:"retrievalK"`
	RulesEnabled     bool          `json:"rulesEnabled"`
	LLMEnabled       bool          `json:"llmEnabled"`
	RetrievalEnabled bool          `json:"retrievalEnabled"`
	BudgetExhausted  bool          `json:"budgetExhausted,omitempty"`
	QuotaExceeded    bool          `json:"quotaExceeded,omitempty"`
	Elapsed          time.Duration `json:"elapsed"`
	FixesApplied     int           `json:"fixesApplied"`
	FixCommit        string        `json:"fixCommit,omitempty"`
}

// Result is the outcome of one review run.
type Result struct {
	Findings []Finding      `json:"findings"`
	Counts   SeverityCounts `json:"counts"`
	Summary  RunSummary     `json:"summary"`
}

// Run reviews every hunk of every changed file and returns the aggregated
// findings. Model failures degrade the run (rules findings survive); only
// authentication errors abort it.
func (e *Engine) Run(ctx context.Context, files []diff.FileDiff) (*Result, error) {
	start := time.Now()
	deadline := start.Add(time.Duration(e.Cfg.Budget.TimeSeconds) * time.Second)

	st := &runState{deadline: deadline}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Cfg.Budget.MaxConcurrency)

	for _, file := range files {
		if file.Status == "removed" || !e.Cfg.MatchesPath(file.Path) {
			st.mu.Lock()
			st.filesSkipped++
			st.mu.Unlock()
			continue
		}
		src, err := e.Source(ctx, file.Path)
		if err != nil {
			logging.L().Warnw("cannot read changed file, skipping", "path", file.Path, "error", err)
			st.mu.Lock()
			st.filesSkipped++
			st.mu.Unlock()
			continue
		}
		st.mu.Lock()
		st.filesReviewed++
		st.mu.Unlock()

		for _, hunk := range file.Hunks {
			path, h := file.Path, hunk
			g.Go(func() error {
				return e.reviewHunk(ctx, st, path, src, h)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	findings, counts := Aggregate(st.findings, e.Cfg.MaxFindings)

	summary := RunSummary{
		FilesReviewed:    st.filesReviewed,
		FilesSkipped:     st.filesSkipped,
		HunksReviewed:    st.hunksReviewed,
		LLMCalls:         st.llmCalls,
		CacheHits:        st.cacheHits,
		PromptTokens:     st.promptTokens,
		CompletionTokens: st.completionTokens,
		TotalTokens:      st.promptTokens + st.completionTokens,
		CostUSD:          estimateCost(e.Cfg.Pricing, st.promptTokens, st.completionTokens),
		RetrievalK:       e.Cfg.RetrievalK,
		RulesEnabled:     e.Cfg.RulesEnabled,
		LLMEnabled:       e.Cfg.LLMEnabled,
		RetrievalEnabled: e.Cfg.RetrievalEnabled,
		BudgetExhausted:  st.budgetExhausted,
		QuotaExceeded:    st.quotaExceeded,
		Elapsed:          time.Since(start),
	}
	if e.Index != nil {
		summary.IndexEntries = len(e.Index.Entries)
	}

	return &Result{Findings: findings, Counts: counts, Summary: summary}, nil
}

// runState accumulates findings and budget usage across hunk goroutines.
type runState struct {
	mu       sync.Mutex
	deadline time.Time

	findings []Finding

	filesReviewed    int
	filesSkipped     int
	hunksReviewed    int
	llmCalls         int
	cacheHits        int
	promptTokens     int
	completionTokens int
	budgetExhausted  bool
	quotaExceeded    bool
}

func (e *Engine) reviewHunk(ctx context.Context, st *runState, path, src string, h diff.Hunk) error {
	st.mu.Lock()
	st.hunksReviewed++
	st.mu.Unlock()

	var found []Finding

	if e.Cfg.RulesEnabled {
		found = append(found, RunRules(path, src, h.StartLine, h.EndLine, e.Cfg.AllowConsole)...)
	}

	if e.Cfg.LLMEnabled && e.Chat != nil {
		llmFindings, err := e.llmReview(ctx, st, path, src, h)
		if err != nil {
			return err
		}
		found = append(found, llmFindings...)
	}

	if len(found) > 0 {
		st.mu.Lock()
		st.findings = append(st.findings, found...)
		st.mu.Unlock()
	}
	return nil
}

func (e *Engine) llmReview(ctx context.Context, st *runState, path, src string, h diff.Hunk) ([]Finding, error) {
	sctx := symbols.ExtractContext(path, src, h.StartLine, h.EndLine, e.Cfg.ContextPadding)
	sctx.Snippet = redact.Snippet(path, sctx.Snippet)

	var related []retrieve.Related
	if e.Cfg.RetrievalEnabled && e.Index != nil && e.Embed != nil {
		related = retrieve.TopK(ctx, e.Index, e.Embed, sctx.Snippet, path, e.Cfg.RetrievalK)
		for i := range related {
			related[i].Snippet = redact.Snippet(related[i].Path, related[i].Snippet)
		}
	}

	messages := BuildMessages(PromptInput{
		Path:      path,
		StartLine: h.StartLine,
		EndLine:   h.EndLine,
		Context:   sctx,
		Related:   related,
	})

	// Cache hits bypass the budget gates: they cost nothing.
	key := cache.Key(e.Chat.Model(), messages)
	if e.Cache != nil {
		if entry, ok := e.Cache.Get(key); ok {
			st.mu.Lock()
			st.cacheHits++
			st.mu.Unlock()
			return ParseFindings(entry.Text, path, sctx.SnippetStartLine, sctx.SnippetEndLine), nil
		}
	}

	if !st.takeCallSlot(e.Cfg.Budget) {
		logging.L().Infow("budget exhausted, skipping model review", "path", path, "lines", fmt.Sprintf("%d-%d", h.StartLine, h.EndLine))
		return nil, nil
	}

	resp, err := e.Chat.Chat(ctx, llm.ChatRequest{
		Messages:  messages,
		MaxTokens: maxResponseTokens,
	})
	if err != nil {
		if llm.IsAuth(err) {
			return nil, fmt.Errorf("provider %s rejected credentials: %w", e.Chat.Name(), err)
		}
		if llm.IsQuota(err) {
			st.mu.Lock()
			st.quotaExceeded = true
			st.mu.Unlock()
			logging.L().Warnw("provider quota exceeded, continuing without model review", "provider", e.Chat.Name())
			return nil, nil
		}
		logging.L().Warnw("model call failed, skipping hunk", "path", path, "error", err)
		return nil, nil
	}

	st.mu.Lock()
	st.promptTokens += resp.PromptTokens
	st.completionTokens += resp.CompletionTokens
	st.mu.Unlock()

	if e.Cache != nil {
		e.Cache.Put(key, cache.Entry{
			Text:             resp.Text,
			PromptTokens:     resp.PromptTokens,
			CompletionTokens: resp.CompletionTokens,
			TotalTokens:      resp.TotalTokens,
			Timestamp:        time.Now(),
		})
	}

	return ParseFindings(resp.Text, path, sctx.SnippetStartLine, sctx.SnippetEndLine), nil
}

// takeCallSlot reserves one model call if every soft budget still has room.
// Gates are checked before scheduling only; a call already in flight is
// never interrupted.
func (st *runState) takeCallSlot(b config.BudgetConfig) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.llmCalls >= b.MaxLLMCalls ||
		st.promptTokens+st.completionTokens >= b.TokenBudget ||
		time.Now().After(st.deadline) {
		st.budgetExhausted = true
		return false
	}
	st.llmCalls++
	return true
}

func estimateCost(p config.PricingConfig, prompt, completion int) float64 {
	if p.PromptPer1K == 0 && p.CompletionPer1K == 0 {
		return 0
	}
	return float64(prompt)/1000*p.PromptPer1K + float64(completion)/1000*p.CompletionPer1K
}
