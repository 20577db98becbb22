package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/glintbot/glint/internal/autofix"
	"github.com/glintbot/glint/internal/cache"
	"github.com/glintbot/glint/internal/config"
	"github.com/glintbot/glint/internal/diff"
	"github.com/glintbot/glint/internal/gitctx"
	"github.com/glintbot/glint/internal/index"
	"github.com/glintbot/glint/internal/llm"
	"github.com/glintbot/glint/internal/logging"
	"github.com/glintbot/glint/internal/output"
	"github.com/glintbot/glint/internal/platform"
	"github.com/glintbot/glint/internal/review"
)

var (
	flagProvider    string
	flagModel       string
	flagFormat      string
	flagOut         string
	flagFailOn      string
	flagMaxFindings int
	flagRetrievalK  int
	flagNoLLM       bool
	flagNoRules     bool
	flagNoRAG       bool
	flagAutofix     bool
	flagRepo        string
	flagNoPost      bool
	flagStaged      bool
	flagRange       string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review changed code",
}

var reviewPRCmd = &cobra.Command{
	Use:   "pr <number>",
	Short: "Review a GitHub pull request and post findings as review comments",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewPR,
}

var reviewLocalCmd = &cobra.Command{
	Use:   "local",
	Short: "Review local uncommitted or ranged changes",
	Args:  cobra.NoArgs,
	RunE:  runReviewLocal,
}

func init() {
	for _, cmd := range []*cobra.Command{reviewPRCmd, reviewLocalCmd} {
		cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (anthropic, openai, ollama)")
		cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
		cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, markdown, json, sarif)")
		cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
		cmd.Flags().StringVar(&flagFailOn, "fail-on", "high", "Exit nonzero when findings at or above this severity exist (none, low, medium, high)")
		cmd.Flags().IntVar(&flagMaxFindings, "max-findings", 0, "Maximum number of surfaced findings")
		cmd.Flags().IntVar(&flagRetrievalK, "retrieval-k", 0, "Related chunks retrieved per hunk")
		cmd.Flags().BoolVar(&flagNoLLM, "no-llm", false, "Deterministic rules only")
		cmd.Flags().BoolVar(&flagNoRules, "no-rules", false, "Skip deterministic rules")
		cmd.Flags().BoolVar(&flagNoRAG, "no-rag", false, "Skip index retrieval")
		cmd.Flags().BoolVar(&flagAutofix, "autofix", false, "Apply eligible low-risk suggestions")
	}
	reviewPRCmd.Flags().StringVar(&flagRepo, "repo", "", "Repository as owner/name (default: detect from git remote)")
	reviewPRCmd.Flags().BoolVar(&flagNoPost, "no-post", false, "Print the report without posting to GitHub")
	reviewLocalCmd.Flags().BoolVar(&flagStaged, "staged", false, "Review staged changes instead of the working tree")
	reviewLocalCmd.Flags().StringVar(&flagRange, "range", "", "Review a revision range (e.g. main..HEAD)")

	reviewCmd.AddCommand(reviewPRCmd)
	reviewCmd.AddCommand(reviewLocalCmd)
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagMaxFindings > 0 {
		m["maxFindings"] = strconv.Itoa(flagMaxFindings)
	}
	if flagRetrievalK > 0 {
		m["retrievalK"] = strconv.Itoa(flagRetrievalK)
	}
	if flagNoLLM {
		m["noLLM"] = "true"
	}
	if flagNoRules {
		m["noRules"] = "true"
	}
	if flagNoRAG {
		m["noRAG"] = "true"
	}
	if flagAutofix {
		m["autofix"] = "true"
	}
	return m
}

func runReviewPR(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	number, err := strconv.Atoi(args[0])
	if err != nil {
		exitCode = ExitUsageError
		return fmt.Errorf("invalid PR number: %s", args[0])
	}

	owner, repo, err := resolveRepo()
	if err != nil {
		exitCode = ExitUsageError
		return err
	}

	client, err := platform.NewClient()
	if err != nil {
		exitCode = ExitAuthError
		return err
	}

	pr, err := client.GetPullRequest(ctx, owner, repo, number)
	if err != nil {
		exitCode = ExitRuntimeError
		return err
	}

	root, _ := os.Getwd()
	cfg, err := config.Load(root, pr.Labels, buildOverrides())
	if err != nil {
		exitCode = ExitRuntimeError
		return err
	}
	cfg.Verbose = flagVerbose
	if cfg.Skip {
		fmt.Fprintln(os.Stdout, "Review skipped by glint:skip label.")
		return nil
	}

	files, err := client.ListChangedFiles(ctx, owner, repo, number)
	if err != nil {
		exitCode = ExitRuntimeError
		return err
	}

	source := func(ctx context.Context, path string) (string, error) {
		return client.GetFileContent(ctx, owner, repo, path, pr.HeadSHA)
	}
	res, c, err := executeReview(ctx, cfg, root, files, source)
	if err != nil {
		return err
	}

	if cfg.AutoFix.Enabled {
		if meta, err := gitctx.Meta(); err == nil {
			applyPRFixes(meta, pr.HeadSHA, cfg, res)
		} else {
			logging.L().Warnw("autofix skipped: not inside a git checkout", "error", err)
		}
	}

	if !flagNoPost {
		if err := client.PostReview(ctx, owner, repo, number, res); err != nil {
			logging.L().Warnw("posting review failed", "error", err)
		} else if err := client.AddLabel(ctx, owner, repo, number, "glint:reviewed"); err != nil {
			logging.L().Warnw("labeling pull request failed", "error", err)
		}
	}
	return finishRun(res, c, cfg)
}

func runReviewLocal(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	meta, err := gitctx.Meta()
	if err != nil {
		exitCode = ExitUsageError
		return err
	}
	root := meta.Root

	cfg, err := config.Load(root, nil, buildOverrides())
	if err != nil {
		exitCode = ExitRuntimeError
		return err
	}
	cfg.Verbose = flagVerbose

	var files []diff.FileDiff
	switch {
	case flagRange != "":
		files, err = gitctx.Range(root, flagRange)
	case flagStaged:
		files, err = gitctx.Staged(root)
	default:
		files, err = gitctx.Unstaged(root)
	}
	if err != nil {
		exitCode = ExitRuntimeError
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stdout, "No changes to review.")
		return nil
	}

	source := func(_ context.Context, path string) (string, error) {
		data, err := os.ReadFile(filepath.Join(root, path))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	res, c, err := executeReview(ctx, cfg, root, files, source)
	if err != nil {
		return err
	}

	if cfg.AutoFix.Enabled {
		applyFixes(root, cfg, res)
	}
	return finishRun(res, c, cfg)
}

// executeReview assembles the provider clients, cache, and index, then runs
// the engine over the changed files.
func executeReview(ctx context.Context, cfg config.Config, root string, files []diff.FileDiff, source review.SourceFunc) (*review.Result, *cache.Cache, error) {
	var chat llm.ChatClient
	var err error
	if cfg.LLMEnabled {
		chat, err = llm.NewChat(cfg.Provider, cfg.Model)
		if err != nil {
			exitCode = ExitAuthError
			return nil, nil, err
		}
	}

	var embed llm.Embedder
	if cfg.RetrievalEnabled && cfg.LLMEnabled {
		embed, err = llm.NewEmbed(cfg.EmbedProvider, cfg.EmbedModel)
		if err != nil {
			// Retrieval is optional; review proceeds without it.
			logging.L().Warnw("embedding provider unavailable, disabling retrieval", "error", err)
			embed = nil
		}
	}

	idx, err := index.BuildOrLoad(ctx, root, config.IndexPath(root), embed, index.Options{
		Disabled:     !cfg.RetrievalEnabled || embed == nil,
		PathFilter:   cfg.MatchesPath,
		ShowProgress: true,
	})
	if err != nil {
		logging.L().Warnw("index unavailable, continuing without retrieval", "error", err)
		idx = nil
	}

	c := cache.Open(config.CachePath(root), time.Duration(cfg.Cache.TTLSeconds)*time.Second, cfg.Cache.Enabled)

	engine := &review.Engine{
		Cfg:    cfg,
		Chat:   chat,
		Embed:  embed,
		Cache:  c,
		Index:  idx,
		Source: source,
	}
	res, err := engine.Run(ctx, files)
	if err != nil {
		if llm.IsAuth(err) {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitRuntimeError
		}
		return nil, nil, err
	}
	return res, c, nil
}

// applyPRFixes applies suggestions for a PR run. Fixes touch the local
// checkout, so they only run when it is actually at the PR head (the CI
// case); anywhere else they are skipped with a warning.
func applyPRFixes(meta gitctx.RepoMeta, headSHA string, cfg config.Config, res *review.Result) bool {
	if meta.Head != headSHA {
		logging.L().Warnw("autofix skipped: local checkout is not at the PR head",
			"head", headSHA, "local", meta.Head)
		return false
	}
	applyFixes(meta.Root, cfg, res)
	return true
}

// applyFixes plans and applies eligible suggestions, optionally committing
// them, and records the outcome in the run summary.
func applyFixes(root string, cfg config.Config, res *review.Result) {
	fixes := autofix.Plan(res.Findings, cfg.AutoFix)
	if len(fixes) == 0 {
		return
	}
	touched, err := autofix.Apply(root, fixes)
	if err != nil {
		logging.L().Warnw("applying fixes failed", "error", err)
	}
	res.Summary.FixesApplied = len(touched)
	if len(touched) > 0 && cfg.AutoFix.Commit {
		sha, err := gitctx.CommitFiles(root, touched, "Apply automated review fixes")
		if err != nil {
			logging.L().Warnw("committing fixes failed", "error", err)
			return
		}
		res.Summary.FixCommit = sha
	}
}

// finishRun saves the cache, writes the report, and sets the exit code from
// the fail-on threshold.
func finishRun(res *review.Result, c *cache.Cache, cfg config.Config) error {
	if c != nil {
		if err := c.Save(); err != nil {
			logging.L().Warnw("saving cache failed", "error", err)
		}
	}
	if err := output.WriteResult(res, flagFormat, flagOut); err != nil {
		exitCode = ExitRuntimeError
		return err
	}
	if shouldFail(res.Counts, flagFailOn) {
		exitCode = ExitFindings
	}
	return nil
}

func shouldFail(counts review.SeverityCounts, threshold string) bool {
	switch threshold {
	case "none":
		return false
	case "low":
		return counts.Total > 0
	case "medium":
		return counts.High+counts.Medium > 0
	default: // high
		return counts.High > 0
	}
}

func resolveRepo() (string, string, error) {
	if flagRepo != "" {
		owner, repo, ok := splitRepo(flagRepo)
		if !ok {
			return "", "", fmt.Errorf("--repo must be owner/name, got %q", flagRepo)
		}
		return owner, repo, nil
	}
	return platform.DetectRepo()
}

func splitRepo(s string) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			if i == 0 || i == len(s)-1 {
				return "", "", false
			}
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}
