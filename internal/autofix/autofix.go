// Package autofix applies low-risk finding suggestions to the working tree.
//
// Eligibility is deliberately narrow: a fix needs a non-blank suggestion, an
// allowed category, a severity below high, and a span within the configured
// line limit. Overlapping fixes in one file are resolved by keeping the
// first fix in ascending start order and dropping the rest; kept fixes are
// applied bottom-to-top so earlier splices never shift later line numbers.
package autofix

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/glintbot/glint/internal/config"
	"github.com/glintbot/glint/internal/logging"
	"github.com/glintbot/glint/internal/review"
)

// Fix is one accepted suggestion ready to apply.
type Fix struct {
	Path      string
	StartLine int
	EndLine   int
	Title     string
	Lines     []string // replacement for [StartLine, EndLine]
}

// Plan filters findings down to applicable fixes. High-severity findings are
// never auto-applied regardless of category; they deserve human eyes.
func Plan(findings []review.Finding, cfg config.AutoFixConfig) []Fix {
	if !cfg.Enabled {
		return nil
	}
	allowed := make(map[review.Category]bool, len(cfg.Categories))
	for _, c := range cfg.Categories {
		allowed[review.Category(strings.ToLower(c))] = true
	}

	var eligible []Fix
	for _, f := range findings {
		if strings.TrimSpace(f.Suggestion) == "" {
			continue
		}
		if !allowed[f.Category] || f.Severity == review.SeverityHigh {
			continue
		}
		span := f.EndLine - f.StartLine + 1
		if cfg.MaxLines > 0 && span > cfg.MaxLines {
			continue
		}
		eligible = append(eligible, Fix{
			Path:      f.Path,
			StartLine: f.StartLine,
			EndLine:   f.EndLine,
			Title:     f.Title,
			Lines:     splitSuggestion(f.Suggestion),
		})
	}

	return dropOverlaps(eligible)
}

// dropOverlaps keeps, per file, the first fix in ascending start order out
// of every overlapping cluster.
func dropOverlaps(fixes []Fix) []Fix {
	sort.SliceStable(fixes, func(i, j int) bool {
		if fixes[i].Path != fixes[j].Path {
			return fixes[i].Path < fixes[j].Path
		}
		return fixes[i].StartLine < fixes[j].StartLine
	})

	kept := fixes[:0]
	lastEnd := map[string]int{}
	for _, fx := range fixes {
		if end, ok := lastEnd[fx.Path]; ok && fx.StartLine <= end {
			logging.L().Debugw("dropping overlapping fix", "path", fx.Path, "lines", fmt.Sprintf("%d-%d", fx.StartLine, fx.EndLine))
			continue
		}
		lastEnd[fx.Path] = fx.EndLine
		kept = append(kept, fx)
	}
	return kept
}

// Apply writes the fixes into the files under root and returns the paths it
// modified. Files that no longer exist are skipped with a warning.
func Apply(root string, fixes []Fix) ([]string, error) {
	byFile := make(map[string][]Fix)
	for _, fx := range fixes {
		byFile[fx.Path] = append(byFile[fx.Path], fx)
	}

	paths := make([]string, 0, len(byFile))
	for path := range byFile {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var touched []string
	for _, path := range paths {
		full := filepath.Join(root, path)
		data, err := os.ReadFile(full)
		if err != nil {
			logging.L().Warnw("skipping fix, cannot read file", "path", path, "error", err)
			continue
		}
		out, changed := spliceAll(string(data), byFile[path])
		if !changed {
			continue
		}
		if err := os.WriteFile(full, []byte(out), 0o644); err != nil {
			return touched, fmt.Errorf("writing %s: %w", path, err)
		}
		touched = append(touched, path)
	}
	return touched, nil
}

// spliceAll applies a file's fixes in descending start order so each splice
// leaves every earlier line number intact.
func spliceAll(content string, fixes []Fix) (string, bool) {
	lines := strings.Split(content, "\n")
	trailingNewline := strings.HasSuffix(content, "\n")
	if trailingNewline {
		lines = lines[:len(lines)-1]
	}

	sort.SliceStable(fixes, func(i, j int) bool {
		return fixes[i].StartLine > fixes[j].StartLine
	})

	changed := false
	for _, fx := range fixes {
		if fx.StartLine < 1 || fx.EndLine > len(lines) || fx.EndLine < fx.StartLine {
			logging.L().Warnw("fix out of range for current file contents, skipping",
				"path", fx.Path, "lines", fmt.Sprintf("%d-%d", fx.StartLine, fx.EndLine), "fileLines", len(lines))
			continue
		}
		replaced := make([]string, 0, len(lines)-(fx.EndLine-fx.StartLine+1)+len(fx.Lines))
		replaced = append(replaced, lines[:fx.StartLine-1]...)
		replaced = append(replaced, fx.Lines...)
		replaced = append(replaced, lines[fx.EndLine:]...)
		lines = replaced
		changed = true
	}

	out := strings.Join(lines, "\n")
	if trailingNewline {
		out += "\n"
	}
	return out, changed
}

// splitSuggestion normalizes line endings before splitting so CRLF
// suggestions never leak carriage returns into spliced files.
func splitSuggestion(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimRight(s, "\n")
	return strings.Split(s, "\n")
}
