package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/glintbot/glint/internal/review"
)

const msRound = time.Millisecond

// TextWriter renders a human-readable terminal report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, res *review.Result) error {
	ew := &errWriter{w: w}
	s := res.Summary

	ew.printf("glint review\n")
	ew.println(strings.Repeat("─", 60))
	ew.printf("Files: %d reviewed, %d skipped | Hunks: %d\n",
		s.FilesReviewed, s.FilesSkipped, s.HunksReviewed)
	ew.printf("Findings: %d total", res.Counts.Total)
	if res.Counts.Total > 0 {
		ew.printf(" (%d high, %d medium, %d low)",
			res.Counts.High, res.Counts.Medium, res.Counts.Low)
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	if res.Counts.Total == 0 {
		ew.println("\nNo issues found. Looks good!")
	}

	for _, sev := range []review.Severity{review.SeverityHigh, review.SeverityMedium, review.SeverityLow} {
		findings := bySeverity(res.Findings, sev)
		if len(findings) == 0 {
			continue
		}
		ew.printf("\n%s %s\n", severityIcon(sev), strings.ToUpper(string(sev)))
		ew.println(strings.Repeat("─", 40))
		for _, f := range findings {
			ew.printf("\n  %s:%d-%d  %s\n", f.Path, f.StartLine, f.EndLine, f.Title)
			ew.printf("  Category: %s\n", f.Category)
			for _, line := range wrapText(f.Rationale, 70) {
				ew.printf("    %s\n", line)
			}
			if f.Suggestion != "" {
				ew.println("  Suggestion:")
				for _, line := range strings.Split(strings.TrimRight(f.Suggestion, "\n"), "\n") {
					ew.printf("    %s\n", line)
				}
			}
			for _, ref := range f.References {
				ew.printf("  See: %s\n", ref)
			}
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Done in %s | %d model calls (%d cached) | %d tokens",
		s.Elapsed.Round(msRound), s.LLMCalls, s.CacheHits, s.TotalTokens)
	if s.CostUSD > 0 {
		ew.printf(" | ~$%.4f", s.CostUSD)
	}
	ew.println("")
	if s.BudgetExhausted {
		ew.println("Note: budget exhausted, some hunks reviewed by rules only.")
	}
	if s.QuotaExceeded {
		ew.println("Note: provider quota exceeded, some hunks reviewed by rules only.")
	}
	if s.FixesApplied > 0 {
		ew.printf("Auto-fixes applied: %d", s.FixesApplied)
		if s.FixCommit != "" {
			ew.printf(" (commit %s)", s.FixCommit)
		}
		ew.println("")
	}
	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func bySeverity(findings []review.Finding, sev review.Severity) []review.Finding {
	var out []review.Finding
	for _, f := range findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

func severityIcon(s review.Severity) string {
	switch s {
	case review.SeverityHigh:
		return "[!!]"
	case review.SeverityMedium:
		return "[!]"
	case review.SeverityLow:
		return "[-]"
	default:
		return "[?]"
	}
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
