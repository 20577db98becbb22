package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/glintbot/glint/internal/review"
	"github.com/glintbot/glint/internal/symbols"
)

// MarkdownWriter renders a PR-comment-friendly markdown report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, res *review.Result) error {
	ew := &errWriter{w: w}
	s := res.Summary

	ew.printf("## glint review\n\n")
	ew.printf("| Severity | Count |\n")
	ew.printf("|----------|-------|\n")
	ew.printf("| High     | %d |\n", res.Counts.High)
	ew.printf("| Medium   | %d |\n", res.Counts.Medium)
	ew.printf("| Low      | %d |\n", res.Counts.Low)
	ew.printf("| **Total** | **%d** |\n\n", res.Counts.Total)

	if res.Counts.Total == 0 {
		ew.println("No issues found. :white_check_mark:")
	}

	for _, sev := range []review.Severity{review.SeverityHigh, review.SeverityMedium, review.SeverityLow} {
		findings := bySeverity(res.Findings, sev)
		if len(findings) == 0 {
			continue
		}
		ew.printf("<details>\n<summary>%s %s (%d)</summary>\n\n",
			mdSeverityIcon(sev), strings.ToUpper(string(sev)), len(findings))
		for _, f := range findings {
			ew.printf("### %s\n\n", f.Title)
			ew.printf("**`%s:%d-%d`** | %s\n\n", f.Path, f.StartLine, f.EndLine, f.Category)
			ew.printf("%s\n\n", f.Rationale)
			if f.Suggestion != "" {
				ew.printf("**Suggestion:**\n\n```%s\n%s\n```\n\n",
					fenceLang(f.Path), strings.TrimRight(f.Suggestion, "\n"))
			}
			for _, ref := range f.References {
				ew.printf("See: %s\n\n", ref)
			}
			ew.printf("---\n\n")
		}
		ew.printf("</details>\n\n")
	}

	ew.printf("*%d files, %d hunks, %d model calls (%d cached), %d tokens",
		s.FilesReviewed, s.HunksReviewed, s.LLMCalls, s.CacheHits, s.TotalTokens)
	if s.CostUSD > 0 {
		ew.printf(", ~$%.4f", s.CostUSD)
	}
	ew.printf(" in %s*\n", s.Elapsed.Round(msRound))
	if s.BudgetExhausted || s.QuotaExceeded {
		ew.printf("\n*Some hunks were reviewed by deterministic rules only.*\n")
	}
	return ew.err
}

// CommentBody renders one finding as the body of an inline review comment.
func CommentBody(f review.Finding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** `%s/%s`\n\n%s\n", f.Title, f.Severity, f.Category, f.Rationale)
	if f.Suggestion != "" {
		fmt.Fprintf(&b, "\n```%s\n%s\n```\n", fenceLang(f.Path), strings.TrimRight(f.Suggestion, "\n"))
	}
	for _, ref := range f.References {
		fmt.Fprintf(&b, "\nSee: %s\n", ref)
	}
	return b.String()
}

func mdSeverityIcon(s review.Severity) string {
	switch s {
	case review.SeverityHigh:
		return ":red_circle:"
	case review.SeverityMedium:
		return ":orange_circle:"
	case review.SeverityLow:
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}

func fenceLang(path string) string {
	if lang := symbols.LanguageFromPath(path); lang != symbols.LangUnknown {
		return string(lang)
	}
	return ""
}
