package review

import (
	"encoding/json"
	"strings"

	"github.com/glintbot/glint/internal/logging"
)

// rawFinding mirrors the JSON contract given to the model. All fields are
// permissive; Normalize fills in whatever the model got wrong.
type rawFinding struct {
	StartLine  int      `json:"start_line"`
	EndLine    int      `json:"end_line"`
	Category   string   `json:"category"`
	Severity   string   `json:"severity"`
	Title      string   `json:"title"`
	Rationale  string   `json:"rationale"`
	Suggestion string   `json:"suggestion"`
	References []string `json:"references"`
}

// ParseFindings extracts findings from a model response. Responses wrapped
// in markdown fences or leading prose are tolerated; elements that fail to
// decode are dropped individually rather than failing the batch. Line
// numbers are clamped into [lo, hi] so a hallucinated location still lands
// inside the reviewed range.
func ParseFindings(text, path string, lo, hi int) []Finding {
	body := extractJSONArray(text)
	if body == "" {
		return nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(body), &elems); err != nil {
		logging.L().Debugw("model response is not a JSON array", "path", path, "error", err)
		return nil
	}

	findings := make([]Finding, 0, len(elems))
	for _, el := range elems {
		var rf rawFinding
		if err := json.Unmarshal(el, &rf); err != nil {
			logging.L().Debugw("dropping malformed finding element", "path", path, "error", err)
			continue
		}
		f := Finding{
			Path:       path,
			StartLine:  clampLine(rf.StartLine, lo, hi),
			EndLine:    clampLine(rf.EndLine, lo, hi),
			Category:   Category(strings.ToLower(strings.TrimSpace(rf.Category))),
			Severity:   Severity(strings.ToLower(strings.TrimSpace(rf.Severity))),
			Title:      strings.TrimSpace(rf.Title),
			Rationale:  strings.TrimSpace(rf.Rationale),
			Suggestion: rf.Suggestion,
			References: rf.References,
		}
		if f.EndLine < f.StartLine {
			f.EndLine = f.StartLine
		}
		f.Normalize()
		findings = append(findings, f)
	}
	return findings
}

func clampLine(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// extractJSONArray returns the outermost JSON array in text, stripping
// markdown code fences and any prose around it.
func extractJSONArray(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if i := strings.Index(text, "\n"); i >= 0 {
			text = text[i+1:]
		}
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return ""
	}
	return text[start : end+1]
}
