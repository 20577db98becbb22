package review

import (
	"fmt"
	"sort"
	"strings"
)

// titlePrefixLen bounds the title prefix used in the dedupe key. Long titles
// sharing a prefix on the same line collapse; this is a heuristic, tuned
// against observed duplicate chatter rather than a hard guarantee.
const titlePrefixLen = 64

// SeverityCounts holds counts by severity over a finding set.
type SeverityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Total  int `json:"total"`
}

// Aggregate merges findings from all producers into one ranked list:
// deduplicate by (path, start line, title prefix) keeping the higher-scored
// finding, sort by score descending with path/line tie-breaks, cap to
// maxCount, and count severities over the capped set.
func Aggregate(findings []Finding, maxCount int) ([]Finding, SeverityCounts) {
	deduped := make(map[string]Finding, len(findings))
	order := make([]string, 0, len(findings))

	for _, f := range findings {
		f.Normalize()
		key := dedupeKey(f)
		existing, ok := deduped[key]
		if !ok {
			deduped[key] = f
			order = append(order, key)
			continue
		}
		if f.Score() > existing.Score() {
			deduped[key] = f
		}
	}

	merged := make([]Finding, 0, len(deduped))
	for _, key := range order {
		merged = append(merged, deduped[key])
	}

	sort.SliceStable(merged, func(i, j int) bool {
		si, sj := merged[i].Score(), merged[j].Score()
		if si != sj {
			return si > sj
		}
		if merged[i].Path != merged[j].Path {
			return merged[i].Path < merged[j].Path
		}
		return merged[i].StartLine < merged[j].StartLine
	})

	if maxCount > 0 && len(merged) > maxCount {
		merged = merged[:maxCount]
	}

	// Counts cover exactly what is surfaced, not the pre-cap set.
	var counts SeverityCounts
	for _, f := range merged {
		switch f.Severity {
		case SeverityHigh:
			counts.High++
		case SeverityMedium:
			counts.Medium++
		case SeverityLow:
			counts.Low++
		}
	}
	counts.Total = len(merged)
	return merged, counts
}

func dedupeKey(f Finding) string {
	title := strings.ToLower(f.Title)
	if runes := []rune(title); len(runes) > titlePrefixLen {
		title = string(runes[:titlePrefixLen])
	}
	return fmt.Sprintf("%s:%d:%s", f.Path, f.StartLine, title)
}
