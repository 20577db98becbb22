package review

import "testing"

func mkFinding(path string, line int, cat Category, sev Severity, title string) Finding {
	return Finding{
		Path:      path,
		StartLine: line,
		EndLine:   line,
		Category:  cat,
		Severity:  sev,
		Title:     title,
		Rationale: "r",
	}
}

func TestScoreSeverityDominatesCategory(t *testing.T) {
	lowSec := mkFinding("a.go", 1, CategorySecurity, SeverityLow, "low security")
	medDocs := mkFinding("a.go", 2, CategoryDocs, SeverityMedium, "medium docs")
	if lowSec.Score() >= medDocs.Score() {
		t.Errorf("low/security score %d should be below medium/docs score %d", lowSec.Score(), medDocs.Score())
	}

	medStyle := mkFinding("a.go", 3, CategoryStyle, SeverityMedium, "medium style")
	medSec := mkFinding("a.go", 4, CategorySecurity, SeverityMedium, "medium security")
	if medSec.Score() <= medStyle.Score() {
		t.Errorf("within a severity, security %d should outrank style %d", medSec.Score(), medStyle.Score())
	}
}

func TestAggregateDedupe(t *testing.T) {
	findings := []Finding{
		mkFinding("a.go", 10, CategoryStyle, SeverityLow, "Unused variable x"),
		mkFinding("a.go", 10, CategoryBug, SeverityMedium, "Unused variable x"),
		mkFinding("a.go", 11, CategoryStyle, SeverityLow, "Unused variable x"),
	}
	kept, counts := Aggregate(findings, 20)
	if len(kept) != 2 {
		t.Fatalf("expected duplicates to collapse to 2 findings, got %d", len(kept))
	}
	// The higher-scored duplicate wins.
	if kept[0].Severity != SeverityMedium || kept[0].Category != CategoryBug {
		t.Errorf("winner should be the medium/bug duplicate, got %s/%s", kept[0].Severity, kept[0].Category)
	}
	if counts.Medium != 1 || counts.Low != 1 || counts.Total != 2 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}

func TestAggregateDedupeTitlePrefix(t *testing.T) {
	long := "This title is identical for the first sixty four runes padding padding padding"
	a := mkFinding("a.go", 5, CategoryStyle, SeverityLow, long+" tail one")
	b := mkFinding("a.go", 5, CategoryStyle, SeverityLow, long+" tail two")
	kept, _ := Aggregate([]Finding{a, b}, 20)
	if len(kept) != 1 {
		t.Fatalf("titles sharing a 64-rune prefix at the same location should dedupe, got %d findings", len(kept))
	}
}

func TestAggregateCapAndCounts(t *testing.T) {
	var findings []Finding
	for i := 0; i < 15; i++ {
		sev := SeverityLow
		if i < 5 {
			sev = SeverityHigh
		}
		findings = append(findings, mkFinding("a.go", i+1, CategoryBug, sev, "finding"+string(rune('a'+i))))
	}
	kept, counts := Aggregate(findings, 10)
	if len(kept) != 10 {
		t.Fatalf("expected cap at 10, got %d", len(kept))
	}
	if counts.Total != 10 {
		t.Errorf("counts cover the capped set: Total = %d, want 10", counts.Total)
	}
	if counts.High != 5 {
		t.Errorf("all 5 high findings must survive the cap, got %d", counts.High)
	}
	if counts.High+counts.Medium+counts.Low != counts.Total {
		t.Errorf("severity counts %+v do not sum to total", counts)
	}
	// Highest scores come first.
	for i := 1; i < len(kept); i++ {
		if kept[i].Score() > kept[i-1].Score() {
			t.Errorf("findings out of score order at %d", i)
		}
	}
}

func TestAggregateStableTiebreak(t *testing.T) {
	findings := []Finding{
		mkFinding("b.go", 5, CategoryStyle, SeverityLow, "one"),
		mkFinding("a.go", 9, CategoryStyle, SeverityLow, "two"),
		mkFinding("a.go", 2, CategoryStyle, SeverityLow, "three"),
	}
	kept, _ := Aggregate(findings, 20)
	if kept[0].Path != "a.go" || kept[0].StartLine != 2 {
		t.Errorf("equal scores should order by path then line, got %s:%d first", kept[0].Path, kept[0].StartLine)
	}
	if kept[2].Path != "b.go" {
		t.Errorf("b.go should sort last, got %s", kept[2].Path)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	f := Finding{Path: "a.go", StartLine: -3, EndLine: -9, Category: "bogus", Severity: ""}
	f.Normalize()
	if f.Category != CategoryStyle {
		t.Errorf("invalid category should default to style, got %s", f.Category)
	}
	if f.Severity != SeverityLow {
		t.Errorf("invalid severity should default to low, got %s", f.Severity)
	}
	if f.StartLine != 1 || f.EndLine != 1 {
		t.Errorf("lines should clamp to 1, got %d-%d", f.StartLine, f.EndLine)
	}
	if f.Title == "" {
		t.Error("empty title should receive a default")
	}
}
