package review

import "testing"

func TestParseFindingsPlainArray(t *testing.T) {
	text := `[
  {"start_line": 12, "end_line": 14, "category": "bug", "severity": "medium",
   "title": "Off-by-one in loop bound", "rationale": "The loop skips the last element.",
   "suggestion": "for i := 0; i <= n; i++ {"}
]`
	findings := ParseFindings(text, "loop.go", 1, 100)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Path != "loop.go" || f.StartLine != 12 || f.EndLine != 14 {
		t.Errorf("unexpected location: %s:%d-%d", f.Path, f.StartLine, f.EndLine)
	}
	if f.Category != CategoryBug || f.Severity != SeverityMedium {
		t.Errorf("unexpected classification: %s/%s", f.Severity, f.Category)
	}
}

func TestParseFindingsFencedWithProse(t *testing.T) {
	text := "Here is my review:\n```json\n[{\"start_line\": 3, \"end_line\": 3, \"category\": \"style\", \"severity\": \"low\", \"title\": \"Naming\", \"rationale\": \"r\"}]\n```\nHope this helps!"
	findings := ParseFindings(text, "a.go", 1, 10)
	if len(findings) != 1 {
		t.Fatalf("fenced response should parse, got %d findings", len(findings))
	}
}

func TestParseFindingsDropsMalformedElements(t *testing.T) {
	text := `[
  {"start_line": 1, "end_line": 1, "category": "bug", "severity": "high", "title": "Real", "rationale": "r"},
  {"start_line": "not a number"},
  {"start_line": 2, "end_line": 2, "category": "style", "severity": "low", "title": "Also real", "rationale": "r"}
]`
	findings := ParseFindings(text, "a.go", 1, 10)
	if len(findings) != 2 {
		t.Fatalf("malformed elements drop individually, got %d findings", len(findings))
	}
	if findings[0].Title != "Real" || findings[1].Title != "Also real" {
		t.Errorf("unexpected survivors: %+v", findings)
	}
}

func TestParseFindingsClampsLines(t *testing.T) {
	text := `[{"start_line": 500, "end_line": 900, "category": "bug", "severity": "low", "title": "t", "rationale": "r"}]`
	findings := ParseFindings(text, "a.go", 10, 40)
	if len(findings) != 1 {
		t.Fatal("expected 1 finding")
	}
	if findings[0].StartLine != 40 || findings[0].EndLine != 40 {
		t.Errorf("lines should clamp into [10,40], got %d-%d", findings[0].StartLine, findings[0].EndLine)
	}
}

func TestParseFindingsNormalizesBadValues(t *testing.T) {
	text := `[{"start_line": 1, "end_line": 1, "category": "CRITICAL", "severity": "URGENT", "title": "", "rationale": "r"}]`
	findings := ParseFindings(text, "a.go", 1, 5)
	if len(findings) != 1 {
		t.Fatal("expected 1 finding")
	}
	if findings[0].Category != CategoryStyle || findings[0].Severity != SeverityLow {
		t.Errorf("invalid category/severity should normalize, got %s/%s", findings[0].Category, findings[0].Severity)
	}
	if findings[0].Title == "" {
		t.Error("empty title should normalize")
	}
}

func TestParseFindingsGarbage(t *testing.T) {
	for _, text := range []string{"", "no json here", "{\"not\": \"an array\"}", "[broken"} {
		if f := ParseFindings(text, "a.go", 1, 10); len(f) != 0 {
			t.Errorf("ParseFindings(%q) = %+v, want none", text, f)
		}
	}
}

func TestParseFindingsEmptyArray(t *testing.T) {
	if f := ParseFindings("[]", "a.go", 1, 10); len(f) != 0 {
		t.Errorf("clean review should yield no findings, got %+v", f)
	}
}
