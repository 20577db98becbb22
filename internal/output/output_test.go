package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/glintbot/glint/internal/review"
)

func sampleResult() *review.Result {
	return &review.Result{
		Findings: []review.Finding{
			{
				Path: "auth/login.go", StartLine: 42, EndLine: 44,
				Category: review.CategorySecurity, Severity: review.SeverityHigh,
				Title: "SQL built by string concatenation", Rationale: "User input reaches the query text.",
				Suggestion: "db.QueryContext(ctx, \"SELECT id FROM users WHERE name = $1\", name)",
				References: []string{"https://owasp.org/www-community/attacks/SQL_Injection"},
			},
			{
				Path: "ui/app.ts", StartLine: 7, EndLine: 7,
				Category: review.CategoryStyle, Severity: review.SeverityLow,
				Title: "Leftover debug print", Rationale: "console.log in committed code.",
			},
		},
		Counts:  review.SeverityCounts{High: 1, Low: 1, Total: 2},
		Summary: review.RunSummary{FilesReviewed: 2, HunksReviewed: 3, LLMCalls: 3, TotalTokens: 1200, Elapsed: 1500 * time.Millisecond},
	}
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(&buf, sampleResult()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"2 total", "1 high", "auth/login.go:42-44", "SQL built by string concatenation",
		"HIGH", "LOW", "Suggestion:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestTextWriterClean(t *testing.T) {
	var buf bytes.Buffer
	res := &review.Result{Summary: review.RunSummary{FilesReviewed: 1}}
	if err := (&TextWriter{}).Write(&buf, res); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "No issues found") {
		t.Errorf("clean run should say so:\n%s", buf.String())
	}
}

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, sampleResult()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"## glint review", "| High     | 1 |", "<details>",
		"`auth/login.go:42-44`", "```go", "SQL built by string concatenation",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestCommentBody(t *testing.T) {
	f := sampleResult().Findings[0]
	body := CommentBody(f)
	if !strings.Contains(body, "**SQL built by string concatenation**") {
		t.Errorf("comment body missing title:\n%s", body)
	}
	if !strings.Contains(body, "```go") {
		t.Errorf("suggestion should be fenced with the file language:\n%s", body)
	}
	if !strings.Contains(body, "owasp.org") {
		t.Errorf("references should be included:\n%s", body)
	}
}

func TestJSONWriterRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, sampleResult()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got review.Result
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(got.Findings) != 2 || got.Counts.Total != 2 {
		t.Errorf("round-trip lost data: %+v", got)
	}
}

func TestSARIFWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&SARIFWriter{}).Write(&buf, sampleResult()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if log.Version != "2.1.0" || len(log.Runs) != 1 {
		t.Fatalf("unexpected log shape: %+v", log)
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "glint" {
		t.Errorf("driver name = %q", run.Tool.Driver.Name)
	}
	if len(run.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(run.Results))
	}
	if run.Results[0].Level != "error" {
		t.Errorf("high severity should map to error, got %q", run.Results[0].Level)
	}
	loc := run.Results[0].Locations[0].PhysicalLocation
	if loc.ArtifactLocation.URI != "auth/login.go" || loc.Region.StartLine != 42 {
		t.Errorf("unexpected location: %+v", loc)
	}
}

func TestGetUnknownFormat(t *testing.T) {
	if _, err := Get("xml"); err == nil {
		t.Error("unknown format should error")
	}
}
