package review

import (
	"fmt"
	"strings"

	"github.com/glintbot/glint/internal/llm"
	"github.com/glintbot/glint/internal/retrieve"
	"github.com/glintbot/glint/internal/symbols"
)

const systemPrompt = `You are a precise code reviewer. You receive a changed region of a file with surrounding context and related code from the same repository.

Report only genuine problems in the CHANGED REGION. Do not comment on code outside it, do not restate the diff, and do not invent style preferences the surrounding code does not follow.

Respond with a JSON array only, no prose. Each element:
{
  "start_line": <int, first affected line in the file>,
  "end_line": <int, last affected line>,
  "category": "security" | "bug" | "performance" | "style" | "docs" | "test",
  "severity": "high" | "medium" | "low",
  "title": "<short imperative summary>",
  "rationale": "<why this is a problem here>",
  "suggestion": "<replacement source lines for [start_line, end_line], or empty string>",
  "references": ["<optional URLs or identifiers>"]
}

The suggestion, when present, must be a drop-in replacement for exactly the lines [start_line, end_line] with the file's original indentation. Return [] when the change looks fine.`

// PromptInput is everything the user prompt for one changed region needs.
type PromptInput struct {
	Path      string
	StartLine int // first changed line
	EndLine   int // last changed line
	Context   symbols.SymbolContext
	Related   []retrieve.Related
}

// BuildMessages assembles the chat request for one changed region.
func BuildMessages(in PromptInput) []llm.Message {
	var b strings.Builder

	fmt.Fprintf(&b, "File: %s (%s)\n", in.Path, in.Context.Language)
	if in.Context.SymbolName != "" {
		fmt.Fprintf(&b, "Enclosing %s: %s\n", in.Context.SymbolType, in.Context.SymbolName)
	}
	fmt.Fprintf(&b, "Changed region: lines %d-%d\n\n", in.StartLine, in.EndLine)

	fmt.Fprintf(&b, "BEGIN CONTEXT (lines %d-%d, changed region marked with >)\n",
		in.Context.SnippetStartLine, in.Context.SnippetEndLine)
	writeNumbered(&b, in.Context.Snippet, in.Context.SnippetStartLine, in.StartLine, in.EndLine)
	b.WriteString("END CONTEXT\n")

	for _, rel := range in.Related {
		fmt.Fprintf(&b, "\nRELATED %s %s (%s:%d-%d)\n",
			rel.SymbolType, rel.SymbolName, rel.Path, rel.StartLine, rel.EndLine)
		b.WriteString(rel.Snippet)
		if !strings.HasSuffix(rel.Snippet, "\n") {
			b.WriteByte('\n')
		}
		b.WriteString("END RELATED\n")
	}

	b.WriteString("\nReview the changed region. JSON array only.")

	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}

// writeNumbered prints snippet with 1-based file line numbers starting at
// first, prefixing lines inside [lo, hi] with ">".
func writeNumbered(b *strings.Builder, snippet string, first, lo, hi int) {
	lines := strings.Split(snippet, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		num := first + i
		mark := " "
		if num >= lo && num <= hi {
			mark = ">"
		}
		fmt.Fprintf(b, "%s%5d | %s\n", mark, num, line)
	}
}
