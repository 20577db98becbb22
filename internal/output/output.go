package output

import (
	"fmt"
	"io"
	"os"

	"github.com/glintbot/glint/internal/review"
)

// Writer renders a review result in one format.
type Writer interface {
	Write(w io.Writer, res *review.Result) error
}

// Get returns the writer for format: text, markdown, json, or sarif.
func Get(format string) (Writer, error) {
	switch format {
	case "text", "":
		return &TextWriter{}, nil
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "sarif":
		return &SARIFWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteResult renders res to outPath, or stdout when outPath is empty.
func WriteResult(res *review.Result, format, outPath string) error {
	writer, err := Get(format)
	if err != nil {
		return err
	}
	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return writer.Write(w, res)
}
