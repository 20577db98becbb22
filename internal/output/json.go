package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/glintbot/glint/internal/review"
)

// JSONWriter renders the full result as indented JSON.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, res *review.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
