// Package diff derives changed line ranges from unified diffs.
//
// A Hunk is the unit of review scope: a contiguous changed range in new-file
// coordinates. Bare per-file patches (as returned by the hosting platform's
// changed-files API) are parsed directly from @@ headers; full multi-file
// diffs from local git go through go-gitdiff.
package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// Hunk is a changed line range, 1-based inclusive, new-file side.
type Hunk struct {
	StartLine int
	EndLine   int
}

// @@ -<oldStart>[,<oldLen>] +<newStart>[,<newLen>] @@
var hunkHeaderRe = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@`)

// Hunks extracts changed ranges from a bare unified-diff patch. Only the
// new-file side of each header is used; a missing length defaults to 1.
func Hunks(patch string) []Hunk {
	var hunks []Hunk
	for _, line := range strings.Split(patch, "\n") {
		m := hunkHeaderRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		start, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		length := 1
		if m[2] != "" {
			if n, err := strconv.Atoi(m[2]); err == nil {
				length = n
			}
		}
		end := start + length - 1
		if end < start {
			end = start
		}
		hunks = append(hunks, Hunk{StartLine: start, EndLine: end})
	}
	return hunks
}

// FileDiff is one changed file with its hunks.
type FileDiff struct {
	Path      string
	Status    string
	Additions int
	Deletions int
	Hunks     []Hunk
}

// ParseUnified parses a full multi-file unified diff into per-file hunks.
// Deleted and binary files carry no reviewable hunks and are skipped.
func ParseUnified(raw string) ([]FileDiff, error) {
	parsed, _, err := gitdiff.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	var files []FileDiff
	for _, f := range parsed {
		if f.IsDelete || f.IsBinary {
			continue
		}
		fd := FileDiff{Path: f.NewName, Status: "modified"}
		if fd.Path == "" {
			fd.Path = f.OldName
		}
		if f.IsNew {
			fd.Status = "added"
		}
		if f.IsRename {
			fd.Status = "renamed"
		}
		for _, frag := range f.TextFragments {
			if frag.NewLines == 0 {
				continue
			}
			start := int(frag.NewPosition)
			end := start + int(frag.NewLines) - 1
			fd.Hunks = append(fd.Hunks, Hunk{StartLine: start, EndLine: end})
			fd.Additions += int(frag.LinesAdded)
			fd.Deletions += int(frag.LinesDeleted)
		}
		if len(fd.Hunks) > 0 {
			files = append(files, fd)
		}
	}
	return files, nil
}
