package symbols

import "strings"

// LineOffsets returns the byte offset of the start of each 1-based line.
// Index 0 is unused. An empty source still has one line starting at 0.
func LineOffsets(src string) []int {
	offsets := []int{-1, 0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// LineCount returns the number of lines in src. A trailing newline does not
// open a new line; an empty source has one line.
func LineCount(src string) int {
	if src == "" {
		return 1
	}
	n := strings.Count(src, "\n")
	if !strings.HasSuffix(src, "\n") {
		n++
	}
	return n
}

// ByteRange converts a 1-based inclusive line range to a [start, end) byte
// range within src. Lines are clamped to file bounds.
func ByteRange(src string, startLine, endLine int) (int, int) {
	offsets := LineOffsets(src)
	last := len(offsets) - 1 // highest line with a recorded start

	if startLine < 1 {
		startLine = 1
	}
	if startLine > last {
		startLine = last
	}
	if endLine < startLine {
		endLine = startLine
	}

	start := offsets[startLine]
	var end int
	if endLine >= last {
		end = len(src)
	} else {
		end = offsets[endLine+1]
	}
	return start, end
}
