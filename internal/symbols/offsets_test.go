package symbols

import "testing"

func TestLineOffsets(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []int
	}{
		{"empty", "", []int{-1, 0}},
		{"one line no newline", "abc", []int{-1, 0}},
		{"two lines", "ab\ncd", []int{-1, 0, 3}},
		{"trailing newline", "ab\ncd\n", []int{-1, 0, 3, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineOffsets(tt.src)
			if len(got) != len(tt.want) {
				t.Fatalf("LineOffsets(%q) = %v, want %v", tt.src, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("offset[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestByteRange(t *testing.T) {
	src := "aa\nbb\ncc" // no trailing newline
	tests := []struct {
		name               string
		startLine, endLine int
		wantStart, wantEnd int
	}{
		{"first line", 1, 1, 0, 3},
		{"middle line", 2, 2, 3, 6},
		{"last line no trailing newline", 3, 3, 6, 8},
		{"full range", 1, 3, 0, 8},
		{"start clamped", 0, 1, 0, 3},
		{"end past eof clamped", 3, 99, 6, 8},
		{"inverted range clamps to start", 2, 1, 3, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := ByteRange(src, tt.startLine, tt.endLine)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("ByteRange(%d,%d) = (%d,%d), want (%d,%d)",
					tt.startLine, tt.endLine, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestByteRange_EmptyFile(t *testing.T) {
	start, end := ByteRange("", 1, 1)
	if start != 0 || end != 0 {
		t.Errorf("ByteRange on empty file = (%d,%d), want (0,0)", start, end)
	}
}

func TestLineCount(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"", 1},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
	}
	for _, tt := range tests {
		if got := LineCount(tt.src); got != tt.want {
			t.Errorf("LineCount(%q) = %d, want %d", tt.src, got, tt.want)
		}
	}
}
