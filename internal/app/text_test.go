package app

import "testing"

func TestInsertAndDelete(t *testing.T) {
	s, off := insertText("héllo", 2, "X")
	if s != "héXllo" || off != 3 {
		t.Fatalf("insertText = %q %d", s, off)
	}
	s, off, ok := deleteBefore(s, 3)
	if !ok || s != "héllo" || off != 2 {
		t.Fatalf("deleteBefore = %q %d %v", s, off, ok)
	}
	if _, _, ok := deleteBefore(s, 0); ok {
		t.Fatalf("deleteBefore at 0 succeeded")
	}
	s, ok = deleteAt(s, 1)
	if !ok || s != "hllo" {
		t.Fatalf("deleteAt = %q %v", s, ok)
	}
	if _, ok := deleteAt(s, 4); ok {
		t.Fatalf("deleteAt past end succeeded")
	}
}

func TestLineColRoundTrip(t *testing.T) {
	text := "ab\ncdef\n\ng"
	cases := []struct {
		off, line, col int
	}{
		{0, 0, 0}, {2, 0, 2}, {3, 1, 0}, {7, 1, 4}, {8, 2, 0}, {9, 3, 0}, {10, 3, 1},
	}
	for _, c := range cases {
		line, col := lineCol(text, c.off)
		if line != c.line || col != c.col {
			t.Fatalf("lineCol(%d) = %d,%d want %d,%d", c.off, line, col, c.line, c.col)
		}
		if got := offsetAt(text, line, col); got != c.off {
			t.Fatalf("offsetAt(%d,%d) = %d, want %d", line, col, got, c.off)
		}
	}
}

func TestOffsetAtClamps(t *testing.T) {
	text := "ab\ncdef"
	if got := offsetAt(text, 0, 10); got != 2 {
		t.Fatalf("offsetAt past line end = %d, want 2", got)
	}
	if got := offsetAt(text, 5, 0); got != 7 {
		t.Fatalf("offsetAt past last line = %d, want 7", got)
	}
	if got := offsetAt(text, -1, 3); got != 2 {
		t.Fatalf("offsetAt negative line = %d, want 2", got)
	}
	if lineCount(text) != 2 {
		t.Fatalf("lineCount = %d", lineCount(text))
	}
}
