package app

// Rune-offset helpers for editing block content. Offsets count runes, the
// same unit as block.Cursor.

func insertText(s string, off int, ins string) (string, int) {
	r := []rune(s)
	off = min(max(off, 0), len(r))
	in := []rune(ins)
	out := make([]rune, 0, len(r)+len(in))
	out = append(out, r[:off]...)
	out = append(out, in...)
	out = append(out, r[off:]...)
	return string(out), off + len(in)
}

// deleteBefore removes the rune before off.
func deleteBefore(s string, off int) (string, int, bool) {
	r := []rune(s)
	if off <= 0 || off > len(r) {
		return s, off, false
	}
	return string(append(r[:off-1:off-1], r[off:]...)), off - 1, true
}

// deleteAt removes the rune at off.
func deleteAt(s string, off int) (string, bool) {
	r := []rune(s)
	if off < 0 || off >= len(r) {
		return s, false
	}
	return string(append(r[:off:off], r[off+1:]...)), true
}

// lineCol converts a rune offset to a zero-based line and column.
func lineCol(s string, off int) (line, col int) {
	i := 0
	for _, c := range s {
		if i >= off {
			break
		}
		if c == '\n' {
			line++
			col = 0
		} else {
			col++
		}
		i++
	}
	return line, col
}

// offsetAt converts a line and column back to a rune offset, clamping the
// column to the line's length.
func offsetAt(s string, line, col int) int {
	line, col = max(line, 0), max(col, 0)
	off, l, c := 0, 0, 0
	for _, r := range s {
		if l == line && (c == col || r == '\n') {
			return off
		}
		if r == '\n' {
			l++
			c = 0
		} else {
			c++
		}
		off++
	}
	return off
}

func lineCount(s string) int {
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}
