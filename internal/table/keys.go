package table

import (
	"strings"
	"unicode/utf8"

	"github.com/kobzarvs/qblocks/internal/block"
)

type Key int

const (
	KeyNone Key = iota
	KeyTab
	KeyBacktab
	KeyEnter
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyEscape
	KeyDelete
	KeyBackspace
	KeySelectAll
)

// Caret is the text cursor inside the edited cell: the cell text and a rune
// offset into it.
type Caret struct {
	Text   string
	Offset int
}

func (c Caret) atStart() bool { return c.Offset <= 0 }

func (c Caret) atEnd() bool { return c.Offset >= utf8.RuneCountInString(c.Text) }

func (c Caret) onFirstLine() bool {
	return !strings.Contains(c.prefix(), "\n")
}

func (c Caret) onLastLine() bool {
	return !strings.Contains(c.Text[len(c.prefix()):], "\n")
}

func (c Caret) prefix() string {
	n := 0
	for i := range c.Text {
		if n == c.Offset {
			return c.Text[:i]
		}
		n++
	}
	return c.Text
}

// Key handles a key press. It reports whether the engine consumed the key;
// unconsumed keys belong to the host's text editing.
func (e *Engine) Key(k Key, caret Caret) bool {
	switch k {
	case KeyEscape:
		switch {
		case len(e.selected) > 0 || e.state == DraggingSelection:
			e.Cancel()
			return true
		case e.state == Editing:
			e.state = Idle
			return true
		}
		return false
	case KeySelectAll:
		if len(e.selected) == 0 {
			return false
		}
		e.stopScroll()
		e.press = press{}
		e.selectAll()
		e.state = DiscreteSelection
		return true
	case KeyDelete, KeyBackspace:
		if len(e.selected) == 0 {
			return false
		}
		e.store.ClearCells(e.blockID, e.Selection())
		return true
	}

	if e.state != Editing {
		return false
	}
	rows, cols := e.store.TableSize(e.blockID)
	if rows == 0 || cols == 0 {
		e.Cancel()
		return false
	}
	cur := e.editing
	switch k {
	case KeyTab:
		if cur.Col+1 < cols {
			e.edit(block.Cell{Row: cur.Row, Col: cur.Col + 1})
			return true
		}
		if cur.Row+1 >= rows && !e.store.AddRow(e.blockID, rows) {
			return true
		}
		e.edit(block.Cell{Row: cur.Row + 1, Col: 0})
		return true
	case KeyBacktab:
		switch {
		case cur.Col > 0:
			e.edit(block.Cell{Row: cur.Row, Col: cur.Col - 1})
		case cur.Row > 0:
			e.edit(block.Cell{Row: cur.Row - 1, Col: cols - 1})
		}
		return true
	case KeyEnter:
		if cur.Row+1 >= rows && !e.store.AddRow(e.blockID, rows) {
			return true
		}
		e.edit(block.Cell{Row: cur.Row + 1, Col: cur.Col})
		return true
	case KeyLeft:
		return caret.atStart() && e.step(cur, 0, -1, rows, cols)
	case KeyRight:
		return caret.atEnd() && e.step(cur, 0, 1, rows, cols)
	case KeyUp:
		return caret.onFirstLine() && e.step(cur, -1, 0, rows, cols)
	case KeyDown:
		return caret.onLastLine() && e.step(cur, 1, 0, rows, cols)
	}
	return false
}

func (e *Engine) step(cur block.Cell, dr, dc, rows, cols int) bool {
	next := block.Cell{Row: cur.Row + dr, Col: cur.Col + dc}
	if next.Row < 0 || next.Col < 0 || next.Row >= rows || next.Col >= cols {
		return false
	}
	e.edit(next)
	return true
}
