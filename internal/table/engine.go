// Package table implements cell selection and navigation for a single table
// block: click-to-edit, rectangular drag selection with edge auto-scroll,
// modifier toggling, and keyboard movement between cells.
package table

import (
	"math"
	"sort"
	"time"

	"github.com/kobzarvs/qblocks/internal/block"
	"github.com/kobzarvs/qblocks/internal/frame"
	"github.com/kobzarvs/qblocks/internal/geom"
	"github.com/kobzarvs/qblocks/internal/logger"
)

type State int

const (
	Idle State = iota
	Editing
	DraggingSelection
	DiscreteSelection
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case DraggingSelection:
		return "dragging-selection"
	case DiscreteSelection:
		return "discrete-selection"
	default:
		return "idle"
	}
}

// Store is the part of the block store the engine reads and mutates.
type Store interface {
	TableSize(id string) (rows, cols int)
	ClearCells(id string, cells []block.Cell) bool
	AddRow(id string, at int) bool
}

// Locator maps a pointer position to the table cell under it.
type Locator interface {
	CellAt(p geom.Point) (block.Cell, bool)
}

// Scroller is the table's horizontally scrollable container.
type Scroller interface {
	Viewport() (geom.Rect, bool)
	ScrollBy(dx float64)
}

type Options struct {
	// DragDistance is how far the pointer must travel after a press before
	// the press becomes a drag selection.
	DragDistance float64
	// Hold is how long a press must last before moving to another cell
	// starts a drag selection regardless of distance.
	Hold time.Duration
	// AutoscrollMargin is the width of the band inside each horizontal
	// edge of the viewport that triggers auto-scroll.
	AutoscrollMargin float64
	// AutoscrollSpeed is the per-frame scroll step at the very edge.
	AutoscrollSpeed float64
}

func DefaultOptions() Options {
	return Options{
		DragDistance:     2,
		Hold:             150 * time.Millisecond,
		AutoscrollMargin: 4,
		AutoscrollSpeed:  8,
	}
}

type press struct {
	active bool
	cell   block.Cell
	onCell bool
	at     geom.Point
	when   time.Time
}

// Engine is the selection state machine for one table block. It is driven
// from the host's event loop and is not safe for concurrent use.
type Engine struct {
	store    Store
	blockID  string
	locator  Locator
	scroller Scroller
	sched    frame.Scheduler
	opts     Options
	now      func() time.Time

	state    State
	editing  block.Cell
	anchor   block.Cell
	selected map[block.Cell]struct{}

	press   press
	pointer geom.Point

	cancelScroll func()
}

// New returns an idle engine for the table block blockID. scroller and
// sched may be nil, which disables auto-scroll.
func New(store Store, blockID string, locator Locator, scroller Scroller, sched frame.Scheduler, opts Options) *Engine {
	return &Engine{
		store:    store,
		blockID:  blockID,
		locator:  locator,
		scroller: scroller,
		sched:    sched,
		opts:     opts,
		now:      time.Now,
		selected: make(map[block.Cell]struct{}),
	}
}

func (e *Engine) BlockID() string { return e.blockID }
func (e *Engine) State() State    { return e.state }

// Editing returns the cell being edited.
func (e *Engine) Editing() (block.Cell, bool) {
	return e.editing, e.state == Editing
}

// Selection returns the selected cells in row-major order.
func (e *Engine) Selection() []block.Cell {
	out := make([]block.Cell, 0, len(e.selected))
	for c := range e.selected {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

func (e *Engine) Selected(c block.Cell) bool {
	_, ok := e.selected[c]
	return ok
}

// PointerDown starts a press. With toggle set (the host's modifier key) the
// cell under p flips its membership in the discrete selection instead.
func (e *Engine) PointerDown(p geom.Point, toggle bool) {
	e.pointer = p
	cell, ok := e.locator.CellAt(p)
	if toggle {
		e.press = press{}
		if !ok {
			return
		}
		if e.state == Editing {
			e.clearSelection()
		}
		if _, in := e.selected[cell]; in {
			delete(e.selected, cell)
		} else {
			e.selected[cell] = struct{}{}
		}
		e.state = DiscreteSelection
		if len(e.selected) == 0 {
			e.state = Idle
		}
		return
	}
	e.press = press{active: true, cell: cell, onCell: ok, at: p, when: e.now()}
}

// PointerMove promotes a press into a drag selection once it passes the
// distance or hold threshold, and extends an active drag selection.
func (e *Engine) PointerMove(p geom.Point) {
	e.pointer = p
	if e.state != DraggingSelection {
		if !e.press.active || !e.press.onCell || !e.dragStarted(p) {
			return
		}
		e.clearSelection()
		e.anchor = e.press.cell
		e.state = DraggingSelection
		e.selectRect(e.anchor, e.anchor)
		logger.Debug("table drag selection", "block", e.blockID, "row", e.anchor.Row, "col", e.anchor.Col)
	}
	if cell, ok := e.locator.CellAt(p); ok {
		e.selectRect(e.anchor, cell)
	}
	e.updateScroll()
}

func (e *Engine) dragStarted(p geom.Point) bool {
	dist := math.Hypot(p.X-e.press.at.X, p.Y-e.press.at.Y)
	if dist >= e.opts.DragDistance {
		return true
	}
	if e.now().Sub(e.press.when) < e.opts.Hold {
		return false
	}
	cell, ok := e.locator.CellAt(p)
	return ok && cell != e.press.cell
}

// PointerUp ends a press. A drag leaves its rectangle selected and returns
// to Idle; a plain click edits the clicked cell, except that a click
// outside a retained selection only clears it.
func (e *Engine) PointerUp(p geom.Point) {
	e.pointer = p
	pr := e.press
	e.press = press{}
	if e.state == DraggingSelection {
		e.stopScroll()
		e.state = Idle
		return
	}
	if !pr.active {
		return
	}
	if !pr.onCell {
		e.clearSelection()
		e.state = Idle
		return
	}
	if len(e.selected) > 0 {
		_, inside := e.selected[pr.cell]
		e.clearSelection()
		if !inside {
			e.state = Idle
			return
		}
	}
	e.edit(pr.cell)
}

// Cancel abandons any press, drag or selection.
func (e *Engine) Cancel() {
	e.stopScroll()
	e.press = press{}
	e.clearSelection()
	e.state = Idle
}

// Focus opens editing on c, used when the host moves the caret into the
// table from outside.
func (e *Engine) Focus(c block.Cell) bool {
	rows, cols := e.store.TableSize(e.blockID)
	if c.Row < 0 || c.Col < 0 || c.Row >= rows || c.Col >= cols {
		return false
	}
	e.clearSelection()
	e.edit(c)
	return true
}

func (e *Engine) edit(c block.Cell) {
	e.editing = c
	e.state = Editing
}

func (e *Engine) clearSelection() {
	if len(e.selected) > 0 {
		e.selected = make(map[block.Cell]struct{})
	}
}

// selectRect replaces the selection with the inclusive rectangle spanned by
// a and b, clipped to the grid.
func (e *Engine) selectRect(a, b block.Cell) {
	rows, cols := e.store.TableSize(e.blockID)
	r0, r1 := minMax(a.Row, b.Row)
	c0, c1 := minMax(a.Col, b.Col)
	e.selected = make(map[block.Cell]struct{})
	for r := max(r0, 0); r <= r1 && r < rows; r++ {
		for c := max(c0, 0); c <= c1 && c < cols; c++ {
			e.selected[block.Cell{Row: r, Col: c}] = struct{}{}
		}
	}
}

func (e *Engine) selectAll() {
	rows, cols := e.store.TableSize(e.blockID)
	e.selectRect(block.Cell{}, block.Cell{Row: rows - 1, Col: cols - 1})
}

func minMax(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
