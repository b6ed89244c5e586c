package app

import (
	"time"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qblocks/internal/block"
	"github.com/kobzarvs/qblocks/internal/command"
	"github.com/kobzarvs/qblocks/internal/config"
	"github.com/kobzarvs/qblocks/internal/dnd"
	"github.com/kobzarvs/qblocks/internal/frame"
	"github.com/kobzarvs/qblocks/internal/geom"
	"github.com/kobzarvs/qblocks/internal/highlight"
	"github.com/kobzarvs/qblocks/internal/table"
)

type pressKind int

const (
	pressNone pressKind = iota
	pressDrag
	pressResize
	pressTable
)

// view is the terminal host: it lays the store out, draws it, and turns
// tcell events into store mutations and engine calls. All of its methods
// run on the event loop goroutine.
type view struct {
	cfg   config.Config
	store *block.Store
	reg   *highlight.Registry
	sched frame.Scheduler
	st    styles

	drag     *dnd.Controller
	resize   *dnd.ResizeSession
	tables   map[string]*tableView
	tableOpt table.Options

	lay    layout
	width  int
	height int
	scroll int

	menu       *slashMenu
	titleFocus bool
	message    string
	press      pressKind
	pressTable string
	mouseDown  bool
	dirty      func() bool
	save       func() error
	quit       bool
}

func newView(cfg config.Config, store *block.Store, reg *highlight.Registry, sched frame.Scheduler) *view {
	v := &view{
		cfg:    cfg,
		store:  store,
		reg:    reg,
		sched:  sched,
		st:     newStyles(cfg.Theme),
		tables: make(map[string]*tableView),
		tableOpt: table.Options{
			DragDistance:     cfg.Table.DragDistance,
			Hold:             time.Duration(cfg.Table.HoldMillis) * time.Millisecond,
			AutoscrollMargin: cfg.Table.AutoscrollMargin,
			AutoscrollSpeed:  cfg.Table.AutoscrollSpeed,
		},
		width:  80,
		height: 24,
	}
	opts := dnd.Options{LateralBand: cfg.Drag.LateralBand, Hysteresis: cfg.Drag.Hysteresis}
	v.drag = dnd.NewController(store, &v.lay, opts)
	v.resize = dnd.NewResizeSession(store, &v.lay, sched)
	v.relayout()
	return v
}

func (v *view) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.width, v.height = ev.Size()
	case *tcell.EventKey:
		v.handleKey(ev)
	case *tcell.EventMouse:
		v.handleMouse(ev)
	case *tcell.EventInterrupt:
		if fn, ok := ev.Data().(func()); ok && fn != nil {
			fn()
		}
	}
	v.relayout()
}

// areaRows is the number of screen rows available to blocks.
func (v *view) areaRows() int {
	return max(v.height-titleRows-1, 1)
}

func (v *view) relayout() {
	v.lay = buildLayout(v.store.Blocks(), v.width, titleRows-v.scroll)
	for id, tv := range v.tables {
		if _, ok := v.lay.tables[id]; !ok {
			tv.eng.Cancel()
			delete(v.tables, id)
		}
	}
}

func (v *view) scrollBy(dy int) {
	v.scroll = min(max(v.scroll+dy, 0), max(v.lay.height-v.areaRows(), 0))
}

// follow scrolls so the focused block's caret row is visible.
func (v *view) follow() {
	v.relayout()
	cur := v.store.Cursor()
	p, ok := v.lay.at(cur.BlockID)
	if !ok {
		return
	}
	row := p.y
	if b, ok := v.store.Block(cur.BlockID); ok && b.Type != block.TypeTable {
		line, _ := lineCol(b.Content, cur.Offset)
		row += line
	}
	switch {
	case row < titleRows:
		v.scroll -= titleRows - row
	case row >= titleRows+v.areaRows():
		v.scroll += row - (titleRows + v.areaRows()) + 1
	}
	v.scroll = max(v.scroll, 0)
	v.relayout()
}

func (v *view) tableFor(id string) *tableView {
	if tv, ok := v.tables[id]; ok {
		return tv
	}
	tv := &tableView{v: v, id: id}
	tv.eng = table.New(v.store, id, tv, tv, v.sched, v.tableOpt)
	v.tables[id] = tv
	return tv
}

// cancelTables drops selection and editing in every table except keep.
func (v *view) cancelTables(keep string) {
	for id, tv := range v.tables {
		if id != keep {
			tv.eng.Cancel()
		}
	}
}

// activeTable returns the table holding the caret, if any.
func (v *view) activeTable() (*tableView, bool) {
	cur := v.store.Cursor()
	b, ok := v.store.Block(cur.BlockID)
	if !ok || b.Type != block.TypeTable {
		return nil, false
	}
	return v.tableFor(b.ID), true
}

// tableView adapts one table block's on-screen grid to the selection
// engine's Locator and Scroller.
type tableView struct {
	v      *view
	id     string
	eng    *table.Engine
	offset float64
	caret  int
}

func (t *tableView) Viewport() (geom.Rect, bool) {
	r, ok := t.v.lay.tables[t.id]
	return r, ok
}

func (t *tableView) ScrollBy(dx float64) {
	r, ok := t.v.lay.tables[t.id]
	if !ok {
		return
	}
	_, cols := t.v.store.TableSize(t.id)
	limit := max(float64(tableWidth(cols))-r.W, 0)
	t.offset = min(max(t.offset+dx, 0), limit)
}

// CellAt clamps p into the viewport, so a drag that leaves the grid keeps
// extending to the nearest edge cell.
func (t *tableView) CellAt(p geom.Point) (block.Cell, bool) {
	r, ok := t.v.lay.tables[t.id]
	if !ok {
		return block.Cell{}, false
	}
	rows, cols := t.v.store.TableSize(t.id)
	if rows == 0 || cols == 0 {
		return block.Cell{}, false
	}
	vx := int(min(max(p.X-r.X, 0), r.W-1)) + int(t.offset)
	vy := int(min(max(p.Y-r.Y, 0), r.H-1))
	col := min(max((vx-1)/(cellWidth+1), 0), cols-1)
	row := min(max((vy-1)/2, 0), rows-1)
	return block.Cell{Row: row, Col: col}, true
}

// cellText returns the text of the cell being edited.
func (t *tableView) cellText() (block.Cell, string, bool) {
	cell, ok := t.eng.Editing()
	if !ok {
		return block.Cell{}, "", false
	}
	grid, ok := t.v.store.Table(t.id)
	if !ok || cell.Row >= len(grid) || cell.Col >= len(grid[cell.Row]) {
		return block.Cell{}, "", false
	}
	return cell, grid[cell.Row][cell.Col], true
}

// reveal scrolls horizontally so the edited cell is inside the viewport.
func (t *tableView) reveal() {
	cell, _, ok := t.cellText()
	r, has := t.v.lay.tables[t.id]
	if !ok || !has {
		return
	}
	left := float64(cell.Col * (cellWidth + 1))
	right := left + cellWidth + 2
	switch {
	case left < t.offset:
		t.ScrollBy(left - t.offset)
	case right > t.offset+r.W:
		t.ScrollBy(right - t.offset - r.W)
	}
}

func (t *tableView) caretToEnd() {
	_, text, _ := t.cellText()
	t.caret = utf8.RuneCountInString(text)
}

// slashMenu is the command menu opened by typing "/" in an empty block.
type slashMenu struct {
	blockID string
	query   string
	results []command.Result
	active  int
}

func newSlashMenu(blockID string) *slashMenu {
	m := &slashMenu{blockID: blockID}
	m.refresh()
	return m
}

func (m *slashMenu) refresh() {
	m.results = command.Filter(command.Catalog(), m.query, 0)
	m.active = min(max(m.active, 0), max(len(m.results)-1, 0))
}

func (m *slashMenu) move(d int) {
	if len(m.results) == 0 {
		return
	}
	m.active = (m.active + d + len(m.results)) % len(m.results)
}

func (m *slashMenu) selected() (command.Entry, bool) {
	if len(m.results) == 0 {
		return command.Entry{}, false
	}
	return m.results[m.active].Entry, true
}
