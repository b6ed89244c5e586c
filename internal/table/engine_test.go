package table

import (
	"reflect"
	"testing"
	"time"

	"github.com/kobzarvs/qblocks/internal/block"
	"github.com/kobzarvs/qblocks/internal/frame"
	"github.com/kobzarvs/qblocks/internal/geom"
)

// fakeView lays cells out 10 units wide and 1 unit tall inside a viewport
// scrolled horizontally by offset.
type fakeView struct {
	store    *block.Store
	id       string
	viewport geom.Rect
	offset   float64
}

func (v *fakeView) CellAt(p geom.Point) (block.Cell, bool) {
	rows, cols := v.store.TableSize(v.id)
	if p.Y < 0 || p.X+v.offset < 0 {
		return block.Cell{}, false
	}
	c := block.Cell{Row: int(p.Y), Col: int((p.X + v.offset) / 10)}
	if c.Row >= rows || c.Col >= cols {
		return block.Cell{}, false
	}
	return c, true
}

func (v *fakeView) Viewport() (geom.Rect, bool) { return v.viewport, true }
func (v *fakeView) ScrollBy(dx float64)         { v.offset += dx }

func at(row, col int) geom.Point {
	return geom.Point{X: float64(col*10) + 5, Y: float64(row) + 0.5}
}

type fixture struct {
	store *block.Store
	view  *fakeView
	sched *frame.Manual
	eng   *Engine
	clock time.Time
}

func newFixture(t *testing.T, grid [][]string, opts Options) *fixture {
	t.Helper()
	s, err := block.New("doc", []block.Block{{ID: "t", Type: block.TypeTable, TableData: grid}}, block.Options{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	f := &fixture{
		store: s,
		view:  &fakeView{store: s, id: "t", viewport: geom.Rect{X: 0, Y: 0, W: 30, H: 10}},
		sched: &frame.Manual{},
		clock: time.Unix(0, 0),
	}
	f.eng = New(s, "t", f.view, f.view, f.sched, opts)
	f.eng.now = func() time.Time { return f.clock }
	return f
}

func grid(rows, cols int) [][]string {
	out := make([][]string, rows)
	for r := range out {
		out[r] = make([]string, cols)
	}
	return out
}

func cells(pairs ...int) []block.Cell {
	var out []block.Cell
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, block.Cell{Row: pairs[i], Col: pairs[i+1]})
	}
	return out
}

func TestClickOpensEditing(t *testing.T) {
	f := newFixture(t, grid(2, 2), DefaultOptions())
	f.eng.PointerDown(at(1, 0), false)
	f.eng.PointerUp(at(1, 0))

	cell, ok := f.eng.Editing()
	if !ok || cell != (block.Cell{Row: 1, Col: 0}) {
		t.Fatalf("Editing = %v, %v; want (1,0)", cell, ok)
	}
}

func TestDeleteClearsDiscreteSelection(t *testing.T) {
	f := newFixture(t, [][]string{{"a", "b"}, {"c", "d"}}, DefaultOptions())
	commits := 0
	f.store.Subscribe(func(block.Snapshot) { commits++ })

	f.eng.PointerDown(at(0, 0), true)
	f.eng.PointerDown(at(1, 1), true)
	if f.eng.State() != DiscreteSelection {
		t.Fatalf("State = %s, want discrete-selection", f.eng.State())
	}
	if !f.eng.Key(KeyDelete, Caret{}) {
		t.Fatalf("Delete not consumed")
	}
	got, _ := f.store.Table("t")
	if want := [][]string{{"", "b"}, {"c", ""}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("grid = %q, want %q", got, want)
	}
	if commits != 1 {
		t.Fatalf("commits = %d, want 1", commits)
	}
}

func TestToggleRemovesMember(t *testing.T) {
	f := newFixture(t, grid(2, 2), DefaultOptions())
	f.eng.PointerDown(at(0, 1), true)
	f.eng.PointerDown(at(1, 0), true)
	f.eng.PointerDown(at(0, 1), true)
	if got := f.eng.Selection(); !reflect.DeepEqual(got, cells(1, 0)) {
		t.Fatalf("Selection = %v, want [(1,0)]", got)
	}
	f.eng.PointerDown(at(1, 0), true)
	if f.eng.State() != Idle {
		t.Fatalf("State = %s, want idle after emptying the set", f.eng.State())
	}
}

func TestDragSelectsRectangle(t *testing.T) {
	f := newFixture(t, grid(3, 3), DefaultOptions())
	f.eng.PointerDown(at(2, 2), false)
	f.eng.PointerMove(at(1, 1))
	if f.eng.State() != DraggingSelection {
		t.Fatalf("State = %s, want dragging-selection", f.eng.State())
	}
	f.eng.PointerMove(at(0, 1))
	if got := f.eng.Selection(); !reflect.DeepEqual(got, cells(0, 1, 0, 2, 1, 1, 1, 2, 2, 1, 2, 2)) {
		t.Fatalf("Selection = %v", got)
	}
	f.eng.PointerMove(at(2, 1))
	if got := f.eng.Selection(); !reflect.DeepEqual(got, cells(2, 1, 2, 2)) {
		t.Fatalf("Selection after shrink = %v", got)
	}
	f.eng.PointerUp(at(2, 1))
	if f.eng.State() != Idle || len(f.eng.Selection()) != 2 {
		t.Fatalf("after release: state %s, selection %v", f.eng.State(), f.eng.Selection())
	}

	// A click inside the retained set edits that cell.
	f.eng.PointerDown(at(2, 2), false)
	f.eng.PointerUp(at(2, 2))
	if cell, ok := f.eng.Editing(); !ok || cell != (block.Cell{Row: 2, Col: 2}) {
		t.Fatalf("Editing = %v, %v; want (2,2)", cell, ok)
	}
	if len(f.eng.Selection()) != 0 {
		t.Fatalf("selection not cleared")
	}
}

func TestClickOutsideRetainedSelectionClears(t *testing.T) {
	f := newFixture(t, grid(3, 3), DefaultOptions())
	f.eng.PointerDown(at(0, 0), false)
	f.eng.PointerMove(at(1, 1))
	f.eng.PointerUp(at(1, 1))

	f.eng.PointerDown(at(2, 2), false)
	f.eng.PointerUp(at(2, 2))
	if f.eng.State() != Idle || len(f.eng.Selection()) != 0 {
		t.Fatalf("state %s, selection %v; want idle and empty", f.eng.State(), f.eng.Selection())
	}
}

func TestHoldStartsDragWithinDistance(t *testing.T) {
	opts := DefaultOptions()
	opts.DragDistance = 20
	f := newFixture(t, grid(1, 3), opts)

	f.eng.PointerDown(at(0, 0), false)
	f.eng.PointerMove(at(0, 1))
	if f.eng.State() == DraggingSelection {
		t.Fatalf("drag started before hold elapsed")
	}
	f.clock = f.clock.Add(200 * time.Millisecond)
	f.eng.PointerMove(at(0, 1))
	if f.eng.State() != DraggingSelection {
		t.Fatalf("State = %s, want dragging-selection", f.eng.State())
	}
}

func TestEscapeAndSelectAll(t *testing.T) {
	f := newFixture(t, grid(2, 2), DefaultOptions())
	if f.eng.Key(KeySelectAll, Caret{}) {
		t.Fatalf("select-all consumed without a selection")
	}
	f.eng.PointerDown(at(0, 0), true)
	if !f.eng.Key(KeySelectAll, Caret{}) {
		t.Fatalf("select-all not consumed")
	}
	if got := f.eng.Selection(); !reflect.DeepEqual(got, cells(0, 0, 0, 1, 1, 0, 1, 1)) {
		t.Fatalf("Selection = %v", got)
	}
	if !f.eng.Key(KeyEscape, Caret{}) || len(f.eng.Selection()) != 0 || f.eng.State() != Idle {
		t.Fatalf("escape did not clear selection")
	}
	if f.eng.Key(KeyDelete, Caret{}) {
		t.Fatalf("Delete consumed without selection")
	}
}

func TestTabAndEnterNavigation(t *testing.T) {
	f := newFixture(t, grid(2, 2), DefaultOptions())
	f.eng.Focus(block.Cell{Row: 1, Col: 0})

	steps := []struct {
		key  Key
		want block.Cell
		rows int
	}{
		{KeyTab, block.Cell{Row: 1, Col: 1}, 2},
		{KeyTab, block.Cell{Row: 2, Col: 0}, 3},
		{KeyBacktab, block.Cell{Row: 1, Col: 1}, 3},
		{KeyEnter, block.Cell{Row: 2, Col: 1}, 3},
		{KeyEnter, block.Cell{Row: 3, Col: 1}, 4},
	}
	for i, step := range steps {
		if !f.eng.Key(step.key, Caret{}) {
			t.Fatalf("step %d: key not consumed", i)
		}
		cell, _ := f.eng.Editing()
		if cell != step.want {
			t.Fatalf("step %d: Editing = %v, want %v", i, cell, step.want)
		}
		if rows, _ := f.store.TableSize("t"); rows != step.rows {
			t.Fatalf("step %d: rows = %d, want %d", i, rows, step.rows)
		}
	}

	f.eng.Focus(block.Cell{})
	if !f.eng.Key(KeyBacktab, Caret{}) {
		t.Fatalf("Backtab at first cell not consumed")
	}
	if cell, _ := f.eng.Editing(); cell != (block.Cell{}) {
		t.Fatalf("Backtab at first cell moved to %v", cell)
	}
}

func TestArrowsNeedCaretAtEdge(t *testing.T) {
	f := newFixture(t, grid(2, 2), DefaultOptions())
	f.eng.Focus(block.Cell{Row: 0, Col: 0})

	if f.eng.Key(KeyRight, Caret{Text: "ab", Offset: 1}) {
		t.Fatalf("Right moved with caret mid-text")
	}
	if !f.eng.Key(KeyRight, Caret{Text: "ab", Offset: 2}) {
		t.Fatalf("Right at end not consumed")
	}
	if f.eng.Key(KeyRight, Caret{}) {
		t.Fatalf("Right past last column consumed")
	}
	if f.eng.Key(KeyDown, Caret{Text: "a\nb", Offset: 1}) {
		t.Fatalf("Down moved from first of two lines")
	}
	if !f.eng.Key(KeyDown, Caret{Text: "a\nb", Offset: 3}) {
		t.Fatalf("Down on last line not consumed")
	}
	if !f.eng.Key(KeyLeft, Caret{Text: "x", Offset: 0}) {
		t.Fatalf("Left at start not consumed")
	}
	if !f.eng.Key(KeyUp, Caret{Text: "héllo", Offset: 2}) {
		t.Fatalf("Up on single line not consumed")
	}
	if cell, _ := f.eng.Editing(); cell != (block.Cell{Row: 0, Col: 0}) {
		t.Fatalf("Editing = %v, want (0,0)", cell)
	}
}

func TestAutoScrollWhileDraggingNearEdge(t *testing.T) {
	f := newFixture(t, grid(1, 10), DefaultOptions())
	f.eng.PointerDown(at(0, 0), false)
	f.eng.PointerMove(geom.Point{X: 15, Y: 0.5})
	if f.eng.Scrolling() {
		t.Fatalf("scrolling outside the margin")
	}

	f.eng.PointerMove(geom.Point{X: 29.5, Y: 0.5})
	if f.sched.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", f.sched.Pending())
	}
	f.sched.Step()
	if f.view.offset != 8 {
		t.Fatalf("offset = %v, want 8", f.view.offset)
	}
	if sel := f.eng.Selection(); sel[len(sel)-1] != (block.Cell{Row: 0, Col: 3}) {
		t.Fatalf("selection end = %v, want (0,3)", sel[len(sel)-1])
	}
	f.sched.Step()
	if f.view.offset != 16 {
		t.Fatalf("offset = %v, want 16", f.view.offset)
	}

	f.eng.PointerMove(geom.Point{X: 15, Y: 0.5})
	if f.eng.Scrolling() || f.sched.Step() != 0 {
		t.Fatalf("auto-scroll kept running after leaving the margin")
	}

	f.eng.PointerMove(geom.Point{X: 1.5, Y: 0.5})
	f.eng.PointerUp(geom.Point{X: 1.5, Y: 0.5})
	if f.sched.Step() != 0 || f.view.offset != 16 {
		t.Fatalf("auto-scroll ran after release")
	}
}

func TestAutoScrollSpeedFallsWithDistance(t *testing.T) {
	f := newFixture(t, grid(1, 10), DefaultOptions())
	f.eng.PointerDown(at(0, 0), false)
	f.eng.PointerMove(geom.Point{X: 29, Y: 0.5})
	near := f.eng.velocity()
	f.eng.PointerMove(geom.Point{X: 28, Y: 0.5})
	far := f.eng.velocity()
	if near != 8 || far != 4 {
		t.Fatalf("velocity near=%v far=%v, want 8 and 4", near, far)
	}
	f.eng.PointerMove(geom.Point{X: 2, Y: 0.5})
	if v := f.eng.velocity(); v != -4 {
		t.Fatalf("left velocity = %v, want -4", v)
	}
}

func TestCancelResets(t *testing.T) {
	f := newFixture(t, grid(1, 10), DefaultOptions())
	f.eng.PointerDown(at(0, 0), false)
	f.eng.PointerMove(geom.Point{X: 29.5, Y: 0.5})
	f.eng.Cancel()
	if f.eng.State() != Idle || len(f.eng.Selection()) != 0 || f.eng.Scrolling() {
		t.Fatalf("Cancel left state %s, selection %v", f.eng.State(), f.eng.Selection())
	}
	if f.sched.Step() != 0 {
		t.Fatalf("frame ran after Cancel")
	}
}
