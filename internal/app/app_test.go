package app

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qblocks/internal/block"
	"github.com/kobzarvs/qblocks/internal/config"
	"github.com/kobzarvs/qblocks/internal/frame"
	"github.com/kobzarvs/qblocks/internal/highlight"
	"github.com/kobzarvs/qblocks/internal/table"
)

func para(id, content string) block.Block {
	return block.Block{ID: id, Type: block.TypeParagraph, Content: content}
}

func newTestView(t *testing.T, w, h int, blocks ...block.Block) (*view, *frame.Manual, tcell.SimulationScreen) {
	t.Helper()
	store, err := block.New("Notes", blocks, block.Options{CodeLanguage: "javascript"})
	if err != nil {
		t.Fatalf("block.New: %v", err)
	}
	s := tcell.NewSimulationScreen("UTF-8")
	if err := s.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(s.Fini)
	s.SetSize(w, h)
	sched := &frame.Manual{}
	v := newView(config.Default(), store, highlight.Default(), sched)
	v.width, v.height = w, h
	v.relayout()
	return v, sched, s
}

func row(v *view, s tcell.SimulationScreen, y int) string {
	v.draw(s)
	s.Show()
	cells, w, _ := s.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) == 0 {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(c.Runes[0])
	}
	return b.String()
}

func key(v *view, k tcell.Key) {
	v.handle(tcell.NewEventKey(k, 0, tcell.ModNone))
}

func typeText(v *view, text string) {
	for _, r := range text {
		v.handle(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func press(v *view, x, y int) {
	v.handle(tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
}

func release(v *view, x, y int) {
	v.handle(tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone))
}

func contents(v *view) []string {
	var out []string
	for _, b := range v.store.Blocks() {
		if !b.IsColumn {
			out = append(out, b.Content)
		}
	}
	return out
}

func ids(v *view) string {
	var out []string
	for _, b := range v.store.Blocks() {
		out = append(out, b.ID)
	}
	return strings.Join(out, ",")
}

func TestRenderBlocks(t *testing.T) {
	v, _, s := newTestView(t, 40, 10,
		block.Block{ID: "h", Type: block.TypeHeading1, Content: "Intro"},
		block.Block{ID: "l", Type: block.TypeBullet, Content: "item"},
		block.Block{ID: "t", Type: block.TypeTodo, Content: "done", Checked: true},
		block.Block{ID: "d", Type: block.TypeDivider},
	)
	cases := []struct {
		y    int
		want string
	}{
		{0, "Notes"},
		{2, "Intro"},
		{3, "• item"},
		{4, "[x] done"},
		{5, "────"},
		{9, "qblocks"},
	}
	for _, c := range cases {
		if got := row(v, s, c.y); !strings.Contains(got, c.want) {
			t.Fatalf("row %d = %q, want %q", c.y, got, c.want)
		}
	}
}

func TestEmptyParagraphPlaceholder(t *testing.T) {
	v, _, s := newTestView(t, 40, 6, para("p", ""))
	if got := row(v, s, 2); !strings.Contains(got, placeholder) {
		t.Fatalf("row 2 = %q, want placeholder", got)
	}
}

func TestTypingAndEnter(t *testing.T) {
	v, _, _ := newTestView(t, 40, 10, para("p", ""))
	typeText(v, "hi")
	key(v, tcell.KeyEnter)
	typeText(v, "x")

	got := contents(v)
	if len(got) != 2 || got[0] != "hi" || got[1] != "x" {
		t.Fatalf("contents = %q, want [hi x]", got)
	}
	if cur := v.store.Cursor(); cur.BlockID == "p" || cur.Offset != 1 {
		t.Fatalf("cursor = %+v, want second block offset 1", cur)
	}
}

func TestEnterSplitsAtCaret(t *testing.T) {
	v, _, _ := newTestView(t, 40, 10, para("p", "hello"))
	v.store.SetCursor(block.Cursor{BlockID: "p", Offset: 2})
	key(v, tcell.KeyEnter)
	if got := contents(v); len(got) != 2 || got[0] != "he" || got[1] != "llo" {
		t.Fatalf("contents = %q, want [he llo]", got)
	}
}

func TestEnterOnEmptyListItemEndsList(t *testing.T) {
	v, _, _ := newTestView(t, 40, 10, block.Block{ID: "l", Type: block.TypeBullet})
	key(v, tcell.KeyEnter)
	b, _ := v.store.Block("l")
	if b.Type != block.TypeParagraph || v.store.Len() != 1 {
		t.Fatalf("type = %s len = %d, want paragraph and 1 block", b.Type, v.store.Len())
	}
}

func TestBackspaceMergesIntoPrevious(t *testing.T) {
	v, _, _ := newTestView(t, 40, 10, para("a", "ab"), para("b", "cd"))
	v.store.SetCursor(block.Cursor{BlockID: "b"})
	key(v, tcell.KeyBackspace2)
	if got := contents(v); len(got) != 1 || got[0] != "abcd" {
		t.Fatalf("contents = %q, want [abcd]", got)
	}
	if cur := v.store.Cursor(); cur.BlockID != "a" || cur.Offset != 2 {
		t.Fatalf("cursor = %+v, want a@2", cur)
	}
}

func TestTabIndents(t *testing.T) {
	v, _, _ := newTestView(t, 40, 10, para("p", "x"))
	key(v, tcell.KeyTab)
	key(v, tcell.KeyTab)
	key(v, tcell.KeyBacktab)
	if b, _ := v.store.Block("p"); b.Indent != 1 {
		t.Fatalf("indent = %d, want 1", b.Indent)
	}
}

func TestSlashMenuRetypes(t *testing.T) {
	v, _, s := newTestView(t, 50, 12, para("p", ""))
	typeText(v, "/")
	if v.menu == nil {
		t.Fatalf("menu not opened")
	}
	typeText(v, "h2")
	if got := row(v, s, 4); !strings.Contains(got, "Heading 2") {
		t.Fatalf("menu row = %q, want Heading 2", got)
	}
	key(v, tcell.KeyEnter)

	b, _ := v.store.Block("p")
	if v.menu != nil || b.Type != block.TypeHeading2 || b.Content != "" {
		t.Fatalf("menu=%v type=%s content=%q", v.menu != nil, b.Type, b.Content)
	}
}

func TestStatusShowsBlockKind(t *testing.T) {
	v, _, s := newTestView(t, 40, 8, para("p", "x"))
	if got := row(v, s, 7); !strings.HasSuffix(strings.TrimRight(got, " "), "Text") {
		t.Fatalf("status = %q, want Text", got)
	}
	v.store.Retype("p", block.TypeQuote)
	if got := row(v, s, 7); !strings.Contains(got, "Quote") {
		t.Fatalf("status = %q, want Quote", got)
	}
}

func TestSlashMenuBackspaceCloses(t *testing.T) {
	v, _, _ := newTestView(t, 50, 12, para("p", ""))
	typeText(v, "/q")
	key(v, tcell.KeyBackspace2)
	key(v, tcell.KeyBackspace2)
	if v.menu != nil {
		t.Fatalf("menu still open")
	}
	if b, _ := v.store.Block("p"); b.Type != block.TypeParagraph {
		t.Fatalf("type = %s, want paragraph", b.Type)
	}
}

func TestDragHandleReorders(t *testing.T) {
	v, _, _ := newTestView(t, 40, 10, para("a", "A"), para("b", "B"), para("c", "C"))
	press(v, 0, 2)
	press(v, 10, 4)
	release(v, 10, 4)
	if got := ids(v); got != "b,c,a" {
		t.Fatalf("order = %s, want b,c,a", got)
	}
}

func TestDragShowsZoneInStatus(t *testing.T) {
	v, _, s := newTestView(t, 40, 10, para("a", "A"), para("b", "B"))
	press(v, 0, 2)
	press(v, 10, 3)
	if got := row(v, s, 9); !strings.Contains(got, "drag: reorder-below") {
		t.Fatalf("status = %q", got)
	}
}

func TestEscapeCancelsDrag(t *testing.T) {
	v, _, _ := newTestView(t, 40, 10, para("a", "A"), para("b", "B"), para("c", "C"))
	press(v, 0, 2)
	press(v, 10, 4)
	key(v, tcell.KeyEscape)
	release(v, 10, 4)
	if got := ids(v); got != "a,b,c" {
		t.Fatalf("order = %s, want a,b,c", got)
	}
	if v.drag.Active() {
		t.Fatalf("drag still active")
	}
}

func TestDragToEdgeCreatesColumns(t *testing.T) {
	v, _, _ := newTestView(t, 40, 10, para("a", "A"), para("b", "B"))
	press(v, 0, 3)
	press(v, 3, 2)
	release(v, 3, 2)

	blocks := v.store.Blocks()
	if len(blocks) != 3 || !blocks[0].IsColumn {
		t.Fatalf("blocks = %+v, want a container first", blocks)
	}
	cols := v.store.Columns(blocks[0].ID)
	if len(cols) != 2 || cols[0][0].ID != "b" || cols[1][0].ID != "a" {
		t.Fatalf("columns = %+v, want [b] [a]", cols)
	}
	if w := blocks[0].ColumnWidths; w[0] != 50 || w[1] != 50 {
		t.Fatalf("widths = %v, want [50 50]", w)
	}
}

func TestDragOutOfColumn(t *testing.T) {
	v, _, _ := newTestView(t, 42, 10, para("a", "A"), para("b", "B"), para("c", "C"))
	if _, ok := v.store.MakeColumns("a", "b", block.Left); !ok {
		t.Fatalf("MakeColumns failed")
	}
	v.relayout()

	press(v, 2, 2)
	press(v, 10, 3)
	release(v, 10, 3)

	blocks := v.store.Blocks()
	for _, b := range blocks {
		if b.IsColumn || b.InColumn() {
			t.Fatalf("column left behind: %+v", b)
		}
	}
	if last := blocks[len(blocks)-1]; last.ID != "b" {
		t.Fatalf("order = %s, want b last", ids(v))
	}
}

func TestDividerResize(t *testing.T) {
	v, sched, _ := newTestView(t, 42, 10, para("a", "A"), para("b", "B"))
	cid, ok := v.store.MakeColumns("a", "b", block.Right)
	if !ok {
		t.Fatalf("MakeColumns failed")
	}
	v.relayout()
	if d := v.lay.dividers[cid]; d != 22 {
		t.Fatalf("divider at %d, want 22", d)
	}

	press(v, 22, 2)
	press(v, 30, 2)
	if sched.Step() != 1 {
		t.Fatalf("resize sample not applied on frame")
	}
	release(v, 30, 2)

	c, _ := v.store.Block(cid)
	if c.ColumnWidths[0] < 71 || c.ColumnWidths[0] > 72 {
		t.Fatalf("widths = %v, want about [71.25 28.75]", c.ColumnWidths)
	}
	if v.lay.dividers[cid] <= 22 {
		t.Fatalf("divider did not move: %d", v.lay.dividers[cid])
	}
}

func TestEscapeRestoresColumnWidths(t *testing.T) {
	v, sched, _ := newTestView(t, 42, 10, para("a", "A"), para("b", "B"))
	cid, _ := v.store.MakeColumns("a", "b", block.Right)
	v.relayout()

	press(v, 22, 2)
	press(v, 35, 2)
	sched.Step()
	key(v, tcell.KeyEscape)
	release(v, 35, 2)

	c, _ := v.store.Block(cid)
	if c.ColumnWidths[0] != 50 || c.ColumnWidths[1] != 50 {
		t.Fatalf("widths = %v, want [50 50]", c.ColumnWidths)
	}
}

func tableBlock(id string) block.Block {
	return block.Block{ID: id, Type: block.TypeTable, TableData: [][]string{{"a", "b"}, {"c", "d"}}}
}

func TestTableClickEditsCell(t *testing.T) {
	v, _, s := newTestView(t, 40, 10, tableBlock("t"))
	press(v, 17, 3)
	release(v, 17, 3)

	tv := v.tables["t"]
	if cell, ok := tv.eng.Editing(); !ok || cell != (block.Cell{Row: 0, Col: 1}) {
		t.Fatalf("editing = %+v %v, want (0,1)", cell, ok)
	}
	typeText(v, "z")
	grid, _ := v.store.Table("t")
	if grid[0][1] != "bz" {
		t.Fatalf("cell = %q, want bz", grid[0][1])
	}
	if got := row(v, s, 3); !strings.Contains(got, "bz") {
		t.Fatalf("row 3 = %q, want bz", got)
	}
}

func TestTableDragSelectAndDelete(t *testing.T) {
	v, _, _ := newTestView(t, 40, 10, tableBlock("t"))
	press(v, 4, 3)
	press(v, 17, 5)
	release(v, 17, 5)

	tv := v.tables["t"]
	if n := len(tv.eng.Selection()); n != 4 {
		t.Fatalf("selection = %d cells, want 4", n)
	}
	key(v, tcell.KeyDelete)
	grid, _ := v.store.Table("t")
	for _, r := range grid {
		for _, c := range r {
			if c != "" {
				t.Fatalf("grid = %q, want all empty", grid)
			}
		}
	}
}

func TestTableTabAddsRow(t *testing.T) {
	v, _, _ := newTestView(t, 40, 12, tableBlock("t"))
	press(v, 17, 5)
	release(v, 17, 5)
	key(v, tcell.KeyTab)

	rows, _ := v.store.TableSize("t")
	cell, _ := v.tables["t"].eng.Editing()
	if rows != 3 || cell != (block.Cell{Row: 2, Col: 0}) {
		t.Fatalf("rows = %d editing = %+v, want 3 rows at (2,0)", rows, cell)
	}
}

func TestTableStructureKeys(t *testing.T) {
	v, _, _ := newTestView(t, 60, 14, tableBlock("t"))
	press(v, 17, 3)
	release(v, 17, 3)

	steps := []struct {
		k          tcell.Key
		rows, cols int
		cell       block.Cell
	}{
		{tcell.KeyCtrlO, 2, 3, block.Cell{Row: 0, Col: 2}},
		{tcell.KeyCtrlR, 3, 3, block.Cell{Row: 1, Col: 2}},
		{tcell.KeyCtrlX, 3, 2, block.Cell{Row: 1, Col: 1}},
		{tcell.KeyCtrlD, 2, 2, block.Cell{Row: 1, Col: 1}},
	}
	for _, st := range steps {
		key(v, st.k)
		rows, cols := v.store.TableSize("t")
		cell, _ := v.tables["t"].eng.Editing()
		if rows != st.rows || cols != st.cols || cell != st.cell {
			t.Fatalf("after %v: %dx%d editing %+v, want %dx%d editing %+v",
				st.k, rows, cols, cell, st.rows, st.cols, st.cell)
		}
	}
	grid, _ := v.store.Table("t")
	if grid[0][0] != "a" || grid[0][1] != "b" || grid[1][0] != "c" || grid[1][1] != "d" {
		t.Fatalf("grid = %v, want original cells", grid)
	}

	key(v, tcell.KeyCtrlD)
	key(v, tcell.KeyCtrlD)
	if rows, _ := v.store.TableSize("t"); rows != 1 {
		t.Fatalf("rows = %d, want 1", rows)
	}
	if !strings.Contains(v.message, "at least one row") {
		t.Fatalf("message = %q", v.message)
	}
}

func TestArrowIntoTableFocusesFirstCell(t *testing.T) {
	v, _, _ := newTestView(t, 40, 12, para("p", "x"), tableBlock("t"))
	key(v, tcell.KeyDown)
	tv, ok := v.activeTable()
	if !ok || tv.eng.State() != table.Editing {
		t.Fatalf("table not focused")
	}
	if cell, _ := tv.eng.Editing(); cell != (block.Cell{}) {
		t.Fatalf("editing = %+v, want (0,0)", cell)
	}
}

func TestCodeBlockHighlighted(t *testing.T) {
	v, _, s := newTestView(t, 40, 6, block.Block{ID: "c", Type: block.TypeCode, Content: "return 1", CodeLanguage: "javascript"})
	v.draw(s)
	s.Show()
	cells, w, _ := s.GetContents()
	fg, _, _ := cells[2*w+2].Style.Decompose()
	want := parseColor(config.Default().Theme.SyntaxKeyword, tcell.ColorDefault)
	if fg != want {
		t.Fatalf("keyword color = %v, want %v", fg, want)
	}
	if got := row(v, s, 2); !strings.Contains(got, "javascript") {
		t.Fatalf("row 2 = %q, want language tag", got)
	}
}

func TestTitleEditing(t *testing.T) {
	v, _, _ := newTestView(t, 40, 10, para("p", ""))
	press(v, 5, 0)
	release(v, 5, 0)
	typeText(v, "!")
	key(v, tcell.KeyEnter)
	typeText(v, "x")
	if v.store.Title() != "Notes!" {
		t.Fatalf("title = %q, want Notes!", v.store.Title())
	}
	if b, _ := v.store.Block("p"); b.Content != "x" {
		t.Fatalf("content = %q, want x", b.Content)
	}
}

func TestSaveReportsStatus(t *testing.T) {
	v, _, s := newTestView(t, 40, 6, para("p", ""))
	saved := 0
	v.save = func() error { saved++; return nil }
	key(v, tcell.KeyCtrlS)
	if saved != 1 {
		t.Fatalf("save called %d times", saved)
	}
	if got := row(v, s, 5); !strings.Contains(got, "saved") {
		t.Fatalf("status = %q, want saved", got)
	}
}

func TestQuit(t *testing.T) {
	v, _, _ := newTestView(t, 40, 6, para("p", ""))
	key(v, tcell.KeyCtrlQ)
	if !v.quit {
		t.Fatalf("Ctrl+Q did not quit")
	}
}
