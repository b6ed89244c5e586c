package app

import (
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qblocks/internal/block"
	"github.com/kobzarvs/qblocks/internal/geom"
	"github.com/kobzarvs/qblocks/internal/logger"
	"github.com/kobzarvs/qblocks/internal/table"
)

func (v *view) handleKey(ev *tcell.EventKey) {
	v.message = ""
	switch ev.Key() {
	case tcell.KeyCtrlQ:
		v.quit = true
		return
	case tcell.KeyCtrlS:
		v.saveNow()
		return
	case tcell.KeyEscape:
		switch {
		case v.drag.Active():
			v.drag.Cancel()
			v.press = pressNone
			return
		case v.resize.Active():
			v.resize.Cancel()
			v.press = pressNone
			return
		case v.menu != nil:
			v.menu = nil
			return
		}
	}
	if v.menu != nil && v.menuKey(ev) {
		return
	}
	if v.titleFocus {
		v.titleKey(ev)
		return
	}
	if tv, ok := v.activeTable(); ok && v.tableKey(tv, ev) {
		tv.reveal()
		v.follow()
		return
	}
	v.textKey(ev)
	v.follow()
}

func (v *view) saveNow() {
	if v.save == nil {
		return
	}
	if err := v.save(); err != nil {
		logger.Error("save failed", "error", err)
		v.message = "save failed: " + err.Error()
		return
	}
	v.message = "saved"
}

func (v *view) menuKey(ev *tcell.EventKey) bool {
	m := v.menu
	switch ev.Key() {
	case tcell.KeyUp, tcell.KeyBacktab:
		m.move(-1)
	case tcell.KeyDown, tcell.KeyTab:
		m.move(1)
	case tcell.KeyEnter:
		v.menu = nil
		e, ok := m.selected()
		if !ok || !v.store.Retype(m.blockID, e.Type) {
			return true
		}
		logger.Debug("slash command", "block", m.blockID, "type", e.Type)
		if e.Type == block.TypeTable {
			v.enterTable(m.blockID, false)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if m.query == "" {
			v.menu = nil
			return true
		}
		_, size := utf8.DecodeLastRuneInString(m.query)
		m.query = m.query[:len(m.query)-size]
		m.refresh()
	case tcell.KeyRune:
		m.query += string(ev.Rune())
		m.refresh()
	default:
		v.menu = nil
		return false
	}
	return true
}

func (v *view) titleKey(ev *tcell.EventKey) {
	title := v.store.Title()
	switch ev.Key() {
	case tcell.KeyRune:
		v.store.SetTitle(title + string(ev.Rune()))
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if title != "" {
			_, size := utf8.DecodeLastRuneInString(title)
			v.store.SetTitle(title[:len(title)-size])
		}
	case tcell.KeyEnter, tcell.KeyDown, tcell.KeyEscape, tcell.KeyTab:
		v.titleFocus = false
		if blocks := v.contentBlocks(); len(blocks) > 0 {
			v.enter(blocks[0].ID, false, 0)
		}
	}
}

func tableKeyFor(ev *tcell.EventKey) table.Key {
	switch ev.Key() {
	case tcell.KeyTab:
		return table.KeyTab
	case tcell.KeyBacktab:
		return table.KeyBacktab
	case tcell.KeyEnter:
		return table.KeyEnter
	case tcell.KeyLeft:
		return table.KeyLeft
	case tcell.KeyRight:
		return table.KeyRight
	case tcell.KeyUp:
		return table.KeyUp
	case tcell.KeyDown:
		return table.KeyDown
	case tcell.KeyEscape:
		return table.KeyEscape
	case tcell.KeyDelete:
		return table.KeyDelete
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return table.KeyBackspace
	case tcell.KeyCtrlA:
		return table.KeySelectAll
	}
	return table.KeyNone
}

// tableKey routes a key to the focused table: navigation and selection go
// through the engine first, the rest edits the cell under the caret. It
// reports whether the key was consumed.
func (v *view) tableKey(tv *tableView, ev *tcell.EventKey) bool {
	before, _ := tv.eng.Editing()
	_, text, editing := tv.cellText()
	k := tableKeyFor(ev)
	if k != table.KeyNone && tv.eng.Key(k, table.Caret{Text: text, Offset: tv.caret}) {
		if after, ok := tv.eng.Editing(); ok && (after != before || !editing) {
			if k == table.KeyRight {
				tv.caret = 0
			} else {
				tv.caretToEnd()
			}
		}
		return true
	}
	if !editing {
		if ev.Key() == tcell.KeyEnter && tv.eng.State() == table.Idle {
			v.enterTable(tv.id, false)
			return true
		}
		return false
	}
	cell, _ := tv.eng.Editing()
	switch ev.Key() {
	case tcell.KeyRune:
		next, off := insertText(text, tv.caret, string(ev.Rune()))
		if v.store.SetCell(tv.id, cell, next) {
			tv.caret = off
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if next, off, ok := deleteBefore(text, tv.caret); ok && v.store.SetCell(tv.id, cell, next) {
			tv.caret = off
		}
	case tcell.KeyDelete:
		if next, ok := deleteAt(text, tv.caret); ok {
			v.store.SetCell(tv.id, cell, next)
		}
	case tcell.KeyLeft:
		tv.caret = max(tv.caret-1, 0)
	case tcell.KeyRight:
		tv.caret = min(tv.caret+1, utf8.RuneCountInString(text))
	case tcell.KeyHome:
		tv.caret = 0
	case tcell.KeyEnd:
		tv.caret = utf8.RuneCountInString(text)
	case tcell.KeyUp:
		tv.eng.Cancel()
		v.step(-1)
	case tcell.KeyDown:
		tv.eng.Cancel()
		v.step(1)
	case tcell.KeyCtrlR, tcell.KeyCtrlO, tcell.KeyCtrlD, tcell.KeyCtrlX:
		v.reshapeTable(tv, cell, ev.Key())
	default:
		return false
	}
	return true
}

// reshapeTable adds or removes the row or column at the edited cell and
// keeps editing the nearest surviving cell.
func (v *view) reshapeTable(tv *tableView, cell block.Cell, k tcell.Key) {
	next := cell
	var ok bool
	switch k {
	case tcell.KeyCtrlR:
		ok = v.store.AddRow(tv.id, cell.Row+1)
		next.Row++
	case tcell.KeyCtrlO:
		ok = v.store.AddColumn(tv.id, cell.Col+1)
		next.Col++
	case tcell.KeyCtrlD:
		ok = v.store.DeleteRow(tv.id, cell.Row)
	case tcell.KeyCtrlX:
		ok = v.store.DeleteColumn(tv.id, cell.Col)
	}
	if !ok {
		v.message = "table needs at least one row and column"
		return
	}
	rows, cols := v.store.TableSize(tv.id)
	next.Row = min(next.Row, rows-1)
	next.Col = min(next.Col, cols-1)
	if tv.eng.Focus(next) {
		tv.caretToEnd()
	}
}

func isText(t block.Type) bool {
	return t != block.TypeTable && t != block.TypeDivider && t != block.TypeColumns
}

func isList(t block.Type) bool {
	return t == block.TypeBullet || t == block.TypeNumbered || t == block.TypeTodo
}

func (v *view) textKey(ev *tcell.EventKey) {
	cur := v.store.Cursor()
	b, ok := v.store.Block(cur.BlockID)
	if !ok {
		return
	}
	id, content, off := b.ID, b.Content, cur.Offset

	switch ev.Key() {
	case tcell.KeyCtrlQ, tcell.KeyCtrlS:
		return
	case tcell.KeyUp:
		line, col := lineCol(content, off)
		if isText(b.Type) && line > 0 {
			v.store.SetCursor(block.Cursor{BlockID: id, Offset: offsetAt(content, line-1, col)})
			return
		}
		v.step(-1)
		return
	case tcell.KeyDown:
		line, col := lineCol(content, off)
		if isText(b.Type) && line < lineCount(content)-1 {
			v.store.SetCursor(block.Cursor{BlockID: id, Offset: offsetAt(content, line+1, col)})
			return
		}
		v.step(1)
		return
	case tcell.KeyLeft:
		if off > 0 {
			v.store.SetCursor(block.Cursor{BlockID: id, Offset: off - 1})
			return
		}
		v.stepTo(-1, true)
		return
	case tcell.KeyRight:
		if off < utf8.RuneCountInString(content) {
			v.store.SetCursor(block.Cursor{BlockID: id, Offset: off + 1})
			return
		}
		v.stepTo(1, false)
		return
	case tcell.KeyHome:
		line, _ := lineCol(content, off)
		v.store.SetCursor(block.Cursor{BlockID: id, Offset: offsetAt(content, line, 0)})
		return
	case tcell.KeyEnd:
		line, _ := lineCol(content, off)
		v.store.SetCursor(block.Cursor{BlockID: id, Offset: offsetAt(content, line, 1<<30)})
		return
	case tcell.KeyTab:
		v.store.SetIndent(id, 1)
		return
	case tcell.KeyBacktab:
		v.store.SetIndent(id, -1)
		return
	case tcell.KeyCtrlK:
		v.store.Delete(id)
		return
	case tcell.KeyCtrlT:
		if b.Type == block.TypeTodo {
			v.store.SetChecked(id, !b.Checked)
		}
		return
	case tcell.KeyCtrlL:
		if b.Type == block.TypeCode {
			v.store.SetCodeLanguage(id, v.nextLanguage(b.CodeLanguage))
		}
		return
	}

	if !isText(b.Type) {
		switch ev.Key() {
		case tcell.KeyEnter:
			if b.Type == block.TypeTable {
				v.enterTable(id, false)
				return
			}
			v.store.InsertAfter(id, block.TypeParagraph)
		case tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyDelete:
			v.store.Delete(id)
		}
		return
	}

	switch ev.Key() {
	case tcell.KeyRune:
		r := ev.Rune()
		if r == '/' && content == "" && b.Type != block.TypeCode && b.Type != block.TypeMath {
			v.menu = newSlashMenu(id)
			return
		}
		next, noff := insertText(content, off, string(r))
		if v.store.Update(id, next) {
			v.store.SetCursor(block.Cursor{BlockID: id, Offset: noff})
		}
	case tcell.KeyEnter:
		v.enterKey(b, off)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		v.backspace(b, off)
	case tcell.KeyDelete:
		if next, ok := deleteAt(content, off); ok {
			v.store.Update(id, next)
		}
	}
}

// enterKey splits the block at the caret. Code and math take a newline
// instead; a second Enter on an empty last line leaves the block.
func (v *view) enterKey(b block.Block, off int) {
	r := []rune(b.Content)
	off = min(max(off, 0), len(r))
	if b.Type == block.TypeCode || b.Type == block.TypeMath {
		if off == len(r) && strings.HasSuffix(b.Content, "\n") {
			v.store.Update(b.ID, strings.TrimSuffix(b.Content, "\n"))
			v.store.InsertAfter(b.ID, block.TypeParagraph)
			return
		}
		next, noff := insertText(b.Content, off, "\n")
		if v.store.Update(b.ID, next) {
			v.store.SetCursor(block.Cursor{BlockID: b.ID, Offset: noff})
		}
		return
	}
	if isList(b.Type) && b.Content == "" {
		v.store.Retype(b.ID, block.TypeParagraph)
		return
	}
	t := block.TypeParagraph
	if isList(b.Type) {
		t = b.Type
	}
	before, after := string(r[:off]), string(r[off:])
	id, ok := v.store.InsertAfter(b.ID, t)
	if !ok {
		return
	}
	if after != "" {
		v.store.Update(b.ID, before)
		v.store.Update(id, after)
	}
}

// backspace at offset 0 unwinds the block: outdent, then back to a
// paragraph, then merge into the previous block.
func (v *view) backspace(b block.Block, off int) {
	if off > 0 {
		if next, noff, ok := deleteBefore(b.Content, off); ok && v.store.Update(b.ID, next) {
			v.store.SetCursor(block.Cursor{BlockID: b.ID, Offset: noff})
		}
		return
	}
	switch {
	case b.Indent > 0:
		v.store.SetIndent(b.ID, -1)
		return
	case b.Type != block.TypeParagraph:
		v.store.Retype(b.ID, block.TypeParagraph)
		return
	}
	prev, ok := v.neighbor(b.ID, -1)
	if !ok {
		return
	}
	switch {
	case prev.Type == block.TypeDivider:
		v.store.Delete(prev.ID)
	case !isText(prev.Type):
		if b.Content == "" {
			v.store.Delete(b.ID)
		}
	default:
		joined := utf8.RuneCountInString(prev.Content)
		if b.Content != "" && !v.store.Update(prev.ID, prev.Content+b.Content) {
			return
		}
		v.store.Delete(b.ID)
		v.store.SetCursor(block.Cursor{BlockID: prev.ID, Offset: joined})
	}
}

func (v *view) nextLanguage(current string) string {
	langs := v.reg.Languages()
	if len(langs) == 0 {
		return current
	}
	current = v.reg.Resolve(current)
	for i, l := range langs {
		if l == current {
			return langs[(i+1)%len(langs)]
		}
	}
	return langs[0]
}

// contentBlocks lists every block the caret can sit in, in document order.
func (v *view) contentBlocks() []block.Block {
	var out []block.Block
	for _, b := range v.store.Blocks() {
		if !b.IsColumn {
			out = append(out, b)
		}
	}
	return out
}

func (v *view) neighbor(id string, d int) (block.Block, bool) {
	blocks := v.contentBlocks()
	for i, b := range blocks {
		if b.ID == id {
			j := i + d
			if j < 0 || j >= len(blocks) {
				return block.Block{}, false
			}
			return blocks[j], true
		}
	}
	return block.Block{}, false
}

// step moves the caret to the adjacent block, keeping the column when
// moving between text blocks.
func (v *view) step(d int) {
	cur := v.store.Cursor()
	col := 0
	if b, ok := v.store.Block(cur.BlockID); ok && isText(b.Type) {
		_, col = lineCol(b.Content, cur.Offset)
	}
	next, ok := v.neighbor(cur.BlockID, d)
	if !ok {
		if d < 0 {
			v.cancelTables("")
			v.titleFocus = true
		}
		return
	}
	v.enter(next.ID, d < 0, col)
}

// stepTo moves to the adjacent block's start or end.
func (v *view) stepTo(d int, atEnd bool) {
	cur := v.store.Cursor()
	next, ok := v.neighbor(cur.BlockID, d)
	if !ok {
		return
	}
	if atEnd {
		v.enter(next.ID, true, 1<<30)
		return
	}
	v.enter(next.ID, false, 0)
}

// enter places the caret in id. fromBelow picks the last line (or the last
// table row); col is the column to keep.
func (v *view) enter(id string, fromBelow bool, col int) {
	b, ok := v.store.Block(id)
	if !ok {
		return
	}
	v.cancelTables(id)
	if b.Type == block.TypeTable {
		v.enterTable(id, fromBelow)
		return
	}
	line := 0
	if fromBelow {
		line = lineCount(b.Content) - 1
	}
	v.store.SetCursor(block.Cursor{BlockID: id, Offset: offsetAt(b.Content, line, col)})
}

func (v *view) enterTable(id string, fromBelow bool) {
	v.cancelTables(id)
	if !v.store.SetCursor(block.Cursor{BlockID: id}) {
		return
	}
	tv := v.tableFor(id)
	cell := block.Cell{}
	if fromBelow {
		rows, _ := v.store.TableSize(id)
		cell.Row = max(rows-1, 0)
	}
	if tv.eng.Focus(cell) {
		tv.caretToEnd()
		tv.reveal()
	}
}

func (v *view) handleMouse(ev *tcell.EventMouse) {
	v.relayout()
	x, y := ev.Position()
	p := cellPoint(x, y)
	btn := ev.Buttons()

	switch {
	case btn&tcell.WheelUp != 0:
		v.scrollBy(-1)
		return
	case btn&tcell.WheelDown != 0:
		v.scrollBy(1)
		return
	case btn&(tcell.WheelLeft|tcell.WheelRight) != 0:
		if hit, pt := v.lay.hit(x, y); pt == partTable {
			dx := float64(cellWidth)
			if btn&tcell.WheelLeft != 0 {
				dx = -dx
			}
			v.tableFor(hit.id).ScrollBy(dx)
		}
		return
	}

	down := btn&tcell.Button1 != 0
	switch {
	case down && !v.mouseDown:
		v.mouseDown = true
		v.pointerDown(x, y, ev.Modifiers())
	case down:
		v.pointerMove(x, y)
	case v.mouseDown:
		v.mouseDown = false
		v.pointerUp(p)
	}
}

func (v *view) pointerDown(x, y int, mods tcell.ModMask) {
	v.message = ""
	v.press = pressNone
	p := cellPoint(x, y)
	if y < titleRows-1 && y >= 0 {
		v.menu = nil
		v.cancelTables("")
		v.titleFocus = true
		return
	}
	hit, pt := v.lay.hit(x, y)
	if pt == partNone {
		return
	}
	v.titleFocus = false
	switch pt {
	case partHandle:
		v.menu = nil
		if v.drag.Start(hit.id) {
			v.press = pressDrag
		}
	case partDivider:
		if v.resize.Start(hit.id) {
			v.press = pressResize
		}
	case partTable:
		v.menu = nil
		v.cancelTables(hit.id)
		v.store.SetCursor(block.Cursor{BlockID: hit.id})
		tv := v.tableFor(hit.id)
		tv.eng.PointerDown(p, mods&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) != 0)
		v.press = pressTable
		v.pressTable = hit.id
	case partText:
		v.menu = nil
		v.clickText(hit, x, y)
	}
}

// clickText puts the caret under the pointer. A click on a to-do box
// toggles it.
func (v *view) clickText(hit placed, x, y int) {
	b, ok := v.store.Block(hit.id)
	if !ok || b.IsColumn {
		return
	}
	v.cancelTables(b.ID)
	if b.Type == block.TypeTable {
		v.enterTable(b.ID, false)
		return
	}
	if b.Type == block.TypeTodo && x >= hit.textX && x < hit.textX+3 {
		v.store.SetChecked(b.ID, !b.Checked)
	}
	col := x - hit.textX - markerWidth(b)
	v.store.SetCursor(block.Cursor{BlockID: b.ID, Offset: offsetAt(b.Content, y-hit.y, col)})
}

func (v *view) pointerMove(x, y int) {
	p := cellPoint(x, y)
	switch v.press {
	case pressDrag:
		hit, pt := v.lay.hit(x, y)
		if pt == partNone {
			v.drag.Leave()
			return
		}
		v.drag.Over(hit.id, p, v.lay.inColumnRegion(p))
	case pressResize:
		v.resize.Sample(p.X)
	case pressTable:
		if tv, ok := v.tables[v.pressTable]; ok {
			tv.eng.PointerMove(p)
		}
	}
}

func (v *view) pointerUp(p geom.Point) {
	kind := v.press
	v.press = pressNone
	switch kind {
	case pressDrag:
		res, ok := v.drag.Drop()
		if !ok {
			return
		}
		v.message = "moved " + res.Zone.String()
		if b, ok := v.store.Block(res.DraggedID); ok && !b.IsColumn {
			v.store.SetCursor(block.Cursor{BlockID: b.ID})
		}
	case pressResize:
		v.resize.Stop()
	case pressTable:
		tv, ok := v.tables[v.pressTable]
		if !ok {
			return
		}
		tv.eng.PointerUp(p)
		if _, editing := tv.eng.Editing(); editing {
			tv.caretToEnd()
		}
	}
}
