package app

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qblocks/internal/block"
	"github.com/kobzarvs/qblocks/internal/command"
	"github.com/kobzarvs/qblocks/internal/dnd"
	"github.com/kobzarvs/qblocks/internal/table"
)

const placeholder = "Type '/' for commands"

func (v *view) draw(s tcell.Screen) {
	s.Fill(' ', v.st.text)
	v.drawTitle(s)

	blocks := make(map[string]block.Block)
	for _, b := range v.store.Blocks() {
		blocks[b.ID] = b
	}
	cur := v.store.Cursor()
	for _, p := range v.lay.placed {
		b, ok := blocks[p.id]
		if !ok {
			continue
		}
		if b.IsColumn {
			v.drawContainer(s, p)
			continue
		}
		v.drawBlock(s, p, b, b.ID == cur.BlockID && !v.titleFocus)
	}
	v.drawDrop(s)
	v.drawMenu(s)
	v.drawStatus(s)
	v.placeCursor(s, blocks)
}

// put draws r if (x, y) is inside the block area and left of maxX.
func (v *view) put(s tcell.Screen, x, y, maxX int, r rune, style tcell.Style) {
	if y < titleRows || y >= titleRows+v.areaRows() || x < 0 || x >= maxX || x >= v.width {
		return
	}
	s.SetContent(x, y, r, nil, style)
}

func (v *view) text(s tcell.Screen, x, y, maxX int, str string, style tcell.Style) int {
	for _, r := range str {
		v.put(s, x, y, maxX, r, style)
		x++
	}
	return x
}

func drawLine(s tcell.Screen, x, y, maxX int, str string, style tcell.Style) int {
	for _, r := range str {
		if x >= maxX {
			break
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

func (v *view) drawTitle(s tcell.Screen) {
	title := v.store.Title()
	style := v.st.title
	if title == "" {
		title = "Untitled"
		style = v.st.muted
	}
	drawLine(s, gutterWidth, 0, v.width, title, style)
}

func (v *view) drawContainer(s tcell.Screen, p placed) {
	v.put(s, p.x, p.y, p.x+p.w, '⋮', v.st.handle)
	d, ok := v.lay.dividers[p.id]
	if !ok {
		return
	}
	style := v.st.border
	if v.resize.Active() && v.resize.Container() == p.id {
		style = v.st.drop
	}
	for y := p.y; y < p.y+p.h; y++ {
		v.put(s, d, y, d+1, '│', style)
	}
}

func marker(b block.Block, number int) string {
	switch b.Type {
	case block.TypeBullet:
		return "• "
	case block.TypeNumbered:
		return fmt.Sprintf("%-4s", fmt.Sprintf("%d.", number))
	case block.TypeTodo:
		if b.Checked {
			return "[x] "
		}
		return "[ ] "
	case block.TypeQuote:
		return "│ "
	case block.TypeCallout:
		return "(i) "
	}
	return ""
}

func (v *view) blockStyle(b block.Block) tcell.Style {
	switch b.Type {
	case block.TypeHeading1:
		return v.st.heading.Underline(true)
	case block.TypeHeading2, block.TypeHeading3:
		return v.st.heading
	case block.TypeQuote, block.TypeMath:
		return v.st.text.Italic(true)
	case block.TypeTodo:
		if b.Checked {
			return v.st.muted.StrikeThrough(true)
		}
	}
	return v.st.text
}

func (v *view) drawBlock(s tcell.Screen, p placed, b block.Block, focused bool) {
	maxX := p.x + p.w
	handle := v.st.handle
	if v.drag.Active() && v.drag.Dragged() == b.ID {
		handle = v.st.drop
	}
	v.put(s, p.x, p.y, maxX, '⋮', handle)

	switch b.Type {
	case block.TypeDivider:
		for x := p.textX; x < maxX-1; x++ {
			v.put(s, x, p.y, maxX, '─', v.st.border)
		}
		return
	case block.TypeTable:
		v.drawTable(s, p, b)
		return
	}

	x := v.text(s, p.textX, p.y, maxX, marker(b, p.number), v.st.muted)
	if b.Content == "" {
		if focused && v.menu == nil && b.Type == block.TypeParagraph {
			v.text(s, x, p.y, maxX, placeholder, v.st.muted)
		}
		return
	}
	if b.Type == block.TypeCode {
		v.drawCode(s, x, p.y, maxX, b)
		return
	}
	style := v.blockStyle(b)
	for i, line := range strings.Split(b.Content, "\n") {
		v.text(s, x, p.y+i, maxX, line, style)
	}
}

func (v *view) drawCode(s tcell.Screen, x0, y0, maxX int, b block.Block) {
	x, y := x0, y0
	for _, span := range v.reg.Spans(b.Content, b.CodeLanguage) {
		style := v.st.forClass(span.Class)
		for _, r := range span.Text {
			if r == '\n' {
				x, y = x0, y+1
				continue
			}
			if r == '\t' {
				r = ' '
			}
			v.put(s, x, y, maxX, r, style)
			x++
		}
	}
	if tag := b.CodeLanguage; tag != "" {
		v.text(s, maxX-len(tag)-1, y0, maxX, tag, v.st.muted)
	}
}

// tableRune returns the rune at virtual position (vx, vy) of a rendered
// grid and the cell it belongs to, if any.
func tableRune(grid [][]string, vx, vy int) (rune, block.Cell, bool) {
	rows := len(grid)
	cols := 0
	if rows > 0 {
		cols = len(grid[0])
	}
	stride := cellWidth + 1
	col, inner := vx/stride, vx%stride
	if vy%2 == 0 {
		if inner != 0 {
			return '─', block.Cell{}, false
		}
		line := vy / 2
		pick := func(first, mid, last rune) rune {
			switch col {
			case 0:
				return first
			case cols:
				return last
			}
			return mid
		}
		switch line {
		case 0:
			return pick('┌', '┬', '┐'), block.Cell{}, false
		case rows:
			return pick('└', '┴', '┘'), block.Cell{}, false
		}
		return pick('├', '┼', '┤'), block.Cell{}, false
	}
	if inner == 0 {
		return '│', block.Cell{}, false
	}
	cell := block.Cell{Row: (vy - 1) / 2, Col: col}
	if cell.Row >= rows || cell.Col >= cols {
		return ' ', block.Cell{}, false
	}
	text := []rune(grid[cell.Row][cell.Col])
	if i := inner - 2; i >= 0 && i < len(text) && i < cellWidth-1 {
		return text[i], cell, true
	}
	return ' ', cell, true
}

func (v *view) drawTable(s tcell.Screen, p placed, b block.Block) {
	r, ok := v.lay.tables[b.ID]
	if !ok {
		return
	}
	var eng *table.Engine
	offset := 0
	if tv, ok := v.tables[b.ID]; ok {
		eng = tv.eng
		offset = int(tv.offset)
	}
	cols := 0
	if len(b.TableData) > 0 {
		cols = len(b.TableData[0])
	}
	width := tableWidth(cols)
	x0, w := int(r.X), int(r.W)
	for vy := 0; vy < p.h; vy++ {
		for dx := 0; dx < w && offset+dx < width; dx++ {
			ch, cell, inCell := tableRune(b.TableData, offset+dx, vy)
			style := v.st.border
			if inCell {
				style = v.st.text
				if eng != nil {
					if eng.Selected(cell) {
						style = v.st.selection
					} else if c, editing := eng.Editing(); editing && c == cell {
						style = v.st.text.Underline(true)
					}
				}
			}
			v.put(s, x0+dx, p.y+vy, x0+w, ch, style)
		}
	}
	if offset > 0 {
		v.put(s, x0, p.y+p.h/2, x0+1, '‹', v.st.drop)
	}
	if offset+w < width {
		v.put(s, x0+w-1, p.y+p.h/2, x0+w, '›', v.st.drop)
	}
}

func zoneGlyph(z dnd.Zone) rune {
	switch z {
	case dnd.ReorderAbove:
		return '↑'
	case dnd.ReorderBelow:
		return '↓'
	case dnd.ColumnLeft:
		return '⇤'
	case dnd.ColumnRight:
		return '⇥'
	case dnd.ExitColumn:
		return '⇱'
	}
	return ' '
}

// drawDrop marks the pending drop target: a rule along the edge the block
// will land on, or a bar on the side a column will open.
func (v *view) drawDrop(s tcell.Screen) {
	if !v.drag.Active() {
		return
	}
	t, ok := v.drag.Target()
	if !ok || t.Zone == dnd.None {
		return
	}
	p, ok := v.lay.at(t.HoveredID)
	if !ok {
		return
	}
	maxX := p.x + p.w
	v.put(s, p.x+1, p.y, maxX, zoneGlyph(t.Zone), v.st.drop)
	switch t.Zone {
	case dnd.ColumnLeft:
		for y := p.y; y < p.y+p.h; y++ {
			v.put(s, p.x+gutterWidth, y, maxX, '▌', v.st.drop)
		}
	case dnd.ColumnRight:
		for y := p.y; y < p.y+p.h; y++ {
			v.put(s, maxX-1, y, maxX, '▐', v.st.drop)
		}
	case dnd.ReorderAbove:
		for x := p.textX; x < maxX; x++ {
			v.put(s, x, p.y-1, maxX, '▁', v.st.drop)
		}
	default:
		for x := p.textX; x < maxX; x++ {
			v.put(s, x, p.y+p.h, maxX, '▔', v.st.drop)
		}
	}
}

func (v *view) drawMenu(s tcell.Screen) {
	m := v.menu
	if m == nil {
		return
	}
	p, ok := v.lay.at(m.blockID)
	if !ok {
		return
	}
	x, y := p.textX, p.y+1
	width := 40
	rows := min(len(m.results), 8)
	first := max(m.active-rows+1, 0)
	header := "/" + m.query
	if len(m.results) == 0 {
		header += "  no matches"
	}
	line := fmt.Sprintf(" %-*s", width-1, header)
	v.text(s, x, y, x+width, line, v.st.menu)
	for i := 0; i < rows; i++ {
		idx := first + i
		e := m.results[idx].Entry
		style := v.st.menu
		if idx == m.active {
			style = v.st.menuActive
		}
		line := fmt.Sprintf(" %-14s %-*s", e.Label, width-17, e.Description)
		v.text(s, x, y+1+i, x+width, line, style)
	}
}

func (v *view) drawStatus(s tcell.Screen) {
	y := v.height - 1
	left := " qblocks"
	if v.dirty != nil && v.dirty() {
		left += " [+]"
	}
	right := v.message
	switch {
	case v.drag.Active():
		right = "drag"
		if t, ok := v.drag.Target(); ok {
			right += ": " + t.Zone.String()
		}
	case v.resize.Active():
		if c, ok := v.store.Block(v.resize.Container()); ok && len(c.ColumnWidths) == 2 {
			right = fmt.Sprintf("columns %.0f%% / %.0f%%", c.ColumnWidths[0], c.ColumnWidths[1])
		}
	default:
		if tv, ok := v.activeTable(); ok && tv.eng.State() != table.Idle && right == "" {
			right = "table: " + tv.eng.State().String()
			if n := len(tv.eng.Selection()); n > 0 {
				right += fmt.Sprintf(" (%d cells)", n)
			}
		}
		if right == "" && !v.titleFocus {
			if b, ok := v.store.Block(v.store.Cursor().BlockID); ok {
				if e, ok := command.Lookup(b.Type); ok {
					right = e.Label
				}
			}
		}
	}
	for x := 0; x < v.width; x++ {
		s.SetContent(x, y, ' ', nil, v.st.status)
	}
	drawLine(s, 0, y, v.width, left, v.st.status)
	if right != "" {
		drawLine(s, max(v.width-len([]rune(right))-1, 0), y, v.width, right, v.st.status)
	}
}

func (v *view) placeCursor(s tcell.Screen, blocks map[string]block.Block) {
	s.HideCursor()
	if v.menu != nil {
		return
	}
	if v.titleFocus {
		s.ShowCursor(gutterWidth+len([]rune(v.store.Title())), 0)
		return
	}
	cur := v.store.Cursor()
	b, ok := blocks[cur.BlockID]
	if !ok {
		return
	}
	p, ok := v.lay.at(b.ID)
	if !ok {
		return
	}
	var x, y int
	switch b.Type {
	case block.TypeDivider:
		return
	case block.TypeTable:
		tv, ok := v.tables[b.ID]
		if !ok {
			return
		}
		cell, editing := tv.eng.Editing()
		r, has := v.lay.tables[b.ID]
		if !editing || !has {
			return
		}
		x = int(r.X) + cell.Col*(cellWidth+1) + 2 + min(tv.caret, cellWidth-2) - int(tv.offset)
		y = p.y + 1 + 2*cell.Row
		if x < int(r.X) || x >= int(r.Right()) {
			return
		}
	default:
		line, col := lineCol(b.Content, cur.Offset)
		x = p.textX + len([]rune(marker(b, p.number))) + col
		y = p.y + line
	}
	if y < titleRows || y >= titleRows+v.areaRows() || x >= p.x+p.w {
		return
	}
	s.ShowCursor(x, y)
}
