package app

import (
	"strings"

	"github.com/kobzarvs/qblocks/internal/block"
	"github.com/kobzarvs/qblocks/internal/geom"
)

const (
	gutterWidth = 2
	indentWidth = 2
	titleRows   = 2
	cellWidth   = 12
)

type part int

const (
	partNone part = iota
	partHandle
	partText
	partDivider
	partTable
)

// placed is one block's position on screen. x and w span the whole slot
// including the gutter; rect excludes the gutter and is what drag
// classification sees.
type placed struct {
	id     string
	x, y   int
	w, h   int
	textX  int
	number int
	rect   geom.Rect
	column bool
}

type layout struct {
	placed     []placed
	byID       map[string]int
	dividers   map[string]int
	containers []geom.Rect
	tables     map[string]geom.Rect
	bottom     int
	height     int
}

func blockHeight(b block.Block) int {
	switch b.Type {
	case block.TypeTable:
		return max(len(b.TableData), 1)*2 + 1
	case block.TypeDivider:
		return 1
	}
	return strings.Count(b.Content, "\n") + 1
}

// tableWidth is the rendered width of a grid with cols columns.
func tableWidth(cols int) int {
	return cols*(cellWidth+1) + 1
}

func markerWidth(b block.Block) int {
	switch b.Type {
	case block.TypeBullet, block.TypeQuote:
		return 2
	case block.TypeNumbered:
		return 4
	case block.TypeTodo, block.TypeCallout:
		return 4
	}
	return 0
}

// buildLayout places blocks top to bottom starting at screen row top. Column
// containers split their width by ColumnWidths with a one-cell divider.
func buildLayout(blocks []block.Block, width, top int) layout {
	l := layout{
		byID:     make(map[string]int),
		dividers: make(map[string]int),
		tables:   make(map[string]geom.Rect),
	}
	y := top
	var n numbering
	for i := 0; i < len(blocks); {
		b := blocks[i]
		if b.IsColumn {
			end := i + 1
			for end < len(blocks) && blocks[end].ParentColumnID == b.ID {
				end++
			}
			y += l.placeColumns(b, blocks[i+1:end], 0, y, width)
			n = numbering{}
			i = end
			continue
		}
		y += l.place(b, 0, y, width, n.next(b), false)
		i++
	}
	l.bottom = y
	l.height = y - top
	return l
}

func (l *layout) place(b block.Block, x, y, w, number int, column bool) int {
	h := blockHeight(b)
	textX := x + gutterWidth + b.Indent*indentWidth
	p := placed{
		id:     b.ID,
		x:      x,
		y:      y,
		w:      w,
		h:      h,
		textX:  textX,
		number: number,
		rect:   geom.Rect{X: float64(x + gutterWidth), Y: float64(y), W: float64(max(w-gutterWidth, 1)), H: float64(h)},
		column: column,
	}
	if b.Type == block.TypeTable {
		cols := 0
		if len(b.TableData) > 0 {
			cols = len(b.TableData[0])
		}
		vw := min(tableWidth(cols), x+w-textX)
		l.tables[b.ID] = geom.Rect{X: float64(textX), Y: float64(y), W: float64(max(vw, 1)), H: float64(h)}
	}
	l.byID[b.ID] = len(l.placed)
	l.placed = append(l.placed, p)
	return h
}

// placeColumns lays children out side by side and returns the container's
// height. The container keeps its own gutter handle; its rect covers the
// area right of it. The container is placed before its children so hit
// testing, which walks backwards, prefers a child.
func (l *layout) placeColumns(c block.Block, children []block.Block, x, y, w int) int {
	first := 50.0
	if len(c.ColumnWidths) == 2 {
		first = c.ColumnWidths[0]
	}
	innerX, innerW := x+gutterWidth, max(w-gutterWidth, 2*gutterWidth+3)
	leftW := int(float64(innerW) * first / 100)
	leftW = min(max(leftW, gutterWidth+1), innerW-gutterWidth-2)
	divider := innerX + leftW

	idx := len(l.placed)
	l.byID[c.ID] = idx
	l.placed = append(l.placed, placed{id: c.ID, x: x, y: y, w: w, textX: innerX})
	l.dividers[c.ID] = divider

	heights := [2]int{}
	var nums [2]numbering
	for _, ch := range children {
		col := ch.Column()
		if col < 0 || col > 1 {
			continue
		}
		cx, cw := innerX, leftW
		if col == 1 {
			cx, cw = divider+1, innerX+innerW-divider-1
		}
		heights[col] += l.place(ch, cx, y+heights[col], cw, nums[col].next(ch), true)
	}
	h := max(heights[0], heights[1], 1)
	p := &l.placed[idx]
	p.h = h
	p.rect = geom.Rect{X: float64(innerX), Y: float64(y), W: float64(innerW), H: float64(h)}
	l.containers = append(l.containers, p.rect)
	return h
}

// numbering counts consecutive numbered-list blocks per indent level.
type numbering struct {
	counts [block.MaxIndent + 1]int
}

func (n *numbering) next(b block.Block) int {
	if b.Type != block.TypeNumbered {
		for i := b.Indent; i < len(n.counts); i++ {
			n.counts[i] = 0
		}
		return 0
	}
	for i := b.Indent + 1; i < len(n.counts); i++ {
		n.counts[i] = 0
	}
	n.counts[b.Indent]++
	return n.counts[b.Indent]
}

// BlockRect satisfies dnd.Geometry.
func (l *layout) BlockRect(id string) (geom.Rect, bool) {
	i, ok := l.byID[id]
	if !ok {
		return geom.Rect{}, false
	}
	return l.placed[i].rect, true
}

func (l *layout) at(id string) (placed, bool) {
	i, ok := l.byID[id]
	if !ok {
		return placed{}, false
	}
	return l.placed[i], true
}

// hit returns the block under the cell (x, y) and which part of it was hit.
func (l *layout) hit(x, y int) (placed, part) {
	for i := len(l.placed) - 1; i >= 0; i-- {
		p := l.placed[i]
		if y < p.y || y >= p.y+p.h || x < p.x || x >= p.x+p.w {
			continue
		}
		if d, ok := l.dividers[p.id]; ok {
			if x == d {
				return p, partDivider
			}
		}
		if x < p.x+gutterWidth {
			return p, partHandle
		}
		if r, ok := l.tables[p.id]; ok && r.Contains(cellPoint(x, y)) {
			return p, partTable
		}
		return p, partText
	}
	return placed{}, partNone
}

func (l *layout) inColumnRegion(p geom.Point) bool {
	for _, r := range l.containers {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// cellPoint is the center of the terminal cell (x, y).
func cellPoint(x, y int) geom.Point {
	return geom.Point{X: float64(x) + 0.5, Y: float64(y) + 0.5}
}
