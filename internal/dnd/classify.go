// Package dnd implements block drag-and-drop: classifying the pointer
// against the hovered block, committing the drop through the block store,
// and the column resize session.
package dnd

import (
	"github.com/kobzarvs/qblocks/internal/block"
	"github.com/kobzarvs/qblocks/internal/geom"
)

// Zone is where a dragged block would land relative to the hovered block.
type Zone int

const (
	None Zone = iota
	ReorderAbove
	ReorderBelow
	ColumnLeft
	ColumnRight
	ExitColumn
)

func (z Zone) String() string {
	switch z {
	case ReorderAbove:
		return "reorder-above"
	case ReorderBelow:
		return "reorder-below"
	case ColumnLeft:
		return "column-left"
	case ColumnRight:
		return "column-right"
	case ExitColumn:
		return "exit-column"
	default:
		return "none"
	}
}

// Options tunes classification. LateralBand is the width of the column
// band inside each horizontal edge of the hovered block; Hysteresis is the
// half-height of the band around the vertical midpoint in which the
// previous reorder decision is kept.
type Options struct {
	LateralBand float64
	Hysteresis  float64
}

func DefaultOptions() Options {
	return Options{LateralBand: 6, Hysteresis: 0.5}
}

// Input is one drag-over sample.
type Input struct {
	Dragged block.Block
	Hovered block.Block
	// Rect is the hovered block's bounding box; HasRect is false when the
	// host could not supply it.
	Rect    geom.Rect
	HasRect bool
	Pointer geom.Point
	// InColumnRegion is the host's answer to whether the pointer is inside
	// a column layout region.
	InColumnRegion bool
	Previous       Zone
}

// Classify decides the drop zone for one sample. Missing or degenerate
// geometry always yields ReorderBelow.
func Classify(in Input, opts Options) Zone {
	if in.Dragged.ID == "" || in.Dragged.ID == in.Hovered.ID {
		return None
	}
	if !in.HasRect || in.Rect.Empty() {
		return ReorderBelow
	}
	if in.Dragged.InColumn() && !in.InColumnRegion {
		return ExitColumn
	}
	if lateralAllowed(in.Dragged, in.Hovered) {
		if z := lateral(in.Rect, in.Pointer, opts.LateralBand); z != None {
			return z
		}
	}
	return vertical(in.Rect, in.Pointer, opts.Hysteresis, in.Previous)
}

func lateralAllowed(dragged, hovered block.Block) bool {
	return !dragged.IsColumn && !hovered.IsColumn && !dragged.InColumn() && !hovered.InColumn()
}

func lateral(r geom.Rect, p geom.Point, band float64) Zone {
	if band <= 0 || p.X < r.X || p.X > r.Right() {
		return None
	}
	left := p.X - r.X
	right := r.Right() - p.X
	inLeft, inRight := left <= band, right <= band
	switch {
	case inLeft && inRight:
		// Narrow block: both bands overlap, nearest edge wins.
		if left < right {
			return ColumnLeft
		}
		if right < left {
			return ColumnRight
		}
		return None
	case inLeft:
		return ColumnLeft
	case inRight:
		return ColumnRight
	}
	return None
}

func vertical(r geom.Rect, p geom.Point, hysteresis float64, previous Zone) Zone {
	mid := r.MidY()
	switch {
	case p.Y < mid-hysteresis:
		return ReorderAbove
	case p.Y > mid+hysteresis:
		return ReorderBelow
	case previous == ReorderAbove || previous == ReorderBelow:
		return previous
	}
	return ReorderBelow
}

// side maps a reorder or exit decision to the store's Side.
func side(z Zone, r geom.Rect, hasRect bool, p geom.Point) block.Side {
	switch z {
	case ReorderAbove:
		return block.Before
	case ExitColumn:
		if hasRect && p.Y < r.MidY() {
			return block.Before
		}
	}
	return block.After
}
