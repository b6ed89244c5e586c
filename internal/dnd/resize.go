package dnd

import (
	"github.com/kobzarvs/qblocks/internal/block"
	"github.com/kobzarvs/qblocks/internal/frame"
	"github.com/kobzarvs/qblocks/internal/logger"
)

// Resizer is the part of the block store a resize touches.
type Resizer interface {
	Block(id string) (block.Block, bool)
	SetColumnWidth(containerID string, pct float64) bool
	SetColumnWidths(containerID string, widths []float64) bool
}

// ResizeSession drags the divider of a two-column container. Pointer
// samples are coalesced to one width update per frame; each applied sample
// is persisted immediately, so there is nothing to commit on release.
type ResizeSession struct {
	store Resizer
	geo   Geometry
	sched frame.Scheduler

	active    bool
	container string
	original  []float64
	left      float64
	width     float64

	pending    bool
	pendingX   float64
	cancelTick func()
}

func NewResizeSession(store Resizer, geo Geometry, sched frame.Scheduler) *ResizeSession {
	return &ResizeSession{store: store, geo: geo, sched: sched}
}

// Start begins resizing containerID. The container's bounding box at start
// is the reference for converting pointer X to a percentage.
func (r *ResizeSession) Start(containerID string) bool {
	if r.active {
		return false
	}
	c, ok := r.store.Block(containerID)
	if !ok || !c.IsColumn || len(c.ColumnWidths) != 2 {
		return false
	}
	rect, ok := r.geo.BlockRect(containerID)
	if !ok || rect.W <= 0 {
		return false
	}
	r.active = true
	r.container = containerID
	r.original = append([]float64(nil), c.ColumnWidths...)
	r.left, r.width = rect.X, rect.W
	logger.Debug("resize start", "container", containerID)
	return true
}

// Sample records a pointer X; the latest sample is applied on the next
// frame.
func (r *ResizeSession) Sample(x float64) {
	if !r.active {
		return
	}
	r.pendingX = x
	if r.pending {
		return
	}
	r.pending = true
	r.cancelTick = r.sched.RequestFrame(r.apply)
}

func (r *ResizeSession) apply() {
	if !r.active || !r.pending {
		return
	}
	r.pending = false
	r.cancelTick = nil
	r.store.SetColumnWidth(r.container, Percent(r.pendingX, r.left, r.width))
}

// Stop applies any pending sample and ends the session.
func (r *ResizeSession) Stop() {
	if !r.active {
		return
	}
	if r.cancelTick != nil {
		r.cancelTick()
	}
	r.apply()
	r.reset()
}

// Cancel ends the session and restores the widths captured at Start.
func (r *ResizeSession) Cancel() {
	if !r.active {
		return
	}
	if r.cancelTick != nil {
		r.cancelTick()
	}
	r.store.SetColumnWidths(r.container, r.original)
	logger.Debug("resize cancel", "container", r.container)
	r.reset()
}

func (r *ResizeSession) Active() bool      { return r.active }
func (r *ResizeSession) Container() string { return r.container }

func (r *ResizeSession) reset() {
	r.active = false
	r.container = ""
	r.original = nil
	r.pending = false
	r.cancelTick = nil
}

// Percent converts a pointer X inside a container spanning [left,
// left+width) to the first column's clamped width.
func Percent(x, left, width float64) float64 {
	if width <= 0 {
		return 50
	}
	return block.ClampColumnWidth((x - left) * 100 / width)
}
