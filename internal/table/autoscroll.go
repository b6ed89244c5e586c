package table

import "math"

// velocity is the signed scroll step for the current pointer: zero outside
// the edge margins, otherwise inversely proportional to the distance from
// the nearer edge and capped at AutoscrollSpeed.
func (e *Engine) velocity() float64 {
	if e.scroller == nil || e.opts.AutoscrollMargin <= 0 {
		return 0
	}
	v, ok := e.scroller.Viewport()
	if !ok || v.Empty() {
		return 0
	}
	margin, speed := e.opts.AutoscrollMargin, e.opts.AutoscrollSpeed
	if d := e.pointer.X - v.X; d < margin {
		return -speed / math.Max(d, 1)
	}
	if d := v.Right() - e.pointer.X; d < margin {
		return speed / math.Max(d, 1)
	}
	return 0
}

func (e *Engine) updateScroll() {
	if e.sched == nil {
		return
	}
	if e.state != DraggingSelection || e.velocity() == 0 {
		e.stopScroll()
		return
	}
	if e.cancelScroll == nil {
		e.cancelScroll = e.sched.RequestFrame(e.scrollStep)
	}
}

// scrollStep runs once per frame while the drag stays in a margin, re-arming
// itself. Scrolling moves the grid under a still pointer, so the selection
// is extended after each step.
func (e *Engine) scrollStep() {
	e.cancelScroll = nil
	if e.state != DraggingSelection {
		return
	}
	dx := e.velocity()
	if dx == 0 {
		return
	}
	e.scroller.ScrollBy(dx)
	if cell, ok := e.locator.CellAt(e.pointer); ok {
		e.selectRect(e.anchor, cell)
	}
	e.cancelScroll = e.sched.RequestFrame(e.scrollStep)
}

func (e *Engine) stopScroll() {
	if e.cancelScroll != nil {
		e.cancelScroll()
		e.cancelScroll = nil
	}
}

// Scrolling reports whether an auto-scroll loop is armed.
func (e *Engine) Scrolling() bool { return e.cancelScroll != nil }
