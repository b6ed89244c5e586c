package dnd

import (
	"github.com/kobzarvs/qblocks/internal/block"
	"github.com/kobzarvs/qblocks/internal/geom"
	"github.com/kobzarvs/qblocks/internal/logger"
)

// Store is the part of the block store a drag mutates. *block.Store
// satisfies it.
type Store interface {
	Block(id string) (block.Block, bool)
	Move(id, targetID string, side block.Side) bool
	MakeColumns(targetID, draggedID string, edge block.Edge) (string, bool)
}

// Geometry supplies block bounding boxes on demand.
type Geometry interface {
	BlockRect(id string) (geom.Rect, bool)
}

// Target is the pending drop decision.
type Target struct {
	HoveredID string
	Zone      Zone
}

// Result describes a committed drop.
type Result struct {
	DraggedID string
	TargetID  string
	Zone      Zone
	// ContainerID is set when the drop created a column container.
	ContainerID string
}

// Controller is one drag session's owner. The store is not touched until
// Drop; Cancel or a drop without a valid target leaves it unchanged.
type Controller struct {
	store Store
	geo   Geometry
	opts  Options

	active  bool
	dragged string

	hovered string
	zone    Zone
	rect    geom.Rect
	hasRect bool
	pointer geom.Point
}

func NewController(store Store, geo Geometry, opts Options) *Controller {
	return &Controller{store: store, geo: geo, opts: opts}
}

// Start begins dragging id. It fails for unknown ids and while another
// drag is active.
func (c *Controller) Start(id string) bool {
	if c.active {
		return false
	}
	if _, ok := c.store.Block(id); !ok {
		return false
	}
	c.reset()
	c.active = true
	c.dragged = id
	logger.Debug("drag start", "id", id)
	return true
}

// Over classifies the pointer against hoverID and records the result as
// the pending target.
func (c *Controller) Over(hoverID string, p geom.Point, inColumnRegion bool) Zone {
	if !c.active {
		return None
	}
	dragged, ok := c.store.Block(c.dragged)
	if !ok {
		c.Cancel()
		return None
	}
	hovered, ok := c.store.Block(hoverID)
	if !ok {
		c.Leave()
		return None
	}
	rect, hasRect := c.geo.BlockRect(hoverID)
	zone := Classify(Input{
		Dragged:        dragged,
		Hovered:        hovered,
		Rect:           rect,
		HasRect:        hasRect,
		Pointer:        p,
		InColumnRegion: inColumnRegion,
		Previous:       c.zone,
	}, c.opts)

	c.hovered = hoverID
	c.rect, c.hasRect = rect, hasRect
	c.pointer = p
	if zone == None {
		// Hovering the dragged block itself keeps the last reorder side for
		// hysteresis but has no target.
		c.hovered = ""
		return None
	}
	c.zone = zone
	return zone
}

// Leave clears the target when the pointer is outside every block.
func (c *Controller) Leave() {
	c.hovered = ""
}

// Target returns the pending decision, if any.
func (c *Controller) Target() (Target, bool) {
	if !c.active || c.hovered == "" {
		return Target{}, false
	}
	return Target{HoveredID: c.hovered, Zone: c.zone}, true
}

// Drop commits the pending decision and ends the drag. It reports false,
// with the store untouched, when there is no valid target or the store
// rejects the mutation.
func (c *Controller) Drop() (Result, bool) {
	if !c.active {
		return Result{}, false
	}
	defer c.reset()
	if c.hovered == "" {
		logger.Debug("drop without target", "id", c.dragged)
		return Result{}, false
	}

	res := Result{DraggedID: c.dragged, TargetID: c.hovered, Zone: c.zone}
	ok := false
	switch c.zone {
	case ColumnLeft, ColumnRight:
		edge := block.Right
		if c.zone == ColumnLeft {
			edge = block.Left
		}
		res.ContainerID, ok = c.store.MakeColumns(c.hovered, c.dragged, edge)
	case ExitColumn:
		res.TargetID = c.exitAnchor(c.hovered)
		ok = c.store.Move(c.dragged, res.TargetID, side(c.zone, c.rect, c.hasRect, c.pointer))
	case ReorderAbove, ReorderBelow:
		ok = c.store.Move(c.dragged, c.hovered, side(c.zone, c.rect, c.hasRect, c.pointer))
	}
	logger.Debug("drop", "id", c.dragged, "target", res.TargetID, "zone", c.zone.String(), "ok", ok)
	return res, ok
}

// exitAnchor resolves the block a column-exit drop lands next to. A block
// that is itself in a column is replaced by its container so the dropped
// block lands at top level.
func (c *Controller) exitAnchor(id string) string {
	b, ok := c.store.Block(id)
	if ok && b.InColumn() {
		return b.ParentColumnID
	}
	return id
}

// Cancel abandons the drag without mutating the store.
func (c *Controller) Cancel() {
	if c.active {
		logger.Debug("drag cancel", "id", c.dragged)
	}
	c.reset()
}

func (c *Controller) Active() bool    { return c.active }
func (c *Controller) Dragged() string { return c.dragged }

func (c *Controller) reset() {
	c.active = false
	c.dragged = ""
	c.hovered = ""
	c.zone = None
	c.rect = geom.Rect{}
	c.hasRect = false
	c.pointer = geom.Point{}
}
