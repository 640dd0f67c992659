// Package interaction turns pointer events on the canvas into graph store
// operations. The controller is a small state machine; it never touches node or
// edge lists directly and goes through the editor.Graph API instead.
package interaction

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/editor"
	"github.com/meikuraledutech/canvas/geometry"
	"github.com/meikuraledutech/canvas/log"
)

// ErrInvalidTransition is returned for events the current state does not accept.
var ErrInvalidTransition = errors.New("interaction: event not allowed in current state")

// NoticeDuplicate is recorded when a connection gesture repeats an existing edge.
const NoticeDuplicate = "connection already exists"

// State of the controller.
type State int

const (
	Idle State = iota
	DraggingNewNode
	DraggingExistingNode
	ConnectingFrom
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case DraggingNewNode:
		return "dragging-new-node"
	case DraggingExistingNode:
		return "dragging-existing-node"
	case ConnectingFrom:
		return "connecting-from"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Endpoint is one side of a connection gesture.
type Endpoint struct {
	NodeID string
	Anchor canvas.Anchor
}

// Selection holds at most one selected node or edge.
type Selection struct {
	NodeID string
	EdgeID string
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool { return s.NodeID == "" && s.EdgeID == "" }

type dragState struct {
	nodeID string
	offset geometry.Point
	moved  bool
}

// Controller is safe for concurrent use, though events are expected to arrive
// one at a time from a single input source.
type Controller struct {
	mu sync.Mutex

	graph  *editor.Graph
	view   geometry.Viewport
	state  State
	toolID string
	drag   dragState
	from   Endpoint
	cursor canvas.Position
	sel    Selection
	notice string
	logger *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithViewport replaces the default viewport.
func WithViewport(v geometry.Viewport) Option {
	return func(c *Controller) { c.view = v }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = log.Component(l, "interaction") }
}

// New creates an idle controller driving g.
func New(g *editor.Graph, opts ...Option) *Controller {
	c := &Controller{
		graph:  g,
		view:   geometry.NewViewport(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selection returns the current selection.
func (c *Controller) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// Pending returns the origin of an in-progress connection gesture.
func (c *Controller) Pending() (Endpoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.from, c.state == ConnectingFrom
}

// Cursor returns the last pointer position in canvas space, used to draw the
// provisional connection line.
func (c *Controller) Cursor() canvas.Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// Viewport returns the current viewport.
func (c *Controller) Viewport() geometry.Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// SetOrigin records where the canvas sits in client space.
func (c *Controller) SetOrigin(p geometry.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Origin = p
}

// Notice returns and clears the last non-fatal notice.
func (c *Controller) Notice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.notice
	c.notice = ""
	return n
}

// PaletteDown starts dragging a new node of the given tool.
func (c *Controller) PaletteDown(toolID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return fmt.Errorf("%w: palette drag while %s", ErrInvalidTransition, c.state)
	}
	if _, ok := c.graph.Catalog().Lookup(toolID); !ok {
		return fmt.Errorf("%w: %q", canvas.ErrUnknownTool, toolID)
	}
	c.toolID = toolID
	c.state = DraggingNewNode
	return nil
}

// Drop places the dragged tool at the client position and selects the new node.
func (c *Controller) Drop(client geometry.Point) (canvas.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != DraggingNewNode {
		return canvas.Node{}, fmt.Errorf("%w: drop while %s", ErrInvalidTransition, c.state)
	}
	toolID := c.toolID
	c.toolID = ""
	c.state = Idle

	n, err := c.graph.AddNode(toolID, c.view.ToCanvas(client))
	if err != nil {
		return canvas.Node{}, err
	}
	c.sel = Selection{NodeID: n.ID}
	return n, nil
}

// CancelDrag abandons a palette drag that left the canvas.
func (c *Controller) CancelDrag() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == DraggingNewNode {
		c.toolID = ""
		c.state = Idle
	}
}

// NodeDown starts repositioning a node. It is meant for presses on the node
// body; presses on anchors go through AnchorClick.
func (c *Controller) NodeDown(nodeID string, client geometry.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return fmt.Errorf("%w: node press while %s", ErrInvalidTransition, c.state)
	}
	n, err := c.graph.Node(nodeID)
	if err != nil {
		return err
	}
	scale := c.view.Scale
	if scale <= 0 {
		scale = 1
	}
	c.drag = dragState{
		nodeID: nodeID,
		offset: geometry.Point{
			X: client.X - c.view.Origin.X - n.X*scale,
			Y: client.Y - c.view.Origin.Y - n.Y*scale,
		},
	}
	c.state = DraggingExistingNode
	c.sel = Selection{NodeID: nodeID}
	return nil
}

// PointerMove follows the pointer. While dragging a node it moves it without
// recording history.
func (c *Controller) PointerMove(client geometry.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cursor = c.view.ToCanvas(client)
	if c.state != DraggingExistingNode {
		return nil
	}
	pos := c.view.ToCanvas(geometry.Point{
		X: client.X - c.drag.offset.X,
		Y: client.Y - c.drag.offset.Y,
	})
	if err := c.graph.MoveNode(c.drag.nodeID, pos); err != nil {
		c.endDrag()
		return err
	}
	c.drag.moved = true
	return nil
}

// PointerUp ends a node drag, recording a single history entry if it moved.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == DraggingExistingNode {
		c.endDrag()
	}
}

// AnchorClick handles a click on a node anchor. From Idle it starts a
// connection; from ConnectingFrom on another node it completes one. created is
// false when nothing was added, including the silent duplicate case.
func (c *Controller) AnchorClick(nodeID string, anchor canvas.Anchor) (edge canvas.Edge, created bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !anchor.Valid() {
		return canvas.Edge{}, false, canvas.ErrInvalidAnchor
	}

	switch c.state {
	case Idle:
		if _, err := c.graph.Node(nodeID); err != nil {
			return canvas.Edge{}, false, err
		}
		c.from = Endpoint{NodeID: nodeID, Anchor: anchor}
		c.state = ConnectingFrom
		return canvas.Edge{}, false, nil

	case ConnectingFrom:
		if nodeID == c.from.NodeID {
			return canvas.Edge{}, false, nil
		}
		from := c.from
		c.from = Endpoint{}
		c.state = Idle

		e, err := c.graph.AddEdge(from.NodeID, from.Anchor, nodeID, anchor)
		if errors.Is(err, canvas.ErrDuplicateEdge) {
			c.notice = NoticeDuplicate
			c.logger.Debug("duplicate connection ignored",
				zap.String("from", from.NodeID), zap.String("to", nodeID))
			return canvas.Edge{}, false, nil
		}
		if err != nil {
			return canvas.Edge{}, false, err
		}
		c.sel = Selection{EdgeID: e.ID}
		return e, true, nil
	}
	return canvas.Edge{}, false, fmt.Errorf("%w: anchor click while %s", ErrInvalidTransition, c.state)
}

// CanvasClick returns to Idle from any state, dropping any pending connection
// and the selection.
func (c *Controller) CanvasClick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == DraggingExistingNode {
		c.endDrag()
	}
	c.state = Idle
	c.toolID = ""
	c.from = Endpoint{}
	c.sel = Selection{}
}

// NodeClick selects a node.
func (c *Controller) NodeClick(nodeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.graph.Node(nodeID); err != nil {
		return err
	}
	c.sel = Selection{NodeID: nodeID}
	return nil
}

// EdgeClick selects an edge.
func (c *Controller) EdgeClick(edgeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.graph.Edge(edgeID); err != nil {
		return err
	}
	c.sel = Selection{EdgeID: edgeID}
	return nil
}

// DeleteSelection deletes the selected node (with its edges) or edge.
func (c *Controller) DeleteSelection() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sel := c.sel
	c.sel = Selection{}
	switch {
	case sel.NodeID != "":
		return c.graph.DeleteNode(sel.NodeID)
	case sel.EdgeID != "":
		return c.graph.DeleteEdge(sel.EdgeID)
	}
	return nil
}

// Wheel zooms the canvas when the modifier key is held. It returns the scale
// and whether the event was consumed.
func (c *Controller) Wheel(deltaY float64, modifier bool) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !modifier {
		return c.view.Scale, false
	}
	return c.view.Zoom(deltaY), true
}

// Undo reverts the last recorded change and drops a stale selection.
func (c *Controller) Undo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ok := c.graph.Undo()
	c.pruneSelection()
	return ok
}

// Redo re-applies the last undone change and drops a stale selection.
func (c *Controller) Redo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ok := c.graph.Redo()
	c.pruneSelection()
	return ok
}

func (c *Controller) endDrag() {
	if c.drag.moved {
		c.graph.Snapshot()
		c.logger.Debug("node moved", zap.String(log.KeyNodeID, c.drag.nodeID))
	}
	c.drag = dragState{}
	c.state = Idle
}

func (c *Controller) pruneSelection() {
	if c.sel.NodeID != "" {
		if _, err := c.graph.Node(c.sel.NodeID); err != nil {
			c.sel = Selection{}
		}
	}
	if c.sel.EdgeID != "" {
		if _, err := c.graph.Edge(c.sel.EdgeID); err != nil {
			c.sel = Selection{}
		}
	}
}
