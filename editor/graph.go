// Package editor is the in-memory graph store behind the workflow canvas. It
// exclusively owns the node and edge lists, hands out copies only, and keeps a
// linear undo/redo history made of full snapshots.
package editor

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/log"
)

// DefaultName is given to graphs that were never renamed.
const DefaultName = "Untitled Workflow"

// Graph is the workflow graph store. It is safe for concurrent use.
type Graph struct {
	mu sync.RWMutex

	name    string
	catalog canvas.Catalog
	nodes   []canvas.Node
	edges   []canvas.Edge

	history *history

	width   float64
	height  float64
	acyclic bool
	newID   func(prefix string) string
	logger  *zap.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithNodeSize sets the size given to new nodes whose tool has none.
func WithNodeSize(width, height float64) Option {
	return func(g *Graph) {
		if width > 0 {
			g.width = width
		}
		if height > 0 {
			g.height = height
		}
	}
}

// WithAcyclic makes AddEdge reject connections that would close a cycle.
func WithAcyclic(on bool) Option {
	return func(g *Graph) { g.acyclic = on }
}

// WithIDGenerator replaces the uuid based id scheme.
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(g *Graph) { g.newID = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Graph) { g.logger = log.Component(l, "editor") }
}

// WithName sets the initial workflow name.
func WithName(name string) Option {
	return func(g *Graph) {
		if name != "" {
			g.name = name
		}
	}
}

// New creates an empty graph over the given catalog and records the empty
// state as the first history entry.
func New(catalog canvas.Catalog, opts ...Option) *Graph {
	g := &Graph{
		name:    DefaultName,
		catalog: catalog.Clone(),
		nodes:   []canvas.Node{},
		edges:   []canvas.Edge{},
		history: &history{},
		width:   canvas.DefaultNodeWidth,
		height:  canvas.DefaultNodeHeight,
		newID:   func(prefix string) string { return prefix + "-" + uuid.NewString() },
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.history.push(g.nodes, g.edges)
	return g
}

// Name returns the workflow name.
func (g *Graph) Name() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.name
}

// Rename changes the workflow name. Names are not part of history.
func (g *Graph) Rename(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if name == "" {
		name = DefaultName
	}
	g.name = name
}

// Catalog returns a copy of the tool catalog.
func (g *Graph) Catalog() canvas.Catalog {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.catalog.Clone()
}

// Nodes returns a copy of the node list in insertion order.
func (g *Graph) Nodes() []canvas.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return canvas.CloneNodes(g.nodes)
}

// Edges returns a copy of the edge list in insertion order.
func (g *Graph) Edges() []canvas.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return canvas.CloneEdges(g.edges)
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (canvas.Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	i := g.nodeIndex(id)
	if i < 0 {
		return canvas.Node{}, canvas.ErrNodeNotFound
	}
	return g.nodes[i].Clone(), nil
}

// Edge returns a copy of the edge with the given id.
func (g *Graph) Edge(id string) (canvas.Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	i := g.edgeIndex(id)
	if i < 0 {
		return canvas.Edge{}, canvas.ErrEdgeNotFound
	}
	return g.edges[i].Clone(), nil
}

// Outgoing returns the edges leaving the node, in insertion order.
func (g *Graph) Outgoing(id string) []canvas.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := []canvas.Edge{}
	for _, e := range g.edges {
		if e.From == id {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Sources returns the ids of nodes without incoming edges.
func (g *Graph) Sources() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return canvas.Sources(g.nodes, g.edges)
}

// AddNode places a new instance of a catalog tool at pos and returns it.
func (g *Graph) AddNode(toolID string, pos canvas.Position) (canvas.Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	tool, ok := g.catalog.Lookup(toolID)
	if !ok {
		return canvas.Node{}, fmt.Errorf("%w: %q", canvas.ErrUnknownTool, toolID)
	}

	n := canvas.Node{
		ID:     g.newID("canvas"),
		ToolID: tool.ID,
		X:      pos.X,
		Y:      pos.Y,
		Width:  g.width,
		Height: g.height,
		Label:  "New " + tool.Name,
		Config: map[string]any{},
	}
	if tool.Width > 0 {
		n.Width = tool.Width
	}
	if tool.Height > 0 {
		n.Height = tool.Height
	}

	g.nodes = append(g.nodes, n)
	g.commit()
	g.logger.Debug("node added", zap.String(log.KeyNodeID, n.ID), zap.String(log.KeyToolID, tool.ID))
	return n.Clone(), nil
}

// MoveNode repositions a node. It does not record history so a drag can call
// it on every pointer move; call Snapshot when the drag ends.
func (g *Graph) MoveNode(id string, pos canvas.Position) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.nodeIndex(id)
	if i < 0 {
		return canvas.ErrNodeNotFound
	}
	g.nodes[i].X, g.nodes[i].Y = pos.X, pos.Y
	return nil
}

// UpdateNodeLabel replaces the label of a node.
func (g *Graph) UpdateNodeLabel(id, label string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.nodeIndex(id)
	if i < 0 {
		return canvas.ErrNodeNotFound
	}
	g.nodes[i].Label = label
	g.commit()
	return nil
}

// UpdateNodeConfig merges patch into the node's configuration key by key.
func (g *Graph) UpdateNodeConfig(id string, patch map[string]any) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.nodeIndex(id)
	if i < 0 {
		return canvas.ErrNodeNotFound
	}
	cfg := canvas.CloneConfig(g.nodes[i].Config)
	for k, v := range canvas.CloneConfig(patch) {
		cfg[k] = v
	}
	g.nodes[i].Config = cfg
	g.commit()
	return nil
}

// DeleteNode removes a node together with every edge that touches it.
func (g *Graph) DeleteNode(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.nodeIndex(id)
	if i < 0 {
		return canvas.ErrNodeNotFound
	}

	edges := make([]canvas.Edge, 0, len(g.edges))
	for _, e := range g.edges {
		if e.From != id && e.To != id {
			edges = append(edges, e)
		}
	}
	removed := len(g.edges) - len(edges)

	g.nodes = append(g.nodes[:i:i], g.nodes[i+1:]...)
	g.edges = edges
	g.commit()
	g.logger.Debug("node deleted", zap.String(log.KeyNodeID, id), zap.Int("edgesRemoved", removed))
	return nil
}

// AddEdge connects two node anchors. An identical connection already present
// yields ErrDuplicateEdge and leaves the graph untouched.
func (g *Graph) AddEdge(from string, fromPoint canvas.Anchor, to string, toPoint canvas.Anchor) (canvas.Edge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !fromPoint.Valid() || !toPoint.Valid() {
		return canvas.Edge{}, canvas.ErrInvalidAnchor
	}
	if from == to {
		return canvas.Edge{}, canvas.ErrSelfLoop
	}
	if g.nodeIndex(from) < 0 || g.nodeIndex(to) < 0 {
		return canvas.Edge{}, canvas.ErrNodeNotFound
	}

	e := canvas.Edge{
		From:      from,
		FromPoint: fromPoint,
		To:        to,
		ToPoint:   toPoint,
		Config:    canvas.EdgeConfig{Transformations: []canvas.Transformation{}},
	}
	key := e.Key()
	for _, existing := range g.edges {
		if existing.Key() == key {
			return canvas.Edge{}, canvas.ErrDuplicateEdge
		}
	}

	if g.acyclic {
		candidate := append(append([]canvas.Edge(nil), g.edges...), e)
		if err := canvas.ValidateAcyclic(g.nodes, candidate); err != nil {
			return canvas.Edge{}, err
		}
	}

	e.ID = g.newID("conn")
	g.edges = append(g.edges, e)
	g.commit()
	g.logger.Debug("edge added", zap.String(log.KeyEdgeID, e.ID),
		zap.String("from", from), zap.String("to", to))
	return e.Clone(), nil
}

// UpdateEdgeConfig replaces the configuration of an edge.
func (g *Graph) UpdateEdgeConfig(id string, cfg canvas.EdgeConfig) error {
	return g.mutateEdge(id, func(e *canvas.Edge) error {
		e.Config = cfg.Clone()
		return nil
	})
}

// AddTransformation appends a transformation step to an edge.
func (g *Graph) AddTransformation(id string, t canvas.Transformation) error {
	if t.Type == "" {
		return fmt.Errorf("editor: transformation type is required")
	}
	return g.mutateEdge(id, func(e *canvas.Edge) error {
		cfg := e.Config.Clone()
		cfg.Transformations = append(cfg.Transformations, canvas.Transformation{
			Type:   t.Type,
			Params: canvas.CloneConfig(t.Params),
		})
		e.Config = cfg
		return nil
	})
}

// RemoveTransformation drops the transformation at index from an edge.
func (g *Graph) RemoveTransformation(id string, index int) error {
	return g.mutateEdge(id, func(e *canvas.Edge) error {
		if index < 0 || index >= len(e.Config.Transformations) {
			return fmt.Errorf("editor: transformation index %d out of range", index)
		}
		cfg := e.Config.Clone()
		cfg.Transformations = append(cfg.Transformations[:index], cfg.Transformations[index+1:]...)
		e.Config = cfg
		return nil
	})
}

// DeleteEdge removes an edge.
func (g *Graph) DeleteEdge(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.edgeIndex(id)
	if i < 0 {
		return canvas.ErrEdgeNotFound
	}
	g.edges = append(g.edges[:i:i], g.edges[i+1:]...)
	g.commit()
	return nil
}

// Load replaces the whole graph in one step, as done by import. Nothing
// changes when the new content fails validation.
func (g *Graph) Load(name string, catalog canvas.Catalog, nodes []canvas.Node, edges []canvas.Edge) error {
	if err := canvas.CheckIntegrity(nodes, edges); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.acyclic {
		if err := canvas.ValidateAcyclic(nodes, edges); err != nil {
			return err
		}
	}

	if name == "" {
		name = DefaultName
	}
	g.name = name
	g.catalog = catalog.Clone()
	g.nodes = canvas.CloneNodes(nodes)
	g.edges = canvas.CloneEdges(edges)
	for i := range g.edges {
		if g.edges[i].ID == "" {
			g.edges[i].ID = g.newID("conn")
		}
	}
	g.commit()
	g.logger.Info("workflow loaded", zap.String("name", name),
		zap.Int("nodes", len(nodes)), zap.Int("edges", len(edges)))
	return nil
}

// Snapshot records the current state as a new history entry, discarding any
// redo tail.
func (g *Graph) Snapshot() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.commit()
}

// Undo restores the previous history entry. It reports false at the head.
func (g *Graph) Undo() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.history.undo()
	if !ok {
		return false
	}
	g.restore(s)
	return true
}

// Redo restores the next history entry. It reports false at the tail.
func (g *Graph) Redo() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.history.redo()
	if !ok {
		return false
	}
	g.restore(s)
	return true
}

// CanUndo reports whether Undo would change the graph.
func (g *Graph) CanUndo() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.history.cursor > 0
}

// CanRedo reports whether Redo would change the graph.
func (g *Graph) CanRedo() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.history.cursor < len(g.history.entries)-1
}

func (g *Graph) mutateEdge(id string, fn func(e *canvas.Edge) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.edgeIndex(id)
	if i < 0 {
		return canvas.ErrEdgeNotFound
	}
	e := g.edges[i]
	if err := fn(&e); err != nil {
		return err
	}
	g.edges[i] = e
	g.commit()
	return nil
}

// commit must be called with mu held.
func (g *Graph) commit() {
	g.history.push(g.nodes, g.edges)
}

func (g *Graph) restore(s snapshot) {
	g.nodes = canvas.CloneNodes(s.nodes)
	g.edges = canvas.CloneEdges(s.edges)
}

func (g *Graph) nodeIndex(id string) int {
	for i := range g.nodes {
		if g.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (g *Graph) edgeIndex(id string) int {
	for i := range g.edges {
		if g.edges[i].ID == id {
			return i
		}
	}
	return -1
}
