package editor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/canvas"
)

func testCatalog() canvas.Catalog {
	return canvas.Catalog{
		Tools: []canvas.Tool{
			{ID: "tool-1", Name: "Screenshot + Research Agent"},
			{ID: "tool-3", Name: "Viral Thread Generator"},
			{ID: "tool-6", Name: "Meme Creator", Width: 240, Height: 64},
		},
		SocialIntegrations: []canvas.Tool{
			{ID: "social-1", Name: "Instagram Post"},
		},
	}
}

func counterIDs() Option {
	n := 0
	return WithIDGenerator(func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	})
}

func newGraph(t *testing.T, opts ...Option) *Graph {
	t.Helper()
	return New(testCatalog(), append([]Option{counterIDs()}, opts...)...)
}

// assertIntegrity checks that no edge references a node that is gone.
func assertIntegrity(t *testing.T, g *Graph) {
	t.Helper()
	assert.NoError(t, canvas.CheckIntegrity(g.Nodes(), g.Edges()))
}

func TestAddNodeAssignsUniqueIDs(t *testing.T) {
	g := New(testCatalog())
	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		n, err := g.AddNode("tool-1", canvas.Position{X: float64(i * 10), Y: float64(i)})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(n.ID, "canvas-"))
		assert.False(t, seen[n.ID], "id %s reused", n.ID)
		seen[n.ID] = true
	}
	assert.Len(t, g.Nodes(), 25)
}

func TestAddNodeDefaults(t *testing.T) {
	g := newGraph(t, WithNodeSize(200, 50))

	n, err := g.AddNode("tool-3", canvas.Position{X: 10, Y: 20})
	require.NoError(t, err)
	assert.Equal(t, "New Viral Thread Generator", n.Label)
	assert.Equal(t, "tool-3", n.ToolID)
	assert.Equal(t, 10.0, n.X)
	assert.Equal(t, 20.0, n.Y)
	assert.Equal(t, 200.0, n.Width)
	assert.Equal(t, 50.0, n.Height)
	assert.Empty(t, n.Config)

	meme, err := g.AddNode("tool-6", canvas.Position{})
	require.NoError(t, err)
	assert.Equal(t, 240.0, meme.Width)
	assert.Equal(t, 64.0, meme.Height)

	post, err := g.AddNode("social-1", canvas.Position{})
	require.NoError(t, err)
	assert.Equal(t, "New Instagram Post", post.Label)
}

func TestAddNodeUnknownTool(t *testing.T) {
	g := newGraph(t)
	_, err := g.AddNode("tool-99", canvas.Position{})
	assert.ErrorIs(t, err, canvas.ErrUnknownTool)
	assert.Empty(t, g.Nodes())
	assert.False(t, g.CanUndo())
}

func TestReturnedNodesAreCopies(t *testing.T) {
	g := newGraph(t)
	n, err := g.AddNode("tool-1", canvas.Position{})
	require.NoError(t, err)
	require.NoError(t, g.UpdateNodeConfig(n.ID, map[string]any{"query": "cats"}))

	nodes := g.Nodes()
	nodes[0].Config["query"] = "dogs"
	nodes[0].Label = "mutated"

	got, err := g.Node(n.ID)
	require.NoError(t, err)
	assert.Equal(t, "cats", got.Config["query"])
	assert.Equal(t, "New Screenshot + Research Agent", got.Label)
}

func TestUpdateNode(t *testing.T) {
	g := newGraph(t)
	n, _ := g.AddNode("tool-1", canvas.Position{})

	require.NoError(t, g.UpdateNodeLabel(n.ID, "Research competitors"))
	require.NoError(t, g.UpdateNodeConfig(n.ID, map[string]any{"depth": 2.0}))
	require.NoError(t, g.UpdateNodeConfig(n.ID, map[string]any{"lang": "en"}))

	got, _ := g.Node(n.ID)
	assert.Equal(t, "Research competitors", got.Label)
	assert.Equal(t, map[string]any{"depth": 2.0, "lang": "en"}, got.Config)

	assert.ErrorIs(t, g.UpdateNodeLabel("missing", "x"), canvas.ErrNodeNotFound)
	assert.ErrorIs(t, g.UpdateNodeConfig("missing", nil), canvas.ErrNodeNotFound)
	assert.ErrorIs(t, g.MoveNode("missing", canvas.Position{}), canvas.ErrNodeNotFound)
}

func TestDeleteNodeCascadesEdges(t *testing.T) {
	g := newGraph(t)
	a, _ := g.AddNode("tool-1", canvas.Position{X: 0})
	b, _ := g.AddNode("tool-3", canvas.Position{X: 300})
	c, _ := g.AddNode("social-1", canvas.Position{X: 600})

	_, err := g.AddEdge(a.ID, canvas.AnchorRight, b.ID, canvas.AnchorLeft)
	require.NoError(t, err)
	_, err = g.AddEdge(b.ID, canvas.AnchorRight, c.ID, canvas.AnchorLeft)
	require.NoError(t, err)
	keep, err := g.AddEdge(a.ID, canvas.AnchorBottom, c.ID, canvas.AnchorBottom)
	require.NoError(t, err)
	assertIntegrity(t, g)

	require.NoError(t, g.DeleteNode(b.ID))
	assertIntegrity(t, g)

	assert.Len(t, g.Nodes(), 2)
	edges := g.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, keep.ID, edges[0].ID)

	assert.ErrorIs(t, g.DeleteNode(b.ID), canvas.ErrNodeNotFound)
}

func TestAddEdgeRejectsDuplicates(t *testing.T) {
	g := newGraph(t)
	a, _ := g.AddNode("tool-1", canvas.Position{})
	b, _ := g.AddNode("tool-3", canvas.Position{X: 300})

	first, err := g.AddEdge(a.ID, canvas.AnchorRight, b.ID, canvas.AnchorLeft)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.ID, "conn-"))
	assert.Empty(t, first.Config.Transformations)

	before := g.Edges()
	_, err = g.AddEdge(a.ID, canvas.AnchorRight, b.ID, canvas.AnchorLeft)
	assert.ErrorIs(t, err, canvas.ErrDuplicateEdge)
	assert.Equal(t, before, g.Edges())

	// A different anchor pair between the same nodes is a distinct connection.
	_, err = g.AddEdge(a.ID, canvas.AnchorBottom, b.ID, canvas.AnchorLeft)
	assert.NoError(t, err)
	assert.Len(t, g.Edges(), 2)
}

func TestAddEdgeValidation(t *testing.T) {
	g := newGraph(t)
	a, _ := g.AddNode("tool-1", canvas.Position{})
	b, _ := g.AddNode("tool-3", canvas.Position{})

	_, err := g.AddEdge(a.ID, canvas.AnchorRight, a.ID, canvas.AnchorLeft)
	assert.ErrorIs(t, err, canvas.ErrSelfLoop)

	_, err = g.AddEdge(a.ID, "diagonal", b.ID, canvas.AnchorLeft)
	assert.ErrorIs(t, err, canvas.ErrInvalidAnchor)

	_, err = g.AddEdge(a.ID, canvas.AnchorRight, "ghost", canvas.AnchorLeft)
	assert.ErrorIs(t, err, canvas.ErrNodeNotFound)

	assert.Empty(t, g.Edges())
}

func TestAcyclicOption(t *testing.T) {
	g := newGraph(t, WithAcyclic(true))
	a, _ := g.AddNode("tool-1", canvas.Position{})
	b, _ := g.AddNode("tool-3", canvas.Position{})

	_, err := g.AddEdge(a.ID, canvas.AnchorRight, b.ID, canvas.AnchorLeft)
	require.NoError(t, err)
	_, err = g.AddEdge(b.ID, canvas.AnchorRight, a.ID, canvas.AnchorLeft)
	assert.ErrorIs(t, err, canvas.ErrCycleDetected)
	assert.Len(t, g.Edges(), 1)

	// Without the option the same back edge is accepted.
	loose := newGraph(t)
	x, _ := loose.AddNode("tool-1", canvas.Position{})
	y, _ := loose.AddNode("tool-3", canvas.Position{})
	_, err = loose.AddEdge(x.ID, canvas.AnchorRight, y.ID, canvas.AnchorLeft)
	require.NoError(t, err)
	_, err = loose.AddEdge(y.ID, canvas.AnchorRight, x.ID, canvas.AnchorLeft)
	assert.NoError(t, err)
}

func TestEdgeConfig(t *testing.T) {
	g := newGraph(t)
	a, _ := g.AddNode("tool-1", canvas.Position{})
	b, _ := g.AddNode("tool-3", canvas.Position{})
	e, _ := g.AddEdge(a.ID, canvas.AnchorRight, b.ID, canvas.AnchorLeft)

	require.NoError(t, g.AddTransformation(e.ID, canvas.Transformation{Type: "filter"}))
	require.NoError(t, g.AddTransformation(e.ID, canvas.Transformation{Type: "delay", Params: map[string]any{"seconds": 5.0}}))
	assert.Error(t, g.AddTransformation(e.ID, canvas.Transformation{}))

	got, _ := g.Edge(e.ID)
	require.Len(t, got.Config.Transformations, 2)
	assert.Equal(t, "delay", got.Config.Transformations[1].Type)

	require.NoError(t, g.RemoveTransformation(e.ID, 0))
	assert.Error(t, g.RemoveTransformation(e.ID, 3))
	got, _ = g.Edge(e.ID)
	require.Len(t, got.Config.Transformations, 1)
	assert.Equal(t, "delay", got.Config.Transformations[0].Type)

	require.NoError(t, g.UpdateEdgeConfig(e.ID, canvas.EdgeConfig{Condition: "sentiment > 0.5"}))
	got, _ = g.Edge(e.ID)
	assert.Equal(t, "sentiment > 0.5", got.Config.Condition)
	assert.Empty(t, got.Config.Transformations)

	assert.ErrorIs(t, g.UpdateEdgeConfig("missing", canvas.EdgeConfig{}), canvas.ErrEdgeNotFound)
}

func TestDeleteEdge(t *testing.T) {
	g := newGraph(t)
	a, _ := g.AddNode("tool-1", canvas.Position{})
	b, _ := g.AddNode("tool-3", canvas.Position{})
	e, _ := g.AddEdge(a.ID, canvas.AnchorRight, b.ID, canvas.AnchorLeft)

	require.NoError(t, g.DeleteEdge(e.ID))
	assert.Empty(t, g.Edges())
	assert.Len(t, g.Nodes(), 2)
	assert.ErrorIs(t, g.DeleteEdge(e.ID), canvas.ErrEdgeNotFound)
}

func TestOutgoingAndSources(t *testing.T) {
	g := newGraph(t)
	a, _ := g.AddNode("tool-1", canvas.Position{})
	b, _ := g.AddNode("tool-3", canvas.Position{})
	c, _ := g.AddNode("social-1", canvas.Position{})
	_, _ = g.AddEdge(a.ID, canvas.AnchorRight, b.ID, canvas.AnchorLeft)
	_, _ = g.AddEdge(a.ID, canvas.AnchorBottom, c.ID, canvas.AnchorTop)

	out := g.Outgoing(a.ID)
	require.Len(t, out, 2)
	assert.Equal(t, b.ID, out[0].To)
	assert.Equal(t, c.ID, out[1].To)
	assert.Equal(t, []string{a.ID}, g.Sources())
}

func TestLoad(t *testing.T) {
	g := newGraph(t)
	_, _ = g.AddNode("tool-1", canvas.Position{})

	nodes := []canvas.Node{{ID: "n1", ToolID: "tool-1"}, {ID: "n2", ToolID: "tool-3"}}
	edges := []canvas.Edge{{From: "n1", FromPoint: canvas.AnchorRight, To: "n2", ToPoint: canvas.AnchorLeft}}
	require.NoError(t, g.Load("Imported", testCatalog(), nodes, edges))

	assert.Equal(t, "Imported", g.Name())
	assert.Len(t, g.Nodes(), 2)
	loaded := g.Edges()
	require.Len(t, loaded, 1)
	assert.NotEmpty(t, loaded[0].ID)

	// Loading is undoable like any other mutation.
	require.True(t, g.Undo())
	assert.Len(t, g.Nodes(), 1)
}

func TestLoadRejectsInvalidContent(t *testing.T) {
	g := newGraph(t)
	a, _ := g.AddNode("tool-1", canvas.Position{})
	nodesBefore, edgesBefore := g.Nodes(), g.Edges()

	err := g.Load("Broken", testCatalog(),
		[]canvas.Node{{ID: "n1"}},
		[]canvas.Edge{{From: "n1", FromPoint: canvas.AnchorRight, To: "ghost", ToPoint: canvas.AnchorLeft}})
	assert.ErrorIs(t, err, canvas.ErrDanglingEdge)

	assert.Equal(t, DefaultName, g.Name())
	assert.Equal(t, nodesBefore, g.Nodes())
	assert.Equal(t, edgesBefore, g.Edges())
	_, err = g.Node(a.ID)
	assert.NoError(t, err)
}

func TestRename(t *testing.T) {
	g := newGraph(t, WithName("Launch"))
	assert.Equal(t, "Launch", g.Name())
	g.Rename("")
	assert.Equal(t, DefaultName, g.Name())
}
