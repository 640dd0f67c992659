package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() Catalog {
	return Catalog{
		Tools: []Tool{
			{ID: "tool-1", Name: "Screenshot + Research Agent", Route: "/api/analyze/"},
			{ID: "tool-4", Name: "Fact-Checker Agent", Route: "/api/fact-check/"},
		},
		SocialIntegrations: []Tool{
			{ID: "social-1", Name: "Instagram Post", Route: "/api/post/instagram"},
		},
	}
}

func TestCatalogLookup(t *testing.T) {
	c := testCatalog()

	tool, ok := c.Lookup("tool-4")
	require.True(t, ok)
	assert.Equal(t, "Fact-Checker Agent", tool.Name)

	integration, ok := c.Lookup("social-1")
	require.True(t, ok)
	assert.Equal(t, "Instagram Post", integration.Name)

	_, ok = c.Lookup("tool-9")
	assert.False(t, ok)
}

func TestCatalogClone(t *testing.T) {
	c := testCatalog()
	cp := c.Clone()
	cp.Tools[0].Name = "changed"
	assert.Equal(t, "Screenshot + Research Agent", c.Tools[0].Name)
}

func TestParseAnchor(t *testing.T) {
	a, err := ParseAnchor(" Right ")
	require.NoError(t, err)
	assert.Equal(t, AnchorRight, a)
	assert.True(t, a.Horizontal())

	_, err = ParseAnchor("middle")
	assert.ErrorIs(t, err, ErrInvalidAnchor)
}

func TestNodeSizeDefaults(t *testing.T) {
	w, h := Node{}.Size()
	assert.Equal(t, float64(DefaultNodeWidth), w)
	assert.Equal(t, float64(DefaultNodeHeight), h)

	w, h = Node{Width: 200, Height: 60}.Size()
	assert.Equal(t, 200.0, w)
	assert.Equal(t, 60.0, h)
}

func TestNodeCloneIsDeep(t *testing.T) {
	n := Node{ID: "a", Config: map[string]any{
		"tags":   []any{"x", "y"},
		"nested": map[string]any{"k": "v"},
	}}
	cp := n.Clone()
	cp.Config["tags"].([]any)[0] = "changed"
	cp.Config["nested"].(map[string]any)["k"] = "changed"

	assert.Equal(t, "x", n.Config["tags"].([]any)[0])
	assert.Equal(t, "v", n.Config["nested"].(map[string]any)["k"])
}

func TestCheckIntegrity(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}}
	ok := Edge{ID: "e1", From: "a", FromPoint: AnchorRight, To: "b", ToPoint: AnchorLeft}

	assert.NoError(t, CheckIntegrity(nodes, []Edge{ok}))

	dangling := ok
	dangling.ID, dangling.To = "e2", "missing"
	assert.ErrorIs(t, CheckIntegrity(nodes, []Edge{dangling}), ErrDanglingEdge)

	dup := ok
	dup.ID = "e3"
	assert.ErrorIs(t, CheckIntegrity(nodes, []Edge{ok, dup}), ErrDuplicateEdge)

	bad := ok
	bad.FromPoint = "middle"
	assert.ErrorIs(t, CheckIntegrity(nodes, []Edge{bad}), ErrInvalidAnchor)

	assert.ErrorIs(t, CheckIntegrity([]Node{{ID: "a"}, {ID: "a"}}, nil), ErrDuplicateNode)
}

func TestValidateAcyclic(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	chain := []Edge{
		{From: "a", To: "b"},
		{From: "b", To: "c"},
	}
	assert.NoError(t, ValidateAcyclic(nodes, chain))

	cycle := append(chain, Edge{From: "c", To: "a"})
	assert.ErrorIs(t, ValidateAcyclic(nodes, cycle), ErrCycleDetected)

	self := []Edge{{From: "a", To: "a"}}
	assert.ErrorIs(t, ValidateAcyclic(nodes, self), ErrCycleDetected)
}

func TestSources(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	edges := []Edge{{From: "a", To: "b"}}
	assert.Equal(t, []string{"a", "c"}, Sources(nodes, edges))
	assert.Equal(t, []string{}, Sources(nil, nil))
}
