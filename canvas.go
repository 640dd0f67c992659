package canvas

import (
	"strings"
	"time"
)

// SchemaVersion is the version written into every exported workflow document.
// Documents without a version field are treated as version 0 and still accepted.
const SchemaVersion = 1

// Default rendered size of a node, used when neither the tool nor the graph
// overrides it.
const (
	DefaultNodeWidth  = 180
	DefaultNodeHeight = 48
)

// SocialPrefix marks catalog ids that belong to the social integrations list.
const SocialPrefix = "social-"

// Anchor is one of the four cardinal connection points on a node.
type Anchor string

const (
	AnchorTop    Anchor = "top"
	AnchorRight  Anchor = "right"
	AnchorBottom Anchor = "bottom"
	AnchorLeft   Anchor = "left"
)

// Anchors lists every valid anchor in clockwise order starting at the top.
var Anchors = []Anchor{AnchorTop, AnchorRight, AnchorBottom, AnchorLeft}

// Valid reports whether a is one of the four cardinal anchors.
func (a Anchor) Valid() bool {
	switch a {
	case AnchorTop, AnchorRight, AnchorBottom, AnchorLeft:
		return true
	}
	return false
}

// Horizontal reports whether a sits on the left or right side of a node.
func (a Anchor) Horizontal() bool {
	return a == AnchorLeft || a == AnchorRight
}

// ParseAnchor converts a side name into an Anchor.
func ParseAnchor(s string) (Anchor, error) {
	a := Anchor(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", ErrInvalidAnchor
	}
	return a, nil
}

// Tool is an immutable catalog entry that can be placed on the canvas.
// Route is metadata only; the editor never calls it.
type Tool struct {
	ID     string  `json:"id" toml:"id"`
	Name   string  `json:"name" toml:"name"`
	Icon   string  `json:"icon" toml:"icon"`
	Color  string  `json:"color" toml:"color"`
	Route  string  `json:"route" toml:"route"`
	Width  float64 `json:"width,omitempty" toml:"width"`
	Height float64 `json:"height,omitempty" toml:"height"`
}

// Catalog holds the tools and social integrations available in the palette.
type Catalog struct {
	Tools              []Tool `json:"tools" toml:"tools"`
	SocialIntegrations []Tool `json:"socialIntegrations" toml:"social_integrations"`
}

// Lookup resolves a tool id. Ids with the social prefix are searched among the
// integrations, everything else among the tools.
func (c Catalog) Lookup(id string) (Tool, bool) {
	list := c.Tools
	if strings.HasPrefix(id, SocialPrefix) {
		list = c.SocialIntegrations
	}
	for _, t := range list {
		if t.ID == id {
			return t, true
		}
	}
	return Tool{}, false
}

// Clone returns a copy that shares no slices with c.
func (c Catalog) Clone() Catalog {
	return Catalog{
		Tools:              append([]Tool(nil), c.Tools...),
		SocialIntegrations: append([]Tool(nil), c.SocialIntegrations...),
	}
}

// Position is a point in canvas space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a placed instance of a catalog tool.
type Node struct {
	ID     string         `json:"id"`
	ToolID string         `json:"toolId"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Width  float64        `json:"width,omitempty"`
	Height float64        `json:"height,omitempty"`
	Label  string         `json:"label"`
	Config map[string]any `json:"config"`
}

// Position returns the node origin.
func (n Node) Position() Position {
	return Position{X: n.X, Y: n.Y}
}

// Size returns the node's rendered size, falling back to the defaults for
// nodes imported without explicit dimensions.
func (n Node) Size() (width, height float64) {
	width, height = n.Width, n.Height
	if width <= 0 {
		width = DefaultNodeWidth
	}
	if height <= 0 {
		height = DefaultNodeHeight
	}
	return width, height
}

// Clone deep-copies the node including nested config values.
func (n Node) Clone() Node {
	n.Config = CloneConfig(n.Config)
	return n
}

// Transformation is a named step applied to data flowing along an edge.
type Transformation struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

// EdgeConfig is the per-connection configuration.
type EdgeConfig struct {
	Transformations []Transformation `json:"transformations"`
	Condition       string           `json:"condition,omitempty"`
}

// Clone deep-copies the config.
func (c EdgeConfig) Clone() EdgeConfig {
	out := EdgeConfig{Condition: c.Condition, Transformations: []Transformation{}}
	for _, t := range c.Transformations {
		out.Transformations = append(out.Transformations, Transformation{
			Type:   t.Type,
			Params: CloneConfig(t.Params),
		})
	}
	return out
}

// Edge is a directed connection between two node anchors.
type Edge struct {
	ID        string     `json:"id"`
	From      string     `json:"from"`
	FromPoint Anchor     `json:"fromPoint"`
	To        string     `json:"to"`
	ToPoint   Anchor     `json:"toPoint"`
	Config    EdgeConfig `json:"config"`
}

// EdgeKey identifies a connection by its endpoints. No two edges in a graph
// share a key.
type EdgeKey struct {
	From      string
	FromPoint Anchor
	To        string
	ToPoint   Anchor
}

// Key returns the endpoint tuple of e.
func (e Edge) Key() EdgeKey {
	return EdgeKey{From: e.From, FromPoint: e.FromPoint, To: e.To, ToPoint: e.ToPoint}
}

// Clone deep-copies the edge.
func (e Edge) Clone() Edge {
	e.Config = e.Config.Clone()
	return e
}

// Workflow is the persisted document shape shared by file export, import and
// the saved-workflow stores.
type Workflow struct {
	Version            int        `json:"version"`
	ID                 string     `json:"id,omitempty"`
	Name               string     `json:"name"`
	Tools              []Tool     `json:"tools"`
	SocialIntegrations []Tool     `json:"socialIntegrations"`
	CanvasItems        []Node     `json:"canvasItems"`
	Connections        []Edge     `json:"connections"`
	CreatedAt          *time.Time `json:"createdAt,omitempty"`
}

// Catalog returns the tool catalog carried by the document.
func (w Workflow) Catalog() Catalog {
	return Catalog{Tools: w.Tools, SocialIntegrations: w.SocialIntegrations}
}

// Record is a workflow saved under a generated key.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Workflow  Workflow  `json:"workflow"`
}

// Summary is the listing view of a saved workflow.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	CreatedAt time.Time `json:"createdAt"`
}

// CloneNodes deep-copies a node list. A nil input yields an empty slice.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Clone())
	}
	return out
}

// CloneEdges deep-copies an edge list. A nil input yields an empty slice.
func CloneEdges(edges []Edge) []Edge {
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.Clone())
	}
	return out
}

// CloneConfig deep-copies an open configuration map as produced by JSON
// decoding (nested maps and slices).
func CloneConfig(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneConfig(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
