// Package geometry computes anchor coordinates, connection curves and
// viewport transforms for the canvas. Everything here is pure.
package geometry

import (
	"fmt"
	"math"

	"github.com/meikuraledutech/canvas"
)

// Point is a coordinate pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the rendered extent of a node.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AnchorPoint returns the canvas position of an anchor on a node whose top
// left corner is at pos. An unknown anchor resolves to the node centre.
func AnchorPoint(pos canvas.Position, size Size, a canvas.Anchor) Point {
	switch a {
	case canvas.AnchorTop:
		return Point{X: pos.X + size.Width/2, Y: pos.Y}
	case canvas.AnchorRight:
		return Point{X: pos.X + size.Width, Y: pos.Y + size.Height/2}
	case canvas.AnchorBottom:
		return Point{X: pos.X + size.Width/2, Y: pos.Y + size.Height}
	case canvas.AnchorLeft:
		return Point{X: pos.X, Y: pos.Y + size.Height/2}
	default:
		return Point{X: pos.X + size.Width/2, Y: pos.Y + size.Height/2}
	}
}

// NodeSize returns the node's size with defaults applied.
func NodeSize(n canvas.Node) Size {
	w, h := n.Size()
	return Size{Width: w, Height: h}
}

// NodeAnchor is AnchorPoint for a placed node.
func NodeAnchor(n canvas.Node, a canvas.Anchor) Point {
	return AnchorPoint(n.Position(), NodeSize(n), a)
}

// ControlPoints returns the two bezier control points of a connection. The
// source side picks the orientation: a left or right source bends the curve
// horizontally by half the x distance, a top or bottom source vertically by
// half the y distance. Each control point is pushed outward from its own side.
func ControlPoints(from Point, fromSide canvas.Anchor, to Point, toSide canvas.Anchor) (Point, Point) {
	var dx, dy float64
	if fromSide.Horizontal() {
		dx = math.Abs(to.X-from.X) * 0.5
	} else {
		dy = math.Abs(to.Y-from.Y) * 0.5
	}
	return offset(from, fromSide, dx, dy), offset(to, toSide, dx, dy)
}

func offset(p Point, side canvas.Anchor, dx, dy float64) Point {
	switch side {
	case canvas.AnchorLeft:
		p.X -= dx
	case canvas.AnchorRight:
		p.X += dx
	case canvas.AnchorTop:
		p.Y -= dy
	case canvas.AnchorBottom:
		p.Y += dy
	}
	return p
}

// Curve is a cubic bezier between two anchors.
type Curve struct {
	From Point `json:"from"`
	C1   Point `json:"c1"`
	C2   Point `json:"c2"`
	To   Point `json:"to"`
}

// EdgeCurve resolves the curve of an edge between the given nodes.
func EdgeCurve(from, to canvas.Node, e canvas.Edge) Curve {
	p1 := NodeAnchor(from, e.FromPoint)
	p2 := NodeAnchor(to, e.ToPoint)
	c1, c2 := ControlPoints(p1, e.FromPoint, p2, e.ToPoint)
	return Curve{From: p1, C1: c1, C2: c2, To: p2}
}

// Path renders the curve as SVG path data.
func (c Curve) Path() string {
	return fmt.Sprintf("M %s %s C %s %s, %s %s, %s %s",
		num(c.From.X), num(c.From.Y), num(c.C1.X), num(c.C1.Y),
		num(c.C2.X), num(c.C2.Y), num(c.To.X), num(c.To.Y))
}

// Midpoint returns the point halfway between the curve endpoints, where the
// delete control of a connection is drawn.
func (c Curve) Midpoint() Point {
	return Point{X: (c.From.X + c.To.X) / 2, Y: (c.From.Y + c.To.Y) / 2}
}

func num(f float64) string {
	return fmt.Sprintf("%g", f)
}
