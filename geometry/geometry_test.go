package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meikuraledutech/canvas"
)

func TestAnchorPoint(t *testing.T) {
	pos := canvas.Position{X: 100, Y: 100}
	size := Size{Width: 180, Height: 48}

	cases := map[canvas.Anchor]Point{
		canvas.AnchorTop:    {X: 190, Y: 100},
		canvas.AnchorRight:  {X: 280, Y: 124},
		canvas.AnchorBottom: {X: 190, Y: 148},
		canvas.AnchorLeft:   {X: 100, Y: 124},
		"":                  {X: 190, Y: 124},
	}
	for anchor, want := range cases {
		assert.Equal(t, want, AnchorPoint(pos, size, anchor), "anchor %q", anchor)
	}
}

func TestNodeAnchorUsesDefaultSize(t *testing.T) {
	n := canvas.Node{X: 100, Y: 100}
	assert.Equal(t, Point{X: 280, Y: 124}, NodeAnchor(n, canvas.AnchorRight))

	wide := canvas.Node{X: 0, Y: 0, Width: 300, Height: 60}
	assert.Equal(t, Point{X: 150, Y: 60}, NodeAnchor(wide, canvas.AnchorBottom))
}

func TestControlPointsHorizontal(t *testing.T) {
	from := Point{X: 280, Y: 124}
	to := Point{X: 400, Y: 200}

	c1, c2 := ControlPoints(from, canvas.AnchorRight, to, canvas.AnchorLeft)
	assert.Equal(t, Point{X: 340, Y: 124}, c1)
	assert.Equal(t, Point{X: 340, Y: 200}, c2)
}

func TestControlPointsVertical(t *testing.T) {
	from := Point{X: 190, Y: 148}
	to := Point{X: 250, Y: 348}

	c1, c2 := ControlPoints(from, canvas.AnchorBottom, to, canvas.AnchorTop)
	assert.Equal(t, Point{X: 190, Y: 248}, c1)
	assert.Equal(t, Point{X: 250, Y: 248}, c2)
}

func TestControlPointsMixedSides(t *testing.T) {
	// The source side decides the axis; a vertical target then gets no offset.
	from := Point{X: 0, Y: 0}
	to := Point{X: 100, Y: 100}

	c1, c2 := ControlPoints(from, canvas.AnchorRight, to, canvas.AnchorTop)
	assert.Equal(t, Point{X: 50, Y: 0}, c1)
	assert.Equal(t, Point{X: 100, Y: 100}, c2)

	c1, c2 = ControlPoints(from, canvas.AnchorBottom, to, canvas.AnchorRight)
	assert.Equal(t, Point{X: 0, Y: 50}, c1)
	assert.Equal(t, Point{X: 100, Y: 100}, c2)
}

func TestEdgeCurvePath(t *testing.T) {
	a := canvas.Node{ID: "a", X: 0, Y: 0}
	b := canvas.Node{ID: "b", X: 300, Y: 0}
	e := canvas.Edge{From: "a", FromPoint: canvas.AnchorRight, To: "b", ToPoint: canvas.AnchorLeft}

	c := EdgeCurve(a, b, e)
	assert.Equal(t, Point{X: 180, Y: 24}, c.From)
	assert.Equal(t, Point{X: 300, Y: 24}, c.To)
	assert.Equal(t, "M 180 24 C 240 24, 240 24, 300 24", c.Path())
	assert.Equal(t, Point{X: 240, Y: 24}, c.Midpoint())
}

func TestBoundsAndFitScale(t *testing.T) {
	nodes := []canvas.Node{
		{X: 100, Y: 100},
		{X: 500, Y: 300, Width: 200, Height: 50},
	}
	r := Bounds(nodes, 20)
	assert.Equal(t, Point{X: 80, Y: 80}, r.Min)
	assert.Equal(t, Point{X: 720, Y: 370}, r.Max)

	scale := FitScale(r, 200, 150)
	assert.InDelta(t, 200.0/640.0, scale, 1e-9)
	assert.Equal(t, Point{X: 0, Y: 0}, Project(r, scale, canvas.Position{X: 80, Y: 80}))

	assert.True(t, Bounds(nil, 20).Empty())
	assert.Equal(t, 1.0, FitScale(Rect{}, 200, 150))
}
