package geometry

import (
	"math"

	"github.com/meikuraledutech/canvas"
)

// Rect is an axis-aligned rectangle.
type Rect struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Width of the rectangle.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height of the rectangle.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Bounds returns the box enclosing every node, grown by padding on each side.
// It returns an empty Rect for an empty list.
func Bounds(nodes []canvas.Node, padding float64) Rect {
	if len(nodes) == 0 {
		return Rect{}
	}
	r := Rect{
		Min: Point{X: math.Inf(1), Y: math.Inf(1)},
		Max: Point{X: math.Inf(-1), Y: math.Inf(-1)},
	}
	for _, n := range nodes {
		w, h := n.Size()
		r.Min.X = math.Min(r.Min.X, n.X)
		r.Min.Y = math.Min(r.Min.Y, n.Y)
		r.Max.X = math.Max(r.Max.X, n.X+w)
		r.Max.Y = math.Max(r.Max.Y, n.Y+h)
	}
	r.Min.X -= padding
	r.Min.Y -= padding
	r.Max.X += padding
	r.Max.Y += padding
	return r
}

// FitScale returns the largest uniform scale that fits r inside a box of the
// given size, as used by the minimap. An empty rectangle scales by 1.
func FitScale(r Rect, width, height float64) float64 {
	if r.Empty() || width <= 0 || height <= 0 {
		return 1
	}
	return math.Min(width/r.Width(), height/r.Height())
}

// Project maps a canvas position into a box scaled by FitScale.
func Project(r Rect, scale float64, p canvas.Position) Point {
	return Point{X: (p.X - r.Min.X) * scale, Y: (p.Y - r.Min.Y) * scale}
}
