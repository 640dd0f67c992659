package geometry

import (
	"math"

	"github.com/meikuraledutech/canvas"
)

// Zoom limits and step used by the canvas.
const (
	MinScale  = 0.5
	MaxScale  = 2.0
	ZoomStep  = 0.05
	scaleUnit = 1000
)

// Viewport maps client (screen) coordinates to canvas coordinates. Origin is
// the client position of the canvas' top left corner.
type Viewport struct {
	Origin Point
	Scale  float64

	Min  float64
	Max  float64
	Step float64
}

// NewViewport returns a viewport at scale 1 with the default zoom limits.
func NewViewport() Viewport {
	return Viewport{Scale: 1, Min: MinScale, Max: MaxScale, Step: ZoomStep}
}

// ToCanvas converts a client position into canvas space.
func (v Viewport) ToCanvas(client Point) canvas.Position {
	s := v.scale()
	return canvas.Position{
		X: (client.X - v.Origin.X) / s,
		Y: (client.Y - v.Origin.Y) / s,
	}
}

// ToClient converts a canvas position back into client space.
func (v Viewport) ToClient(p canvas.Position) Point {
	s := v.scale()
	return Point{X: p.X*s + v.Origin.X, Y: p.Y*s + v.Origin.Y}
}

// Zoom steps the scale by one increment, in when deltaY is negative and out
// otherwise, clamped to the limits. It returns the new scale.
func (v *Viewport) Zoom(deltaY float64) float64 {
	step := v.Step
	if step <= 0 {
		step = ZoomStep
	}
	if deltaY > 0 {
		step = -step
	}
	v.Scale = v.clamp(v.scale() + step)
	return v.Scale
}

// SetScale sets the scale, clamped to the limits.
func (v *Viewport) SetScale(s float64) float64 {
	v.Scale = v.clamp(s)
	return v.Scale
}

func (v Viewport) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}

func (v Viewport) clamp(s float64) float64 {
	lo, hi := v.Min, v.Max
	if lo <= 0 {
		lo = MinScale
	}
	if hi < lo {
		hi = MaxScale
	}
	// Keep three decimals so repeated steps do not drift.
	s = math.Round(s*scaleUnit) / scaleUnit
	return math.Min(math.Max(s, lo), hi)
}
