// Package graphics provides the geometry primitives shared by the layout engine.
package graphics

import "math"

// epsilon is the tolerance for floating-point comparisons.
const epsilon = 0.0001

// unboundedExtent is the window size used by hosts that have no viewport.
// It is finite so that offsets computed from it stay finite.
const unboundedExtent = math.MaxFloat32

// Offset represents a 2D point or vector in logical pixels.
type Offset struct {
	X float64
	Y float64
}

// Size represents width and height dimensions in logical pixels.
type Size struct {
	Width  float64
	Height float64
}

// InfiniteSize is an available size that places no bound on either axis.
var InfiniteSize = Size{Width: math.Inf(1), Height: math.Inf(1)}

// IsFinite reports whether both dimensions are finite.
func (s Size) IsFinite() bool {
	return !math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0)
}

// Rect is an axis-aligned rectangle stored as origin plus size.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// RectFromLTWH constructs a Rect from left, top, width, height values.
func RectFromLTWH(left, top, width, height float64) Rect {
	return Rect{X: left, Y: top, Width: width, Height: height}
}

// RectFromLTRB constructs a Rect from its edges.
func RectFromLTRB(left, top, right, bottom float64) Rect {
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// InfiniteRect covers the whole plane. Non-virtualizing hosts report it as
// their realization rect.
func InfiniteRect() Rect {
	return Rect{X: math.Inf(-1), Y: math.Inf(-1), Width: math.Inf(1), Height: math.Inf(1)}
}

// UnboundedRect is a very large but finite window centered on the origin.
func UnboundedRect() Rect {
	return Rect{
		X:      -unboundedExtent / 2,
		Y:      -unboundedExtent / 2,
		Width:  unboundedExtent,
		Height: unboundedExtent,
	}
}

// Right returns the right edge. An infinitely wide rect has an infinite
// right edge even when its left edge is -Inf.
func (r Rect) Right() float64 {
	if math.IsInf(r.Width, 1) {
		return math.Inf(1)
	}
	return r.X + r.Width
}

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 {
	if math.IsInf(r.Height, 1) {
		return math.Inf(1)
	}
	return r.Y + r.Height
}

// Size returns the size of the rectangle.
func (r Rect) Size() Size {
	return Size{Width: r.Width, Height: r.Height}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Offset {
	return Offset{X: r.X, Y: r.Y}
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Offset {
	return Offset{X: r.X + r.Width*0.5, Y: r.Y + r.Height*0.5}
}

// IsEmpty returns true if the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// IsInfinite reports whether either dimension is infinite.
func (r Rect) IsInfinite() bool {
	return math.IsInf(r.Width, 0) || math.IsInf(r.Height, 0)
}

// IsUnbounded reports whether the rect is infinite or at least as large as
// UnboundedRect on either axis.
func (r Rect) IsUnbounded() bool {
	return r.IsInfinite() || r.Width >= unboundedExtent || r.Height >= unboundedExtent
}

// Intersects reports whether the rectangles overlap. Touching edges count as
// overlap so that zero-size elements sitting on a window edge are kept.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.Right() && other.X <= r.Right() &&
		r.Y <= other.Bottom() && other.Y <= r.Bottom()
}

// Intersect returns the intersection of two rectangles.
// Returns empty rect if they don't overlap.
func (r Rect) Intersect(other Rect) Rect {
	left := math.Max(r.X, other.X)
	top := math.Max(r.Y, other.Y)
	right := math.Min(r.Right(), other.Right())
	bottom := math.Min(r.Bottom(), other.Bottom())
	if left >= right || top >= bottom {
		return Rect{}
	}
	return RectFromLTRB(left, top, right, bottom)
}

// Translate returns a new rect offset by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Inflate grows the rect by dx on the left and right and dy on the top and bottom.
func (r Rect) Inflate(dx, dy float64) Rect {
	return Rect{X: r.X - dx, Y: r.Y - dy, Width: r.Width + 2*dx, Height: r.Height + 2*dy}
}

// Union returns the smallest rect containing both r and other.
func (r Rect) Union(other Rect) Rect {
	return RectFromLTRB(
		math.Min(r.X, other.X),
		math.Min(r.Y, other.Y),
		math.Max(r.Right(), other.Right()),
		math.Max(r.Bottom(), other.Bottom()),
	)
}

// ApproxEqual reports whether two rects match within floating-point tolerance.
func (r Rect) ApproxEqual(other Rect) bool {
	return floatEqual(r.X, other.X) && floatEqual(r.Y, other.Y) &&
		floatEqual(r.Width, other.Width) && floatEqual(r.Height, other.Height)
}

// floatEqual returns true if two float64 values are approximately equal.
func floatEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}
