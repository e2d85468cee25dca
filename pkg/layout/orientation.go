package layout

import "github.com/go-drift/repeater/pkg/graphics"

// ScrollOrientation is the direction a collection scrolls in.
type ScrollOrientation int

const (
	// Vertical scrolling: the major axis is Y, the minor axis is X.
	Vertical ScrollOrientation = iota
	// Horizontal scrolling: the major axis is X, the minor axis is Y.
	Horizontal
)

func (o ScrollOrientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Orientation converts between width/height and the major (scrolling) and
// minor (cross) axes. The zero value is vertical.
type Orientation struct {
	Scroll ScrollOrientation
}

func (o Orientation) vertical() bool {
	return o.Scroll == Vertical
}

// Major returns the size along the scrolling axis.
func (o Orientation) Major(s graphics.Size) float64 {
	if o.vertical() {
		return s.Height
	}
	return s.Width
}

// Minor returns the size across the scrolling axis.
func (o Orientation) Minor(s graphics.Size) float64 {
	if o.vertical() {
		return s.Width
	}
	return s.Height
}

func (o Orientation) MajorStart(r graphics.Rect) float64 {
	if o.vertical() {
		return r.Y
	}
	return r.X
}

func (o Orientation) MajorEnd(r graphics.Rect) float64 {
	if o.vertical() {
		return r.Bottom()
	}
	return r.Right()
}

func (o Orientation) MajorSize(r graphics.Rect) float64 {
	if o.vertical() {
		return r.Height
	}
	return r.Width
}

func (o Orientation) MinorStart(r graphics.Rect) float64 {
	if o.vertical() {
		return r.X
	}
	return r.Y
}

func (o Orientation) MinorEnd(r graphics.Rect) float64 {
	if o.vertical() {
		return r.Right()
	}
	return r.Bottom()
}

func (o Orientation) MinorSize(r graphics.Rect) float64 {
	if o.vertical() {
		return r.Width
	}
	return r.Height
}

func (o Orientation) SetMajorStart(r *graphics.Rect, v float64) {
	if o.vertical() {
		r.Y = v
	} else {
		r.X = v
	}
}

func (o Orientation) SetMajorSize(r *graphics.Rect, v float64) {
	if o.vertical() {
		r.Height = v
	} else {
		r.Width = v
	}
}

func (o Orientation) SetMinorStart(r *graphics.Rect, v float64) {
	if o.vertical() {
		r.X = v
	} else {
		r.Y = v
	}
}

func (o Orientation) SetMinorSize(r *graphics.Rect, v float64) {
	if o.vertical() {
		r.Width = v
	} else {
		r.Height = v
	}
}

// MinorMajorSize builds a size from axis values.
func (o Orientation) MinorMajorSize(minor, major float64) graphics.Size {
	if o.vertical() {
		return graphics.Size{Width: minor, Height: major}
	}
	return graphics.Size{Width: major, Height: minor}
}

// MinorMajorPoint builds a point from axis values.
func (o Orientation) MinorMajorPoint(minor, major float64) graphics.Offset {
	if o.vertical() {
		return graphics.Offset{X: minor, Y: major}
	}
	return graphics.Offset{X: major, Y: minor}
}

// MinorMajorRect builds a rect from axis values.
func (o Orientation) MinorMajorRect(minorStart, majorStart, minorSize, majorSize float64) graphics.Rect {
	if o.vertical() {
		return graphics.Rect{X: minorStart, Y: majorStart, Width: minorSize, Height: majorSize}
	}
	return graphics.Rect{X: majorStart, Y: minorStart, Width: majorSize, Height: minorSize}
}
