package widgets

import "github.com/go-drift/repeater/pkg/graphics"

// Alignment positions a child inside a larger slot. X and Y run from -1
// (left/top) to 1 (right/bottom).
type Alignment struct {
	X float64
	Y float64
}

var (
	AlignmentTopLeft     = Alignment{X: -1, Y: -1}
	AlignmentTopCenter   = Alignment{X: 0, Y: -1}
	AlignmentCenter      = Alignment{X: 0, Y: 0}
	AlignmentBottomRight = Alignment{X: 1, Y: 1}
)

// WithinRect returns the offset of a child of size child aligned in rect.
func (a Alignment) WithinRect(rect graphics.Rect, child graphics.Size) graphics.Offset {
	return graphics.Offset{
		X: rect.X + (rect.Width-child.Width)*(a.X+1)/2,
		Y: rect.Y + (rect.Height-child.Height)*(a.Y+1)/2,
	}
}
