package widgets

import (
	"math"

	"github.com/go-drift/repeater/pkg/graphics"
	"github.com/go-drift/repeater/pkg/layout"
)

// SizedBox forces its child to a specific width and/or height.
//
// When both Width and Height are set, SizedBox has exactly those dimensions.
// When only one is set, the other follows the child, or is zero without a
// child.
//
//	// Fixed-size spacer
//	widgets.NewSizedBox(0, 24, nil)
//
//	// Force a child to a specific width only
//	widgets.NewSizedBox(200, 0, label)
type SizedBox struct {
	layout.ElementBase
	width  float64
	height float64
	child  layout.Element
}

// NewSizedBox returns a SizedBox around child, which may be nil. A zero
// dimension is taken from the child.
func NewSizedBox(width, height float64, child layout.Element) *SizedBox {
	b := &SizedBox{width: width, height: height}
	b.SetSelf(b)
	b.SetChild(child)
	return b
}

// Child returns the child element.
func (b *SizedBox) Child() layout.Element { return b.child }

// SetChild replaces the child.
func (b *SizedBox) SetChild(child layout.Element) {
	if b.child == child {
		return
	}
	if b.child != nil {
		b.child.SetParent(nil)
	}
	b.child = child
	layout.AttachChild(child, b)
	b.InvalidateMeasure()
}

// SetSize changes the explicit dimensions.
func (b *SizedBox) SetSize(width, height float64) {
	if b.width == width && b.height == height {
		return
	}
	b.width, b.height = width, height
	b.InvalidateMeasure()
}

// RemoveChild detaches child.
func (b *SizedBox) RemoveChild(child layout.Element) {
	if b.child != child {
		return
	}
	b.child = nil
	child.SetParent(nil)
	b.InvalidateMeasure()
}

func (b *SizedBox) MeasureOverride(available graphics.Size) graphics.Size {
	desired := graphics.Size{Width: b.width, Height: b.height}
	if b.width > 0 {
		desired.Width = math.Min(b.width, available.Width)
	}
	if b.height > 0 {
		desired.Height = math.Min(b.height, available.Height)
	}
	if b.child == nil {
		return desired
	}

	// Tighten only the explicit dimensions.
	childAvailable := available
	if b.width > 0 {
		childAvailable.Width = desired.Width
	}
	if b.height > 0 {
		childAvailable.Height = desired.Height
	}
	b.child.Measure(childAvailable)
	childSize := b.child.DesiredSize()
	if b.width <= 0 {
		desired.Width = childSize.Width
	}
	if b.height <= 0 {
		desired.Height = childSize.Height
	}
	return desired
}

func (b *SizedBox) ArrangeOverride(final graphics.Size) graphics.Size {
	if b.child != nil {
		b.child.Arrange(graphics.Rect{Width: final.Width, Height: final.Height})
	}
	return final
}
