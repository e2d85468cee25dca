package widgets

import (
	"math"

	"github.com/go-drift/repeater/pkg/graphics"
	"github.com/go-drift/repeater/pkg/layout"
)

// Viewport is implemented by children that realize content only for a
// window of their coordinate space, such as a repeater.
type Viewport interface {
	SetVisibleWindow(window graphics.Rect)
	// TakeViewportShift returns and clears the distance the content moved
	// since the last call, in the child's coordinates.
	TakeViewportShift() graphics.Offset
}

// ScrollView shows a window of a child that is unbounded along the scroll
// direction.
//
// The child is measured with an infinite major axis and arranged at its full
// desired size. The scroll offset selects which part of it is visible. When
// the child implements [Viewport], ScrollView keeps the child's visible
// window in sync with the offset and follows the child's viewport shifts so
// that the content on screen stays put when the child relocates its origin.
type ScrollView struct {
	layout.ElementBase
	child     layout.Element
	direction layout.ScrollOrientation
	offset    float64
	viewport  graphics.Size
}

// NewScrollView returns a ScrollView around child scrolling in direction.
func NewScrollView(direction layout.ScrollOrientation, child layout.Element) *ScrollView {
	s := &ScrollView{direction: direction}
	s.SetSelf(s)
	s.SetChild(child)
	return s
}

// Child returns the scrolled element.
func (s *ScrollView) Child() layout.Element { return s.child }

// SetChild replaces the scrolled element and resets the offset.
func (s *ScrollView) SetChild(child layout.Element) {
	if s.child == child {
		return
	}
	if s.child != nil {
		s.child.SetParent(nil)
	}
	s.child = child
	s.offset = 0
	layout.AttachChild(child, s)
	s.InvalidateMeasure()
}

// RemoveChild detaches child.
func (s *ScrollView) RemoveChild(child layout.Element) {
	if s.child != child {
		return
	}
	s.child = nil
	child.SetParent(nil)
	s.InvalidateMeasure()
}

// Children returns the scrolled element, if any.
func (s *ScrollView) Children() []layout.Element {
	if s.child == nil {
		return nil
	}
	return []layout.Element{s.child}
}

// Direction returns the scroll direction.
func (s *ScrollView) Direction() layout.ScrollOrientation { return s.direction }

// Offset returns the scroll position along the scroll direction.
func (s *ScrollView) Offset() float64 { return s.offset }

// ViewportSize returns the size of the visible area from the last measure.
func (s *ScrollView) ViewportSize() graphics.Size { return s.viewport }

// ContentSize returns the child's desired size.
func (s *ScrollView) ContentSize() graphics.Size {
	if s.child == nil {
		return graphics.Size{}
	}
	return s.child.DesiredSize()
}

// MaxOffset returns the largest offset that still fills the viewport.
func (s *ScrollView) MaxOffset() float64 {
	o := s.orientation()
	return math.Max(0, o.Major(s.ContentSize())-o.Major(s.viewport))
}

// ScrollTo moves the offset, clamped to [0, MaxOffset].
func (s *ScrollView) ScrollTo(offset float64) {
	offset = math.Max(0, math.Min(offset, s.MaxOffset()))
	if offset == s.offset {
		return
	}
	s.offset = offset
	if !s.syncWindow() {
		s.InvalidateArrange()
	}
}

// ScrollBy moves the offset by delta.
func (s *ScrollView) ScrollBy(delta float64) {
	s.ScrollTo(s.offset + delta)
}

// VisibleRect returns the part of the child's coordinate space on screen.
func (s *ScrollView) VisibleRect() graphics.Rect {
	if s.direction == layout.Horizontal {
		return graphics.RectFromLTWH(s.offset, 0, s.viewport.Width, s.viewport.Height)
	}
	return graphics.RectFromLTWH(0, s.offset, s.viewport.Width, s.viewport.Height)
}

func (s *ScrollView) orientation() layout.Orientation {
	return layout.Orientation{Scroll: s.direction}
}

// syncWindow pushes the visible rect to a Viewport child.
func (s *ScrollView) syncWindow() bool {
	v, ok := s.child.(Viewport)
	if !ok || !s.viewport.IsFinite() {
		return false
	}
	v.SetVisibleWindow(s.VisibleRect())
	return true
}

func (s *ScrollView) MeasureOverride(available graphics.Size) graphics.Size {
	if s.child == nil {
		s.viewport = finiteOr(available, graphics.Size{})
		return s.viewport
	}
	childAvailable := available
	if s.direction == layout.Horizontal {
		childAvailable.Width = math.Inf(1)
	} else {
		childAvailable.Height = math.Inf(1)
	}

	s.viewport = available
	s.syncWindow()
	s.child.Measure(childAvailable)
	content := s.child.DesiredSize()
	s.viewport = finiteOr(available, content)

	offset := s.offset
	if v, ok := s.child.(Viewport); ok {
		shift := v.TakeViewportShift()
		offset += s.orientation().MajorStart(graphics.Rect{X: shift.X, Y: shift.Y})
	}
	// The content may have shrunk or the shift may overshoot its end.
	offset = math.Max(0, math.Min(offset, s.MaxOffset()))
	if offset != s.offset {
		// The child invalidates itself through the new window and is
		// measured again on the next pass.
		s.offset = offset
		s.syncWindow()
	}
	return s.viewport
}

func (s *ScrollView) ArrangeOverride(final graphics.Size) graphics.Size {
	if s.child == nil {
		return final
	}
	content := s.child.DesiredSize()
	if s.direction == layout.Horizontal {
		s.child.Arrange(graphics.RectFromLTWH(0, 0, content.Width, final.Height))
	} else {
		s.child.Arrange(graphics.RectFromLTWH(0, 0, final.Width, content.Height))
	}
	return final
}

// finiteOr replaces the infinite dimensions of size with those of fallback.
func finiteOr(size, fallback graphics.Size) graphics.Size {
	if math.IsInf(size.Width, 0) {
		size.Width = fallback.Width
	}
	if math.IsInf(size.Height, 0) {
		size.Height = fallback.Height
	}
	return size
}
