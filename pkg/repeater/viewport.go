package repeater

import "github.com/go-drift/repeater/pkg/graphics"

// viewport tracks the visible window the host scrolls and derives the
// realization window from it.
type viewport struct {
	visible           graphics.Rect
	hasWindow         bool
	cacheLength       float64
	recommendedAnchor int
	expectedShift     graphics.Offset
}

func newViewport(cacheLength float64) viewport {
	return viewport{cacheLength: max(0, cacheLength), recommendedAnchor: -1}
}

// visibleWindow returns the visible window in local coordinates, or an
// infinite rect without a viewport.
func (v *viewport) visibleWindow() graphics.Rect {
	if !v.hasWindow {
		return graphics.InfiniteRect()
	}
	return v.visible
}

// realizationRect returns the window the layout fills, in layout
// coordinates. The visible window grows by half of cacheLength times its size
// on every side.
func (v *viewport) realizationRect(origin graphics.Offset) graphics.Rect {
	if !v.hasWindow {
		return graphics.UnboundedRect()
	}
	rect := v.visible.Inflate(v.visible.Width*v.cacheLength/2, v.visible.Height*v.cacheLength/2)
	return rect.Translate(origin.X, origin.Y)
}

// onLayoutOriginChanged records how far content moved in local coordinates.
// A scrolling host applies the shift to keep the same items on screen.
func (v *viewport) onLayoutOriginChanged(from, to graphics.Offset) {
	v.expectedShift.X += from.X - to.X
	v.expectedShift.Y += from.Y - to.Y
}

func (v *viewport) takeExpectedShift() graphics.Offset {
	shift := v.expectedShift
	v.expectedShift = graphics.Offset{}
	return shift
}
