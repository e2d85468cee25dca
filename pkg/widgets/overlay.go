package widgets

import (
	"math"

	"github.com/go-drift/repeater/pkg/errors"
	"github.com/go-drift/repeater/pkg/graphics"
	"github.com/go-drift/repeater/pkg/items"
	"github.com/go-drift/repeater/pkg/layout"
)

// OverlayLayout places every child on top of the others, aligned in the
// space of the largest one. It is non-virtualizing: hosted by a Repeater it
// realizes every item.
type OverlayLayout struct {
	layout.Observers
	alignment Alignment
}

// NewOverlayLayout returns an OverlayLayout aligning children at the top left.
func NewOverlayLayout() *OverlayLayout {
	return &OverlayLayout{alignment: AlignmentTopLeft}
}

// Alignment returns the child alignment.
func (l *OverlayLayout) Alignment() Alignment { return l.alignment }

// SetAlignment changes the child alignment.
func (l *OverlayLayout) SetAlignment(a Alignment) {
	if l.alignment == a {
		return
	}
	l.alignment = a
	l.InvalidateArrange()
}

func (l *OverlayLayout) Kind() layout.Kind { return layout.NonVirtualizing }

func (l *OverlayLayout) InitializeForContext(ctx layout.Context) {
	l.host("widgets.OverlayLayout.InitializeForContext", ctx)
}

func (l *OverlayLayout) UninitializeForContext(layout.Context) {}

func (l *OverlayLayout) OnItemsChanged(layout.Context, items.Change) {}

func (l *OverlayLayout) Measure(ctx layout.Context, available graphics.Size) graphics.Size {
	var size graphics.Size
	for _, child := range l.children("widgets.OverlayLayout.Measure", ctx) {
		child.Measure(available)
		desired := child.DesiredSize()
		size.Width = math.Max(size.Width, desired.Width)
		size.Height = math.Max(size.Height, desired.Height)
	}
	return size
}

func (l *OverlayLayout) Arrange(ctx layout.Context, final graphics.Size) graphics.Size {
	slot := graphics.Rect{Width: final.Width, Height: final.Height}
	for _, child := range l.children("widgets.OverlayLayout.Arrange", ctx) {
		desired := child.DesiredSize()
		offset := l.alignment.WithinRect(slot, desired)
		child.Arrange(graphics.RectFromLTWH(offset.X, offset.Y, desired.Width, desired.Height))
	}
	return final
}

func (l *OverlayLayout) children(op string, ctx layout.Context) []layout.Element {
	return l.host(op, ctx).Children()
}

func (l *OverlayLayout) host(op string, ctx layout.Context) layout.NonVirtualizingContext {
	host, ok := ctx.(layout.NonVirtualizingContext)
	if !ok {
		errors.Raisef(op, errors.KindLayoutState, errors.ErrInvalidLayoutState,
			"%T cannot list its children", ctx)
	}
	return host
}
