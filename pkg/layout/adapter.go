package layout

import (
	"github.com/go-drift/repeater/pkg/errors"
	"github.com/go-drift/repeater/pkg/graphics"
)

// AsVirtualizing returns ctx as a VirtualizingContext. A non-virtualizing
// context is wrapped so that every child counts as realized and the
// realization rect is infinite.
func AsVirtualizing(ctx Context) VirtualizingContext {
	switch c := ctx.(type) {
	case VirtualizingContext:
		return c
	case NonVirtualizingContext:
		return &virtualizingAdapter{ctx: c}
	default:
		errors.Raisef("layout.AsVirtualizing", errors.KindLayoutState, errors.ErrInvalidLayoutState,
			"unsupported context %T", ctx)
		return nil
	}
}

type virtualizingAdapter struct {
	ctx NonVirtualizingContext
}

func (a *virtualizingAdapter) LayoutState() any {
	return a.ctx.LayoutState()
}

func (a *virtualizingAdapter) SetLayoutState(state any) {
	a.ctx.SetLayoutState(state)
}

func (a *virtualizingAdapter) ItemCount() int {
	return len(a.ctx.Children())
}

// ItemAt returns the child itself; a non-virtualizing host has no separate data.
func (a *virtualizingAdapter) ItemAt(index int) any {
	return a.ctx.Children()[index]
}

func (a *virtualizingAdapter) GetOrCreateElementAt(index int, _ RealizationOptions) Element {
	return a.ctx.Children()[index]
}

// RecycleElement is a no-op: children belong to the host for its lifetime.
func (a *virtualizingAdapter) RecycleElement(Element) {}

func (a *virtualizingAdapter) RealizationRect() graphics.Rect {
	return graphics.InfiniteRect()
}

func (a *virtualizingAdapter) RecommendedAnchorIndex() int {
	return -1
}

func (a *virtualizingAdapter) LayoutOrigin() graphics.Offset {
	return graphics.Offset{}
}

func (a *virtualizingAdapter) SetLayoutOrigin(origin graphics.Offset) {
	if origin != (graphics.Offset{}) {
		errors.Raisef("layout.AsVirtualizing.SetLayoutOrigin", errors.KindLayoutOrigin, errors.ErrLayoutOriginNotZero,
			"got (%g,%g)", origin.X, origin.Y)
	}
}
