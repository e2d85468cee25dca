package repeater

import (
	"github.com/go-drift/repeater/pkg/errors"
	"github.com/go-drift/repeater/pkg/graphics"
	"github.com/go-drift/repeater/pkg/layout"
)

// repeaterContext is the layout context of a Repeater.
//
// It is a layout.VirtualizingContext. It also implements
// layout.NonVirtualizingContext so that a non-virtualizing layout can ask for
// every item at once.
type repeaterContext struct {
	r *Repeater
}

func (c *repeaterContext) LayoutState() any {
	return c.r.layoutState
}

func (c *repeaterContext) SetLayoutState(state any) {
	c.r.layoutState = state
}

func (c *repeaterContext) ItemCount() int {
	return c.r.ItemCount()
}

func (c *repeaterContext) ItemAt(index int) any {
	c.checkIndex("repeater.Context.ItemAt", index)
	return c.r.source.At(index)
}

func (c *repeaterContext) GetOrCreateElementAt(index int, options layout.RealizationOptions) layout.Element {
	c.checkIndex("repeater.Context.GetOrCreateElementAt", index)
	return c.r.views.getElement(index, options)
}

func (c *repeaterContext) RecycleElement(element layout.Element) {
	c.r.views.clearElement(element, false)
}

func (c *repeaterContext) RealizationRect() graphics.Rect {
	return c.r.viewport.realizationRect(c.r.layoutOrigin)
}

func (c *repeaterContext) RecommendedAnchorIndex() int {
	if anchor := c.r.viewport.recommendedAnchor; anchor >= 0 && anchor < c.r.ItemCount() {
		return anchor
	}
	return -1
}

func (c *repeaterContext) LayoutOrigin() graphics.Offset {
	return c.r.layoutOrigin
}

func (c *repeaterContext) SetLayoutOrigin(origin graphics.Offset) {
	c.r.setLayoutOrigin(origin)
}

// Children realizes every item. Elements a later pass stops asking for are
// recycled after that pass.
func (c *repeaterContext) Children() []layout.Element {
	count := c.r.ItemCount()
	children := make([]layout.Element, count)
	for i := range children {
		children[i] = c.r.views.getElement(i, 0)
	}
	return children
}

func (c *repeaterContext) checkIndex(op string, index int) {
	if index < 0 || index >= c.r.ItemCount() {
		errors.Raisef(op, errors.KindIndex, errors.ErrIndexOutOfRange, "index %d, count %d", index, c.r.ItemCount())
	}
}
