package layout

import "github.com/go-drift/repeater/pkg/graphics"

// RealizationOptions control how a virtualizing context produces an element.
type RealizationOptions uint8

const (
	// ForceCreate skips any element the layout already holds for the index and
	// returns a fresh one. Used for one-off probe measurements.
	ForceCreate RealizationOptions = 1 << iota
	// SuppressAutoRecycle keeps the element alive until the layout recycles it
	// explicitly, even when a later measure pass does not ask for it.
	SuppressAutoRecycle
)

// Has reports whether all bits of flag are set.
func (o RealizationOptions) Has(flag RealizationOptions) bool {
	return o&flag == flag
}

// Context is the seam between a layout and the container hosting it.
type Context interface {
	// LayoutState returns the state the layout stored for this container.
	LayoutState() any
	SetLayoutState(state any)
}

// VirtualizingContext is the host side of a virtualizing layout.
type VirtualizingContext interface {
	Context
	ItemCount() int
	// ItemAt returns the data item without realizing an element for it.
	ItemAt(index int) any
	GetOrCreateElementAt(index int, options RealizationOptions) Element
	// RecycleElement returns an element the layout no longer needs.
	RecycleElement(element Element)
	// RealizationRect is the window the layout should fill with elements.
	RealizationRect() graphics.Rect
	// RecommendedAnchorIndex is the index the host wants the layout to start
	// from, or -1.
	RecommendedAnchorIndex() int
	LayoutOrigin() graphics.Offset
	SetLayoutOrigin(origin graphics.Offset)
}

// NonVirtualizingContext is the host side of a container whose children are
// all realized up front.
type NonVirtualizingContext interface {
	Context
	Children() []Element
}
