// Package layout defines elements, the contexts through which layouts talk
// to their hosts, and the pipeline that flushes dirty element trees.
package layout

import (
	"slices"

	"github.com/go-drift/repeater/pkg/graphics"
	"github.com/go-drift/repeater/pkg/items"
)

// Kind tags a layout as virtualizing or not. A host hands a virtualizing
// layout a VirtualizingContext and a non-virtualizing layout a
// NonVirtualizingContext.
type Kind int

const (
	Virtualizing Kind = iota
	NonVirtualizing
)

func (k Kind) String() string {
	if k == NonVirtualizing {
		return "non-virtualizing"
	}
	return "virtualizing"
}

// Layout positions the elements of a host container.
type Layout interface {
	Kind() Kind
	// InitializeForContext attaches the layout to a host and sets up the
	// per-host state.
	InitializeForContext(ctx Context)
	// UninitializeForContext detaches the layout and releases the state.
	UninitializeForContext(ctx Context)
	Measure(ctx Context, available graphics.Size) graphics.Size
	Arrange(ctx Context, final graphics.Size) graphics.Size
	// OnItemsChanged is called by virtualizing hosts when the items source changes.
	OnItemsChanged(ctx Context, change items.Change)
	// OnMeasureInvalidated registers fn to run when a layout property that
	// affects measure changes. The returned function removes it.
	OnMeasureInvalidated(fn func()) (remove func())
	// OnArrangeInvalidated is like OnMeasureInvalidated for arrange-only changes.
	OnArrangeInvalidated(fn func()) (remove func())
}

// Observers holds invalidation callbacks. Layout implementations embed it
// and call InvalidateMeasure or InvalidateArrange from their setters.
type Observers struct {
	measure []*callback
	arrange []*callback
	nextID  int
}

type callback struct {
	id int
	fn func()
}

// OnMeasureInvalidated registers fn for measure invalidations.
func (o *Observers) OnMeasureInvalidated(fn func()) func() {
	return o.add(&o.measure, fn)
}

// OnArrangeInvalidated registers fn for arrange invalidations.
func (o *Observers) OnArrangeInvalidated(fn func()) func() {
	return o.add(&o.arrange, fn)
}

// InvalidateMeasure notifies measure observers.
func (o *Observers) InvalidateMeasure() {
	for _, c := range slices.Clone(o.measure) {
		c.fn()
	}
}

// InvalidateArrange notifies arrange observers.
func (o *Observers) InvalidateArrange() {
	for _, c := range slices.Clone(o.arrange) {
		c.fn()
	}
}

func (o *Observers) add(list *[]*callback, fn func()) func() {
	o.nextID++
	id := o.nextID
	*list = append(*list, &callback{id: id, fn: fn})
	return func() {
		*list = slices.DeleteFunc(*list, func(c *callback) bool { return c.id == id })
	}
}
