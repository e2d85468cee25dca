package layout

import (
	"github.com/go-drift/repeater/pkg/graphics"
)

// Element is a measurable, arrangeable node that a layout positions.
type Element interface {
	// Measure computes the desired size for the given available size.
	Measure(available graphics.Size)
	DesiredSize() graphics.Size
	// Arrange assigns the final layout slot.
	Arrange(rect graphics.Rect)
	// Bounds returns the slot passed to the last Arrange call.
	Bounds() graphics.Rect
	Parent() Parent
	SetParent(parent Parent)
	// InvalidateMeasure marks the element dirty and propagates to its parent.
	InvalidateMeasure()
	NeedsMeasure() bool
	// LastAvailableSize returns the size passed to the last Measure call.
	LastAvailableSize() graphics.Size
	// ReuseKey returns the recycle key stamped by the element factory.
	ReuseKey() string
	SetReuseKey(key string)
}

// Parent is a container that can hold elements.
type Parent interface {
	// RemoveChild detaches child from the container.
	RemoveChild(child Element)
}

// DataBinder is implemented by elements that display a data item.
// Hosts call BindData when an element is prepared for an item and with nil
// when it is cleared.
type DataBinder interface {
	BindData(data any)
}

// ElementBase provides base behavior for elements.
//
// Concrete elements embed ElementBase, call SetSelf from their constructor,
// and implement MeasureOverride and optionally ArrangeOverride. Measure only
// calls MeasureOverride when the element is dirty or the available size
// changed, so layouts may measure every realized element on every pass.
type ElementBase struct {
	self         Element
	parent       Parent
	owner        *Pipeline
	desiredSize  graphics.Size
	bounds       graphics.Rect
	available    graphics.Size // last available size
	measured     bool
	needsMeasure bool // local dirty flag
	needsArrange bool
	reuseKey     string
}

// SetSelf registers the concrete element for override dispatch.
func (e *ElementBase) SetSelf(self Element) {
	e.self = self
	e.needsMeasure = true // New elements always need initial measure
	e.needsArrange = true
}

// Self returns the concrete element registered via SetSelf.
func (e *ElementBase) Self() Element {
	return e.self
}

// SetOwner assigns the pipeline that schedules this element when it is a root.
func (e *ElementBase) SetOwner(owner *Pipeline) {
	e.owner = owner
}

// Measure handles caching and delegates to MeasureOverride.
func (e *ElementBase) Measure(available graphics.Size) {
	if !e.needsMeasure && e.measured && e.available == available {
		return
	}
	e.available = available
	e.needsMeasure = false
	e.needsArrange = true
	e.measured = true
	if measurer, ok := e.self.(interface {
		MeasureOverride(graphics.Size) graphics.Size
	}); ok {
		e.desiredSize = measurer.MeasureOverride(available)
	}
}

// DesiredSize returns the size computed by the last measure.
func (e *ElementBase) DesiredSize() graphics.Size {
	return e.desiredSize
}

// Arrange records the layout slot and delegates to ArrangeOverride when the
// slot changed or the element was re-measured.
func (e *ElementBase) Arrange(rect graphics.Rect) {
	if !e.needsArrange && e.bounds == rect {
		return
	}
	e.bounds = rect
	e.needsArrange = false
	if arranger, ok := e.self.(interface {
		ArrangeOverride(graphics.Size) graphics.Size
	}); ok {
		arranger.ArrangeOverride(rect.Size())
	}
}

// Bounds returns the last layout slot.
func (e *ElementBase) Bounds() graphics.Rect {
	return e.bounds
}

// Parent returns the container holding the element.
func (e *ElementBase) Parent() Parent {
	return e.parent
}

// SetParent sets the containing element.
func (e *ElementBase) SetParent(parent Parent) {
	if e.parent == parent {
		return
	}
	e.parent = parent
	e.needsMeasure = true
	e.needsArrange = true
}

// NeedsMeasure returns true if the element must be measured again.
func (e *ElementBase) NeedsMeasure() bool {
	return e.needsMeasure
}

// LastAvailableSize returns the size passed to the last Measure call.
func (e *ElementBase) LastAvailableSize() graphics.Size {
	return e.available
}

// ReuseKey returns the recycle key.
func (e *ElementBase) ReuseKey() string {
	return e.reuseKey
}

// SetReuseKey stamps the recycle key.
func (e *ElementBase) SetReuseKey(key string) {
	e.reuseKey = key
}

// InvalidateMeasure marks this element as needing measure.
//
// The walk continues up through parents that are themselves elements until
// it reaches a root, which is scheduled with its pipeline. A parent whose
// desired size depends on its children must be measured again when a child
// changes.
func (e *ElementBase) InvalidateMeasure() {
	if e.needsMeasure {
		return
	}
	e.needsMeasure = true
	e.needsArrange = true

	if invalidator, ok := e.parent.(interface{ InvalidateMeasure() }); ok {
		invalidator.InvalidateMeasure()
		return
	}

	if e.owner != nil && e.self != nil {
		e.owner.ScheduleLayout(e.self)
	}
}

// InvalidateArrange marks this element as needing arrange without
// re-measuring it.
func (e *ElementBase) InvalidateArrange() {
	e.needsArrange = true
	if invalidator, ok := e.parent.(interface{ InvalidateArrange() }); ok {
		invalidator.InvalidateArrange()
		return
	}
	if e.owner != nil && e.self != nil {
		e.owner.ScheduleLayout(e.self)
	}
}

// AttachChild detaches child from its current container and attaches it to
// parent. It returns false when child is already held by parent.
func AttachChild(child Element, parent Parent) bool {
	if child == nil {
		return false
	}
	current := child.Parent()
	if current == parent {
		return false
	}
	if current != nil {
		current.RemoveChild(child)
	}
	child.SetParent(parent)
	return true
}
