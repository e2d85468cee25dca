package widgets

import (
	"slices"

	"github.com/go-drift/repeater/pkg/graphics"
	"github.com/go-drift/repeater/pkg/layout"
)

// Panel lays out a fixed list of children with a layout.
//
// A Panel is a non-virtualizing host: every child is realized for its whole
// lifetime and the layout is handed the Panel itself as its context.
// Virtualizing layouts see every child as realized and an infinite
// realization rect.
type Panel struct {
	layout.ElementBase
	layout    layout.Layout
	observers []func()
	children  []layout.Element
	state     any
}

// NewPanel returns a Panel with l and children.
func NewPanel(l layout.Layout, children ...layout.Element) *Panel {
	p := &Panel{}
	p.SetSelf(p)
	for _, child := range children {
		p.Add(child)
	}
	p.SetLayout(l)
	return p
}

// Layout returns the current layout.
func (p *Panel) Layout() layout.Layout { return p.layout }

// SetLayout replaces the layout.
func (p *Panel) SetLayout(l layout.Layout) {
	if p.layout == l {
		return
	}
	if p.layout != nil {
		for _, remove := range p.observers {
			remove()
		}
		p.observers = nil
		p.layout.UninitializeForContext(p)
		p.state = nil
	}
	p.layout = l
	if l != nil {
		l.InitializeForContext(p)
		p.observers = []func(){
			l.OnMeasureInvalidated(p.InvalidateMeasure),
			l.OnArrangeInvalidated(p.InvalidateArrange),
		}
	}
	p.InvalidateMeasure()
}

// Add appends child, detaching it from any previous container.
func (p *Panel) Add(child layout.Element) {
	if !layout.AttachChild(child, p) {
		return
	}
	p.children = append(p.children, child)
	p.InvalidateMeasure()
}

// RemoveChild detaches child.
func (p *Panel) RemoveChild(child layout.Element) {
	i := slices.Index(p.children, child)
	if i < 0 {
		return
	}
	p.children = slices.Delete(p.children, i, i+1)
	child.SetParent(nil)
	p.InvalidateMeasure()
}

// Children returns the children in order.
func (p *Panel) Children() []layout.Element { return p.children }

// LayoutState returns the state stored by the layout.
func (p *Panel) LayoutState() any { return p.state }

// SetLayoutState stores the layout's state.
func (p *Panel) SetLayoutState(state any) { p.state = state }

func (p *Panel) MeasureOverride(available graphics.Size) graphics.Size {
	if p.layout == nil {
		return graphics.Size{}
	}
	return p.layout.Measure(p, available)
}

func (p *Panel) ArrangeOverride(final graphics.Size) graphics.Size {
	if p.layout == nil {
		return final
	}
	return p.layout.Arrange(p, final)
}
