package recycle

import (
	"github.com/go-drift/repeater/pkg/errors"
	"github.com/go-drift/repeater/pkg/layout"
)

// ElementFactory produces and takes back the elements a host displays.
type ElementFactory interface {
	// GetElement returns an unparented element able to display data.
	GetElement(data any, parent layout.Parent) layout.Element
	// RecycleElement takes back an element that parent no longer displays.
	RecycleElement(element layout.Element, parent layout.Parent)
}

// Template builds new elements.
type Template interface {
	Build() layout.Element
}

// TemplateFunc adapts a function to a Template.
type TemplateFunc func() layout.Element

// Build calls f.
func (f TemplateFunc) Build() layout.Element {
	return f()
}

// Factory is an ElementFactory over keyed templates and a Pool.
//
// With a single template every item uses it. With several, SelectTemplateKey
// picks the key for each item. Elements are stamped with their key so that
// recycling returns them to the matching spare list.
type Factory struct {
	Pool              *Pool
	Templates         map[string]Template
	SelectTemplateKey func(data any) string
}

// NewFactory returns a Factory with its own pool.
func NewFactory(templates map[string]Template) *Factory {
	return &Factory{Pool: NewPool(), Templates: templates}
}

// GetElement returns a pooled element for the item's key or builds one.
func (f *Factory) GetElement(data any, parent layout.Parent) layout.Element {
	key, template := f.template(data)
	if element, ok := f.pool().TryGetElement(key, parent); ok {
		return element
	}
	element := template.Build()
	element.SetReuseKey(key)
	return element
}

// RecycleElement returns element to the pool under its stamped key.
func (f *Factory) RecycleElement(element layout.Element, parent layout.Parent) {
	f.pool().PutElement(element, element.ReuseKey(), parent)
}

func (f *Factory) pool() *Pool {
	if f.Pool == nil {
		f.Pool = NewPool()
	}
	return f.Pool
}

func (f *Factory) template(data any) (string, Template) {
	const op = "recycle.Factory.GetElement"
	if len(f.Templates) == 0 {
		errors.Raise(op, errors.KindTemplate, errors.ErrNoTemplates)
	}
	if len(f.Templates) == 1 {
		for key, template := range f.Templates {
			return key, template
		}
	}

	var key string
	if f.SelectTemplateKey != nil {
		key = f.SelectTemplateKey(data)
	}
	if key == "" {
		errors.Raisef(op, errors.KindTemplate, errors.ErrEmptyTemplateKey,
			"%d templates registered and no key selected for %v", len(f.Templates), data)
	}
	template, ok := f.Templates[key]
	if !ok {
		errors.Raisef(op, errors.KindTemplate, errors.ErrUnknownTemplateKey, "key %q", key)
	}
	return key, template
}
