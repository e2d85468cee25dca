// Package recycle keeps spare elements for reuse and builds new ones from
// keyed templates.
package recycle

import (
	"slices"

	"github.com/go-drift/repeater/pkg/errors"
	"github.com/go-drift/repeater/pkg/layout"
)

type entry struct {
	element layout.Element
	owner   layout.Parent
}

// Pool holds recycled elements by reuse key.
//
// Each entry remembers the container it was recycled from. TryGetElement
// prefers an element from the requesting container, then one with no owner,
// then any element for the key. The zero value is ready to use.
type Pool struct {
	entries map[string][]entry
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// PutElement adds element under key. The element may still be attached to
// owner; it is detached when it leaves the pool. Its own state is left as is.
func (p *Pool) PutElement(element layout.Element, key string, owner layout.Parent) {
	if parent := element.Parent(); parent != nil && parent != owner {
		errors.Raisef("recycle.Pool.PutElement", errors.KindOwner, errors.ErrInvalidOwner,
			"element is attached to %T, not the recycling owner", parent)
	}
	if p.entries == nil {
		p.entries = make(map[string][]entry)
	}
	p.entries[key] = append(p.entries[key], entry{element: element, owner: owner})
}

// TryGetElement removes and returns an element for key. The returned element
// is always detached from its former container.
func (p *Pool) TryGetElement(key string, owner layout.Parent) (layout.Element, bool) {
	list := p.entries[key]
	if len(list) == 0 {
		return nil, false
	}
	i := slices.IndexFunc(list, func(e entry) bool { return e.owner == owner })
	if i < 0 {
		i = slices.IndexFunc(list, func(e entry) bool { return e.owner == nil })
	}
	if i < 0 {
		i = 0
	}
	element := list[i].element
	p.entries[key] = slices.Delete(list, i, i+1)

	if parent := element.Parent(); parent != nil {
		parent.RemoveChild(element)
		if element.Parent() != nil {
			element.SetParent(nil)
		}
	}
	return element, true
}

// Len returns the number of spare elements for key.
func (p *Pool) Len(key string) int {
	return len(p.entries[key])
}
