package layout

import "github.com/go-drift/repeater/pkg/graphics"

// Pipeline tracks root elements that need layout.
//
// InvalidateMeasure walks up to the root of an element tree and schedules it
// here. FlushLayout measures and arranges the root, which propagates down
// through every element marked along the way.
type Pipeline struct {
	dirty      []Element        // roots needing layout, in scheduling order
	dirtySet   map[Element]bool // O(1) dedup check
	needsFlush bool
	flushing   bool
}

// ScheduleLayout marks a root element as needing layout.
func (p *Pipeline) ScheduleLayout(element Element) {
	if p.dirtySet == nil {
		p.dirtySet = make(map[Element]bool)
	}
	if p.dirtySet[element] {
		return
	}
	p.dirtySet[element] = true
	p.dirty = append(p.dirty, element)
	p.needsFlush = true
}

// NeedsLayout reports if any root needs layout.
func (p *Pipeline) NeedsLayout() bool {
	return p.needsFlush
}

// FlushLayout lays out root at the given size.
//
// Roots scheduled while the flush runs (for example by a phase callback that
// re-measures an element) are laid out again before FlushLayout returns, up
// to a small number of passes.
func (p *Pipeline) FlushLayout(root Element, size graphics.Size) {
	if root == nil || p.flushing {
		return
	}
	p.flushing = true
	defer func() { p.flushing = false }()

	const maxPasses = 4
	for pass := 0; pass < maxPasses; pass++ {
		if pass > 0 && !p.needsFlush {
			return
		}
		p.dirty = nil
		p.dirtySet = nil
		p.needsFlush = false

		root.Measure(size)
		root.Arrange(graphics.Rect{Width: size.Width, Height: size.Height})
	}
}
