package repeater

import (
	"slices"

	"github.com/go-drift/repeater/pkg/errors"
	"github.com/go-drift/repeater/pkg/layout"
)

// phaser runs the phased content work of realized elements on scheduler
// frames. Elements intersecting the visible window run first, then the
// lowest pending phase.
type phaser struct {
	r          *Repeater
	pending    []layout.Element
	registered bool
}

// phaseElement queues element when its content has phases left to run.
func (p *phaser) phaseElement(element layout.Element, info *VirtualizationInfo) {
	if info.phase <= 0 {
		return
	}
	p.pending = slices.Insert(p.pending, 0, element)
	p.register()
}

// stopPhasing drops any pending work for element.
func (p *phaser) stopPhasing(element layout.Element, info *VirtualizationInfo) {
	p.remove(element)
	info.phase = PhaseNotSpecified
}

func (p *phaser) remove(element layout.Element) {
	p.pending = slices.DeleteFunc(p.pending, func(e layout.Element) bool { return e == element })
}

func (p *phaser) register() {
	if p.registered || len(p.pending) == 0 {
		return
	}
	p.registered = true
	priority := p.r.infos[p.pending[len(p.pending)-1]].phase
	p.r.scheduler.RegisterWork(priority, p.doPhasedWork)
}

func (p *phaser) doPhasedWork() {
	p.registered = false
	// Also runs when a callback panics, so the remaining elements keep
	// their turn.
	defer p.register()
	if len(p.pending) == 0 {
		return
	}
	r := p.r
	window := r.viewport.visibleWindow()
	visible := func(e layout.Element) bool {
		return r.infos[e].arrangeBounds.Intersects(window)
	}
	// The next element to run sorts to the back.
	slices.SortStableFunc(p.pending, func(a, b layout.Element) int {
		if va, vb := visible(a), visible(b); va != vb {
			if va {
				return 1
			}
			return -1
		}
		return r.infos[b].phase - r.infos[a].phase
	})

	batch := slices.Clone(p.pending)
	for i := len(batch) - 1; i >= 0 && !r.scheduler.ShouldYield(); i-- {
		element := batch[i]
		info := r.infos[element]
		if info == nil || !slices.Contains(p.pending, element) {
			continue
		}
		current := info.phase
		info.phase = PhaseNotSpecified
		args := &ContentChangingArgs{Index: info.index, Data: info.data, Element: element, Phase: current}
		r.raiseContentChanging(args)

		next := args.NextPhase()
		if next > 0 && next <= current {
			p.remove(element)
			errors.Raisef("repeater.phaser.DoPhasedWork", errors.KindPhase, errors.ErrPhaseOrder,
				"index=%d current=%d next=%d", info.index, current, next)
		}
		info.phase = max(next, PhaseReachedEnd)

		element.InvalidateMeasure()
		element.Measure(element.LastAvailableSize())
		if info.phase == PhaseReachedEnd {
			p.remove(element)
		}
	}
	if len(p.pending) > 0 {
		r.logger.Debug("phasing", "pending", len(p.pending))
	}
}
