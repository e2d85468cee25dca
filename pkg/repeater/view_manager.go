package repeater

import (
	"slices"

	"github.com/go-drift/repeater/pkg/errors"
	"github.com/go-drift/repeater/pkg/items"
	"github.com/go-drift/repeater/pkg/layout"
)

// viewManager hands out and takes back the elements of one Repeater.
//
// An element requested by the layout comes, in order of preference, from
// the elements the layout already holds, the anchor made for a bring into
// view request, the pinned pool, and finally the element factory.
type viewManager struct {
	r      *Repeater
	pinned []layout.Element
}

func (v *viewManager) getElement(index int, options layout.RealizationOptions) layout.Element {
	var element layout.Element
	if !options.Has(layout.ForceCreate) {
		element = v.heldByLayout(index)
	}
	if element == nil {
		element = v.madeAnchor(index)
	}
	if element == nil {
		element = v.fromPinnedPool(index)
	}
	if element == nil {
		element = v.fromElementFactory(index)
	}

	info := v.r.infos[element]
	if options.Has(layout.SuppressAutoRecycle) {
		info.autoRecycleCandidate = false
	} else {
		info.autoRecycleCandidate = true
		info.keepAlive = true
	}
	return element
}

func (v *viewManager) heldByLayout(index int) layout.Element {
	for _, child := range v.r.children {
		if info := v.r.infos[child]; info != nil && info.owner == OwnerLayout && info.index == index {
			return child
		}
	}
	return nil
}

func (v *viewManager) madeAnchor(index int) layout.Element {
	anchor := v.r.madeAnchor
	if anchor == nil {
		return nil
	}
	if info := v.r.infos[anchor]; info != nil && info.owner == OwnerLayout && info.index == index {
		return anchor
	}
	return nil
}

func (v *viewManager) fromPinnedPool(index int) layout.Element {
	for i, element := range v.pinned {
		info := v.r.infos[element]
		if info.index != index {
			continue
		}
		v.pinned = slices.Delete(v.pinned, i, i+1)
		info.owner = OwnerLayout
		return element
	}
	return nil
}

func (v *viewManager) fromElementFactory(index int) layout.Element {
	r := v.r
	data := r.source.At(index)
	element := r.factory.GetElement(data, r)
	layout.AttachChild(element, r)
	if !slices.Contains(r.children, element) {
		r.children = append(r.children, element)
	}

	info := r.infos[element]
	if info == nil {
		info = newVirtualizationInfo()
		r.infos[element] = info
	}
	info.moveOwnershipToLayout(index, data)
	if binder, ok := element.(layout.DataBinder); ok {
		binder.BindData(data)
	}

	args := &ContentChangingArgs{Index: index, Data: data, Element: element, Phase: PhaseReachedEnd}
	r.raiseContentChanging(args)
	if next := args.NextPhase(); next > 0 {
		info.phase = next
	} else {
		info.phase = PhaseReachedEnd
	}

	r.raiseElementPrepared(element, index)
	r.phaser.phaseElement(element, info)
	r.logger.Debug("realized", "index", index, "children", len(r.children))
	return element
}

// clearElement releases an element the layout no longer needs. Elements the
// layout does not hold are ignored, so a layout recycling an element already
// cleared by a collection change is harmless.
func (v *viewManager) clearElement(element layout.Element, dueToCollectionChange bool) {
	info := v.r.infos[element]
	if info == nil || info.owner != OwnerLayout {
		return
	}
	if !dueToCollectionChange && info.IsPinned() {
		info.moveOwnershipToPinnedPool()
		v.pinned = append(v.pinned, element)
		return
	}
	v.clearToElementFactory(element, info)
}

func (v *viewManager) clearToElementFactory(element layout.Element, info *VirtualizationInfo) {
	r := v.r
	index := info.index
	r.raiseElementClearing(element)
	r.phaser.stopPhasing(element, info)
	if binder, ok := element.(layout.DataBinder); ok {
		binder.BindData(nil)
	}
	info.moveOwnershipToElementFactory()
	r.factory.RecycleElement(element, r)
	if r.madeAnchor == element {
		r.madeAnchor = nil
	}
	r.logger.Debug("cleared", "index", index)
}

// prunePinnedElements returns elements that are no longer pinned, or whose
// item is gone, to the factory.
func (v *viewManager) prunePinnedElements() {
	count := v.r.ItemCount()
	v.pinned = slices.DeleteFunc(v.pinned, func(element layout.Element) bool {
		info := v.r.infos[element]
		if info.IsPinned() && info.index < count {
			return false
		}
		v.clearToElementFactory(element, info)
		return true
	})
}

// clearAll returns every realized element to the factory.
func (v *viewManager) clearAll() {
	for _, child := range slices.Clone(v.r.children) {
		if info := v.r.infos[child]; info != nil && info.IsRealized() {
			v.clearToElementFactory(child, info)
		}
	}
	v.pinned = nil
}

// onItemsChanged updates realized elements for a change already applied to
// the items source.
func (v *viewManager) onItemsChanged(change items.Change) {
	switch change.Action {
	case items.Add:
		v.shiftIndices(change.NewStart, change.NewCount)
	case items.Replace:
		if change.OldStart != change.NewStart || change.OldCount == 0 || change.NewCount == 0 {
			errors.Raisef("repeater.Repeater.OnItemsChanged", errors.KindCollection, errors.ErrInvalidReplace,
				"%s", change)
		}
		v.clearRange(change.OldStart, change.OldCount)
		v.shiftIndices(change.OldStart+change.OldCount, change.NewCount-change.OldCount)
	case items.Remove:
		v.clearRange(change.OldStart, change.OldCount)
		v.shiftIndices(change.OldStart+change.OldCount, -change.OldCount)
	case items.Move:
		v.clearRange(change.OldStart, change.OldCount)
		end := change.OldStart + change.OldCount
		v.remapIndices(func(index int) int {
			if index >= end {
				index -= change.OldCount
			}
			if index >= change.NewStart {
				index += change.OldCount
			}
			return index
		})
	case items.Reset:
		v.clearAll()
	}
}

func (v *viewManager) clearRange(start, count int) {
	for _, child := range slices.Clone(v.r.children) {
		info := v.r.infos[child]
		if info == nil || !info.IsRealized() || info.index < start || info.index >= start+count {
			continue
		}
		if info.owner == OwnerPinnedPool {
			v.pinned = slices.DeleteFunc(v.pinned, func(e layout.Element) bool { return e == child })
			v.clearToElementFactory(child, info)
			continue
		}
		v.clearElement(child, true)
	}
}

// shiftIndices moves every realized element at or after start by delta.
func (v *viewManager) shiftIndices(start, delta int) {
	if delta == 0 {
		return
	}
	v.remapIndices(func(index int) int {
		if index < start {
			return index
		}
		return index + delta
	})
}

// remapIndices gives every realized element the index mapping returns for
// its current one. Elements whose index changes are rebound and reported
// once.
func (v *viewManager) remapIndices(mapping func(index int) int) {
	for _, child := range v.r.children {
		info := v.r.infos[child]
		if info == nil || !info.IsRealized() {
			continue
		}
		old := info.index
		next := mapping(old)
		if next == old {
			continue
		}
		info.index = next
		info.data = v.r.source.At(next)
		v.r.raiseElementIndexChanged(child, old, next)
	}
}
