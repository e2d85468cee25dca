package flow

import (
	"slices"

	"github.com/go-drift/repeater/pkg/graphics"
	"github.com/go-drift/repeater/pkg/items"
	"github.com/go-drift/repeater/pkg/layout"
)

// elementManager tracks the contiguous range of realized elements and their
// provisional layout bounds.
//
// For a virtualizing context the range is a window [firstRealizedDataIndex,
// firstRealizedDataIndex+len(realized)). A nil entry is a sentinel for an
// item that was inserted inside the window and has no element yet. For a
// non-virtualizing context every child is realized and only the bounds are
// stored, indexed by data index.
type elementManager struct {
	ctx                    layout.VirtualizingContext
	realized               []layout.Element
	bounds                 []graphics.Rect
	firstRealizedDataIndex int
}

func newElementManager() elementManager {
	return elementManager{firstRealizedDataIndex: -1}
}

func (m *elementManager) setContext(ctx layout.VirtualizingContext) {
	m.ctx = ctx
}

func (m *elementManager) isVirtualizingContext() bool {
	return m.ctx != nil && !m.ctx.RealizationRect().IsInfinite()
}

func (m *elementManager) onBeginMeasure(o layout.Orientation) {
	if m.ctx == nil {
		return
	}
	if m.isVirtualizingContext() {
		// Clearing elements outside the window up front makes them available
		// for reuse during this pass.
		m.discardElementsOutsideWindow(m.ctx.RealizationRect(), o)
		return
	}
	if count := m.ctx.ItemCount(); count != len(m.bounds) {
		m.bounds = slices.Grow(m.bounds[:0], count)[:count]
		clear(m.bounds)
	}
}

func (m *elementManager) realizedCount() int {
	if m.isVirtualizingContext() {
		return len(m.realized)
	}
	return m.ctx.ItemCount()
}

// elementAt returns the element at a realized index, creating one for a
// sentinel entry.
func (m *elementManager) elementAt(realizedIndex int) layout.Element {
	if !m.isVirtualizingContext() {
		return m.ctx.GetOrCreateElementAt(realizedIndex, layout.ForceCreate|layout.SuppressAutoRecycle)
	}
	element := m.realized[realizedIndex]
	if element == nil {
		dataIndex := m.dataIndexFromRealizedIndex(realizedIndex)
		element = m.ctx.GetOrCreateElementAt(dataIndex, layout.ForceCreate|layout.SuppressAutoRecycle)
		m.realized[realizedIndex] = element
	}
	return element
}

func (m *elementManager) add(element layout.Element, dataIndex int) {
	if len(m.realized) == 0 {
		m.firstRealizedDataIndex = dataIndex
	}
	m.realized = append(m.realized, element)
	m.bounds = append(m.bounds, graphics.Rect{})
}

func (m *elementManager) insert(realizedIndex, dataIndex int, element layout.Element) {
	if realizedIndex == 0 {
		m.firstRealizedDataIndex = dataIndex
	}
	m.realized = slices.Insert(m.realized, realizedIndex, element)
	m.bounds = slices.Insert(m.bounds, realizedIndex, graphics.Rect{})
}

// clearRealizedRange recycles count elements starting at realizedIndex.
// Elements are recycled from the edge inwards.
func (m *elementManager) clearRealizedRange(realizedIndex, count int) {
	for i := 0; i < count; i++ {
		index := realizedIndex + i
		if realizedIndex != 0 {
			index = realizedIndex + count - 1 - i
		}
		if element := m.realized[index]; element != nil {
			m.ctx.RecycleElement(element)
		}
	}
	end := realizedIndex + count
	m.realized = slices.Delete(m.realized, realizedIndex, end)
	m.bounds = slices.Delete(m.bounds, realizedIndex, end)
	if realizedIndex == 0 {
		if len(m.realized) == 0 {
			m.firstRealizedDataIndex = -1
		} else {
			m.firstRealizedDataIndex += count
		}
	}
}

// discardElementsOutsideWindowFrom drops stale elements at or beyond
// dataIndex (forward) or at or before it (backward).
func (m *elementManager) discardElementsOutsideWindowFrom(forward bool, dataIndex int) {
	if !m.isDataIndexRealized(dataIndex) {
		return
	}
	realizedIndex := m.realizedIndexFromDataIndex(dataIndex)
	if forward {
		m.clearRealizedRange(realizedIndex, len(m.realized)-realizedIndex)
	} else {
		m.clearRealizedRange(0, realizedIndex+1)
	}
}

// discardElementsOutsideWindow clears realized elements at both ends that do
// not intersect window along the major axis. One element outside the window
// is tolerated at each end: generation stops after it has laid out an
// element beyond the window, and it protects an anchor that is not in the
// window yet.
func (m *elementManager) discardElementsOutsideWindow(window graphics.Rect, o layout.Orientation) {
	size := len(m.realized)
	frontCutoff := -1
	backCutoff := size
	for i := 0; i < size && !intersectsMajor(window, m.bounds[i], o); i++ {
		frontCutoff++
	}
	for i := size - 1; i >= 0 && !intersectsMajor(window, m.bounds[i], o); i-- {
		backCutoff--
	}
	if backCutoff < size-1 {
		m.clearRealizedRange(backCutoff+1, size-backCutoff-1)
	}
	if frontCutoff > 0 {
		m.clearRealizedRange(0, min(frontCutoff, len(m.realized)))
	}
}

func intersectsMajor(window, bounds graphics.Rect, o layout.Orientation) bool {
	return o.MajorEnd(window) >= o.MajorStart(bounds) && o.MajorStart(window) <= o.MajorEnd(bounds)
}

// clearAll recycles every realized element.
func (m *elementManager) clearAll() {
	if m.ctx != nil && m.isVirtualizingContext() {
		for _, element := range m.realized {
			if element != nil {
				m.ctx.RecycleElement(element)
			}
		}
	}
	m.realized = nil
	m.bounds = nil
	m.firstRealizedDataIndex = -1
}

func (m *elementManager) isDataIndexRealized(index int) bool {
	if !m.isVirtualizingContext() {
		return index >= 0 && index < m.ctx.ItemCount()
	}
	count := len(m.realized)
	return count > 0 && m.firstRealizedDataIndex <= index && index <= m.firstRealizedDataIndex+count-1
}

func (m *elementManager) isIndexValidInData(index int) bool {
	return index >= 0 && index < m.ctx.ItemCount()
}

func (m *elementManager) realizedElement(dataIndex int) layout.Element {
	if !m.isVirtualizingContext() {
		return m.ctx.GetOrCreateElementAt(dataIndex, layout.ForceCreate|layout.SuppressAutoRecycle)
	}
	return m.elementAt(m.realizedIndexFromDataIndex(dataIndex))
}

func (m *elementManager) ensureElementRealized(forward bool, dataIndex int) {
	if m.isDataIndexRealized(dataIndex) {
		return
	}
	element := m.ctx.GetOrCreateElementAt(dataIndex, layout.SuppressAutoRecycle)
	if forward {
		m.add(element, dataIndex)
	} else {
		m.insert(0, dataIndex, element)
	}
}

// isWindowConnected reports whether the realized range overlaps window along
// the major axis.
func (m *elementManager) isWindowConnected(window graphics.Rect, o layout.Orientation) bool {
	if len(m.bounds) == 0 {
		return false
	}
	first := m.boundsForRealizedIndex(0)
	last := m.boundsForRealizedIndex(m.realizedCount() - 1)
	return o.MajorStart(first) <= o.MajorEnd(window) && o.MajorEnd(last) >= o.MajorStart(window)
}

func (m *elementManager) boundsForDataIndex(dataIndex int) graphics.Rect {
	return m.bounds[m.realizedIndexFromDataIndex(dataIndex)]
}

func (m *elementManager) setBoundsForDataIndex(dataIndex int, bounds graphics.Rect) {
	m.bounds[m.realizedIndexFromDataIndex(dataIndex)] = bounds
}

func (m *elementManager) boundsForRealizedIndex(realizedIndex int) graphics.Rect {
	return m.bounds[realizedIndex]
}

func (m *elementManager) setBoundsForRealizedIndex(realizedIndex int, bounds graphics.Rect) {
	m.bounds[realizedIndex] = bounds
}

func (m *elementManager) dataIndexFromRealizedIndex(realizedIndex int) int {
	if m.isVirtualizingContext() {
		return realizedIndex + m.firstRealizedDataIndex
	}
	return realizedIndex
}

func (m *elementManager) realizedIndexFromDataIndex(dataIndex int) int {
	if m.isVirtualizingContext() {
		return dataIndex - m.firstRealizedDataIndex
	}
	return dataIndex
}

// dataSourceChanged keeps the realized range consistent with a change that
// has already been applied to the items source.
func (m *elementManager) dataSourceChanged(change items.Change) {
	if len(m.realized) == 0 {
		return
	}
	switch change.Action {
	case items.Add:
		m.onItemsAdded(change.NewStart, change.NewCount)
	case items.Replace:
		if change.OldCount == change.NewCount && change.OldStart == change.NewStart &&
			m.isDataIndexRealized(change.OldStart) && m.isDataIndexRealized(change.OldStart+change.OldCount-1) {
			// A straight replace inside the window: recycle the elements and
			// leave sentinels so the anchor survives.
			start := m.realizedIndexFromDataIndex(change.OldStart)
			for i := start; i < start+change.OldCount; i++ {
				if element := m.realized[i]; element != nil {
					m.ctx.RecycleElement(element)
					m.realized[i] = nil
				}
			}
		} else {
			m.onItemsRemoved(change.OldStart, change.OldCount)
			m.onItemsAdded(change.NewStart, change.NewCount)
		}
	case items.Remove:
		m.onItemsRemoved(change.OldStart, change.OldCount)
	case items.Move:
		m.onItemsRemoved(change.OldStart, change.OldCount)
		m.onItemsAdded(change.NewStart, change.OldCount)
	case items.Reset:
		m.clearAll()
	}
}

func (m *elementManager) onItemsAdded(index, count int) {
	lastRealizedDataIndex := m.firstRealizedDataIndex + len(m.realized) - 1
	if index >= m.firstRealizedDataIndex && index <= lastRealizedDataIndex {
		// Inserted inside the range: keep the mapping contiguous with
		// sentinels instead of creating elements the next pass may discard.
		start := index - m.firstRealizedDataIndex
		for i := 0; i < count; i++ {
			m.insert(start+i, index+i, nil)
		}
	} else if index <= m.firstRealizedDataIndex {
		m.firstRealizedDataIndex += count
	}
}

func (m *elementManager) onItemsRemoved(index, count int) {
	lastRealizedDataIndex := m.firstRealizedDataIndex + len(m.realized) - 1
	start := max(m.firstRealizedDataIndex, index)
	end := min(lastRealizedDataIndex, index+count-1)
	affectsFirst := index <= m.firstRealizedDataIndex
	if end >= start {
		m.clearRealizedRange(m.realizedIndexFromDataIndex(start), end-start+1)
	}
	if affectsFirst && m.firstRealizedDataIndex != -1 {
		m.firstRealizedDataIndex -= count
	}
}
