package flow

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/go-drift/repeater/pkg/graphics"
	"github.com/go-drift/repeater/pkg/items"
	"github.com/go-drift/repeater/pkg/layout"
)

// AnchorInfo is a known (index, offset) pair used to seed a measure pass.
// Index is -1 and Offset is NaN when no anchor exists.
type AnchorInfo struct {
	Index  int
	Offset float64
}

// NoAnchor is the AnchorInfo returned when nothing can be anchored.
func NoAnchor() AnchorInfo {
	return AnchorInfo{Index: -1, Offset: math.NaN()}
}

// RealizedRange describes the realized extremes passed to Callbacks.Extent.
// FirstIndex and LastIndex are -1 when nothing is realized.
type RealizedRange struct {
	FirstIndex  int
	FirstBounds graphics.Rect
	LastIndex   int
	LastBounds  graphics.Rect
}

// Empty reports whether no element is realized.
func (r RealizedRange) Empty() bool {
	return r.FirstIndex < 0
}

// Callbacks customize the Algorithm for a particular layout strategy.
type Callbacks interface {
	// MeasureSize returns the size an element is measured with.
	MeasureSize(index int, available graphics.Size, ctx layout.VirtualizingContext) graphics.Size
	// ProvisionalArrangeSize returns the size used for the element's bounds.
	ProvisionalArrangeSize(index int, measureSize, desiredSize graphics.Size, ctx layout.VirtualizingContext) graphics.Size
	// ShouldBreakLine reports whether the element at index starts a new line
	// given the minor-axis space left after placing it.
	ShouldBreakLine(index int, remainingSpace float64) bool
	AnchorForRealizationRect(available graphics.Size, ctx layout.VirtualizingContext) AnchorInfo
	AnchorForTargetElement(target int, available graphics.Size, ctx layout.VirtualizingContext) AnchorInfo
	Extent(available graphics.Size, ctx layout.VirtualizingContext, realized RealizedRange) graphics.Rect
	OnElementMeasured(element layout.Element, index int, available, measureSize, desiredSize, provisionalArrangeSize graphics.Size, ctx layout.VirtualizingContext)
	OnLineArranged(startIndex, countInLine int, lineSize float64, ctx layout.VirtualizingContext)
}

// MeasureParams configure one Algorithm.Measure pass.
type MeasureParams struct {
	IsWrapping            bool
	MinItemSpacing        float64
	LineSpacing           float64
	MaxItemsPerLine       int
	Orientation           layout.ScrollOrientation
	DisableVirtualization bool
	// LayoutID tags trace output.
	LayoutID string
}

type generateDirection int

const (
	forward generateDirection = iota
	backward
)

// Algorithm realizes and positions just enough elements to fill the
// realization rect, line by line, and estimates the extent of the whole
// collection from running averages.
type Algorithm struct {
	elements    elementManager
	callbacks   Callbacks
	ctx         layout.VirtualizingContext
	orientation layout.Orientation
	logger      *log.Logger

	lastExtent              graphics.Rect
	firstInWindow           int
	lastInWindow            int
	collectionChangePending bool
	lastAvailableSize       graphics.Size
	lastItemSpacing         float64
	isWrapping              bool
}

// NewAlgorithm returns an Algorithm. A nil logger selects log.Default().
func NewAlgorithm(logger *log.Logger) *Algorithm {
	if logger == nil {
		logger = log.Default()
	}
	return &Algorithm{
		elements:      newElementManager(),
		logger:        logger,
		firstInWindow: -1,
		lastInWindow:  -1,
	}
}

// LastExtent returns the extent computed by the last measure pass.
func (a *Algorithm) LastExtent() graphics.Rect {
	return a.lastExtent
}

// InitializeForContext binds the algorithm to a host.
func (a *Algorithm) InitializeForContext(ctx layout.VirtualizingContext, callbacks Callbacks) {
	a.callbacks = callbacks
	a.setContext(ctx)
}

// UninitializeForContext recycles the realized range and unbinds the host.
func (a *Algorithm) UninitializeForContext(ctx layout.VirtualizingContext) {
	a.setContext(ctx)
	if a.isVirtualizingContext() {
		a.elements.clearAll()
	}
	a.ctx = nil
	a.elements.setContext(nil)
}

func (a *Algorithm) setContext(ctx layout.VirtualizingContext) {
	a.ctx = ctx
	a.elements.setContext(ctx)
}

// RealizedCount returns the number of elements in the realized range.
func (a *Algorithm) RealizedCount() int {
	if a.ctx == nil {
		return 0
	}
	return a.elements.realizedCount()
}

// FirstRealizedIndex returns the data index of the first realized element, or -1.
func (a *Algorithm) FirstRealizedIndex() int {
	if a.RealizedCount() == 0 {
		return -1
	}
	return a.elements.dataIndexFromRealizedIndex(0)
}

// Measure runs one measure pass and returns the extent size.
func (a *Algorithm) Measure(available graphics.Size, ctx layout.VirtualizingContext, p MeasureParams) graphics.Size {
	a.setContext(ctx)
	a.orientation = layout.Orientation{Scroll: p.Orientation}
	maxItemsPerLine := p.MaxItemsPerLine
	if maxItemsPerLine <= 0 {
		maxItemsPerLine = math.MaxInt
	}

	// With an infinite minor size there is a single line and nothing to wrap.
	a.isWrapping = p.IsWrapping && !math.IsInf(a.orientation.Minor(available), 0)

	a.elements.onBeginMeasure(a.orientation)

	if suggested := ctx.RecommendedAnchorIndex(); a.elements.isIndexValidInData(suggested) {
		if !a.elements.isDataIndexRealized(suggested) {
			a.makeAnchor(suggested, available)
		}
	}

	anchorIndex := a.anchorIndex(available, p.IsWrapping, p.MinItemSpacing, p.DisableVirtualization)
	a.generate(forward, anchorIndex, available, p, maxItemsPerLine)
	a.generate(backward, anchorIndex, available, p, maxItemsPerLine)
	if p.IsWrapping && a.isReflowRequired() {
		first := a.elements.boundsForRealizedIndex(0)
		a.orientation.SetMinorStart(&first, 0)
		a.elements.setBoundsForRealizedIndex(0, first)
		a.generate(forward, 0, available, p, maxItemsPerLine)
	}

	a.raiseLineArranged()
	a.collectionChangePending = false
	a.lastExtent = a.estimateExtent(available)
	a.setLayoutOrigin()

	a.logger.Debug("measure", "layout", p.LayoutID, "anchor", anchorIndex,
		"realized", a.elements.realizedCount(), "extent", a.lastExtent)
	return a.lastExtent.Size()
}

// Arrange places every realized element, aligning each line along the
// minor axis, and returns the arranged size.
func (a *Algorithm) Arrange(final graphics.Size, ctx layout.VirtualizingContext, isWrapping bool, alignment LineAlignment, layoutID string) graphics.Size {
	a.setContext(ctx)
	a.arrangeVirtualizingLayout(final, alignment, isWrapping)
	a.logger.Debug("arrange", "layout", layoutID, "final", final)
	return graphics.Size{
		Width:  math.Max(final.Width, a.lastExtent.Width),
		Height: math.Max(final.Height, a.lastExtent.Height),
	}
}

// OnItemsChanged keeps the realized range in step with a change to the
// items source.
func (a *Algorithm) OnItemsChanged(ctx layout.VirtualizingContext, change items.Change) {
	a.setContext(ctx)
	a.elements.dataSourceChanged(change)
	a.collectionChangePending = true
}

// MeasureElement measures element at index and reports it to the callbacks.
// It returns the provisional arrange size.
func (a *Algorithm) MeasureElement(element layout.Element, index int, available graphics.Size, ctx layout.VirtualizingContext) graphics.Size {
	measureSize := a.callbacks.MeasureSize(index, available, ctx)
	element.Measure(measureSize)
	desired := element.DesiredSize()
	provisional := a.callbacks.ProvisionalArrangeSize(index, measureSize, desired, ctx)
	a.callbacks.OnElementMeasured(element, index, available, measureSize, desired, provisional, ctx)
	return provisional
}

// RealizedBounds returns the provisional bounds of a realized data index.
func (a *Algorithm) RealizedBounds(dataIndex int) (graphics.Rect, bool) {
	if a.ctx == nil || !a.elements.isDataIndexRealized(dataIndex) {
		return graphics.Rect{}, false
	}
	return a.elements.boundsForDataIndex(dataIndex), true
}

func (a *Algorithm) isVirtualizingContext() bool {
	return a.elements.isVirtualizingContext()
}

func (a *Algorithm) realizationRect() graphics.Rect {
	if a.isVirtualizingContext() {
		return a.ctx.RealizationRect()
	}
	return graphics.InfiniteRect()
}

// makeAnchor realizes the line holding index, starting at the line head.
func (a *Algorithm) makeAnchor(index int, available graphics.Size) {
	a.elements.clearAll()
	// Lines are laid out from their first element.
	head := a.callbacks.AnchorForTargetElement(index, available, a.ctx)
	start := max(0, head.Index)
	for dataIndex := start; dataIndex <= index; dataIndex++ {
		element := a.ctx.GetOrCreateElementAt(dataIndex, layout.ForceCreate|layout.SuppressAutoRecycle)
		element.Measure(a.callbacks.MeasureSize(dataIndex, available, a.ctx))
		a.elements.add(element, dataIndex)
	}
}

func (a *Algorithm) anchorIndex(available graphics.Size, isWrapping bool, minItemSpacing float64, disableVirtualization bool) int {
	anchorIndex := -1
	var anchorPosition graphics.Offset

	if !a.isVirtualizingContext() || disableVirtualization {
		// Without virtualization generation always starts at the first item.
		if a.ctx.ItemCount() > 0 {
			anchorIndex = 0
		}
	} else {
		connected := a.elements.isWindowConnected(a.realizationRect(), a.orientation)
		// A change of minor size, spacing or content can move the anchor to
		// another column, so its line must be re-evaluated.
		needColumnRevaluation := isWrapping && (a.orientation.Minor(a.lastAvailableSize) != a.orientation.Minor(available) ||
			a.lastItemSpacing != minItemSpacing ||
			a.collectionChangePending)

		suggested := a.ctx.RecommendedAnchorIndex()
		switch {
		case suggested >= 0 && a.elements.isDataIndexRealized(suggested):
			anchorIndex = a.callbacks.AnchorForTargetElement(suggested, available, a.ctx).Index
			if a.elements.isDataIndexRealized(anchorIndex) {
				bounds := a.elements.boundsForDataIndex(anchorIndex)
				if needColumnRevaluation {
					anchorPosition = a.orientation.MinorMajorPoint(0, a.orientation.MajorStart(bounds))
				} else {
					anchorPosition = bounds.Origin()
				}
			} else {
				// The line head is outside the realized range, which happens
				// after an insert before the suggested anchor. Realize the gap.
				first := a.elements.dataIndexFromRealizedIndex(0)
				for i := first - 1; i >= anchorIndex; i-- {
					a.elements.ensureElementRealized(false, i)
				}
				bounds := a.elements.boundsForDataIndex(suggested)
				anchorPosition = a.orientation.MinorMajorPoint(0, a.orientation.MajorStart(bounds))
			}
		case needColumnRevaluation || !connected:
			// Anchor on the realization window rather than the visible one:
			// a connected host can intersect the former but not the latter.
			info := a.callbacks.AnchorForRealizationRect(available, a.ctx)
			anchorIndex = info.Index
			if !math.IsNaN(info.Offset) {
				anchorPosition = a.orientation.MinorMajorPoint(0, info.Offset)
			}
		default:
			anchorIndex = a.elements.dataIndexFromRealizedIndex(0)
			anchorPosition = a.elements.boundsForRealizedIndex(0).Origin()
		}
	}

	a.firstInWindow = anchorIndex
	a.lastInWindow = anchorIndex
	if a.elements.isIndexValidInData(anchorIndex) {
		if !a.elements.isDataIndexRealized(anchorIndex) {
			// Disconnected: throw everything away and start from the anchor.
			a.elements.clearAll()
			anchor := a.ctx.GetOrCreateElementAt(anchorIndex, layout.ForceCreate|layout.SuppressAutoRecycle)
			a.elements.add(anchor, anchorIndex)
		}
		element := a.elements.realizedElement(anchorIndex)
		desired := a.MeasureElement(element, anchorIndex, available, a.ctx)
		a.elements.setBoundsForDataIndex(anchorIndex, graphics.Rect{
			X: anchorPosition.X, Y: anchorPosition.Y, Width: desired.Width, Height: desired.Height,
		})
	} else {
		a.elements.clearAll()
	}

	a.lastAvailableSize = available
	a.lastItemSpacing = minItemSpacing
	a.logger.Debug("anchor", "index", anchorIndex, "position", anchorPosition)
	return anchorIndex
}

func (a *Algorithm) generate(direction generateDirection, anchorIndex int, available graphics.Size, p MeasureParams, maxItemsPerLine int) {
	if anchorIndex == -1 {
		return
	}
	o := a.orientation
	step := 1
	if direction == backward {
		step = -1
	}
	previousIndex := anchorIndex
	currentIndex := anchorIndex + step
	anchorBounds := a.elements.boundsForDataIndex(anchorIndex)
	lineOffset := o.MajorStart(anchorBounds)
	lineMajorSize := o.MajorSize(anchorBounds)
	lineEnd := o.MajorEnd(anchorBounds)
	countInLine := 1
	onAnchorLine := true
	minItemSpacing, lineSpacing := p.MinItemSpacing, p.LineSpacing

	// repositionBackwardLine moves the countInLine items after currentIndex
	// so that they share the line start and size.
	repositionBackwardLine := func(lastIndexInLine int) {
		start := lineEnd - lineMajorSize
		for i := 0; i < countInLine; i++ {
			dataIndex := lastIndexInLine + i
			bounds := a.elements.boundsForDataIndex(dataIndex)
			o.SetMajorStart(&bounds, start)
			o.SetMajorSize(&bounds, lineMajorSize)
			a.elements.setBoundsForDataIndex(dataIndex, bounds)
		}
		lineOffset = start
	}

	for a.elements.isIndexValidInData(currentIndex) &&
		(p.DisableVirtualization || a.shouldContinueFillingUpSpace(previousIndex, direction)) {
		a.elements.ensureElementRealized(direction == forward, currentIndex)
		element := a.elements.realizedElement(currentIndex)
		desired := a.MeasureElement(element, currentIndex, available, a.ctx)

		previousBounds := a.elements.boundsForDataIndex(previousIndex)
		current := graphics.Rect{Width: desired.Width, Height: desired.Height}

		if direction == forward {
			remaining := o.Minor(available) - (o.MinorEnd(previousBounds) + minItemSpacing + o.Minor(desired))
			if countInLine >= maxItemsPerLine || a.callbacks.ShouldBreakLine(currentIndex, remaining) {
				// Wrap to the next line.
				o.SetMinorStart(&current, 0)
				o.SetMajorStart(&current, lineOffset+lineMajorSize+lineSpacing)
				for i := 0; i < countInLine; i++ {
					dataIndex := currentIndex - 1 - i
					bounds := a.elements.boundsForDataIndex(dataIndex)
					if o.MajorSize(bounds) != lineMajorSize {
						o.SetMajorSize(&bounds, lineMajorSize)
						a.elements.setBoundsForDataIndex(dataIndex, bounds)
					}
				}
				lineMajorSize = o.MajorSize(current)
				lineOffset = o.MajorStart(current)
				countInLine = 1
			} else {
				o.SetMinorStart(&current, o.MinorEnd(previousBounds)+minItemSpacing)
				o.SetMajorStart(&current, lineOffset)
				lineMajorSize = math.Max(lineMajorSize, o.MajorSize(current))
				countInLine++
			}
		} else {
			remaining := o.MinorStart(previousBounds) - (o.Minor(desired) + minItemSpacing)
			if countInLine >= maxItemsPerLine || a.callbacks.ShouldBreakLine(currentIndex, remaining) {
				// Wrap to the previous line, aligned to the end of the minor axis.
				if !onAnchorLine {
					repositionBackwardLine(currentIndex + 1)
				}
				onAnchorLine = false
				minor := 0.0
				if availableMinor := o.Minor(available); !math.IsInf(availableMinor, 0) {
					minor = availableMinor - o.Minor(desired)
				}
				lineEnd = lineOffset - lineSpacing
				o.SetMinorStart(&current, minor)
				o.SetMajorStart(&current, lineEnd-o.Major(desired))
				lineMajorSize = o.MajorSize(current)
				lineOffset = o.MajorStart(current)
				countInLine = 1
			} else {
				o.SetMinorStart(&current, o.MinorStart(previousBounds)-o.Minor(desired)-minItemSpacing)
				o.SetMajorStart(&current, lineOffset)
				if !onAnchorLine && o.MajorSize(current) > lineMajorSize {
					lineMajorSize = o.MajorSize(current)
					o.SetMajorStart(&current, lineEnd-lineMajorSize)
					repositionBackwardLine(currentIndex + 1)
				}
				countInLine++
			}
		}

		a.elements.setBoundsForDataIndex(currentIndex, current)
		previousIndex = currentIndex
		currentIndex += step
	}
	if direction == backward && !onAnchorLine && countInLine > 1 {
		repositionBackwardLine(previousIndex)
	}

	// Unless generation reached the end of the data, one extra element was
	// realized before the window edge was detected. It does not count as
	// inside the window.
	count := a.ctx.ItemCount()
	if direction == forward {
		last := previousIndex - 1
		if previousIndex == count-1 {
			last = count - 1
		}
		a.lastInWindow = max(0, last)
	} else {
		first := previousIndex + 1
		if previousIndex == 0 {
			first = 0
		}
		a.firstInWindow = min(count-1, first)
	}

	// Drop stale elements left beyond the generated range by an earlier pass.
	a.elements.discardElementsOutsideWindowFrom(direction == forward, currentIndex)
	a.logger.Debug("generate", "direction", direction, "anchor", anchorIndex, "stop", previousIndex)
}

func (a *Algorithm) shouldContinueFillingUpSpace(index int, direction generateDirection) bool {
	if !a.isVirtualizingContext() {
		return true
	}
	o := a.orientation
	rect := a.ctx.RealizationRect()
	bounds := a.elements.boundsForDataIndex(index)
	// Both axes are checked so that a flow running in the scrolling direction
	// still stops at the end of the window.
	if direction == forward {
		return o.MajorStart(bounds) < o.MajorEnd(rect) && o.MinorStart(bounds) < o.MinorEnd(rect)
	}
	return o.MajorEnd(bounds) > o.MajorStart(rect) && o.MinorEnd(bounds) > o.MinorStart(rect)
}

// isReflowRequired reports whether item 0 is realized away from the minor start.
func (a *Algorithm) isReflowRequired() bool {
	return a.elements.realizedCount() > 0 &&
		a.elements.dataIndexFromRealizedIndex(0) == 0 &&
		a.orientation.MinorStart(a.elements.boundsForRealizedIndex(0)) != 0
}

// raiseLineArranged reports every line inside the realization window to the
// callbacks so they can update their estimates.
func (a *Algorithm) raiseLineArranged() {
	rect := a.realizationRect()
	if rect.Width == 0 && rect.Height == 0 {
		return
	}
	if a.elements.realizedCount() == 0 || a.firstInWindow < 0 || a.lastInWindow < a.firstInWindow ||
		!a.elements.isDataIndexRealized(a.firstInWindow) || !a.elements.isDataIndexRealized(a.lastInWindow) {
		return
	}
	o := a.orientation
	countInLine := 0
	first := a.elements.boundsForDataIndex(a.firstInWindow)
	lineOffset := o.MajorStart(first)
	lineSize := o.MajorSize(first)
	for index := a.firstInWindow; index <= a.lastInWindow; index++ {
		bounds := a.elements.boundsForDataIndex(index)
		if o.MajorStart(bounds) != lineOffset {
			a.callbacks.OnLineArranged(index-countInLine, countInLine, lineSize, a.ctx)
			countInLine = 0
			lineOffset = o.MajorStart(bounds)
			lineSize = 0
		}
		lineSize = math.Max(lineSize, o.MajorSize(bounds))
		countInLine++
	}
	a.callbacks.OnLineArranged(a.lastInWindow-countInLine+1, countInLine, lineSize, a.ctx)
}

func (a *Algorithm) estimateExtent(available graphics.Size) graphics.Rect {
	realized := RealizedRange{FirstIndex: -1, LastIndex: -1}
	if count := a.elements.realizedCount(); count > 0 {
		realized.FirstIndex = a.elements.dataIndexFromRealizedIndex(0)
		realized.FirstBounds = a.elements.boundsForRealizedIndex(0)
		realized.LastIndex = a.elements.dataIndexFromRealizedIndex(count - 1)
		realized.LastBounds = a.elements.boundsForRealizedIndex(count - 1)
	}
	extent := a.callbacks.Extent(available, a.ctx, realized)
	a.logger.Debug("extent", "first", realized.FirstIndex, "last", realized.LastIndex, "extent", extent)
	return extent
}

func (a *Algorithm) setLayoutOrigin() {
	if a.isVirtualizingContext() {
		a.ctx.SetLayoutOrigin(a.lastExtent.Origin())
	}
}

func (a *Algorithm) arrangeVirtualizingLayout(final graphics.Size, alignment LineAlignment, isWrapping bool) {
	count := a.elements.realizedCount()
	if count == 0 {
		return
	}
	o := a.orientation
	countInLine := 1
	previous := a.elements.boundsForRealizedIndex(0)
	lineOffset := o.MajorStart(previous)
	spaceAtLineStart := o.MinorStart(previous)
	lineSize := o.MajorSize(previous)
	for i := 1; i < count; i++ {
		current := a.elements.boundsForRealizedIndex(i)
		if o.MajorStart(current) != lineOffset {
			spaceAtLineEnd := o.Minor(final) - o.MinorEnd(previous)
			a.performLineAlignment(i-countInLine, countInLine, spaceAtLineStart, spaceAtLineEnd, lineSize, alignment, isWrapping, final)
			spaceAtLineStart = o.MinorStart(current)
			countInLine = 0
			lineOffset = o.MajorStart(current)
			lineSize = 0
		}
		countInLine++
		lineSize = math.Max(lineSize, o.MajorSize(current))
		previous = current
	}
	if countInLine > 0 {
		spaceAtLineEnd := o.Minor(final) - o.MinorEnd(previous)
		a.performLineAlignment(count-countInLine, countInLine, spaceAtLineStart, spaceAtLineEnd, lineSize, alignment, isWrapping, final)
	}
}

func (a *Algorithm) performLineAlignment(lineStart, countInLine int, spaceAtLineStart, spaceAtLineEnd, lineSize float64, alignment LineAlignment, isWrapping bool, final graphics.Size) {
	o := a.orientation
	for rangeIndex := lineStart; rangeIndex < lineStart+countInLine; rangeIndex++ {
		bounds := a.elements.boundsForRealizedIndex(rangeIndex)
		o.SetMajorSize(&bounds, lineSize)

		if isWrapping && (spaceAtLineStart != 0 || spaceAtLineEnd != 0) && !math.IsInf(spaceAtLineEnd, 0) {
			offset := alignmentOffset(alignment, rangeIndex-lineStart, countInLine, spaceAtLineStart, spaceAtLineEnd)
			o.SetMinorStart(&bounds, o.MinorStart(bounds)+offset)
		}

		bounds = bounds.Translate(-a.lastExtent.X, -a.lastExtent.Y)

		if !isWrapping {
			o.SetMinorSize(&bounds, math.Max(o.MinorSize(bounds), o.Minor(final)))
		}

		a.elements.elementAt(rangeIndex).Arrange(bounds)
	}
}

// alignmentOffset returns the minor-axis shift for the item at position in a
// line of count items that currently starts spaceAtStart after the minor
// start and leaves spaceAtEnd before the minor end.
func alignmentOffset(alignment LineAlignment, position, count int, spaceAtStart, spaceAtEnd float64) float64 {
	total := spaceAtStart + spaceAtEnd
	n := float64(count)
	switch alignment {
	case LineAlignmentEnd:
		return spaceAtEnd
	case LineAlignmentCenter:
		return -spaceAtStart + total/2
	case LineAlignmentSpaceAround:
		gap := total / (n * 2)
		return -spaceAtStart + gap*float64(position*2+1)
	case LineAlignmentSpaceBetween:
		gap := 0.0
		if count > 1 {
			gap = total / (n - 1)
		}
		return -spaceAtStart + gap*float64(position)
	case LineAlignmentSpaceEvenly:
		gap := total / (n + 1)
		return -spaceAtStart + gap*float64(position+1)
	default:
		return -spaceAtStart
	}
}
