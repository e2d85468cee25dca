// Package flow implements the virtualizing line-by-line layout algorithm and
// the stack and flow strategies built on it.
//
// The Algorithm realizes elements outward from an anchor until the host's
// realization rect is covered, wrapping to a new line when a strategy asks
// for it. Strategies supply sizing and estimation through Callbacks and keep
// running averages in their per-host state so that the extent of the whole
// collection can be estimated from the realized part.
package flow

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/go-drift/repeater/pkg/errors"
	"github.com/go-drift/repeater/pkg/graphics"
	"github.com/go-drift/repeater/pkg/items"
	"github.com/go-drift/repeater/pkg/layout"
)

// LineAlignment positions the items of a line along the minor axis.
type LineAlignment int

const (
	// LineAlignmentStart packs items at the minor start.
	LineAlignmentStart LineAlignment = iota
	// LineAlignmentEnd packs items at the minor end.
	LineAlignmentEnd
	// LineAlignmentCenter centers the items.
	LineAlignmentCenter
	// LineAlignmentSpaceAround gives every item equal space on both sides.
	LineAlignmentSpaceAround
	// LineAlignmentSpaceBetween puts the free space between items only.
	LineAlignmentSpaceBetween
	// LineAlignmentSpaceEvenly makes every gap, including the outer ones, equal.
	LineAlignmentSpaceEvenly
)

func (a LineAlignment) String() string {
	switch a {
	case LineAlignmentStart:
		return "start"
	case LineAlignmentEnd:
		return "end"
	case LineAlignmentCenter:
		return "center"
	case LineAlignmentSpaceAround:
		return "space-around"
	case LineAlignmentSpaceBetween:
		return "space-between"
	case LineAlignmentSpaceEvenly:
		return "space-evenly"
	default:
		return "unknown"
	}
}

// ParseLineAlignment returns the alignment named by s, as produced by String.
func ParseLineAlignment(s string) (LineAlignment, bool) {
	for a := LineAlignmentStart; a <= LineAlignmentSpaceEvenly; a++ {
		if a.String() == s {
			return a, true
		}
	}
	return LineAlignmentStart, false
}

// FlowState is the per-host state of a FlowLayout.
type FlowState struct {
	algorithm    *Algorithm
	lineSizes    estimationBuffer
	itemsPerLine estimationBuffer

	// specialElementDesiredSize is the desired size of the probe element,
	// used to size the extent when the minor axis is unbounded.
	specialElementDesiredSize graphics.Size
}

func newFlowState(logger *log.Logger) *FlowState {
	return &FlowState{algorithm: NewAlgorithm(logger)}
}

// Algorithm returns the algorithm bound to the host.
func (s *FlowState) Algorithm() *Algorithm {
	return s.algorithm
}

// TotalLinesMeasured returns the number of retained line samples.
func (s *FlowState) TotalLinesMeasured() int {
	return s.lineSizes.samples
}

// AverageLineSize returns the average major size of a line, or 0.
func (s *FlowState) AverageLineSize() float64 {
	return s.lineSizes.average()
}

// AverageItemsPerLine returns the average number of items on a line, at least 1.
func (s *FlowState) AverageItemsPerLine() float64 {
	return math.Max(1, s.itemsPerLine.average())
}

// onLineArranged records a line sample. The last line of the collection is
// usually short, so it is only sampled when nothing else has been.
func (s *FlowState) onLineArranged(startIndex, countInLine int, lineSize float64, itemCount int) {
	if countInLine <= 0 {
		return
	}
	if s.lineSizes.samples > 0 && startIndex+countInLine == itemCount {
		return
	}
	s.lineSizes.record(startIndex, lineSize)
	s.itemsPerLine.record(startIndex, float64(countInLine))
}

func (s *FlowState) resetStatistics() {
	s.lineSizes.reset()
	s.itemsPerLine.reset()
	s.specialElementDesiredSize = graphics.Size{}
}

// FlowLayout places items side by side along the minor axis and wraps to a
// new line when the available minor size is used up.
//
// The orientation is the scroll orientation: a vertical flow fills rows left
// to right and grows downward.
type FlowLayout struct {
	layout.Observers
	orientation     layout.ScrollOrientation
	minItemSpacing  float64
	lineSpacing     float64
	lineAlignment   LineAlignment
	maxItemsPerLine int
	logger          *log.Logger
}

// NewFlowLayout returns a vertical flow. A nil logger selects log.Default().
func NewFlowLayout(logger *log.Logger) *FlowLayout {
	if logger == nil {
		logger = log.Default()
	}
	return &FlowLayout{logger: logger}
}

// Orientation returns the scroll orientation.
func (l *FlowLayout) Orientation() layout.ScrollOrientation { return l.orientation }

// SetOrientation sets the scroll orientation.
func (l *FlowLayout) SetOrientation(o layout.ScrollOrientation) {
	if l.orientation == o {
		return
	}
	l.orientation = o
	l.InvalidateMeasure()
}

// MinItemSpacing returns the minimum gap between items on a line.
func (l *FlowLayout) MinItemSpacing() float64 { return l.minItemSpacing }

// SetMinItemSpacing sets the minimum gap between items on a line.
func (l *FlowLayout) SetMinItemSpacing(spacing float64) {
	if l.minItemSpacing == spacing {
		return
	}
	l.minItemSpacing = spacing
	l.InvalidateMeasure()
}

// LineSpacing returns the gap between lines.
func (l *FlowLayout) LineSpacing() float64 { return l.lineSpacing }

// SetLineSpacing sets the gap between lines.
func (l *FlowLayout) SetLineSpacing(spacing float64) {
	if l.lineSpacing == spacing {
		return
	}
	l.lineSpacing = spacing
	l.InvalidateMeasure()
}

// LineAlignment returns the minor-axis alignment of each line.
func (l *FlowLayout) LineAlignment() LineAlignment { return l.lineAlignment }

// SetLineAlignment sets the minor-axis alignment of each line. Only the
// arrangement changes.
func (l *FlowLayout) SetLineAlignment(alignment LineAlignment) {
	if l.lineAlignment == alignment {
		return
	}
	l.lineAlignment = alignment
	l.InvalidateArrange()
}

// MaxItemsPerLine returns the line capacity; 0 means unlimited.
func (l *FlowLayout) MaxItemsPerLine() int { return l.maxItemsPerLine }

// SetMaxItemsPerLine caps the number of items on a line. Values <= 0 remove the cap.
func (l *FlowLayout) SetMaxItemsPerLine(n int) {
	n = max(0, n)
	if l.maxItemsPerLine == n {
		return
	}
	l.maxItemsPerLine = n
	l.InvalidateMeasure()
}

// Kind reports that FlowLayout virtualizes.
func (l *FlowLayout) Kind() layout.Kind {
	return layout.Virtualizing
}

// InitializeForContext creates the FlowState for ctx, or adopts an existing one.
func (l *FlowLayout) InitializeForContext(ctx layout.Context) {
	vctx := layout.AsVirtualizing(ctx)
	var state *FlowState
	switch s := ctx.LayoutState().(type) {
	case nil:
		state = newFlowState(l.logger)
	case *FlowState:
		state = s
	default:
		errors.Raisef("flow.FlowLayout.InitializeForContext", errors.KindLayoutState, errors.ErrInvalidLayoutState,
			"got %T, want *flow.FlowState", s)
	}
	state.algorithm.InitializeForContext(vctx, flowCallbacks{l})
	ctx.SetLayoutState(state)
}

// UninitializeForContext recycles the realized elements and drops the state.
func (l *FlowLayout) UninitializeForContext(ctx layout.Context) {
	vctx := layout.AsVirtualizing(ctx)
	l.state(vctx, "flow.FlowLayout.UninitializeForContext").algorithm.UninitializeForContext(vctx)
	ctx.SetLayoutState(nil)
}

// Measure realizes the items that cover the realization rect.
func (l *FlowLayout) Measure(ctx layout.Context, available graphics.Size) graphics.Size {
	vctx := layout.AsVirtualizing(ctx)
	return l.state(vctx, "flow.FlowLayout.Measure").algorithm.Measure(available, vctx, MeasureParams{
		IsWrapping:      true,
		MinItemSpacing:  l.minItemSpacing,
		LineSpacing:     l.lineSpacing,
		MaxItemsPerLine: l.maxItemsPerLine,
		Orientation:     l.orientation,
		LayoutID:        "flow",
	})
}

// Arrange positions the realized items and aligns each line.
func (l *FlowLayout) Arrange(ctx layout.Context, final graphics.Size) graphics.Size {
	vctx := layout.AsVirtualizing(ctx)
	return l.state(vctx, "flow.FlowLayout.Arrange").algorithm.Arrange(final, vctx, true, l.lineAlignment, "flow")
}

// OnItemsChanged updates the realized range. A reset also discards the line
// statistics.
func (l *FlowLayout) OnItemsChanged(ctx layout.Context, change items.Change) {
	vctx := layout.AsVirtualizing(ctx)
	state := l.state(vctx, "flow.FlowLayout.OnItemsChanged")
	state.algorithm.OnItemsChanged(vctx, change)
	if change.Action == items.Reset {
		state.resetStatistics()
	}
	l.InvalidateMeasure()
}

func (l *FlowLayout) state(ctx layout.Context, op string) *FlowState {
	state, ok := ctx.LayoutState().(*FlowState)
	if !ok {
		errors.Raisef(op, errors.KindLayoutState, errors.ErrInvalidLayoutState,
			"got %T, want *flow.FlowState", ctx.LayoutState())
	}
	return state
}

// averageLineInfo returns the average line size and items per line. Before
// any line has been sampled, element 0 is measured and the number of such
// elements that fit on a line is recorded as the first sample.
func (l *FlowLayout) averageLineInfo(available graphics.Size, ctx layout.VirtualizingContext, state *FlowState) (lineSize, perLine float64) {
	count := ctx.ItemCount()
	if state.TotalLinesMeasured() == 0 && count > 0 {
		o := layout.Orientation{Scroll: l.orientation}
		probe := ctx.GetOrCreateElementAt(0, layout.ForceCreate|layout.SuppressAutoRecycle)
		desired := state.algorithm.MeasureElement(probe, 0, available, ctx)
		ctx.RecycleElement(probe)

		estimated := 1.0
		availableMinor := o.Minor(available)
		switch step := o.Minor(desired) + l.minItemSpacing; {
		case math.IsInf(availableMinor, 0):
			estimated = float64(count)
		case step > 0:
			estimated = math.Floor((availableMinor + l.minItemSpacing) / step)
		}
		if l.maxItemsPerLine > 0 {
			estimated = math.Min(estimated, float64(l.maxItemsPerLine))
		}
		estimated = math.Max(1, math.Min(float64(count), estimated))

		state.onLineArranged(0, int(estimated), o.Major(desired), count)
		state.specialElementDesiredSize = desired
		l.logger.Debug("bootstrap", "layout", "flow", "perLine", estimated, "lineSize", o.Major(desired))
	}
	return state.AverageLineSize(), state.AverageItemsPerLine()
}

// flowCallbacks adapts FlowLayout to the Algorithm.
type flowCallbacks struct {
	l *FlowLayout
}

func (c flowCallbacks) orientation() layout.Orientation {
	return layout.Orientation{Scroll: c.l.orientation}
}

func (c flowCallbacks) MeasureSize(_ int, available graphics.Size, _ layout.VirtualizingContext) graphics.Size {
	o := c.orientation()
	return o.MinorMajorSize(o.Minor(available), math.Inf(1))
}

func (c flowCallbacks) ProvisionalArrangeSize(_ int, _, desiredSize graphics.Size, _ layout.VirtualizingContext) graphics.Size {
	return desiredSize
}

func (c flowCallbacks) ShouldBreakLine(_ int, remainingSpace float64) bool {
	return remainingSpace < 0
}

func (c flowCallbacks) AnchorForRealizationRect(available graphics.Size, ctx layout.VirtualizingContext) AnchorInfo {
	count := ctx.ItemCount()
	if count == 0 {
		return NoAnchor()
	}
	o := c.orientation()
	state := c.l.state(ctx, "flow.FlowLayout.Measure")
	lastExtent := state.algorithm.LastExtent()
	lineSize, perLine := c.l.averageLineInfo(available, ctx, state)
	averageLine := lineSize + c.l.lineSpacing

	line := 0.0
	if averageLine > 0 {
		line = math.Floor((o.MajorStart(ctx.RealizationRect()) - o.MajorStart(lastExtent)) / averageLine)
	}
	lastLine := math.Floor(float64(count-1) / perLine)
	line = math.Max(0, math.Min(lastLine, line))
	index := min(count-1, max(0, int(line*perLine)))
	return AnchorInfo{Index: index, Offset: line*averageLine + o.MajorStart(lastExtent)}
}

func (c flowCallbacks) AnchorForTargetElement(target int, available graphics.Size, ctx layout.VirtualizingContext) AnchorInfo {
	if target < 0 || target >= ctx.ItemCount() {
		return NoAnchor()
	}
	o := c.orientation()
	state := c.l.state(ctx, "flow.FlowLayout.Measure")
	if bounds, ok := state.algorithm.RealizedBounds(target); ok {
		// Walk back to the head of the target's line.
		head := target
		for {
			previous, ok := state.algorithm.RealizedBounds(head - 1)
			if !ok || o.MajorStart(previous) != o.MajorStart(bounds) {
				break
			}
			head--
		}
		return AnchorInfo{Index: head, Offset: o.MajorStart(bounds)}
	}

	lineSize, perLine := c.l.averageLineInfo(available, ctx, state)
	line := math.Floor(float64(target) / perLine)
	head := min(target, max(0, int(line*perLine)))
	return AnchorInfo{
		Index:  head,
		Offset: line*(lineSize+c.l.lineSpacing) + o.MajorStart(state.algorithm.LastExtent()),
	}
}

func (c flowCallbacks) Extent(available graphics.Size, ctx layout.VirtualizingContext, realized RealizedRange) graphics.Rect {
	count := ctx.ItemCount()
	if count == 0 {
		return graphics.Rect{}
	}
	o := c.orientation()
	state := c.l.state(ctx, "flow.FlowLayout.Measure")
	lineSize, perLine := c.l.averageLineInfo(available, ctx, state)
	lineSpacing := c.l.lineSpacing
	averageLine := lineSize + lineSpacing
	availableMinor := o.Minor(available)

	if !realized.Empty() {
		linesBefore := math.Floor(float64(realized.FirstIndex) / perLine)
		start := o.MajorStart(realized.FirstBounds) - linesBefore*averageLine
		linesAfter := math.Floor(float64(count-realized.LastIndex-1) / perLine)
		minor := availableMinor
		if math.IsInf(minor, 0) {
			minor = math.Max(0, o.MinorEnd(realized.LastBounds))
		}
		return o.MinorMajorRect(0, start, minor, o.MajorEnd(realized.LastBounds)-start+linesAfter*averageLine)
	}

	if math.IsInf(availableMinor, 0) {
		special := state.specialElementDesiredSize
		minor := math.Max(0, (o.Minor(special)+c.l.minItemSpacing)*float64(count)-c.l.minItemSpacing)
		return o.MinorMajorRect(0, 0, minor, math.Max(0, averageLine-lineSpacing))
	}
	lines := math.Ceil(float64(count) / perLine)
	return o.MinorMajorRect(0, 0, availableMinor, math.Max(0, lines*averageLine-lineSpacing))
}

func (c flowCallbacks) OnElementMeasured(layout.Element, int, graphics.Size, graphics.Size, graphics.Size, graphics.Size, layout.VirtualizingContext) {
}

func (c flowCallbacks) OnLineArranged(startIndex, countInLine int, lineSize float64, ctx layout.VirtualizingContext) {
	c.l.state(ctx, "flow.FlowLayout.Measure").onLineArranged(startIndex, countInLine, lineSize, ctx.ItemCount())
}
