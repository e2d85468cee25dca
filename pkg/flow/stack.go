package flow

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/go-drift/repeater/pkg/errors"
	"github.com/go-drift/repeater/pkg/graphics"
	"github.com/go-drift/repeater/pkg/items"
	"github.com/go-drift/repeater/pkg/layout"
)

// StackState is the per-host state of a StackLayout: the realization
// algorithm plus a running average of element sizes along the major axis.
type StackState struct {
	algorithm        *Algorithm
	sizes            estimationBuffer
	maxArrangeBounds float64
}

func newStackState(logger *log.Logger) *StackState {
	return &StackState{algorithm: NewAlgorithm(logger)}
}

// Algorithm returns the algorithm bound to the host.
func (s *StackState) Algorithm() *Algorithm {
	return s.algorithm
}

// TotalElementsMeasured returns the number of retained size samples.
func (s *StackState) TotalElementsMeasured() int {
	return s.sizes.samples
}

// TotalElementSize returns the sum of the retained size samples.
func (s *StackState) TotalElementSize() float64 {
	return s.sizes.total
}

// AverageElementSize returns the running average major size, or 0.
func (s *StackState) AverageElementSize() float64 {
	return s.sizes.average()
}

// MaxArrangeBounds returns the widest minor size seen in the current pass.
func (s *StackState) MaxArrangeBounds() float64 {
	return s.maxArrangeBounds
}

func (s *StackState) onElementMeasured(index int, major, minor float64) {
	s.sizes.record(index, major)
	s.maxArrangeBounds = math.Max(s.maxArrangeBounds, minor)
}

func (s *StackState) resetStatistics() {
	s.sizes.reset()
	s.maxArrangeBounds = 0
}

// StackLayout arranges one item per line along the scroll orientation.
type StackLayout struct {
	layout.Observers
	orientation           layout.ScrollOrientation
	spacing               float64
	disableVirtualization bool
	logger                *log.Logger
}

// NewStackLayout returns a vertical stack. A nil logger selects log.Default().
func NewStackLayout(logger *log.Logger) *StackLayout {
	if logger == nil {
		logger = log.Default()
	}
	return &StackLayout{logger: logger}
}

// Orientation returns the scroll orientation.
func (l *StackLayout) Orientation() layout.ScrollOrientation { return l.orientation }

// SetOrientation sets the scroll orientation.
func (l *StackLayout) SetOrientation(o layout.ScrollOrientation) {
	if l.orientation == o {
		return
	}
	l.orientation = o
	l.InvalidateMeasure()
}

// Spacing returns the gap between items.
func (l *StackLayout) Spacing() float64 { return l.spacing }

// SetSpacing sets the gap between items.
func (l *StackLayout) SetSpacing(spacing float64) {
	if l.spacing == spacing {
		return
	}
	l.spacing = spacing
	l.InvalidateMeasure()
}

// DisableVirtualization reports whether every item is realized.
func (l *StackLayout) DisableVirtualization() bool { return l.disableVirtualization }

// SetDisableVirtualization realizes every item regardless of the window.
func (l *StackLayout) SetDisableVirtualization(disable bool) {
	if l.disableVirtualization == disable {
		return
	}
	l.disableVirtualization = disable
	l.InvalidateMeasure()
}

// Kind reports that StackLayout virtualizes.
func (l *StackLayout) Kind() layout.Kind {
	return layout.Virtualizing
}

// InitializeForContext creates the StackState for ctx, or adopts an existing one.
func (l *StackLayout) InitializeForContext(ctx layout.Context) {
	vctx := layout.AsVirtualizing(ctx)
	var state *StackState
	switch s := ctx.LayoutState().(type) {
	case nil:
		state = newStackState(l.logger)
	case *StackState:
		state = s
	default:
		errors.Raisef("flow.StackLayout.InitializeForContext", errors.KindLayoutState, errors.ErrInvalidLayoutState,
			"got %T, want *flow.StackState", s)
	}
	state.algorithm.InitializeForContext(vctx, stackCallbacks{l})
	ctx.SetLayoutState(state)
}

// UninitializeForContext recycles the realized elements and drops the state.
func (l *StackLayout) UninitializeForContext(ctx layout.Context) {
	vctx := layout.AsVirtualizing(ctx)
	l.state(vctx, "flow.StackLayout.UninitializeForContext").algorithm.UninitializeForContext(vctx)
	ctx.SetLayoutState(nil)
}

// Measure realizes the items that cover the realization rect.
func (l *StackLayout) Measure(ctx layout.Context, available graphics.Size) graphics.Size {
	vctx := layout.AsVirtualizing(ctx)
	state := l.state(vctx, "flow.StackLayout.Measure")
	state.maxArrangeBounds = 0
	return state.algorithm.Measure(available, vctx, MeasureParams{
		LineSpacing:           l.spacing,
		MaxItemsPerLine:       math.MaxInt,
		Orientation:           l.orientation,
		DisableVirtualization: l.disableVirtualization,
		LayoutID:              "stack",
	})
}

// Arrange positions the realized items.
func (l *StackLayout) Arrange(ctx layout.Context, final graphics.Size) graphics.Size {
	vctx := layout.AsVirtualizing(ctx)
	state := l.state(vctx, "flow.StackLayout.Arrange")
	return state.algorithm.Arrange(final, vctx, false, LineAlignmentStart, "stack")
}

// OnItemsChanged updates the realized range. A reset also discards the
// size statistics so the next pass bootstraps them again.
func (l *StackLayout) OnItemsChanged(ctx layout.Context, change items.Change) {
	vctx := layout.AsVirtualizing(ctx)
	state := l.state(vctx, "flow.StackLayout.OnItemsChanged")
	state.algorithm.OnItemsChanged(vctx, change)
	if change.Action == items.Reset {
		state.resetStatistics()
	}
	l.InvalidateMeasure()
}

func (l *StackLayout) state(ctx layout.Context, op string) *StackState {
	state, ok := ctx.LayoutState().(*StackState)
	if !ok {
		errors.Raisef(op, errors.KindLayoutState, errors.ErrInvalidLayoutState,
			"got %T, want *flow.StackState", ctx.LayoutState())
	}
	return state
}

// averageElementSize returns the average major size of an element. When
// nothing has been measured yet, element 0 is created, measured and recycled
// to seed the estimate.
func (l *StackLayout) averageElementSize(available graphics.Size, ctx layout.VirtualizingContext, state *StackState) float64 {
	if ctx.ItemCount() == 0 {
		return 0
	}
	if state.sizes.samples == 0 {
		probe := ctx.GetOrCreateElementAt(0, layout.ForceCreate|layout.SuppressAutoRecycle)
		state.algorithm.MeasureElement(probe, 0, available, ctx)
		ctx.RecycleElement(probe)
		l.logger.Debug("bootstrap", "layout", "stack", "size", state.sizes.average())
	}
	return state.sizes.average()
}

// stackCallbacks adapts StackLayout to the Algorithm.
type stackCallbacks struct {
	l *StackLayout
}

func (c stackCallbacks) orientation() layout.Orientation {
	return layout.Orientation{Scroll: c.l.orientation}
}

func (c stackCallbacks) MeasureSize(_ int, available graphics.Size, _ layout.VirtualizingContext) graphics.Size {
	o := c.orientation()
	return o.MinorMajorSize(o.Minor(available), math.Inf(1))
}

func (c stackCallbacks) ProvisionalArrangeSize(_ int, measureSize, desiredSize graphics.Size, _ layout.VirtualizingContext) graphics.Size {
	o := c.orientation()
	minor := o.Minor(desiredSize)
	if measureMinor := o.Minor(measureSize); !math.IsInf(measureMinor, 0) {
		minor = math.Max(measureMinor, minor)
	}
	return o.MinorMajorSize(minor, o.Major(desiredSize))
}

func (c stackCallbacks) ShouldBreakLine(int, float64) bool {
	return true
}

func (c stackCallbacks) AnchorForRealizationRect(available graphics.Size, ctx layout.VirtualizingContext) AnchorInfo {
	count := ctx.ItemCount()
	if count == 0 {
		return NoAnchor()
	}
	o := c.orientation()
	state := c.l.state(ctx, "flow.StackLayout.Measure")
	lastExtent := state.algorithm.LastExtent()
	average := c.l.averageElementSize(available, ctx, state) + c.l.spacing

	index := 0.0
	if average > 0 {
		offsetInExtent := o.MajorStart(ctx.RealizationRect()) - o.MajorStart(lastExtent)
		index = math.Floor(offsetInExtent / average)
	}
	index = math.Max(0, math.Min(float64(count-1), index))
	return AnchorInfo{Index: int(index), Offset: index*average + o.MajorStart(lastExtent)}
}

func (c stackCallbacks) AnchorForTargetElement(target int, available graphics.Size, ctx layout.VirtualizingContext) AnchorInfo {
	if target < 0 || target >= ctx.ItemCount() {
		return NoAnchor()
	}
	state := c.l.state(ctx, "flow.StackLayout.Measure")
	average := c.l.averageElementSize(available, ctx, state) + c.l.spacing
	return AnchorInfo{
		Index:  target,
		Offset: float64(target)*average + c.orientation().MajorStart(state.algorithm.LastExtent()),
	}
}

func (c stackCallbacks) Extent(available graphics.Size, ctx layout.VirtualizingContext, realized RealizedRange) graphics.Rect {
	o := c.orientation()
	count := ctx.ItemCount()
	state := c.l.state(ctx, "flow.StackLayout.Measure")
	spacing := c.l.spacing
	average := c.l.averageElementSize(available, ctx, state) + spacing

	var extent graphics.Rect
	o.SetMinorSize(&extent, state.maxArrangeBounds)
	o.SetMajorSize(&extent, math.Max(0, float64(count)*average-spacing))
	if count > 0 && !realized.Empty() {
		start := o.MajorStart(realized.FirstBounds) - float64(realized.FirstIndex)*average
		remaining := count - realized.LastIndex - 1
		o.SetMajorStart(&extent, start)
		o.SetMajorSize(&extent, o.MajorEnd(realized.LastBounds)-start+float64(remaining)*average)
	}
	return extent
}

func (c stackCallbacks) OnElementMeasured(_ layout.Element, index int, _, _, _, provisional graphics.Size, ctx layout.VirtualizingContext) {
	o := c.orientation()
	c.l.state(ctx, "flow.StackLayout.Measure").onElementMeasured(index, o.Major(provisional), o.Minor(provisional))
}

func (c stackCallbacks) OnLineArranged(int, int, float64, layout.VirtualizingContext) {}
