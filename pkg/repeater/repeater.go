// Package repeater hosts a layout over an items source, realizing only the
// elements that the layout needs for the current window.
//
// A Repeater is an element. It hands its layout a virtualizing context whose
// elements come from an element factory, keeps a VirtualizationInfo for each
// element it holds, and runs the phased content work of new elements on a
// scheduler so that a frame never pays for completing a whole batch.
//
// Basic usage:
//
//	list := items.NewList(rows...)
//	r := repeater.New(repeater.Options{
//	    Layout:      flow.NewStackLayout(nil),
//	    ItemsSource: list,
//	    ItemFactory: recycle.NewFactory(map[string]recycle.Template{"row": rowTemplate}),
//	})
//	r.SetVisibleWindow(graphics.RectFromLTWH(0, scrollY, width, height))
//	r.Measure(graphics.Size{Width: width, Height: math.Inf(1)})
//	r.Arrange(graphics.RectFromLTWH(0, 0, width, r.DesiredSize().Height))
package repeater

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/go-drift/repeater/pkg/errors"
	"github.com/go-drift/repeater/pkg/graphics"
	"github.com/go-drift/repeater/pkg/items"
	"github.com/go-drift/repeater/pkg/layout"
	"github.com/go-drift/repeater/pkg/recycle"
	"github.com/go-drift/repeater/pkg/scheduler"
)

// parkedOffset is where elements returned to the factory are arranged.
const parkedOffset = -10000

// Options configure a Repeater.
type Options struct {
	Layout      layout.Layout
	ItemsSource items.View
	// ItemFactory builds the element for each item. Without one, items must
	// themselves be elements.
	ItemFactory recycle.ElementFactory
	// Scheduler runs phased content work. Nil creates one with the default
	// budget; its loop must then be stepped through Scheduler().Loop().
	Scheduler *scheduler.Scheduler
	// CacheLength grows the realization window beyond the visible window, in
	// multiples of the visible window size split evenly between both sides.
	CacheLength float64
	Logger      *log.Logger

	OnElementPrepared     func(ElementPreparedArgs)
	OnElementClearing     func(ElementClearingArgs)
	OnElementIndexChanged func(ElementIndexChangedArgs)
	// OnContentChanging is called with phase 0 when an element is prepared
	// and with each phase it registers after that.
	OnContentChanging func(*ContentChangingArgs)
}

// Repeater is a virtualizing items host.
type Repeater struct {
	layout.ElementBase

	logger            *log.Logger
	layout            layout.Layout
	observers         []func()
	source            items.View
	unsubscribeSource func()
	factory           recycle.ElementFactory
	scheduler         *scheduler.Scheduler

	ctx      *repeaterContext
	views    viewManager
	phaser   phaser
	viewport viewport

	children     []layout.Element
	infos        map[layout.Element]*VirtualizationInfo
	layoutState  any
	layoutOrigin graphics.Offset
	extent       graphics.Rect
	madeAnchor   layout.Element

	inMeasure        bool
	inArrange        bool
	processingChange bool

	onElementPrepared     func(ElementPreparedArgs)
	onElementClearing     func(ElementClearingArgs)
	onElementIndexChanged func(ElementIndexChangedArgs)
	onContentChanging     func(*ContentChangingArgs)
}

// New returns a Repeater configured by opts.
func New(opts Options) *Repeater {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = scheduler.New(scheduler.Options{Logger: opts.Logger})
	}
	r := &Repeater{
		logger:                opts.Logger,
		scheduler:             opts.Scheduler,
		infos:                 make(map[layout.Element]*VirtualizationInfo),
		viewport:              newViewport(opts.CacheLength),
		onElementPrepared:     opts.OnElementPrepared,
		onElementClearing:     opts.OnElementClearing,
		onElementIndexChanged: opts.OnElementIndexChanged,
		onContentChanging:     opts.OnContentChanging,
	}
	r.SetSelf(r)
	r.ctx = &repeaterContext{r: r}
	r.views = viewManager{r: r}
	r.phaser = phaser{r: r}
	r.SetItemFactory(opts.ItemFactory)
	r.SetItemsSource(opts.ItemsSource)
	r.SetLayout(opts.Layout)
	return r
}

// Layout returns the current layout.
func (r *Repeater) Layout() layout.Layout { return r.layout }

// SetLayout replaces the layout. The old layout releases its elements and
// state first.
func (r *Repeater) SetLayout(l layout.Layout) {
	if r.layout == l {
		return
	}
	if r.layout != nil {
		for _, remove := range r.observers {
			remove()
		}
		r.observers = nil
		r.layout.UninitializeForContext(r.ctx)
		r.layoutState = nil
		r.views.clearAll()
		r.layoutOrigin = graphics.Offset{}
	}
	r.layout = l
	if l != nil {
		l.InitializeForContext(r.ctx)
		r.observers = []func(){
			l.OnMeasureInvalidated(r.InvalidateMeasure),
			l.OnArrangeInvalidated(r.InvalidateArrange),
		}
	}
	r.InvalidateMeasure()
}

// ItemsSource returns the items source.
func (r *Repeater) ItemsSource() items.View { return r.source }

// SetItemsSource replaces the items source. Observable sources are followed
// for changes.
func (r *Repeater) SetItemsSource(source items.View) {
	if r.unsubscribeSource != nil {
		r.unsubscribeSource()
		r.unsubscribeSource = nil
	}
	r.source = source
	if observable, ok := source.(items.Observable); ok {
		r.unsubscribeSource = observable.Subscribe(r.OnItemsChanged)
	}
	r.OnItemsChanged(items.ResetChange())
}

// ItemFactory returns the element factory.
func (r *Repeater) ItemFactory() recycle.ElementFactory { return r.factory }

// SetItemFactory replaces the element factory. Realized elements go back to
// the old factory.
func (r *Repeater) SetItemFactory(factory recycle.ElementFactory) {
	if r.factory != nil {
		r.views.clearAll()
	}
	if factory == nil {
		factory = dataElementFactory{}
	}
	r.factory = factory
	r.InvalidateMeasure()
}

// Scheduler returns the scheduler running phased work.
func (r *Repeater) Scheduler() *scheduler.Scheduler { return r.scheduler }

// ItemCount returns the number of items in the source.
func (r *Repeater) ItemCount() int {
	if r.source == nil {
		return 0
	}
	return r.source.Len()
}

// Children returns every element attached to the repeater, including
// recycled elements parked off-screen.
func (r *Repeater) Children() []layout.Element {
	return slices.Clone(r.children)
}

// Extent returns the extent estimated by the last measure pass, in layout
// coordinates.
func (r *Repeater) Extent() graphics.Rect { return r.extent }

// LayoutOrigin returns the offset between layout and local coordinates.
func (r *Repeater) LayoutOrigin() graphics.Offset { return r.layoutOrigin }

// RealizationRect returns the window the layout fills, in layout coordinates.
func (r *Repeater) RealizationRect() graphics.Rect { return r.ctx.RealizationRect() }

// Info returns the realization record of element.
func (r *Repeater) Info(element layout.Element) (*VirtualizationInfo, bool) {
	info, ok := r.infos[element]
	return info, ok
}

// ElementIndex returns the item index element displays, or -1.
func (r *Repeater) ElementIndex(element layout.Element) int {
	if info, ok := r.infos[element]; ok && info.IsRealized() {
		return info.index
	}
	return -1
}

// TryGetElement returns the realized element for index, or nil.
func (r *Repeater) TryGetElement(index int) layout.Element {
	if element := r.views.heldByLayout(index); element != nil {
		return element
	}
	for _, element := range r.views.pinned {
		if r.infos[element].index == index {
			return element
		}
	}
	return nil
}

// GetOrCreateElement realizes the element for index and makes it the anchor
// of the next measure pass, so that a host can bring it into view.
func (r *Repeater) GetOrCreateElement(index int) layout.Element {
	if index < 0 || index >= r.ItemCount() {
		errors.Raisef("repeater.Repeater.GetOrCreateElement", errors.KindIndex, errors.ErrIndexOutOfRange,
			"index %d, count %d", index, r.ItemCount())
	}
	element := r.views.getElement(index, layout.SuppressAutoRecycle)
	if element.NeedsMeasure() {
		element.Measure(r.LastAvailableSize())
	}
	r.madeAnchor = element
	r.SetRecommendedAnchor(index)
	return element
}

// PinElement keeps element realized while the layout does not need it.
func (r *Repeater) PinElement(element layout.Element) {
	info, ok := r.infos[element]
	if !ok || !info.IsRealized() {
		errors.Raisef("repeater.Repeater.PinElement", errors.KindOwner, errors.ErrInvalidOwner,
			"element is not realized by this repeater")
	}
	info.pinCount++
}

// UnpinElement undoes one PinElement. The element returns to the factory on
// the next measure pass if the layout does not need it.
func (r *Repeater) UnpinElement(element layout.Element) {
	info, ok := r.infos[element]
	if !ok || info.pinCount == 0 {
		return
	}
	info.pinCount--
	if info.pinCount == 0 && info.owner == OwnerPinnedPool {
		r.InvalidateMeasure()
	}
}

// SetVisibleWindow sets the visible part of the repeater in local coordinates.
func (r *Repeater) SetVisibleWindow(window graphics.Rect) {
	if r.viewport.hasWindow && r.viewport.visible == window {
		return
	}
	r.viewport.visible = window
	r.viewport.hasWindow = true
	r.InvalidateMeasure()
}

// ClearVisibleWindow removes the viewport; every item is then in view.
func (r *Repeater) ClearVisibleWindow() {
	if !r.viewport.hasWindow {
		return
	}
	r.viewport.hasWindow = false
	r.InvalidateMeasure()
}

// VisibleWindow returns the visible window and whether one is set.
func (r *Repeater) VisibleWindow() (graphics.Rect, bool) {
	return r.viewport.visible, r.viewport.hasWindow
}

// CacheLength returns the realization buffer size.
func (r *Repeater) CacheLength() float64 { return r.viewport.cacheLength }

// SetCacheLength sets the realization buffer size. Negative values are
// treated as 0.
func (r *Repeater) SetCacheLength(cacheLength float64) {
	cacheLength = max(0, cacheLength)
	if r.viewport.cacheLength == cacheLength {
		return
	}
	r.viewport.cacheLength = cacheLength
	r.InvalidateMeasure()
}

// SetRecommendedAnchor asks the next measure pass to start at index.
func (r *Repeater) SetRecommendedAnchor(index int) {
	r.viewport.recommendedAnchor = index
	r.InvalidateMeasure()
}

// TakeViewportShift returns how far the content moved in local coordinates
// since the last call, because the estimated extent grew or shrank before the
// realized items. A scrolling host adds it to its offset to keep the same
// items in view.
func (r *Repeater) TakeViewportShift() graphics.Offset {
	return r.viewport.takeExpectedShift()
}

// OnItemsChanged applies a change that has already happened in the items
// source. Observable sources call it automatically.
func (r *Repeater) OnItemsChanged(change items.Change) {
	const op = "repeater.Repeater.OnItemsChanged"
	if r.processingChange {
		errors.Raisef(op, errors.KindCollection, errors.ErrNestedCollectionChange, "%s", change)
	}
	r.processingChange = true
	defer func() { r.processingChange = false }()

	r.views.onItemsChanged(change)
	if r.layout != nil {
		r.layout.OnItemsChanged(r.ctx, change)
	}
	r.logger.Debug("items changed", "change", change, "count", r.ItemCount())
	r.InvalidateMeasure()
}

// MeasureOverride runs the layout and recycles the elements it stopped using.
func (r *Repeater) MeasureOverride(available graphics.Size) graphics.Size {
	const op = "repeater.Repeater.Measure"
	r.checkLayoutAllowed(op, r.inMeasure)
	r.inMeasure = true
	defer func() { r.inMeasure = false }()

	r.views.prunePinnedElements()
	var desired graphics.Size
	if r.layout != nil {
		desired = r.layout.Measure(r.ctx, available)
	}
	r.extent = graphics.Rect{X: r.layoutOrigin.X, Y: r.layoutOrigin.Y, Width: desired.Width, Height: desired.Height}

	for _, child := range slices.Clone(r.children) {
		info := r.infos[child]
		if info != nil && info.owner == OwnerLayout && info.autoRecycleCandidate && !info.keepAlive {
			r.views.clearElement(child, false)
		}
	}
	r.viewport.recommendedAnchor = -1
	r.madeAnchor = nil
	return desired
}

// ArrangeOverride arranges through the layout and parks recycled elements
// off-screen.
func (r *Repeater) ArrangeOverride(final graphics.Size) graphics.Size {
	const op = "repeater.Repeater.Arrange"
	r.checkLayoutAllowed(op, r.inArrange)
	r.inArrange = true
	defer func() { r.inArrange = false }()

	arranged := final
	if r.layout != nil {
		arranged = r.layout.Arrange(r.ctx, final)
	}
	for _, child := range r.children {
		info := r.infos[child]
		if info == nil {
			continue
		}
		info.keepAlive = false
		if info.owner == OwnerElementFactory || info.owner == OwnerPinnedPool {
			size := child.DesiredSize()
			child.Arrange(graphics.RectFromLTWH(parkedOffset-size.Width, parkedOffset-size.Height, 0, 0))
			continue
		}
		info.arrangeBounds = child.Bounds()
	}
	return arranged
}

func (r *Repeater) checkLayoutAllowed(op string, reentrant bool) {
	if r.processingChange {
		errors.Raise(op, errors.KindReentrancy, errors.ErrLayoutDuringChange)
	}
	if reentrant {
		errors.Raise(op, errors.KindReentrancy, errors.ErrReentrantLayout)
	}
}

// RemoveChild detaches child and drops its realization record.
func (r *Repeater) RemoveChild(child layout.Element) {
	i := slices.Index(r.children, child)
	if i < 0 {
		return
	}
	r.children = slices.Delete(r.children, i, i+1)
	if info, ok := r.infos[child]; ok {
		r.phaser.stopPhasing(child, info)
		delete(r.infos, child)
	}
	r.views.pinned = slices.DeleteFunc(r.views.pinned, func(e layout.Element) bool { return e == child })
	if r.madeAnchor == child {
		r.madeAnchor = nil
	}
	child.SetParent(nil)
}

// Dispose detaches the layout and the items source and recycles every
// realized element.
func (r *Repeater) Dispose() {
	if r.unsubscribeSource != nil {
		r.unsubscribeSource()
		r.unsubscribeSource = nil
	}
	r.SetLayout(nil)
	r.views.clearAll()
}

func (r *Repeater) setLayoutOrigin(origin graphics.Offset) {
	if !r.viewport.hasWindow && origin != (graphics.Offset{}) {
		errors.Raisef("repeater.Context.SetLayoutOrigin", errors.KindLayoutOrigin, errors.ErrLayoutOriginNotZero,
			"got (%g,%g) without a viewport", origin.X, origin.Y)
	}
	if origin == r.layoutOrigin {
		return
	}
	r.viewport.onLayoutOriginChanged(r.layoutOrigin, origin)
	r.layoutOrigin = origin
}

func (r *Repeater) raiseElementPrepared(element layout.Element, index int) {
	if r.onElementPrepared != nil {
		r.onElementPrepared(ElementPreparedArgs{Element: element, Index: index})
	}
}

func (r *Repeater) raiseElementClearing(element layout.Element) {
	if r.onElementClearing != nil {
		r.onElementClearing(ElementClearingArgs{Element: element})
	}
}

func (r *Repeater) raiseElementIndexChanged(element layout.Element, oldIndex, newIndex int) {
	if r.onElementIndexChanged != nil {
		r.onElementIndexChanged(ElementIndexChangedArgs{Element: element, OldIndex: oldIndex, NewIndex: newIndex})
	}
}

func (r *Repeater) raiseContentChanging(args *ContentChangingArgs) {
	if r.onContentChanging != nil {
		r.onContentChanging(args)
	}
}

// dataElementFactory is used without an item factory: every item must be an
// element, which is displayed as is.
type dataElementFactory struct{}

func (dataElementFactory) GetElement(data any, _ layout.Parent) layout.Element {
	element, ok := data.(layout.Element)
	if !ok {
		errors.Raisef("repeater.Repeater.GetElement", errors.KindTemplate, errors.ErrNoTemplates,
			"item %T is not an element and no item factory is set", data)
	}
	return element
}

func (dataElementFactory) RecycleElement(layout.Element, layout.Parent) {}
