package repeater

import (
	"math"
	"slices"
	"testing"

	"github.com/go-drift/repeater/pkg/errors"
	"github.com/go-drift/repeater/pkg/flow"
	"github.com/go-drift/repeater/pkg/frame"
	"github.com/go-drift/repeater/pkg/graphics"
	"github.com/go-drift/repeater/pkg/items"
	"github.com/go-drift/repeater/pkg/layout"
	"github.com/go-drift/repeater/pkg/recycle"
	"github.com/go-drift/repeater/pkg/scheduler"
)

// testItem is a fixed-size element that records the data bound to it.
type testItem struct {
	layout.ElementBase
	size     graphics.Size
	data     any
	measures int
}

func newTestItem(size graphics.Size) *testItem {
	e := &testItem{size: size}
	e.SetSelf(e)
	return e
}

func (e *testItem) BindData(data any) { e.data = data }

func (e *testItem) MeasureOverride(graphics.Size) graphics.Size {
	e.measures++
	return e.size
}

// fixture is a repeater over a list of ints whose elements come from a
// counting template. Phased work runs when loop is stepped.
type fixture struct {
	r     *Repeater
	list  *items.List[int]
	loop  *frame.Loop
	built int
}

func newFixture(t *testing.T, count int, l layout.Layout, size graphics.Size, configure func(*Options)) *fixture {
	t.Helper()
	values := make([]int, count)
	for i := range values {
		values[i] = i
	}
	f := &fixture{list: items.NewList(values...), loop: frame.NewLoop()}
	factory := recycle.NewFactory(map[string]recycle.Template{
		"item": recycle.TemplateFunc(func() layout.Element {
			f.built++
			return newTestItem(size)
		}),
	})
	opts := Options{
		Layout:      l,
		ItemsSource: f.list,
		ItemFactory: factory,
		Scheduler:   scheduler.New(scheduler.Options{Budget: scheduler.Unlimited, Loop: f.loop}),
	}
	if configure != nil {
		configure(&opts)
	}
	f.r = New(opts)
	return f
}

// layoutPass measures and arranges the repeater at width with an unbounded
// height, the way a vertical scroller does.
func (f *fixture) layoutPass(width float64) {
	f.r.Measure(graphics.Size{Width: width, Height: math.Inf(1)})
	f.r.Arrange(graphics.RectFromLTWH(0, 0, width, f.r.DesiredSize().Height))
}

func (f *fixture) owned(owner Owner) int {
	n := 0
	for _, child := range f.r.Children() {
		if info, ok := f.r.Info(child); ok && info.Owner() == owner {
			n++
		}
	}
	return n
}

func (f *fixture) realizedIndices() []int {
	var indices []int
	for _, child := range f.r.Children() {
		if index := f.r.ElementIndex(child); index >= 0 {
			indices = append(indices, index)
		}
	}
	slices.Sort(indices)
	return indices
}

func newFlow() *flow.FlowLayout {
	l := flow.NewFlowLayout(nil)
	l.SetMinItemSpacing(4)
	l.SetLineSpacing(4)
	return l
}

func TestRepeaterRealizesVisibleWindow(t *testing.T) {
	f := newFixture(t, 1000, newFlow(), graphics.Size{Width: 50, Height: 20}, nil)
	f.r.SetVisibleWindow(graphics.RectFromLTWH(0, 0, 300, 200))
	f.layoutPass(300)

	if got := f.owned(OwnerLayout); got != 46 {
		t.Errorf("layout-owned elements = %d, want 46", got)
	}
	if got := f.r.DesiredSize(); got != (graphics.Size{Width: 300, Height: 4796}) {
		t.Errorf("DesiredSize = %+v, want 300x4796", got)
	}
	seen := make(map[layout.Element]bool)
	for _, child := range f.r.Children() {
		if seen[child] {
			t.Fatal("element attached twice")
		}
		seen[child] = true
		if child.Parent() != f.r {
			t.Errorf("child parent = %v, want the repeater", child.Parent())
		}
	}

	e := f.r.TryGetElement(7)
	if e == nil {
		t.Fatal("item 7 is not realized")
	}
	info, _ := f.r.Info(e)
	if want := graphics.RectFromLTWH(108, 24, 50, 20); info.ArrangeBounds() != want {
		t.Errorf("item 7 arrange bounds = %+v, want %+v", info.ArrangeBounds(), want)
	}
	if e.(*testItem).data != 7 {
		t.Errorf("item 7 bound to %v", e.(*testItem).data)
	}
}

func TestRepeaterRecyclesWhenScrolling(t *testing.T) {
	f := newFixture(t, 1000, newFlow(), graphics.Size{Width: 50, Height: 20}, nil)
	f.r.SetVisibleWindow(graphics.RectFromLTWH(0, 0, 300, 200))
	f.layoutPass(300)
	builtBefore := f.built

	f.r.SetVisibleWindow(graphics.RectFromLTWH(0, 1000, 300, 200))
	f.layoutPass(300)

	indices := f.realizedIndices()
	if len(indices) == 0 || indices[0] < 195 || indices[len(indices)-1] > 260 {
		t.Errorf("realized %v, want indices near offset 1000", indices)
	}
	if f.built >= 2*builtBefore {
		t.Errorf("built %d elements after scrolling from %d, want recycled elements reused", f.built, builtBefore)
	}
	for _, child := range f.r.Children() {
		info, _ := f.r.Info(child)
		if info.Owner() != OwnerElementFactory {
			continue
		}
		if b := child.Bounds(); b.X > parkedOffset || b.Y > parkedOffset {
			t.Errorf("recycled element arranged at %+v, want parked off-screen", b)
		}
	}
}

func TestPhasesRunInAscendingOrder(t *testing.T) {
	firstPhase := map[int]int{0: 2, 1: 1, 2: 3}
	type record struct{ index, phase int }
	var records []record

	f := newFixture(t, 3, flow.NewStackLayout(nil), graphics.Size{Width: 100, Height: 20}, func(o *Options) {
		o.OnContentChanging = func(args *ContentChangingArgs) {
			if args.Phase == 0 {
				args.RegisterPhase(firstPhase[args.Index])
				return
			}
			records = append(records, record{args.Index, args.Phase})
			if args.Phase < 4 {
				args.RegisterPhase(args.Phase + 1)
			}
		}
	})
	f.layoutPass(100)
	f.loop.Step()

	if len(records) < 3 {
		t.Fatalf("records = %v, want at least 3", records)
	}
	wantFirst := []record{{1, 1}, {0, 2}, {2, 3}}
	if !slices.Equal(records[:3], wantFirst) {
		t.Errorf("first records = %v, want %v", records[:3], wantFirst)
	}
	perIndex := make(map[int][]int)
	for _, r := range records {
		perIndex[r.index] = append(perIndex[r.index], r.phase)
	}
	want := map[int][]int{0: {2, 3, 4}, 1: {1, 2, 3, 4}, 2: {3, 4}}
	for index, phases := range want {
		if !slices.Equal(perIndex[index], phases) {
			t.Errorf("index %d phases = %v, want %v", index, perIndex[index], phases)
		}
	}
	for _, child := range f.r.Children() {
		if info, _ := f.r.Info(child); info.Owner() == OwnerLayout && info.Phase() != PhaseReachedEnd {
			t.Errorf("index %d phase = %d after draining, want %d", info.Index(), info.Phase(), PhaseReachedEnd)
		}
	}
	if f.loop.Active() {
		t.Error("scheduler still subscribed after all phases ran")
	}
}

func TestPhaseOrderViolation(t *testing.T) {
	oldHandler := errors.DefaultHandler
	errors.SetHandler(quietHandler{})
	defer errors.SetHandler(oldHandler)

	var late []int
	f := newFixture(t, 2, flow.NewStackLayout(nil), graphics.Size{Width: 100, Height: 20}, func(o *Options) {
		o.OnContentChanging = func(args *ContentChangingArgs) {
			switch {
			case args.Phase == 0 && args.Index == 0:
				args.RegisterPhase(2)
			case args.Phase == 0:
				args.RegisterPhase(3)
			case args.Phase == 2:
				args.RegisterPhase(1)
			case args.Phase == 3:
				late = append(late, args.Index)
			}
		}
	})
	f.layoutPass(100)

	err := expectUsageError(t, errors.KindPhase, f.loop.Step)
	if err != nil && !errors.Is(err, errors.ErrPhaseOrder) {
		t.Errorf("error = %v, want ErrPhaseOrder", err)
	}
	if !f.loop.Active() {
		t.Fatal("phasing stopped after a phase order violation")
	}

	f.loop.Step()
	if !slices.Equal(late, []int{1}) {
		t.Errorf("phase 3 ran for %v, want [1]", late)
	}
	if f.loop.Active() {
		t.Error("loop still active after the remaining phases ran")
	}
}

func TestMoveReportsEachIndexOnce(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     map[int]int
	}{
		{name: "forward", from: 1, to: 3, want: map[int]int{2: 1, 3: 2}},
		{name: "backward", from: 3, to: 1, want: map[int]int{1: 2, 2: 3}},
		{name: "in place", from: 2, to: 2, want: map[int]int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var changed []ElementIndexChangedArgs
			f := newFixture(t, 20, flow.NewStackLayout(nil), graphics.Size{Width: 100, Height: 20}, func(o *Options) {
				o.OnElementIndexChanged = func(args ElementIndexChangedArgs) { changed = append(changed, args) }
			})
			f.r.SetVisibleWindow(graphics.RectFromLTWH(0, 0, 100, 100))
			f.layoutPass(100)
			before := make(map[int]layout.Element)
			for i := 0; i <= 4; i++ {
				before[i] = f.r.TryGetElement(i)
			}
			changed = nil

			f.list.Move(tt.from, tt.to)

			seen := make(map[layout.Element]int)
			for _, c := range changed {
				seen[c.Element]++
				if want, ok := tt.want[c.OldIndex]; !ok || c.NewIndex != want {
					t.Errorf("index change %d -> %d not expected", c.OldIndex, c.NewIndex)
				}
			}
			for e, n := range seen {
				if n > 1 {
					t.Errorf("element %v reported %d index changes", f.r.ElementIndex(e), n)
				}
			}
			if len(changed) != len(tt.want) {
				t.Errorf("got %d index changes, want %d", len(changed), len(tt.want))
			}
			for old, next := range tt.want {
				e := before[old]
				if got := f.r.ElementIndex(e); got != next {
					t.Errorf("item %d index = %d, want %d", old, got, next)
				}
				if info, _ := f.r.Info(e); info.Data() != f.list.Get(next) {
					t.Errorf("item %d data = %v, want %v", old, info.Data(), f.list.Get(next))
				}
			}
			if got := f.r.ElementIndex(before[4]); got != 4 {
				t.Errorf("item outside the move has index %d, want 4", got)
			}
			if tt.from != tt.to {
				if got := f.r.ElementIndex(before[tt.from]); got != -1 {
					t.Errorf("moved element index = %d, want -1", got)
				}
			}
		})
	}
}

func TestVisibleElementsPhaseFirst(t *testing.T) {
	var order []int
	f := newFixture(t, 10, flow.NewStackLayout(nil), graphics.Size{Width: 100, Height: 20}, func(o *Options) {
		o.CacheLength = 2
		o.OnContentChanging = func(args *ContentChangingArgs) {
			switch {
			case args.Phase != 0:
				order = append(order, args.Index)
			case args.Index < 3:
				args.RegisterPhase(2)
			default:
				// Lower phase, but outside the visible window.
				args.RegisterPhase(1)
			}
		}
	})
	f.r.SetVisibleWindow(graphics.RectFromLTWH(0, 0, 100, 50))
	f.layoutPass(100)
	if got := f.realizedIndices(); len(got) < 4 {
		t.Fatalf("realized %v, want the cache buffer realized too", got)
	}
	f.loop.Step()

	if len(order) < 3 {
		t.Fatalf("phase order = %v", order)
	}
	for _, index := range order[:3] {
		if index >= 3 {
			t.Errorf("phase order = %v, want visible items 0-2 first", order)
			break
		}
	}
}

func TestRecycleStopsPhasing(t *testing.T) {
	var phased []int
	f := newFixture(t, 100, flow.NewStackLayout(nil), graphics.Size{Width: 100, Height: 20}, func(o *Options) {
		o.OnContentChanging = func(args *ContentChangingArgs) {
			if args.Phase == 0 {
				args.RegisterPhase(1)
				return
			}
			phased = append(phased, args.Index)
		}
	})
	f.r.SetVisibleWindow(graphics.RectFromLTWH(0, 0, 100, 100))
	f.layoutPass(100)
	first := f.r.TryGetElement(0)

	f.r.SetVisibleWindow(graphics.RectFromLTWH(0, 1000, 100, 100))
	f.layoutPass(100)

	info, _ := f.r.Info(first)
	if info.Owner() == OwnerElementFactory && info.Phase() != PhaseNotSpecified {
		t.Errorf("recycled element phase = %d, want PhaseNotSpecified", info.Phase())
	}
	f.loop.Step()
	for _, index := range phased {
		if index < 45 {
			t.Errorf("phased index %d after it scrolled out of the window", index)
		}
	}
	if len(phased) == 0 {
		t.Error("no phase ran for the realized items")
	}
}

func TestCollectionChangesShiftIndices(t *testing.T) {
	oldHandler := errors.DefaultHandler
	errors.SetHandler(quietHandler{})
	defer errors.SetHandler(oldHandler)

	var changed []ElementIndexChangedArgs
	var cleared []layout.Element
	f := newFixture(t, 20, flow.NewStackLayout(nil), graphics.Size{Width: 100, Height: 20}, func(o *Options) {
		o.OnElementIndexChanged = func(args ElementIndexChangedArgs) { changed = append(changed, args) }
		o.OnElementClearing = func(args ElementClearingArgs) { cleared = append(cleared, args.Element) }
	})
	f.r.SetVisibleWindow(graphics.RectFromLTWH(0, 0, 100, 100))
	f.layoutPass(100)
	e0, e1, e3 := f.r.TryGetElement(0), f.r.TryGetElement(1), f.r.TryGetElement(3)
	cleared = nil

	f.list.Insert(2, 100, 101)
	if len(changed) == 0 {
		t.Fatal("no index change raised for an insert")
	}
	for _, c := range changed {
		if c.OldIndex < 2 || c.NewIndex != c.OldIndex+2 {
			t.Errorf("index change %d -> %d, want +2 for items at or after 2", c.OldIndex, c.NewIndex)
		}
	}
	if got := f.r.ElementIndex(e0); got != 0 {
		t.Errorf("item before the insert moved to %d", got)
	}
	if got := f.r.ElementIndex(e3); got != 5 {
		t.Errorf("item 3 index = %d, want 5", got)
	}
	if info, _ := f.r.Info(e3); info.Data() != 3 {
		t.Errorf("item 3 data = %v after the shift", info.Data())
	}

	f.list.RemoveAt(0, 1)
	if !slices.Contains(cleared, e0) {
		t.Error("removed item's element was not cleared")
	}
	if got := f.r.ElementIndex(e0); got != -1 {
		t.Errorf("removed element index = %d, want -1", got)
	}
	if got := f.r.ElementIndex(e1); got != 0 {
		t.Errorf("item 1 index = %d after removing item 0, want 0", got)
	}

	expectUsageError(t, errors.KindCollection, func() { f.list.Replace(0, 0, 7) })

	f.layoutPass(100)
	if f.owned(OwnerLayout) == 0 {
		t.Error("nothing realized after the changes")
	}
}

func TestNestedCollectionChangePanics(t *testing.T) {
	oldHandler := errors.DefaultHandler
	errors.SetHandler(quietHandler{})
	defer errors.SetHandler(oldHandler)

	armed := false
	var f *fixture
	f = newFixture(t, 20, flow.NewStackLayout(nil), graphics.Size{Width: 100, Height: 20}, func(o *Options) {
		o.OnElementClearing = func(ElementClearingArgs) {
			if armed {
				armed = false
				f.list.Append(99)
			}
		}
	})
	f.r.SetVisibleWindow(graphics.RectFromLTWH(0, 0, 100, 100))
	f.layoutPass(100)

	armed = true
	err := expectUsageError(t, errors.KindCollection, func() { f.list.RemoveAt(0, 1) })
	if err != nil && !errors.Is(err, errors.ErrNestedCollectionChange) {
		t.Errorf("error = %v, want ErrNestedCollectionChange", err)
	}
}

func TestMeasureDuringCollectionChangePanics(t *testing.T) {
	oldHandler := errors.DefaultHandler
	errors.SetHandler(quietHandler{})
	defer errors.SetHandler(oldHandler)

	var f *fixture
	f = newFixture(t, 20, flow.NewStackLayout(nil), graphics.Size{Width: 100, Height: 20}, func(o *Options) {
		o.OnElementIndexChanged = func(ElementIndexChangedArgs) {
			f.r.Measure(graphics.Size{Width: 50, Height: 50})
		}
	})
	f.r.SetVisibleWindow(graphics.RectFromLTWH(0, 0, 100, 100))
	f.layoutPass(100)

	err := expectUsageError(t, errors.KindReentrancy, func() { f.list.Insert(0, 100) })
	if err != nil && !errors.Is(err, errors.ErrLayoutDuringChange) {
		t.Errorf("error = %v, want ErrLayoutDuringChange", err)
	}
}

func TestReentrantMeasurePanics(t *testing.T) {
	oldHandler := errors.DefaultHandler
	errors.SetHandler(quietHandler{})
	defer errors.SetHandler(oldHandler)

	var f *fixture
	f = newFixture(t, 20, flow.NewStackLayout(nil), graphics.Size{Width: 100, Height: 20}, func(o *Options) {
		o.OnElementPrepared = func(ElementPreparedArgs) {
			f.r.Measure(graphics.Size{Width: 50, Height: 50})
		}
	})
	f.r.SetVisibleWindow(graphics.RectFromLTWH(0, 0, 100, 100))

	err := expectUsageError(t, errors.KindReentrancy, func() { f.layoutPass(100) })
	if err != nil && !errors.Is(err, errors.ErrReentrantLayout) {
		t.Errorf("error = %v, want ErrReentrantLayout", err)
	}
}

func TestLayoutOriginRequiresViewport(t *testing.T) {
	oldHandler := errors.DefaultHandler
	errors.SetHandler(quietHandler{})
	defer errors.SetHandler(oldHandler)

	f := newFixture(t, 10, flow.NewStackLayout(nil), graphics.Size{Width: 100, Height: 20}, nil)
	if got := f.r.RealizationRect(); got != graphics.UnboundedRect() {
		t.Errorf("RealizationRect without a viewport = %+v, want UnboundedRect", got)
	}
	expectUsageError(t, errors.KindLayoutOrigin, func() {
		f.r.ctx.SetLayoutOrigin(graphics.Offset{Y: 5})
	})

	f.r.SetVisibleWindow(graphics.RectFromLTWH(0, 0, 100, 100))
	f.r.ctx.SetLayoutOrigin(graphics.Offset{Y: 5})
	if got := f.r.TakeViewportShift(); got != (graphics.Offset{Y: -5}) {
		t.Errorf("viewport shift = %+v, want (0,-5)", got)
	}
	if got := f.r.TakeViewportShift(); got != (graphics.Offset{}) {
		t.Errorf("second TakeViewportShift = %+v, want zero", got)
	}
	if got := f.r.RealizationRect(); got != graphics.RectFromLTWH(0, 5, 100, 100) {
		t.Errorf("RealizationRect = %+v, want the window in layout coordinates", got)
	}
}

func TestCacheLengthGrowsRealizationRect(t *testing.T) {
	f := newFixture(t, 10, flow.NewStackLayout(nil), graphics.Size{Width: 100, Height: 20}, nil)
	f.r.SetVisibleWindow(graphics.RectFromLTWH(0, 100, 100, 50))
	f.r.SetCacheLength(2)
	if got, want := f.r.RealizationRect(), graphics.RectFromLTWH(-100, 50, 300, 150); got != want {
		t.Errorf("RealizationRect = %+v, want %+v", got, want)
	}
	f.r.SetCacheLength(-1)
	if f.r.CacheLength() != 0 {
		t.Errorf("CacheLength = %v, want 0 for a negative value", f.r.CacheLength())
	}
}

func TestGetOrCreateElementAnchorsNextMeasure(t *testing.T) {
	f := newFixture(t, 1000, flow.NewStackLayout(nil), graphics.Size{Width: 100, Height: 20}, nil)
	f.r.SetVisibleWindow(graphics.RectFromLTWH(0, 0, 100, 100))
	f.layoutPass(100)

	target := f.r.GetOrCreateElement(500)
	if got := f.r.ElementIndex(target); got != 500 {
		t.Fatalf("ElementIndex = %d, want 500", got)
	}
	f.layoutPass(100)

	if f.r.TryGetElement(500) != target {
		t.Error("the element made for 500 was not used by the layout")
	}
	if f.r.TryGetElement(0) != nil {
		t.Error("item 0 still realized after jumping to 500")
	}
	shift := f.r.TakeViewportShift()
	if shift.Y != 10000 {
		t.Errorf("viewport shift = %+v, want (0,10000)", shift)
	}

	// The host applies the shift; item 500 is then at the top of the window.
	f.r.SetVisibleWindow(graphics.RectFromLTWH(0, shift.Y, 100, 100))
	f.layoutPass(100)
	for _, index := range f.realizedIndices() {
		if index < 499 || index > 506 {
			t.Errorf("realized index %d, want items around 500", index)
		}
	}
	info, _ := f.r.Info(target)
	if info.ArrangeBounds().Y != 10000 {
		t.Errorf("item 500 arranged at y=%v, want 10000", info.ArrangeBounds().Y)
	}
}

func TestGetOrCreateElementRejectsBadIndex(t *testing.T) {
	oldHandler := errors.DefaultHandler
	errors.SetHandler(quietHandler{})
	defer errors.SetHandler(oldHandler)

	f := newFixture(t, 3, flow.NewStackLayout(nil), graphics.Size{Width: 100, Height: 20}, nil)
	for _, index := range []int{-1, 3} {
		expectUsageError(t, errors.KindIndex, func() { f.r.GetOrCreateElement(index) })
	}
}

func TestPinnedElementSurvivesScrolling(t *testing.T) {
	oldHandler := errors.DefaultHandler
	errors.SetHandler(quietHandler{})
	defer errors.SetHandler(oldHandler)

	f := newFixture(t, 100, flow.NewStackLayout(nil), graphics.Size{Width: 100, Height: 20}, nil)
	f.r.SetVisibleWindow(graphics.RectFromLTWH(0, 0, 100, 100))
	f.layoutPass(100)

	pinned := f.r.TryGetElement(1)
	f.r.PinElement(pinned)

	f.r.SetVisibleWindow(graphics.RectFromLTWH(0, 1000, 100, 100))
	f.layoutPass(100)

	info, _ := f.r.Info(pinned)
	if info.Owner() != OwnerPinnedPool {
		t.Fatalf("pinned element owner = %s, want %s", info.Owner(), OwnerPinnedPool)
	}
	if f.r.TryGetElement(1) != pinned || f.r.ElementIndex(pinned) != 1 {
		t.Error("pinned element lost its item")
	}
	if want := graphics.RectFromLTWH(parkedOffset-100, parkedOffset-20, 0, 0); pinned.Bounds() != want {
		t.Errorf("pinned element bounds = %+v, want parked at %+v", pinned.Bounds(), want)
	}

	f.r.UnpinElement(pinned)
	f.layoutPass(100)
	if info.Owner() != OwnerElementFactory {
		t.Errorf("unpinned element owner = %s, want %s", info.Owner(), OwnerElementFactory)
	}

	expectUsageError(t, errors.KindOwner, func() {
		f.r.PinElement(newTestItem(graphics.Size{}))
	})
}

func TestItemsThatAreElements(t *testing.T) {
	oldHandler := errors.DefaultHandler
	errors.SetHandler(quietHandler{})
	defer errors.SetHandler(oldHandler)

	elements := make([]*testItem, 5)
	for i := range elements {
		elements[i] = newTestItem(graphics.Size{Width: 100, Height: 20})
	}
	r := New(Options{Layout: flow.NewStackLayout(nil), ItemsSource: items.Slice[*testItem](elements)})
	r.Measure(graphics.Size{Width: 100, Height: math.Inf(1)})

	for i, e := range elements {
		if r.TryGetElement(i) != e {
			t.Errorf("item %d is not displayed as itself", i)
		}
	}
	if len(r.Children()) != len(elements) {
		t.Errorf("children = %d, want %d", len(r.Children()), len(elements))
	}

	bad := New(Options{Layout: flow.NewStackLayout(nil), ItemsSource: items.Slice[int]{1, 2}})
	expectUsageError(t, errors.KindTemplate, func() {
		bad.Measure(graphics.Size{Width: 100, Height: math.Inf(1)})
	})
}

func TestAutoRecycle(t *testing.T) {
	tests := []struct {
		name         string
		suppress     bool
		wantLayout   int
		wantRecycled int
	}{
		{"requested elements only", false, 2, 3},
		{"suppressed", true, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &countLayout{n: 5, suppress: tt.suppress}
			f := newFixture(t, 10, l, graphics.Size{Width: 100, Height: 20}, nil)
			f.layoutPass(100)
			if got := f.owned(OwnerLayout); got != 5 {
				t.Fatalf("layout-owned = %d, want 5", got)
			}

			l.n = 2
			l.InvalidateMeasure()
			f.layoutPass(100)
			if got := f.owned(OwnerLayout); got != tt.wantLayout {
				t.Errorf("layout-owned = %d, want %d", got, tt.wantLayout)
			}
			if got := f.owned(OwnerElementFactory); got != tt.wantRecycled {
				t.Errorf("recycled = %d, want %d", got, tt.wantRecycled)
			}
		})
	}
}

func TestSetLayoutReleasesElements(t *testing.T) {
	f := newFixture(t, 10, flow.NewStackLayout(nil), graphics.Size{Width: 100, Height: 20}, nil)
	f.layoutPass(100)
	if f.owned(OwnerLayout) != 10 {
		t.Fatalf("layout-owned = %d, want every item without a viewport", f.owned(OwnerLayout))
	}

	f.r.SetLayout(newFlow())
	if got := f.owned(OwnerLayout); got != 0 {
		t.Errorf("layout-owned = %d after switching layouts, want 0", got)
	}
	if _, ok := f.r.ctx.LayoutState().(*flow.FlowState); !ok {
		t.Errorf("layout state = %T, want *flow.FlowState", f.r.ctx.LayoutState())
	}
	f.layoutPass(100)
	if got := f.owned(OwnerLayout); got != 10 {
		t.Errorf("layout-owned = %d with the new layout, want 10", got)
	}

	f.r.Dispose()
	if got := f.owned(OwnerLayout); got != 0 {
		t.Errorf("layout-owned = %d after Dispose, want 0", got)
	}
}

// countLayout realizes the first n items in a column.
type countLayout struct {
	layout.Observers
	n        int
	suppress bool
	realized []layout.Element
}

func (l *countLayout) Kind() layout.Kind                           { return layout.Virtualizing }
func (l *countLayout) InitializeForContext(layout.Context)         {}
func (l *countLayout) UninitializeForContext(layout.Context)       {}
func (l *countLayout) OnItemsChanged(layout.Context, items.Change) {}
func (l *countLayout) Arrange(_ layout.Context, final graphics.Size) graphics.Size {
	for i, e := range l.realized {
		e.Arrange(graphics.RectFromLTWH(0, float64(i)*20, final.Width, 20))
	}
	return final
}

func (l *countLayout) Measure(ctx layout.Context, available graphics.Size) graphics.Size {
	vctx := ctx.(layout.VirtualizingContext)
	var options layout.RealizationOptions
	if l.suppress {
		options = layout.SuppressAutoRecycle
	}
	l.realized = l.realized[:0]
	for i := 0; i < min(l.n, vctx.ItemCount()); i++ {
		e := vctx.GetOrCreateElementAt(i, options)
		e.Measure(available)
		l.realized = append(l.realized, e)
	}
	return graphics.Size{Width: available.Width, Height: float64(len(l.realized)) * 20}
}

func expectUsageError(t *testing.T, kind errors.ErrorKind, fn func()) (err *errors.UsageError) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("expected a %s usage error", kind)
			return
		}
		usage, ok := r.(*errors.UsageError)
		if !ok {
			t.Errorf("panic value = %T (%v), want *errors.UsageError", r, r)
			return
		}
		if usage.Kind != kind {
			t.Errorf("error kind = %s, want %s", usage.Kind, kind)
		}
		err = usage
	}()
	fn()
	return nil
}

type quietHandler struct{}

func (quietHandler) HandleError(*errors.UsageError) {}
func (quietHandler) HandlePanic(*errors.PanicError) {}
