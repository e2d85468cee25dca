package layout

import (
	"math"
	"testing"

	"github.com/go-drift/repeater/pkg/errors"
	"github.com/go-drift/repeater/pkg/graphics"
)

// testBox is a fixed-size element that counts its measure passes.
type testBox struct {
	ElementBase
	size         graphics.Size
	measureCount int
	arrangeCount int
}

func newTestBox(w, h float64) *testBox {
	b := &testBox{size: graphics.Size{Width: w, Height: h}}
	b.SetSelf(b)
	return b
}

func (b *testBox) MeasureOverride(graphics.Size) graphics.Size {
	b.measureCount++
	return b.size
}

func (b *testBox) ArrangeOverride(final graphics.Size) graphics.Size {
	b.arrangeCount++
	return final
}

// testContainer is a parent element holding boxes.
type testContainer struct {
	ElementBase
	children []Element
	state    any
}

func newTestContainer() *testContainer {
	c := &testContainer{}
	c.SetSelf(c)
	return c
}

func (c *testContainer) add(child Element) {
	AttachChild(child, c)
	c.children = append(c.children, child)
}

func (c *testContainer) RemoveChild(child Element) {
	for i, existing := range c.children {
		if existing == child {
			c.children = append(c.children[:i], c.children[i+1:]...)
			break
		}
	}
	child.SetParent(nil)
}

func (c *testContainer) MeasureOverride(available graphics.Size) graphics.Size {
	var size graphics.Size
	for _, child := range c.children {
		child.Measure(available)
		size.Width = math.Max(size.Width, child.DesiredSize().Width)
		size.Height += child.DesiredSize().Height
	}
	return size
}

func (c *testContainer) Children() []Element { return c.children }
func (c *testContainer) LayoutState() any    { return c.state }
func (c *testContainer) SetLayoutState(s any) {
	c.state = s
}

func TestElementMeasureIsCached(t *testing.T) {
	box := newTestBox(10, 20)
	available := graphics.Size{Width: 100, Height: math.Inf(1)}

	box.Measure(available)
	box.Measure(available)
	if box.measureCount != 1 {
		t.Fatalf("measureCount = %d, want 1", box.measureCount)
	}
	if box.DesiredSize() != (graphics.Size{Width: 10, Height: 20}) {
		t.Errorf("DesiredSize = %+v", box.DesiredSize())
	}
	if box.LastAvailableSize() != available {
		t.Errorf("LastAvailableSize = %+v", box.LastAvailableSize())
	}

	box.Measure(graphics.Size{Width: 50, Height: 50})
	if box.measureCount != 2 {
		t.Errorf("measureCount = %d, want 2 after available size change", box.measureCount)
	}

	box.InvalidateMeasure()
	box.Measure(graphics.Size{Width: 50, Height: 50})
	if box.measureCount != 3 {
		t.Errorf("measureCount = %d, want 3 after invalidation", box.measureCount)
	}
}

func TestElementArrangeSkipsUnchangedSlot(t *testing.T) {
	box := newTestBox(10, 10)
	box.Measure(graphics.Size{Width: 10, Height: 10})
	rect := graphics.RectFromLTWH(5, 5, 10, 10)
	box.Arrange(rect)
	box.Arrange(rect)
	if box.arrangeCount != 1 {
		t.Errorf("arrangeCount = %d, want 1", box.arrangeCount)
	}
	if box.Bounds() != rect {
		t.Errorf("Bounds = %+v, want %+v", box.Bounds(), rect)
	}
	box.Arrange(rect.Translate(1, 0))
	if box.arrangeCount != 2 {
		t.Errorf("arrangeCount = %d, want 2", box.arrangeCount)
	}
}

func TestInvalidateMeasureSchedulesRoot(t *testing.T) {
	pipeline := &Pipeline{}
	root := newTestContainer()
	root.SetOwner(pipeline)
	child := newTestBox(10, 10)
	root.add(child)

	size := graphics.Size{Width: 100, Height: 100}
	pipeline.FlushLayout(root, size)
	if pipeline.NeedsLayout() {
		t.Fatal("pipeline should be clean after flush")
	}
	if child.measureCount != 1 {
		t.Fatalf("child measureCount = %d, want 1", child.measureCount)
	}

	child.InvalidateMeasure()
	if !root.NeedsMeasure() {
		t.Error("invalidation should walk up to the root")
	}
	if !pipeline.NeedsLayout() {
		t.Error("root should be scheduled with the pipeline")
	}

	pipeline.FlushLayout(root, size)
	if child.measureCount != 2 {
		t.Errorf("child measureCount = %d, want 2", child.measureCount)
	}
}

func TestAttachChildDetachesFromPreviousParent(t *testing.T) {
	a := newTestContainer()
	b := newTestContainer()
	child := newTestBox(1, 1)
	a.add(child)
	b.add(child)

	if len(a.children) != 0 {
		t.Errorf("old parent still holds %d children", len(a.children))
	}
	if child.Parent() != b {
		t.Error("child should belong to the new parent")
	}
	if AttachChild(child, b) {
		t.Error("attaching to the same parent should be a no-op")
	}
}

func TestAsVirtualizingAdapter(t *testing.T) {
	host := newTestContainer()
	first, second := newTestBox(1, 1), newTestBox(2, 2)
	host.add(first)
	host.add(second)

	ctx := AsVirtualizing(host)
	if ctx.ItemCount() != 2 {
		t.Fatalf("ItemCount = %d, want 2", ctx.ItemCount())
	}
	if ctx.GetOrCreateElementAt(1, ForceCreate) != Element(second) {
		t.Error("adapter should return the host child")
	}
	if !ctx.RealizationRect().IsInfinite() {
		t.Error("adapter realization rect should be infinite")
	}
	if ctx.RecommendedAnchorIndex() != -1 {
		t.Error("adapter has no recommended anchor")
	}
	ctx.RecycleElement(first)
	if first.Parent() != host {
		t.Error("recycling through the adapter must not detach children")
	}

	ctx.SetLayoutState("state")
	if host.LayoutState() != "state" {
		t.Error("layout state should be forwarded to the host")
	}
	ctx.SetLayoutOrigin(graphics.Offset{})
}

func TestAsVirtualizingRejectsOffsetOrigin(t *testing.T) {
	ctx := AsVirtualizing(newTestContainer())

	oldHandler := errors.DefaultHandler
	errors.SetHandler(&quietHandler{})
	defer errors.SetHandler(oldHandler)

	defer func() {
		r := recover()
		usage, ok := r.(*errors.UsageError)
		if !ok {
			t.Fatalf("expected *errors.UsageError panic, got %T: %v", r, r)
		}
		if usage.Kind != errors.KindLayoutOrigin {
			t.Errorf("Kind = %v, want layout_origin", usage.Kind)
		}
	}()
	ctx.SetLayoutOrigin(graphics.Offset{X: 0, Y: -40})
}

func TestOrientation(t *testing.T) {
	rect := graphics.RectFromLTWH(1, 2, 30, 40)
	tests := []struct {
		name                              string
		o                                 Orientation
		majorStart, majorSize, minorStart float64
		minorSize, majorEnd, minorEnd     float64
	}{
		{"vertical", Orientation{Scroll: Vertical}, 2, 40, 1, 30, 42, 31},
		{"horizontal", Orientation{Scroll: Horizontal}, 1, 30, 2, 40, 31, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.o
			if o.MajorStart(rect) != tt.majorStart || o.MajorSize(rect) != tt.majorSize ||
				o.MinorStart(rect) != tt.minorStart || o.MinorSize(rect) != tt.minorSize ||
				o.MajorEnd(rect) != tt.majorEnd || o.MinorEnd(rect) != tt.minorEnd {
				t.Errorf("unexpected axis values for %+v", rect)
			}
			built := o.MinorMajorRect(tt.minorStart, tt.majorStart, tt.minorSize, tt.majorSize)
			if built != rect {
				t.Errorf("MinorMajorRect = %+v, want %+v", built, rect)
			}
			size := o.MinorMajorSize(3, 4)
			if o.Minor(size) != 3 || o.Major(size) != 4 {
				t.Errorf("MinorMajorSize round trip failed: %+v", size)
			}

			r := rect
			o.SetMajorStart(&r, 100)
			o.SetMinorSize(&r, 5)
			if o.MajorStart(r) != 100 || o.MinorSize(r) != 5 {
				t.Errorf("setters produced %+v", r)
			}
		})
	}
}

func TestObservers(t *testing.T) {
	var o Observers
	measures, arranges := 0, 0
	remove := o.OnMeasureInvalidated(func() { measures++ })
	o.OnArrangeInvalidated(func() { arranges++ })

	o.InvalidateMeasure()
	o.InvalidateArrange()
	remove()
	o.InvalidateMeasure()

	if measures != 1 || arranges != 1 {
		t.Errorf("measures=%d arranges=%d, want 1 and 1", measures, arranges)
	}
}

type quietHandler struct{}

func (quietHandler) HandleError(*errors.UsageError) {}
func (quietHandler) HandlePanic(*errors.PanicError) {}
