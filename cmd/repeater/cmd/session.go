package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/go-drift/repeater/pkg/config"
	"github.com/go-drift/repeater/pkg/engine"
	"github.com/go-drift/repeater/pkg/flow"
	"github.com/go-drift/repeater/pkg/graphics"
	"github.com/go-drift/repeater/pkg/items"
	"github.com/go-drift/repeater/pkg/layout"
	"github.com/go-drift/repeater/pkg/recycle"
	"github.com/go-drift/repeater/pkg/repeater"
	"github.com/go-drift/repeater/pkg/scheduler"
	"github.com/go-drift/repeater/pkg/widgets"
)

// rowNamespace seeds the deterministic row identities.
var rowNamespace = uuid.MustParse("6ba7b812-9dad-11d1-80b4-00c04fd430c8")

// row is one generated item.
type row struct {
	ID    uuid.UUID
	Index int
}

func newRow(index int) row {
	return row{
		ID:    uuid.NewSHA1(rowNamespace, fmt.Appendf(nil, "row-%d", index)),
		Index: index,
	}
}

// String is the label shown as soon as the row is realized. Its length
// varies so that flowed rows have different widths.
func (r row) String() string {
	id := r.ID.String()
	return fmt.Sprintf("#%d %s", r.Index, id[:2+r.Index%7])
}

// Detail is the label shown once the deferred content phase has run.
func (r row) Detail() string {
	return r.String() + " " + strings.ToUpper(r.ID.String()[9:13])
}

func newRows(start, count int) []row {
	rows := make([]row, count)
	for i := range rows {
		rows[i] = newRow(start + i)
	}
	return rows
}

const (
	layoutStack = "stack"
	layoutFlow  = "flow"
)

// buildLayout returns the named layout.
func buildLayout(name, alignment string, logger *log.Logger) (layout.Layout, error) {
	switch name {
	case layoutStack:
		return flow.NewStackLayout(logger), nil
	case layoutFlow:
		l := flow.NewFlowLayout(logger)
		l.SetMinItemSpacing(7)
		if alignment != "" {
			a, ok := flow.ParseLineAlignment(alignment)
			if !ok {
				return nil, fmt.Errorf("unknown line alignment %q", alignment)
			}
			l.SetLineAlignment(a)
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown layout %q (want %s or %s)", name, layoutStack, layoutFlow)
	}
}

// sessionStats count repeater events.
type sessionStats struct {
	built    int
	prepared int
	cleared  int
	phases   int
}

type sessionOptions struct {
	count     int
	layout    string
	alignment string
	size      graphics.Size
}

// session is a repeater over generated rows, hosted in a vertical scroll
// view and driven by an engine.
type session struct {
	engine   *engine.Engine
	repeater *repeater.Repeater
	scroll   *widgets.ScrollView
	list     *items.List[row]
	layout   string
	next     int // index of the next generated row
	stats    sessionStats
	logger   *log.Logger
}

func newSession(cfg *config.Config, logger *log.Logger, opts sessionOptions) (*session, error) {
	if opts.count < 0 {
		return nil, fmt.Errorf("item count must not be negative, got %d", opts.count)
	}
	l, err := buildLayout(opts.layout, opts.alignment, logger)
	if err != nil {
		return nil, err
	}

	s := &session{
		list:   items.NewList(newRows(0, opts.count)...),
		layout: opts.layout,
		next:   opts.count,
		logger: logger,
	}
	s.engine = engine.New(engine.Options{Logger: logger})
	sched := scheduler.New(scheduler.Options{
		Budget: cfg.Budget(),
		Loop:   s.engine.Loop(),
		Logger: logger,
	})
	factory := recycle.NewFactory(map[string]recycle.Template{
		"row": recycle.TemplateFunc(func() layout.Element {
			s.stats.built++
			return widgets.NewTextBlock("")
		}),
	})
	s.repeater = repeater.New(repeater.Options{
		Layout:            l,
		ItemsSource:       s.list,
		ItemFactory:       factory,
		Scheduler:         sched,
		CacheLength:       cfg.CacheLength(),
		Logger:            logger,
		OnElementPrepared: func(repeater.ElementPreparedArgs) { s.stats.prepared++ },
		OnElementClearing: func(repeater.ElementClearingArgs) { s.stats.cleared++ },
		OnContentChanging: s.onContentChanging,
	})
	s.scroll = widgets.NewScrollView(layout.Vertical, s.repeater)
	s.engine.SetRoot(s.scroll)
	s.engine.SetSize(opts.size)
	return s, nil
}

// onContentChanging shows the short label first and fills in the detail on
// a later frame.
func (s *session) onContentChanging(args *repeater.ContentChangingArgs) {
	s.stats.phases++
	switch args.Phase {
	case 0:
		args.RegisterPhase(1)
	case 1:
		text, ok := args.Element.(*widgets.TextBlock)
		r, isRow := args.Data.(row)
		if ok && isRow {
			text.SetText(r.Detail())
		}
	}
}

// setLayout switches the repeater to the named layout.
func (s *session) setLayout(name string) error {
	l, err := buildLayout(name, "", s.logger)
	if err != nil {
		return err
	}
	s.layout = name
	s.repeater.SetLayout(l)
	return nil
}

// appendRows adds count new rows at the end of the collection.
func (s *session) appendRows(count int) {
	s.list.Append(newRows(s.next, count)...)
	s.next += count
}

// firstVisible returns the smallest realized index inside the viewport, or -1.
func (s *session) firstVisible() int {
	visible := s.scroll.VisibleRect()
	first := -1
	for _, child := range s.repeater.Children() {
		index := s.repeater.ElementIndex(child)
		if index < 0 || !child.Bounds().Intersects(visible) {
			continue
		}
		if first < 0 || index < first {
			first = index
		}
	}
	return first
}

// realized returns the number of elements the layout currently holds.
func (s *session) realized() int {
	n := 0
	for _, child := range s.repeater.Children() {
		if s.repeater.ElementIndex(child) >= 0 {
			n++
		}
	}
	return n
}

// settle steps frames until the engine is idle or limit frames ran.
func (s *session) settle(limit int) (int, error) {
	n := 0
	for n < limit && s.engine.NeedsFrame() {
		if err := s.engine.StepFrame(); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
