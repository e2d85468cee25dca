package cmd

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/go-drift/repeater/pkg/graphics"
	"github.com/go-drift/repeater/pkg/widgets"
)

// Terminal cells map to the 7x13 pixel glyphs the text blocks measure with.
const (
	cellWidth   = 7
	cellHeight  = 13
	chromeLines = 3 // title, status and help lines
	appendCount = 100
)

type demoOptions struct {
	items  int
	layout string
}

func newDemoCmd() *cobra.Command {
	opts := demoOptions{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Scroll a generated collection interactively",
		Long: `Scroll a generated collection in the terminal. Only the rows in and near the
viewport are realized; the status line shows how many elements exist.

Keys:
  j/k, up/down     scroll one row
  f/b, pgdn/pgup   scroll one page
  g, G             jump to the first or last item
  a                append rows
  x                remove the first visible row
  l                switch between stack and flow layout
  q                quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(configFromContext(ctx), loggerFromContext(ctx), sessionOptions{
				count:  opts.items,
				layout: opts.layout,
				size:   graphics.Size{Width: 80 * cellWidth, Height: 20 * cellHeight},
			})
			if err != nil {
				return err
			}
			final, err := tea.NewProgram(newDemoModel(s), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(demoModel); ok && m.err != nil {
				return m.err
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.items, "items", "n", 100000, "number of generated items")
	cmd.Flags().StringVarP(&opts.layout, "layout", "l", layoutStack, "layout: stack or flow")
	return cmd
}

type frameMsg time.Time

func tickFrame() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// demoModel is the bubbletea model of the demo command.
type demoModel struct {
	session *session
	cols    int
	rows    int
	err     error
}

func newDemoModel(s *session) demoModel {
	return demoModel{session: s, cols: 80, rows: 20}
}

func (m demoModel) Init() tea.Cmd {
	return tickFrame()
}

func (m demoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	case tea.WindowSizeMsg:
		m.cols = max(msg.Width, 10)
		m.rows = max(msg.Height-chromeLines, 1)
		m.session.engine.SetSize(graphics.Size{
			Width:  float64(m.cols * cellWidth),
			Height: float64(m.rows * cellHeight),
		})
	case frameMsg:
		if m.session.engine.NeedsFrame() {
			if err := m.session.engine.StepFrame(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
		return m, tickFrame()
	}
	return m, nil
}

func (m demoModel) handleKey(key string) (tea.Model, tea.Cmd) {
	s := m.session
	page := float64(max(m.rows-1, 1) * cellHeight)
	scrollBy := func(delta float64) {
		s.engine.Dispatch(func() { s.scroll.ScrollBy(delta) })
	}

	switch key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		scrollBy(-cellHeight)
	case "down", "j":
		scrollBy(cellHeight)
	case "pgup", "b":
		scrollBy(-page)
	case "pgdown", "f", " ":
		scrollBy(page)
	case "g", "home":
		s.engine.Dispatch(func() { s.scroll.ScrollTo(0) })
	case "G", "end":
		s.engine.Dispatch(func() {
			if n := s.list.Len(); n > 0 {
				s.repeater.GetOrCreateElement(n - 1)
			}
		})
	case "a":
		s.engine.Dispatch(func() { s.appendRows(appendCount) })
	case "x":
		s.engine.Dispatch(func() {
			if first := s.firstVisible(); first >= 0 {
				s.list.RemoveAt(first, 1)
			}
		})
	case "l":
		next := layoutFlow
		if s.layout == layoutFlow {
			next = layoutStack
		}
		s.engine.Dispatch(func() {
			if err := s.setLayout(next); err != nil {
				s.logger.Error("switching layout", "err", err)
			}
		})
	}
	return m, nil
}

// grid draws the realized text blocks that intersect the viewport, one
// string per terminal row.
func (m demoModel) grid() []string {
	cells := make([][]rune, m.rows)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", m.cols))
	}

	s := m.session
	visible := s.scroll.VisibleRect()
	for _, child := range s.repeater.Children() {
		if s.repeater.ElementIndex(child) < 0 {
			continue
		}
		bounds := child.Bounds()
		text, ok := child.(*widgets.TextBlock)
		if !ok || !bounds.Intersects(visible) {
			continue
		}
		col := int(math.Round((bounds.X - visible.X) / cellWidth))
		for i, line := range text.Lines() {
			row := int(math.Round((bounds.Y-visible.Y)/cellHeight)) + i
			if row < 0 || row >= m.rows {
				continue
			}
			for j, r := range line {
				if c := col + j; c >= 0 && c < m.cols {
					cells[row][c] = r
				}
			}
		}
	}

	lines := make([]string, len(cells))
	for i, row := range cells {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return lines
}

func (m demoModel) View() string {
	s := m.session
	var b strings.Builder
	b.WriteString(styleTitle.Render("repeater demo"))
	b.WriteString(styleDim.Render("  " + s.layout))
	b.WriteString("\n")
	for _, line := range m.grid() {
		b.WriteString(styleRow.Render(line))
		b.WriteString("\n")
	}

	pending := s.repeater.Scheduler().Pending()
	status := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  %s %s",
		styleLabel.Render("offset"), styleCursor.Render(fmt.Sprintf("%.0f/%.0f", s.scroll.Offset(), s.scroll.MaxOffset())),
		styleLabel.Render("items"), styleNumber.Render(fmt.Sprint(s.list.Len())),
		styleLabel.Render("realized"), styleNumber.Render(fmt.Sprint(s.realized())),
		styleLabel.Render("built"), styleNumber.Render(fmt.Sprint(s.stats.built)),
		styleLabel.Render("pending"), styleNumber.Render(fmt.Sprint(pending)),
	)
	b.WriteString(status)
	b.WriteString("\n")
	b.WriteString(styleDim.Render("j/k scroll  f/b page  g/G ends  a append  x remove  l layout  q quit"))
	return b.String()
}
