package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan   = lipgloss.Color("36")  // Teal - titles
	colorGreen  = lipgloss.Color("35")  // Green - realized
	colorYellow = lipgloss.Color("220") // Amber - dropped frames
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - labels
	colorDim    = lipgloss.Color("240") // Dim gray - hints
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleLabel   = lipgloss.NewStyle().Foreground(colorGray)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleRow     = lipgloss.NewStyle().Foreground(colorWhite)
	styleCursor  = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	styleBox     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// field is one labelled line of a summary.
type field struct {
	label string
	value string
	warn  bool
}

// renderSummary writes a titled box of aligned label/value lines.
func renderSummary(w io.Writer, title string, fields []field) {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.label))
	}
	var b strings.Builder
	b.WriteString(styleTitle.Render(title))
	for _, f := range fields {
		b.WriteString("\n")
		b.WriteString(styleLabel.Render(fmt.Sprintf("%-*s", width, f.label)))
		b.WriteString("  ")
		if f.warn {
			b.WriteString(styleWarning.Render(f.value))
		} else {
			b.WriteString(styleValue.Render(f.value))
		}
	}
	fmt.Fprintln(w, styleBox.Render(b.String()))
}
