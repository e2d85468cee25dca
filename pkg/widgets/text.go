package widgets

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/go-drift/repeater/pkg/graphics"
	"github.com/go-drift/repeater/pkg/layout"
)

// TextBlock displays a string measured with a font face.
//
// # Text Wrapping and Line Limits
//
//   - Wrap=false (default): the text is a single line per newline in the
//     content and may be wider than the available width.
//
//   - Wrap=true: words wrap at the available width. A word wider than the
//     available width gets a line of its own.
//
//   - MaxLines: limits the number of lines. Zero means no limit.
//
// A TextBlock used as an item template shows fmt.Sprint of the bound item.
type TextBlock struct {
	layout.ElementBase
	text     string
	face     font.Face
	wrap     bool
	maxLines int
	lines    []string
}

// NewTextBlock returns a single-line TextBlock in the 7x13 basic font.
func NewTextBlock(text string) *TextBlock {
	t := &TextBlock{text: text, face: basicfont.Face7x13}
	t.SetSelf(t)
	return t
}

// Text returns the content.
func (t *TextBlock) Text() string { return t.text }

// SetText replaces the content.
func (t *TextBlock) SetText(text string) {
	if t.text == text {
		return
	}
	t.text = text
	t.InvalidateMeasure()
}

// SetFace replaces the font face. Nil selects the basic font.
func (t *TextBlock) SetFace(face font.Face) {
	if face == nil {
		face = basicfont.Face7x13
	}
	t.face = face
	t.InvalidateMeasure()
}

// SetWrap enables wrapping at the available width.
func (t *TextBlock) SetWrap(wrap bool) {
	if t.wrap == wrap {
		return
	}
	t.wrap = wrap
	t.InvalidateMeasure()
}

// SetMaxLines limits the number of lines; 0 means unlimited.
func (t *TextBlock) SetMaxLines(n int) {
	n = max(0, n)
	if t.maxLines == n {
		return
	}
	t.maxLines = n
	t.InvalidateMeasure()
}

// Lines returns the lines computed by the last measure pass.
func (t *TextBlock) Lines() []string { return t.lines }

// BindData shows data as text. Nil clears the text.
func (t *TextBlock) BindData(data any) {
	if data == nil {
		t.SetText("")
		return
	}
	if s, ok := data.(fmt.Stringer); ok {
		t.SetText(s.String())
		return
	}
	t.SetText(fmt.Sprint(data))
}

func (t *TextBlock) MeasureOverride(available graphics.Size) graphics.Size {
	t.lines = t.lines[:0]
	for _, paragraph := range strings.Split(t.text, "\n") {
		if t.wrap && !math.IsInf(available.Width, 1) {
			t.lines = append(t.lines, t.wrapParagraph(paragraph, available.Width)...)
		} else {
			t.lines = append(t.lines, paragraph)
		}
	}
	if t.maxLines > 0 && len(t.lines) > t.maxLines {
		t.lines = t.lines[:t.maxLines]
	}

	var width float64
	for _, line := range t.lines {
		width = math.Max(width, t.advance(line))
	}
	lineHeight := float64(t.face.Metrics().Height.Ceil())
	return graphics.Size{Width: width, Height: lineHeight * float64(len(t.lines))}
}

// wrapParagraph breaks a paragraph greedily on spaces.
func (t *TextBlock) wrapParagraph(paragraph string, width float64) []string {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if t.advance(candidate) > width {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(lines, current)
}

func (t *TextBlock) advance(s string) float64 {
	return float64(font.MeasureString(t.face, s).Ceil())
}
