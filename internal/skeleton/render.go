package skeleton

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Still renders without a shimmer highlight.
const Still = -1

// shimmerPeriod is the number of blocks between highlighted ones.
const shimmerPeriod = 4

//nolint:gochecknoglobals // Placeholder palette.
var (
	baseStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	titleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Glyphs per block kind.
const (
	barGlyph    = "▆"
	avatarGlyph = "●"
	inputGlyph  = "▁"
)

// Render draws shape. With phase >= 0 every shimmerPeriod-th block, offset
// by phase, is highlighted.
func Render(shape Shape, phase int) string {
	var b strings.Builder
	index := 0

	line := func(blocks []Block) {
		for _, blk := range blocks {
			b.WriteString(strings.Repeat(" ", max(blk.Indent, 0)))
			b.WriteString(renderBlock(blk, phase >= 0 && (index+phase)%shimmerPeriod == 0))
			index++
		}
	}

	if len(shape.Header) > 0 {
		line(shape.Header)
		if len(shape.Lines) > 0 {
			b.WriteByte('\n')
		}
	}
	for i, blocks := range shape.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		line(blocks)
	}
	return b.String()
}

func renderBlock(blk Block, highlight bool) string {
	glyph := barGlyph
	style := baseStyle
	switch blk.Kind {
	case KindTitle:
		style = titleStyle
	case KindAvatar:
		glyph = avatarGlyph
	case KindInput:
		glyph = inputGlyph
	case KindText:
	}
	if highlight {
		style = highlightStyle
	}
	return style.Render(strings.Repeat(glyph, max(blk.Width, 0)))
}
