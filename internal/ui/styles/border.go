package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// Rounded border pieces.
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// RenderWithTitleBorder draws content in a rounded box of exactly width x
// height cells with the title embedded in the top edge: ╭─ Title ───╮.
// Content lines beyond the box are cut, shorter content is padded.
func RenderWithTitleBorder(content, title string, width, height int, focused bool) string {
	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	if focused {
		borderColor = BorderFocusColor
	}
	border := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Foreground(OverlayTitleColor).Bold(true)

	inner := max(width-2, 1)
	rows := max(height-2, 1)

	lines := strings.Split(content, "\n")
	var b strings.Builder
	b.WriteString(topBorder(title, inner, border, titleStyle))
	for i := range rows {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		if w := lipgloss.Width(line); w > inner {
			line = truncate.String(line, uint(inner)) //nolint:gosec // positive
		} else {
			line += strings.Repeat(" ", inner-w)
		}
		b.WriteString("\n" + border.Render(borderVertical) + line + border.Render(borderVertical))
	}
	b.WriteString("\n" + border.Render(borderBottomLeft+strings.Repeat(borderHorizontal, inner)+borderBottomRight))
	return b.String()
}

func topBorder(title string, inner int, border, titleStyle lipgloss.Style) string {
	// "─ " + title + " " needs at least four cells
	if title == "" || inner < 4 {
		return border.Render(borderTopLeft + strings.Repeat(borderHorizontal, inner) + borderTopRight)
	}
	avail := inner - 4
	if lipgloss.Width(title) > avail {
		title = truncate.StringWithTail(title, uint(avail), "…") //nolint:gosec // non-negative
	}
	rest := max(inner-3-lipgloss.Width(title), 0)
	return border.Render(borderTopLeft+borderHorizontal+" ") +
		titleStyle.Render(title) +
		border.Render(" "+strings.Repeat(borderHorizontal, rest)+borderTopRight)
}
