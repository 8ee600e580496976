// Package help contains the help overlay component.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/spanmark/internal/keys"
	"github.com/zjrosen/spanmark/internal/labels"
	"github.com/zjrosen/spanmark/internal/log"
	"github.com/zjrosen/spanmark/internal/ui/markdown"
	"github.com/zjrosen/spanmark/internal/ui/overlay"
	"github.com/zjrosen/spanmark/internal/ui/styles"
)

const contentWidth = 56

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.OverlayBorderColor).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)
)

var sections = []string{"Navigation", "Selection", "Spans", "Labels", "General"}

// Model holds the help view state.
type Model struct {
	keys       keys.KeyMap
	categories []labels.Category
	width      int
	height     int
	rendered   string
}

// New creates a help view listing the keymap and the label categories.
func New(km keys.KeyMap, categories []labels.Category) Model {
	m := Model{keys: km, categories: categories}
	m.rendered = m.render()
	return m
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// Markdown returns the help text as markdown.
func (m Model) Markdown() string {
	var b strings.Builder
	b.WriteString("# spanmark\n\n")
	for i, group := range m.keys.FullHelp() {
		if i < len(sections) {
			fmt.Fprintf(&b, "## %s\n\n", sections[i])
		}
		for _, binding := range group {
			writeBinding(&b, binding)
		}
		b.WriteString("\n")
	}
	if len(m.categories) > 0 {
		b.WriteString("## Categories\n\n")
		for i, c := range m.categories {
			fmt.Fprintf(&b, "%d. **%s** %s `%s`\n", i+1, c.Name, c.Caption, c.Color.Hex())
		}
		b.WriteString("\n")
	}
	b.WriteString("Mouse: drag across words to select, click a span to toggle it, ")
	b.WriteString("click it again quickly to delete it.\n")
	return b.String()
}

func writeBinding(b *strings.Builder, binding key.Binding) {
	h := binding.Help()
	fmt.Fprintf(b, "- **%s** %s\n", h.Key, h.Desc)
}

func (m Model) render() string {
	md := m.Markdown()
	r, err := markdown.New(contentWidth, "dark")
	if err != nil {
		log.ErrorErr(log.CatUI, "help markdown renderer", err)
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		log.ErrorErr(log.CatUI, "rendering help", err)
		return md
	}
	return strings.TrimRight(out, "\n")
}

// View renders the help box by itself.
func (m Model) View() string {
	return boxStyle.Render(m.rendered + "\n" + footerStyle.Render("? or esc to close"))
}

// Overlay renders the help box centered over background.
func (m Model) Overlay(background string) string {
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), background)
}
