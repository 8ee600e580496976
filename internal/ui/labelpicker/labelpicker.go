// Package labelpicker provides the overlay for choosing the active label.
package labelpicker

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/spanmark/internal/labels"
	"github.com/zjrosen/spanmark/internal/ui/overlay"
	"github.com/zjrosen/spanmark/internal/ui/styles"
)

const defaultBoxWidth = 28

var indicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.BorderFocusColor)

// SelectMsg is sent when a label is chosen.
type SelectMsg struct {
	Label string
}

// CancelMsg is sent when the picker is closed without a choice.
type CancelMsg struct{}

// Model holds the picker state.
type Model struct {
	categories     []labels.Category
	selected       int
	boxWidth       int
	viewportWidth  int
	viewportHeight int
}

// New creates a picker over categories with current preselected.
func New(categories []labels.Category, current string) Model {
	m := Model{categories: categories, boxWidth: defaultBoxWidth}
	for i, c := range categories {
		if c.Name == current {
			m.selected = i
		}
	}
	return m
}

// SetSize sets the viewport dimensions for overlay rendering.
func (m Model) SetSize(width, height int) Model {
	m.viewportWidth = width
	m.viewportHeight = height
	return m
}

// Selected returns the highlighted category, or the zero Category if
// there are none.
func (m Model) Selected() labels.Category {
	if m.selected >= 0 && m.selected < len(m.categories) {
		return m.categories[m.selected]
	}
	return labels.Category{}
}

// Update handles navigation. Enter emits SelectMsg, esc emits CancelMsg.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "j", "down", "ctrl+n":
		if m.selected < len(m.categories)-1 {
			m.selected++
		}
	case "k", "up", "ctrl+p":
		if m.selected > 0 {
			m.selected--
		}
	case "enter":
		if len(m.categories) == 0 {
			return m, func() tea.Msg { return CancelMsg{} }
		}
		label := m.Selected().Name
		return m, func() tea.Msg { return SelectMsg{Label: label} }
	case "esc", "L":
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, nil
}

// View renders the picker box without positioning.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1)

	var rows strings.Builder
	for i, c := range m.categories {
		chip := lipgloss.NewStyle().
			Background(lipgloss.Color(c.Color.Opaque().Hex())).
			Foreground(lipgloss.Color("#000000")).
			Padding(0, 1).
			Render(c.Name)
		caption := styles.HintStyle.Render(c.Caption)
		prefix := " "
		if i == m.selected {
			prefix = indicatorStyle.Render(">")
			caption = lipgloss.NewStyle().Bold(true).Render(c.Caption)
		}
		rows.WriteString(prefix + chip + " " + caption)
		if i < len(m.categories)-1 {
			rows.WriteString("\n")
		}
	}
	if len(m.categories) == 0 {
		rows.WriteString(styles.HintStyle.Render(" no categories configured"))
	}

	divider := lipgloss.NewStyle().
		Foreground(styles.OverlayBorderColor).
		Render(strings.Repeat("─", m.boxWidth))
	content := titleStyle.Render("Active label") + "\n" + divider + "\n" + rows.String()

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(m.boxWidth).
		Render(content)
}

// Overlay renders the picker centered over background.
func (m Model) Overlay(background string) string {
	box := m.View()
	if background == "" {
		return lipgloss.Place(m.viewportWidth, m.viewportHeight, lipgloss.Center, lipgloss.Center, box)
	}
	return overlay.Place(overlay.Config{
		Width:    m.viewportWidth,
		Height:   m.viewportHeight,
		Position: overlay.Center,
	}, box, background)
}
