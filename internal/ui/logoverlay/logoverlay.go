// Package logoverlay provides an in-app log viewer overlay that shows
// recent log entries without leaving the TUI.
package logoverlay

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/spanmark/internal/log"
	"github.com/zjrosen/spanmark/internal/ui/overlay"
	"github.com/zjrosen/spanmark/internal/ui/styles"
)

const (
	maxEntries        = 500
	viewportMaxHeight = 25
	viewportMinHeight = 5
	boxMaxWidth       = 160
	boxMinWidth       = 40
)

var levelTags = []struct {
	level log.Level
	tag   string
	key   string
	label string
}{
	{log.LevelDebug, "[DEBUG]", "d", "Debug"},
	{log.LevelInfo, "[INFO]", "i", "Info"},
	{log.LevelWarn, "[WARN]", "w", "Warn"},
	{log.LevelError, "[ERROR]", "e", "Error"},
}

// Model is the log overlay state. It keeps the most recent entries
// published by the logger.
type Model struct {
	visible  bool
	minLevel log.Level
	entries  []string
	width    int
	height   int
	viewport viewport.Model
	listener *log.LogListener
}

// New creates a hidden overlay.
func New() Model {
	return Model{minLevel: log.LevelDebug}
}

// StartListening subscribes to the logger for the lifetime of ctx and
// returns the first listen command. It returns nil when logging is off.
func (m *Model) StartListening(ctx context.Context) tea.Cmd {
	m.listener = log.NewListener(ctx)
	if m.listener == nil {
		return nil
	}
	return m.listener.Listen()
}

// Update handles log events and, while visible, keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case log.LogEvent:
		m.entries = append(m.entries, strings.TrimSuffix(msg.Payload, "\n"))
		if over := len(m.entries) - maxEntries; over > 0 {
			m.entries = append([]string(nil), m.entries[over:]...)
		}
		if m.visible {
			m.refresh()
		}
		if m.listener == nil {
			return m, nil
		}
		return m, m.listener.Listen()

	case tea.KeyMsg:
		if !m.visible {
			return m, nil
		}
		switch s := msg.String(); s {
		case "c":
			m.entries = nil
			m.refresh()
		case "j", "down":
			m.viewport.ScrollDown(1)
		case "k", "up":
			m.viewport.ScrollUp(1)
		case "g":
			m.viewport.GotoTop()
		case "G":
			m.viewport.GotoBottom()
		case "ctrl+x", "esc":
			m.visible = false
		default:
			for _, lt := range levelTags {
				if s == lt.key {
					m.minLevel = lt.level
					m.refresh()
				}
			}
		}
	}
	return m, nil
}

// Entries returns the entries passing the current filter.
func (m Model) Entries() []string {
	var out []string
	for _, e := range m.entries {
		if levelOf(e) >= m.minLevel {
			out = append(out, e)
		}
	}
	return out
}

func levelOf(entry string) log.Level {
	for _, lt := range levelTags {
		if strings.Contains(entry, lt.tag) {
			return lt.level
		}
	}
	return log.LevelError
}

func (m *Model) refresh() {
	if m.width == 0 || m.height == 0 {
		return
	}
	height := max(min(viewportMaxHeight, m.height-6), viewportMinHeight)
	m.viewport = viewport.New(m.contentWidth(), height)
	m.viewport.SetContent(m.content())
	m.viewport.GotoBottom()
}

func (m Model) content() string {
	entries := m.Entries()
	if len(entries) == 0 {
		return lipgloss.NewStyle().Foreground(styles.TextMutedColor).Italic(true).Render("No logs to display")
	}
	width := m.contentWidth()
	lines := make([]string, len(entries))
	for i, e := range entries {
		if ansi.StringWidth(e) > width {
			e = ansi.Truncate(e, width, "…")
		}
		lines[i] = entryStyle(e).Render(e)
	}
	return strings.Join(lines, "\n")
}

func entryStyle(entry string) lipgloss.Style {
	switch levelOf(entry) {
	case log.LevelError:
		return lipgloss.NewStyle().Foreground(styles.StatusErrorColor)
	case log.LevelWarn:
		return lipgloss.NewStyle().Foreground(styles.StatusWarningColor)
	case log.LevelInfo:
		return lipgloss.NewStyle().Foreground(styles.ToastBorderInfoColor)
	default:
		return lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	}
}

// View renders the log box.
func (m Model) View() string {
	if !m.visible {
		return ""
	}
	divider := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor).
		Render(strings.Repeat("─", m.contentWidth()))
	title := lipgloss.NewStyle().Bold(true).Foreground(styles.OverlayTitleColor).PaddingLeft(1).Render("Logs")

	body := strings.Join([]string{title, divider, m.viewport.View(), divider, m.filterHint()}, "\n")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(m.contentWidth()).
		Render(body)
}

func (m Model) filterHint() string {
	hint := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	active := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Bold(true)
	parts := []string{hint.Render("[c] Clear")}
	for _, lt := range levelTags {
		style := hint
		if lt.level == m.minLevel {
			style = active
		}
		parts = append(parts, style.Render("["+lt.key+"] "+lt.label))
	}
	return strings.Join(parts, "  ")
}

// Overlay renders the log box centered on bg.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Config{Width: m.width, Height: m.height, Position: overlay.Center}, m.View(), bg)
}

// Visible returns whether the overlay is showing.
func (m Model) Visible() bool {
	return m.visible
}

// Toggle shows or hides the overlay.
func (m Model) Toggle() Model {
	m.visible = !m.visible
	if m.visible {
		m.refresh()
	}
	return m
}

// SetSize updates the overlay's knowledge of the screen size.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.refresh()
	return m
}

func (m Model) contentWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth) - 2
}
