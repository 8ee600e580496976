// Package toaster provides a notification toast overlay component.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/spanmark/internal/ui/overlay"
	"github.com/zjrosen/spanmark/internal/ui/styles"
)

// DefaultDuration is how long a toast stays up unless told otherwise.
const DefaultDuration = 3 * time.Second

// Style determines the visual appearance of the toast.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
	StyleWarn
)

var icons = map[Style]string{
	StyleSuccess: "✓",
	StyleError:   "✗",
	StyleInfo:    "i",
	StyleWarn:    "!",
}

// ShowToastMsg asks the app to display a toast.
type ShowToastMsg struct {
	Message string
	Style   Style
}

// DismissMsg signals that the toast should be dismissed. Seq identifies
// the toast it was scheduled for, so a stale tick cannot hide a newer one.
type DismissMsg struct {
	Seq int
}

// Model holds the toaster state.
type Model struct {
	message string
	style   Style
	visible bool
	seq     int
}

// New creates a new toaster model.
func New() Model {
	return Model{}
}

// Show displays a toast, replacing any current one.
func (m Model) Show(message string, style Style) Model {
	m.message = message
	m.style = style
	m.visible = message != ""
	m.seq++
	return m
}

// Hide dismisses the toast.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

// Dismiss hides the toast if msg was scheduled for the current one.
func (m Model) Dismiss(msg DismissMsg) Model {
	if msg.Seq != m.seq {
		return m
	}
	return m.Hide()
}

// Visible returns whether the toast is currently showing.
func (m Model) Visible() bool {
	return m.visible
}

// Message returns the text of the current toast.
func (m Model) Message() string {
	return m.message
}

// View renders the toast box.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	var border lipgloss.TerminalColor
	switch m.style {
	case StyleError:
		border = styles.ToastBorderErrorColor
	case StyleInfo:
		border = styles.ToastBorderInfoColor
	case StyleWarn:
		border = styles.ToastBorderWarnColor
	default:
		border = styles.ToastBorderSuccessColor
	}

	return lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Render(icons[m.style] + " " + m.message)
}

// Overlay renders the toast at the bottom of a background view.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.Bottom,
		PadY:     1,
	}, m.View(), bg)
}

// ScheduleDismiss returns a command that dismisses the current toast after d.
func (m Model) ScheduleDismiss(d time.Duration) tea.Cmd {
	seq := m.seq
	return tea.Tick(d, func(time.Time) tea.Msg {
		return DismissMsg{Seq: seq}
	})
}

// Toast is a command that emits a ShowToastMsg.
func Toast(message string, style Style) tea.Cmd {
	return func() tea.Msg {
		return ShowToastMsg{Message: message, Style: style}
	}
}
