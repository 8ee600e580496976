// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the labeling view.
type KeyMap struct {
	// Navigation
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Home  key.Binding
	End   key.Binding

	// Selection
	Anchor key.Binding
	Commit key.Binding
	Cancel key.Binding

	// Spans
	Toggle    key.Binding
	Delete    key.Binding
	DeleteAll key.Binding
	Yank      key.Binding

	// Labels
	NextLabel   key.Binding
	PrevLabel   key.Binding
	PickLabel   key.Binding
	LabelMenu   key.Binding
	ReloadStore key.Binding

	// General
	Help       key.Binding
	ToggleLogs key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "line up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "line down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "previous token"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next token"),
		),
		Home: key.NewBinding(
			key.WithKeys("0", "home"),
			key.WithHelp("0", "first token"),
		),
		End: key.NewBinding(
			key.WithKeys("$", "end"),
			key.WithHelp("$", "last token"),
		),

		Anchor: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "start selection"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "label selection"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel selection"),
		),

		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle span"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete span"),
		),
		DeleteAll: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete all spans"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy span text"),
		),

		NextLabel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next label"),
		),
		PrevLabel: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous label"),
		),
		PickLabel: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "pick label"),
		),
		LabelMenu: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "choose label"),
		),
		ReloadStore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload annotations"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		ToggleLogs: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "debug logs"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Anchor, k.Commit, k.Toggle, k.Delete, k.NextLabel, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Home, k.End}, // Navigation
		{k.Anchor, k.Commit, k.Cancel},                 // Selection
		{k.Toggle, k.Delete, k.DeleteAll, k.Yank},      // Spans
		{k.NextLabel, k.PrevLabel, k.PickLabel, k.LabelMenu, k.ReloadStore},
		{k.Help, k.ToggleLogs, k.Quit},
	}
}
