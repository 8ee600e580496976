// Package labeling implements the span labeling mode controller.
//
// The mode never owns the object list. Every change it wants goes out as
// an ObjectsChangedMsg carrying the complete new list; the owner commits
// it and hands it back through SetObjects, which rebuilds the view. The
// proposed list is also drawn at once so the next input builds on it.
package labeling

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/spanmark/internal/config"
	"github.com/zjrosen/spanmark/internal/document"
	"github.com/zjrosen/spanmark/internal/keys"
	"github.com/zjrosen/spanmark/internal/labels"
	"github.com/zjrosen/spanmark/internal/log"
	"github.com/zjrosen/spanmark/internal/mode"
	"github.com/zjrosen/spanmark/internal/mode/shared"
	"github.com/zjrosen/spanmark/internal/render"
	"github.com/zjrosen/spanmark/internal/ui/styles"
)

// DoubleClickInterval is the longest gap between two clicks on the same
// span that still counts as a double click.
const DoubleClickInterval = 400 * time.Millisecond

// Rows taken by the legend above and the status line below the document.
const (
	legendHeight = 1
	statusHeight = 1
	footerHeight = 1
)

// ObjectsChangedMsg proposes a complete new object list. Seq increases
// with every proposal; an owner drops a message whose Seq is not newer
// than the last one it committed. Zero means unsequenced.
type ObjectsChangedMsg struct {
	Objects []document.Span
	Seq     int64
}

// ActiveLabelChangedMsg reports that the user picked another label.
type ActiveLabelChangedMsg struct {
	Label string
}

// ReloadRequestMsg asks the owner to reload the list from the store.
type ReloadRequestMsg struct{}

// click remembers the last span click for double click detection.
type click struct {
	id document.SpanID
	at time.Time
}

// Model is the labeling mode state.
type Model struct {
	services mode.Services
	keys     keys.KeyMap
	help     help.Model

	resolver   *labels.Resolver
	background labels.RGB
	label      string
	highlight  labels.Highlight

	path    string
	doc     document.Document
	objects []document.Span
	view    render.View
	frame   render.Frame

	viewport   viewport.Model
	zonePrefix string

	cursor int
	anchor int // keyboard selection anchor, or -1

	dragging bool
	dragFrom int
	dragTo   int

	lastClick click
	proposals int64

	width           int
	height          int
	wrapWidth       int
	maxCaptionWidth int
	showHelp        bool
}

// New creates a labeling mode controller.
func New(services mode.Services) Model {
	cfg := services.Config
	if cfg == nil {
		defaults := config.Defaults()
		cfg = &defaults
	}
	if services.Clock == nil {
		services.Clock = shared.RealClock{}
	}

	m := Model{
		services:        services,
		keys:            keys.DefaultKeyMap(),
		help:            help.New(),
		resolver:        cfg.Resolver(),
		background:      services.Background,
		viewport:        viewport.New(0, 0),
		zonePrefix:      zone.NewPrefix(),
		anchor:          -1,
		dragFrom:        -1,
		dragTo:          -1,
		wrapWidth:       cfg.UI.WrapWidth,
		maxCaptionWidth: cfg.UI.MaxCaptionWidth,
		showHelp:        cfg.UI.ShowHelp,
	}
	return m.SetActiveLabel(cfg.InitialLabel())
}

// Init returns initial commands for the mode.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetDocument replaces the document. The cursor is clamped and any
// selection in progress is dropped.
func (m Model) SetDocument(path string, doc document.Document) Model {
	m.path = path
	m.doc = doc
	m.anchor = -1
	m.dragging = false
	m.lastClick = click{}
	if m.cursor >= doc.Len() {
		m.cursor = max(doc.Len()-1, 0)
	}
	return m.reconcile()
}

// SetObjects replaces the object list and rebuilds the view from scratch.
func (m Model) SetObjects(objects []document.Span) Model {
	m.objects = objects
	return m.reconcile()
}

// SetActiveLabel changes the label for the next span and derives the
// selection highlight from it.
func (m Model) SetActiveLabel(label string) Model {
	m.label = label
	return m.SetActiveHighlight(labels.HighlightFor(m.resolver, label, m.background))
}

// SetActiveHighlight replaces the highlight drawn under a selection in
// progress.
func (m Model) SetActiveHighlight(h labels.Highlight) Model {
	m.highlight = h
	return m.redraw()
}

// SetResolver swaps the category table, e.g. after a label was added.
func (m Model) SetResolver(r *labels.Resolver) Model {
	m.resolver = r
	return m.SetActiveLabel(m.label).reconcile()
}

// SetSize handles terminal resize.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.help.Width = width
	m.viewport.Width = max(width-2, 0)
	m.viewport.Height = max(m.bodyHeight()-2, 0)
	return m.redraw()
}

// ActiveLabel returns the label the next span gets.
func (m Model) ActiveLabel() string { return m.label }

// Highlight returns the current selection highlight.
func (m Model) Highlight() labels.Highlight { return m.highlight }

// Objects returns a copy of the list the view was built from.
func (m Model) Objects() []document.Span { return m.view.Objects() }

// LastProposal returns the Seq of the newest ObjectsChangedMsg sent.
func (m Model) LastProposal() int64 { return m.proposals }

// RenderView returns the reconciled view.
func (m Model) RenderView() render.View { return m.view }

// Frame returns the last drawn frame.
func (m Model) Frame() render.Frame { return m.frame }

// Cursor returns the keyboard cursor token.
func (m Model) Cursor() int { return m.cursor }

// ZonePrefix returns the prefix of this model's span zones.
func (m Model) ZonePrefix() string { return m.zonePrefix }

func (m Model) bodyHeight() int {
	h := m.height - legendHeight - statusHeight
	if m.showHelp {
		h -= footerHeight
	}
	return max(h, 3)
}

func (m Model) reconcile() Model {
	m.view = render.Reconcile(m.doc.Tokens, m.objects, m.resolver, render.Options{Background: m.background})
	if n := len(m.view.Skipped); n > 0 {
		log.Warn(log.CatRender, "spans skipped", "count", n, "path", m.path)
	}
	return m.redraw()
}

func (m Model) drawWidth() int {
	w := m.viewport.Width
	if m.wrapWidth > 0 && (w == 0 || m.wrapWidth < w) {
		w = m.wrapWidth
	}
	return w
}

func (m Model) redraw() Model {
	cursor := -1
	if m.doc.Len() > 0 {
		cursor = m.cursor
	}
	m.frame = render.Draw(m.view, render.DrawOptions{
		Width:           m.drawWidth(),
		MaxCaptionWidth: m.maxCaptionWidth,
		Highlight:       m.highlight,
		Selection:       m.selection(),
		Cursor:          cursor,
		ZonePrefix:      m.zonePrefix,
	})
	m.viewport.SetContent(m.frame.String())
	return m
}

// selection returns the tokens of the selection in progress.
func (m Model) selection() []int {
	from, to := -1, -1
	switch {
	case m.dragging:
		from, to = m.dragFrom, m.dragTo
	case m.anchor >= 0:
		from, to = m.anchor, m.cursor
	}
	if from < 0 {
		return nil
	}
	if ids, ok := document.Resolve(from, to); ok {
		return ids
	}
	return []int{from}
}

// View renders the mode.
func (m Model) View() string {
	title := "spanmark"
	if m.path != "" {
		title = filepath.Base(m.path)
	}
	parts := []string{
		m.legendView(),
		styles.RenderWithTitleBorder(m.viewport.View(), title, m.width, m.bodyHeight(), true),
		m.statusView(),
	}
	if m.showHelp {
		parts = append(parts, m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) legendView() string {
	cats := m.resolver.Categories()
	chips := make([]string, 0, len(cats))
	for i, c := range cats {
		style := styles.LegendChipStyle
		if c.Name == m.label {
			style = styles.LegendActiveChipStyle
		}
		text := c.Caption
		if i < 9 {
			text = fmt.Sprintf("%d %s", i+1, c.Caption)
		}
		chips = append(chips, style.Foreground(lipgloss.Color(c.Color.Hex())).Render(text))
	}
	if _, known := indexOf(cats, m.label); !known && m.label != "" {
		chips = append(chips, styles.LegendActiveChipStyle.Render(m.label))
	}
	return strings.Join(chips, " ")
}

func indexOf(cats []labels.Category, name string) (int, bool) {
	for i, c := range cats {
		if c.Name == name {
			return i, true
		}
	}
	return -1, false
}

func (m Model) statusView() string {
	parts := []string{
		"label " + m.label,
		pluralize(len(m.view.Objects()), "span"),
	}
	if n := len(m.view.Shadowed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d hidden", n))
	}
	if n := len(m.view.Skipped); n > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", n))
	}
	if m.doc.Len() > 0 {
		parts = append(parts, fmt.Sprintf("token %d/%d", m.cursor+1, m.doc.Len()))
	}
	if sel := m.selection(); len(sel) > 0 {
		parts = append(parts, "selecting "+pluralize(len(sel), "token"))
	}
	return styles.StatusBarStyle.Render(strings.Join(parts, " · "))
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
