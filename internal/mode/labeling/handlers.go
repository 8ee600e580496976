package labeling

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/spanmark/internal/document"
	"github.com/zjrosen/spanmark/internal/log"
	"github.com/zjrosen/spanmark/internal/render"
	"github.com/zjrosen/spanmark/internal/ui/toaster"
)

// Screen position of the first document cell: below the legend and the
// top border, right of the left border.
const (
	contentTop  = legendHeight + 1
	contentLeft = 1
)

const wheelStep = 3

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		return m.moveCursor(m.cursor - 1), nil
	case key.Matches(msg, m.keys.Right):
		return m.moveCursor(m.cursor + 1), nil
	case key.Matches(msg, m.keys.Home):
		return m.moveCursor(0), nil
	case key.Matches(msg, m.keys.End):
		return m.moveCursor(m.doc.Len() - 1), nil
	case key.Matches(msg, m.keys.Up):
		return m.moveLine(-1), nil
	case key.Matches(msg, m.keys.Down):
		return m.moveLine(1), nil

	case key.Matches(msg, m.keys.Anchor):
		if m.anchor >= 0 {
			m.anchor = -1
		} else if m.doc.Len() > 0 {
			m.anchor = m.cursor
		}
		return m.redraw(), nil
	case key.Matches(msg, m.keys.Cancel):
		m.anchor = -1
		m.dragging = false
		return m.redraw(), nil
	case key.Matches(msg, m.keys.Commit):
		if m.anchor < 0 {
			return m, nil
		}
		anchor := m.anchor
		m.anchor = -1
		return m.commitSelection(anchor, m.cursor)

	case key.Matches(msg, m.keys.Toggle):
		return m.toggleAt(m.cursor)
	case key.Matches(msg, m.keys.Delete):
		return m.removeAt(m.cursor)
	case key.Matches(msg, m.keys.DeleteAll):
		return m.deleteAll()
	case key.Matches(msg, m.keys.Yank):
		return m.yankAt(m.cursor)

	case key.Matches(msg, m.keys.NextLabel):
		return m.changeLabel(m.resolver.Next(m.label, 1))
	case key.Matches(msg, m.keys.PrevLabel):
		return m.changeLabel(m.resolver.Next(m.label, -1))
	case key.Matches(msg, m.keys.PickLabel):
		n, err := strconv.Atoi(msg.String())
		names := m.resolver.Names()
		if err != nil || n < 1 || n > len(names) {
			return m, nil
		}
		return m.changeLabel(names[n-1])
	case key.Matches(msg, m.keys.ReloadStore):
		return m, func() tea.Msg { return ReloadRequestMsg{} }
	}
	return m, nil
}

func (m Model) moveCursor(to int) Model {
	if m.doc.Len() == 0 {
		return m
	}
	m.cursor = min(max(to, 0), m.doc.Len()-1)
	m = m.redraw()
	return m.scrollToCursor()
}

// moveLine moves the cursor to the token nearest its column on the line
// delta rows away. Lines without tokens are skipped.
func (m Model) moveLine(delta int) Model {
	row, col := m.frame.RowOf(m.cursor), m.frame.ColOf(m.cursor)
	if row < 0 {
		return m
	}
	for r := row + delta; r >= 0 && r < m.frame.Height(); r += delta {
		if tok, ok := m.tokenNear(r, col); ok {
			return m.moveCursor(tok)
		}
	}
	return m
}

func (m Model) tokenNear(row, col int) (int, bool) {
	for c := col; c >= 0; c-- {
		if tok, ok := m.frame.TokenAt(row, c); ok {
			return tok, true
		}
	}
	return 0, false
}

func (m Model) scrollToCursor() Model {
	row := m.frame.RowOf(m.cursor)
	if row < 0 || m.viewport.Height <= 0 {
		return m
	}
	switch {
	case row < m.viewport.YOffset:
		m.viewport.SetYOffset(row)
	case row >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(row - m.viewport.Height + 1)
	}
	return m
}

func (m Model) changeLabel(label string) (Model, tea.Cmd) {
	if label == m.label {
		return m, nil
	}
	m = m.SetActiveLabel(label)
	return m, func() tea.Msg { return ActiveLabelChangedMsg{Label: label} }
}

// propose draws objects right away and sends them to the owner.
func (m Model) propose(objects []document.Span) (Model, tea.Cmd) {
	m.proposals++
	seq := m.proposals
	m = m.SetObjects(objects)
	return m, func() tea.Msg { return ObjectsChangedMsg{Objects: objects, Seq: seq} }
}

// commitSelection turns a finished selection into a new span. A collapsed
// selection creates nothing.
func (m Model) commitSelection(anchor, focus int) (Model, tea.Cmd) {
	m = m.redraw()
	ids, ok := document.Resolve(anchor, focus)
	if !ok {
		log.Debug(log.CatUI, "ignoring collapsed selection", "token", anchor)
		return m, nil
	}
	span, err := document.Create(m.doc.Tokens, ids, m.label)
	if err != nil {
		log.ErrorErr(log.CatUI, "creating span", err, "span", document.SpanIDOf(ids).String())
		return m, toaster.Toast("Could not create span: "+err.Error(), toaster.StyleError)
	}

	overlaps := m.overlapsDrawn(ids)
	m, proposeCmd := m.propose(document.Append(m.view.Objects(), span))
	cmds := []tea.Cmd{proposeCmd}
	if overlaps {
		cmds = append(cmds, toaster.Toast("Span overlaps an existing span and will be hidden", toaster.StyleWarn))
	}
	log.Debug(log.CatUI, "created span", "span", span.ID().String(), "label", span.Label)
	return m, tea.Batch(cmds...)
}

func (m Model) overlapsDrawn(ids []int) bool {
	for _, id := range ids {
		if _, ok := m.view.GroupAt(id); ok {
			return true
		}
	}
	return false
}

func (m Model) toggleAt(token int) (Model, tea.Cmd) {
	g, ok := m.view.GroupAt(token)
	if !ok {
		return m, nil
	}
	return m.toggleSpan(g.ID)
}

func (m Model) toggleSpan(id document.SpanID) (Model, tea.Cmd) {
	objects, err := m.view.Toggle(id)
	if err != nil {
		log.ErrorErr(log.CatUI, "toggling span", err)
		return m, nil
	}
	return m.propose(objects)
}

func (m Model) removeAt(token int) (Model, tea.Cmd) {
	g, ok := m.view.GroupAt(token)
	if !ok {
		return m, nil
	}
	return m.removeSpan(g.ID)
}

func (m Model) removeSpan(id document.SpanID) (Model, tea.Cmd) {
	objects, err := m.view.Remove(id)
	if err != nil {
		log.ErrorErr(log.CatUI, "removing span", err)
		return m, nil
	}
	return m.propose(objects)
}

func (m Model) deleteAll() (Model, tea.Cmd) {
	if len(m.view.Objects()) == 0 {
		return m, nil
	}
	return m.propose(document.Clear())
}

func (m Model) yankAt(token int) (Model, tea.Cmd) {
	g, ok := m.view.GroupAt(token)
	if !ok || m.services.Clipboard == nil {
		return m, nil
	}
	if err := m.services.Clipboard.Copy(g.Span.Text); err != nil {
		return m, toaster.Toast("Copy failed: "+err.Error(), toaster.StyleError)
	}
	return m, toaster.Toast("Copied "+strconv.Quote(g.Span.Text), toaster.StyleSuccess)
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.viewport.SetYOffset(m.viewport.YOffset - wheelStep)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.viewport.SetYOffset(m.viewport.YOffset + wheelStep)
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		tok, ok := m.tokenAt(msg)
		if !ok {
			return m, nil
		}
		m.anchor = -1
		m.dragging = true
		m.dragFrom, m.dragTo = tok, tok
		return m.redraw(), nil

	case tea.MouseActionMotion:
		if !m.dragging {
			return m, nil
		}
		if tok, ok := m.tokenAt(msg); ok && tok != m.dragTo {
			m.dragTo = tok
			return m.redraw(), nil
		}
		return m, nil

	case tea.MouseActionRelease:
		if !m.dragging {
			return m, nil
		}
		m.dragging = false
		from, to := m.dragFrom, m.dragTo
		if tok, ok := m.tokenAt(msg); ok {
			to = tok
		}
		if from != to {
			m.lastClick = click{}
			return m.commitSelection(from, to)
		}
		m = m.redraw()
		id, ok := m.spanAt(msg, from)
		if !ok {
			return m, nil
		}
		return m.clickSpan(id)
	}
	return m, nil
}

// clickSpan toggles a span, or removes it when the previous click hit the
// same span less than DoubleClickInterval ago.
func (m Model) clickSpan(id document.SpanID) (Model, tea.Cmd) {
	now := m.services.Clock.Now()
	if m.lastClick.id == id && !m.lastClick.at.IsZero() && now.Sub(m.lastClick.at) <= DoubleClickInterval {
		m.lastClick = click{}
		return m.removeSpan(id)
	}
	m.lastClick = click{id: id, at: now}
	return m.toggleSpan(id)
}

// tokenAt maps a mouse position to the token drawn there.
func (m Model) tokenAt(msg tea.MouseMsg) (int, bool) {
	row := msg.Y - contentTop + m.viewport.YOffset
	col := msg.X - contentLeft
	if msg.Y < contentTop || row >= m.viewport.YOffset+m.viewport.Height {
		return 0, false
	}
	return m.frame.TokenAt(row, col)
}

// spanAt finds the span under the mouse. Zones win when they have been
// scanned; otherwise the token under the press decides.
func (m Model) spanAt(msg tea.MouseMsg, token int) (document.SpanID, bool) {
	for _, id := range m.frame.ZoneIDs() {
		if z := zone.Get(id); z != nil && z.InBounds(msg) {
			if spanID, ok := render.ParseSpanZoneID(m.zonePrefix, id); ok {
				return spanID, true
			}
		}
	}
	if g, ok := m.view.GroupAt(token); ok {
		return g.ID, true
	}
	return document.NoSpanID, false
}
