package labeling

import (
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/spanmark/internal/config"
	"github.com/zjrosen/spanmark/internal/document"
	"github.com/zjrosen/spanmark/internal/labels"
	"github.com/zjrosen/spanmark/internal/mode"
	"github.com/zjrosen/spanmark/internal/mode/shared"
	"github.com/zjrosen/spanmark/internal/ui/toaster"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.TrueColor)
	zone.NewGlobal()
	os.Exit(m.Run())
}

type fixture struct {
	clock  *shared.FakeClock
	copied string
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Categories = []config.CategoryConfig{
		{Name: "PERSON", Color: []int{10, 20, 30}, Caption: "Person"},
		{Name: "PLACE", Color: []int{200, 100, 0}, Caption: "Place"},
	}
	cfg.ActiveLabel = "PERSON"
	return &cfg
}

func newTestModel(t *testing.T, text string, objects []document.Span) (Model, *fixture) {
	t.Helper()
	f := &fixture{clock: shared.NewFakeClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))}
	m := New(mode.Services{
		Config:    testConfig(),
		Clock:     f.clock,
		Clipboard: shared.MockClipboard{Text: &f.copied},
	})
	m = m.SetSize(80, 24).SetDocument("/tmp/doc.txt", document.New(text)).SetObjects(objects)
	return m, f
}

// collect runs cmd and any batched commands, returning their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func proposed(t *testing.T, cmd tea.Cmd) []document.Span {
	t.Helper()
	for _, msg := range collect(cmd) {
		if changed, ok := msg.(ObjectsChangedMsg); ok {
			return changed.Objects
		}
	}
	require.FailNow(t, "no ObjectsChangedMsg")
	return nil
}

// mouseAt returns a mouse event over the first cell of token.
func mouseAt(m Model, token int, action tea.MouseAction) tea.MouseMsg {
	return tea.MouseMsg{
		X:      contentLeft + m.Frame().ColOf(token),
		Y:      contentTop + m.Frame().RowOf(token) - m.viewport.YOffset,
		Button: tea.MouseButtonLeft,
		Action: action,
	}
}

func drag(m Model, from, to int) (Model, tea.Cmd) {
	m, _ = m.Update(mouseAt(m, from, tea.MouseActionPress))
	m, _ = m.Update(mouseAt(m, to, tea.MouseActionMotion))
	return m.Update(mouseAt(m, to, tea.MouseActionRelease))
}

func clickOn(m Model, token int) (Model, tea.Cmd) {
	return drag(m, token, token)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCreateSpanByMouse(t *testing.T) {
	m, _ := newTestModel(t, "hello world", nil)

	m, cmd := drag(m, 0, 1)
	got := proposed(t, cmd)
	require.Equal(t, []document.Span{{
		Label:    "PERSON",
		Text:     "hello world ",
		TokenIDs: []int{0, 1},
	}}, got)
	require.Equal(t, got, m.Objects(), "the proposal is drawn right away")
}

func TestColorsBlendOverConfiguredBackground(t *testing.T) {
	person := labels.RGB{R: 10, G: 20, B: 30}
	m := New(mode.Services{Config: testConfig(), Background: labels.LightBackground})
	m = m.SetSize(80, 24).SetDocument("/tmp/doc.txt", document.New("Ann went home")).
		SetObjects([]document.Span{{Label: "PERSON", Text: "Ann ", TokenIDs: []int{0}}})

	require.Equal(t, person.Blend(labels.LightBackground, labels.HighlightAlpha), m.Highlight().Color)
	require.NotEqual(t, person.Blend(labels.DarkBackground, labels.HighlightAlpha), m.Highlight().Color)
	require.Len(t, m.view.Groups, 1)
	require.Equal(t, person.Blend(labels.LightBackground, labels.TintAlpha), m.view.Groups[0].Tint)
}

func TestBackToBackProposalsBuildOnEachOther(t *testing.T) {
	m, _ := newTestModel(t, "one two three four", nil)

	m, first := drag(m, 0, 1)
	m, second := drag(m, 2, 3)

	firstMsg := collect(first)[0].(ObjectsChangedMsg)
	secondMsg := collect(second)[0].(ObjectsChangedMsg)
	require.Len(t, firstMsg.Objects, 1)
	require.Equal(t, []document.Span{
		{Label: "PERSON", Text: "one two ", TokenIDs: []int{0, 1}},
		{Label: "PERSON", Text: "three four ", TokenIDs: []int{2, 3}},
	}, secondMsg.Objects, "second span is added to the uncommitted first one")
	require.Greater(t, secondMsg.Seq, firstMsg.Seq)
	require.Len(t, m.RenderView().Groups, 2)
}

func TestDoubleClickWithoutCommit(t *testing.T) {
	objects := []document.Span{{Label: "PERSON", Text: "hello ", TokenIDs: []int{0}}}
	m, f := newTestModel(t, "hello world", objects)

	m, toggle := clickOn(m, 0)
	require.True(t, proposed(t, toggle)[0].Selected)
	f.clock.Advance(100 * time.Millisecond)

	m, remove := clickOn(m, 0)
	require.Empty(t, proposed(t, remove))
	require.Empty(t, m.Objects())
}

func TestCreateSpanByMouse_ReverseDrag(t *testing.T) {
	m, _ := newTestModel(t, "one two three", nil)
	_, cmd := drag(m, 2, 0)
	require.Equal(t, []int{0, 1, 2}, proposed(t, cmd)[0].TokenIDs)
}

func TestCreateSpanByKeyboard(t *testing.T) {
	m, _ := newTestModel(t, "hello world", nil)

	m, _ = m.Update(runes("v"))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, []int{0, 1}, m.selection())

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := proposed(t, cmd)
	require.Equal(t, "hello world ", got[0].Text)
	require.Nil(t, m.selection())
}

func TestCollapsedSelectionIgnored(t *testing.T) {
	m, _ := newTestModel(t, "hello world", nil)

	_, cmd := clickOn(m, 1)
	require.Nil(t, cmd)

	m, _ = m.Update(runes("v"))
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
}

func TestClickTogglesSpan(t *testing.T) {
	objects := []document.Span{{Label: "PERSON", Text: "hello world ", TokenIDs: []int{0, 1}}}
	m, _ := newTestModel(t, "hello world", objects)

	m, cmd := clickOn(m, 1)
	got := proposed(t, cmd)
	require.Len(t, got, 1)
	require.True(t, got[0].Selected)
	require.False(t, objects[0].Selected, "input list untouched")

	m = m.SetObjects(got)
	require.True(t, m.RenderView().Groups[0].Selected)
}

func TestDoubleClickDeletesSpan(t *testing.T) {
	objects := []document.Span{
		{Label: "PERSON", Text: "hello ", TokenIDs: []int{0}},
		{Label: "PLACE", Text: "world ", TokenIDs: []int{1}},
	}
	m, f := newTestModel(t, "hello world", objects)

	m, cmd := clickOn(m, 0)
	m = m.SetObjects(proposed(t, cmd))
	f.clock.Advance(150 * time.Millisecond)

	_, cmd = clickOn(m, 0)
	got := proposed(t, cmd)
	require.Equal(t, []document.Span{objects[1]}, got)
}

func TestSlowClicksToggleTwice(t *testing.T) {
	objects := []document.Span{{Label: "PERSON", Text: "hello ", TokenIDs: []int{0}}}
	m, f := newTestModel(t, "hello world", objects)

	m, cmd := clickOn(m, 0)
	m = m.SetObjects(proposed(t, cmd))
	f.clock.Advance(DoubleClickInterval + time.Millisecond)

	_, cmd = clickOn(m, 0)
	got := proposed(t, cmd)
	require.Len(t, got, 1)
	require.False(t, got[0].Selected)
}

func TestDeleteAll(t *testing.T) {
	objects := []document.Span{
		{Label: "PERSON", Text: "hello ", TokenIDs: []int{0}},
		{Label: "PLACE", Text: "world ", TokenIDs: []int{1}},
	}
	m, _ := newTestModel(t, "hello world", objects)

	_, cmd := m.Update(runes("D"))
	got := proposed(t, cmd)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestDeleteAll_EmptyListIsNoop(t *testing.T) {
	m, _ := newTestModel(t, "hello world", nil)
	_, cmd := m.Update(runes("D"))
	require.Nil(t, cmd)
}

func TestKeyboardToggleAndDelete(t *testing.T) {
	objects := []document.Span{{Label: "PERSON", Text: "world ", TokenIDs: []int{1}}}
	m, _ := newTestModel(t, "hello world", objects)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	require.Nil(t, cmd, "no span under the cursor")

	m, _ = m.Update(runes("$"))
	require.Equal(t, 1, m.Cursor())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	require.True(t, proposed(t, cmd)[0].Selected)

	_, cmd = m.Update(runes("x"))
	require.Empty(t, proposed(t, cmd))
}

func TestOverlapWarns(t *testing.T) {
	objects := []document.Span{{Label: "PERSON", Text: "world ", TokenIDs: []int{1}}}
	m, _ := newTestModel(t, "hello world again", objects)

	_, cmd := drag(m, 0, 1)
	msgs := collect(cmd)
	require.Len(t, msgs, 2)

	var warned bool
	for _, msg := range msgs {
		switch msg := msg.(type) {
		case ObjectsChangedMsg:
			require.Len(t, msg.Objects, 2, "overlapping span is still added")
		case toaster.ShowToastMsg:
			warned = msg.Style == toaster.StyleWarn
		}
	}
	require.True(t, warned)
}

func TestLabelSwitching(t *testing.T) {
	m, _ := newTestModel(t, "hello world", nil)
	before := m.Highlight()
	require.True(t, before.IsSet())
	require.Equal(t, labels.RGB{R: 5, G: 10, B: 15}, before.Color)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, []tea.Msg{ActiveLabelChangedMsg{Label: "PLACE"}}, collect(cmd))
	require.Equal(t, "PLACE", m.ActiveLabel())
	require.Equal(t, labels.RGB{R: 100, G: 50, B: 0}, m.Highlight().Color)

	m, _ = m.Update(runes("1"))
	require.Equal(t, "PERSON", m.ActiveLabel())

	_, cmd = m.Update(runes("9"))
	require.Nil(t, cmd, "no ninth category")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, "PLACE", m.ActiveLabel())

	_, cmd = drag(m, 0, 1)
	require.Equal(t, "PLACE", proposed(t, cmd)[0].Label)
}

func TestYankCopiesSpanText(t *testing.T) {
	objects := []document.Span{{Label: "PERSON", Text: "hello ", TokenIDs: []int{0}}}
	m, f := newTestModel(t, "hello world", objects)

	_, cmd := m.Update(runes("y"))
	msgs := collect(cmd)
	require.Equal(t, "hello ", f.copied)
	require.IsType(t, toaster.ShowToastMsg{}, msgs[0])
}

func TestReloadRequest(t *testing.T) {
	m, _ := newTestModel(t, "hello world", nil)
	_, cmd := m.Update(runes("r"))
	require.Equal(t, []tea.Msg{ReloadRequestMsg{}}, collect(cmd))
}

func TestCursorMovesBetweenLines(t *testing.T) {
	m, _ := newTestModel(t, "aaaa bbbb\ncccc dddd", nil)
	// tokens: "aaaa " "bbbb" "\n" "cccc " "dddd "
	m, _ = m.Update(runes("l"))
	require.Equal(t, 1, m.Cursor())

	m, _ = m.Update(runes("j"))
	row := m.Frame().RowOf(m.Cursor())
	require.Equal(t, 1, row)

	m, _ = m.Update(runes("k"))
	require.Equal(t, 0, m.Frame().RowOf(m.Cursor()))

	m, _ = m.Update(runes("0"))
	require.Equal(t, 0, m.Cursor())
	m, _ = m.Update(runes("h"))
	require.Equal(t, 0, m.Cursor(), "cursor clamps at the first token")
}

func TestSetDocumentClampsCursor(t *testing.T) {
	m, _ := newTestModel(t, "one two three", nil)
	m, _ = m.Update(runes("$"))
	require.Equal(t, 2, m.Cursor())

	m = m.SetDocument("/tmp/doc.txt", document.New("one"))
	require.Equal(t, 0, m.Cursor())
}

func TestView(t *testing.T) {
	objects := []document.Span{{Label: "PERSON", Text: "hello ", TokenIDs: []int{0}}}
	m, _ := newTestModel(t, "hello world", objects)

	out := ansi.Strip(zone.Scan(m.View()))
	require.Contains(t, out, "doc.txt")
	require.Contains(t, out, "1 Person")
	require.Contains(t, out, "2 Place")
	require.Contains(t, out, "hello[Person] world")
	require.Contains(t, out, "label PERSON · 1 span · token 1/2")
}

func TestView_ShowsHiddenAndSkipped(t *testing.T) {
	objects := []document.Span{
		{Label: "PERSON", Text: "hello world ", TokenIDs: []int{0, 1}},
		{Label: "PLACE", Text: "world ", TokenIDs: []int{1}},
		{Label: "PLACE", Text: "gone ", TokenIDs: []int{5}},
	}
	m, _ := newTestModel(t, "hello world", objects)
	out := ansi.Strip(m.View())
	require.Contains(t, out, "3 spans · 1 hidden · 1 skipped")
}

func TestWheelScrolls(t *testing.T) {
	m, _ := newTestModel(t, "a\nb\nc\nd\ne\nf\ng\nh\ni\nj\nk\nl\nm\nn\no\np\nq\nr\ns\nt\nu\nv\nw\nx\ny\nz", nil)
	m, _ = m.Update(tea.MouseMsg{Button: tea.MouseButtonWheelDown, Action: tea.MouseActionPress})
	require.Equal(t, wheelStep, m.viewport.YOffset)

	// clicks are translated through the scroll offset
	m, _ = m.Update(tea.MouseMsg{X: contentLeft, Y: contentTop, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	tok, _ := m.Frame().TokenAt(wheelStep, 0)
	require.Equal(t, []int{tok}, m.selection())
}
