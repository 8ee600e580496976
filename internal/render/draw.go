package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/zjrosen/spanmark/internal/labels"
)

// DrawOptions controls layout and transient decorations.
type DrawOptions struct {
	// Width wraps lines at this many cells. Zero disables wrapping.
	Width int
	// MaxCaptionWidth truncates captions. Zero leaves them whole.
	MaxCaptionWidth int
	// Highlight colors the live selection.
	Highlight labels.Highlight
	// Selection lists the token indices of the selection in progress.
	Selection []int
	// Cursor is the keyboard cursor token, or -1.
	Cursor int
	// ZonePrefix enables bubblezone marks around span segments.
	ZonePrefix string
}

// Frame is a drawn view plus the cell table used for hit testing.
type Frame struct {
	Lines []string

	cells   [][]int
	rows    []int
	cols    []int
	zoneIDs []string
}

// String joins the lines.
func (f Frame) String() string {
	return strings.Join(f.Lines, "\n")
}

// Height returns the number of lines.
func (f Frame) Height() int {
	return len(f.Lines)
}

// TokenAt returns the token drawn at a cell.
func (f Frame) TokenAt(row, col int) (int, bool) {
	if row < 0 || row >= len(f.cells) || col < 0 || col >= len(f.cells[row]) {
		return 0, false
	}
	return f.cells[row][col], true
}

// RowOf returns the line a token starts on, or -1.
func (f Frame) RowOf(token int) int {
	if token < 0 || token >= len(f.rows) {
		return -1
	}
	return f.rows[token]
}

// ColOf returns the column a token starts at, or -1.
func (f Frame) ColOf(token int) int {
	if token < 0 || token >= len(f.cols) {
		return -1
	}
	return f.cols[token]
}

// ZoneIDs lists the zones marked in this frame.
func (f Frame) ZoneIDs() []string {
	return append([]string(nil), f.zoneIDs...)
}

// segment is a styled run of text on one line.
type segment struct {
	text  string
	style lipgloss.Style
	group int
}

type layout struct {
	view  View
	opts  DrawOptions
	frame Frame

	selected map[int]bool
	segs     []segment
	cells    []int
	col      int
	segCount map[int]int
}

func color(c labels.RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}

// Draw lays out view as terminal lines.
func Draw(view View, opts DrawOptions) Frame {
	l := &layout{
		view:     view,
		opts:     opts,
		selected: make(map[int]bool, len(opts.Selection)),
		segCount: make(map[int]int),
	}
	for _, id := range opts.Selection {
		l.selected[id] = true
	}
	l.frame.rows = make([]int, len(view.Units))
	l.frame.cols = make([]int, len(view.Units))

	for i, u := range view.Units {
		l.frame.rows[i] = len(l.frame.Lines)
		l.frame.cols[i] = l.col
		l.unit(i, u)
	}
	l.flush()
	return l.frame
}

func displayText(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\r", "")
}

func (l *layout) unit(i int, u Unit) {
	if u.Text == "\n" || u.Text == "\n " {
		l.flush()
		return
	}

	word, space := displayText(u.Text), ""
	if strings.HasSuffix(word, " ") {
		word, space = word[:len(word)-1], " "
	}

	var caption string
	var group Group
	inGroup := u.Group != NoGroup
	if inGroup {
		group = l.view.Groups[u.Group]
		if group.Last() == i {
			caption = "[" + l.caption(group.Style.Caption) + "]"
		}
	}

	width := runewidth.StringWidth(word) + runewidth.StringWidth(caption)
	if l.opts.Width > 0 && l.col > 0 && l.col+width > l.opts.Width {
		l.flush()
		l.frame.rows[i] = len(l.frame.Lines)
		l.frame.cols[i] = 0
	}

	style := l.tokenStyle(i, u)
	l.add(segment{text: word, style: style, group: u.Group}, i)
	if caption != "" {
		capStyle := lipgloss.NewStyle().Foreground(color(group.Caption)).Bold(true)
		l.add(segment{text: caption, style: capStyle, group: u.Group}, i)
	}
	if space != "" {
		l.add(segment{text: space, style: l.spaceStyle(i, u, caption != ""), group: u.Group}, i)
	}
}

func (l *layout) caption(s string) string {
	if l.opts.MaxCaptionWidth > 0 && runewidth.StringWidth(s) > l.opts.MaxCaptionWidth {
		return truncate.StringWithTail(s, uint(l.opts.MaxCaptionWidth), "…") //nolint:gosec // positive
	}
	return s
}

func (l *layout) tokenStyle(i int, u Unit) lipgloss.Style {
	style := lipgloss.NewStyle()
	if u.Group != NoGroup {
		g := l.view.Groups[u.Group]
		style = style.Background(color(g.Tint))
		if g.Selected {
			style = style.Bold(true).Underline(true)
		}
	}
	if l.selected[i] {
		if l.opts.Highlight.IsSet() {
			style = style.Background(color(l.opts.Highlight.Color))
		} else {
			style = style.Reverse(true)
		}
	}
	if i == l.opts.Cursor {
		style = style.Reverse(true)
	}
	return style
}

// spaceStyle tints the gap between two tokens of one span or selection.
func (l *layout) spaceStyle(i int, u Unit, captioned bool) lipgloss.Style {
	style := lipgloss.NewStyle()
	next, ok := l.view.UnitAt(i + 1)
	if !ok {
		return style
	}
	if u.Group != NoGroup && !captioned && next.Group == u.Group {
		style = style.Background(color(l.view.Groups[u.Group].Tint))
	}
	if l.selected[i] && l.selected[i+1] && l.opts.Highlight.IsSet() {
		style = style.Background(color(l.opts.Highlight.Color))
	}
	return style
}

func (l *layout) add(s segment, token int) {
	if s.text == "" {
		return
	}
	l.segs = append(l.segs, s)
	w := runewidth.StringWidth(s.text)
	for range w {
		l.cells = append(l.cells, token)
	}
	l.col += w
}

// flush renders the pending segments as one line. Consecutive segments of
// the same group become one zone.
func (l *layout) flush() {
	var b strings.Builder
	for i := 0; i < len(l.segs); {
		j := i
		var run strings.Builder
		for j < len(l.segs) && l.segs[j].group == l.segs[i].group {
			run.WriteString(l.segs[j].style.Render(l.segs[j].text))
			j++
		}
		g := l.segs[i].group
		if g != NoGroup && l.opts.ZonePrefix != "" {
			id := makeSpanZoneID(l.opts.ZonePrefix, l.view.Groups[g].ID, l.segCount[g])
			l.segCount[g]++
			l.frame.zoneIDs = append(l.frame.zoneIDs, id)
			b.WriteString(zone.Mark(id, run.String()))
		} else {
			b.WriteString(run.String())
		}
		i = j
	}
	l.frame.Lines = append(l.frame.Lines, b.String())
	l.frame.cells = append(l.frame.cells, l.cells)
	l.segs, l.cells, l.col = nil, nil, 0
}
