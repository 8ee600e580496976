// Package render rebuilds the visual state of a document from its tokens
// and the current object list, and draws it for the terminal.
//
// Every call to Reconcile starts from scratch: one unit per token, then one
// group per span in list order. Nothing is carried over between calls.
package render

import (
	"fmt"

	"github.com/zjrosen/spanmark/internal/document"
	"github.com/zjrosen/spanmark/internal/labels"
	"github.com/zjrosen/spanmark/internal/log"
)

// NoGroup marks a unit that belongs to no span group.
const NoGroup = -1

// Unit is the rendered form of one token.
type Unit struct {
	Index int
	Text  string
	Group int // index into View.Groups, or NoGroup
}

// Group is one span drawn as a single visual unit.
type Group struct {
	ID       document.SpanID
	Span     document.Span
	Style    labels.Style
	Tint     labels.RGB // translucent background for the span tokens
	Caption  labels.RGB // opaque caption color
	Selected bool
	Tokens   []int
}

// Last returns the token the caption is drawn after.
func (g Group) Last() int {
	if len(g.Tokens) == 0 {
		return -1
	}
	return g.Tokens[len(g.Tokens)-1]
}

// SkipReason says why a span has no group.
type SkipReason string

const (
	SkipEmpty      SkipReason = "empty"
	SkipOutOfRange SkipReason = "out_of_range"
	SkipShadowed   SkipReason = "shadowed"
)

// Skip records a span that could not be drawn distinctly.
type Skip struct {
	Span   document.Span
	Reason SkipReason
}

// View is the reconciled visual state. It is a plain value: reconciling
// the same inputs twice yields deep-equal views.
type View struct {
	Units  []Unit
	Groups []Group
	// Shadowed spans touch tokens claimed by an earlier span.
	Shadowed []Skip
	// Skipped spans are empty or reference tokens outside the document.
	Skipped []Skip

	objects []document.Span
}

// Options controls how styles are derived.
type Options struct {
	// Background is the color translucent tints are blended over.
	Background labels.RGB
}

// Reconcile builds the view for tokens and objects. Spans are applied in
// list order and the first span to claim a token wins it. A span touching
// any claimed token is shadowed as a whole.
func Reconcile(tokens []document.Token, objects []document.Span, resolver *labels.Resolver, opts Options) View {
	view := View{
		Units:   make([]Unit, len(tokens)),
		objects: cloneList(objects),
	}
	for i, tok := range tokens {
		view.Units[i] = Unit{Index: tok.Index, Text: tok.Text, Group: NoGroup}
	}

	for _, span := range objects {
		if len(span.TokenIDs) == 0 {
			view.Skipped = append(view.Skipped, Skip{Span: span.Clone(), Reason: SkipEmpty})
			continue
		}
		if reason, ok := claimable(view.Units, span.TokenIDs); !ok {
			skip := Skip{Span: span.Clone(), Reason: reason}
			if reason == SkipShadowed {
				view.Shadowed = append(view.Shadowed, skip)
				log.Debug(log.CatRender, "span shadowed by earlier span", "span", span.ID().String(), "label", span.Label)
			} else {
				view.Skipped = append(view.Skipped, skip)
				log.Warn(log.CatRender, "skipping span outside document", "span", span.ID().String(), "tokens", len(tokens))
			}
			continue
		}

		style := resolver.Resolve(span.Label)
		if !style.Known {
			log.Debug(log.CatRender, "label has no category", "label", span.Label)
		}
		idx := len(view.Groups)
		tokenIDs := append([]int(nil), span.TokenIDs...)
		for _, id := range tokenIDs {
			view.Units[id].Group = idx
		}
		view.Groups = append(view.Groups, Group{
			ID:       span.ID(),
			Span:     span.Clone(),
			Style:    style,
			Tint:     style.Color.Blend(opts.Background, labels.TintAlpha),
			Caption:  style.Color.Opaque(),
			Selected: span.Selected,
			Tokens:   tokenIDs,
		})
	}

	return view
}

func claimable(units []Unit, ids []int) (SkipReason, bool) {
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if id < 0 || id >= len(units) {
			return SkipOutOfRange, false
		}
		if units[id].Group != NoGroup || seen[id] {
			return SkipShadowed, false
		}
		seen[id] = true
	}
	return "", true
}

func cloneList(list []document.Span) []document.Span {
	if list == nil {
		return nil
	}
	out := make([]document.Span, len(list))
	for i, s := range list {
		out[i] = s.Clone()
	}
	return out
}

// Objects returns a copy of the list the view was built from.
func (v View) Objects() []document.Span {
	return cloneList(v.objects)
}

// UnitAt returns the unit for a token index.
func (v View) UnitAt(index int) (Unit, bool) {
	if index < 0 || index >= len(v.Units) {
		return Unit{}, false
	}
	return v.Units[index], true
}

// GroupAt returns the group that claimed a token index.
func (v View) GroupAt(index int) (Group, bool) {
	u, ok := v.UnitAt(index)
	if !ok || u.Group == NoGroup {
		return Group{}, false
	}
	return v.Groups[u.Group], true
}

// GroupByID returns the group drawn for a span id.
func (v View) GroupByID(id document.SpanID) (Group, bool) {
	for _, g := range v.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

// Toggle is the primary action on a group: the list with that span's
// selected flag flipped.
func (v View) Toggle(id document.SpanID) ([]document.Span, error) {
	g, ok := v.GroupByID(id)
	if !ok {
		return v.Objects(), fmt.Errorf("toggle span %s: not drawn", id)
	}
	return document.Replace(v.objects, g.Span.Toggle())
}

// Remove is the secondary action on a group: the list without that span.
func (v View) Remove(id document.SpanID) ([]document.Span, error) {
	return document.RemoveBySpanID(v.objects, id)
}

// Grouping maps every token index to the span id that claimed it, or
// NoSpanID. Two views with equal groupings look the same.
func (v View) Grouping() []document.SpanID {
	out := make([]document.SpanID, len(v.Units))
	for i, u := range v.Units {
		if u.Group != NoGroup {
			out[i] = v.Groups[u.Group].ID
		}
	}
	return out
}
