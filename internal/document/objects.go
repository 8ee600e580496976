package document

import "fmt"

// Create builds a new, unselected, non-draft span over tokenIDs. Text is
// the concatenation of the covered token texts in the given order.
func Create(tokens []Token, tokenIDs []int, label string) (Span, error) {
	if len(tokenIDs) == 0 {
		return Span{}, ErrEmptySelection
	}
	text, err := TextOf(tokens, tokenIDs)
	if err != nil {
		return Span{}, fmt.Errorf("creating span %s: %w", SpanIDOf(tokenIDs), err)
	}
	return Span{
		Label:    label,
		Text:     text,
		TokenIDs: append([]int(nil), tokenIDs...),
	}, nil
}

// Append returns a new list with span added at the end. A nil list
// yields a single-element list.
func Append(list []Span, span Span) []Span {
	out := make([]Span, len(list), len(list)+1)
	copy(out, list)
	return append(out, span)
}

// Replace returns a new list where every element sharing updated's id is
// replaced by updated. Order is preserved. Targeting NoSpanID returns an
// unchanged copy and ErrSentinelSpanID.
func Replace(list []Span, updated Span) ([]Span, error) {
	target := updated.ID()
	out := make([]Span, len(list))
	copy(out, list)
	if target.IsZero() {
		return out, ErrSentinelSpanID
	}
	for i := range out {
		if out[i].ID() == target {
			out[i] = updated
		}
	}
	return out, nil
}

// RemoveBySpanID returns a new list without the elements whose id is
// target. Targeting NoSpanID returns an unchanged copy and ErrSentinelSpanID.
func RemoveBySpanID(list []Span, target SpanID) ([]Span, error) {
	if target.IsZero() {
		out := make([]Span, len(list))
		copy(out, list)
		return out, ErrSentinelSpanID
	}
	out := make([]Span, 0, len(list))
	for _, s := range list {
		if s.ID() != target {
			out = append(out, s)
		}
	}
	return out, nil
}

// Clear returns an empty, non-nil list.
func Clear() []Span {
	return []Span{}
}

// Find returns the first span with the given id.
func Find(list []Span, id SpanID) (Span, bool) {
	if id.IsZero() {
		return Span{}, false
	}
	for _, s := range list {
		if s.ID() == id {
			return s, true
		}
	}
	return Span{}, false
}

// Stale reports whether span no longer matches tokens: an id is out of
// range, or the recorded text differs from the text now at its ids.
func Stale(tokens []Token, span Span) bool {
	text, err := TextOf(tokens, span.TokenIDs)
	if err != nil {
		return true
	}
	return text != span.Text
}

// Equal reports whether two lists hold the same spans in the same order.
func Equal(a, b []Span) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Label != y.Label || x.Text != y.Text || x.Draft != y.Draft ||
			x.Selected != y.Selected || x.ID() != y.ID() {
			return false
		}
	}
	return true
}
