package labels

// Highlight is the color applied to a selection that is still being made.
// A renderer owns exactly one; SetActiveHighlight replaces it.
type Highlight struct {
	Color RGB
	Label string
	set   bool
}

// IsSet reports whether a highlight has been chosen.
func (h Highlight) IsSet() bool {
	return h.set
}

// HighlightFor derives the selection highlight for label: the resolved
// color at 50% over bg.
func HighlightFor(r *Resolver, label string, bg RGB) Highlight {
	style := r.Resolve(label)
	return Highlight{Color: style.Color.Blend(bg, HighlightAlpha), Label: label, set: true}
}
