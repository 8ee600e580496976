package testutil

import "github.com/zjrosen/spanmark/internal/labels"

// SampleText is a short document with a person, place, organization and date.
//
// Tokens: 0 "Ada " 1 "Lovelace " 2 "visited " 3 "London " 4 "with " 5 "the "
// 6 "Royal " 7 "Society " 8 "in " 9 "1843" 10 ". "
const SampleText = "Ada Lovelace visited London with the Royal Society in 1843."

// Categories returns a fixed category set with easy to read colors.
func Categories() []labels.Category {
	return []labels.Category{
		{Name: "PERSON", Color: labels.RGB{R: 255}, Caption: "Person"},
		{Name: "PLACE", Color: labels.RGB{G: 255}, Caption: "Place"},
		{Name: "ORG", Color: labels.RGB{B: 255}, Caption: "Org"},
	}
}

// Resolver returns a resolver over Categories with a gray fallback.
func Resolver() *labels.Resolver {
	return labels.NewResolver(Categories(), labels.RGB{R: 100, G: 100, B: 100}, "Undefined")
}

// WithSampleSpans adds one span per category over SampleText.
func (b *Builder) WithSampleSpans() *Builder {
	return b.
		WithSpan("PERSON", 0, 1).
		WithSpan("PLACE", 3, 3).
		WithSpan("ORG", 6, 7)
}
