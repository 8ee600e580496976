package testutil

import "github.com/zjrosen/spanmark/internal/document"

// SpanOption configures a span added by the builder.
type SpanOption func(*document.Span)

// Selected marks the span selected.
func Selected() SpanOption {
	return func(s *document.Span) { s.Selected = true }
}

// Draft marks the span as a draft.
func Draft() SpanOption {
	return func(s *document.Span) { s.Draft = true }
}

// Text overrides the stored text, e.g. to simulate a stale span.
func Text(text string) SpanOption {
	return func(s *document.Span) { s.Text = text }
}
