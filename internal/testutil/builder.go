// Package testutil provides fixtures and builders for span-list tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/spanmark/internal/document"
)

// Builder accumulates spans over one document's tokens.
type Builder struct {
	t     *testing.T
	doc   document.Document
	spans []document.Span
}

// NewBuilder creates a builder for text.
func NewBuilder(t *testing.T, text string) *Builder {
	t.Helper()
	return &Builder{t: t, doc: document.New(text)}
}

// Document returns the tokenized document the builder works on.
func (b *Builder) Document() document.Document {
	return b.doc
}

// WithSpan adds a span covering tokens first..last inclusive, in either
// order. Unlike a selection, first == last yields a one-token span.
func (b *Builder) WithSpan(label string, first, last int, opts ...SpanOption) *Builder {
	b.t.Helper()
	if first > last {
		first, last = last, first
	}
	ids := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		ids = append(ids, i)
	}
	span, err := document.Create(b.doc.Tokens, ids, label)
	require.NoError(b.t, err)
	for _, opt := range opts {
		opt(&span)
	}
	b.spans = document.Append(b.spans, span)
	return b
}

// WithRaw adds a span verbatim, without validation against the tokens.
func (b *Builder) WithRaw(span document.Span) *Builder {
	b.spans = document.Append(b.spans, span)
	return b
}

// Build returns the accumulated list. It is never nil.
func (b *Builder) Build() []document.Span {
	if b.spans == nil {
		return document.Clear()
	}
	return b.spans
}
