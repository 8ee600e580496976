package tracing

import (
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrDocumentPath = "document.path"
	AttrSpanCount    = "spans.count"
	AttrStoreDriver  = "store.driver"
	AttrCommand      = "cli.command"
)

// Span name prefixes.
const (
	SpanPrefixStore   = "store."
	SpanPrefixCommand = "cli."
)

// Finish sets the span status from err and ends the span.
func Finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
