package document

import "errors"

// ErrEmptySelection is returned when a span would cover no tokens.
var ErrEmptySelection = errors.New("selection covers no tokens")

// ErrSentinelSpanID is returned when an update or delete targets NoSpanID.
var ErrSentinelSpanID = errors.New("operation targets the empty span id")

// ErrTokenOutOfRange is returned when a token id is not an index of the
// current tokenization, typically after the document text changed.
var ErrTokenOutOfRange = errors.New("token id out of range")
