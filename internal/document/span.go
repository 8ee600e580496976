package document

import (
	"encoding/binary"
	"strconv"
	"strings"
)

// SpanID is the canonical identity of a span, derived from its ordered
// token ids. It is comparable and usable as a map key. Order matters:
// [1 2] and [2 1] are different ids.
type SpanID struct {
	key string
}

// NoSpanID is the id of a span with no token ids. It never equals the id
// of a real span.
var NoSpanID = SpanID{}

// SpanIDOf derives the id for tokenIDs.
func SpanIDOf(tokenIDs []int) SpanID {
	if len(tokenIDs) == 0 {
		return NoSpanID
	}
	buf := make([]byte, 0, len(tokenIDs)*2)
	for _, id := range tokenIDs {
		buf = binary.AppendVarint(buf, int64(id))
	}
	return SpanID{key: string(buf)}
}

// IsZero reports whether id is NoSpanID.
func (id SpanID) IsZero() bool {
	return id.key == ""
}

// TokenIDs decodes the token ids the id was derived from.
func (id SpanID) TokenIDs() []int {
	var ids []int
	buf := []byte(id.key)
	for len(buf) > 0 {
		v, n := binary.Varint(buf)
		if n <= 0 {
			break
		}
		ids = append(ids, int(v))
		buf = buf[n:]
	}
	return ids
}

// String renders the id as underscore-joined token ids, or "none".
func (id SpanID) String() string {
	if id.IsZero() {
		return "none"
	}
	ids := id.TokenIDs()
	parts := make([]string, len(ids))
	for i, v := range ids {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, "_")
}

// Span is a labeled object over a run of token ids.
type Span struct {
	Label    string `json:"label"`
	Text     string `json:"text"`
	TokenIDs []int  `json:"wordsIds"`
	Draft    bool   `json:"draft"`
	Selected bool   `json:"selected"`
}

// ID returns the span's derived identity.
func (s Span) ID() SpanID {
	return SpanIDOf(s.TokenIDs)
}

// Clone returns a copy that shares no memory with s.
func (s Span) Clone() Span {
	c := s
	if s.TokenIDs != nil {
		c.TokenIDs = append([]int(nil), s.TokenIDs...)
	}
	return c
}

// Toggle returns a copy of s with Selected flipped.
func (s Span) Toggle() Span {
	c := s.Clone()
	c.Selected = !c.Selected
	return c
}
