package render

import (
	"strconv"
	"strings"

	"github.com/zjrosen/spanmark/internal/document"
)

// makeSpanZoneID builds the zone id for one line segment of a span group.
// Format: "<prefix>span:<token ids joined by _>#<segment>".
func makeSpanZoneID(prefix string, id document.SpanID, seg int) string {
	return prefix + "span:" + id.String() + "#" + strconv.Itoa(seg)
}

// ParseSpanZoneID extracts the span id from a zone id made by Draw with
// the given prefix.
func ParseSpanZoneID(prefix, zoneID string) (document.SpanID, bool) {
	rest, ok := strings.CutPrefix(zoneID, prefix+"span:")
	if !ok {
		return document.NoSpanID, false
	}
	key, _, ok := strings.Cut(rest, "#")
	if !ok || key == "" || key == "none" {
		return document.NoSpanID, false
	}
	parts := strings.Split(key, "_")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return document.NoSpanID, false
		}
		ids = append(ids, n)
	}
	return document.SpanIDOf(ids), true
}
