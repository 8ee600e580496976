package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSpanIDOf(t *testing.T) {
	require.Equal(t, SpanIDOf([]int{0, 1}), SpanIDOf([]int{0, 1}))
	require.NotEqual(t, SpanIDOf([]int{0, 1}), SpanIDOf([]int{1, 0}), "order matters")
	require.NotEqual(t, SpanIDOf([]int{1, 12}), SpanIDOf([]int{11, 2}))
	require.Equal(t, "0_1_2", SpanIDOf([]int{0, 1, 2}).String())
}

func TestSpanIDOf_Sentinel(t *testing.T) {
	require.Equal(t, NoSpanID, SpanIDOf(nil))
	require.Equal(t, NoSpanID, SpanIDOf([]int{}))
	require.True(t, NoSpanID.IsZero())
	require.Equal(t, "none", NoSpanID.String())
	require.NotEqual(t, NoSpanID, SpanIDOf([]int{0}), "the sentinel cannot collide with token 0")
}

func TestSpanID_UsableAsMapKey(t *testing.T) {
	seen := map[SpanID]string{}
	seen[SpanIDOf([]int{3, 4})] = "a"
	seen[SpanIDOf([]int{3, 4})] = "b"
	require.Len(t, seen, 1)
	require.Equal(t, "b", seen[SpanIDOf([]int{3, 4})])
}

func TestSpanID_IdentityProperty(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		a := rapid.SliceOfN(rapid.IntRange(0, 500), 1, 20).Draw(r, "a")
		b := rapid.SliceOfN(rapid.IntRange(0, 500), 1, 20).Draw(r, "b")

		if SpanIDOf(a) != SpanIDOf(append([]int(nil), a...)) {
			r.Fatalf("equal token ids gave different span ids: %v", a)
		}
		if got := SpanIDOf(a).TokenIDs(); !intsEqual(got, a) {
			r.Fatalf("TokenIDs() = %v, want %v", got, a)
		}
		if (SpanIDOf(a) == SpanIDOf(b)) != intsEqual(a, b) {
			r.Fatalf("id equality disagrees with token id equality: %v vs %v", a, b)
		}
	})
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSpan_ToggleDoesNotAlias(t *testing.T) {
	s := Span{Label: "PERSON", TokenIDs: []int{0, 1}}
	toggled := s.Toggle()

	require.True(t, toggled.Selected)
	require.False(t, s.Selected)
	require.Equal(t, s.ID(), toggled.ID())

	toggled.TokenIDs[0] = 9
	require.Equal(t, 0, s.TokenIDs[0])
}

func TestSpan_JSONShape(t *testing.T) {
	s := Span{Label: "PERSON", Text: "hello world ", TokenIDs: []int{0, 1}}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t,
		`{"label":"PERSON","text":"hello world ","wordsIds":[0,1],"draft":false,"selected":false}`,
		string(data))
}
