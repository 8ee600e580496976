package document

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "two words", in: "hello world", want: []string{"hello ", "world "}},
		{name: "punctuation splits", in: "Hi, Bob!", want: []string{"Hi", ", ", "Bob", "! "}},
		{name: "inner punctuation", in: "e-mail", want: []string{"e", "-", "mail "}},
		{name: "only punctuation", in: "?!", want: []string{"?", "! "}},
		{name: "leading punctuation", in: "(ok)", want: []string{"(", "ok", ") "}},
		{name: "double space keeps a space token", in: "a  b", want: []string{"a ", " ", "b "}},
		{name: "leading space", in: " a", want: []string{" ", "a "}},
		{name: "trailing space", in: "a ", want: []string{"a ", " "}},
		{name: "newline is its own token", in: "a\nb", want: []string{"a", "\n", "b "}},
		{name: "digits are word chars", in: "R2D2 rocks", want: []string{"R2D2 ", "rocks "}},
		{name: "empty", in: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, texts(Tokenize(tt.in)))
		})
	}
}

func TestTokenize_IndicesAndTrailingFlag(t *testing.T) {
	tokens := Tokenize("Hi, Bob")

	require.Len(t, tokens, 3)
	for i, tok := range tokens {
		require.Equal(t, i, tok.Index)
	}
	require.False(t, tokens[0].TrailingSpace, "Hi is followed by a comma, not a space")
	require.True(t, tokens[1].TrailingSpace)
	require.True(t, tokens[2].TrailingSpace, "the final token keeps the appended space")
}

func TestTokenize_NonASCIIRunesAreSingleTokens(t *testing.T) {
	require.Equal(t, []string{"caf", "é "}, texts(Tokenize("café")))
}

func TestTokenize_InvalidUTF8KeepsBytes(t *testing.T) {
	// Latin-1 "café" is not valid UTF-8
	text := "caf\xe9 ok\xff."
	tokens := Tokenize(text)

	require.Equal(t, []string{"caf", "\xe9 ", "ok", "\xff", ". "}, texts(tokens))
	require.Equal(t, text, Detokenize(tokens))
}

func TestTokenize_ByteRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		text := string(rapid.SliceOfN(rapid.Byte(), 0, 40).Draw(r, "bytes"))
		require.Equal(t, text, Detokenize(Tokenize(text)))
	})
}

func TestTokenize_FinalTrailingSpaceQuirk(t *testing.T) {
	tokens := Tokenize("hello world")
	require.Equal(t, "hello world ", Concat(tokens))
	require.Equal(t, "hello world", Detokenize(tokens))
}

func asciiText() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-zA-Z0-9 .,;:!?'"()\-\n]{0,60}`)
}

func TestTokenize_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		s := asciiText().Draw(r, "text")
		tokens := Tokenize(s)

		if got := Detokenize(tokens); got != s {
			r.Fatalf("Detokenize(Tokenize(%q)) = %q", s, got)
		}
		if s != "" && Concat(tokens) != s+" " {
			r.Fatalf("Concat(Tokenize(%q)) = %q, want original plus one space", s, Concat(tokens))
		}
		for i, tok := range tokens {
			if tok.Index != i {
				r.Fatalf("token %d has index %d", i, tok.Index)
			}
			if tok.Text == "" {
				r.Fatalf("token %d is empty", i)
			}
		}
	})
}

func TestTokenize_Deterministic(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		s := asciiText().Draw(r, "text")
		require.Equal(r, Tokenize(s), Tokenize(s))
	})
}

func TestTextOf(t *testing.T) {
	tokens := Tokenize("one two three")

	text, err := TextOf(tokens, []int{0, 1})
	require.NoError(t, err)
	require.Equal(t, "one two ", text)

	text, err = TextOf(tokens, []int{2, 0})
	require.NoError(t, err)
	require.Equal(t, "three one ", text, "caller order is kept")

	_, err = TextOf(tokens, []int{3})
	require.ErrorIs(t, err, ErrTokenOutOfRange)

	_, err = TextOf(tokens, []int{-1})
	require.ErrorIs(t, err, ErrTokenOutOfRange)
}
