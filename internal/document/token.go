// Package document holds the tokenized document and the labeled span
// model: tokenization, span identity, selection resolution and the pure
// object-list operations.
package document

import (
	"strings"
	"unicode/utf8"
)

// Token is the smallest addressable unit of a document. Tokens are
// produced once per document version and never mutated.
type Token struct {
	Index int
	Text  string
	// TrailingSpace is set on the last token of each space-delimited
	// group; its Text ends with the space the split removed.
	TrailingSpace bool
}

func isWordChar(r rune) bool {
	return r < utf8.RuneSelf &&
		(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
}

// Tokenize splits text on single spaces, then splits each group into runs
// of ASCII alphanumerics and single-character tokens for everything else.
// The last token of every group, including the final one, gets the space
// back as a suffix. An empty group (from consecutive or leading spaces)
// becomes a lone " " token so no space is lost.
func Tokenize(text string) []Token {
	if text == "" {
		return nil
	}

	groups := strings.Split(text, " ")
	tokens := make([]Token, 0, len(groups))
	emit := func(s string) {
		tokens = append(tokens, Token{Index: len(tokens), Text: s})
	}

	for _, group := range groups {
		if group == "" {
			emit("")
		} else {
			runStart := -1
			for i, r := range group {
				if isWordChar(r) {
					if runStart < 0 {
						runStart = i
					}
					continue
				}
				if runStart >= 0 {
					emit(group[runStart:i])
					runStart = -1
				}
				// slice the source bytes so invalid UTF-8 survives unchanged
				_, size := utf8.DecodeRuneInString(group[i:])
				emit(group[i : i+size])
			}
			if runStart >= 0 {
				emit(group[runStart:])
			}
		}

		last := &tokens[len(tokens)-1]
		last.Text += " "
		last.TrailingSpace = true
	}

	return tokens
}

// Concat joins token texts in index order. For a non-empty document this
// is the original text plus one trailing space.
func Concat(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// Detokenize reverses Tokenize exactly by dropping the space Tokenize
// appends to the final token.
func Detokenize(tokens []Token) string {
	return strings.TrimSuffix(Concat(tokens), " ")
}

// TextOf concatenates the texts of the tokens at ids, in the order given.
func TextOf(tokens []Token, ids []int) (string, error) {
	var sb strings.Builder
	for _, id := range ids {
		if id < 0 || id >= len(tokens) {
			return "", ErrTokenOutOfRange
		}
		sb.WriteString(tokens[id].Text)
	}
	return sb.String(), nil
}
