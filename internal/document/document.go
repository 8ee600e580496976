package document

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"

	"github.com/zjrosen/spanmark/internal/cachemanager"
	"github.com/zjrosen/spanmark/internal/log"
)

// tokenCacheTTL bounds how long an unused tokenization stays cached.
const tokenCacheTTL = 30 * time.Minute

// Document is one version of a text together with its tokens.
type Document struct {
	Text    string
	Version string // BLAKE3 hex digest of Text
	Tokens  []Token
}

// Version returns the content hash identifying one version of text.
func Version(text string) string {
	sum := blake3.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// New tokenizes text without caching.
func New(text string) Document {
	return Document{Text: text, Version: Version(text), Tokens: Tokenize(text)}
}

// Len returns the number of tokens.
func (d Document) Len() int {
	return len(d.Tokens)
}

// Loader tokenizes documents, reusing tokens for versions it has seen.
type Loader struct {
	tokens *cachemanager.ReadThroughCache[string, []Token, string]
}

// NewLoader returns a Loader over cache. A nil cache disables reuse.
func NewLoader(cache cachemanager.CacheManager[string, []Token]) *Loader {
	tokenize := func(_ context.Context, text string) ([]Token, error) {
		tokens := Tokenize(text)
		log.Debug(log.CatTokenize, "tokenized document", "tokens", len(tokens), "bytes", len(text))
		return tokens, nil
	}
	return &Loader{tokens: cachemanager.NewReadThroughCache(cache, tokenize, cache == nil)}
}

// Load returns the document for text.
func (l *Loader) Load(ctx context.Context, text string) Document {
	version := Version(text)
	// tokenize never fails, so the error is always nil
	tokens, _ := l.tokens.Get(ctx, version, text, tokenCacheTTL)
	return Document{Text: text, Version: version, Tokens: tokens}
}
