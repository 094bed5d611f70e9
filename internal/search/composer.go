// Package search composes executable queries from raw query strings and
// formats matched documents into offset-accurate, highlighted hits.
package search

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	lru "github.com/hashicorp/golang-lru/v2"

	inkerrors "github.com/draftglass/inkdex/internal/errors"
	"github.com/draftglass/inkdex/internal/store"
)

// tokenKind classifies one query token.
type tokenKind int

const (
	// kindPhrase is a quoted token, matched as an exact contiguous
	// sequence of terms. Required.
	kindPhrase tokenKind = iota
	// kindWildcard contains * or ?. Required.
	kindWildcard
	// kindFuzzy is a plain term, matched within edit distance with the
	// first character locked. Optional.
	kindFuzzy
)

// classifiedToken is one token with its classification.
type classifiedToken struct {
	text string
	kind tokenKind
}

// DefaultComposerCacheSize bounds the token-classification cache.
const DefaultComposerCacheSize = 256

// Composer turns raw query strings into Bleve queries over the scene
// text field.
//
// Required/optional mixing is deliberate and kept for compatibility:
// phrase and wildcard tokens are required (AND) while plain terms are
// optional fuzzy matches (OR), so a multi-word plain query matches when
// any one word fuzzily matches. A stricter all-terms-required mode is a
// possible future opt-in, not current behavior.
type Composer struct {
	fuzziness int
	cache     *lru.Cache[string, []classifiedToken]
}

// NewComposer creates a Composer with the given fuzziness for plain
// terms (clamped to Bleve's 0-2 range).
func NewComposer(fuzziness int) *Composer {
	if fuzziness < 0 || fuzziness > 2 {
		fuzziness = 2
	}
	cache, _ := lru.New[string, []classifiedToken](DefaultComposerCacheSize)
	return &Composer{
		fuzziness: fuzziness,
		cache:     cache,
	}
}

// Compose builds the executable query for a raw query string. A nil
// query (with nil error) means the query had no tokens; callers return
// an empty hit list for it. A wildcard token without a single literal
// character is rejected with ERR_402_INVALID_QUERY.
func (c *Composer) Compose(raw string) (query.Query, error) {
	tokens := c.classify(raw)
	if len(tokens) == 0 {
		return nil, nil
	}

	subqueries := make([]query.Query, 0, len(tokens))
	required := make([]bool, 0, len(tokens))
	for _, tok := range tokens {
		switch tok.kind {
		case kindPhrase:
			q := bleve.NewMatchPhraseQuery(strings.Trim(tok.text, `"`))
			q.SetField(store.FieldText)
			subqueries = append(subqueries, q)
			required = append(required, true)
		case kindWildcard:
			// A token of only wildcard characters would scan every
			// term in the index.
			if strings.Trim(tok.text, "*?") == "" {
				return nil, inkerrors.New(inkerrors.ErrCodeInvalidQuery,
					fmt.Sprintf("wildcard %q needs at least one literal character", tok.text), nil)
			}
			// Wildcard terms bypass the analyzer; lowercase to
			// match indexed terms.
			q := bleve.NewWildcardQuery(strings.ToLower(tok.text))
			q.SetField(store.FieldText)
			subqueries = append(subqueries, q)
			required = append(required, true)
		default:
			q := bleve.NewFuzzyQuery(strings.ToLower(tok.text))
			q.SetField(store.FieldText)
			q.SetFuzziness(c.fuzziness)
			q.SetPrefix(1)
			subqueries = append(subqueries, q)
			required = append(required, false)
		}
	}

	if len(subqueries) == 1 {
		return subqueries[0], nil
	}

	boolean := bleve.NewBooleanQuery()
	for i, q := range subqueries {
		if required[i] {
			boolean.AddMust(q)
		} else {
			boolean.AddShould(q)
		}
	}
	return boolean, nil
}

// classify tokenizes and classifies a raw query, with an LRU cache in
// front since editors re-issue the same query while typing.
func (c *Composer) classify(raw string) []classifiedToken {
	key := strings.TrimSpace(raw)
	if key == "" {
		return nil
	}

	if cached, ok := c.cache.Get(key); ok {
		return cached
	}

	parts := splitQuery(raw)
	tokens := make([]classifiedToken, 0, len(parts))
	for _, part := range parts {
		tokens = append(tokens, classifiedToken{text: part, kind: classifyToken(part)})
	}

	c.cache.Add(key, tokens)
	return tokens
}

// classifyToken picks the subquery kind for one token.
func classifyToken(tok string) tokenKind {
	if strings.HasPrefix(tok, `"`) && strings.HasSuffix(tok, `"`) && len(tok) > 2 {
		return kindPhrase
	}
	if strings.ContainsAny(tok, "*?") {
		return kindWildcard
	}
	return kindFuzzy
}

// splitQuery splits on whitespace except inside double quotes; a quoted
// run is kept as one token, quotes included.
func splitQuery(raw string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false

	for _, r := range raw {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
			if !inQuote {
				out = append(out, cur.String())
				cur.Reset()
			}
		case unicode.IsSpace(r) && !inQuote:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}
