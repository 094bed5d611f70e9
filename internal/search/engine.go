package search

import (
	"context"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/draftglass/inkdex/internal/store"
	"github.com/draftglass/inkdex/pkg/manuscript"
)

// Options tunes the search engine.
type Options struct {
	// DefaultLimit caps Search results when the caller passes no limit.
	DefaultLimit int
	// MentionLimit caps character-mention results.
	MentionLimit int
	// Fuzziness is the edit distance for plain query terms.
	Fuzziness int
	// Snippet bounds snippet extraction.
	Snippet SnippetOptions
	// Aliases resolves character nicknames.
	Aliases AliasTable
}

// DefaultOptions returns the standard engine tuning.
func DefaultOptions() Options {
	return Options{
		DefaultLimit: manuscript.DefaultSearchLimit,
		MentionLimit: 200,
		Fuzziness:    2,
		Snippet:      DefaultSnippetOptions(),
		Aliases:      DefaultAliases,
	}
}

// Engine executes composed queries against the scene index and formats
// the hits. It is the read half of the boundary contract.
type Engine struct {
	store    *store.SceneIndex
	composer *Composer
	opts     Options
}

// NewEngine creates an Engine over the given index handle.
func NewEngine(idx *store.SceneIndex, opts Options) *Engine {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = manuscript.DefaultSearchLimit
	}
	if opts.MentionLimit <= 0 {
		opts.MentionLimit = 200
	}
	if opts.Snippet.Radius <= 0 && opts.Snippet.Fallback <= 0 {
		opts.Snippet = DefaultSnippetOptions()
	}
	if opts.Aliases == nil {
		opts.Aliases = DefaultAliases
	}
	return &Engine{
		store:    idx,
		composer: NewComposer(opts.Fuzziness),
		opts:     opts,
	}
}

// Search composes and runs a combined phrase / wildcard / fuzzy query,
// returning up to limit hits ordered by score. An empty or
// whitespace-only query returns an empty list without error.
func (e *Engine) Search(ctx context.Context, rawQuery string, limit int) ([]manuscript.SearchHit, error) {
	if limit <= 0 {
		limit = e.opts.DefaultLimit
	}

	q, err := e.composer.Compose(rawQuery)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return []manuscript.SearchHit{}, nil
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = []string{store.FieldText, store.FieldChapterID, store.FieldOffset}

	res, err := e.store.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	return e.formatHits(res, rawQuery), nil
}

// FindCharacterMentions searches for a character by name, broadened to
// its alias variants, as one boolean-OR of prefix-locked fuzzy terms
// (edit distance 1). Multi-word variants like "mrs smith" require every
// word to appear. Hits are highlighted against the original name, not
// the variant that matched.
func (e *Engine) FindCharacterMentions(ctx context.Context, name string) ([]manuscript.SearchHit, error) {
	variants := e.opts.Aliases.Variants(name)
	if len(variants) == 0 {
		return []manuscript.SearchHit{}, nil
	}

	subqueries := make([]query.Query, 0, len(variants))
	for _, v := range variants {
		words := strings.Fields(strings.ToLower(v))
		terms := make([]query.Query, 0, len(words))
		for _, word := range words {
			fq := bleve.NewFuzzyQuery(word)
			fq.SetField(store.FieldText)
			fq.SetFuzziness(1)
			fq.SetPrefix(1)
			terms = append(terms, fq)
		}
		if len(terms) == 1 {
			subqueries = append(subqueries, terms[0])
		} else {
			subqueries = append(subqueries, bleve.NewConjunctionQuery(terms...))
		}
	}

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(subqueries...))
	req.Size = e.opts.MentionLimit
	req.Fields = []string{store.FieldText, store.FieldChapterID, store.FieldOffset}

	res, err := e.store.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	return e.formatHits(res, name), nil
}

// formatHits turns raw document matches into display hits. The hit
// offset is absolute: scene start plus the local match position when the
// query occurs literally, otherwise the raw scene start.
func (e *Engine) formatHits(res *bleve.SearchResult, rawQuery string) []manuscript.SearchHit {
	hits := make([]manuscript.SearchHit, 0, len(res.Hits))
	for _, docMatch := range res.Hits {
		text, _ := docMatch.Fields[store.FieldText].(string)

		var sceneStart uint64
		if off, ok := docMatch.Fields[store.FieldOffset].(float64); ok {
			sceneStart = uint64(off)
		}

		snippet, spans, matchPos := makeSnippet(text, rawQuery, e.opts.Snippet)

		abs := sceneStart
		if matchPos >= 0 {
			abs = sceneStart + uint64(matchPos)
		}

		hits = append(hits, manuscript.SearchHit{
			SceneID:    docMatch.ID,
			Offset:     abs,
			Snippet:    snippet,
			Score:      docMatch.Score,
			Highlights: spans,
		})
	}
	return hits
}

var _ manuscript.Searcher = (*Engine)(nil)
