package manuscript

import "context"

// DefaultSearchLimit is the result cap applied when callers pass a
// non-positive limit to Search.
const DefaultSearchLimit = 50

// Indexer is the write half of the boundary contract.
//
// Implementations must be safe for concurrent use. All methods accept a
// context for cancellation; index commits themselves are synchronous and
// may block for the duration of disk I/O.
type Indexer interface {
	// IndexManuscript replaces the documents for every scene in the
	// batch. Re-indexing an existing scene ID fully replaces its
	// document; nothing becomes visible to readers until the whole
	// batch commits. A failure while building any document rejects the
	// entire batch.
	IndexManuscript(ctx context.Context, scenes []IndexScene) error
}

// Searcher is the read half of the boundary contract.
type Searcher interface {
	// Search runs a combined phrase / wildcard / fuzzy query against
	// scene text and returns up to limit hits ordered by score. An
	// empty or whitespace-only query returns an empty list, not an
	// error. A non-positive limit means DefaultSearchLimit.
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)

	// FindCharacterMentions searches for a character by name,
	// broadened with alias variants, and returns up to 200 hits.
	FindCharacterMentions(ctx context.Context, name string) ([]SearchHit, error)
}
