package manuscript

// IndexScene is the unit of text fed to the indexer. Callers (the
// persistence layer, import pipelines) supply already-validated scenes;
// the index never derives them itself.
type IndexScene struct {
	// ID is unique within one manuscript.
	ID string `json:"id"`

	// ChapterID associates the scene with its chapter.
	ChapterID string `json:"chapterId"`

	// Text is the scene body, relative to StartOffset.
	Text string `json:"text"`

	// StartOffset is the scene's absolute byte position within the
	// full manuscript.
	StartOffset uint64 `json:"startOffset"`
}

// Span is a half-open [Start, End) byte range within a snippet.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SearchHit is one matched scene, formatted for display.
type SearchHit struct {
	// SceneID identifies the matched scene.
	SceneID string `json:"sceneId"`

	// Offset is absolute within the manuscript: scene start plus the
	// local match position when the query text occurs literally,
	// otherwise the raw scene start.
	Offset uint64 `json:"offset"`

	// Snippet is a bounded excerpt of the scene text around the match.
	Snippet string `json:"snippet"`

	// Score is the engine's relevance score, passed through unmodified.
	Score float64 `json:"score"`

	// Highlights are spans within Snippet marking the matched query
	// text. Empty when the hit has no literal occurrence (fuzzy and
	// wildcard matches).
	Highlights []Span `json:"highlights"`
}
