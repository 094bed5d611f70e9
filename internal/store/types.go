// Package store wraps Bleve v2 as the on-disk inverted index over
// manuscript scenes. It owns the schema, the index lifecycle (open,
// create, wipe-on-corruption), and mediates concurrent access behind a
// reader/writer lock. The index is a derived cache: it can always be
// rebuilt from the caller's scene list, so recovery is wipe and re-add.
package store

// Indexed field names. Scene ID is the Bleve document ID, not a field.
const (
	FieldText           = "text"
	FieldChapterID      = "chapter_id"
	FieldOffset         = "offset"
	FieldCharacterNames = "character_names"
)

// SceneDocument is the indexable form of one scene. The JSON tags are the
// field names Bleve maps; ID is excluded and becomes the document ID.
type SceneDocument struct {
	ID             string   `json:"-"`
	Text           string   `json:"text"`
	ChapterID      string   `json:"chapter_id"`
	Offset         uint64   `json:"offset"`
	CharacterNames []string `json:"character_names"`
}

// IndexStats holds statistics about the scene index.
type IndexStats struct {
	// DocumentCount is the number of indexed scenes.
	DocumentCount int
	// Path is the on-disk location, empty for in-memory indexes.
	Path string
}
