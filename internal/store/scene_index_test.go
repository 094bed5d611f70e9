package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/blevesearch/bleve/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inkerrors "github.com/draftglass/inkdex/internal/errors"
)

func testDocs() []*SceneDocument {
	return []*SceneDocument{
		{
			ID:        "scene-1",
			Text:      "Robert walked into the garden and talked to Mary.",
			ChapterID: "ch-1",
			Offset:    0,
		},
		{
			ID:             "scene-2",
			Text:           "The quick brown fox jumped over the lazy dog.",
			ChapterID:      "ch-1",
			Offset:         50,
			CharacterNames: []string{"robert"},
		},
	}
}

func TestOpen_InMemory(t *testing.T) {
	// Given: no path

	// When: opening with an empty path
	idx, err := Open("")
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	// Then: the index is empty and has no on-disk path
	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
	assert.Empty(t, idx.Path())
}

func TestOpen_CreatesAndReopens(t *testing.T) {
	// Given: a fresh directory
	path := filepath.Join(t.TempDir(), "index")

	// When: opening, writing, closing, and reopening
	idx, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, idx.Replace(context.Background(), testDocs()))
	require.NoError(t, idx.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	// Then: the documents survive the reopen
	count, err := reopened.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestOpen_WipesOnMissingMetaMarker(t *testing.T) {
	// Given: an index directory whose metadata marker was removed
	path := filepath.Join(t.TempDir(), "index")
	idx, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, idx.Replace(context.Background(), testDocs()))
	require.NoError(t, idx.Close())

	require.NoError(t, os.Remove(filepath.Join(path, metaMarkerName)))

	// When: opening again
	recovered, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = recovered.Close() }()

	// Then: the corrupt index was wiped and recreated empty
	count, err := recovered.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestOpen_WipesOnCorruptMetaMarker(t *testing.T) {
	// Given: an index directory with a truncated metadata marker
	path := filepath.Join(t.TempDir(), "index")
	idx, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, idx.Replace(context.Background(), testDocs()))
	require.NoError(t, idx.Close())

	require.NoError(t, os.WriteFile(filepath.Join(path, metaMarkerName), []byte("{not json"), 0o644))

	// When: opening again
	recovered, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = recovered.Close() }()

	// Then: the index is empty but usable
	count, err := recovered.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
	require.NoError(t, recovered.Replace(context.Background(), testDocs()))
}

func TestReplace_DeleteThenAddIsIdempotent(t *testing.T) {
	// Given: an index with documents already committed
	idx, err := Open("")
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	require.NoError(t, idx.Replace(context.Background(), testDocs()))

	// When: replacing the same ids with new text
	docs := testDocs()
	docs[0].Text = "Robert stood alone on the cliff."
	require.NoError(t, idx.Replace(context.Background(), docs))

	// Then: the document count is unchanged and the new text wins
	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	q := bleve.NewMatchPhraseQuery("stood alone")
	q.SetField(FieldText)
	req := bleve.NewSearchRequest(q)
	res, err := idx.Search(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "scene-1", res.Hits[0].ID)
}

func TestReplace_EmptySceneIDRejected(t *testing.T) {
	// Given: a batch containing a document without an id
	idx, err := Open("")
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	docs := testDocs()
	docs[1].ID = ""

	// When: replacing
	err = idx.Replace(context.Background(), docs)

	// Then: the batch is rejected with a validation error
	require.Error(t, err)
	assert.Equal(t, inkerrors.ErrCodeInvalidScene, inkerrors.GetCode(err))

	// And: nothing was committed
	count, countErr := idx.DocCount()
	require.NoError(t, countErr)
	assert.Equal(t, uint64(0), count)
}

func TestReplace_EmptyBatchIsNoOp(t *testing.T) {
	// Given: an open index
	idx, err := Open("")
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	// When: replacing nothing
	// Then: no error
	require.NoError(t, idx.Replace(context.Background(), nil))
}

func TestReplace_CancelledContext(t *testing.T) {
	// Given: a cancelled context
	idx, err := Open("")
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// When: replacing
	err = idx.Replace(ctx, testDocs())

	// Then: the cancellation is surfaced
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearch_StoredFieldsComeBack(t *testing.T) {
	// Given: indexed documents
	idx, err := Open("")
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()
	require.NoError(t, idx.Replace(context.Background(), testDocs()))

	// When: searching with stored fields requested
	q := bleve.NewMatchPhraseQuery("quick brown fox")
	q.SetField(FieldText)
	req := bleve.NewSearchRequest(q)
	req.Fields = []string{FieldText, FieldChapterID, FieldOffset}
	res, err := idx.Search(context.Background(), req)
	require.NoError(t, err)

	// Then: text, chapter, and offset round-trip
	require.Len(t, res.Hits, 1)
	hit := res.Hits[0]
	assert.Equal(t, "scene-2", hit.ID)
	assert.Equal(t, "The quick brown fox jumped over the lazy dog.", hit.Fields[FieldText])
	assert.Equal(t, "ch-1", hit.Fields[FieldChapterID])
	assert.Equal(t, float64(50), hit.Fields[FieldOffset])
}

func TestClosedIndex_RejectsOperations(t *testing.T) {
	// Given: a closed index
	idx, err := Open("")
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	// When/Then: writes and reads fail cleanly
	err = idx.Replace(context.Background(), testDocs())
	require.Error(t, err)

	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	_, err = idx.Search(context.Background(), req)
	require.Error(t, err)

	_, err = idx.DocCount()
	require.Error(t, err)

	// And: closing again is safe
	require.NoError(t, idx.Close())
}

func TestWipe_RecreatesEmptyUsableIndex(t *testing.T) {
	// Given: a populated on-disk index
	path := filepath.Join(t.TempDir(), "index")
	idx, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()
	require.NoError(t, idx.Replace(context.Background(), testDocs()))

	// When: wiping
	require.NoError(t, idx.Wipe())

	// Then: the index is empty and accepts new writes
	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)

	require.NoError(t, idx.Replace(context.Background(), testDocs()))
	count, err = idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestKindOfBleveError_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want inkerrors.IndexKind
	}{
		{"nil", nil, inkerrors.KindNone},
		{"meta missing sentinel", bleve.ErrorIndexMetaMissing, inkerrors.KindMissing},
		{"path missing sentinel", bleve.ErrorIndexPathDoesNotExist, inkerrors.KindMissing},
		{"meta corrupt sentinel", bleve.ErrorIndexMetaCorrupt, inkerrors.KindCorrupt},
		{"segment load failure", errString("failed to load segment 12"), inkerrors.KindCorrupt},
		{"bolt failure", errString("error opening bolt store"), inkerrors.KindCorrupt},
		{"truncated json", errString("unexpected end of JSON input"), inkerrors.KindCorrupt},
		{"missing file", errString("open x: no such file or directory"), inkerrors.KindMissing},
		{"other io", errString("disk quota exceeded"), inkerrors.KindIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kindOfBleveError(tt.err))
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }
