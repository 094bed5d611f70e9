package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/blevesearch/bleve/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inkerrors "github.com/draftglass/inkdex/internal/errors"
	"github.com/draftglass/inkdex/internal/store"
	"github.com/draftglass/inkdex/pkg/manuscript"
)

func testScenes() []manuscript.IndexScene {
	return []manuscript.IndexScene{
		{
			ID:          "scene-1",
			ChapterID:   "ch-1",
			Text:        "Robert walked into the garden.",
			StartOffset: 0,
		},
		{
			ID:          "scene-2",
			ChapterID:   "ch-1",
			Text:        "Mary waited by the gate until dusk.",
			StartOffset: 31,
		},
	}
}

func newTestCoordinator(t *testing.T) (*Coordinator, *store.SceneIndex) {
	t.Helper()
	idx, err := store.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return NewCoordinator(idx, nil), idx
}

func TestIndexManuscript_IndexesAllScenes(t *testing.T) {
	// Given: a batch of scenes
	c, idx := newTestCoordinator(t)

	// When: indexing
	require.NoError(t, c.IndexManuscript(context.Background(), testScenes()))

	// Then: every scene is a document
	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestIndexManuscript_ReindexKeepsCountStable(t *testing.T) {
	// Given: an already indexed batch
	c, idx := newTestCoordinator(t)
	require.NoError(t, c.IndexManuscript(context.Background(), testScenes()))

	// When: indexing the same ids again with changed text
	scenes := testScenes()
	scenes[0].Text = "Robert never came back to the garden."
	require.NoError(t, c.IndexManuscript(context.Background(), scenes))

	// Then: the count is unchanged and the latest text wins
	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	q := bleve.NewMatchPhraseQuery("never came back")
	q.SetField(store.FieldText)
	res, err := idx.Search(context.Background(), bleve.NewSearchRequest(q))
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "scene-1", res.Hits[0].ID)
}

func TestIndexManuscript_EmptyBatchIsNoOp(t *testing.T) {
	// Given: no scenes
	c, idx := newTestCoordinator(t)

	// When: indexing nothing
	require.NoError(t, c.IndexManuscript(context.Background(), nil))

	// Then: the index stays empty
	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndexManuscript_EmptySceneIDRejectsWholeBatch(t *testing.T) {
	// Given: a batch where one scene has no id
	c, idx := newTestCoordinator(t)

	scenes := testScenes()
	scenes[1].ID = ""

	// When: indexing
	err := c.IndexManuscript(context.Background(), scenes)

	// Then: the batch is rejected wholesale
	require.Error(t, err)
	assert.Equal(t, inkerrors.ErrCodeInvalidScene, inkerrors.GetCode(err))

	count, countErr := idx.DocCount()
	require.NoError(t, countErr)
	assert.Equal(t, uint64(0), count)
}

func TestIndexManuscript_ExtractsCharacterNames(t *testing.T) {
	// Given: scenes mentioning characters
	c, idx := newTestCoordinator(t)
	require.NoError(t, c.IndexManuscript(context.Background(), testScenes()))

	// When: searching the character names field
	q := bleve.NewTermQuery("robert")
	q.SetField(store.FieldCharacterNames)
	res, err := idx.Search(context.Background(), bleve.NewSearchRequest(q))
	require.NoError(t, err)

	// Then: the scene mentioning Robert matches
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "scene-1", res.Hits[0].ID)
}

func TestIndexManuscript_HeldWriteLockSurfacesBusyWithoutDataLoss(t *testing.T) {
	// Given: an on-disk index with one committed scene
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "index")

	idx, err := store.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	c := NewCoordinator(idx, nil)
	require.NoError(t, c.IndexManuscript(ctx, testScenes()[:1]))

	// And: another writer holding the index write lock
	other := store.NewWriteLock(dir)
	acquired, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, acquired)
	t.Cleanup(func() { _ = other.Unlock() })

	// When: indexing while the lock is held
	err = c.IndexManuscript(ctx, testScenes()[1:])

	// Then: the busy error surfaces instead of triggering recovery
	require.Error(t, err)
	assert.Equal(t, inkerrors.ErrCodeIndexBusy, inkerrors.GetCode(err))

	// And: the committed scene survives untouched
	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	q := bleve.NewMatchPhraseQuery("walked into the garden")
	q.SetField(store.FieldText)
	res, err := idx.Search(ctx, bleve.NewSearchRequest(q))
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "scene-1", res.Hits[0].ID)
}

func TestIndexManuscript_CancelledContext(t *testing.T) {
	// Given: a cancelled context
	c, _ := newTestCoordinator(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// When: indexing
	err := c.IndexManuscript(ctx, testScenes())

	// Then: the cancellation is surfaced
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
