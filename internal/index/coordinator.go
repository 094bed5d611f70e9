// Package index builds scene documents and drives batch writes into the
// store, including the write path's corruption recovery.
package index

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	inkerrors "github.com/draftglass/inkdex/internal/errors"
	"github.com/draftglass/inkdex/internal/store"
	"github.com/draftglass/inkdex/pkg/manuscript"
)

// Coordinator is the incremental indexer: it turns scene batches into
// documents (running character extraction) and commits them through the
// store as a single replace batch.
type Coordinator struct {
	store     *store.SceneIndex
	extractor NameExtractor
}

// NewCoordinator creates a Coordinator over the given index handle.
// A nil extractor falls back to the default capitalized-run heuristic.
func NewCoordinator(idx *store.SceneIndex, extractor NameExtractor) *Coordinator {
	if extractor == nil {
		extractor = NewCapitalizedRunExtractor(3)
	}
	return &Coordinator{
		store:     idx,
		extractor: extractor,
	}
}

// IndexManuscript upserts the scene batch: every supplied id is deleted
// and re-added, one commit for the whole batch. Calling this twice with
// the same scene id is idempotent in content (the latest text wins) but
// not in cost: each call is a full delete and re-add per id.
//
// If the commit fails with a recoverable kind (corrupt, missing), the
// index directory is wiped, recreated empty, and the batch is retried
// exactly once. A busy index is not recovered: the lock holder is a
// live writer, so the error surfaces to the caller. Only the write path
// recovers: a read can never repair the index, a write always can.
func (c *Coordinator) IndexManuscript(ctx context.Context, scenes []manuscript.IndexScene) error {
	if len(scenes) == 0 {
		return nil
	}

	docs, err := c.buildDocuments(ctx, scenes)
	if err != nil {
		// No partial state: the batch is rejected wholesale.
		return err
	}

	err = c.store.Replace(ctx, docs)
	if err == nil {
		return nil
	}

	kind := inkerrors.KindOf(err)
	if !kind.Recoverable() {
		return err
	}

	slog.Warn("index_write_failed_recovering",
		slog.String("kind", kind.String()),
		slog.String("error", err.Error()))

	if wipeErr := c.store.Wipe(); wipeErr != nil {
		return wipeErr
	}

	if retryErr := c.store.Replace(ctx, docs); retryErr != nil {
		// The retry gets no second chance; surface it.
		return retryErr
	}

	slog.Info("index_recovered", slog.Int("scenes", len(scenes)))
	return nil
}

// buildDocuments constructs one document per scene, fanning the
// character extraction out across CPUs. Output order matches input.
func (c *Coordinator) buildDocuments(ctx context.Context, scenes []manuscript.IndexScene) ([]*store.SceneDocument, error) {
	docs := make([]*store.SceneDocument, len(scenes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, scene := range scenes {
		i, scene := i, scene
		if scene.ID == "" {
			return nil, inkerrors.New(inkerrors.ErrCodeInvalidScene,
				"scene id must not be empty", nil)
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs[i] = &store.SceneDocument{
				ID:             scene.ID,
				Text:           scene.Text,
				ChapterID:      scene.ChapterID,
				Offset:         scene.StartOffset,
				CharacterNames: c.extractor.Extract(scene.Text),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

var _ manuscript.Indexer = (*Coordinator)(nil)
