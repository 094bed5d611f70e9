package async

import (
	"context"
	"sync"

	"github.com/google/uuid"

	inkerrors "github.com/draftglass/inkdex/internal/errors"
	"github.com/draftglass/inkdex/pkg/manuscript"
)

// BackgroundIndexer runs one indexing job at a time in a background
// goroutine, relaying progress and lifecycle events to consumers while
// the synchronous index commit happens off the caller's path.
type BackgroundIndexer struct {
	indexer manuscript.Indexer

	mu       sync.Mutex
	running  bool
	jobID    string
	progress *Progress
	emitter  *emitter
	doneCh   chan struct{}
	err      error
}

// NewBackgroundIndexer wraps a synchronous indexer.
func NewBackgroundIndexer(indexer manuscript.Indexer) *BackgroundIndexer {
	return &BackgroundIndexer{indexer: indexer}
}

// IsRunning returns true while a job is in flight.
func (b *BackgroundIndexer) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// Progress returns the current job's progress tracker, or nil if no job
// has started.
func (b *BackgroundIndexer) Progress() *Progress {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.progress
}

// Start launches an indexing job for the scene batch and returns its job
// id and event channel. The channel is closed when the job finishes.
// Starting while a job is running returns a busy error.
func (b *BackgroundIndexer) Start(ctx context.Context, scenes []manuscript.IndexScene) (string, <-chan Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return "", nil, inkerrors.New(inkerrors.ErrCodeIndexBusy,
			"an indexing job is already running", nil)
	}

	jobID := uuid.NewString()
	b.running = true
	b.jobID = jobID
	b.progress = NewProgress(jobID)
	b.emitter = newEmitter(jobID, 64)
	b.doneCh = make(chan struct{})
	b.err = nil

	go b.run(ctx, scenes)

	return jobID, b.emitter.events, nil
}

// Wait blocks until the current job completes and returns its error.
// Returns nil immediately if no job was started.
func (b *BackgroundIndexer) Wait() error {
	b.mu.Lock()
	done := b.doneCh
	b.mu.Unlock()

	if done == nil {
		return nil
	}
	<-done

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *BackgroundIndexer) run(ctx context.Context, scenes []manuscript.IndexScene) {
	progress, emit := b.progress, b.emitter

	defer func() {
		emit.close()
		b.mu.Lock()
		b.running = false
		close(b.doneCh)
		b.mu.Unlock()
	}()

	emit.log("starting index job")
	progress.SetStage(StageLoading, len(scenes))
	emit.progress(5, string(StageLoading))

	progress.SetStage(StageExtracting, len(scenes))
	emit.progress(25, string(StageExtracting))

	// Extraction and commit are one call; the indexer owns batching
	// and recovery.
	progress.SetStage(StageIndexing, len(scenes))
	emit.progress(50, string(StageIndexing))

	if err := b.indexer.IndexManuscript(ctx, scenes); err != nil {
		progress.SetError(err.Error())
		emit.error(err.Error(), inkerrors.GetCode(err))

		b.mu.Lock()
		b.err = err
		b.mu.Unlock()
		return
	}

	progress.UpdateScenes(len(scenes))
	progress.SetReady()
	emit.progress(100, "complete")
	emit.done()
}
