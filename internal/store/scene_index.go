package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"

	inkerrors "github.com/draftglass/inkdex/internal/errors"
)

// metaMarkerName is the Bleve metadata marker whose presence signals
// "index exists, safe to open".
const metaMarkerName = "index_meta.json"

// SceneIndex is the process-wide handle to one manuscript's inverted
// index. Reads share the handle concurrently; writes are exclusive and
// additionally guarded by a cross-process file lock.
//
// Construct one SceneIndex per manuscript at startup and pass it into
// every component that needs index access.
type SceneIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	lock   *WriteLock
	closed bool
}

// Open opens the index at path, creating it from the scene schema when
// the metadata marker is absent. A corrupt index is wiped and recreated
// empty. An empty path creates an in-memory index for tests.
//
// Directory creation failure is fatal and surfaced directly.
func Open(path string) (*SceneIndex, error) {
	m, err := buildIndexMapping()
	if err != nil {
		return nil, inkerrors.InternalError("failed to build index mapping", err)
	}

	if path == "" {
		idx, err := bleve.NewMemOnly(m)
		if err != nil {
			return nil, inkerrors.IndexError(inkerrors.KindIO, "failed to create in-memory index", err)
		}
		return &SceneIndex{index: idx}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, inkerrors.IndexError(inkerrors.KindIO,
			fmt.Sprintf("cannot create index parent directory %s", filepath.Dir(path)), err)
	}

	// Validate the metadata marker before handing the directory to
	// Bleve; a bad marker means a half-written or killed index.
	if validErr := validateIntegrity(path); validErr != nil {
		slog.Warn("scene_index_corrupted",
			slog.String("path", path),
			slog.String("error", validErr.Error()))

		if removeErr := os.RemoveAll(path); removeErr != nil {
			return nil, inkerrors.IndexError(inkerrors.KindIO,
				fmt.Sprintf("corrupt index at %s cannot be removed", path), removeErr)
		}
		slog.Info("scene_index_cleared",
			slog.String("path", path),
			slog.String("reason", "corruption detected, reindex required"))
	}

	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, m)
	} else if err != nil && kindOfBleveError(err).Recoverable() {
		slog.Warn("scene_index_open_failed",
			slog.String("path", path),
			slog.String("error", err.Error()))

		if removeErr := os.RemoveAll(path); removeErr != nil {
			return nil, inkerrors.IndexError(inkerrors.KindIO,
				fmt.Sprintf("corrupt index at %s cannot be removed", path), removeErr)
		}
		idx, err = bleve.New(path, m)
	}
	if err != nil {
		return nil, inkerrors.IndexError(kindOfBleveError(err),
			fmt.Sprintf("failed to open index at %s", path), err)
	}

	return &SceneIndex{
		index: idx,
		path:  path,
		lock:  NewWriteLock(path),
	}, nil
}

// Replace atomically swaps in the given documents: every document's ID is
// deleted, then re-added, in one batch with one commit. Nothing is
// visible to readers until the batch succeeds; Bleve's next read snapshot
// observes the new data.
//
// The write lock is held only for the batch execution, not for document
// construction, so slow extraction work never blocks readers.
func (s *SceneIndex) Replace(ctx context.Context, docs []*SceneDocument) error {
	if len(docs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return inkerrors.IndexError(inkerrors.KindIO, "index is closed", nil)
	}

	if s.lock != nil {
		acquired, err := s.lock.TryLock()
		if err != nil {
			return inkerrors.IndexError(inkerrors.KindIO, "cannot acquire index write lock", err)
		}
		if !acquired {
			return inkerrors.IndexError(inkerrors.KindBusy,
				"another process is writing to the index", nil).
				WithDetail("lock", s.lock.Path())
		}
		defer func() { _ = s.lock.Unlock() }()
	}

	batch := s.index.NewBatch()
	for _, doc := range docs {
		if doc.ID == "" {
			return inkerrors.New(inkerrors.ErrCodeInvalidScene, "scene id must not be empty", nil)
		}
		// Delete-then-add, independent of whether the id exists.
		batch.Delete(doc.ID)
		if err := batch.Index(doc.ID, doc); err != nil {
			return inkerrors.New(inkerrors.ErrCodeIndexFailed,
				fmt.Sprintf("failed to index scene %s", doc.ID), err)
		}
	}

	if err := s.index.Batch(batch); err != nil {
		return inkerrors.IndexError(kindOfBleveError(err), "index commit failed", err)
	}

	return nil
}

// Search executes a prepared request against the current read snapshot.
// Reads never trigger recovery; only the write path repairs the index.
func (s *SceneIndex) Search(ctx context.Context, req *bleve.SearchRequest) (*bleve.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, inkerrors.IndexError(inkerrors.KindIO, "index is closed", nil)
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, inkerrors.New(inkerrors.ErrCodeSearchFailed, "search failed", err)
	}
	return res, nil
}

// DocCount returns the number of indexed scenes.
func (s *SceneIndex) DocCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, inkerrors.IndexError(inkerrors.KindIO, "index is closed", nil)
	}
	return s.index.DocCount()
}

// Stats returns index statistics.
func (s *SceneIndex) Stats() IndexStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return IndexStats{Path: s.path}
	}

	count, _ := s.index.DocCount()
	return IndexStats{
		DocumentCount: int(count),
		Path:          s.path,
	}
}

// Path returns the on-disk index directory, empty for in-memory indexes.
func (s *SceneIndex) Path() string {
	return s.path
}

// Wipe deletes the entire index directory and recreates it empty. This
// is the recovery primitive: the index carries no unrecoverable state,
// so corruption of any flavor is answered by a full rebuild.
func (s *SceneIndex) Wipe() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil && !s.closed {
		_ = s.index.Close()
	}

	m, err := buildIndexMapping()
	if err != nil {
		return inkerrors.InternalError("failed to build index mapping", err)
	}

	var idx bleve.Index
	if s.path == "" {
		idx, err = bleve.NewMemOnly(m)
	} else {
		if removeErr := os.RemoveAll(s.path); removeErr != nil {
			return inkerrors.IndexError(inkerrors.KindIO,
				fmt.Sprintf("cannot remove index directory %s", s.path), removeErr)
		}
		idx, err = bleve.New(s.path, m)
	}
	if err != nil {
		return inkerrors.IndexError(inkerrors.KindIO, "failed to recreate index", err)
	}

	slog.Info("scene_index_wiped", slog.String("path", s.path))

	s.index = idx
	s.closed = false
	return nil
}

// Close closes the index. Safe to call multiple times.
func (s *SceneIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.index != nil {
		return s.index.Close()
	}
	return nil
}

// validateIntegrity checks the metadata marker before opening.
// Returns nil when the index is absent (it will be created) or valid.
func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	metaPath := filepath.Join(path, metaMarkerName)
	info, err := os.Stat(metaPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s missing (incomplete index)", metaMarkerName)
	}
	if err != nil {
		return fmt.Errorf("cannot stat %s: %w", metaMarkerName, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s is empty", metaMarkerName)
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", metaMarkerName, err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("%s is corrupt: %w", metaMarkerName, err)
	}

	return nil
}

// kindOfBleveError classifies a raw Bleve error into the closed set of
// index failure kinds. Typed Bleve sentinels are matched first; the
// substring checks cover corruption modes Bleve only reports as opaque
// wrapped errors.
func kindOfBleveError(err error) inkerrors.IndexKind {
	if err == nil {
		return inkerrors.KindNone
	}
	switch err {
	case bleve.ErrorIndexMetaMissing, bleve.ErrorIndexPathDoesNotExist:
		return inkerrors.KindMissing
	case bleve.ErrorIndexMetaCorrupt:
		return inkerrors.KindCorrupt
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "failed to load segment"),
		strings.Contains(msg, "error opening bolt"),
		strings.Contains(msg, "unexpected end of JSON"),
		strings.Contains(msg, "error parsing mapping JSON"):
		return inkerrors.KindCorrupt
	case strings.Contains(msg, "no such file or directory"):
		return inkerrors.KindMissing
	default:
		return inkerrors.KindIO
	}
}
