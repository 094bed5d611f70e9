// Package watcher observes a manuscript scene file for changes so the
// CLI can reindex automatically. Rapid editor saves are debounced into
// a single event.
package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Operation represents a file system operation type.
type Operation int

const (
	// OpCreate indicates the watched file was created.
	OpCreate Operation = iota
	// OpModify indicates the watched file was modified.
	OpModify
	// OpDelete indicates the watched file was deleted or renamed away.
	OpDelete
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent represents a change to the watched file.
type FileEvent struct {
	Path      string
	Operation Operation
	Timestamp time.Time
}

// Options configures the watcher behavior.
type Options struct {
	// DebounceWindow is the time to wait before emitting coalesced events.
	// Default: 200ms
	DebounceWindow time.Duration

	// EventBufferSize is the size of the event channel buffer.
	// Default: 64
	EventBufferSize int
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  200 * time.Millisecond,
		EventBufferSize: 64,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow == 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	return o
}

// SceneFileWatcher watches a single file. The parent directory is
// registered with fsnotify so delete-and-recreate editor saves are
// still observed.
type SceneFileWatcher struct {
	opts      Options
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
	events    chan FileEvent
	errors    chan error
	stopCh    chan struct{}
}

// New creates a scene file watcher with the given options.
func New(opts Options) *SceneFileWatcher {
	opts = opts.WithDefaults()
	return &SceneFileWatcher{
		opts:      opts,
		debouncer: NewDebouncer(opts.DebounceWindow),
		events:    make(chan FileEvent, opts.EventBufferSize),
		errors:    make(chan error, 8),
		stopCh:    make(chan struct{}),
	}
}

// Start begins watching path. It blocks until the context is cancelled
// or Stop is called.
func (w *SceneFileWatcher) Start(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return err
	}

	defer func() {
		_ = fsw.Close()
		w.debouncer.Stop()
		close(w.events)
		close(w.errors)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if op, relevant := mapOp(ev.Op); relevant {
				w.debouncer.Add(FileEvent{
					Path:      abs,
					Operation: op,
					Timestamp: time.Now(),
				})
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			select {
			case w.errors <- err:
			default:
			}
		case ev, ok := <-w.debouncer.Output():
			if !ok {
				return nil
			}
			select {
			case w.events <- ev:
			default:
			}
		}
	}
}

// Stop stops the watcher. Safe to call once; further events are dropped.
func (w *SceneFileWatcher) Stop() {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
}

// Events returns the channel of debounced file events.
// The channel is closed when the watcher stops.
func (w *SceneFileWatcher) Events() <-chan FileEvent {
	return w.events
}

// Errors returns the channel of non-fatal watcher errors.
func (w *SceneFileWatcher) Errors() <-chan error {
	return w.errors
}

func mapOp(op fsnotify.Op) (Operation, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate, true
	case op.Has(fsnotify.Write):
		return OpModify, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return OpDelete, true
	default:
		return 0, false
	}
}
