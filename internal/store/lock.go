package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// WriteLock provides cross-process exclusion for index writes using
// gofrs/flock. Two inkdex processes pointed at the same manuscript must
// not commit concurrently; in-process exclusion is handled separately by
// the SceneIndex mutex.
type WriteLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewWriteLock creates a write lock for the given index directory.
// The lock file is created at <dir>/.write.lock.
func NewWriteLock(dir string) *WriteLock {
	lockPath := filepath.Join(dir, ".write.lock")
	return &WriteLock{
		path:  lockPath,
		flock: flock.New(lockPath),
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false if another process holds it.
func (l *WriteLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire write lock: %w", err)
	}

	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Unlock releases the lock. Safe to call on an unlocked WriteLock.
func (l *WriteLock) Unlock() error {
	if !l.locked {
		return nil
	}

	if err := l.flock.Unlock(); err != nil {
		l.locked = false
		return fmt.Errorf("failed to release write lock: %w", err)
	}

	l.locked = false
	return nil
}

// Path returns the lock file path.
func (l *WriteLock) Path() string {
	return l.path
}
