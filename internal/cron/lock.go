package cron

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

const defaultLockStaleness = 2 * time.Hour

// Lock coordinates exclusive cron runs.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// FileLock implements Lock with a marker file next to the feed drop. The
// marker is shared with external tooling that writes the feed files, so the
// protocol is plain file presence plus an age cutoff: a fresh marker means
// another run is in progress, a stale one is treated as a crash leftover.
type FileLock struct {
	path      string
	staleness time.Duration
	held      bool
}

// NewFileLock constructs a filesystem-backed lock.
func NewFileLock(path string, staleness time.Duration) (*FileLock, error) {
	if path == "" {
		return nil, errors.New("lock path is required")
	}
	if staleness <= 0 {
		staleness = defaultLockStaleness
	}
	return &FileLock{path: path, staleness: staleness}, nil
}

// Acquire reports false when a fresh marker exists. A stale marker is removed
// before taking the lock.
func (l *FileLock) Acquire(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	info, err := os.Stat(l.path)
	switch {
	case err == nil:
		if time.Since(info.ModTime()) < l.staleness {
			return false, nil
		}
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return false, fmt.Errorf("remove stale lock: %w", err)
		}
	case !os.IsNotExist(err):
		return false, fmt.Errorf("stat lock: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("create lock: %w", err)
	}
	if err := file.Close(); err != nil {
		return false, fmt.Errorf("close lock: %w", err)
	}
	l.held = true
	return true, nil
}

// Release removes the marker if this instance holds it.
func (l *FileLock) Release(ctx context.Context) error {
	if !l.held {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete lock: %w", err)
	}
	l.held = false
	return nil
}
