package cron

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileLock_AcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".importlock")
	lock, err := NewFileLock(path, 2*time.Hour)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	ok, err := lock.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !ok {
		t.Fatal("expected to acquire lock on empty directory")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected marker file: %v", err)
	}

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected marker file removed after release")
	}
}

func TestFileLock_FreshMarkerBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".importlock")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("seed marker: %v", err)
	}

	lock, err := NewFileLock(path, 2*time.Hour)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	ok, err := lock.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if ok {
		t.Fatal("expected fresh marker to block acquisition")
	}

	// Release must not touch a marker owned by someone else.
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal("expected foreign marker to survive release")
	}
}

func TestFileLock_StaleMarkerReclaimed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".importlock")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("seed marker: %v", err)
	}
	old := time.Now().Add(-3 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("age marker: %v", err)
	}

	lock, err := NewFileLock(path, 2*time.Hour)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}

	ok, err := lock.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !ok {
		t.Fatal("expected stale marker to be reclaimed")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected fresh marker: %v", err)
	}
	if time.Since(info.ModTime()) > time.Minute {
		t.Fatal("expected marker to be recreated with current mtime")
	}
}

func TestNewFileLock_Validation(t *testing.T) {
	if _, err := NewFileLock("", time.Hour); err == nil {
		t.Fatal("expected error for empty path")
	}
}
