package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	lockFileName   = "dmscreen.lock"
	lockTimeout    = 500 * time.Millisecond
	lockBackoffMin = 5 * time.Millisecond
	lockBackoffMax = 50 * time.Millisecond
)

// fileLock serializes writers across processes sharing one data directory.
// The OS drops the lock if the holding process dies.
type fileLock struct {
	path string
	f    *os.File
}

func newFileLock(dataDir string) *fileLock {
	return &fileLock{path: filepath.Join(dataDir, lockFileName)}
}

// acquire polls for the lock with capped exponential backoff until timeout
func (l *fileLock) acquire(timeout time.Duration) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	l.f = f

	deadline := time.Now().Add(timeout)
	wait := lockBackoffMin
	for {
		if err := l.tryLock(); err == nil {
			l.stamp()
			return nil
		}
		if time.Now().After(deadline) {
			owner := l.owner()
			l.f.Close()
			l.f = nil
			return fmt.Errorf("write lock timeout after %v (held by %s)", timeout, owner)
		}
		time.Sleep(wait)
		wait = min(wait*2, lockBackoffMax)
	}
}

func (l *fileLock) release() {
	if l.f == nil {
		return
	}
	l.f.Truncate(0)
	l.unlock()
	l.f.Close()
	l.f = nil
}

// stamp records the holder pid so a timed-out waiter can report it
func (l *fileLock) stamp() {
	l.f.Truncate(0)
	l.f.Seek(0, 0)
	fmt.Fprintf(l.f, "%d %s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339))
	l.f.Sync()
}

func (l *fileLock) owner() string {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return "unknown"
	}
	parts := strings.Fields(string(data))
	if len(parts) < 2 {
		return "unknown"
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil {
		return "unknown"
	}
	if !processAlive(pid) {
		return fmt.Sprintf("pid %d since %s, stale", pid, parts[1])
	}
	return fmt.Sprintf("pid %d since %s", pid, parts[1])
}
