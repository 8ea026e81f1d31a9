package loader

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
)

// ArtifactSource fetches the raw serialized index artifact blob. It is the
// only pluggable backend surface the Index Loader exposes: how the bytes
// got there (local disk, an object store, a cache) is none of the
// Classifier's concern.
type ArtifactSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FileSource reads the artifact from a local path, taking a shared
// advisory lock so a concurrent writer (e.g. a deploy step rewriting the
// file in place) cannot be read mid-write.
type FileSource struct {
	path        string
	lockTimeout time.Duration
}

// NewFileSource creates a FileSource. lockTimeout bounds how long Fetch
// waits to acquire the read lock before giving up; zero means 5 seconds.
func NewFileSource(path string, lockTimeout time.Duration) *FileSource {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &FileSource{path: path, lockTimeout: lockTimeout}
}

// Fetch reads the artifact file under a shared lock.
func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	l := flock.New(s.path + ".lock")

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	locked, err := l.TryRLockContext(lockCtx, 50*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("acquire read lock on %s: %w", s.path, err)
	}
	if !locked {
		return nil, fmt.Errorf("timed out acquiring read lock on %s", s.path)
	}
	defer func() { _ = l.Unlock() }()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", s.path, err)
	}
	return data, nil
}
