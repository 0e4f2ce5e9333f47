package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wikistats/shorturls/internal/errx"
)

// FileStore is the authoritative cache: one JSON file per processed dump in
// a flat directory. Entries are never invalidated or evicted, which is
// correct only because source dumps are immutable once published.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed snapshot store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Get reads the snapshot stored under key. Absent files are a miss, not an
// error.
func (s *FileStore) Get(ctx context.Context, key string) (Snapshot, bool, error) {
	const op = "stats.FileStore.Get"

	raw, err := os.ReadFile(filepath.Join(s.dir, key))
	if os.IsNotExist(err) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, errx.E(op, errx.Internal, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, false, errx.E(op, errx.Internal, fmt.Errorf("%s: %w", key, err))
	}
	return snap, true, nil
}

// Put writes the snapshot under key, creating the cache directory on first
// use. No locking: concurrent writers of the same key produce identical
// bytes.
func (s *FileStore) Put(ctx context.Context, key string, snap Snapshot) error {
	const op = "stats.FileStore.Put"

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errx.E(op, errx.Internal, err)
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return errx.E(op, errx.Internal, err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, key), raw, 0o644); err != nil {
		return errx.E(op, errx.Internal, err)
	}
	return nil
}
