package stats

import (
	"context"

	"github.com/wikistats/shorturls/internal/dumps"
)

// Store persists computed snapshots keyed by cache-entry name.
//
// Get reports a miss (false, nil error) for absent entries; errors are
// reserved for entries that exist but cannot be read. Put overwrites
// unconditionally: source dumps are immutable, so any two writers of the
// same key are writing identical content and the race is benign.
type Store interface {
	Get(ctx context.Context, key string) (Snapshot, bool, error)
	Put(ctx context.Context, key string, snap Snapshot) error
}

// CacheName derives the cache-store key for a dump. Pure; the 1:1 mapping
// between dump filenames and keys is what makes the never-invalidated cache
// correct.
func CacheName(d dumps.Dump) string {
	return d.Name() + ".json"
}
