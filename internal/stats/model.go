package stats

import "time"

// SchemaVersion tags persisted snapshots. Cached entries with a different
// version are treated as absent and recomputed from the dump, so a format
// change never silently misreads old cache files.
const SchemaVersion = 1

// DomainCount is one row of a snapshot: how many shortened URLs target the
// given domain (the host[:port] of the parsed target URL).
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int64  `json:"count"`
}

// Snapshot is the computed per-domain summary of one dump file.
//
// The total lives in its own field rather than as a reserved key inside the
// domain mapping, so a real domain literally named "total" can never corrupt
// it. Stats are sorted descending by count with the domain name as a
// deterministic tiebreak.
//
// Snapshots are computed once per dump and immutable afterwards; the source
// dumps are never republished or appended to.
type Snapshot struct {
	SchemaVersion int           `json:"schema_version"`
	Stats         []DomainCount `json:"stats"`
	Total         int64         `json:"total"`
}

// Count returns the count for one domain and whether the domain appears in
// the snapshot at all.
func (s Snapshot) Count(domain string) (int64, bool) {
	for _, dc := range s.Stats {
		if dc.Domain == domain {
			return dc.Count, true
		}
	}
	return 0, false
}

// TrendPoint is one chart datapoint: the count recorded by the dump
// published on Date.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Count int64     `json:"count"`
}
