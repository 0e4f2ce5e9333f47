package stats

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/wikistats/shorturls/internal/errx"
)

// Aggregate decompresses the dump file at path and tallies shortened URLs by
// the host[:port] of their target.
//
// Each line is "<shortcode>|<target-url>". The short code is discarded. A
// line without the separator fails the whole read; there is no
// skip-and-continue policy, a malformed dump is a publisher bug and partial
// numbers would be worse than no numbers. Targets whose URL does not parse
// are tallied under the degenerate empty-host key rather than dropped, so
// the total always equals the line count.
func Aggregate(path string) (Snapshot, error) {
	const op = "stats.Aggregate"

	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, errx.E(op, errx.Internal, err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return Snapshot{}, errx.E(op, errx.Internal, fmt.Errorf("%s: %w", path, err))
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return Snapshot{}, errx.E(op, errx.Internal, fmt.Errorf("%s: %w", path, err))
	}

	counts := make(map[string]int64)
	for i, line := range strings.Split(string(raw), "\n") {
		if line == "" {
			continue
		}

		_, target, found := strings.Cut(line, "|")
		if !found {
			return Snapshot{}, errx.E(op, errx.Invalid,
				fmt.Errorf("%s: line %d: missing '|' separator", path, i+1))
		}

		host := ""
		if u, err := url.Parse(target); err == nil {
			host = u.Host
		}
		counts[host]++
	}

	return build(counts), nil
}

// build turns the raw tally into a sorted Snapshot.
func build(counts map[string]int64) Snapshot {
	entries := make([]DomainCount, 0, len(counts))
	var total int64
	for domain, count := range counts {
		entries = append(entries, DomainCount{Domain: domain, Count: count})
		total += count
	}

	// Descending by count; domain name breaks ties so repeated runs over the
	// same dump always produce identical snapshots.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Domain < entries[j].Domain
	})

	return Snapshot{
		SchemaVersion: SchemaVersion,
		Stats:         entries,
		Total:         total,
	}
}
