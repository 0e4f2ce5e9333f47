// Package dumps locates the shortener's published dump files on disk.
//
// Dumps are immutable gzip archives named shorturls-YYYYMMDD.gz, published
// periodically by an external producer. The embedded date makes lexicographic
// filename order equal chronological order, so no stat calls are needed to
// sort them.
package dumps

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/wikistats/shorturls/internal/errx"
)

const (
	// Prefix and Suffix bracket the 8-digit date in every dump filename.
	Prefix = "shorturls-"
	Suffix = ".gz"

	dateFormat = "20060102"
)

// Dump is a handle to one published dump file.
type Dump struct {
	Path string
	Date time.Time
}

// Name returns the dump's base filename, e.g. "shorturls-20190101.gz".
func (d Dump) Name() string {
	return filepath.Base(d.Path)
}

// List enumerates the dump files in dir in ascending chronological order.
// An empty slice (no error) is returned when the directory holds no dumps.
// A file matching the naming glob but carrying a malformed date fails the
// whole listing.
func List(dir string) ([]Dump, error) {
	const op = "dumps.List"

	matches, err := filepath.Glob(filepath.Join(dir, Prefix+"*"+Suffix))
	if err != nil {
		return nil, errx.E(op, errx.Internal, err)
	}
	sort.Strings(matches)

	out := make([]Dump, 0, len(matches))
	for _, path := range matches {
		d, err := parse(path)
		if err != nil {
			return nil, errx.E(op, errx.Invalid, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// Latest returns the most recent dump in dir. It fails with a NotFound error
// when no dumps have been published; the service cannot render anything
// meaningful in that state and callers surface it as-is.
func Latest(dir string) (Dump, error) {
	const op = "dumps.Latest"

	all, err := List(dir)
	if err != nil {
		return Dump{}, err
	}
	if len(all) == 0 {
		return Dump{}, errx.E(op, errx.NotFound, errors.New("no dumps published"))
	}
	return all[len(all)-1], nil
}

// parse extracts the date embedded between Prefix and Suffix.
func parse(path string) (Dump, error) {
	name := filepath.Base(path)
	datePart := name[len(Prefix) : len(name)-len(Suffix)]

	date, err := time.Parse(dateFormat, datePart)
	if err != nil {
		return Dump{}, fmt.Errorf("dump %q: bad date %q: %w", name, datePart, err)
	}
	return Dump{Path: path, Date: date}, nil
}
