package stats

import (
	"context"
	"log/slog"

	"github.com/wikistats/shorturls/internal/dumps"
	"github.com/wikistats/shorturls/internal/errx"
)

// Service exposes the aggregated dump statistics the web layer serves.
type Service interface {
	// Latest returns the most recent dump and its snapshot.
	Latest(ctx context.Context) (dumps.Dump, Snapshot, error)
	// Read returns the snapshot for one dump, computing and caching it on
	// first access.
	Read(ctx context.Context, d dumps.Dump) (Snapshot, error)
	// Trend returns the grand total per dump, in chronological order.
	Trend(ctx context.Context) ([]TrendPoint, error)
	// DomainTrend returns one domain's count per dump, in chronological
	// order, skipping dumps where the domain does not appear.
	DomainTrend(ctx context.Context, domain string) ([]TrendPoint, error)
}

// service implements the Service interface.
type service struct {
	dumpsDir string
	files    Store
	hot      Store // optional, nil when Redis is not configured
	logger   *slog.Logger
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	DumpsDir string
	Files    Store
	Hot      Store // optional hot cache in front of Files
	Logger   *slog.Logger
}

// NewService creates a new service instance.
func NewService(cfg ServiceConfig) Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &service{
		dumpsDir: cfg.DumpsDir,
		files:    cfg.Files,
		hot:      cfg.Hot,
		logger:   logger,
	}
}

func (s *service) Latest(ctx context.Context) (dumps.Dump, Snapshot, error) {
	const op = "stats.service.Latest"

	d, err := dumps.Latest(s.dumpsDir)
	if err != nil {
		return dumps.Dump{}, Snapshot{}, errx.E(op, errx.KindOf(err), err)
	}

	snap, err := s.Read(ctx, d)
	if err != nil {
		return dumps.Dump{}, Snapshot{}, err
	}
	return d, snap, nil
}

// Read serves the snapshot for d, checking the hot cache, then the file
// store, then computing from the raw dump. Cached entries are trusted on
// presence; only a schema version mismatch forces a rebuild. Exactly one
// file-store write happens on a miss and none on a hit.
func (s *service) Read(ctx context.Context, d dumps.Dump) (Snapshot, error) {
	const op = "stats.service.Read"

	key := CacheName(d)

	// Hot cache failures degrade to the file store rather than failing the
	// request; the original runs fine with Redis down.
	if s.hot != nil {
		snap, ok, err := s.hot.Get(ctx, key)
		if err != nil {
			s.logger.WarnContext(ctx, "hot cache read failed", "key", key, "error", err)
		} else if ok && snap.SchemaVersion == SchemaVersion {
			return snap, nil
		}
	}

	snap, ok, err := s.files.Get(ctx, key)
	if err != nil {
		return Snapshot{}, errx.E(op, errx.KindOf(err), err)
	}
	if ok && snap.SchemaVersion == SchemaVersion {
		s.fillHot(ctx, key, snap)
		return snap, nil
	}
	if ok {
		s.logger.InfoContext(ctx, "cache entry has stale schema, recomputing",
			"key", key,
			"cached_version", snap.SchemaVersion,
			"current_version", SchemaVersion,
		)
	}

	snap, err = Aggregate(d.Path)
	if err != nil {
		return Snapshot{}, errx.E(op, errx.KindOf(err), err)
	}

	if err := s.files.Put(ctx, key, snap); err != nil {
		return Snapshot{}, errx.E(op, errx.KindOf(err), err)
	}
	s.fillHot(ctx, key, snap)

	s.logger.InfoContext(ctx, "dump aggregated",
		"dump", d.Name(),
		"domains", len(snap.Stats),
		"total", snap.Total,
	)
	return snap, nil
}

func (s *service) Trend(ctx context.Context) ([]TrendPoint, error) {
	const op = "stats.service.Trend"

	all, err := dumps.List(s.dumpsDir)
	if err != nil {
		return nil, errx.E(op, errx.KindOf(err), err)
	}

	points := make([]TrendPoint, 0, len(all))
	for _, d := range all {
		snap, err := s.Read(ctx, d)
		if err != nil {
			return nil, err
		}
		points = append(points, TrendPoint{Date: d.Date, Count: snap.Total})
	}
	return points, nil
}

func (s *service) DomainTrend(ctx context.Context, domain string) ([]TrendPoint, error) {
	const op = "stats.service.DomainTrend"

	all, err := dumps.List(s.dumpsDir)
	if err != nil {
		return nil, errx.E(op, errx.KindOf(err), err)
	}

	points := make([]TrendPoint, 0, len(all))
	for _, d := range all {
		snap, err := s.Read(ctx, d)
		if err != nil {
			return nil, err
		}
		if count, ok := snap.Count(domain); ok {
			points = append(points, TrendPoint{Date: d.Date, Count: count})
		}
	}
	return points, nil
}

// fillHot backfills the hot cache, logging instead of failing when Redis is
// unreachable.
func (s *service) fillHot(ctx context.Context, key string, snap Snapshot) {
	if s.hot == nil {
		return
	}
	if err := s.hot.Put(ctx, key, snap); err != nil {
		s.logger.WarnContext(ctx, "hot cache write failed", "key", key, "error", err)
	}
}
