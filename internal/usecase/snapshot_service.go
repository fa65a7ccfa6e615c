package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/fplstats/fpl-stats/internal/domain/archive"
	"github.com/fplstats/fpl-stats/internal/domain/feed"
	"github.com/fplstats/fpl-stats/internal/platform/cache"
	"github.com/fplstats/fpl-stats/internal/platform/logging"
)

const snapshotCacheKey = "bootstrap-static"

type FeedClient interface {
	FetchBootstrap(ctx context.Context) ([]byte, error)
}

// SnapshotService owns the bootstrap-static lifecycle: fetch, validate,
// cache and (optionally) archive. A cached snapshot is served as-is until
// its TTL lapses; a snapshot that fails validation is never cached.
type SnapshotService struct {
	feedClient  FeedClient
	store       *cache.Store
	archiveRepo archive.Repository
	logger      *logging.Logger
	now         func() time.Time
}

func NewSnapshotService(
	feedClient FeedClient,
	store *cache.Store,
	archiveRepo archive.Repository,
	logger *logging.Logger,
) *SnapshotService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SnapshotService{
		feedClient:  feedClient,
		store:       store,
		archiveRepo: archiveRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// PipelineContext carries one snapshot plus the gameweek resolved against
// it, so every downstream read within a request agrees on both.
type PipelineContext struct {
	Snapshot        feed.Snapshot
	CurrentEvent    feed.Event
	HasCurrentEvent bool
}

// Snapshot returns the cached snapshot, loading from upstream on a miss.
// Concurrent misses collapse into a single upstream fetch.
func (s *SnapshotService) Snapshot(ctx context.Context) (feed.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.Snapshot")
	defer span.End()

	if s.feedClient == nil {
		return feed.Snapshot{}, fmt.Errorf("%w: feed client is not configured", ErrDependencyUnavailable)
	}

	value, err := s.store.GetOrLoad(ctx, snapshotCacheKey, s.load)
	if err != nil {
		return feed.Snapshot{}, err
	}

	snap, ok := value.(feed.Snapshot)
	if !ok {
		return feed.Snapshot{}, fmt.Errorf("unexpected cache payload type %T", value)
	}
	return snap, nil
}

// Refresh drops the cached snapshot and loads a fresh one. The stale
// snapshot stays untouched if the new fetch or validation fails.
func (s *SnapshotService) Refresh(ctx context.Context) (feed.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.Refresh")
	defer span.End()

	if s.feedClient == nil {
		return feed.Snapshot{}, fmt.Errorf("%w: feed client is not configured", ErrDependencyUnavailable)
	}

	value, err := s.load(ctx)
	if err != nil {
		return feed.Snapshot{}, err
	}
	snap := value.(feed.Snapshot)
	s.store.Set(ctx, snapshotCacheKey, snap)
	return snap, nil
}

// Pipeline resolves the snapshot together with its current gameweek.
func (s *SnapshotService) Pipeline(ctx context.Context) (PipelineContext, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.Pipeline")
	defer span.End()

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return PipelineContext{}, err
	}

	event, ok := snap.CurrentEvent(s.now())
	return PipelineContext{
		Snapshot:        snap,
		CurrentEvent:    event,
		HasCurrentEvent: ok,
	}, nil
}

func (s *SnapshotService) load(ctx context.Context) (any, error) {
	raw, err := s.feedClient.FetchBootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch bootstrap document: %w", err)
	}

	snap, err := feed.ParseSnapshot(raw)
	if err != nil {
		return nil, crerr.Mark(fmt.Errorf("validate bootstrap document: %w", err), ErrUpstreamSchema)
	}
	snap.FetchedAt = s.now().UTC()

	s.archiveSnapshot(ctx, snap, raw)
	return snap, nil
}

// archiveSnapshot is best-effort: a failed write is logged, never fatal.
func (s *SnapshotService) archiveSnapshot(ctx context.Context, snap feed.Snapshot, raw []byte) {
	if s.archiveRepo == nil {
		return
	}

	eventID := 0
	if event, ok := snap.CurrentEvent(s.now()); ok {
		eventID = event.ID
	}

	hash := sha256.Sum256(raw)
	item := archive.Payload{
		EventID:     eventID,
		PayloadJSON: string(raw),
		PayloadHash: hex.EncodeToString(hash[:]),
		FetchedAt:   snap.FetchedAt,
	}
	if err := s.archiveRepo.Upsert(ctx, item); err != nil {
		s.logger.WarnContext(ctx, "archive snapshot payload failed", "event_id", eventID, "error", err)
	}
}
