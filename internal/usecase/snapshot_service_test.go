package usecase

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fplstats/fpl-stats/internal/domain/archive"
	"github.com/fplstats/fpl-stats/internal/domain/feed"
	"github.com/fplstats/fpl-stats/internal/platform/cache"
	"github.com/fplstats/fpl-stats/internal/platform/logging"
)

const bootstrapDoc = `{
	"events": [
		{"id": 1, "name": "Gameweek 1", "deadline_time": "2026-08-14T17:30:00Z"},
		{"id": 2, "name": "Gameweek 2", "deadline_time": "2026-08-21T17:30:00Z"}
	],
	"teams": [
		{"id": 1, "code": 3, "name": "Arsenal", "short_name": "ARS", "strength": 5},
		{"id": 2, "code": 7, "name": "Aston Villa", "short_name": "AVL", "strength": 4}
	],
	"element_types": [
		{"id": 1, "singular_name": "Goalkeeper", "plural_name": "Goalkeepers", "squad_select": 2, "squad_min_play": 1, "squad_max_play": 1},
		{"id": 3, "singular_name": "Midfielder", "plural_name": "Midfielders", "squad_select": 5, "squad_min_play": 2, "squad_max_play": 5}
	],
	"elements": [
		{"id": 10, "first_name": "Bukayo", "second_name": "Saka", "web_name": "Saka",
		 "team": 1, "element_type": 3, "status": "a", "now_cost": 102,
		 "cost_change_event": 1, "cost_change_start": 2,
		 "ep_this": "5.2", "ep_next": "5.5", "form": "6.1", "total_points": 24},
		{"id": 11, "first_name": "Emiliano", "second_name": "Martinez", "web_name": "Martinez",
		 "team": 2, "element_type": 1, "status": "i", "now_cost": 55,
		 "ep_next": "2.0", "total_points": 12}
	]
}`

// midSeason sits before both fixture deadlines, so gameweek 1 is current.
var midSeason = time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)

type fakeFeedClient struct {
	raw   []byte
	err   error
	calls atomic.Int32
}

func (f *fakeFeedClient) FetchBootstrap(context.Context) ([]byte, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.raw, nil
}

type fakeArchiveRepo struct {
	items []archive.Payload
	err   error
}

func (f *fakeArchiveRepo) Upsert(_ context.Context, item archive.Payload) error {
	if f.err != nil {
		return f.err
	}
	f.items = append(f.items, item)
	return nil
}

func (f *fakeArchiveRepo) Latest(context.Context) (archive.Payload, bool, error) {
	if len(f.items) == 0 {
		return archive.Payload{}, false, nil
	}
	return f.items[len(f.items)-1], true, nil
}

func newSnapshotFixture(doc string, now time.Time) (*SnapshotService, *fakeFeedClient) {
	client := &fakeFeedClient{raw: []byte(doc)}
	svc := NewSnapshotService(client, cache.NewStore(time.Hour), nil, logging.NewNop())
	svc.now = func() time.Time { return now }
	return svc, client
}

func TestSnapshotService_SnapshotIsCached(t *testing.T) {
	svc, client := newSnapshotFixture(bootstrapDoc, midSeason)

	first, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	second, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("second snapshot: %v", err)
	}

	if client.calls.Load() != 1 {
		t.Fatalf("expected one upstream fetch, got %d", client.calls.Load())
	}
	if len(first.Players) != 2 || len(second.Players) != 2 {
		t.Fatalf("unexpected player counts: %d, %d", len(first.Players), len(second.Players))
	}
}

func TestSnapshotService_InvalidDocumentIsNeverCached(t *testing.T) {
	broken := strings.Replace(bootstrapDoc, `"status": "i"`, `"status": "zz"`, 1)
	svc, client := newSnapshotFixture(broken, midSeason)

	for i := 0; i < 2; i++ {
		_, err := svc.Snapshot(context.Background())
		if !errors.Is(err, ErrUpstreamSchema) {
			t.Fatalf("call %d: expected upstream-schema error, got %v", i, err)
		}

		var verr *feed.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("call %d: expected *feed.ValidationError in chain, got %v", i, err)
		}
		if verr.EntityKind != "player" || verr.Field != "status" {
			t.Fatalf("unexpected validation detail: %+v", verr)
		}
	}

	if client.calls.Load() != 2 {
		t.Fatalf("rejected documents must not be cached, got %d fetches", client.calls.Load())
	}
}

func TestSnapshotService_RefreshBypassesCache(t *testing.T) {
	svc, client := newSnapshotFixture(bootstrapDoc, midSeason)

	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if _, err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if client.calls.Load() != 2 {
		t.Fatalf("expected refresh to refetch, got %d fetches", client.calls.Load())
	}

	// The refreshed snapshot replaces the cached one.
	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("snapshot after refresh: %v", err)
	}
	if client.calls.Load() != 2 {
		t.Fatalf("refresh must repopulate the cache, got %d fetches", client.calls.Load())
	}
}

func TestSnapshotService_ArchivesEachLoad(t *testing.T) {
	client := &fakeFeedClient{raw: []byte(bootstrapDoc)}
	repo := &fakeArchiveRepo{}
	svc := NewSnapshotService(client, cache.NewStore(time.Hour), repo, logging.NewNop())
	svc.now = func() time.Time { return midSeason }

	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if len(repo.items) != 1 {
		t.Fatalf("expected one archived payload, got %d", len(repo.items))
	}
	item := repo.items[0]
	if item.EventID != 1 {
		t.Fatalf("expected archive tagged with event 1, got %d", item.EventID)
	}
	if item.PayloadHash == "" || item.PayloadJSON == "" {
		t.Fatalf("expected payload and hash to be recorded: %+v", item)
	}
}

func TestSnapshotService_ArchiveFailureIsNotFatal(t *testing.T) {
	client := &fakeFeedClient{raw: []byte(bootstrapDoc)}
	repo := &fakeArchiveRepo{err: errors.New("db down")}
	svc := NewSnapshotService(client, cache.NewStore(time.Hour), repo, logging.NewNop())
	svc.now = func() time.Time { return midSeason }

	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("archive failures must not fail the load: %v", err)
	}
}

func TestSnapshotService_PipelineResolvesCurrentEvent(t *testing.T) {
	svc, _ := newSnapshotFixture(bootstrapDoc, midSeason)

	pc, err := svc.Pipeline(context.Background())
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	if !pc.HasCurrentEvent || pc.CurrentEvent.ID != 1 {
		t.Fatalf("expected gameweek 1 current, got %+v", pc.CurrentEvent)
	}
}

func TestSnapshotService_PipelineAfterFinalDeadline(t *testing.T) {
	seasonOver := time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := newSnapshotFixture(bootstrapDoc, seasonOver)

	pc, err := svc.Pipeline(context.Background())
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	if pc.HasCurrentEvent {
		t.Fatalf("expected no current event once every deadline passed, got %+v", pc.CurrentEvent)
	}
}
