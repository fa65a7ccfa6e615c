package feed

import (
	"testing"
	"time"
)

func testEvents() []Event {
	return []Event{
		{ID: 1, Name: "Gameweek 1", DeadlineTime: time.Date(2026, 8, 14, 17, 30, 0, 0, time.UTC)},
		{ID: 2, Name: "Gameweek 2", DeadlineTime: time.Date(2026, 8, 21, 17, 30, 0, 0, time.UTC), IsCurrent: true},
		{ID: 3, Name: "Gameweek 3", DeadlineTime: time.Date(2026, 8, 28, 17, 30, 0, 0, time.UTC)},
	}
}

func TestCurrentEvent_PicksFirstFutureDeadline(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	e, ok := CurrentEvent(testEvents(), now)
	if !ok {
		t.Fatal("expected a current event")
	}
	if e.ID != 2 {
		t.Fatalf("expected event 2, got %d", e.ID)
	}
}

func TestCurrentEvent_DeadlineInstantIsNotFuture(t *testing.T) {
	// A deadline equal to now has passed; strictly-future only.
	now := time.Date(2026, 8, 21, 17, 30, 0, 0, time.UTC)

	e, ok := CurrentEvent(testEvents(), now)
	if !ok {
		t.Fatal("expected a current event")
	}
	if e.ID != 3 {
		t.Fatalf("expected event 3, got %d", e.ID)
	}
}

func TestCurrentEvent_IgnoresUpstreamIsCurrentFlag(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	e, ok := CurrentEvent(testEvents(), now)
	if !ok {
		t.Fatal("expected a current event")
	}
	if e.ID != 1 {
		t.Fatalf("resolution must be deadline-driven, got event %d", e.ID)
	}
}

func TestCurrentEvent_SeasonOver(t *testing.T) {
	now := time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)

	if _, ok := CurrentEvent(testEvents(), now); ok {
		t.Fatal("expected no current event after the last deadline")
	}
}

func TestSnapshot_CurrentEventAccessorsAgree(t *testing.T) {
	snap := Snapshot{Events: testEvents()}
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	e, ok := snap.CurrentEvent(now)
	if !ok {
		t.Fatal("expected a current event")
	}

	id, _ := snap.CurrentEventID(now)
	name, _ := snap.CurrentEventName(now)
	deadline, _ := snap.CurrentEventDeadline(now)

	if id != e.ID || name != e.Name || !deadline.Equal(e.DeadlineTime) {
		t.Fatalf("accessors disagree with CurrentEvent: id=%d name=%q deadline=%v", id, name, deadline)
	}
}
