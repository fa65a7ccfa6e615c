package feed

import "time"

// CurrentEvent resolves the active gameweek: the event with the smallest
// id whose deadline is strictly in the future relative to now (UTC). The
// upstream is_current flag is ignored; it can lag the wall clock around
// deadline boundaries. Returns false once every deadline has passed.
func CurrentEvent(events []Event, now time.Time) (Event, bool) {
	now = now.UTC()
	best := -1
	for i, e := range events {
		if !e.DeadlineTime.After(now) {
			continue
		}
		if best == -1 || e.ID < events[best].ID {
			best = i
		}
	}
	if best == -1 {
		return Event{}, false
	}
	return events[best], true
}

// CurrentEvent delegates to the package-level resolver so the id, name
// and deadline accessors below can never disagree with each other.
func (s Snapshot) CurrentEvent(now time.Time) (Event, bool) {
	return CurrentEvent(s.Events, now)
}

func (s Snapshot) CurrentEventID(now time.Time) (int, bool) {
	e, ok := s.CurrentEvent(now)
	return e.ID, ok
}

func (s Snapshot) CurrentEventName(now time.Time) (string, bool) {
	e, ok := s.CurrentEvent(now)
	return e.Name, ok
}

func (s Snapshot) CurrentEventDeadline(now time.Time) (time.Time, bool) {
	e, ok := s.CurrentEvent(now)
	return e.DeadlineTime, ok
}
