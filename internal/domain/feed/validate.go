package feed

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"
)

// ValidationError rejects a whole snapshot over one bad record: entity
// kind, array index, offending field where known, and the reason.
type ValidationError struct {
	EntityKind string
	Index      int
	Field      string
	Reason     string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.EntityKind, e.Reason)
	}
	if e.Field == "" {
		return fmt.Sprintf("%s[%d]: %s", e.EntityKind, e.Index, e.Reason)
	}
	return fmt.Sprintf("%s[%d].%s: %s", e.EntityKind, e.Index, e.Field, e.Reason)
}

func fieldError(field, reason string) *ValidationError {
	return &ValidationError{Index: -1, Field: field, Reason: reason}
}

func (e *ValidationError) at(kind string, index int) *ValidationError {
	e.EntityKind = kind
	e.Index = index
	return e
}

type rawDocument struct {
	Events    []json.RawMessage `json:"events"`
	Teams     []json.RawMessage `json:"teams"`
	Players   []json.RawMessage `json:"elements"`
	Positions []json.RawMessage `json:"element_types"`
}

// ParseSnapshot decodes and validates a bootstrap-static document.
// Validation is all-or-nothing: the first invalid record aborts with a
// *ValidationError and no partial snapshot escapes. Fields the model does
// not declare are ignored.
func ParseSnapshot(doc []byte) (Snapshot, error) {
	var raw rawDocument
	if err := sonic.Unmarshal(doc, &raw); err != nil {
		return Snapshot{}, &ValidationError{EntityKind: "document", Index: -1, Reason: err.Error()}
	}
	if len(raw.Events) == 0 {
		return Snapshot{}, &ValidationError{EntityKind: "document", Index: -1, Field: "events", Reason: "array is missing or empty"}
	}
	if len(raw.Teams) == 0 {
		return Snapshot{}, &ValidationError{EntityKind: "document", Index: -1, Field: "teams", Reason: "array is missing or empty"}
	}
	if len(raw.Players) == 0 {
		return Snapshot{}, &ValidationError{EntityKind: "document", Index: -1, Field: "elements", Reason: "array is missing or empty"}
	}
	if len(raw.Positions) == 0 {
		return Snapshot{}, &ValidationError{EntityKind: "document", Index: -1, Field: "element_types", Reason: "array is missing or empty"}
	}

	snapshot := Snapshot{
		Events:    make([]Event, 0, len(raw.Events)),
		Teams:     make([]Team, 0, len(raw.Teams)),
		Players:   make([]Player, 0, len(raw.Players)),
		Positions: make([]Position, 0, len(raw.Positions)),
	}

	lastEventID := 0
	for i, msg := range raw.Events {
		var e Event
		if err := sonic.Unmarshal(msg, &e); err != nil {
			return Snapshot{}, decodeError("event", i, err)
		}
		if verr := e.Validate(); verr != nil {
			return Snapshot{}, verr.at("event", i)
		}
		if e.ID <= lastEventID {
			return Snapshot{}, fieldError("id", "must be strictly increasing").at("event", i)
		}
		lastEventID = e.ID
		snapshot.Events = append(snapshot.Events, e)
	}
	if snapshot.Events[0].ID != 1 {
		return Snapshot{}, fieldError("id", "sequence must start at 1").at("event", 0)
	}

	teamIDs := make(map[int]struct{}, len(raw.Teams))
	for i, msg := range raw.Teams {
		var t Team
		if err := sonic.Unmarshal(msg, &t); err != nil {
			return Snapshot{}, decodeError("team", i, err)
		}
		if verr := t.Validate(); verr != nil {
			return Snapshot{}, verr.at("team", i)
		}
		if _, dup := teamIDs[t.ID]; dup {
			return Snapshot{}, fieldError("id", fmt.Sprintf("duplicate id %d", t.ID)).at("team", i)
		}
		teamIDs[t.ID] = struct{}{}
		snapshot.Teams = append(snapshot.Teams, t)
	}

	positionIDs := make(map[int]struct{}, len(raw.Positions))
	for i, msg := range raw.Positions {
		var p Position
		if err := sonic.Unmarshal(msg, &p); err != nil {
			return Snapshot{}, decodeError("position", i, err)
		}
		if verr := p.Validate(); verr != nil {
			return Snapshot{}, verr.at("position", i)
		}
		if _, dup := positionIDs[p.ID]; dup {
			return Snapshot{}, fieldError("id", fmt.Sprintf("duplicate id %d", p.ID)).at("position", i)
		}
		positionIDs[p.ID] = struct{}{}
		snapshot.Positions = append(snapshot.Positions, p)
	}

	playerIDs := make(map[int]struct{}, len(raw.Players))
	for i, msg := range raw.Players {
		var p Player
		if err := sonic.Unmarshal(msg, &p); err != nil {
			return Snapshot{}, decodeError("player", i, err)
		}
		if verr := p.Validate(); verr != nil {
			return Snapshot{}, verr.at("player", i)
		}
		if _, dup := playerIDs[p.ID]; dup {
			return Snapshot{}, fieldError("id", fmt.Sprintf("duplicate id %d", p.ID)).at("player", i)
		}
		playerIDs[p.ID] = struct{}{}
		snapshot.Players = append(snapshot.Players, p)
	}

	return snapshot, nil
}

func decodeError(kind string, index int, err error) *ValidationError {
	return &ValidationError{EntityKind: kind, Index: index, Reason: err.Error()}
}
