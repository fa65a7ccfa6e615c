package feed

import "testing"

func TestLookup_KnownAndUnknownIDs(t *testing.T) {
	snap := Snapshot{
		Teams:     []Team{{ID: 1, Name: "Arsenal", ShortName: "ARS"}},
		Positions: []Position{{ID: 3, SingularName: "Midfielder", PluralName: "Midfielders"}},
		Players:   []Player{{ID: 10, WebName: "Saka", Team: 1, ElementType: 3, Status: StatusAvailable}},
	}
	lk := NewLookup(snap)

	if name, ok := lk.TeamNameByID(1); !ok || name != "Arsenal" {
		t.Fatalf("unexpected team lookup: %q %v", name, ok)
	}
	if short, ok := lk.TeamShortNameByID(1); !ok || short != "ARS" {
		t.Fatalf("unexpected short name lookup: %q %v", short, ok)
	}
	if name, ok := lk.PositionPluralNameByID(3); !ok || name != "Midfielders" {
		t.Fatalf("unexpected position lookup: %q %v", name, ok)
	}
	if p, ok := lk.PlayerByID(10); !ok || p.WebName != "Saka" {
		t.Fatalf("unexpected player lookup: %+v %v", p, ok)
	}

	// Unknown ids are absent, not errors.
	if _, ok := lk.TeamNameByID(99); ok {
		t.Fatal("expected unknown team id to be absent")
	}
	if _, ok := lk.PositionSingularNameByID(99); ok {
		t.Fatal("expected unknown position id to be absent")
	}
	if _, ok := lk.PlayerByID(99); ok {
		t.Fatal("expected unknown player id to be absent")
	}
}
