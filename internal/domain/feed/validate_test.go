package feed

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const fixtureDoc = `{
	"events": [
		{"id": 1, "name": "Gameweek 1", "deadline_time": "2026-08-14T17:30:00Z", "is_current": false},
		{"id": 2, "name": "Gameweek 2", "deadline_time": "2026-08-21T17:30:00Z", "is_current": true}
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
		 "ep_this": "5.2", "ep_next": "5.5", "form": "6.1", "ict_index": "12.3",
		 "selected_by_percent": "45.2", "total_points": 24, "minutes": 270},
		{"id": 11, "first_name": "Emiliano", "second_name": "Martinez", "web_name": "Martinez",
		 "team": 2, "element_type": 1, "status": "i", "now_cost": 55,
		 "chance_of_playing_this_round": 25, "news": "Knee injury"}
	]
}`

func TestParseSnapshot_DecodesEveryRecord(t *testing.T) {
	snap, err := ParseSnapshot([]byte(fixtureDoc))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	if len(snap.Events) != 2 || len(snap.Teams) != 2 || len(snap.Positions) != 2 || len(snap.Players) != 2 {
		t.Fatalf("unexpected collection sizes: %d events, %d teams, %d positions, %d players",
			len(snap.Events), len(snap.Teams), len(snap.Positions), len(snap.Players))
	}

	saka := snap.Players[0]
	if saka.DisplayName() != "Bukayo Saka" {
		t.Fatalf("unexpected display name: %q", saka.DisplayName())
	}
	if saka.EPThis == nil || saka.EPThis.Float64() != 5.2 {
		t.Fatalf("expected ep_this to decode from numeric string, got %+v", saka.EPThis)
	}
	if saka.ICTIndex.Float64() != 12.3 {
		t.Fatalf("unexpected ict_index: %v", saka.ICTIndex)
	}

	deadline := time.Date(2026, 8, 14, 17, 30, 0, 0, time.UTC)
	if !snap.Events[0].DeadlineTime.Equal(deadline) {
		t.Fatalf("unexpected deadline: %v", snap.Events[0].DeadlineTime)
	}
}

func TestParseSnapshot_AbsentOptionalFieldsStayNil(t *testing.T) {
	snap, err := ParseSnapshot([]byte(fixtureDoc))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	martinez := snap.Players[1]
	if martinez.EPThis != nil {
		t.Fatalf("expected nil ep_this, got %v", *martinez.EPThis)
	}
	if martinez.SquadNumber != nil {
		t.Fatalf("expected nil squad_number")
	}
	if martinez.ChanceOfPlayingThisRound == nil || martinez.ChanceOfPlayingThisRound.Float64() != 25 {
		t.Fatalf("expected chance_of_playing_this_round=25, got %+v", martinez.ChanceOfPlayingThisRound)
	}
}

func TestParseSnapshot_RejectsWrongPrimitiveType(t *testing.T) {
	doc := strings.Replace(fixtureDoc, `"team": 2`, `"team": "two"`, 1)

	_, err := ParseSnapshot([]byte(doc))
	if err == nil {
		t.Fatal("expected validation error for non-numeric team id")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.EntityKind != "player" || verr.Index != 1 {
		t.Fatalf("unexpected error location: kind=%s index=%d", verr.EntityKind, verr.Index)
	}
}

func TestParseSnapshot_RejectsUnknownStatusCode(t *testing.T) {
	doc := strings.Replace(fixtureDoc, `"status": "i"`, `"status": "x"`, 1)

	_, err := ParseSnapshot([]byte(doc))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.EntityKind != "player" || verr.Index != 1 || verr.Field != "status" {
		t.Fatalf("unexpected error location: %+v", verr)
	}
}

func TestParseSnapshot_RejectsNonIncreasingEventIDs(t *testing.T) {
	doc := strings.Replace(fixtureDoc, `{"id": 2, "name": "Gameweek 2"`, `{"id": 1, "name": "Gameweek 2"`, 1)

	_, err := ParseSnapshot([]byte(doc))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.EntityKind != "event" || verr.Index != 1 {
		t.Fatalf("unexpected error location: %+v", verr)
	}
}

func TestParseSnapshot_RejectsMissingArrays(t *testing.T) {
	_, err := ParseSnapshot([]byte(`{"events": [], "teams": [], "elements": [], "element_types": []}`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.EntityKind != "document" {
		t.Fatalf("unexpected entity kind: %s", verr.EntityKind)
	}
}

func TestParseSnapshot_IgnoresUndocumentedFields(t *testing.T) {
	doc := strings.Replace(fixtureDoc, `"id": 10,`, `"id": 10, "brand_new_upstream_field": {"nested": true},`, 1)

	if _, err := ParseSnapshot([]byte(doc)); err != nil {
		t.Fatalf("unknown fields must be ignored, got %v", err)
	}
}

func TestDecimal_DecodesNumberAndString(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{`4.5`, 4.5},
		{`"4.5"`, 4.5},
		{`"0"`, 0},
		{`null`, 0},
		{`""`, 0},
	}
	for _, tc := range cases {
		var d Decimal
		if err := d.UnmarshalJSON([]byte(tc.raw)); err != nil {
			t.Fatalf("decode %s: %v", tc.raw, err)
		}
		if d.Float64() != tc.want {
			t.Fatalf("decode %s: got %v want %v", tc.raw, d.Float64(), tc.want)
		}
	}

	var d Decimal
	if err := d.UnmarshalJSON([]byte(`"abc"`)); err == nil {
		t.Fatal("expected error for non-numeric string")
	}
}
