package stats

import (
	"reflect"
	"testing"
)

func TestJoin_MatchesByDisplayName(t *testing.T) {
	table := Table{
		Columns: []string{"Price"},
		Rows: []Row{
			{PlayerID: 1, Name: "Bukayo Saka", Position: "Midfielders", Cells: []any{10.2}},
			{PlayerID: 2, Name: "Emiliano Martinez", Position: "Goalkeepers", Cells: []any{5.5}},
		},
	}
	sheet := HistorySheet{
		StatColumns: []string{"team", "total_points", "minutes"},
		Rows: []HistoryRow{
			{Name: "Bukayo Saka", Position: "MID", Team: "ARS", Stats: []string{"ARS", "12", "90"}},
		},
	}

	got := Join(table, sheet)
	if len(got.Rows) != 2 {
		t.Fatalf("expected 2 joined rows, got %d", len(got.Rows))
	}
	if !reflect.DeepEqual(got.Rows[0].History, []string{"ARS", "12", "90"}) {
		t.Fatalf("unexpected history cells: %v", got.Rows[0].History)
	}
	if got.Rows[1].History != nil {
		t.Fatalf("expected nil history for unmatched table row, got %v", got.Rows[1].History)
	}
	if len(got.Unmatched) != 0 || len(got.Ambiguous) != 0 {
		t.Fatalf("expected clean join, got unmatched=%v ambiguous=%v", got.Unmatched, got.Ambiguous)
	}
}

func TestJoin_ReportsUnmatchedHistoryRows(t *testing.T) {
	table := Table{Rows: []Row{{PlayerID: 1, Name: "Bukayo Saka"}}}
	sheet := HistorySheet{Rows: []HistoryRow{
		{Name: "Bukayo Saka"},
		{Name: "Departed Player"},
	}}

	got := Join(table, sheet)
	if !reflect.DeepEqual(got.Unmatched, []string{"Departed Player"}) {
		t.Fatalf("unexpected unmatched: %v", got.Unmatched)
	}
}

func TestJoin_AmbiguousNamesAreWithheld(t *testing.T) {
	table := Table{Rows: []Row{
		{PlayerID: 1, Name: "John Smith"},
		{PlayerID: 2, Name: "John Smith"},
		{PlayerID: 3, Name: "Bukayo Saka"},
	}}
	sheet := HistorySheet{Rows: []HistoryRow{{Name: "John Smith", Stats: []string{"7"}}}}

	got := Join(table, sheet)
	if !reflect.DeepEqual(got.Ambiguous, []string{"John Smith"}) {
		t.Fatalf("unexpected ambiguous: %v", got.Ambiguous)
	}
	if len(got.Rows) != 1 || got.Rows[0].Row.PlayerID != 3 {
		t.Fatalf("ambiguous rows must be withheld from the join, got %v", got.Rows)
	}
	// The history row keyed by an ambiguous name matched nothing.
	if !reflect.DeepEqual(got.Unmatched, []string{"John Smith"}) {
		t.Fatalf("unexpected unmatched: %v", got.Unmatched)
	}
}

func TestTeamAbbreviation(t *testing.T) {
	if abbr, ok := TeamAbbreviation("Nott'm Forest"); !ok || abbr != "NFO" {
		t.Fatalf("unexpected abbreviation: %q %v", abbr, ok)
	}
	if _, ok := TeamAbbreviation("Narnia FC"); ok {
		t.Fatal("expected unknown club to be rejected")
	}
}
