package stats

import "sort"

// HistoryRow is one line of a per-gameweek historical sheet, already
// normalized: Team carries the short name and Stats aligns with the
// sheet's StatColumns.
type HistoryRow struct {
	Name     string
	Position string
	Team     string
	Stats    []string
}

// HistorySheet is one parsed gameweek of historical stats.
type HistorySheet struct {
	StatColumns []string
	Rows        []HistoryRow
}

type JoinedRow struct {
	Row     Row
	History []string
}

// JoinResult is a left join of the normalized table against a historical
// sheet, keyed by player display name. Nothing is fuzzy-matched: names
// shared by more than one snapshot player land in Ambiguous and their
// rows are withheld; history rows without a snapshot counterpart land in
// Unmatched. Rows without history keep a nil History slice.
type JoinResult struct {
	TableColumns   []string
	HistoryColumns []string
	Rows           []JoinedRow
	Unmatched      []string
	Ambiguous      []string
}

func Join(t Table, sheet HistorySheet) JoinResult {
	nameCounts := make(map[string]int, len(t.Rows))
	for _, row := range t.Rows {
		nameCounts[row.Name]++
	}

	var ambiguous []string
	for name, count := range nameCounts {
		if count > 1 {
			ambiguous = append(ambiguous, name)
		}
	}
	sort.Strings(ambiguous)

	historyByName := make(map[string]HistoryRow, len(sheet.Rows))
	for _, hr := range sheet.Rows {
		historyByName[hr.Name] = hr
	}

	result := JoinResult{
		TableColumns:   t.Columns,
		HistoryColumns: sheet.StatColumns,
		Rows:           make([]JoinedRow, 0, len(t.Rows)),
		Ambiguous:      ambiguous,
	}

	joinedNames := make(map[string]struct{}, len(t.Rows))
	for _, row := range t.Rows {
		if nameCounts[row.Name] > 1 {
			continue
		}
		joinedNames[row.Name] = struct{}{}
		joined := JoinedRow{Row: row}
		if hr, ok := historyByName[row.Name]; ok {
			joined.History = hr.Stats
		}
		result.Rows = append(result.Rows, joined)
	}

	var unmatched []string
	for _, hr := range sheet.Rows {
		if _, ok := joinedNames[hr.Name]; !ok {
			unmatched = append(unmatched, hr.Name)
		}
	}
	sort.Strings(unmatched)
	result.Unmatched = unmatched

	return result
}
