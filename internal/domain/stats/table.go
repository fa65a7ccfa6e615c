package stats

import "time"

// Row is one normalized player line. The typed key fields drive filtering
// and sorting; Cells carry the projected display values aligned with
// Table.Columns.
type Row struct {
	PlayerID int
	Name     string
	Position string
	Team     string
	Status   string
	Price    float64
	Trend    PriceTrend
	Value    *float64

	Cells []any
}

// Table is an ordered projection of the snapshot's players.
type Table struct {
	Columns []string
	Rows    []Row
}

// View parameterizes the projection: field selection, display renames and
// the timezone deadlines are presented in. Zero values fall back to the
// defaults.
type View struct {
	Fields           []string
	Renames          map[string]string
	ExtraFields      []string
	DeadlineLocation *time.Location
}

func (v View) Location() *time.Location {
	if v.DeadlineLocation != nil {
		return v.DeadlineLocation
	}
	return time.UTC
}
