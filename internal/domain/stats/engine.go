package stats

import (
	"sort"

	"github.com/fplstats/fpl-stats/internal/domain/feed"
)

// Status exclusion names accepted in criteria, mapped to the feed's
// single-letter availability codes.
const (
	ExcludeInjured     = "injured"
	ExcludeUnavailable = "unavailable"
	ExcludeSuspended   = "suspended"
	ExcludeDoubtful    = "doubtful"
)

var exclusionStatusCodes = map[string]string{
	ExcludeInjured:     feed.StatusInjured,
	ExcludeUnavailable: feed.StatusUnavailable,
	ExcludeSuspended:   feed.StatusSuspended,
	ExcludeDoubtful:    feed.StatusDoubtful,
}

// StatusCodeForExclusion resolves an exclusion name to its feed status
// code; false for names outside the supported set.
func StatusCodeForExclusion(name string) (string, bool) {
	code, ok := exclusionStatusCodes[name]
	return code, ok
}

// Criteria is one AND-combined filter request. Position and team sets are
// literal: an empty set selects no rows, the whole universe must be
// spelled out. The price range is inclusive on both ends.
type Criteria struct {
	Positions       []string
	Teams           []string
	ExcludeStatuses []string
	MinPrice        float64
	MaxPrice        float64
}

type Summary struct {
	Count     int
	MeanPrice *float64
}

type Group struct {
	Position string
	Rows     []Row
	Summary  Summary
}

// Grouped is the engine output: per-position groups in display order,
// each with its summary. Empty groups stay representable.
type Grouped struct {
	Columns []string
	Groups  []Group
}

// Flatten concatenates the groups back into one table, preserving group
// order and in-group order.
func (g Grouped) Flatten() Table {
	var rows []Row
	for _, grp := range g.Groups {
		rows = append(rows, grp.Rows...)
	}
	return Table{Columns: g.Columns, Rows: rows}
}

// SortByValueDesc orders rows by descending value-efficiency. Rows whose
// value is not applicable sort after every applicable row. The sort is
// stable so equal values keep feed order.
func SortByValueDesc(t Table) Table {
	rows := append([]Row(nil), t.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Value, rows[j].Value
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a > *b
	})
	return Table{Columns: t.Columns, Rows: rows}
}

// Apply filters the table by the criteria and partitions the survivors by
// position. positionOrder fixes group sequence; criteria positions missing
// from it are appended in criteria order. Row order within groups is the
// table's order, so applying the same criteria to a flattened result is a
// no-op.
func Apply(t Table, positionOrder []string, c Criteria) Grouped {
	positionSet := stringSet(c.Positions)
	teamSet := stringSet(c.Teams)
	excluded := make(map[string]struct{}, len(c.ExcludeStatuses))
	for _, name := range c.ExcludeStatuses {
		if code, ok := StatusCodeForExclusion(name); ok {
			excluded[code] = struct{}{}
		}
	}

	byPosition := make(map[string][]Row, len(positionSet))
	for _, row := range t.Rows {
		if _, ok := positionSet[row.Position]; !ok {
			continue
		}
		if _, ok := teamSet[row.Team]; !ok {
			continue
		}
		if _, ok := excluded[row.Status]; ok {
			continue
		}
		if row.Price < c.MinPrice || row.Price > c.MaxPrice {
			continue
		}
		byPosition[row.Position] = append(byPosition[row.Position], row)
	}

	groups := make([]Group, 0, len(positionSet))
	seen := make(map[string]struct{}, len(positionSet))
	for _, name := range positionOrder {
		if _, ok := positionSet[name]; !ok {
			continue
		}
		seen[name] = struct{}{}
		groups = append(groups, newGroup(name, byPosition[name]))
	}
	for _, name := range c.Positions {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		groups = append(groups, newGroup(name, byPosition[name]))
	}

	return Grouped{Columns: t.Columns, Groups: groups}
}

func newGroup(position string, rows []Row) Group {
	return Group{
		Position: position,
		Rows:     rows,
		Summary: Summary{
			Count:     len(rows),
			MeanPrice: meanPrice(rows),
		},
	}
}

// meanPrice over zero rows is nil, not zero: an empty group has no mean.
func meanPrice(rows []Row) *float64 {
	if len(rows) == 0 {
		return nil
	}
	sum := 0.0
	for _, r := range rows {
		sum += r.Price
	}
	mean := sum / float64(len(rows))
	return &mean
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
