package stats

import (
	"fmt"
	"sort"

	"github.com/fplstats/fpl-stats/internal/domain/feed"
)

// UnknownFieldError reports a projection field no extractor covers. This
// is a programmer error: it fails the request loudly instead of dropping
// the column.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown projection field %q", e.Field)
}

type rowData struct {
	player   feed.Player
	team     string
	position string
	price    float64
	trend    PriceTrend
	value    *float64
}

var fieldExtractors = map[string]func(rowData) any{
	"price_change": func(d rowData) any { return string(d.trend) },
	"element_type": func(d rowData) any { return d.position },
	"team":         func(d rowData) any { return d.team },
	"status":       func(d rowData) any { return d.player.Status },
	"price":        func(d rowData) any { return d.price },
	"value":        func(d rowData) any { return optFloat(d.value) },

	"ep_this": func(d rowData) any { return optDecimal(d.player.EPThis) },
	"ep_next": func(d rowData) any { return d.player.EPNext.Float64() },

	"form":            func(d rowData) any { return d.player.Form.Float64() },
	"points_per_game": func(d rowData) any { return d.player.PointsPerGame.Float64() },
	"value_form":      func(d rowData) any { return d.player.ValueForm.Float64() },
	"value_season":    func(d rowData) any { return d.player.ValueSeason.Float64() },

	"total_points": func(d rowData) any { return d.player.TotalPoints },
	"event_points": func(d rowData) any { return d.player.EventPoints },

	"minutes":          func(d rowData) any { return d.player.Minutes },
	"goals_scored":     func(d rowData) any { return d.player.GoalsScored },
	"assists":          func(d rowData) any { return d.player.Assists },
	"clean_sheets":     func(d rowData) any { return d.player.CleanSheets },
	"goals_conceded":   func(d rowData) any { return d.player.GoalsConceded },
	"own_goals":        func(d rowData) any { return d.player.OwnGoals },
	"penalties_saved":  func(d rowData) any { return d.player.PenaltiesSaved },
	"penalties_missed": func(d rowData) any { return d.player.PenaltiesMissed },
	"yellow_cards":     func(d rowData) any { return d.player.YellowCards },
	"red_cards":        func(d rowData) any { return d.player.RedCards },
	"saves":            func(d rowData) any { return d.player.Saves },
	"starts":           func(d rowData) any { return d.player.Starts },
	"bonus":            func(d rowData) any { return d.player.Bonus },
	"bps":              func(d rowData) any { return d.player.BPS },

	"influence":  func(d rowData) any { return d.player.Influence.Float64() },
	"creativity": func(d rowData) any { return d.player.Creativity.Float64() },
	"threat":     func(d rowData) any { return d.player.Threat.Float64() },
	"ict_index":  func(d rowData) any { return d.player.ICTIndex.Float64() },

	"expected_goals":             func(d rowData) any { return d.player.ExpectedGoals.Float64() },
	"expected_assists":           func(d rowData) any { return d.player.ExpectedAssists.Float64() },
	"expected_goal_involvements": func(d rowData) any { return d.player.ExpectedGoalInvolvements.Float64() },
	"expected_goals_conceded":    func(d rowData) any { return d.player.ExpectedGoalsConceded.Float64() },

	"selected_by_percent": func(d rowData) any { return d.player.SelectedByPercent.Float64() },
	"transfers_in":        func(d rowData) any { return d.player.TransfersIn },
	"transfers_out":       func(d rowData) any { return d.player.TransfersOut },
	"transfers_in_event":  func(d rowData) any { return d.player.TransfersInEvent },
	"transfers_out_event": func(d rowData) any { return d.player.TransfersOutEvent },

	"dreamteam_count": func(d rowData) any { return d.player.DreamteamCount },
	"in_dreamteam":    func(d rowData) any { return d.player.InDreamteam },
	"news":            func(d rowData) any { return d.player.News },

	"corners_and_indirect_freekicks_order": func(d rowData) any { return optInt(d.player.CornersAndIndirectFreekicksOrder) },
	"direct_freekicks_order":               func(d rowData) any { return optInt(d.player.DirectFreekicksOrder) },
	"penalties_order":                      func(d rowData) any { return optInt(d.player.PenaltiesOrder) },
}

// DefaultFields mirrors the normalized stats sheet: the derived columns
// first, then the kept upstream columns. Identity and rank noise are
// dropped.
func DefaultFields() []string {
	return []string{
		"price_change",
		"element_type",
		"team",
		"status",
		"price",
		"value",
		"ep_this",
		"ep_next",
		"form",
		"points_per_game",
		"total_points",
		"event_points",
		"minutes",
		"goals_scored",
		"assists",
		"clean_sheets",
		"goals_conceded",
		"own_goals",
		"penalties_saved",
		"penalties_missed",
		"yellow_cards",
		"red_cards",
		"saves",
		"starts",
		"bonus",
		"bps",
		"influence",
		"creativity",
		"threat",
		"ict_index",
		"expected_goals",
		"expected_assists",
		"expected_goal_involvements",
		"expected_goals_conceded",
		"selected_by_percent",
		"value_form",
		"value_season",
		"transfers_in",
		"transfers_out",
		"transfers_in_event",
		"transfers_out_event",
		"dreamteam_count",
		"in_dreamteam",
		"news",
	}
}

// DefaultRenames maps source field names to their display labels; fields
// without an entry keep their source name.
func DefaultRenames() map[string]string {
	return map[string]string{
		"price_change":    "Price Change",
		"element_type":    "POS",
		"team":            "Team",
		"status":          "Status",
		"price":           "Price",
		"value":           "Value",
		"ep_this":         "xPoint This GW",
		"ep_next":         "xPoint Next GW",
		"dreamteam_count": "No. Dream Team Entry",
		"in_dreamteam":    "Dream Team Last Week?",
	}
}

// KnownFields lists every projectable field name, sorted.
func KnownFields() []string {
	out := make([]string, 0, len(fieldExtractors))
	for name := range fieldExtractors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// BuildTable derives and projects the snapshot's players into a Table.
// Field order is preserved; renames apply per the view; unknown fields
// abort with *UnknownFieldError.
func BuildTable(snap feed.Snapshot, lk *feed.Lookup, view View) (Table, error) {
	fields := view.Fields
	if len(fields) == 0 {
		fields = DefaultFields()
	}
	fields = append(append([]string(nil), fields...), view.ExtraFields...)

	renames := view.Renames
	if renames == nil {
		renames = DefaultRenames()
	}

	extractors := make([]func(rowData) any, len(fields))
	columns := make([]string, len(fields))
	for i, field := range fields {
		extract, ok := fieldExtractors[field]
		if !ok {
			return Table{}, &UnknownFieldError{Field: field}
		}
		extractors[i] = extract
		if label, ok := renames[field]; ok {
			columns[i] = label
		} else {
			columns[i] = field
		}
	}

	rows := make([]Row, 0, len(snap.Players))
	for _, p := range snap.Players {
		teamName, _ := lk.TeamNameByID(p.Team)
		positionName, _ := lk.PositionPluralNameByID(p.ElementType)

		data := rowData{
			player:   p,
			team:     teamName,
			position: positionName,
			price:    Price(p.NowCost),
			trend:    PriceTrendOf(p.CostChangeEvent, p.CostChangeStart),
		}
		data.value = ValueRatio(p.EPThis, data.price)

		cells := make([]any, len(extractors))
		for i, extract := range extractors {
			cells[i] = extract(data)
		}

		rows = append(rows, Row{
			PlayerID: p.ID,
			Name:     p.DisplayName(),
			Position: data.position,
			Team:     data.team,
			Status:   p.Status,
			Price:    data.price,
			Trend:    data.trend,
			Value:    data.value,
			Cells:    cells,
		})
	}

	return Table{Columns: columns, Rows: rows}, nil
}

func optDecimal(d *feed.Decimal) any {
	if d == nil {
		return nil
	}
	return d.Float64()
}

func optFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func optInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}
