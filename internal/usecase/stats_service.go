package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/fplstats/fpl-stats/internal/domain/feed"
	"github.com/fplstats/fpl-stats/internal/domain/stats"
)

// EventInfo is the gameweek a result was computed against. Nil means every
// deadline of the season has already passed.
type EventInfo struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Deadline time.Time `json:"deadline"`
}

// StatsOptions enumerates the legal inputs for a filter run: the literal
// position and team universes, supported status exclusions, the observed
// price bounds and the projectable field names.
type StatsOptions struct {
	Positions        []string   `json:"positions"`
	Teams            []string   `json:"teams"`
	StatusExclusions []string   `json:"status_exclusions"`
	PriceFloor       float64    `json:"price_floor"`
	PriceCeiling     float64    `json:"price_ceiling"`
	Fields           []string   `json:"fields"`
	CurrentEvent     *EventInfo `json:"current_event"`
}

type StatsRunInput struct {
	Positions       []string
	Teams           []string
	ExcludeStatuses []string
	MinPrice        float64
	MaxPrice        float64
	ExtraFields     []string
}

type StatsRunResult struct {
	CurrentEvent *EventInfo
	Grouped      stats.Grouped
}

type StatsService struct {
	snapshots *SnapshotService
}

func NewStatsService(snapshots *SnapshotService) *StatsService {
	return &StatsService{snapshots: snapshots}
}

// Options derives the filter universe from the current snapshot.
func (s *StatsService) Options(ctx context.Context) (StatsOptions, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.Options")
	defer span.End()

	pc, err := s.snapshots.Pipeline(ctx)
	if err != nil {
		return StatsOptions{}, err
	}

	positions := make([]string, 0, len(pc.Snapshot.Positions))
	for _, p := range pc.Snapshot.Positions {
		positions = append(positions, p.PluralName)
	}
	teams := make([]string, 0, len(pc.Snapshot.Teams))
	for _, t := range pc.Snapshot.Teams {
		teams = append(teams, t.Name)
	}

	floor, ceiling := 0.0, 0.0
	for i, p := range pc.Snapshot.Players {
		price := stats.Price(p.NowCost)
		if i == 0 || price < floor {
			floor = price
		}
		if price > ceiling {
			ceiling = price
		}
	}

	return StatsOptions{
		Positions: positions,
		Teams:     teams,
		StatusExclusions: []string{
			stats.ExcludeInjured,
			stats.ExcludeUnavailable,
			stats.ExcludeSuspended,
			stats.ExcludeDoubtful,
		},
		PriceFloor:   floor,
		PriceCeiling: ceiling,
		Fields:       stats.KnownFields(),
		CurrentEvent: currentEventInfo(pc),
	}, nil
}

// Run builds the normalized table from the current snapshot, orders it by
// value-efficiency and applies the criteria.
func (s *StatsService) Run(ctx context.Context, input StatsRunInput) (StatsRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.Run")
	defer span.End()

	if err := validateRunInput(input); err != nil {
		return StatsRunResult{}, err
	}

	pc, err := s.snapshots.Pipeline(ctx)
	if err != nil {
		return StatsRunResult{}, err
	}
	if err := validateRunInputAgainstSnapshot(input, pc); err != nil {
		return StatsRunResult{}, err
	}

	lk := feed.NewLookup(pc.Snapshot)
	table, err := stats.BuildTable(pc.Snapshot, lk, stats.View{ExtraFields: input.ExtraFields})
	if err != nil {
		var unknown *stats.UnknownFieldError
		if crerr.As(err, &unknown) {
			return StatsRunResult{}, crerr.Mark(err, ErrInvalidInput)
		}
		return StatsRunResult{}, fmt.Errorf("build stats table: %w", err)
	}

	positionOrder := make([]string, 0, len(pc.Snapshot.Positions))
	for _, p := range pc.Snapshot.Positions {
		positionOrder = append(positionOrder, p.PluralName)
	}

	grouped := stats.Apply(stats.SortByValueDesc(table), positionOrder, stats.Criteria{
		Positions:       input.Positions,
		Teams:           input.Teams,
		ExcludeStatuses: input.ExcludeStatuses,
		MinPrice:        input.MinPrice,
		MaxPrice:        input.MaxPrice,
	})

	return StatsRunResult{
		CurrentEvent: currentEventInfo(pc),
		Grouped:      grouped,
	}, nil
}

func validateRunInput(input StatsRunInput) error {
	if input.MinPrice < 0 {
		return fmt.Errorf("%w: min_price cannot be negative", ErrInvalidInput)
	}
	if input.MaxPrice < input.MinPrice {
		return fmt.Errorf("%w: max_price=%.1f is below min_price=%.1f", ErrInvalidInput, input.MaxPrice, input.MinPrice)
	}
	for _, name := range input.ExcludeStatuses {
		if _, ok := stats.StatusCodeForExclusion(name); !ok {
			return fmt.Errorf("%w: unsupported status exclusion %q", ErrInvalidInput, name)
		}
	}
	return nil
}

func validateRunInputAgainstSnapshot(input StatsRunInput, pc PipelineContext) error {
	known := make(map[string]struct{}, len(pc.Snapshot.Positions))
	for _, p := range pc.Snapshot.Positions {
		known[p.PluralName] = struct{}{}
	}
	for _, name := range input.Positions {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("%w: unknown position %q", ErrInvalidInput, name)
		}
	}

	knownTeams := make(map[string]struct{}, len(pc.Snapshot.Teams))
	for _, t := range pc.Snapshot.Teams {
		knownTeams[t.Name] = struct{}{}
	}
	for _, name := range input.Teams {
		if _, ok := knownTeams[name]; !ok {
			return fmt.Errorf("%w: unknown team %q", ErrInvalidInput, name)
		}
	}
	return nil
}

func currentEventInfo(pc PipelineContext) *EventInfo {
	if !pc.HasCurrentEvent {
		return nil
	}
	return &EventInfo{
		ID:       pc.CurrentEvent.ID,
		Name:     strings.TrimSpace(pc.CurrentEvent.Name),
		Deadline: pc.CurrentEvent.DeadlineTime,
	}
}
