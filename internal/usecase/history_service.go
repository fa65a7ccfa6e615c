package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/fplstats/fpl-stats/internal/domain/feed"
	"github.com/fplstats/fpl-stats/internal/domain/stats"
	"github.com/fplstats/fpl-stats/internal/platform/cache"
	"github.com/fplstats/fpl-stats/internal/platform/logging"
)

type HistoryClient interface {
	FetchGameweek(ctx context.Context, gameweek int) (stats.HistorySheet, error)
}

const (
	prefetchStatusSuccess = "success"
	prefetchStatusFailed  = "failed"
	prefetchStatusSkipped = "skipped"
)

// HistoryService joins the live snapshot against per-gameweek stat sheets.
// Sheets exist only for completed gameweeks, so the legal range is 1 up to
// the gameweek before the current one.
type HistoryService struct {
	snapshots *SnapshotService
	client    HistoryClient
	store     *cache.Store
	logger    *logging.Logger
}

func NewHistoryService(
	snapshots *SnapshotService,
	client HistoryClient,
	store *cache.Store,
	logger *logging.Logger,
) *HistoryService {
	if logger == nil {
		logger = logging.Default()
	}
	return &HistoryService{
		snapshots: snapshots,
		client:    client,
		store:     store,
		logger:    logger,
	}
}

type HistoryResult struct {
	Gameweek     int
	CurrentEvent *EventInfo
	Join         stats.JoinResult
}

type PrefetchInput struct {
	// Depth is how many completed gameweeks to warm, counting back from
	// the most recent one. Zero means all of them.
	Depth      int
	MaxWorkers int
}

type PrefetchResult struct {
	GameweekCount int                  `json:"gameweek_count"`
	SuccessCount  int                  `json:"success_count"`
	FailedCount   int                  `json:"failed_count"`
	SkippedCount  int                  `json:"skipped_count"`
	WorkerCount   int                  `json:"worker_count"`
	Tasks         []PrefetchTaskResult `json:"tasks"`
}

type PrefetchTaskResult struct {
	Gameweek   int    `json:"gameweek"`
	Status     string `json:"status"`
	Rows       int    `json:"rows"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

// Gameweek returns the snapshot table joined against one completed
// gameweek's stat sheet.
func (s *HistoryService) Gameweek(ctx context.Context, gameweek int) (HistoryResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.Gameweek")
	defer span.End()

	if s.client == nil {
		return HistoryResult{}, fmt.Errorf("%w: history client is not configured", ErrDependencyUnavailable)
	}

	pc, err := s.snapshots.Pipeline(ctx)
	if err != nil {
		return HistoryResult{}, err
	}

	last, err := lastCompletedGameweek(pc)
	if err != nil {
		return HistoryResult{}, err
	}
	if gameweek < 1 || gameweek > last {
		return HistoryResult{}, fmt.Errorf("%w: gameweek must be between 1 and %d, got %d", ErrInvalidInput, last, gameweek)
	}

	sheet, err := s.loadSheet(ctx, gameweek)
	if err != nil {
		return HistoryResult{}, err
	}

	lk := feed.NewLookup(pc.Snapshot)
	table, err := stats.BuildTable(pc.Snapshot, lk, stats.View{})
	if err != nil {
		return HistoryResult{}, fmt.Errorf("build stats table: %w", err)
	}

	return HistoryResult{
		Gameweek:     gameweek,
		CurrentEvent: currentEventInfo(pc),
		Join:         stats.Join(table, sheet),
	}, nil
}

// Prefetch warms the sheet cache for recent completed gameweeks with a
// bounded worker pool. Already-cached gameweeks are skipped, failures are
// reported per task and never abort the batch.
func (s *HistoryService) Prefetch(ctx context.Context, input PrefetchInput) (PrefetchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.Prefetch")
	defer span.End()

	if s.client == nil {
		return PrefetchResult{}, fmt.Errorf("%w: history client is not configured", ErrDependencyUnavailable)
	}
	if input.Depth < 0 {
		return PrefetchResult{}, fmt.Errorf("%w: depth cannot be negative", ErrInvalidInput)
	}

	pc, err := s.snapshots.Pipeline(ctx)
	if err != nil {
		return PrefetchResult{}, err
	}
	last, err := lastCompletedGameweek(pc)
	if err != nil {
		return PrefetchResult{}, err
	}

	first := 1
	if input.Depth > 0 && last-input.Depth+1 > first {
		first = last - input.Depth + 1
	}
	gameweeks := make([]int, 0, last-first+1)
	for gw := first; gw <= last; gw++ {
		gameweeks = append(gameweeks, gw)
	}

	workerCount := normalizePrefetchWorkerCount(input.MaxWorkers, len(gameweeks))
	result := PrefetchResult{
		GameweekCount: len(gameweeks),
		WorkerCount:   workerCount,
		Tasks:         make([]PrefetchTaskResult, 0, len(gameweeks)),
	}
	if len(gameweeks) == 0 {
		return result, nil
	}

	results := make(chan PrefetchTaskResult, len(gameweeks))

	var successCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return PrefetchResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, gameweek := range gameweeks {
		gameweek := gameweek
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := PrefetchTaskResult{Gameweek: gameweek}

			if _, ok := s.store.Get(ctx, sheetCacheKey(gameweek)); ok {
				row.Status = prefetchStatusSkipped
				row.Message = "already cached"
				skippedCount.Add(1)
			} else if sheet, loadErr := s.loadSheet(ctx, gameweek); loadErr != nil {
				row.Status = prefetchStatusFailed
				row.Message = loadErr.Error()
				failedCount.Add(1)
			} else {
				row.Status = prefetchStatusSuccess
				row.Rows = len(sheet.Rows)
				successCount.Add(1)
			}

			row.DurationMs = time.Since(start).Milliseconds()
			results <- row
		}); err != nil {
			workers.Done()
			return PrefetchResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].Gameweek < result.Tasks[j].Gameweek
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	return result, nil
}

func (s *HistoryService) loadSheet(ctx context.Context, gameweek int) (stats.HistorySheet, error) {
	value, err := s.store.GetOrLoad(ctx, sheetCacheKey(gameweek), func(ctx context.Context) (any, error) {
		sheet, err := s.client.FetchGameweek(ctx, gameweek)
		if err != nil {
			return nil, err
		}
		return sheet, nil
	})
	if err != nil {
		return stats.HistorySheet{}, err
	}

	sheet, ok := value.(stats.HistorySheet)
	if !ok {
		return stats.HistorySheet{}, fmt.Errorf("unexpected cache payload type %T", value)
	}
	return sheet, nil
}

func sheetCacheKey(gameweek int) string {
	return fmt.Sprintf("gameweek-sheet:%d", gameweek)
}

// lastCompletedGameweek is the gameweek before the current one, or the
// final event once the season has no future deadline left.
func lastCompletedGameweek(pc PipelineContext) (int, error) {
	if pc.HasCurrentEvent {
		return pc.CurrentEvent.ID - 1, nil
	}
	if len(pc.Snapshot.Events) == 0 {
		return 0, fmt.Errorf("%w: snapshot carries no events", ErrUpstreamSchema)
	}
	last := pc.Snapshot.Events[0].ID
	for _, e := range pc.Snapshot.Events {
		if e.ID > last {
			last = e.ID
		}
	}
	return last, nil
}

func normalizePrefetchWorkerCount(value int, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 1
	}
	if value > 4 {
		value = 4
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
