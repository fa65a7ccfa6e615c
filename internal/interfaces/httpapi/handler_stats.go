package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/fplstats/fpl-stats/internal/domain/stats"
	"github.com/fplstats/fpl-stats/internal/usecase"
)

func (h *Handler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFilterOptions")
	defer span.End()

	opts, err := h.statsService.Options(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get filter options failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, opts)
}

func (h *Handler) RunFilters(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunFilters")
	defer span.End()

	var req statsRunRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.statsService.Run(ctx, usecase.StatsRunInput{
		Positions:       req.Positions,
		Teams:           req.Teams,
		ExcludeStatuses: req.ExcludeStatuses,
		MinPrice:        req.MinPrice,
		MaxPrice:        req.MaxPrice,
		ExtraFields:     req.ExtraFields,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run filters failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statsRunToDTO(result))
}

func (h *Handler) GetGameweekHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameweekHistory")
	defer span.End()

	raw := strings.TrimSpace(r.PathValue("gameweek"))
	gameweek, err := strconv.Atoi(raw)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: gameweek must be an integer, got %q", usecase.ErrInvalidInput, raw))
		return
	}

	result, err := h.historyService.Gameweek(ctx, gameweek)
	if err != nil {
		h.logger.WarnContext(ctx, "get gameweek history failed", "gameweek", gameweek, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, historyToDTO(result))
}

func (h *Handler) PrefetchHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PrefetchHistory")
	defer span.End()

	var req prefetchRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.historyService.Prefetch(ctx, usecase.PrefetchInput{
		Depth:      req.Depth,
		MaxWorkers: req.MaxWorkers,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "prefetch history failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RefreshSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshSnapshot")
	defer span.End()

	snap, err := h.snapshotService.Refresh(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh snapshot failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"fetched_at": snap.FetchedAt,
		"players":    len(snap.Players),
		"teams":      len(snap.Teams),
		"events":     len(snap.Events),
	})
}

type statsRunRequest struct {
	Positions       []string `json:"positions"`
	Teams           []string `json:"teams"`
	ExcludeStatuses []string `json:"exclude_statuses"`
	MinPrice        float64  `json:"min_price" validate:"gte=0"`
	MaxPrice        float64  `json:"max_price" validate:"gte=0"`
	ExtraFields     []string `json:"extra_fields"`
}

type prefetchRequest struct {
	Depth      int `json:"depth" validate:"gte=0"`
	MaxWorkers int `json:"max_workers" validate:"gte=0"`
}

type statsRunDTO struct {
	CurrentEvent *usecase.EventInfo `json:"current_event"`
	Columns      []string           `json:"columns"`
	Groups       []statsGroupDTO    `json:"groups"`
}

type statsGroupDTO struct {
	Position  string        `json:"position"`
	Count     int           `json:"count"`
	MeanPrice *float64      `json:"mean_price"`
	Rows      []statsRowDTO `json:"rows"`
}

type statsRowDTO struct {
	PlayerID int      `json:"player_id"`
	Name     string   `json:"name"`
	Position string   `json:"position"`
	Team     string   `json:"team"`
	Status   string   `json:"status"`
	Price    float64  `json:"price"`
	Trend    string   `json:"trend"`
	Value    *float64 `json:"value"`
	Cells    []any    `json:"cells"`
}

type historyDTO struct {
	Gameweek       int                `json:"gameweek"`
	CurrentEvent   *usecase.EventInfo `json:"current_event"`
	TableColumns   []string           `json:"table_columns"`
	HistoryColumns []string           `json:"history_columns"`
	Rows           []historyRowDTO    `json:"rows"`
	Unmatched      []string           `json:"unmatched"`
	Ambiguous      []string           `json:"ambiguous"`
}

type historyRowDTO struct {
	Player  statsRowDTO `json:"player"`
	History []string    `json:"history"`
}

func statsRunToDTO(result usecase.StatsRunResult) statsRunDTO {
	groups := make([]statsGroupDTO, 0, len(result.Grouped.Groups))
	for _, grp := range result.Grouped.Groups {
		rows := make([]statsRowDTO, 0, len(grp.Rows))
		for _, row := range grp.Rows {
			rows = append(rows, statsRowToDTO(row))
		}
		groups = append(groups, statsGroupDTO{
			Position:  grp.Position,
			Count:     grp.Summary.Count,
			MeanPrice: grp.Summary.MeanPrice,
			Rows:      rows,
		})
	}

	return statsRunDTO{
		CurrentEvent: result.CurrentEvent,
		Columns:      result.Grouped.Columns,
		Groups:       groups,
	}
}

func historyToDTO(result usecase.HistoryResult) historyDTO {
	rows := make([]historyRowDTO, 0, len(result.Join.Rows))
	for _, row := range result.Join.Rows {
		rows = append(rows, historyRowDTO{
			Player:  statsRowToDTO(row.Row),
			History: row.History,
		})
	}

	return historyDTO{
		Gameweek:       result.Gameweek,
		CurrentEvent:   result.CurrentEvent,
		TableColumns:   result.Join.TableColumns,
		HistoryColumns: result.Join.HistoryColumns,
		Rows:           rows,
		Unmatched:      result.Join.Unmatched,
		Ambiguous:      result.Join.Ambiguous,
	}
}

func statsRowToDTO(row stats.Row) statsRowDTO {
	return statsRowDTO{
		PlayerID: row.PlayerID,
		Name:     row.Name,
		Position: row.Position,
		Team:     row.Team,
		Status:   row.Status,
		Price:    row.Price,
		Trend:    string(row.Trend),
		Value:    row.Value,
		Cells:    row.Cells,
	}
}
