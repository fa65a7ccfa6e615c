package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /readyz", handler.Readyz)
}

func registerStatsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/stats/options", handler.GetFilterOptions)
	mux.HandleFunc("POST /v1/stats/filter", handler.RunFilters)
	mux.HandleFunc("GET /v1/stats/history/{gameweek}", handler.GetGameweekHistory)
	mux.HandleFunc("POST /v1/stats/history/prefetch", handler.PrefetchHistory)
	mux.HandleFunc("POST /v1/snapshot/refresh", handler.RefreshSnapshot)
}
