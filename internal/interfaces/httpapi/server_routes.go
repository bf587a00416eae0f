package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /api/league-data", handler.GetLeagueData)
	mux.HandleFunc("POST /api/clear-cache", handler.ClearCache)
	mux.HandleFunc("POST /api/list-competitions", handler.ListCompetitions)
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
}
