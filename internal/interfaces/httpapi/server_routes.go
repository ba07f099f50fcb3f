package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("POST /v1/refresh", handler.RefreshCache)
}

func registerLeagueRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/league", handler.GetLeague)
	mux.HandleFunc("GET /v1/standings", handler.GetCurrentStandings)
	mux.HandleFunc("GET /v1/seasons/current", handler.GetCurrentSeason)
	mux.HandleFunc("GET /v1/seasons/{year}", handler.GetSeason)
}

func registerHistoryRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/history/champions", handler.GetChampionsHistory)
	mux.HandleFunc("GET /v1/history/scoring", handler.GetScoringStats)
	mux.HandleFunc("GET /v1/history/seasons", handler.GetSeasonStats)
	mux.HandleFunc("GET /v1/history/all-time", handler.GetAllTimeStats)
	mux.HandleFunc("GET /v1/history/head-to-head", handler.GetHeadToHeadStats)
	mux.HandleFunc("GET /v1/history/summary", handler.GetDashboardSummary)
}

func registerPayoutRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/payouts/seasons", handler.GetAllSeasonPayouts)
	mux.HandleFunc("GET /v1/payouts/seasons/{year}", handler.GetSeasonPayouts)
	mux.HandleFunc("GET /v1/payouts/cumulative", handler.GetCumulativePayouts)
	mux.HandleFunc("GET /v1/payouts/summary", handler.GetPayoutSummary)
}

func registerInsightRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/insights", handler.GetSeasonInsights)
	mux.HandleFunc("POST /v1/insights/ask", handler.AskInsight)
}
