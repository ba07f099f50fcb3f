package httpapi

import "net/http"

func (h *Handler) GetChampionsHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetChampionsHistory")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.historyService.ChampionsHistory(ctx))
}

func (h *Handler) GetScoringStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScoringStats")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.historyService.ScoringStats(ctx))
}

func (h *Handler) GetSeasonStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeasonStats")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.historyService.SeasonStats(ctx))
}

func (h *Handler) GetAllTimeStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAllTimeStats")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.historyService.AllTimeStats(ctx))
}

func (h *Handler) GetHeadToHeadStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetHeadToHeadStats")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.historyService.HeadToHeadStats(ctx))
}

func (h *Handler) GetDashboardSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDashboardSummary")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.historyService.DashboardSummary(ctx))
}
