package httpapi

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/leagueledger/league-ledger/internal/usecase"
)

type askInsightRequest struct {
	Question string `json:"question" validate:"required,max=500"`
}

func (h *Handler) GetSeasonInsights(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeasonInsights")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.insightService.SeasonInsights(ctx))
}

func (h *Handler) AskInsight(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AskInsight")
	defer span.End()

	var req askInsightRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.insightService.Ask(ctx, req.Question)
	if err != nil {
		h.logger.WarnContext(ctx, "insight question rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}
