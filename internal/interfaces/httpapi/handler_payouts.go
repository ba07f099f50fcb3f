package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/leagueledger/league-ledger/internal/usecase"
)

func (h *Handler) GetAllSeasonPayouts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetAllSeasonPayouts")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.payoutService.AllSeasonPayouts(ctx))
}

func (h *Handler) GetSeasonPayouts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeasonPayouts")
	defer span.End()

	rawYear := strings.TrimSpace(r.PathValue("year"))
	year, err := strconv.Atoi(rawYear)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid season year %q", usecase.ErrInvalidInput, rawYear))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.payoutService.SeasonPayouts(ctx, year))
}

func (h *Handler) GetCumulativePayouts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCumulativePayouts")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.payoutService.CumulativePayouts(ctx))
}

func (h *Handler) GetPayoutSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPayoutSummary")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.payoutService.Summary(ctx))
}
