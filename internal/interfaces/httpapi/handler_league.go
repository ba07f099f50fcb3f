package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/leagueledger/league-ledger/internal/usecase"
)

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.seasonService.LeagueInfo(ctx))
}

func (h *Handler) GetCurrentStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentStandings")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.seasonService.CurrentStandings(ctx))
}

func (h *Handler) GetCurrentSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentSeason")
	defer span.End()

	record := h.seasonService.Season(ctx, h.seasonService.CurrentSeason())
	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(ctx, record))
}

func (h *Handler) GetSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSeason")
	defer span.End()

	rawYear := strings.TrimSpace(r.PathValue("year"))
	year, err := strconv.Atoi(rawYear)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid season year %q", usecase.ErrInvalidInput, rawYear))
		return
	}
	if year < h.seasonService.StartSeason() || year > h.seasonService.CurrentSeason() {
		writeError(ctx, w, fmt.Errorf("%w: season %d is outside the tracked window %d-%d",
			usecase.ErrNotFound, year, h.seasonService.StartSeason(), h.seasonService.CurrentSeason()))
		return
	}

	record := h.seasonService.Season(ctx, year)
	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(ctx, record))
}
