package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/leagueledger/league-ledger/internal/platform/logging"
	"github.com/leagueledger/league-ledger/internal/usecase"
)

type Handler struct {
	seasonService  *usecase.SeasonService
	historyService *usecase.HistoryService
	payoutService  *usecase.PayoutService
	insightService *usecase.InsightService
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	seasonService *usecase.SeasonService,
	historyService *usecase.HistoryService,
	payoutService *usecase.PayoutService,
	insightService *usecase.InsightService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		seasonService:  seasonService,
		historyService: historyService,
		payoutService:  payoutService,
		insightService: insightService,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// RefreshCache drops every memoized season so the next read refetches
// from the provider.
func (h *Handler) RefreshCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshCache")
	defer span.End()

	h.seasonService.Invalidate(ctx)
	h.logger.InfoContext(ctx, "season cache invalidated")

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
