package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/leagueledger/league-ledger/external/espn"
	"github.com/leagueledger/league-ledger/internal/domain/owner"
	"github.com/leagueledger/league-ledger/internal/domain/payout"
	"github.com/leagueledger/league-ledger/internal/platform/cache"
	"github.com/leagueledger/league-ledger/internal/platform/logging"
	"github.com/leagueledger/league-ledger/internal/usecase"
)

type stubFetcher struct {
	raw map[int]espn.RawSeason
}

func (f *stubFetcher) FetchRawSeason(_ context.Context, year int) (espn.RawSeason, error) {
	if raw, ok := f.raw[year]; ok {
		return raw, nil
	}
	return espn.RawSeason{}, fmt.Errorf("no payload for season %d", year)
}

func (f *stubFetcher) FetchLeagueSettings(context.Context, int) (map[string]any, error) {
	return map[string]any{
		"name": "Test League",
		"size": float64(2),
	}, nil
}

// rawAPISeason is the provider payload shape after JSON decoding, where
// every number arrives as float64.
func rawAPISeason(year int) espn.RawSeason {
	return espn.RawSeason{
		Year: year,
		Teams: []map[string]any{
			{
				"id":   float64(1),
				"name": "Alpha Squad",
				"record": map[string]any{
					"overall": map[string]any{
						"wins":          float64(10),
						"losses":        float64(4),
						"ties":          float64(0),
						"pointsFor":     1500.5,
						"pointsAgainst": 1300.25,
					},
				},
				"playoffSeed":         float64(1),
				"rankCalculatedFinal": float64(1),
			},
			{
				"id":                  float64(2),
				"name":                "Bravo Bunch",
				"playoffSeed":         float64(2),
				"rankCalculatedFinal": float64(2),
			},
		},
		Schedule: []map[string]any{
			{
				"matchupPeriodId": float64(1),
				"away":            map[string]any{"teamId": float64(1), "totalPoints": 150.0},
				"home":            map[string]any{"teamId": float64(2), "totalPoints": 100.0},
			},
		},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	fetcher := &stubFetcher{raw: map[int]espn.RawSeason{
		2022: rawAPISeason(2022),
		2023: rawAPISeason(2023),
		2024: rawAPISeason(2024),
	}}
	owners := owner.NewTable(map[int]string{1: "Owner A", 2: "Owner B"}, nil)
	store := cache.NewStore(time.Minute)
	logger := logging.NewNop()

	seasonService := usecase.NewSeasonService(fetcher, owners, store, logger, 2022, 2024, 2)
	historyService := usecase.NewHistoryService(seasonService)
	payoutService := usecase.NewPayoutService(seasonService, payout.DefaultRules())
	insightService := usecase.NewInsightService(nil, seasonService, logger)

	handler := NewHandler(seasonService, historyService, payoutService, insightService, logger)
	return NewRouter(handler, logger, []string{"*"})
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if got, _ := data["status"].(string); got != "ok" {
		t.Fatalf("expected status=ok, got %v", data["status"])
	}
}

func TestRouter_GetSeason(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/seasons/2024", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if got, _ := data["year"].(float64); got != 2024 {
		t.Fatalf("expected year=2024, got %v", data["year"])
	}
	teams, _ := data["teams"].([]any)
	if len(teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(teams))
	}
	champion, _ := data["champion"].(map[string]any)
	if got, _ := champion["name"].(string); got != "Alpha Squad" {
		t.Fatalf("expected champion Alpha Squad, got %v", champion["name"])
	}
}

func TestRouter_GetSeason_InvalidYear(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/seasons/not-a-year", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestRouter_GetSeason_OutsideWindow(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/seasons/1999", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestRouter_ChampionsHistory(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/history/champions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	bySeason, _ := data["by_season"].([]any)
	if len(bySeason) != 3 {
		t.Fatalf("expected 3 championship entries, got %d", len(bySeason))
	}
}

func TestRouter_SeasonPayouts(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/payouts/seasons/2023", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if got, _ := data["season"].(float64); got != 2023 {
		t.Fatalf("expected season=2023, got %v", data["season"])
	}
}

func TestRouter_SeasonInsights_NoProvider(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/insights", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if got, _ := data["status"].(string); got != "unavailable" {
		t.Fatalf("expected status=unavailable, got %v", data["status"])
	}
}

func TestRouter_AskInsight_EmptyQuestion(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/insights/ask", strings.NewReader(`{"question":""}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestRouter_RefreshCache(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/refresh", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if got, _ := data["status"].(string); got != "refreshed" {
		t.Fatalf("expected status=refreshed, got %v", data["status"])
	}
}
