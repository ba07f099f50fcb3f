package app

import (
	"fmt"
	"net/http"

	"github.com/leagueledger/league-ledger/external/espn"
	"github.com/leagueledger/league-ledger/external/insight"
	"github.com/leagueledger/league-ledger/internal/config"
	"github.com/leagueledger/league-ledger/internal/domain/owner"
	"github.com/leagueledger/league-ledger/internal/domain/payout"
	"github.com/leagueledger/league-ledger/internal/interfaces/httpapi"
	"github.com/leagueledger/league-ledger/internal/platform/cache"
	"github.com/leagueledger/league-ledger/internal/platform/logging"
	"github.com/leagueledger/league-ledger/internal/platform/resilience"
	"github.com/leagueledger/league-ledger/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	owners, err := owner.Load(cfg.OwnerTablePath)
	if err != nil {
		return nil, fmt.Errorf("load owner table: %w", err)
	}

	rules, err := payout.LoadRules(cfg.PayoutRulesPath)
	if err != nil {
		return nil, fmt.Errorf("load payout rules: %w", err)
	}

	espnClient := espn.NewClient(espn.ClientConfig{
		Hosts:    cfg.ESPNHosts,
		LeagueID: cfg.LeagueID,
		SWID:     cfg.ESPNSWID,
		S2:       cfg.ESPNS2,
		Timeout:  cfg.ESPNTimeout,
		Logger:   logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ESPNCircuitEnabled,
			FailureThreshold: cfg.ESPNCircuitFailureCount,
			OpenTimeout:      cfg.ESPNCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ESPNCircuitHalfOpenMaxReq,
		},
	})

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}

	seasonSvc := usecase.NewSeasonService(
		espnClient,
		owners,
		store,
		logger,
		cfg.StartSeason,
		cfg.CurrentSeason,
		cfg.FetchConcurrency,
	)
	historySvc := usecase.NewHistoryService(seasonSvc)
	payoutSvc := usecase.NewPayoutService(seasonSvc, rules)

	var generator *insight.Client
	if cfg.InsightEnabled {
		generator = insight.NewClient(insight.ClientConfig{
			BaseURL:   cfg.InsightBaseURL,
			APIKey:    cfg.InsightAPIKey,
			Model:     cfg.InsightModel,
			MaxTokens: cfg.InsightMaxTokens,
			Timeout:   cfg.InsightTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.InsightCircuitEnabled,
				FailureThreshold: cfg.InsightCircuitFailureCount,
				OpenTimeout:      cfg.InsightCircuitOpenTimeout,
			},
		}, nil)
	}
	insightSvc := usecase.NewInsightService(generator, seasonSvc, logger)

	handler := httpapi.NewHandler(seasonSvc, historySvc, payoutSvc, insightSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
