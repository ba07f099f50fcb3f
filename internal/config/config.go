package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/leagueledger/league-ledger/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	CORSAllowedOrigins         []string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	LogLevel                   logging.Level
	LeagueID                   string
	ESPNSWID                   string
	ESPNS2                     string
	StartSeason                int
	CurrentSeason              int
	ESPNHosts                  []string
	ESPNTimeout                time.Duration
	ESPNCircuitEnabled         bool
	ESPNCircuitFailureCount    int
	ESPNCircuitOpenTimeout     time.Duration
	ESPNCircuitHalfOpenMaxReq  int
	OwnerTablePath             string
	PayoutRulesPath            string
	CacheEnabled               bool
	CacheTTL                   time.Duration
	FetchConcurrency           int
	InsightEnabled             bool
	InsightBaseURL             string
	InsightAPIKey              string
	InsightModel               string
	InsightMaxTokens           int
	InsightTimeout             time.Duration
	InsightCircuitEnabled      bool
	InsightCircuitFailureCount int
	InsightCircuitOpenTimeout  time.Duration
	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	leagueID := strings.TrimSpace(getEnv("LEAGUE_ID", ""))
	if leagueID == "" {
		return Config{}, fmt.Errorf("LEAGUE_ID is required")
	}
	espnSWID := strings.TrimSpace(getEnv("ESPN_SWID", ""))
	if espnSWID == "" {
		return Config{}, fmt.Errorf("ESPN_SWID is required")
	}
	espnS2 := strings.TrimSpace(getEnv("ESPN_S2", ""))
	if espnS2 == "" {
		return Config{}, fmt.Errorf("ESPN_S2 is required")
	}

	currentSeason, err := getEnvAsInt("CURRENT_SEASON", time.Now().Year())
	if err != nil {
		return Config{}, fmt.Errorf("parse CURRENT_SEASON: %w", err)
	}
	startSeason, err := getEnvAsInt("START_SEASON", 2022)
	if err != nil {
		return Config{}, fmt.Errorf("parse START_SEASON: %w", err)
	}
	if startSeason <= 0 || currentSeason <= 0 {
		return Config{}, fmt.Errorf("season years must be > 0")
	}
	if startSeason > currentSeason {
		return Config{}, fmt.Errorf("START_SEASON %d must not be after CURRENT_SEASON %d", startSeason, currentSeason)
	}

	espnTimeout, err := time.ParseDuration(getEnv("ESPN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_TIMEOUT: %w", err)
	}
	if espnTimeout <= 0 {
		return Config{}, fmt.Errorf("ESPN_TIMEOUT must be > 0")
	}
	espnCircuitEnabled, err := strconv.ParseBool(getEnv("ESPN_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_CIRCUIT_ENABLED: %w", err)
	}
	espnCircuitFailureCount, err := getEnvAsInt("ESPN_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if espnCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("ESPN_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	espnCircuitOpenTimeout, err := time.ParseDuration(getEnv("ESPN_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if espnCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("ESPN_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	espnCircuitHalfOpenMaxReq, err := getEnvAsInt("ESPN_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse ESPN_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if espnCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("ESPN_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	fetchConcurrency, err := getEnvAsInt("FETCH_CONCURRENCY", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse FETCH_CONCURRENCY: %w", err)
	}
	if fetchConcurrency < 1 {
		return Config{}, fmt.Errorf("FETCH_CONCURRENCY must be >= 1")
	}

	insightEnabled, err := strconv.ParseBool(getEnv("INSIGHT_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse INSIGHT_ENABLED: %w", err)
	}
	insightBaseURL := strings.TrimSpace(getEnv("INSIGHT_BASE_URL", ""))
	if insightEnabled && insightBaseURL == "" {
		return Config{}, fmt.Errorf("INSIGHT_BASE_URL is required when INSIGHT_ENABLED=true")
	}
	insightTimeout, err := time.ParseDuration(getEnv("INSIGHT_TIMEOUT", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse INSIGHT_TIMEOUT: %w", err)
	}
	if insightTimeout <= 0 {
		return Config{}, fmt.Errorf("INSIGHT_TIMEOUT must be > 0")
	}
	insightMaxTokens, err := getEnvAsInt("INSIGHT_MAX_TOKENS", 1000)
	if err != nil {
		return Config{}, fmt.Errorf("parse INSIGHT_MAX_TOKENS: %w", err)
	}
	if insightMaxTokens < 1 {
		return Config{}, fmt.Errorf("INSIGHT_MAX_TOKENS must be >= 1")
	}
	insightCircuitEnabled, err := strconv.ParseBool(getEnv("INSIGHT_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse INSIGHT_CIRCUIT_ENABLED: %w", err)
	}
	insightCircuitFailureCount, err := getEnvAsInt("INSIGHT_CIRCUIT_FAILURE_COUNT", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse INSIGHT_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if insightCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("INSIGHT_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	insightCircuitOpenTimeout, err := time.ParseDuration(getEnv("INSIGHT_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse INSIGHT_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if insightCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("INSIGHT_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "league-ledger-api"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:                readTimeout,
		WriteTimeout:               writeTimeout,
		LogLevel:                   parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		LeagueID:                   leagueID,
		ESPNSWID:                   espnSWID,
		ESPNS2:                     espnS2,
		StartSeason:                startSeason,
		CurrentSeason:              currentSeason,
		ESPNHosts:                  splitCSV(getEnv("ESPN_HOSTS", "")),
		ESPNTimeout:                espnTimeout,
		ESPNCircuitEnabled:         espnCircuitEnabled,
		ESPNCircuitFailureCount:    espnCircuitFailureCount,
		ESPNCircuitOpenTimeout:     espnCircuitOpenTimeout,
		ESPNCircuitHalfOpenMaxReq:  espnCircuitHalfOpenMaxReq,
		OwnerTablePath:             getEnv("OWNER_TABLE_PATH", "config/owners.yaml"),
		PayoutRulesPath:            getEnv("PAYOUT_RULES_PATH", "config/payouts.yaml"),
		CacheEnabled:               cacheEnabled,
		CacheTTL:                   cacheTTL,
		FetchConcurrency:           fetchConcurrency,
		InsightEnabled:             insightEnabled,
		InsightBaseURL:             insightBaseURL,
		InsightAPIKey:              strings.TrimSpace(getEnv("INSIGHT_API_KEY", "")),
		InsightModel:               strings.TrimSpace(getEnv("INSIGHT_MODEL", "gpt-4o-mini")),
		InsightMaxTokens:           insightMaxTokens,
		InsightTimeout:             insightTimeout,
		InsightCircuitEnabled:      insightCircuitEnabled,
		InsightCircuitFailureCount: insightCircuitFailureCount,
		InsightCircuitOpenTimeout:  insightCircuitOpenTimeout,
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
