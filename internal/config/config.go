package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/placarlab/matchodds/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
	LogLevel           logging.Level

	CacheEnabled bool
	CacheTTL     time.Duration

	FootballDataEnabled               bool
	FootballDataBaseURL               string
	FootballDataToken                 string
	FootballDataTimeout               time.Duration
	FootballDataMaxAttempts           int
	FootballDataPriority              int
	FootballDataCircuitEnabled        bool
	FootballDataCircuitFailureCount   int
	FootballDataCircuitOpenTimeout    time.Duration
	FootballDataCircuitHalfOpenMaxReq int

	FootyStatsEnabled               bool
	FootyStatsBaseURL               string
	FootyStatsToken                 string
	FootyStatsTimeout               time.Duration
	FootyStatsMaxAttempts           int
	FootyStatsPriority              int
	FootyStatsCircuitEnabled        bool
	FootyStatsCircuitFailureCount   int
	FootyStatsCircuitOpenTimeout    time.Duration
	FootyStatsCircuitHalfOpenMaxReq int

	PrewarmEnabled  bool
	PrewarmLeagues  []string
	PrewarmInterval time.Duration
	PrewarmWorkers  int

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	PprofEnabled bool
	PprofAddr    string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	shutdownTimeout, err := time.ParseDuration(getEnv("APP_SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_SHUTDOWN_TIMEOUT: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	footballDataEnabled, err := strconv.ParseBool(getEnv("FOOTBALL_DATA_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_DATA_ENABLED: %w", err)
	}
	footballDataTimeout, err := time.ParseDuration(getEnv("FOOTBALL_DATA_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_DATA_TIMEOUT: %w", err)
	}
	if footballDataTimeout <= 0 {
		return Config{}, fmt.Errorf("FOOTBALL_DATA_TIMEOUT must be > 0")
	}
	footballDataMaxAttempts, err := getEnvAsInt("FOOTBALL_DATA_MAX_ATTEMPTS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_DATA_MAX_ATTEMPTS: %w", err)
	}
	if footballDataMaxAttempts < 1 {
		return Config{}, fmt.Errorf("FOOTBALL_DATA_MAX_ATTEMPTS must be >= 1")
	}
	footballDataPriority, err := getEnvAsInt("FOOTBALL_DATA_PRIORITY", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALL_DATA_PRIORITY: %w", err)
	}
	footballDataCircuit, err := loadCircuitSettings("FOOTBALL_DATA")
	if err != nil {
		return Config{}, err
	}

	footyStatsEnabled, err := strconv.ParseBool(getEnv("FOOTYSTATS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTYSTATS_ENABLED: %w", err)
	}
	footyStatsToken := strings.TrimSpace(getEnv("FOOTYSTATS_TOKEN", ""))
	if footyStatsEnabled && footyStatsToken == "" {
		return Config{}, fmt.Errorf("FOOTYSTATS_TOKEN is required when FOOTYSTATS_ENABLED=true")
	}
	footyStatsTimeout, err := time.ParseDuration(getEnv("FOOTYSTATS_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTYSTATS_TIMEOUT: %w", err)
	}
	if footyStatsTimeout <= 0 {
		return Config{}, fmt.Errorf("FOOTYSTATS_TIMEOUT must be > 0")
	}
	footyStatsMaxAttempts, err := getEnvAsInt("FOOTYSTATS_MAX_ATTEMPTS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTYSTATS_MAX_ATTEMPTS: %w", err)
	}
	if footyStatsMaxAttempts < 1 {
		return Config{}, fmt.Errorf("FOOTYSTATS_MAX_ATTEMPTS must be >= 1")
	}
	footyStatsPriority, err := getEnvAsInt("FOOTYSTATS_PRIORITY", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTYSTATS_PRIORITY: %w", err)
	}
	footyStatsCircuit, err := loadCircuitSettings("FOOTYSTATS")
	if err != nil {
		return Config{}, err
	}

	prewarmEnabled, err := strconv.ParseBool(getEnv("PREWARM_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PREWARM_ENABLED: %w", err)
	}
	prewarmLeagues := splitCSV(getEnv("PREWARM_LEAGUES", ""))
	if prewarmEnabled && len(prewarmLeagues) == 0 {
		return Config{}, fmt.Errorf("PREWARM_LEAGUES is required when PREWARM_ENABLED=true")
	}
	prewarmInterval, err := time.ParseDuration(getEnv("PREWARM_INTERVAL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PREWARM_INTERVAL: %w", err)
	}
	if prewarmInterval <= 0 {
		return Config{}, fmt.Errorf("PREWARM_INTERVAL must be > 0")
	}
	prewarmWorkers, err := getEnvAsInt("PREWARM_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse PREWARM_WORKERS: %w", err)
	}
	if prewarmWorkers < 1 {
		return Config{}, fmt.Errorf("PREWARM_WORKERS must be >= 1")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
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

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "matchodds-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		ShutdownTimeout:    shutdownTimeout,
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		CacheEnabled: cacheEnabled,
		CacheTTL:     cacheTTL,

		FootballDataEnabled:               footballDataEnabled,
		FootballDataBaseURL:               strings.TrimSpace(getEnv("FOOTBALL_DATA_BASE_URL", "https://api.football-data.org/v4")),
		FootballDataToken:                 strings.TrimSpace(getEnv("FOOTBALL_DATA_TOKEN", "")),
		FootballDataTimeout:               footballDataTimeout,
		FootballDataMaxAttempts:           footballDataMaxAttempts,
		FootballDataPriority:              footballDataPriority,
		FootballDataCircuitEnabled:        footballDataCircuit.enabled,
		FootballDataCircuitFailureCount:   footballDataCircuit.failureCount,
		FootballDataCircuitOpenTimeout:    footballDataCircuit.openTimeout,
		FootballDataCircuitHalfOpenMaxReq: footballDataCircuit.halfOpenMaxReq,

		FootyStatsEnabled:               footyStatsEnabled,
		FootyStatsBaseURL:               strings.TrimSpace(getEnv("FOOTYSTATS_BASE_URL", "https://api.footystats.org")),
		FootyStatsToken:                 footyStatsToken,
		FootyStatsTimeout:               footyStatsTimeout,
		FootyStatsMaxAttempts:           footyStatsMaxAttempts,
		FootyStatsPriority:              footyStatsPriority,
		FootyStatsCircuitEnabled:        footyStatsCircuit.enabled,
		FootyStatsCircuitFailureCount:   footyStatsCircuit.failureCount,
		FootyStatsCircuitOpenTimeout:    footyStatsCircuit.openTimeout,
		FootyStatsCircuitHalfOpenMaxReq: footyStatsCircuit.halfOpenMaxReq,

		PrewarmEnabled:  prewarmEnabled,
		PrewarmLeagues:  prewarmLeagues,
		PrewarmInterval: prewarmInterval,
		PrewarmWorkers:  prewarmWorkers,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if !cfg.FootballDataEnabled && !cfg.FootyStatsEnabled {
		return Config{}, fmt.Errorf("at least one data provider must be enabled")
	}

	return cfg, nil
}

type circuitSettings struct {
	enabled        bool
	failureCount   int
	openTimeout    time.Duration
	halfOpenMaxReq int
}

func loadCircuitSettings(prefix string) (circuitSettings, error) {
	enabled, err := strconv.ParseBool(getEnv(prefix+"_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return circuitSettings{}, fmt.Errorf("parse %s_CIRCUIT_ENABLED: %w", prefix, err)
	}
	failureCount, err := getEnvAsInt(prefix+"_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return circuitSettings{}, fmt.Errorf("parse %s_CIRCUIT_FAILURE_COUNT: %w", prefix, err)
	}
	if failureCount < 1 {
		return circuitSettings{}, fmt.Errorf("%s_CIRCUIT_FAILURE_COUNT must be >= 1", prefix)
	}
	openTimeout, err := time.ParseDuration(getEnv(prefix+"_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return circuitSettings{}, fmt.Errorf("parse %s_CIRCUIT_OPEN_TIMEOUT: %w", prefix, err)
	}
	if openTimeout <= 0 {
		return circuitSettings{}, fmt.Errorf("%s_CIRCUIT_OPEN_TIMEOUT must be > 0", prefix)
	}
	halfOpenMaxReq, err := getEnvAsInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return circuitSettings{}, fmt.Errorf("parse %s_CIRCUIT_HALF_OPEN_MAX_REQ: %w", prefix, err)
	}
	if halfOpenMaxReq < 1 {
		return circuitSettings{}, fmt.Errorf("%s_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}

	return circuitSettings{
		enabled:        enabled,
		failureCount:   failureCount,
		openTimeout:    openTimeout,
		halfOpenMaxReq: halfOpenMaxReq,
	}, nil
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

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
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
