package app

import (
	"fmt"
	"net/http"

	"github.com/placarlab/matchodds/external/footballdata"
	"github.com/placarlab/matchodds/external/footystats"
	"github.com/placarlab/matchodds/internal/config"
	"github.com/placarlab/matchodds/internal/interfaces/httpapi"
	"github.com/placarlab/matchodds/internal/platform/cache"
	"github.com/placarlab/matchodds/internal/platform/logging"
	"github.com/placarlab/matchodds/internal/platform/resilience"
	"github.com/placarlab/matchodds/internal/provider"
	"github.com/placarlab/matchodds/internal/provider/fetch"
	"github.com/placarlab/matchodds/internal/usecase"
)

// Application bundles the HTTP server with the optional background
// prewarm loop so main can start and stop both.
type Application struct {
	Server  *http.Server
	Prewarm *usecase.PrewarmService
}

func New(cfg config.Config, logger *logging.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}

	footballDataAdapter := footballdata.New(footballdata.Config{
		BaseURL: cfg.FootballDataBaseURL,
		Token:   cfg.FootballDataToken,
		Fetcher: fetch.NewClient(fetch.Config{
			Timeout:     cfg.FootballDataTimeout,
			MaxAttempts: cfg.FootballDataMaxAttempts,
			Cache:       store,
			Logger:      logger.With("provider", footballdata.Name),
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FootballDataCircuitEnabled,
				FailureThreshold: cfg.FootballDataCircuitFailureCount,
				OpenTimeout:      cfg.FootballDataCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FootballDataCircuitHalfOpenMaxReq,
			},
			Secrets: []string{cfg.FootballDataToken},
		}),
		Logger: logger,
	})

	footyStatsAdapter := footystats.New(footystats.Config{
		BaseURL: cfg.FootyStatsBaseURL,
		Token:   cfg.FootyStatsToken,
		Fetcher: fetch.NewClient(fetch.Config{
			Timeout:     cfg.FootyStatsTimeout,
			MaxAttempts: cfg.FootyStatsMaxAttempts,
			Cache:       store,
			Logger:      logger.With("provider", footystats.Name),
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.FootyStatsCircuitEnabled,
				FailureThreshold: cfg.FootyStatsCircuitFailureCount,
				OpenTimeout:      cfg.FootyStatsCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.FootyStatsCircuitHalfOpenMaxReq,
			},
			Secrets: []string{cfg.FootyStatsToken},
		}),
		Logger: logger,
	})

	manager := provider.NewManager(logger,
		provider.Registration{
			Adapter:  footballDataAdapter,
			Enabled:  cfg.FootballDataEnabled,
			Priority: cfg.FootballDataPriority,
			Leagues:  footballDataAdapter.Leagues(),
		},
		provider.Registration{
			Adapter:  footyStatsAdapter,
			Enabled:  cfg.FootyStatsEnabled,
			Priority: cfg.FootyStatsPriority,
			Leagues:  footyStatsAdapter.Leagues(),
		},
	)

	// The competition catalog is a football-data.org feature only.
	var lister provider.CompetitionLister
	if cfg.FootballDataEnabled {
		lister = footballDataAdapter
	}

	leagueDataSvc := usecase.NewLeagueDataService(manager, store, lister, logger)

	handler := httpapi.NewHandler(leagueDataSvc, logger)
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

	var prewarm *usecase.PrewarmService
	if cfg.PrewarmEnabled {
		var err error
		prewarm, err = usecase.NewPrewarmService(leagueDataSvc, cfg.PrewarmLeagues, cfg.PrewarmInterval, cfg.PrewarmWorkers, logger)
		if err != nil {
			return nil, fmt.Errorf("build prewarm service: %w", err)
		}
	}

	return &Application{
		Server:  server,
		Prewarm: prewarm,
	}, nil
}
