package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/placarlab/matchodds/internal/platform/logging"
)

// PrewarmService keeps the response cache warm for a configured set of
// leagues so the first dashboard hit after a TTL expiry does not pay
// the full provider round trip. Failures are logged and skipped; the
// next tick tries again.
type PrewarmService struct {
	service  *LeagueDataService
	leagues  []string
	interval time.Duration
	pool     *ants.Pool
	logger   *logging.Logger
}

func NewPrewarmService(service *LeagueDataService, leagues []string, interval time.Duration, workers int, logger *logging.Logger) (*PrewarmService, error) {
	if service == nil {
		return nil, fmt.Errorf("%w: league data service is required", ErrInvalidInput)
	}
	if interval <= 0 {
		interval = time.Minute
	}
	if workers < 1 {
		workers = 2
	}
	if logger == nil {
		logger = logging.Default()
	}

	pool, err := ants.NewPool(workers, ants.WithNonblocking(false))
	if err != nil {
		return nil, fmt.Errorf("create prewarm worker pool: %w", err)
	}

	return &PrewarmService{
		service:  service,
		leagues:  leagues,
		interval: interval,
		pool:     pool,
		logger:   logger,
	}, nil
}

// Run warms immediately, then on every interval tick until ctx is
// cancelled. It blocks; run it in its own goroutine.
func (s *PrewarmService) Run(ctx context.Context) {
	if len(s.leagues) == 0 {
		s.logger.Info("cache prewarm disabled: no leagues configured")
		return
	}

	s.warm(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.warm(ctx)
		}
	}
}

func (s *PrewarmService) warm(ctx context.Context) {
	var wg sync.WaitGroup
	for _, league := range s.leagues {
		league := league
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if _, err := s.service.GetLeagueData(ctx, LeagueDataRequest{League: league}); err != nil {
				s.logger.WarnContext(ctx, "cache prewarm failed", "league", league, "error", err)
			}
		})
		if err != nil {
			wg.Done()
			s.logger.WarnContext(ctx, "cache prewarm submit rejected", "league", league, "error", err)
		}
	}
	wg.Wait()
}

// Close releases the worker pool. Call after Run has returned.
func (s *PrewarmService) Close() {
	if s.pool != nil {
		s.pool.Release()
	}
}
