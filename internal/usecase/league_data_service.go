package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/placarlab/matchodds/internal/domain/football"
	"github.com/placarlab/matchodds/internal/platform/cache"
	"github.com/placarlab/matchodds/internal/platform/logging"
	"github.com/placarlab/matchodds/internal/probability"
	"github.com/placarlab/matchodds/internal/provider"
	"github.com/placarlab/matchodds/internal/ratings"
)

// ProviderSource is the slice of the provider manager this service
// needs.
type ProviderSource interface {
	GetStandings(ctx context.Context, code string, preferred string) (provider.StandingsResult, error)
	GetUpcomingMatches(ctx context.Context, code string, window football.FixtureWindow, preferred string) (provider.FixturesResult, error)
	ListAllLeagues() []football.League
}

// LeagueDataRequest carries the caller's query for one league snapshot.
type LeagueDataRequest struct {
	League    string
	DaysAhead int
	DateFrom  time.Time
	DateTo    time.Time
	Provider  string
}

// DataSources names which adapter served each half of a snapshot; they
// can differ when fallback fires for only one of the two fetches.
type DataSources struct {
	Standings string
	Fixtures  string
}

// LeagueData is one complete league snapshot: the raw table, the
// derived strengths and the priced upcoming fixtures.
type LeagueData struct {
	League        string
	Sources       DataSources
	Standings     []football.StandingsRow
	Strengths     []football.TeamStrength
	Probabilities []football.MatchProbability
	FetchedAt     time.Time
}

type LeagueDataService struct {
	providers ProviderSource
	store     *cache.Store
	lister    provider.CompetitionLister
	logger    *logging.Logger
	now       func() time.Time
}

func NewLeagueDataService(providers ProviderSource, store *cache.Store, lister provider.CompetitionLister, logger *logging.Logger) *LeagueDataService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeagueDataService{
		providers: providers,
		store:     store,
		lister:    lister,
		logger:    logger,
		now:       time.Now,
	}
}

// GetLeagueData assembles the full snapshot for one league. Standings
// and fixtures are fetched concurrently; ratings and probabilities are
// always recomputed from whatever the providers returned.
func (s *LeagueDataService) GetLeagueData(ctx context.Context, req LeagueDataRequest) (LeagueData, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GetLeagueData")
	defer span.End()

	code := football.NormalizeLeagueCode(req.League)
	if code == "" {
		return LeagueData{}, fmt.Errorf("%w: league code is required", ErrInvalidInput)
	}
	if req.DaysAhead < 0 {
		return LeagueData{}, fmt.Errorf("%w: days ahead must not be negative", ErrInvalidInput)
	}

	window := football.FixtureWindow{
		From:      req.DateFrom,
		To:        req.DateTo,
		DaysAhead: req.DaysAhead,
	}

	var (
		standings    provider.StandingsResult
		standingsErr error
		fixtures     provider.FixturesResult
		fixturesErr  error
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		standings, standingsErr = s.providers.GetStandings(ctx, code, req.Provider)
	})
	wg.Go(func() {
		fixtures, fixturesErr = s.providers.GetUpcomingMatches(ctx, code, window, req.Provider)
	})
	wg.Wait()

	if standingsErr != nil {
		return LeagueData{}, fmt.Errorf("%w: standings for %s: %v", ErrDependencyUnavailable, code, standingsErr)
	}
	if fixturesErr != nil {
		return LeagueData{}, fmt.Errorf("%w: upcoming matches for %s: %v", ErrDependencyUnavailable, code, fixturesErr)
	}
	if len(standings.Rows) == 0 {
		return LeagueData{}, fmt.Errorf("%w: empty standings for league %s", ErrNotFound, code)
	}

	strengths := ratings.Compute(standings.Rows)
	probabilities := probability.RankFixtures(fixtures.Fixtures, strengths)

	s.logger.InfoContext(ctx, "league snapshot assembled",
		"league", code,
		"standings_source", standings.Source,
		"fixtures_source", fixtures.Source,
		"teams", len(standings.Rows),
		"priced_fixtures", len(probabilities),
	)

	return LeagueData{
		League: code,
		Sources: DataSources{
			Standings: standings.Source,
			Fixtures:  fixtures.Source,
		},
		Standings:     standings.Rows,
		Strengths:     strengths,
		Probabilities: probabilities,
		FetchedAt:     s.now().UTC(),
	}, nil
}

// ClearCache drops every cached provider response and reports how many
// entries went away.
func (s *LeagueDataService) ClearCache(ctx context.Context) int {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClearCache")
	defer span.End()

	if s.store == nil {
		return 0
	}
	removed := s.store.Clear(ctx)
	s.logger.InfoContext(ctx, "response cache cleared", "entries_removed", removed)
	return removed
}

// ListCompetitions returns the primary provider's competition catalog
// sorted by display name.
func (s *LeagueDataService) ListCompetitions(ctx context.Context) ([]football.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ListCompetitions")
	defer span.End()

	if s.lister == nil {
		return nil, fmt.Errorf("%w: no provider exposes a competition catalog", ErrDependencyUnavailable)
	}

	competitions, err := s.lister.ListCompetitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list competitions: %v", ErrDependencyUnavailable, err)
	}

	sort.SliceStable(competitions, func(i, j int) bool {
		return strings.ToLower(competitions[i].Name) < strings.ToLower(competitions[j].Name)
	})
	return competitions, nil
}

// ListLeagues merges every enabled adapter's league catalog.
func (s *LeagueDataService) ListLeagues(ctx context.Context) []football.League {
	_, span := startUsecaseSpan(ctx, "usecase.ListLeagues")
	defer span.End()

	return s.providers.ListAllLeagues()
}
