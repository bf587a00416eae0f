// Package provider defines the contract football data providers implement
// and the manager that arbitrates between them.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/placarlab/matchodds/internal/domain/football"
)

// Adapter translates one upstream provider's API into the normalized
// domain types. Implementations live under external/.
type Adapter interface {
	// Name is the stable identifier used in configs, logs and responses.
	Name() string

	// SupportsLeague reports whether the adapter claims the normalized
	// league code.
	SupportsLeague(code string) bool

	// MapLeagueCode converts a normalized league code into the
	// provider's own identifier. ok is false when the league is not
	// covered.
	MapLeagueCode(code string) (string, bool)

	FetchStandings(ctx context.Context, code string) ([]football.StandingsRow, error)
	FetchUpcomingMatches(ctx context.Context, code string, window football.FixtureWindow) ([]football.Fixture, error)
}

// CompetitionLister is implemented by adapters that expose a competition
// catalog endpoint.
type CompetitionLister interface {
	ListCompetitions(ctx context.Context) ([]football.Competition, error)
}

// Registration binds an adapter to its runtime settings. Leagues is the
// configured catalog for the adapter (code to display name); adapters may
// claim further codes through SupportsLeague.
type Registration struct {
	Adapter  Adapter
	Enabled  bool
	Priority int
	Leagues  map[string]string
}

// StandingsResult carries normalized standings plus the adapter that
// produced them.
type StandingsResult struct {
	Rows   []football.StandingsRow
	Source string
}

// FixturesResult carries upcoming matches plus the adapter that produced
// them.
type FixturesResult struct {
	Fixtures []football.Fixture
	Source   string
}

// AttemptError records a single adapter's failure during fallback.
type AttemptError struct {
	Adapter string
	Err     error
}

func (e AttemptError) Error() string {
	return fmt.Sprintf("%s: %v", e.Adapter, e.Err)
}

func (e AttemptError) Unwrap() error { return e.Err }

// AllFailedError aggregates every adapter failure for one request so the
// caller can report exactly which providers were tried and why each lost.
type AllFailedError struct {
	League   string
	Attempts []AttemptError
}

func (e *AllFailedError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("no provider available for league %s", e.League)
	}

	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return fmt.Sprintf("all providers failed for league %s: %s", e.League, strings.Join(parts, "; "))
}
