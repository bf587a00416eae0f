package provider

import (
	"context"
	"sort"

	"github.com/placarlab/matchodds/internal/domain/football"
	"github.com/placarlab/matchodds/internal/platform/logging"
)

// Manager arbitrates between registered adapters: it picks candidates
// for a league in priority order and falls through to the next adapter
// on any failure, so one provider outage never takes a league offline.
type Manager struct {
	registrations []Registration
	logger        *logging.Logger
}

func NewManager(logger *logging.Logger, registrations ...Registration) *Manager {
	if logger == nil {
		logger = logging.Default()
	}

	enabled := make([]Registration, 0, len(registrations))
	for _, reg := range registrations {
		if reg.Enabled && reg.Adapter != nil {
			enabled = append(enabled, reg)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority < enabled[j].Priority
	})

	return &Manager{
		registrations: enabled,
		logger:        logger,
	}
}

// GetStandings fetches the standings table for code, trying adapters in
// priority order until one succeeds. A non-empty preferred pins the
// attempt to that single adapter.
func (m *Manager) GetStandings(ctx context.Context, code string, preferred string) (StandingsResult, error) {
	code = football.NormalizeLeagueCode(code)
	attempts := make([]AttemptError, 0, len(m.registrations))

	for _, reg := range m.candidatesFor(code, preferred) {
		m.logger.InfoContext(ctx, "fetching standings", "league", code, "adapter", reg.Adapter.Name())
		rows, err := reg.Adapter.FetchStandings(ctx, code)
		if err != nil {
			m.logger.WarnContext(ctx, "standings fetch failed, trying next adapter",
				"league", code,
				"adapter", reg.Adapter.Name(),
				"error", err,
			)
			attempts = append(attempts, AttemptError{Adapter: reg.Adapter.Name(), Err: err})
			continue
		}
		return StandingsResult{Rows: rows, Source: reg.Adapter.Name()}, nil
	}

	return StandingsResult{}, &AllFailedError{League: code, Attempts: attempts}
}

// GetUpcomingMatches fetches unplayed fixtures inside window with the
// same fallback discipline as GetStandings.
func (m *Manager) GetUpcomingMatches(ctx context.Context, code string, window football.FixtureWindow, preferred string) (FixturesResult, error) {
	code = football.NormalizeLeagueCode(code)
	attempts := make([]AttemptError, 0, len(m.registrations))

	for _, reg := range m.candidatesFor(code, preferred) {
		m.logger.InfoContext(ctx, "fetching upcoming matches", "league", code, "adapter", reg.Adapter.Name())
		fixtures, err := reg.Adapter.FetchUpcomingMatches(ctx, code, window)
		if err != nil {
			m.logger.WarnContext(ctx, "fixtures fetch failed, trying next adapter",
				"league", code,
				"adapter", reg.Adapter.Name(),
				"error", err,
			)
			attempts = append(attempts, AttemptError{Adapter: reg.Adapter.Name(), Err: err})
			continue
		}
		return FixturesResult{Fixtures: fixtures, Source: reg.Adapter.Name()}, nil
	}

	return FixturesResult{}, &AllFailedError{League: code, Attempts: attempts}
}

// ListAllLeagues merges every adapter's configured catalog. The first
// adapter (by priority) to name a league owns its display name; later
// adapters are appended as alternatives.
func (m *Manager) ListAllLeagues() []football.League {
	byCode := make(map[string]*football.League, 16)
	for _, reg := range m.registrations {
		for code, name := range reg.Leagues {
			code = football.NormalizeLeagueCode(code)
			league, ok := byCode[code]
			if !ok {
				league = &football.League{Code: code, Name: name}
				byCode[code] = league
			}
			league.Adapters = append(league.Adapters, reg.Adapter.Name())
		}
	}

	out := make([]football.League, 0, len(byCode))
	for _, league := range byCode {
		sort.Strings(league.Adapters)
		out = append(out, *league)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Adapters returns the enabled adapters in priority order.
func (m *Manager) Adapters() []Adapter {
	out := make([]Adapter, 0, len(m.registrations))
	for _, reg := range m.registrations {
		out = append(out, reg.Adapter)
	}
	return out
}

// candidatesFor selects adapters for one request. With no preferred
// adapter the league's claimants are tried first; a league nobody claims
// falls back to every enabled adapter, which keeps newly added
// competitions reachable before configs catch up.
func (m *Manager) candidatesFor(code string, preferred string) []Registration {
	if preferred != "" {
		for _, reg := range m.registrations {
			if reg.Adapter.Name() == preferred {
				return []Registration{reg}
			}
		}
		return nil
	}

	matched := make([]Registration, 0, len(m.registrations))
	for _, reg := range m.registrations {
		if _, ok := reg.Leagues[code]; ok {
			matched = append(matched, reg)
			continue
		}
		if reg.Adapter.SupportsLeague(code) {
			matched = append(matched, reg)
		}
	}
	if len(matched) == 0 {
		return m.registrations
	}
	return matched
}
