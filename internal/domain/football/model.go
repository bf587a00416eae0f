package football

import (
	"strings"
	"time"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusTimed     = "TIMED"
)

// StandingsRow is one team's entry in a normalized league table,
// as produced by a provider adapter.
type StandingsRow struct {
	Position     int
	TeamID       int64
	Team         string
	TLA          string
	Played       int
	Won          int
	Draw         int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	GoalDiff     int
	Points       int
	Form         string
}

// Fixture is a scheduled-but-unplayed match.
type Fixture struct {
	MatchID    int64
	UTCDate    time.Time
	Status     string
	Matchday   *int
	HomeTeamID int64
	HomeTeam   string
	HomeTLA    string
	AwayTeamID int64
	AwayTeam   string
	AwayTLA    string
	Venue      string
}

// TeamStrength is the derived per-team rating. Recomputed fresh from one
// standings table on every invocation, never persisted.
type TeamStrength struct {
	TeamID   int64
	Team     string
	Position int
	Points   int
	Played   int
	GoalDiff int
	Rating   float64
}

// MatchProbability annotates one upcoming fixture with a 3-way outcome
// distribution and the top-vs-bottom alert flag.
type MatchProbability struct {
	UTCDate  time.Time
	Matchday *int
	Home     string
	HomePos  int
	Away     string
	AwayPos  int
	PHome    float64
	PDraw    float64
	PAway    float64
	Alert    bool
}

// League describes one competition claimed by at least one adapter.
type League struct {
	Code     string
	Name     string
	Adapters []string
}

// Competition is one entry of the primary provider's competition catalog.
type Competition struct {
	Code     string
	Name     string
	Type     string
	Emblem   string
	Plan     string
	AreaName string
	AreaCode string
}

// FixtureWindow bounds an upcoming-matches query. Zero From/To fall back
// to [today 00:00 UTC, today + DaysAhead days].
type FixtureWindow struct {
	From      time.Time
	To        time.Time
	DaysAhead int
}

const DefaultDaysAhead = 10

// Resolve returns the concrete [from, to] date bounds for the window.
func (w FixtureWindow) Resolve(now time.Time) (time.Time, time.Time) {
	daysAhead := w.DaysAhead
	if daysAhead <= 0 {
		daysAhead = DefaultDaysAhead
	}

	today := now.UTC().Truncate(24 * time.Hour)
	from := w.From
	if from.IsZero() {
		from = today
	}
	to := w.To
	if to.IsZero() {
		to = today.Add(time.Duration(daysAhead) * 24 * time.Hour)
	}
	return from, to
}

// NormalizeLeagueCode uppercases and trims a caller-supplied league code.
func NormalizeLeagueCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
