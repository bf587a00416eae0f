// Package footballdata adapts the football-data.org v4 API into the
// normalized domain types. It is the primary provider: widest league
// coverage and the only one with a competition catalog.
package footballdata

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/placarlab/matchodds/internal/domain/football"
	"github.com/placarlab/matchodds/internal/platform/logging"
	"github.com/placarlab/matchodds/internal/provider/fetch"
)

const (
	Name           = "football-data"
	defaultBaseURL = "https://api.football-data.org/v4"
)

// football-data.org competition codes are used verbatim as league codes.
var supportedLeagues = map[string]string{
	"BL1": "Bundesliga",
	"PL":  "Premier League",
	"FL1": "Ligue 1",
	"DED": "Eredivisie",
	"BSA": "Brasileirão Série A",
	"PD":  "La Liga",
	"CL":  "Champions League",
	"SA":  "Serie A",
	"EL":  "Europa League",
	"EC":  "European Championship",
	"WC":  "World Cup",
}

type Config struct {
	BaseURL string
	Token   string
	Fetcher *fetch.Client
	Logger  *logging.Logger
}

type Adapter struct {
	baseURL string
	token   string
	fetcher *fetch.Client
	logger  *logging.Logger
}

func New(cfg Config) *Adapter {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Adapter{
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.Token),
		fetcher: cfg.Fetcher,
		logger:  logger,
	}
}

func (a *Adapter) Name() string { return Name }

func (a *Adapter) SupportsLeague(code string) bool {
	_, ok := supportedLeagues[football.NormalizeLeagueCode(code)]
	return ok
}

func (a *Adapter) MapLeagueCode(code string) (string, bool) {
	normalized := football.NormalizeLeagueCode(code)
	if _, ok := supportedLeagues[normalized]; !ok {
		return "", false
	}
	return normalized, true
}

// Leagues lists the competitions this adapter claims, keyed by code.
func (a *Adapter) Leagues() map[string]string {
	out := make(map[string]string, len(supportedLeagues))
	for code, name := range supportedLeagues {
		out[code] = name
	}
	return out
}

func (a *Adapter) FetchStandings(ctx context.Context, code string) ([]football.StandingsRow, error) {
	apiCode, ok := a.MapLeagueCode(code)
	if !ok {
		return nil, crerr.Newf("league %s is not covered by %s", code, Name)
	}

	url := fmt.Sprintf("%s/competitions/%s/standings", a.baseURL, apiCode)
	var envelope standingsEnvelope
	if err := a.fetcher.GetJSONInto(ctx, url, nil, a.headers(), &envelope); err != nil {
		return nil, crerr.Wrapf(err, "fetch standings league=%s", apiCode)
	}

	// League standings segment into TOTAL/HOME/AWAY blocks and cup
	// competitions return one TOTAL block per group. Only the overall
	// blocks may flatten: a HOME or AWAY split would duplicate every
	// team with partial stats and block-local positions.
	blocks := make([]standingBlock, 0, len(envelope.Standings))
	hasTotal := false
	for _, block := range envelope.Standings {
		if len(block.Table) == 0 {
			continue
		}
		if block.Type == "TOTAL" {
			hasTotal = true
		}
		blocks = append(blocks, block)
	}
	if hasTotal {
		kept := blocks[:0]
		for _, block := range blocks {
			if block.Type == "TOTAL" {
				kept = append(kept, block)
			}
		}
		blocks = kept
	}

	rows := make([]football.StandingsRow, 0, 24)
	for _, block := range blocks {
		for _, item := range block.Table {
			rows = append(rows, football.StandingsRow{
				Position:     item.Position,
				TeamID:       item.Team.ID,
				Team:         item.Team.Name,
				TLA:          item.Team.TLA,
				Played:       item.PlayedGames,
				Won:          item.Won,
				Draw:         item.Draw,
				Lost:         item.Lost,
				GoalsFor:     item.GoalsFor,
				GoalsAgainst: item.GoalsAgainst,
				GoalDiff:     item.GoalDifference,
				Points:       item.Points,
				Form:         item.Form,
			})
		}
	}

	if apiCode == "CL" && len(rows) > 0 {
		rerankAcrossGroups(rows)
	}

	return rows, nil
}

// rerankAcrossGroups rebuilds a single global table out of per-group
// positions so Champions League teams become comparable league-wide.
func rerankAcrossGroups(rows []football.StandingsRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].GoalDiff != rows[j].GoalDiff {
			return rows[i].GoalDiff > rows[j].GoalDiff
		}
		if rows[i].GoalsFor != rows[j].GoalsFor {
			return rows[i].GoalsFor > rows[j].GoalsFor
		}
		return strings.ToLower(rows[i].Team) < strings.ToLower(rows[j].Team)
	})
	for i := range rows {
		rows[i].Position = i + 1
	}
}

func (a *Adapter) FetchUpcomingMatches(ctx context.Context, code string, window football.FixtureWindow) ([]football.Fixture, error) {
	apiCode, ok := a.MapLeagueCode(code)
	if !ok {
		return nil, crerr.Newf("league %s is not covered by %s", code, Name)
	}

	from, to := window.Resolve(time.Now())
	url := fmt.Sprintf("%s/competitions/%s/matches", a.baseURL, apiCode)
	params := map[string]string{
		"status":   football.StatusScheduled + "," + football.StatusTimed,
		"dateFrom": from.Format("2006-01-02"),
		"dateTo":   to.Format("2006-01-02"),
	}

	var envelope matchesEnvelope
	if err := a.fetcher.GetJSONInto(ctx, url, params, a.headers(), &envelope); err != nil {
		return nil, crerr.Wrapf(err, "fetch upcoming matches league=%s", apiCode)
	}

	fixtures := make([]football.Fixture, 0, len(envelope.Matches))
	for _, item := range envelope.Matches {
		utcDate, err := time.Parse(time.RFC3339, item.UTCDate)
		if err != nil {
			a.logger.WarnContext(ctx, "skipping match with unparseable kickoff",
				"match_id", item.ID,
				"utc_date", item.UTCDate,
			)
			continue
		}
		fixtures = append(fixtures, football.Fixture{
			MatchID:    item.ID,
			UTCDate:    utcDate.UTC(),
			Status:     item.Status,
			Matchday:   item.Matchday,
			HomeTeamID: item.HomeTeam.ID,
			HomeTeam:   item.HomeTeam.Name,
			HomeTLA:    item.HomeTeam.TLA,
			AwayTeamID: item.AwayTeam.ID,
			AwayTeam:   item.AwayTeam.Name,
			AwayTLA:    item.AwayTeam.TLA,
			Venue:      item.Venue,
		})
	}

	return fixtures, nil
}

func (a *Adapter) ListCompetitions(ctx context.Context) ([]football.Competition, error) {
	url := a.baseURL + "/competitions"
	var envelope competitionsEnvelope
	if err := a.fetcher.GetJSONInto(ctx, url, nil, a.headers(), &envelope); err != nil {
		return nil, crerr.Wrap(err, "fetch competitions")
	}

	out := make([]football.Competition, 0, len(envelope.Competitions))
	for _, item := range envelope.Competitions {
		out = append(out, football.Competition{
			Code:     item.Code,
			Name:     item.Name,
			Type:     item.Type,
			Emblem:   item.Emblem,
			Plan:     item.Plan,
			AreaName: item.Area.Name,
			AreaCode: item.Area.Code,
		})
	}
	return out, nil
}

func (a *Adapter) headers() map[string]string {
	if a.token == "" {
		return nil
	}
	return map[string]string{"X-Auth-Token": a.token}
}
