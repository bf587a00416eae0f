// Package footystats adapts the FootyStats API into the normalized
// domain types. It is the secondary provider covering leagues
// football-data.org does not carry, plus the major European leagues as
// fallback. FootyStats payload shapes drift between plans, so parsing
// is deliberately loose: rows are read as maps with aliased keys.
package footystats

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/placarlab/matchodds/internal/domain/football"
	"github.com/placarlab/matchodds/internal/platform/logging"
	"github.com/placarlab/matchodds/internal/provider/fetch"
)

const (
	Name           = "footystats"
	defaultBaseURL = "https://api.footystats.org"
)

// leagueIDs maps normalized codes to FootyStats numeric league ids for
// the competitions only this provider carries.
var leagueIDs = map[string]int{
	"RFPL": 123,
	"UPL":  124,
	"SAL":  125,
	"TUR":  126,
	"CL1":  127,
}

var leagueNames = map[string]string{
	"RFPL": "Russian Premier League",
	"UPL":  "Ukrainian Premier League",
	"SAL":  "Saudi Pro League",
	"TUR":  "Turkish Süper Lig",
	"CL1":  "Chinese Super League",
	"BL1":  "Bundesliga",
	"PL":   "Premier League",
	"FL1":  "Ligue 1",
	"DED":  "Eredivisie",
	"BSA":  "Brasileirão Série A",
	"PD":   "La Liga",
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
	_, ok := leagueNames[football.NormalizeLeagueCode(code)]
	return ok
}

func (a *Adapter) MapLeagueCode(code string) (string, bool) {
	normalized := football.NormalizeLeagueCode(code)
	if _, ok := leagueNames[normalized]; !ok {
		return "", false
	}
	if id, ok := leagueIDs[normalized]; ok {
		return strconv.Itoa(id), true
	}
	return normalized, true
}

func (a *Adapter) Leagues() map[string]string {
	out := make(map[string]string, len(leagueNames))
	for code, name := range leagueNames {
		out[code] = name
	}
	return out
}

func (a *Adapter) FetchStandings(ctx context.Context, code string) ([]football.StandingsRow, error) {
	apiCode, ok := a.MapLeagueCode(code)
	if !ok {
		return nil, crerr.Newf("league %s is not covered by %s", code, Name)
	}

	url := fmt.Sprintf("%s/standings/%s", a.baseURL, apiCode)
	raw, err := a.fetcher.GetJSON(ctx, url, nil, a.headers())
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch standings league=%s", apiCode)
	}

	items, err := extractRows(raw)
	if err != nil {
		return nil, crerr.Wrapf(err, "decode standings league=%s", apiCode)
	}

	rows := make([]football.StandingsRow, 0, len(items))
	for i, item := range items {
		position := getInt(item, "position")
		if position <= 0 {
			position = i + 1
		}
		rows = append(rows, football.StandingsRow{
			Position:     position,
			TeamID:       getInt64Any(item, "team_id", "id"),
			Team:         getStringAny(item, "team", "name"),
			TLA:          getStringAny(item, "tla", "short_name"),
			Played:       getIntAny(item, "played", "playedGames"),
			Won:          getInt(item, "won"),
			Draw:         getInt(item, "draw"),
			Lost:         getInt(item, "lost"),
			GoalsFor:     getIntAny(item, "goalsFor", "gf"),
			GoalsAgainst: getIntAny(item, "goalsAgainst", "ga"),
			GoalDiff:     getIntAny(item, "goalDifference", "gd"),
			Points:       getInt(item, "points"),
			Form:         getString(item, "form"),
		})
	}
	return rows, nil
}

func (a *Adapter) FetchUpcomingMatches(ctx context.Context, code string, window football.FixtureWindow) ([]football.Fixture, error) {
	apiCode, ok := a.MapLeagueCode(code)
	if !ok {
		return nil, crerr.Newf("league %s is not covered by %s", code, Name)
	}

	from, to := window.Resolve(time.Now())
	url := fmt.Sprintf("%s/fixtures/%s", a.baseURL, apiCode)
	params := map[string]string{
		"dateFrom": from.Format("2006-01-02"),
		"dateTo":   to.Format("2006-01-02"),
	}

	raw, err := a.fetcher.GetJSON(ctx, url, params, a.headers())
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch fixtures league=%s", apiCode)
	}

	items, err := extractRows(raw)
	if err != nil {
		return nil, crerr.Wrapf(err, "decode fixtures league=%s", apiCode)
	}

	fixtures := make([]football.Fixture, 0, len(items))
	for _, item := range items {
		kickoff := parseKickoff(getStringAny(item, "date", "utcDate", "datetime"))
		if kickoff == nil {
			a.logger.WarnContext(ctx, "skipping fixture with unparseable kickoff",
				"match_id", getInt64Any(item, "id", "match_id"),
			)
			continue
		}

		status := getString(item, "status")
		if status == "" {
			status = football.StatusScheduled
		}

		var matchday *int
		if round := getIntAny(item, "round", "matchday"); round > 0 {
			matchday = &round
		}

		home := relationMap(item["homeTeam"])
		away := relationMap(item["awayTeam"])
		fixtures = append(fixtures, football.Fixture{
			MatchID:    getInt64Any(item, "id", "match_id"),
			UTCDate:    *kickoff,
			Status:     status,
			Matchday:   matchday,
			HomeTeamID: firstID(getInt64(item, "home_team_id"), getInt64(home, "id")),
			HomeTeam:   firstNonEmpty(getString(item, "home_team"), getString(home, "name")),
			HomeTLA:    firstNonEmpty(getString(item, "home_team_tla"), getString(home, "tla")),
			AwayTeamID: firstID(getInt64(item, "away_team_id"), getInt64(away, "id")),
			AwayTeam:   firstNonEmpty(getString(item, "away_team"), getString(away, "name")),
			AwayTLA:    firstNonEmpty(getString(item, "away_team_tla"), getString(away, "tla")),
		})
	}
	return fixtures, nil
}

func (a *Adapter) headers() map[string]string {
	if a.token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + a.token}
}

// extractRows accepts either {"data": [...]} or a bare top-level array.
func extractRows(raw []byte) ([]map[string]any, error) {
	var envelope struct {
		Data []map[string]any `json:"data"`
	}
	if err := sonic.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		return envelope.Data, nil
	}

	var direct []map[string]any
	if err := sonic.Unmarshal(raw, &direct); err == nil {
		return direct, nil
	}

	return nil, crerr.New("payload is neither a data envelope nor an array")
}

func parseKickoff(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}

func relationMap(raw any) map[string]any {
	value, _ := raw.(map[string]any)
	return value
}

func getString(src map[string]any, key string) string {
	if src == nil {
		return ""
	}
	value, _ := src[key].(string)
	return strings.TrimSpace(value)
}

func getStringAny(src map[string]any, keys ...string) string {
	for _, key := range keys {
		if value := getString(src, key); value != "" {
			return value
		}
	}
	return ""
}

func getInt(src map[string]any, key string) int {
	return int(getInt64(src, key))
}

func getIntAny(src map[string]any, keys ...string) int {
	for _, key := range keys {
		if value := getInt(src, key); value != 0 {
			return value
		}
	}
	return 0
}

func getInt64(src map[string]any, key string) int64 {
	if src == nil {
		return 0
	}
	switch value := src[key].(type) {
	case float64:
		return int64(value)
	case int64:
		return value
	case int:
		return int64(value)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func getInt64Any(src map[string]any, keys ...string) int64 {
	for _, key := range keys {
		if value := getInt64(src, key); value != 0 {
			return value
		}
	}
	return 0
}

func firstID(values ...int64) int64 {
	for _, value := range values {
		if value > 0 {
			return value
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
