package footballdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/placarlab/matchodds/internal/domain/football"
	"github.com/placarlab/matchodds/internal/platform/logging"
	"github.com/placarlab/matchodds/internal/provider/fetch"
)

func newTestAdapter(t *testing.T, srv *httptest.Server, token string) *Adapter {
	t.Helper()
	return New(Config{
		BaseURL: srv.URL,
		Token:   token,
		Fetcher: fetch.NewClient(fetch.Config{HTTPClient: srv.Client(), MaxAttempts: 1, Logger: logging.NewNop()}),
		Logger:  logging.NewNop(),
	})
}

func TestFetchStandings_KeepsOnlyOverallTable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/competitions/PL/standings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Auth-Token"); got != "secret" {
			t.Errorf("missing auth header, got %q", got)
		}
		_, _ = w.Write([]byte(`{
			"standings": [
				{"type": "TOTAL", "table": [
					{"position": 1, "team": {"id": 57, "name": "Arsenal", "tla": "ARS"}, "playedGames": 10, "won": 8, "draw": 1, "lost": 1, "goalsFor": 24, "goalsAgainst": 8, "goalDifference": 16, "points": 25, "form": "W,W,D,W,W"},
					{"position": 2, "team": {"id": 65, "name": "Manchester City", "tla": "MCI"}, "playedGames": 10, "won": 7, "draw": 2, "lost": 1, "goalsFor": 22, "goalsAgainst": 10, "goalDifference": 12, "points": 23, "form": "W,D,W,W,L"}
				]},
				{"type": "HOME", "table": [
					{"position": 1, "team": {"id": 57, "name": "Arsenal", "tla": "ARS"}, "playedGames": 5, "points": 13},
					{"position": 2, "team": {"id": 65, "name": "Manchester City", "tla": "MCI"}, "playedGames": 5, "points": 12}
				]},
				{"type": "AWAY", "table": [
					{"position": 1, "team": {"id": 65, "name": "Manchester City", "tla": "MCI"}, "playedGames": 5, "points": 11},
					{"position": 2, "team": {"id": 57, "name": "Arsenal", "tla": "ARS"}, "playedGames": 5, "points": 12}
				]}
			]
		}`))
	}))
	defer srv.Close()

	rows, err := newTestAdapter(t, srv, "secret").FetchStandings(context.Background(), "pl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The HOME and AWAY splits must vanish: one row per team, overall
	// stats, positions unique.
	if len(rows) != 2 {
		t.Fatalf("expected only the 2 overall rows, got %d", len(rows))
	}
	seen := make(map[int64]bool, len(rows))
	for _, row := range rows {
		if seen[row.TeamID] {
			t.Fatalf("team %d appears twice", row.TeamID)
		}
		seen[row.TeamID] = true
	}
	first := rows[0]
	if first.Team != "Arsenal" || first.Position != 1 || first.Played != 10 || first.Points != 25 {
		t.Fatalf("overall stats must survive: %+v", first)
	}
	if first.GoalDiff != 16 || first.TLA != "ARS" {
		t.Fatalf("unexpected mapping: %+v", first)
	}
	if rows[1].Team != "Manchester City" || rows[1].Points != 23 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestFetchStandings_KeepsEveryBlockWithoutTotal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"standings": [
				{"type": "REGULAR_SEASON", "table": [
					{"position": 1, "team": {"id": 10, "name": "Santos"}, "playedGames": 8, "points": 20}
				]},
				{"type": "", "table": [
					{"position": 2, "team": {"id": 11, "name": "Flamengo"}, "playedGames": 8, "points": 18}
				]}
			]
		}`))
	}))
	defer srv.Close()

	rows, err := newTestAdapter(t, srv, "").FetchStandings(context.Background(), "BSA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("without a TOTAL block every block must survive, got %d rows", len(rows))
	}
}

func TestFetchStandings_ChampionsLeagueGlobalRerank(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"standings": [
				{"type": "TOTAL", "group": "Group A", "table": [
					{"position": 1, "team": {"id": 1, "name": "Zeta FC"}, "points": 10, "goalDifference": 5, "goalsFor": 12},
					{"position": 2, "team": {"id": 2, "name": "Beta United"}, "points": 8, "goalDifference": 3, "goalsFor": 9}
				]},
				{"type": "TOTAL", "group": "Group B", "table": [
					{"position": 1, "team": {"id": 3, "name": "Alpha Town"}, "points": 10, "goalDifference": 3, "goalsFor": 11},
					{"position": 2, "team": {"id": 4, "name": "Delta City"}, "points": 8, "goalDifference": 5, "goalsFor": 9}
				]}
			]
		}`))
	}))
	defer srv.Close()

	rows, err := newTestAdapter(t, srv, "").FetchStandings(context.Background(), "CL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []struct {
		team     string
		position int
	}{
		{"Zeta FC", 1},      // 10 pts, gd 5
		{"Alpha Town", 2},   // 10 pts, gd 3
		{"Delta City", 3},   // 8 pts, gd 5
		{"Beta United", 4},  // 8 pts, gd 3
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, expected := range want {
		if rows[i].Team != expected.team || rows[i].Position != expected.position {
			t.Fatalf("rank %d: got %s at position %d, want %s at %d",
				i, rows[i].Team, rows[i].Position, expected.team, expected.position)
		}
	}
}

func TestFetchUpcomingMatches_MapsFixtureFields(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/competitions/BL1/matches" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		query := r.URL.Query()
		if got := query.Get("status"); got != "SCHEDULED,TIMED" {
			t.Errorf("unexpected status filter %q", got)
		}
		if query.Get("dateFrom") == "" || query.Get("dateTo") == "" {
			t.Error("date window params are required")
		}
		_, _ = w.Write([]byte(`{
			"matches": [
				{
					"id": 501, "utcDate": "2026-09-05T14:30:00Z", "status": "TIMED", "matchday": 3,
					"homeTeam": {"id": 5, "name": "Bayern München", "tla": "FCB"},
					"awayTeam": {"id": 4, "name": "Borussia Dortmund", "tla": "BVB"}
				},
				{
					"id": 502, "utcDate": "not-a-date", "status": "SCHEDULED",
					"homeTeam": {"id": 6, "name": "Leverkusen"},
					"awayTeam": {"id": 7, "name": "Leipzig"}
				}
			]
		}`))
	}))
	defer srv.Close()

	fixtures, err := newTestAdapter(t, srv, "").FetchUpcomingMatches(context.Background(), "BL1", football.FixtureWindow{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fixtures) != 1 {
		t.Fatalf("unparseable kickoff must be skipped, got %d fixtures", len(fixtures))
	}
	fixture := fixtures[0]
	if fixture.MatchID != 501 || fixture.HomeTeam != "Bayern München" || fixture.AwayTLA != "BVB" {
		t.Fatalf("unexpected mapping: %+v", fixture)
	}
	if fixture.Matchday == nil || *fixture.Matchday != 3 {
		t.Fatalf("matchday not mapped: %+v", fixture.Matchday)
	}
}

func TestListCompetitions_MapsCatalog(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/competitions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"competitions": [
				{"code": "PL", "name": "Premier League", "type": "LEAGUE", "plan": "TIER_ONE", "emblem": "https://crests.example/pl.png", "area": {"name": "England", "code": "ENG"}}
			]
		}`))
	}))
	defer srv.Close()

	competitions, err := newTestAdapter(t, srv, "").ListCompetitions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(competitions) != 1 {
		t.Fatalf("expected 1 competition, got %d", len(competitions))
	}
	got := competitions[0]
	if got.Code != "PL" || got.AreaName != "England" || got.Plan != "TIER_ONE" {
		t.Fatalf("unexpected mapping: %+v", got)
	}
}

func TestSupportsLeague(t *testing.T) {
	t.Parallel()

	adapter := New(Config{Fetcher: fetch.NewClient(fetch.Config{Logger: logging.NewNop()})})
	if !adapter.SupportsLeague("pl") {
		t.Fatal("normalized codes must be supported")
	}
	if adapter.SupportsLeague("RFPL") {
		t.Fatal("RFPL belongs to other providers")
	}
	if _, ok := adapter.MapLeagueCode("XYZ"); ok {
		t.Fatal("unknown league must not map")
	}
}
