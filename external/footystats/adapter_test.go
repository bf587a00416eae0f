package footystats

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

func TestMapLeagueCode(t *testing.T) {
	t.Parallel()

	adapter := New(Config{Fetcher: fetch.NewClient(fetch.Config{Logger: logging.NewNop()})})

	if mapped, ok := adapter.MapLeagueCode("RFPL"); !ok || mapped != "123" {
		t.Fatalf("RFPL should map to numeric id, got %q ok=%v", mapped, ok)
	}
	if mapped, ok := adapter.MapLeagueCode("pl"); !ok || mapped != "PL" {
		t.Fatalf("major leagues keep their code, got %q ok=%v", mapped, ok)
	}
	if _, ok := adapter.MapLeagueCode("WC"); ok {
		t.Fatal("WC is not covered by footystats")
	}
}

func TestFetchStandings_ParsesDataEnvelopeWithAliasedKeys(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/standings/123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sekret" {
			t.Errorf("missing bearer auth, got %q", got)
		}
		_, _ = w.Write([]byte(`{
			"data": [
				{"position": 1, "team_id": 900, "team": "Zenit", "short_name": "ZEN", "played": 12, "won": 9, "draw": 2, "lost": 1, "gf": 28, "ga": 9, "gd": 19, "points": 29, "form": "WWDWW"},
				{"id": 901, "name": "Spartak", "playedGames": 12, "won": 8, "draw": 2, "lost": 2, "goalsFor": 25, "goalsAgainst": 12, "goalDifference": 13, "points": 26}
			]
		}`))
	}))
	defer srv.Close()

	rows, err := newTestAdapter(t, srv, "sekret").FetchStandings(context.Background(), "RFPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Team != "Zenit" || first.TLA != "ZEN" || first.GoalDiff != 19 {
		t.Fatalf("unexpected mapping: %+v", first)
	}
	second := rows[1]
	if second.Position != 2 {
		t.Fatalf("missing position must fall back to list index, got %d", second.Position)
	}
	if second.Team != "Spartak" || second.TeamID != 901 || second.Played != 12 || second.GoalDiff != 13 {
		t.Fatalf("aliased keys not applied: %+v", second)
	}
}

func TestFetchStandings_ParsesBareArray(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"position": 1, "team_id": 7, "team": "Galatasaray", "points": 30}]`))
	}))
	defer srv.Close()

	rows, err := newTestAdapter(t, srv, "").FetchStandings(context.Background(), "TUR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Team != "Galatasaray" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestFetchUpcomingMatches_MapsBothPayloadShapes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fixtures/126" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("dateFrom") == "" || query.Get("dateTo") == "" {
			t.Error("date window params are required")
		}
		_, _ = w.Write([]byte(`{
			"data": [
				{"match_id": 11, "date": "2026-09-06 18:00:00", "round": 4, "home_team_id": 61, "home_team": "Fenerbahçe", "away_team_id": 62, "away_team": "Beşiktaş"},
				{"id": 12, "utcDate": "2026-09-07T16:00:00Z", "homeTeam": {"id": 63, "name": "Trabzonspor", "tla": "TRA"}, "awayTeam": {"id": 64, "name": "Başakşehir"}},
				{"id": 13, "date": "garbage"}
			]
		}`))
	}))
	defer srv.Close()

	fixtures, err := newTestAdapter(t, srv, "").FetchUpcomingMatches(context.Background(), "TUR", football.FixtureWindow{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fixtures) != 2 {
		t.Fatalf("unparseable kickoff must be skipped, got %d fixtures", len(fixtures))
	}

	flat := fixtures[0]
	if flat.MatchID != 11 || flat.HomeTeam != "Fenerbahçe" || flat.AwayTeamID != 62 {
		t.Fatalf("flat shape not mapped: %+v", flat)
	}
	if flat.Status != football.StatusScheduled {
		t.Fatalf("missing status must default to SCHEDULED, got %q", flat.Status)
	}
	if flat.Matchday == nil || *flat.Matchday != 4 {
		t.Fatalf("round not mapped to matchday: %+v", flat.Matchday)
	}

	nested := fixtures[1]
	if nested.HomeTeam != "Trabzonspor" || nested.HomeTLA != "TRA" || nested.AwayTeam != "Başakşehir" {
		t.Fatalf("nested shape not mapped: %+v", nested)
	}
}
