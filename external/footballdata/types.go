package footballdata

type teamRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	TLA  string `json:"tla"`
}

type tableRow struct {
	Position       int     `json:"position"`
	Team           teamRef `json:"team"`
	PlayedGames    int     `json:"playedGames"`
	Won            int     `json:"won"`
	Draw           int     `json:"draw"`
	Lost           int     `json:"lost"`
	GoalsFor       int     `json:"goalsFor"`
	GoalsAgainst   int     `json:"goalsAgainst"`
	GoalDifference int     `json:"goalDifference"`
	Points         int     `json:"points"`
	Form           string  `json:"form"`
}

type standingBlock struct {
	Type  string     `json:"type"`
	Stage string     `json:"stage"`
	Group string     `json:"group"`
	Table []tableRow `json:"table"`
}

type standingsEnvelope struct {
	Standings []standingBlock `json:"standings"`
}

type matchItem struct {
	ID       int64   `json:"id"`
	UTCDate  string  `json:"utcDate"`
	Status   string  `json:"status"`
	Matchday *int    `json:"matchday"`
	HomeTeam teamRef `json:"homeTeam"`
	AwayTeam teamRef `json:"awayTeam"`
	Venue    string  `json:"venue"`
}

type matchesEnvelope struct {
	Matches []matchItem `json:"matches"`
}

type competitionArea struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type competitionItem struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	Emblem string          `json:"emblem"`
	Plan   string          `json:"plan"`
	Area   competitionArea `json:"area"`
}

type competitionsEnvelope struct {
	Competitions []competitionItem `json:"competitions"`
}
