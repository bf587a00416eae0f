// Package probability prices upcoming fixtures from team strength
// ratings with a Bradley-Terry style model extended with an explicit
// draw mass and a fixed home advantage.
package probability

import (
	"math"
	"sort"

	"github.com/placarlab/matchodds/internal/domain/football"
)

const (
	// BaseDraw is the raw draw mass for evenly matched sides; it decays
	// exponentially as the strength gap grows.
	BaseDraw = 0.24
	// Steepness scales how fast a rating gap converts into win
	// probability.
	Steepness = 1.20
	// HomeAdvantage is added to the rating delta for the hosting side.
	HomeAdvantage = 0.15

	topCut        = 4
	bottomSpan    = 2
	roundDecimals = 3
)

// Outcome is a normalized 3-way distribution for one match.
type Outcome struct {
	Home float64
	Draw float64
	Away float64
}

// MatchOutcome computes the win/draw/win distribution for a single
// pairing of ratings. The three raw masses are renormalized so the
// result always sums to 1.
func MatchOutcome(homeRating, awayRating float64) Outcome {
	delta := (homeRating - awayRating) + HomeAdvantage

	pHomeRaw := 1 / (1 + math.Exp(-Steepness*delta))
	pAwayRaw := 1 - pHomeRaw
	pDrawRaw := BaseDraw * math.Exp(-math.Abs(delta))

	z := pHomeRaw + pAwayRaw + pDrawRaw
	return Outcome{
		Home: pHomeRaw / z,
		Draw: pDrawRaw / z,
		Away: pAwayRaw / z,
	}
}

// RankFixtures prices every fixture whose teams both appear in
// strengths and flags top-versus-bottom pairings. Fixtures referencing
// unknown teams (cup entrants, mid-season joiners) are silently
// skipped. Output is sorted alerts first, then kickoff, then matchday.
func RankFixtures(fixtures []football.Fixture, strengths []football.TeamStrength) []football.MatchProbability {
	if len(fixtures) == 0 || len(strengths) == 0 {
		return nil
	}

	byTeamID := make(map[int64]football.TeamStrength, len(strengths))
	maxPosition := 0
	for _, s := range strengths {
		byTeamID[s.TeamID] = s
		if s.Position > maxPosition {
			maxPosition = s.Position
		}
	}
	bottomCut := maxPosition - bottomSpan

	out := make([]football.MatchProbability, 0, len(fixtures))
	for _, fixture := range fixtures {
		home, homeOK := byTeamID[fixture.HomeTeamID]
		away, awayOK := byTeamID[fixture.AwayTeamID]
		if !homeOK || !awayOK {
			continue
		}

		outcome := MatchOutcome(home.Rating, away.Rating)
		alert := (home.Position <= topCut && away.Position >= bottomCut) ||
			(away.Position <= topCut && home.Position >= bottomCut)

		out = append(out, football.MatchProbability{
			UTCDate:  fixture.UTCDate,
			Matchday: fixture.Matchday,
			Home:     home.Team,
			HomePos:  home.Position,
			Away:     away.Team,
			AwayPos:  away.Position,
			PHome:    round3(outcome.Home),
			PDraw:    round3(outcome.Draw),
			PAway:    round3(outcome.Away),
			Alert:    alert,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Alert != out[j].Alert {
			return out[i].Alert
		}
		if !out[i].UTCDate.Equal(out[j].UTCDate) {
			return out[i].UTCDate.Before(out[j].UTCDate)
		}
		return matchdayValue(out[i].Matchday) < matchdayValue(out[j].Matchday)
	})

	return out
}

func matchdayValue(md *int) int {
	if md == nil {
		return 0
	}
	return *md
}

func round3(v float64) float64 {
	shift := math.Pow(10, roundDecimals)
	return math.Round(v*shift) / shift
}
