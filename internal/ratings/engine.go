// Package ratings turns a standings table into per-team strength
// ratings. Ratings are relative within one table snapshot: points per
// game and goal difference per game are z-scored against the league and
// blended, so the output is always recomputed fresh and never persisted.
package ratings

import (
	"math"
	"sort"

	"github.com/placarlab/matchodds/internal/domain/football"
)

const (
	pointsWeight   = 0.7
	goalDiffWeight = 0.3
)

// Compute derives a strength rating for every standings row. Teams
// without played matches inherit the league median points-per-game and a
// neutral goal-difference rate, and final ratings are clipped to the
// 5th/95th percentile so a single outlier cannot dominate the
// probability model.
func Compute(table []football.StandingsRow) []football.TeamStrength {
	if len(table) == 0 {
		return nil
	}

	n := len(table)
	ppg := make([]float64, n)
	gdg := make([]float64, n)
	undefinedPPG := make([]bool, n)

	defined := make([]float64, 0, n)
	for i, row := range table {
		if row.Played > 0 {
			ppg[i] = float64(row.Points) / float64(row.Played)
			gdg[i] = float64(row.GoalDiff) / float64(row.Played)
			defined = append(defined, ppg[i])
			continue
		}
		undefinedPPG[i] = true
	}

	medianPPG := median(defined)
	for i := range table {
		if undefinedPPG[i] {
			ppg[i] = medianPPG
			gdg[i] = 0
		}
	}

	zPPG := zScores(ppg)
	zGDG := zScores(gdg)

	rating := make([]float64, n)
	for i := range rating {
		rating[i] = pointsWeight*zPPG[i] + goalDiffWeight*zGDG[i]
	}

	lower, upper := percentileBounds(rating)

	out := make([]football.TeamStrength, n)
	for i, row := range table {
		out[i] = football.TeamStrength{
			TeamID:   row.TeamID,
			Team:     row.Team,
			Position: row.Position,
			Points:   row.Points,
			Played:   row.Played,
			GoalDiff: row.GoalDiff,
			Rating:   clamp(rating[i], lower, upper),
		}
	}
	return out
}

// zScores standardizes values against their own mean and population
// standard deviation. A degenerate (constant) series gets a std floor of
// 1 so every z-score collapses to zero instead of dividing by zero.
func zScores(values []float64) []float64 {
	n := float64(len(values))

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / n)
	if std == 0 {
		std = 1
	}

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out
}

// median averages the two middle values for even-length input.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// percentileBounds returns the 5th and 95th percentile rating by sorted
// index, the same cut a table of 20 teams gets in spreadsheets: second
// smallest and largest value.
func percentileBounds(values []float64) (float64, float64) {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	n := len(sorted)
	lowerIdx := int(math.Floor(float64(n) * 0.05))
	upperIdx := int(math.Floor(float64(n) * 0.95))
	if lowerIdx >= n {
		lowerIdx = n - 1
	}
	if upperIdx >= n {
		upperIdx = n - 1
	}
	return sorted[lowerIdx], sorted[upperIdx]
}

func clamp(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}
