package recommend

import (
	"errors"
	"math"
	"sort"

	"github.com/GeorgiiSadunyan/Recomendation/internal/domain"
)

// ErrInsufficientData is returned when no ratings exist anywhere, so the
// global mean that anchors the Bayesian average cannot be defined.
var ErrInsufficientData = errors.New("recommend: no ratings available")

// popularityQuantile is the percentile of the per-movie rating-count
// distribution used as the evidence threshold m.
const popularityQuantile = 0.7

// ItemStats holds per-movie aggregates over the full current rating set.
type ItemStats struct {
	AvgRating  float64
	NumRatings int
	Bayesian   float64
}

// ScoreAll computes a Bayesian-smoothed quality score for every movie with
// at least one rating:
//
//	bayesian = n/(n+m) * avg + m/(n+m) * C
//
// where C is the global mean rating and m the 70th percentile of per-movie
// rating counts. Low-evidence movies shrink toward C; high-evidence movies
// keep their own average. m is floored to 1 so the blend never collapses.
func ScoreAll(all []domain.Rating) (map[int64]ItemStats, error) {
	if len(all) == 0 {
		return nil, ErrInsufficientData
	}

	var sum float64
	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	for _, r := range all {
		sum += r.Value
		sums[r.MovieID] += r.Value
		counts[r.MovieID]++
	}
	c := sum / float64(len(all))

	countDist := make([]float64, 0, len(counts))
	for _, n := range counts {
		countDist = append(countDist, float64(n))
	}
	sort.Float64s(countDist)
	m := quantile(countDist, popularityQuantile)
	if m <= 0 {
		m = 1
	}

	stats := make(map[int64]ItemStats, len(counts))
	for movieID, n := range counts {
		avg := sums[movieID] / float64(n)
		weight := float64(n) / (float64(n) + m)
		stats[movieID] = ItemStats{
			AvgRating:  avg,
			NumRatings: n,
			Bayesian:   weight*avg + (1-weight)*c,
		}
	}
	return stats, nil
}

// quantile evaluates the q-th quantile of a sorted sample with linear
// interpolation between the two nearest order statistics.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
