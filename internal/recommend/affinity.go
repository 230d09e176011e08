package recommend

import (
	"github.com/GeorgiiSadunyan/Recomendation/internal/catalog"
	"github.com/GeorgiiSadunyan/Recomendation/internal/domain"
)

// GenreAffinity derives a user's per-genre preference weights from their own
// ratings: every rating adds its full value to each genre tag on the rated
// movie, with no normalization by genre count. Ratings referencing movies
// absent from the catalog contribute nothing. An empty input yields an empty
// map, which is the cold-start signal consumed by the engine.
func GenreAffinity(userRatings []domain.Rating, cat *catalog.Catalog) map[string]float64 {
	affinity := make(map[string]float64)
	for _, r := range userRatings {
		movie, ok := cat.ByID(r.MovieID)
		if !ok {
			continue
		}
		for _, g := range movie.Genres {
			affinity[g] += r.Value
		}
	}
	return affinity
}

// genreScore sums a movie's genre weights under the given affinity map.
// Unknown tags count as zero.
func genreScore(movie domain.Movie, affinity map[string]float64) float64 {
	var score float64
	for _, g := range movie.Genres {
		score += affinity[g]
	}
	return score
}
