package recommend

import (
	"sort"

	"github.com/GeorgiiSadunyan/Recomendation/internal/domain"
)

// ProfileEntry is one rated movie in a user's profile.
type ProfileEntry struct {
	Movie      domain.Movie
	Rating     float64
	GenreScore float64
}

// UserProfile lists the user's rated movies sorted by rating descending,
// ties broken by the user's genre-affinity score for the movie descending.
// Ratings referencing movies absent from the catalog are dropped. Duplicate
// ratings for one movie each produce their own entry.
func (e *Engine) UserProfile(userID int64) ([]ProfileEntry, error) {
	userRatings, err := e.store.ForUser(userID)
	if err != nil {
		return nil, err
	}

	affinity := GenreAffinity(userRatings, e.catalog)

	entries := make([]ProfileEntry, 0, len(userRatings))
	for _, r := range userRatings {
		movie, ok := e.catalog.ByID(r.MovieID)
		if !ok {
			continue
		}
		entries = append(entries, ProfileEntry{
			Movie:      movie,
			Rating:     r.Value,
			GenreScore: genreScore(movie, affinity),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return entries[i].GenreScore > entries[j].GenreScore
	})
	return entries, nil
}
