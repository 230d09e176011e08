package domain

// Movie represents a single catalog entry loaded from the movies CSV.
// Instances are immutable after load; the Genres slice must not be mutated.
type Movie struct {
	ID     int64
	Title  string
	Genres []string
}

// HasAnyGenre reports whether the movie carries at least one of the given tags.
func (m Movie) HasAnyGenre(tags map[string]struct{}) bool {
	for _, g := range m.Genres {
		if _, ok := tags[g]; ok {
			return true
		}
	}
	return false
}
