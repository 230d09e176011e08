package domain

// Rating represents a single user's rating for a movie. Timestamp is an
// opaque string carried through from the source files and never interpreted.
type Rating struct {
	UserID    int64
	MovieID   int64
	Value     float64
	Timestamp string
}
