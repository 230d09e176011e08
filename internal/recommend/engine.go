package recommend

import (
	"context"
	"errors"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/GeorgiiSadunyan/Recomendation/internal/catalog"
	"github.com/GeorgiiSadunyan/Recomendation/internal/domain"
	"github.com/GeorgiiSadunyan/Recomendation/internal/ratings"
)

// ErrNoCandidates is returned when the computation is valid but zero movies
// are eligible for the user. A brand-new rater has an empty affinity map,
// so nothing passes the genre-overlap filter; an onboarding flow upstream
// is expected to seed ratings first.
var ErrNoCandidates = errors.New("recommend: no eligible candidates")

// Weights blends the two normalized metrics into the final score.
type Weights struct {
	Bayesian float64
	Genre    float64
}

// DefaultWeights keeps the 60/40 popularity-to-affinity blend.
var DefaultWeights = Weights{Bayesian: 0.6, Genre: 0.4}

// DefaultTopN bounds the recommendation list when the caller does not.
const DefaultTopN = 5

// Recommendation is one ranked candidate with its scoring breakdown.
type Recommendation struct {
	Movie      domain.Movie
	Bayesian   float64
	GenreScore float64
	FinalScore float64
}

// Engine combines the catalog, the rating store, genre affinity, and
// Bayesian popularity into ranked recommendation lists.
type Engine struct {
	catalog *catalog.Catalog
	store   *ratings.Store
	weights Weights
	logger  *log.Logger
}

// NewEngine wires an engine over the shared catalog and rating store.
func NewEngine(cat *catalog.Catalog, store *ratings.Store, weights Weights, logger *log.Logger) *Engine {
	if weights.Bayesian <= 0 && weights.Genre <= 0 {
		weights = DefaultWeights
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{catalog: cat, store: store, weights: weights, logger: logger}
}

// Recommend returns up to topN movies the user has not rated, ranked by the
// weighted blend of normalized Bayesian popularity and genre affinity. Ties
// keep catalog order. Candidates must share at least one genre with the
// user's affinity map; a candidate nobody has rated yet scores the global
// mean, which is the n=0 limit of the Bayesian blend.
func (e *Engine) Recommend(ctx context.Context, userID int64, topN int) ([]Recommendation, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	all, err := e.store.Current()
	if err != nil {
		return nil, err
	}

	userRatings := make([]domain.Rating, 0)
	var valueSum float64
	for _, r := range all {
		valueSum += r.Value
		if r.UserID == userID {
			userRatings = append(userRatings, r)
		}
	}
	var globalMean float64
	if len(all) > 0 {
		globalMean = valueSum / float64(len(all))
	}

	// Popularity runs over the whole rating set and affinity over the
	// user's slice; neither depends on the other, so compute them in
	// parallel.
	var (
		affinity map[string]float64
		stats    map[int64]ItemStats
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		affinity = GenreAffinity(userRatings, e.catalog)
		return nil
	})
	g.Go(func() error {
		var err error
		stats, err = ScoreAll(all)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rated := make(map[int64]struct{}, len(userRatings))
	for _, r := range userRatings {
		rated[r.MovieID] = struct{}{}
	}
	affinityTags := make(map[string]struct{}, len(affinity))
	for tag := range affinity {
		affinityTags[tag] = struct{}{}
	}

	var candidates []Recommendation
	for _, movie := range e.catalog.Items() {
		if _, seen := rated[movie.ID]; seen {
			continue
		}
		if !movie.HasAnyGenre(affinityTags) {
			continue
		}
		bayesian := globalMean
		if st, ok := stats[movie.ID]; ok {
			bayesian = st.Bayesian
		}
		candidates = append(candidates, Recommendation{
			Movie:      movie,
			Bayesian:   bayesian,
			GenreScore: genreScore(movie, affinity),
		})
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	bayesianNorm := normalizer(candidates, func(r Recommendation) float64 { return r.Bayesian })
	genreNorm := normalizer(candidates, func(r Recommendation) float64 { return r.GenreScore })
	for i := range candidates {
		c := &candidates[i]
		c.FinalScore = e.weights.Bayesian*bayesianNorm(c.Bayesian) + e.weights.Genre*genreNorm(c.GenreScore)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].FinalScore > candidates[j].FinalScore
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates, nil
}

// normalizer builds a min-max normalization over the candidate set for one
// metric. A uniform candidate set maps every value to the neutral 0.5
// instead of dividing by zero.
func normalizer(candidates []Recommendation, metric func(Recommendation) float64) func(float64) float64 {
	min, max := metric(candidates[0]), metric(candidates[0])
	for _, c := range candidates[1:] {
		v := metric(c)
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return func(float64) float64 { return 0.5 }
	}
	span := max - min
	return func(v float64) float64 { return (v - min) / span }
}
