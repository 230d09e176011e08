package recommend

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/GeorgiiSadunyan/Recomendation/internal/catalog"
	"github.com/GeorgiiSadunyan/Recomendation/internal/domain"
)

func testCatalog(t *testing.T, contents string) *catalog.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movies.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return cat
}

const scenarioCatalog = "movieId,title,genres\n" +
	"1,A,Comedy\n" +
	"2,B,Drama\n" +
	"3,C,Comedy|Drama\n"

func TestGenreAffinity(t *testing.T) {
	cat := testCatalog(t, scenarioCatalog)
	userRatings := []domain.Rating{
		{UserID: 1, MovieID: 1, Value: 5.0},
		{UserID: 1, MovieID: 2, Value: 1.0},
	}

	affinity := GenreAffinity(userRatings, cat)
	if len(affinity) != 2 {
		t.Fatalf("affinity has %d tags, want 2: %v", len(affinity), affinity)
	}
	if math.Abs(affinity["Comedy"]-5.0) > 1e-9 {
		t.Fatalf("Comedy = %v, want 5.0", affinity["Comedy"])
	}
	if math.Abs(affinity["Drama"]-1.0) > 1e-9 {
		t.Fatalf("Drama = %v, want 1.0", affinity["Drama"])
	}
}

func TestGenreAffinityMultiGenreAddsFullValue(t *testing.T) {
	cat := testCatalog(t, scenarioCatalog)
	userRatings := []domain.Rating{{UserID: 1, MovieID: 3, Value: 4.0}}

	affinity := GenreAffinity(userRatings, cat)
	// No per-item normalization by genre count: both tags get the full 4.0.
	if affinity["Comedy"] != 4.0 || affinity["Drama"] != 4.0 {
		t.Fatalf("affinity = %v, want 4.0 for both tags", affinity)
	}
}

func TestGenreAffinityEmptyRatings(t *testing.T) {
	cat := testCatalog(t, scenarioCatalog)
	affinity := GenreAffinity(nil, cat)
	if len(affinity) != 0 {
		t.Fatalf("affinity for empty ratings = %v, want empty", affinity)
	}
}

func TestGenreAffinityUnknownMovieIgnored(t *testing.T) {
	cat := testCatalog(t, scenarioCatalog)
	userRatings := []domain.Rating{{UserID: 1, MovieID: 999, Value: 5.0}}
	if affinity := GenreAffinity(userRatings, cat); len(affinity) != 0 {
		t.Fatalf("affinity = %v, want empty for unknown movie", affinity)
	}
}
