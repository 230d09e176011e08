package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/GeorgiiSadunyan/Recomendation/internal/domain"
)

// ErrDataLoad marks a missing or malformed catalog source. Load failures
// are fatal at startup; there is no recovery path.
var ErrDataLoad = errors.New("catalog: data load failed")

// Catalog is the immutable in-memory view of all known movies. It is safe
// for unlimited concurrent readers.
type Catalog struct {
	items  []domain.Movie
	byID   map[int64]domain.Movie
	genres []string
}

// Load reads the movies CSV. The first row is a header naming at least the
// id (movieId or id), title, and genres columns; genres are pipe-delimited
// within a single field, and an empty field means no genres.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDataLoad, path, err)
	}
	defer f.Close()

	return load(f, path)
}

func load(r io.Reader, name string) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header of %s: %v", ErrDataLoad, name, err)
	}

	idCol, titleCol, genresCol := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "movieId", "id":
			idCol = i
		case "title":
			titleCol = i
		case "genres":
			genresCol = i
		}
	}
	if idCol < 0 || titleCol < 0 || genresCol < 0 {
		return nil, fmt.Errorf("%w: %s is missing required columns (movieId, title, genres)", ErrDataLoad, name)
	}

	cat := &Catalog{byID: make(map[int64]domain.Movie)}
	genreSet := make(map[string]struct{})
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s line %d: %v", ErrDataLoad, name, line, err)
		}
		if len(record) <= idCol || len(record) <= titleCol || len(record) <= genresCol {
			return nil, fmt.Errorf("%w: %s line %d has too few fields", ErrDataLoad, name, line)
		}

		id, err := strconv.ParseInt(strings.TrimSpace(record[idCol]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: invalid movie id %q", ErrDataLoad, name, line, record[idCol])
		}

		movie := domain.Movie{
			ID:     id,
			Title:  record[titleCol],
			Genres: SplitGenres(record[genresCol]),
		}
		cat.items = append(cat.items, movie)
		cat.byID[id] = movie
		for _, g := range movie.Genres {
			genreSet[g] = struct{}{}
		}
	}

	cat.genres = make([]string, 0, len(genreSet))
	for g := range genreSet {
		cat.genres = append(cat.genres, g)
	}
	sort.Strings(cat.genres)

	return cat, nil
}

// SplitGenres parses the pipe-delimited genres field. An empty field yields
// no genres; a value without a separator is a single-tag list.
func SplitGenres(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}
	return strings.Split(field, "|")
}

// Items returns all movies in load order. Callers must treat the slice as
// read-only.
func (c *Catalog) Items() []domain.Movie {
	return c.items
}

// Len reports the number of movies in the catalog.
func (c *Catalog) Len() int {
	return len(c.items)
}

// ByID looks up a movie by its identifier.
func (c *Catalog) ByID(id int64) (domain.Movie, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// Genres returns the sorted union of all genre tags across the catalog.
func (c *Catalog) Genres() []string {
	return c.genres
}

// FilterByGenres returns, in load order, every movie whose genre set
// intersects the given tags.
func (c *Catalog) FilterByGenres(tags []string) []domain.Movie {
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[t] = struct{}{}
	}

	var matched []domain.Movie
	for _, m := range c.items {
		if m.HasAnyGenre(want) {
			matched = append(matched, m)
		}
	}
	return matched
}

// Sample returns up to n movies drawn without replacement, for the
// onboarding rating form.
func (c *Catalog) Sample(n int) []domain.Movie {
	if n <= 0 {
		return nil
	}
	if n > len(c.items) {
		n = len(c.items)
	}

	picks := rand.Perm(len(c.items))[:n]
	sample := make([]domain.Movie, 0, n)
	for _, i := range picks {
		sample = append(sample, c.items[i])
	}
	return sample
}
