package httpserver

import (
	"strings"
	"testing"
)

func FuzzParseGenresParam(f *testing.F) {
	seeds := []string{
		"Comedy",
		"Comedy,Drama",
		"Sci-Fi%2CComedy",
		"%zz",
		"",
		",,,",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		genres, err := parseGenresParam(raw)
		if err != nil {
			return
		}
		if len(genres) == 0 {
			t.Fatalf("nil error with zero genres for %q", raw)
		}
		for _, g := range genres {
			if g == "" || g != strings.TrimSpace(g) {
				t.Fatalf("untrimmed or empty genre %q parsed from %q", g, raw)
			}
		}
	})
}
