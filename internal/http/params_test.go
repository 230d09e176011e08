package httpserver

import (
	"reflect"
	"testing"
)

func TestParseGenresParam(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{"single", "Comedy", []string{"Comedy"}, false},
		{"multi", "Comedy,Drama", []string{"Comedy", "Drama"}, false},
		{"trimmed", " Comedy , Drama ", []string{"Comedy", "Drama"}, false},
		{"escaped", "Sci-Fi%2CComedy", []string{"Sci-Fi", "Comedy"}, false},
		{"empty", "", nil, true},
		{"only separators", ",,,", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseGenresParam(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseGenresParam(%q) expected error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseGenresParam(%q) unexpected error: %v", tt.raw, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("parseGenresParam(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseLimitParam(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		fallback int
		want     int
		wantErr  bool
	}{
		{"empty uses fallback", "", 5, 5, false},
		{"explicit", "12", 5, 12, false},
		{"capped", "500", 5, maxSearchLimit, false},
		{"zero", "0", 5, 0, true},
		{"negative", "-3", 5, 0, true},
		{"not a number", "abc", 5, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLimitParam(tt.raw, tt.fallback)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseLimitParam(%q) expected error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseLimitParam(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("parseLimitParam(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAllowedRatings(t *testing.T) {
	valid := []float64{0.5, 1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0, 4.5, 5.0}
	for _, rating := range valid {
		if _, ok := allowedRatings[rating]; !ok {
			t.Fatalf("rating %v should be allowed", rating)
		}
	}

	invalid := []float64{0, 0.25, 3.7, 5.5}
	for _, rating := range invalid {
		if _, ok := allowedRatings[rating]; ok {
			t.Fatalf("rating %v should not be allowed", rating)
		}
	}
}
