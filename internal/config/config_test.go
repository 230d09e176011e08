package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("Port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Scoring.BayesianWeight != 0.6 || cfg.Scoring.GenreWeight != 0.4 {
		t.Fatalf("default weights = %v/%v, want 0.6/0.4", cfg.Scoring.BayesianWeight, cfg.Scoring.GenreWeight)
	}
	if cfg.Scoring.TopN != 5 {
		t.Fatalf("TopN = %d, want 5", cfg.Scoring.TopN)
	}
	if cfg.Scoring.OnboardingSize != 10 {
		t.Fatalf("OnboardingSize = %d, want 10", cfg.Scoring.OnboardingSize)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	payload := `
server:
  port: "9090"
data:
  moviesPath: /data/movies.csv
scoring:
  topN: 8
`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("Port = %s, want 9090", cfg.Server.Port)
	}
	if cfg.Data.MoviesPath != "/data/movies.csv" {
		t.Fatalf("MoviesPath = %s", cfg.Data.MoviesPath)
	}
	if cfg.Scoring.TopN != 8 {
		t.Fatalf("TopN = %d, want 8", cfg.Scoring.TopN)
	}
	// Untouched keys keep their defaults.
	if cfg.Data.RatingsPath != "ratings.csv" {
		t.Fatalf("RatingsPath = %s, want default", cfg.Data.RatingsPath)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("MOVIES_PATH", "/env/movies.csv")
	t.Setenv("SERVER_READ_TIMEOUT", "30")
	t.Setenv("POSTERS_URL", "https://posters.example.com")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("Port = %s, want 7070", cfg.Server.Port)
	}
	if cfg.Data.MoviesPath != "/env/movies.csv" {
		t.Fatalf("MoviesPath = %s", cfg.Data.MoviesPath)
	}
	if cfg.Server.ReadTimeoutSecs != 30 {
		t.Fatalf("ReadTimeoutSecs = %d, want 30", cfg.Server.ReadTimeoutSecs)
	}
	if cfg.Posters.URL != "https://posters.example.com" {
		t.Fatalf("Posters.URL = %s", cfg.Posters.URL)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load() expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing movies path", func(c *Config) { c.Data.MoviesPath = "" }, "moviesPath"},
		{"missing ratings path", func(c *Config) { c.Data.RatingsPath = "" }, "ratingsPath"},
		{"missing log path", func(c *Config) { c.Data.NewRatingsPath = "" }, "newRatingsPath"},
		{"negative weight", func(c *Config) { c.Scoring.GenreWeight = -0.1 }, "non-negative"},
		{"zero weights", func(c *Config) { c.Scoring.BayesianWeight = 0; c.Scoring.GenreWeight = 0 }, "zero"},
		{"bad topN", func(c *Config) { c.Scoring.TopN = 0 }, "topN"},
		{"bad onboarding size", func(c *Config) { c.Scoring.OnboardingSize = -1 }, "onboardingSize"},
		{"posters without timeout", func(c *Config) { c.Posters.URL = "https://x"; c.Posters.TimeoutSecs = 0 }, "timeoutSecs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}
