package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config captures all runtime configuration. Values come from an optional
// YAML file overlaid on defaults, with environment variables taking
// precedence over both.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	Posters PostersConfig `yaml:"posters"`
	Scoring ScoringConfig `yaml:"scoring"`
}

type ServerConfig struct {
	Port             string `yaml:"port"`
	ReadTimeoutSecs  int    `yaml:"readTimeoutSecs"`
	WriteTimeoutSecs int    `yaml:"writeTimeoutSecs"`
	IdleTimeoutSecs  int    `yaml:"idleTimeoutSecs"`
}

type DataConfig struct {
	// MoviesPath and RatingsPath are read once at startup; NewRatingsPath
	// is the append-only incremental log shared across sessions.
	MoviesPath     string `yaml:"moviesPath"`
	RatingsPath    string `yaml:"ratingsPath"`
	NewRatingsPath string `yaml:"newRatingsPath"`
}

type PostersConfig struct {
	// URL of the poster metadata API. Empty disables enrichment.
	URL         string `yaml:"url"`
	APIKey      string `yaml:"apiKey"`
	TimeoutSecs int    `yaml:"timeoutSecs"`
}

type ScoringConfig struct {
	BayesianWeight float64 `yaml:"bayesianWeight"`
	GenreWeight    float64 `yaml:"genreWeight"`
	TopN           int     `yaml:"topN"`
	OnboardingSize int     `yaml:"onboardingSize"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:             "8080",
			ReadTimeoutSecs:  15,
			WriteTimeoutSecs: 15,
			IdleTimeoutSecs:  60,
		},
		Data: DataConfig{
			MoviesPath:     "movies.csv",
			RatingsPath:    "ratings.csv",
			NewRatingsPath: "new_ratings.csv",
		},
		Posters: PostersConfig{TimeoutSecs: 5},
		Scoring: ScoringConfig{
			BayesianWeight: 0.6,
			GenreWeight:    0.4,
			TopN:           5,
			OnboardingSize: 10,
		},
	}
}

// Load builds the configuration from an optional YAML file at path (empty
// or missing file means defaults), applies environment overrides, and
// validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		payload, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(payload, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.resolveEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) resolveEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Data.MoviesPath, "MOVIES_PATH")
	setString(&c.Data.RatingsPath, "RATINGS_PATH")
	setString(&c.Data.NewRatingsPath, "NEW_RATINGS_PATH")
	setString(&c.Posters.URL, "POSTERS_URL")
	setString(&c.Posters.APIKey, "POSTERS_API_KEY")
	setInt(&c.Server.ReadTimeoutSecs, "SERVER_READ_TIMEOUT")
	setInt(&c.Server.WriteTimeoutSecs, "SERVER_WRITE_TIMEOUT")
	setInt(&c.Server.IdleTimeoutSecs, "SERVER_IDLE_TIMEOUT")
	setInt(&c.Posters.TimeoutSecs, "POSTERS_TIMEOUT_SECS")
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Data.MoviesPath == "" {
		return fmt.Errorf("data moviesPath is required")
	}
	if c.Data.RatingsPath == "" {
		return fmt.Errorf("data ratingsPath is required")
	}
	if c.Data.NewRatingsPath == "" {
		return fmt.Errorf("data newRatingsPath is required")
	}
	if c.Scoring.BayesianWeight < 0 || c.Scoring.GenreWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if c.Scoring.BayesianWeight+c.Scoring.GenreWeight <= 0 {
		return fmt.Errorf("scoring weights must not both be zero")
	}
	if c.Scoring.TopN <= 0 {
		return fmt.Errorf("scoring topN must be positive")
	}
	if c.Scoring.OnboardingSize <= 0 {
		return fmt.Errorf("scoring onboardingSize must be positive")
	}
	if c.Posters.URL != "" && c.Posters.TimeoutSecs <= 0 {
		return fmt.Errorf("posters timeoutSecs must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

func setInt(dst *int, key string) {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			*dst = parsed
		}
	}
}
