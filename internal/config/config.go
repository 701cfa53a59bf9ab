// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all service settings. Defaults target the Western US GEFS
// subset the dashboard ships with.
type Config struct {
	Addr        string        `env:"ADDR" envDefault:":8080"`
	DataPath    string        `env:"GEFS_DATA_PATH" envDefault:"./cache/gefs_subset.nc"`
	CitiesPath  string        `env:"CITIES_PATH"`
	CORSOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	CacheTTL    time.Duration `env:"CACHE_TTL" envDefault:"1h"`
	Debug       bool          `env:"DEBUG"`

	// Bounding box in degrees; defaults cover the Western US region
	// (30-50N, 125-100W).
	LatMin float64 `env:"LAT_MIN" envDefault:"30.0"`
	LatMax float64 `env:"LAT_MAX" envDefault:"50.0"`
	LonMin float64 `env:"LON_MIN" envDefault:"-125.0"`
	LonMax float64 `env:"LON_MAX" envDefault:"-100.0"`
}

// Load parses configuration from the environment, applying defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.DataPath == "" {
		return nil, errors.New("GEFS_DATA_PATH is required")
	}
	if cfg.LatMin >= cfg.LatMax {
		return nil, errors.New("LAT_MIN must be less than LAT_MAX")
	}
	if cfg.LonMin >= cfg.LonMax {
		return nil, errors.New("LON_MIN must be less than LON_MAX")
	}
	if cfg.CacheTTL < 0 {
		return nil, errors.New("CACHE_TTL must not be negative")
	}
	return &cfg, nil
}
