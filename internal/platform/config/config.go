// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and passed to components through
their constructors.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the site.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value store (Redis): sessions and the library read-through cache
	RedisURL string        `env:"REDIS_URL,required"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// Session signing
	SessionSecret string        `env:"SESSION_SECRET,required"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// On-disk asset tree
	MediaRoot      string `env:"MEDIA_ROOT"       envDefault:"./manga"`
	MediaURLPrefix string `env:"MEDIA_URL_PREFIX" envDefault:"/media"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" envDefault:"268435456"`

	// Best-effort image optimisation
	ImageOptimize bool `env:"IMAGE_OPTIMIZE"  envDefault:"true"`
	ImageMaxWidth int  `env:"IMAGE_MAX_WIDTH" envDefault:"1280"`
	ImageQuality  int  `env:"IMAGE_QUALITY"   envDefault:"80"`

	// Library facets
	LatestChaptersPerManga int `env:"LATEST_CHAPTERS_PER_MANGA" envDefault:"3"`

	// Cross-Origin Resource Sharing
	AllowedOriginSuffix string `env:"ALLOWED_ORIGIN_SUFFIX"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if cfg.LatestChaptersPerManga < 1 {
		return nil, fmt.Errorf("config: LATEST_CHAPTERS_PER_MANGA must be positive, got %d", cfg.LatestChaptersPerManga)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// OriginSuffix is the allowed CORS origin suffix outside development.
func (c *Config) OriginSuffix() string {
	return c.AllowedOriginSuffix
}
