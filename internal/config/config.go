// Package config defines engine configuration and its loading.
//
// Values are layered: defaults from New, an optional YAML file named by
// NETSTATS_CONFIG, then NETSTATS_ environment variables.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// CORSOrigins lists the origins allowed to call the API.
	CORSOrigins []string `koanf:"cors_origins"`

	// WorkerCount sets the number of per-game fan-out workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the fan-out job queue.
	QueueSize int `koanf:"queue_size"`

	// RecentGames is N for the last-N time range.
	RecentGames int `koanf:"recent_games"`

	// ForfeitGoals is the canonical forfeit margin.
	ForfeitGoals int `koanf:"forfeit_goals"`

	// RatingBase and RatingWeights shape the fallback player rating.
	RatingBase    float64            `koanf:"rating_base"`
	RatingWeights map[string]float64 `koanf:"rating_weights"`

	// CacheBackend is memory, redis or none.
	CacheBackend    string `koanf:"cache_backend"`
	CacheTTLSeconds int    `koanf:"cache_ttl_seconds"`
	RedisURL        string `koanf:"redis_url"`

	// DatabasePath points at a SQLite file. Empty keeps data in memory.
	DatabasePath string `koanf:"database_path"`

	// SeedPath names a JSON dataset imported into the store at startup.
	SeedPath string `koanf:"seed_path"`

	// MaxBatchGames caps the number of game ids per batch request.
	MaxBatchGames int `koanf:"max_batch_games"`
}

// New creates a Config with defaults. The context is reserved for loaders
// that need one.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":9080",
		CORSOrigins:  []string{"*"},
		WorkerCount:  runtime.NumCPU(),
		QueueSize:    1024,
		RecentGames:  5,
		ForfeitGoals: 10,
		RatingBase:   5,
		RatingWeights: map[string]float64{
			"goals":      0.2,
			"rebounds":   0.3,
			"intercepts": 0.4,
		},
		CacheBackend:    CacheMemory,
		CacheTTLSeconds: 300,
		MaxBatchGames:   200,
	}
}

// CacheTTL returns the cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.RecentGames < 1:
		return fmt.Errorf("%w: recent_games must be positive", ErrInvalidConfig)
	case c.ForfeitGoals < 1:
		return fmt.Errorf("%w: forfeit_goals must be positive", ErrInvalidConfig)
	case c.MaxBatchGames < 1:
		return fmt.Errorf("%w: max_batch_games must be positive", ErrInvalidConfig)
	case c.CacheTTLSeconds < 0:
		return fmt.Errorf("%w: cache_ttl_seconds must not be negative", ErrInvalidConfig)
	}
	switch c.CacheBackend {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: redis_url is required for the redis cache", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache_backend %q", ErrInvalidConfig, c.CacheBackend)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
