// Package config defines service configuration and how it is loaded.
package config

import (
	"context"
	"runtime"

	"github.com/okian/swimchamps/internal/domain/leaderboard"
	"github.com/okian/swimchamps/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// WorkerCount bounds how many swimmers are scored concurrently.
	WorkerCount int `koanf:"worker_count"`

	// Selection policy.
	MaxSelectedEvents int `koanf:"max_selected_events"`
	YoungAgeLimit     int `koanf:"young_age_limit"`
	YoungCategoryCap  int `koanf:"young_category_cap"`
	CategoryCap       int `koanf:"category_cap"`

	// MinCategories is the default leaderboard eligibility filter. 0 shows everyone.
	MinCategories int `koanf:"min_categories_for_eligibility"`

	// ChampionshipMinCategories is the trophy eligibility threshold.
	ChampionshipMinCategories int `koanf:"championship_min_categories"`

	// AgeBucketPreset names a built-in bucket table; AgeBuckets overrides it.
	AgeBucketPreset string                  `koanf:"age_bucket_preset"`
	AgeBuckets      []leaderboard.AgeBucket `koanf:"age_buckets"`

	// MaxLeaderboardLimit caps GET /meets/{id}/leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// DatabasePath selects the SQLite store. Empty keeps meets in memory.
	DatabasePath string `koanf:"database_path"`

	// MaxSnapshotVersions bounds stored versions per meet. 0 keeps all.
	MaxSnapshotVersions int `koanf:"max_snapshot_versions"`

	// CORSOrigins lists allowed browser origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// New creates a Config holding the defaults.
func New(_ context.Context) *Config {
	p := scoring.DefaultPolicy()
	return &Config{
		LogLevel:                  "info",
		LogFormat:                 "text",
		Addr:                      ":9080",
		WorkerCount:               runtime.NumCPU(),
		MaxSelectedEvents:         p.MaxSelected,
		YoungAgeLimit:             p.YoungAgeLimit,
		YoungCategoryCap:          p.YoungCategoryCap,
		CategoryCap:               p.CategoryCap,
		MinCategories:             0,
		ChampionshipMinCategories: leaderboard.DefaultChampionshipMinCategories,
		AgeBucketPreset:           leaderboard.PresetSingleYear,
		MaxLeaderboardLimit:       500,
		CORSOrigins:               []string{"*"},
	}
}

// Policy returns the selection policy described by the config.
func (c *Config) Policy() scoring.Policy {
	return scoring.Policy{
		YoungAgeLimit:    c.YoungAgeLimit,
		YoungCategoryCap: c.YoungCategoryCap,
		CategoryCap:      c.CategoryCap,
		MaxSelected:      c.MaxSelectedEvents,
	}
}

// Buckets returns the explicit bucket table, or the preset when none is given.
func (c *Config) Buckets() ([]leaderboard.AgeBucket, error) {
	if len(c.AgeBuckets) > 0 {
		return c.AgeBuckets, leaderboard.ValidateBuckets(c.AgeBuckets)
	}
	return leaderboard.PresetBuckets(c.AgeBucketPreset)
}
