package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/swimchamps/internal/domain/model"
)

// Environment variable prefix and the variable naming a YAML config file.
const (
	EnvPrefix  = "CHAMPS_"
	EnvConfig  = EnvPrefix + "CONFIG"
	listSuffix = "cors_origins"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if CHAMPS_CONFIG is set
//  3. env (prefix CHAMPS_)
func Load(ctx context.Context) (*Config, error) {
	return LoadFile(ctx, os.Getenv(EnvConfig))
}

// LoadFile is Load with an explicit YAML file. An empty path skips the file layer.
func LoadFile(ctx context.Context, path string) (*Config, error) {
	base := New(ctx)
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// CHAMPS_WORKER_COUNT -> worker_count; comma separated lists are split.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if key == "config" {
			return "", nil
		}
		if key == listSuffix {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return key, parts
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	categories := len(model.Categories)
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case !validLevel(c.LogLevel):
		return invalid("unknown log_level %q", c.LogLevel)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return invalid("log_format must be text or json, got %q", c.LogFormat)
	case c.WorkerCount < 1:
		return invalid("worker_count must be positive, got %d", c.WorkerCount)
	case c.MaxSelectedEvents < 1:
		return invalid("max_selected_events must be positive, got %d", c.MaxSelectedEvents)
	case c.YoungAgeLimit < 1:
		return invalid("young_age_limit must be positive, got %d", c.YoungAgeLimit)
	case c.YoungCategoryCap < 1 || c.CategoryCap < 1:
		return invalid("category caps must be positive")
	case c.MinCategories < 0 || c.MinCategories > categories:
		return invalid("min_categories_for_eligibility must be within 0..%d", categories)
	case c.ChampionshipMinCategories < 0 || c.ChampionshipMinCategories > categories:
		return invalid("championship_min_categories must be within 0..%d", categories)
	case c.MaxLeaderboardLimit < 1:
		return invalid("max_leaderboard_limit must be positive, got %d", c.MaxLeaderboardLimit)
	case c.MaxSnapshotVersions < 0:
		return invalid("max_snapshot_versions must not be negative")
	}
	if _, err := c.Buckets(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func validLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}
