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
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if TMWRR_CONFIG is set
//  3. env (prefix TMWRR_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("TMWRR_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: TMWRR_SOURCE_URL, TMWRR_CHECK_HOUR, ...
	// Map env keys like TMWRR_CHECK_HOUR -> check_hour (flat keys),
	// preserving underscores to match the koanf tags on the struct.
	envProvider := env.Provider("TMWRR_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "tmwrr_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch {
	case cfg.SourceURL == "":
		return fmt.Errorf("%w: source_url must not be empty", ErrInvalidConfig)
	case cfg.DatabasePath == "":
		return fmt.Errorf("%w: database_path must not be empty", ErrInvalidConfig)
	case cfg.CheckHour < 0 || cfg.CheckHour > 23:
		return fmt.Errorf("%w: check_hour must be 0..23", ErrInvalidConfig)
	case cfg.StaleThresholdHours <= 0:
		return fmt.Errorf("%w: stale_threshold_hours must be positive", ErrInvalidConfig)
	case cfg.InitialRound < 0 || cfg.InitialRound > 6:
		return fmt.Errorf("%w: initial_round must be 0..6", ErrInvalidConfig)
	case cfg.GhostsEnabled && cfg.GhostsDir == "":
		return fmt.Errorf("%w: ghosts_dir must be set when ghosts are enabled", ErrInvalidConfig)
	}
	return nil
}
