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
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if HOMEBID_CONFIG is set
//  3. env (prefix HOMEBID_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("HOMEBID_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: HOMEBID_MAX_GROUP_SIZE, HOMEBID_ITERATION_CAP, ...
	// Map env keys like HOMEBID_MAX_GROUP_SIZE -> max_group_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("HOMEBID_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "homebid_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.CompatibilityThreshold < 0 || c.CompatibilityThreshold > 100 {
		return fmt.Errorf("%w: compatibility_threshold must be within [0,100], got %v", ErrInvalidConfig, c.CompatibilityThreshold)
	}
	if c.MaxGroupSize < 1 || c.MaxGroupSize > MaxEnumeratedGroupSize {
		return fmt.Errorf("%w: max_group_size must be within [1,%d], got %d", ErrInvalidConfig, MaxEnumeratedGroupSize, c.MaxGroupSize)
	}
	if c.IterationCap < 1 {
		return fmt.Errorf("%w: iteration_cap must be positive, got %d", ErrInvalidConfig, c.IterationCap)
	}
	switch c.DirectionRule {
	case "any-overlap", "subset", "quorum75":
	default:
		return fmt.Errorf("%w: unknown direction_rule %q", ErrInvalidConfig, c.DirectionRule)
	}
	return nil
}
