// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Loading layers defaults, an optional YAML file, and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

// Hard ceiling on enumerated group size. Larger groups are a deliberate
// performance and product cutoff, not a tunable.
const MaxEnumeratedGroupSize = 5

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// CompatibilityThreshold is the minimum pairwise score (0-100) for two
	// applicants to share a group.
	CompatibilityThreshold float64 `koanf:"compatibility_threshold"`

	// MaxGroupSize caps enumerated group size, between 1 and 5.
	MaxGroupSize int `koanf:"max_group_size"`

	// IterationCap bounds auction rounds as a guard against nontermination.
	IterationCap int `koanf:"iteration_cap"`

	// DirectionRule selects the window-direction matching rule:
	// any-overlap, subset, or quorum75.
	DirectionRule string `koanf:"direction_rule"`

	// DBPath points at the SQLite database for db-backed runs.
	DBPath string `koanf:"db_path"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		CompatibilityThreshold: 60,
		MaxGroupSize:           MaxEnumeratedGroupSize,
		IterationCap:           100,
		DirectionRule:          "any-overlap",
		DBPath:                 "homebid.db",
	}
}
