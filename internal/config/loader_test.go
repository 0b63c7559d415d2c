package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/davral/homebid/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.CompatibilityThreshold, convey.ShouldEqual, 60)
				convey.So(cfg.MaxGroupSize, convey.ShouldEqual, config.MaxEnumeratedGroupSize)
				convey.So(cfg.IterationCap, convey.ShouldEqual, 100)
				convey.So(cfg.DirectionRule, convey.ShouldEqual, "any-overlap")
				convey.So(cfg.DBPath, convey.ShouldEqual, "homebid.db")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("HOMEBID_LOG_LEVEL", "debug")
			_ = os.Setenv("HOMEBID_COMPATIBILITY_THRESHOLD", "75")
			_ = os.Setenv("HOMEBID_MAX_GROUP_SIZE", "3")
			_ = os.Setenv("HOMEBID_ITERATION_CAP", "50")
			_ = os.Setenv("HOMEBID_DIRECTION_RULE", "subset")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.CompatibilityThreshold, convey.ShouldEqual, 75)
				convey.So(cfg.MaxGroupSize, convey.ShouldEqual, 3)
				convey.So(cfg.IterationCap, convey.ShouldEqual, 50)
				convey.So(cfg.DirectionRule, convey.ShouldEqual, "subset")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
log_level: warn
compatibility_threshold: 70
max_group_size: 4
iteration_cap: 25
direction_rule: quorum75
db_path: /tmp/matching.db
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("HOMEBID_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "warn")
				convey.So(cfg.CompatibilityThreshold, convey.ShouldEqual, 70)
				convey.So(cfg.MaxGroupSize, convey.ShouldEqual, 4)
				convey.So(cfg.IterationCap, convey.ShouldEqual, 25)
				convey.So(cfg.DirectionRule, convey.ShouldEqual, "quorum75")
				convey.So(cfg.DBPath, convey.ShouldEqual, "/tmp/matching.db")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
compatibility_threshold: 70
iteration_cap: 25
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("HOMEBID_CONFIG", tmpFile)
			_ = os.Setenv("HOMEBID_ITERATION_CAP", "10")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.IterationCap, convey.ShouldEqual, 10)          // Overridden by env
				convey.So(cfg.CompatibilityThreshold, convey.ShouldEqual, 70) // From file
				convey.So(cfg.MaxGroupSize, convey.ShouldEqual, 5)            // From defaults
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `direction_rule: [unterminated`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("HOMEBID_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("HOMEBID_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an out-of-range threshold", func() {
			_ = os.Setenv("HOMEBID_COMPATIBILITY_THRESHOLD", "150")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "compatibility_threshold")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a group size above the ceiling", func() {
			_ = os.Setenv("HOMEBID_MAX_GROUP_SIZE", "9")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "max_group_size")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-positive iteration cap", func() {
			_ = os.Setenv("HOMEBID_ITERATION_CAP", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "iteration_cap")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an unknown direction rule", func() {
			_ = os.Setenv("HOMEBID_DIRECTION_RULE", "majority")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "direction_rule")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with partial YAML file", func() {
			yamlContent := `
log_level: error
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("HOMEBID_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge with defaults for missing fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "error")      // From file
				convey.So(cfg.CompatibilityThreshold, convey.ShouldEqual, 60) // From defaults
				convey.So(cfg.DirectionRule, convey.ShouldEqual, "any-overlap")
			})
		})
	})
}

// clearConfigEnvVars removes every HOMEBID_ variable the loader reads.
func clearConfigEnvVars() {
	for _, key := range []string{
		"HOMEBID_CONFIG",
		"HOMEBID_LOG_LEVEL",
		"HOMEBID_COMPATIBILITY_THRESHOLD",
		"HOMEBID_MAX_GROUP_SIZE",
		"HOMEBID_ITERATION_CAP",
		"HOMEBID_DIRECTION_RULE",
		"HOMEBID_DB_PATH",
	} {
		_ = os.Unsetenv(key)
	}
}

// createTempConfigFile writes YAML content to a temp file and returns its path.
func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "homebid-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	_ = f.Close()
	return f.Name()
}
