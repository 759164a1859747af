// Package config loads the tile engine's own tunables — expansion/merge
// ratios and sample counts — the same way the teacher reads its local
// per-directory settings: a direct YAML file read, with environment
// variables layered on top. This is a library concern (how the engine
// behaves), not the outer CLI-configuration surface the profile viewer
// spec places out of scope.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EngineConfig holds the tile engine's tunable constants. Zero values are
// never used directly — Default() fills in the spec's fixed constants,
// and LoadFile only overrides fields the file or environment actually set.
type EngineConfig struct {
	MaxRatio           int `yaml:"max-ratio"`
	MinRatio           int `yaml:"min-ratio"`
	PartialSampleCount int `yaml:"partial-sample-count"`
	FullSampleCount    int `yaml:"full-sample-count"`
}

// Default returns the engine constants spec.md §6 fixes: MAX_RATIO=2000,
// MIN_RATIO=1000, partial/full summary sample counts 800/4000.
func Default() EngineConfig {
	return EngineConfig{
		MaxRatio:           2000,
		MinRatio:           1000,
		PartialSampleCount: 800,
		FullSampleCount:    4000,
	}
}

// LoadFile reads an EngineConfig from a YAML file, starting from
// Default() and overwriting only the fields present in the file.
// Returns Default() unchanged if the file doesn't exist or can't be
// parsed — a missing tunables file is not an error in a tool meant to
// run against fixture data without any setup step.
func LoadFile(path string) EngineConfig {
	cfg := Default()
	data, err := os.ReadFile(path) // #nosec G304 - path is operator-supplied
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default()
	}
	return cfg
}

// LoadFileWithEnv reads an EngineConfig from path and applies environment
// overrides on top, mirroring the teacher's env-override-after-file
// layering.
//
// Supported environment variables:
//   - PROFVIEWER_MAX_RATIO
//   - PROFVIEWER_MIN_RATIO
func LoadFileWithEnv(path string) EngineConfig {
	cfg := LoadFile(path)
	if v := os.Getenv("PROFVIEWER_MAX_RATIO"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxRatio = n
		}
	}
	if v := os.Getenv("PROFVIEWER_MIN_RATIO"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MinRatio = n
		}
	}
	return cfg
}
