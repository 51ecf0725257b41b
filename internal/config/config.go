// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for engine limits and cache paths.
//
// Every value has a built-in default and an environment override; callers
// override per call through their own option structs, never by mutating
// process-wide state.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Limits are the guardrails one decode pass runs under. Zero caps mean
// unlimited; the defaults handle full-length pro games comfortably.
type Limits struct {
	// CheckpointInterval is the default checkpoint spacing in ticks
	// (1800 ticks is about one minute of game time).
	CheckpointInterval uint32 `env:"DEMOSCOPE_CHECKPOINT_INTERVAL"`
	// MaxCheckpoints aborts index builds that would exceed it.
	MaxCheckpoints int `env:"DEMOSCOPE_MAX_CHECKPOINTS"`
	// MaxCombatLogEntries is the default combat log collector cap.
	MaxCombatLogEntries int `env:"DEMOSCOPE_MAX_COMBAT_LOG_ENTRIES"`
	// MaxMessages is the default raw message collector cap.
	MaxMessages int `env:"DEMOSCOPE_MAX_MESSAGES"`
	// MaxSnapshots is the default entity view collector cap.
	MaxSnapshots int `env:"DEMOSCOPE_MAX_SNAPSHOTS"`
	// MaxGameEvents is the default game event collector cap.
	MaxGameEvents int `env:"DEMOSCOPE_MAX_GAME_EVENTS"`
	// ProgressPerSecond throttles progress callbacks.
	ProgressPerSecond float64 `env:"DEMOSCOPE_PROGRESS_RATE"`
	// CachePath enables the persistent index cache when non-empty.
	CachePath string `env:"DEMOSCOPE_CACHE"`
}

// DefaultLimits returns the built-in limits.
func DefaultLimits() Limits {
	return Limits{
		CheckpointInterval: 1800,
		MaxCheckpoints:     4096,
		ProgressPerSecond:  4,
	}
}

// LimitsFromEnv returns the defaults with environment overrides applied.
// Unset variables leave their fields untouched.
func LimitsFromEnv() (Limits, error) {
	limits := DefaultLimits()
	if err := env.Parse(&limits); err != nil {
		return DefaultLimits(), fmt.Errorf("config: parse environment: %w", err)
	}
	return limits, nil
}

// RenderConfig holds minimap rendering settings.
type RenderConfig struct {
	// Size is the square canvas edge in pixels.
	Size int `env:"DEMOSCOPE_RENDER_SIZE"`
	// HeroRadius is the hero marker radius in pixels.
	HeroRadius float64 `env:"DEMOSCOPE_RENDER_HERO_RADIUS"`
}

// DefaultRender returns the default render configuration.
func DefaultRender() RenderConfig {
	return RenderConfig{
		Size:       512,
		HeroRadius: 6,
	}
}

// RenderFromEnv returns render configuration with environment overrides.
func RenderFromEnv() (RenderConfig, error) {
	cfg := DefaultRender()
	if err := env.Parse(&cfg); err != nil {
		return DefaultRender(), fmt.Errorf("config: parse environment: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file when present, preferring the parent
// directory so tools run from subdirectories pick up the repo file.
// Missing files are not an error.
func LoadDotEnv() {
	if err := godotenv.Load("../.env"); err != nil {
		_ = godotenv.Load(".env")
	}
}
