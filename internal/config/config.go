package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the engine's TOML configuration, loaded once at world open.
type Config struct {
	World   WorldConfig   `toml:"world"`
	Rng     RngConfig     `toml:"rng"`
	Rates   RatesConfig   `toml:"rates"`
	Logging LoggingConfig `toml:"logging"`
}

// WorldConfig controls the chunk store root and bubble sizing.
type WorldConfig struct {
	Dir         string `toml:"dir"`
	BubbleRadius int   `toml:"bubble_radius"`
}

// RngConfig seeds the single process-wide deterministic source (spec §2).
type RngConfig struct {
	Seed int64 `toml:"seed"`
}

// RatesConfig tunes field-simulator and AI pacing knobs that are tunable
// without touching the formulas themselves.
type RatesConfig struct {
	FieldFastForwardTurns int `toml:"field_fast_forward_turns"`
	ScentDecayPerTurn     int `toml:"scent_decay_per_turn"`
}

// LoggingConfig selects the zap logger's level and encoder, grounded on
// the teacher's cmd/l1jgo/main.go newLogger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// WorldDirEnv is the optional environment override named in spec §6
// ("optional WORLD_DIR override").
const WorldDirEnv = "ASHFALL_WORLD_DIR"

// Load reads path, seeds a struct of defaults, then unmarshals the file
// on top, matching the teacher's config.Load pattern.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if dir := os.Getenv(WorldDirEnv); dir != "" {
		cfg.World.Dir = dir
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		World: WorldConfig{
			Dir:          "./world",
			BubbleRadius: 1,
		},
		Rng: RngConfig{
			Seed: 1,
		},
		Rates: RatesConfig{
			FieldFastForwardTurns: 8,
			ScentDecayPerTurn:     1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
