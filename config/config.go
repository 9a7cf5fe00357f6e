// Package config decodes the runtime's TOML tuning file. Grounded on
// internal/config/config.go's defaults-function + toml.Unmarshal
// overlay, kept nearly verbatim in shape and trimmed to an ECS
// runtime's actual knobs (initial pool capacity, deferred-removal
// policy, tick rate, start-playing, logging).
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the runtime's full tuning surface.
type Config struct {
	World   WorldConfig   `toml:"world"`
	Pool    PoolConfig    `toml:"pool"`
	Logging LoggingConfig `toml:"logging"`
}

// WorldConfig controls top-level World/Manager behavior.
type WorldConfig struct {
	TickRate              time.Duration `toml:"tick_rate"`
	DeferredRemovalEnabled bool         `toml:"deferred_removal_enabled"`
	StartPlaying           bool         `toml:"start_playing"`
}

// PoolConfig sets how many instances each pooled component type's free
// list is pre-filled with at registration.
type PoolConfig struct {
	InitialCapacity int `toml:"initial_capacity"`
}

// LoggingConfig controls the diag logger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Load reads and parses the TOML file at path, overlaying it onto
// defaults() so any field the file omits keeps its default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		World: WorldConfig{
			TickRate:               50 * time.Millisecond,
			DeferredRemovalEnabled: true,
			StartPlaying:           true,
		},
		Pool: PoolConfig{
			InitialCapacity: 64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
