// Package config loads the engine's TOML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Loop    LoopConfig    `toml:"loop"`
	Storage StorageConfig `toml:"storage"`
	Window  WindowConfig  `toml:"window"`
	Scene   SceneConfig   `toml:"scene"`
	Logging LoggingConfig `toml:"logging"`
	Debug   DebugConfig   `toml:"debug"`
}

type LoopConfig struct {
	FixedInterval time.Duration `toml:"fixed_interval"`
	TimeScale     float64       `toml:"time_scale"`
	MaxFrameDelta time.Duration `toml:"max_frame_delta"` // 0 disables the clamp
}

type StorageConfig struct {
	PoolCapacity int `toml:"pool_capacity"` // slots per component pool
	MaxPools     int `toml:"max_pools"`     // 0 = unbounded
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type SceneConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // console or json
}

type DebugConfig struct {
	ImGui bool `toml:"imgui"`
}

// Load reads the TOML file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		Loop: LoopConfig{
			FixedInterval: 20 * time.Millisecond,
			TimeScale:     1.0,
			MaxFrameDelta: 250 * time.Millisecond,
		},
		Storage: StorageConfig{
			PoolCapacity: 100,
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "framecore",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) validate() error {
	if c.Loop.FixedInterval <= 0 {
		return fmt.Errorf("loop.fixed_interval must be positive, got %s", c.Loop.FixedInterval)
	}
	if c.Loop.TimeScale < 0 {
		return fmt.Errorf("loop.time_scale must not be negative, got %g", c.Loop.TimeScale)
	}
	if c.Storage.PoolCapacity <= 0 {
		return fmt.Errorf("storage.pool_capacity must be positive, got %d", c.Storage.PoolCapacity)
	}
	if c.Storage.MaxPools < 0 {
		return fmt.Errorf("storage.max_pools must not be negative, got %d", c.Storage.MaxPools)
	}
	return nil
}
