package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration, loaded from YAML with env-var
// fallbacks for the fields people most often override.
type Config struct {
	World  WorldConfig  `yaml:"world"`
	Window WindowConfig `yaml:"window"`
}

// WorldConfig drives the engine core.
type WorldConfig struct {
	Seed int64 `yaml:"seed"`

	// RenderRadius is the spherical chunk-load radius around the
	// player, in chunks.
	RenderRadius int `yaml:"render_radius"`

	// DespawnHysteresis is added to RenderRadius to form the unload
	// radius. Values below 2 thrash at the boundary.
	DespawnHysteresis int `yaml:"despawn_hysteresis"`

	// Workers sizes the background pool; 0 means NumCPU-1.
	Workers int `yaml:"workers"`

	SaveDir string `yaml:"save_dir"`
}

// WindowConfig drives the render shell.
type WindowConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FOV    float32 `yaml:"fov"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		World: WorldConfig{
			Seed:              42,
			RenderRadius:      8,
			DespawnHysteresis: 2,
			Workers:           0,
			SaveDir:           "saves",
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			FOV:    70,
		},
	}
}

// Load reads a YAML config file on top of the defaults. A missing file
// yields the defaults without error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			cfg.clamp()
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyEnv()
	cfg.clamp()
	return cfg, nil
}

// applyEnv lets VOXCRAFT_SEED and VOXCRAFT_SAVE_DIR override the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("VOXCRAFT_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.World.Seed = seed
		}
	}
	if v := os.Getenv("VOXCRAFT_SAVE_DIR"); v != "" {
		c.World.SaveDir = v
	}
}

// clamp pins runtime-sensitive values into workable ranges.
func (c *Config) clamp() {
	if c.World.RenderRadius < 2 {
		c.World.RenderRadius = 2
	}
	if c.World.RenderRadius > 32 {
		c.World.RenderRadius = 32
	}
	if c.World.DespawnHysteresis < 2 {
		c.World.DespawnHysteresis = 2
	}
	if c.World.Workers <= 0 {
		c.World.Workers = runtime.NumCPU() - 1
	}
	if c.World.Workers < 1 {
		c.World.Workers = 1
	}
	if c.World.SaveDir == "" {
		c.World.SaveDir = "saves"
	}
	if c.Window.Width <= 0 {
		c.Window.Width = 1280
	}
	if c.Window.Height <= 0 {
		c.Window.Height = 720
	}
	if c.Window.FOV <= 0 {
		c.Window.FOV = 70
	}
}
