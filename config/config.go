// Package config loads runtime settings for a simulation instance from a
// TOML file, falling back to defaults when no file is present.
package config

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rotisserie/eris"
)

type Config struct {
	Scheduler SchedulerConfig `toml:"scheduler"`
	Terrain   TerrainConfig   `toml:"terrain"`
	Debug     DebugConfig     `toml:"debug"`
}

type SchedulerConfig struct {
	// Workers is the worker pool size. Zero or negative uses one worker
	// per CPU.
	Workers  int      `toml:"workers"`
	TickRate Duration `toml:"tick_rate"`
}

// Duration decodes TOML duration strings like "50ms".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type TerrainConfig struct {
	// EditsPerTick caps how many queued terrain edits are applied per tick.
	EditsPerTick int `toml:"edits_per_tick"`
}

type DebugConfig struct {
	Overlay         bool `toml:"overlay"`
	ShowChunkBounds bool `toml:"show_chunk_bounds"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Scheduler: SchedulerConfig{
			Workers:  0,
			TickRate: Duration(50 * time.Millisecond),
		},
		Terrain: TerrainConfig{
			EditsPerTick: 100,
		},
		Debug: DebugConfig{
			Overlay:         true,
			ShowChunkBounds: true,
		},
	}
}

// Load reads a TOML configuration file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, eris.Wrapf(err, "loading config %s", path)
	}
	if cfg.Scheduler.TickRate <= 0 {
		return Config{}, eris.Errorf("config %s: tick_rate must be positive", path)
	}
	return cfg, nil
}
