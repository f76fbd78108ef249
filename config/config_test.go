package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0, cfg.Scheduler.Workers)
	assert.Equal(t, 50*time.Millisecond, cfg.Scheduler.TickRate.Std())
	assert.Equal(t, 100, cfg.Terrain.EditsPerTick)
	assert.True(t, cfg.Debug.Overlay)
	assert.True(t, cfg.Debug.ShowChunkBounds)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[scheduler]
workers = 4
tick_rate = "16ms"

[terrain]
edits_per_tick = 250

[debug]
overlay = false
`)
	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 4, cfg.Scheduler.Workers)
	assert.Equal(t, 16*time.Millisecond, cfg.Scheduler.TickRate.Std())
	assert.Equal(t, 250, cfg.Terrain.EditsPerTick)
	assert.False(t, cfg.Debug.Overlay)
	// unset keys keep their defaults
	assert.True(t, cfg.Debug.ShowChunkBounds)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
[terrain]
edits_per_tick = 10
`)
	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 10, cfg.Terrain.EditsPerTick)
	assert.Equal(t, 50*time.Millisecond, cfg.Scheduler.TickRate.Std())
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		path := writeConfig(t, `
[scheduler]
tick_rate = "soon"
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("non-positive tick rate", func(t *testing.T) {
		path := writeConfig(t, `
[scheduler]
tick_rate = "0s"
`)
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sim.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
