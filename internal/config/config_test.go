package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.World.Seed)
	assert.Equal(t, 8, cfg.World.RenderRadius)
	assert.GreaterOrEqual(t, cfg.World.DespawnHysteresis, 2)
	assert.GreaterOrEqual(t, cfg.World.Workers, 1)
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxcraft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
world:
  seed: 1337
  render_radius: 6
  despawn_hysteresis: 3
  save_dir: testsaves
window:
  width: 800
  height: 600
  fov: 90
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1337), cfg.World.Seed)
	assert.Equal(t, 6, cfg.World.RenderRadius)
	assert.Equal(t, 3, cfg.World.DespawnHysteresis)
	assert.Equal(t, "testsaves", cfg.World.SaveDir)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, float32(90), cfg.Window.FOV)
}

func TestClampEnforcesHysteresisFloor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxcraft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
world:
  render_radius: 100
  despawn_hysteresis: 0
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.World.RenderRadius)
	assert.Equal(t, 2, cfg.World.DespawnHysteresis, "hysteresis below 2 thrashes at the boundary")
}

func TestEnvOverridesSeed(t *testing.T) {
	t.Setenv("VOXCRAFT_SEED", "99")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.World.Seed)
}
