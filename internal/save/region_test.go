package save

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxcraft/internal/world"
)

func TestRegionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rc := world.RegionCoord{0, 0, 0}
	edits := map[world.BlockPos]world.BlockID{
		{0, 0, 0}:     world.BlockStone,
		{1, 64, 1}:    world.BlockAir,
		{15, 255, 15}: world.BlockGlass,
		{200, 100, 3}: world.BlockDirt,
	}

	require.NoError(t, SaveRegion(dir, rc, edits))
	loaded, err := LoadRegion(dir, rc)
	require.NoError(t, err)
	assert.Equal(t, edits, loaded)
}

func TestRegionRoundTripNegativeCoords(t *testing.T) {
	dir := t.TempDir()
	rc := world.RegionCoord{-1, 0, -1}
	edits := map[world.BlockPos]world.BlockID{
		{-1, 70, -1}:     world.BlockStone,
		{-256, 0, -256}:  world.BlockBedrock,
		{-100, 128, -37}: world.BlockSand,
	}

	require.NoError(t, SaveRegion(dir, rc, edits))
	loaded, err := LoadRegion(dir, rc)
	require.NoError(t, err)
	assert.Equal(t, edits, loaded)
}

func TestMissingRegionIsEmpty(t *testing.T) {
	loaded, err := LoadRegion(t.TempDir(), world.RegionCoord{3, 0, 3})
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestCorruptRegionReported(t *testing.T) {
	dir := t.TempDir()
	rc := world.RegionCoord{0, 0, 0}
	require.NoError(t, os.WriteFile(RegionPath(dir, rc), []byte("not a region"), 0o644))

	_, err := LoadRegion(dir, rc)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSaveIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	rc := world.RegionCoord{0, 0, 0}
	edits := map[world.BlockPos]world.BlockID{}
	for i := 0; i < 64; i++ {
		edits[world.BlockPos{X: i % 16, Y: 60 + i/16, Z: (i * 7) % 16}] = world.BlockStone
	}

	require.NoError(t, SaveRegion(dir, rc, edits))
	first, err := os.ReadFile(RegionPath(dir, rc))
	require.NoError(t, err)

	require.NoError(t, SaveRegion(dir, rc, edits))
	second, err := os.ReadFile(RegionPath(dir, rc))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOverwriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	rc := world.RegionCoord{0, 0, 0}
	edits := map[world.BlockPos]world.BlockID{{1, 1, 1}: world.BlockStone}

	require.NoError(t, SaveRegion(dir, rc, edits))
	edits[world.BlockPos{2, 2, 2}] = world.BlockDirt
	require.NoError(t, SaveRegion(dir, rc, edits))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, ".tmp", filepath.Ext(e.Name()))
	}

	loaded, err := LoadRegion(dir, rc)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestPlayerRoundTrip(t *testing.T) {
	dir := t.TempDir()

	missing, err := LoadPlayer(dir)
	require.NoError(t, err)
	assert.Nil(t, missing)

	st := &PlayerState{
		Position: [3]float32{8.5, 74, 8.5},
		Yaw:      -90,
		Pitch:    12.5,
		Spawn:    [3]float32{8.5, 74, 8.5},
	}
	require.NoError(t, SavePlayer(dir, st))
	loaded, err := LoadPlayer(dir)
	require.NoError(t, err)
	assert.Equal(t, st, loaded)
}
