package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxcraft/internal/world"
)

func unitBox() AABB {
	return AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
}

func TestSweepHitsWall(t *testing.T) {
	src := gridSource{{2, 0, 0}: world.BlockStone}
	r, ok := SweepAABB(src, unitBox(), mgl32.Vec3{2, 0, 0})
	require.True(t, ok)
	assert.InDelta(t, 0.5, r.T, 1e-4)
	assert.Equal(t, [3]int{-1, 0, 0}, r.Normal)
}

func TestSweepMissesGap(t *testing.T) {
	src := gridSource{{5, 0, 0}: world.BlockStone}
	_, ok := SweepAABB(src, unitBox(), mgl32.Vec3{2, 0, 0})
	assert.False(t, ok)
}

func TestSweepFalling(t *testing.T) {
	src := gridSource{
		{0, -2, 0}: world.BlockStone,
		{0, -5, 0}: world.BlockStone,
	}
	r, ok := SweepAABB(src, unitBox(), mgl32.Vec3{0, -3, 0})
	require.True(t, ok)
	// Earliest contact wins: the box floor at y=0 meets the block top
	// at y=-1 after falling 1 unit of the 3-unit step.
	assert.InDelta(t, 1.0/3.0, r.T, 1e-4)
	assert.Equal(t, [3]int{0, 1, 0}, r.Normal)
}

func TestSweepPicksEarliestContact(t *testing.T) {
	src := gridSource{
		{3, 0, 0}: world.BlockStone,
		{2, 0, 0}: world.BlockStone,
	}
	r, ok := SweepAABB(src, unitBox(), mgl32.Vec3{4, 0, 0})
	require.True(t, ok)
	assert.InDelta(t, 0.25, r.T, 1e-4)
}

func TestSweepZeroVelocity(t *testing.T) {
	src := gridSource{{2, 0, 0}: world.BlockStone}
	_, ok := SweepAABB(src, unitBox(), mgl32.Vec3{})
	assert.False(t, ok)
}

func TestSweepNonSolidIgnored(t *testing.T) {
	src := gridSource{
		{2, 0, 0}: world.BlockWater,
		{2, 0, 1}: world.BlockTallGrass,
	}
	_, ok := SweepAABB(src, unitBox(), mgl32.Vec3{2, 0, 0})
	assert.False(t, ok)
}
