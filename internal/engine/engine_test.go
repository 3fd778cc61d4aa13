package engine

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxcraft/internal/config"
	"voxcraft/internal/world"
)

func newTestEngine(t *testing.T, radius int) *Engine {
	t.Helper()
	cfg := config.WorldConfig{
		Seed:              42,
		RenderRadius:      radius,
		DespawnHysteresis: 2,
		Workers:           2,
		SaveDir:           t.TempDir(),
	}
	e := New(cfg)
	t.Cleanup(e.Close)
	return e
}

// pumpUntil ticks the engine until cond holds or the deadline passes.
func pumpUntil(t *testing.T, e *Engine, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		e.Tick()
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("engine did not converge within %v", timeout)
}

func displayedCoords(e *Engine) map[world.ChunkCoord]bool {
	out := make(map[world.ChunkCoord]bool)
	for coord, st := range e.sched.states {
		if st.phase == phaseDisplayed {
			out[coord] = true
		}
	}
	return out
}

// sphereSize counts integer offsets within L2 radius r.
func sphereSize(r int) int {
	n := 0
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for dz := -r; dz <= r; dz++ {
				if dx*dx+dy*dy+dz*dz <= r*r {
					n++
				}
			}
		}
	}
	return n
}

func TestSchedulerConvergence(t *testing.T) {
	e := newTestEngine(t, 2)
	want := sphereSize(2) // 33

	e.OnPlayerMoved(mgl32.Vec3{0, 70, 0})
	pumpUntil(t, e, 10*time.Second, func() bool {
		e.DrainMeshUpdates()
		return len(displayedCoords(e)) == want && e.queue.len() == 0
	})

	center := world.ChunkCoord{0, 4, 0}
	for coord := range displayedCoords(e) {
		assert.LessOrEqual(t, coord.DistSq(center), 4)
	}
}

func TestSchedulerRetargetsOnMove(t *testing.T) {
	e := newTestEngine(t, 2)
	want := sphereSize(2)

	e.OnPlayerMoved(mgl32.Vec3{0, 70, 0})
	pumpUntil(t, e, 10*time.Second, func() bool {
		e.DrainMeshUpdates()
		return len(displayedCoords(e)) == want
	})

	// 20 chunks east.
	e.OnPlayerMoved(mgl32.Vec3{320, 70, 0})
	pumpUntil(t, e, 10*time.Second, func() bool {
		e.DrainMeshUpdates()
		e.DrainMeshRemovals()
		if len(e.sched.states) != want {
			return false
		}
		return len(displayedCoords(e)) == want
	})

	center := world.ChunkCoord{20, 4, 0}
	despawnSq := e.sched.despawnRadius * e.sched.despawnRadius
	for coord := range e.sched.states {
		assert.LessOrEqual(t, coord.DistSq(center), despawnSq,
			"chunk %v survives beyond the despawn radius", coord)
	}
	assert.Equal(t, want, len(displayedCoords(e)))
}

// converge pumps until every tracked chunk is displayed and the queue
// is drained, so later assertions see no incidental seam re-meshes.
func converge(t *testing.T, e *Engine) {
	t.Helper()
	pumpUntil(t, e, 10*time.Second, func() bool {
		e.DrainMeshUpdates()
		e.DrainMeshRemovals()
		if e.queue.len() != 0 {
			return false
		}
		for _, st := range e.sched.states {
			if st.phase != phaseDisplayed {
				return false
			}
		}
		return len(e.sched.states) > 0
	})
}

func waitDisplayed(t *testing.T, e *Engine, coords ...world.ChunkCoord) {
	t.Helper()
	pumpUntil(t, e, 10*time.Second, func() bool {
		e.DrainMeshUpdates()
		for _, c := range coords {
			st, ok := e.sched.states[c]
			if !ok || st.phase != phaseDisplayed {
				return false
			}
		}
		return true
	})
}

func TestEditRemeshesOwnerNotNeighbor(t *testing.T) {
	e := newTestEngine(t, 2)
	e.OnPlayerMoved(mgl32.Vec3{0, 70, 0})
	owner := world.ChunkCoord{0, 4, 0}
	neighbor := world.ChunkCoord{-1, 4, 0}
	converge(t, e)
	e.DrainMeshUpdates()

	// (1,64,1) touches neither x face of the owner (local x is 1), so
	// the -X neighbor is not re-meshed. Local y is 0, so the chunk
	// below is re-meshed along with the owner.
	require.NoError(t, e.SetBlock(world.BlockPos{1, 64, 1}, world.BlockAir))

	got := make(map[world.ChunkCoord]bool)
	pumpUntil(t, e, 10*time.Second, func() bool {
		for _, up := range e.DrainMeshUpdates() {
			got[up.Coord] = true
		}
		return got[owner]
	})
	assert.False(t, got[neighbor], "-X neighbor re-meshed for an edit off the x faces")
}

func TestBorderEditRemeshesNeighbor(t *testing.T) {
	e := newTestEngine(t, 2)
	e.OnPlayerMoved(mgl32.Vec3{0, 70, 0})
	owner := world.ChunkCoord{0, 4, 0}
	neighbor := world.ChunkCoord{-1, 4, 0}
	converge(t, e)
	e.DrainMeshUpdates()

	// (0,64,1) lies on the owner's x=0 face.
	require.NoError(t, e.SetBlock(world.BlockPos{0, 64, 1}, world.BlockAir))

	got := make(map[world.ChunkCoord]bool)
	pumpUntil(t, e, 10*time.Second, func() bool {
		for _, up := range e.DrainMeshUpdates() {
			got[up.Coord] = true
		}
		return got[owner] && got[neighbor]
	})
}

func TestEditPersistsAcrossUnload(t *testing.T) {
	e := newTestEngine(t, 2)
	e.OnPlayerMoved(mgl32.Vec3{0, 70, 0})
	p := world.BlockPos{5, 70, 5}
	owner := world.WorldToChunk(p)
	waitDisplayed(t, e, owner)

	require.NoError(t, e.SetBlock(p, world.BlockGlass))

	// Walk far enough that the owning chunk unloads.
	e.OnPlayerMoved(mgl32.Vec3{640, 70, 0})
	pumpUntil(t, e, 10*time.Second, func() bool {
		e.DrainMeshUpdates()
		e.DrainMeshRemovals()
		_, ok := e.sched.states[owner]
		return !ok
	})

	// And back.
	e.OnPlayerMoved(mgl32.Vec3{0, 70, 0})
	waitDisplayed(t, e, owner)

	id, err := e.GetBlock(p)
	require.NoError(t, err)
	assert.Equal(t, world.BlockGlass, id)
}

func TestEditBeforeLoadAppliesAtGeneration(t *testing.T) {
	e := newTestEngine(t, 2)
	p := world.BlockPos{5, 70, 5}

	// The chunk is Absent: the edit is buffered, not applied.
	require.NoError(t, e.SetBlock(p, world.BlockStone))
	_, err := e.GetBlock(world.BlockPos{6, 70, 5})
	assert.ErrorIs(t, err, ErrNotLoaded)

	e.OnPlayerMoved(mgl32.Vec3{0, 70, 0})
	waitDisplayed(t, e, world.WorldToChunk(p))

	id, err := e.GetBlock(p)
	require.NoError(t, err)
	assert.Equal(t, world.BlockStone, id)

	// The generated chunk itself carries the edit, not just the
	// overlay.
	stored, ok := e.store.GetBlock(p)
	require.True(t, ok)
	assert.Equal(t, world.BlockStone, stored)
}

func TestBedrockRejectsEdits(t *testing.T) {
	e := newTestEngine(t, 2)
	// Stand in the bedrock chunk so it lies inside the render sphere.
	e.OnPlayerMoved(mgl32.Vec3{8, 8, 8})
	waitDisplayed(t, e, world.ChunkCoord{0, 0, 0})

	p := world.BlockPos{8, 0, 8}
	assert.ErrorIs(t, e.SetBlock(p, world.BlockAir), ErrProtected)

	id, err := e.GetBlock(p)
	require.NoError(t, err)
	assert.Equal(t, world.BlockBedrock, id)
}

func TestOutOfRangeEdits(t *testing.T) {
	e := newTestEngine(t, 2)
	assert.ErrorIs(t, e.SetBlock(world.BlockPos{0, -1, 0}, world.BlockStone), ErrOutOfRange)
	assert.ErrorIs(t, e.SetBlock(world.BlockPos{0, world.WorldHeight, 0}, world.BlockStone), ErrOutOfRange)

	// Out-of-range queries read as air without error.
	id, err := e.GetBlock(world.BlockPos{0, -1, 0})
	require.NoError(t, err)
	assert.Equal(t, world.BlockAir, id)
}

func TestNotLoadedReadsSolidForPhysics(t *testing.T) {
	e := newTestEngine(t, 2)
	// Nothing is loaded; physics must see solid ground everywhere.
	assert.True(t, e.IsSolid(world.BlockPos{1000, 70, 1000}))
	_, err := e.GetBlock(world.BlockPos{1000, 70, 1000})
	assert.ErrorIs(t, err, ErrNotLoaded)
}
