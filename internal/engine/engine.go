package engine

import (
	"errors"
	"log"
	"math"
	"os"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"voxcraft/internal/config"
	"voxcraft/internal/meshing"
	"voxcraft/internal/physics"
	"voxcraft/internal/save"
	"voxcraft/internal/world"
)

var (
	// ErrOutOfRange rejects edits outside the world's Y domain.
	ErrOutOfRange = errors.New("position outside world bounds")
	// ErrNotLoaded marks queries into chunks that are not in memory.
	ErrNotLoaded = errors.New("chunk not loaded")
	// ErrProtected rejects edits that would replace bedrock.
	ErrProtected = errors.New("block is protected")
)

// MeshUpdate is one re-built chunk mesh for the render backend.
// Vertex positions are chunk-local; translate by Coord.Origin().
type MeshUpdate struct {
	Coord world.ChunkCoord
	Mesh  *meshing.Mesh
}

// Engine is the core handle: it owns the world store, the edit
// overlay, the generator and the streaming scheduler.
//
// The game loop calls OnPlayerMoved, Tick, the block/query API and the
// drains from a single goroutine. The store and the edit overlay are
// internally locked, so the physics queries and background workers may
// read them concurrently with the loop.
type Engine struct {
	cfg config.WorldConfig

	store *world.ChunkStore
	edits *world.EditStore
	gen   *world.Generator

	sched *scheduler
	queue *taskQueue
	pool  *workerPool

	playerChunk world.ChunkCoord
	hasPlayer   bool

	meshUpdates  []MeshUpdate
	meshRemovals []world.ChunkCoord

	regionMu sync.Mutex

	logger *log.Logger
}

// New builds an engine from the world configuration.
func New(cfg config.WorldConfig) *Engine {
	e := &Engine{
		cfg:    cfg,
		store:  world.NewChunkStore(),
		edits:  world.NewEditStore(),
		queue:  newTaskQueue(),
		logger: log.New(os.Stderr, "engine: ", log.LstdFlags),
	}
	e.gen = world.NewGenerator(cfg.Seed, e.edits)
	e.sched = newScheduler(cfg.RenderRadius, cfg.RenderRadius+cfg.DespawnHysteresis)
	e.pool = newWorkerPool(cfg.Workers, e.runTask)
	return e
}

// Close stops the background workers. Pending results are dropped.
func (e *Engine) Close() {
	e.pool.close()
}

// Generator exposes the terrain generator for spawn-height queries.
func (e *Engine) Generator() *world.Generator { return e.gen }

// OnPlayerMoved retargets the streaming scheduler.
func (e *Engine) OnPlayerMoved(pos mgl32.Vec3) {
	p := world.BlockPos{
		X: int(math.Floor(float64(pos.X()))),
		Y: int(math.Floor(float64(pos.Y()))),
		Z: int(math.Floor(float64(pos.Z()))),
	}
	e.playerChunk = world.WorldToChunk(p)
	e.hasPlayer = true
}

// runTask executes one unit of background work on a pool worker.
func (e *Engine) runTask(t task) result {
	switch t.kind {
	case taskGen:
		e.ensureRegion(t.coord.Region())
		return result{task: t, chunk: e.gen.Generate(t.coord)}
	default:
		snap, ok := meshing.Take(e.store, t.coord)
		if !ok {
			return result{task: t, skipped: true}
		}
		return result{
			task:    t,
			mesh:    meshing.Build(snap),
			version: snap.Version,
			missing: snap.Missing,
		}
	}
}

// GetBlock reads a block. The edit overlay wins over generated
// terrain; unloaded chunks report ErrNotLoaded; queries outside the Y
// domain read as air.
func (e *Engine) GetBlock(p world.BlockPos) (world.BlockID, error) {
	if p.Y < 0 || p.Y >= world.WorldHeight {
		return world.BlockAir, nil
	}
	if id, ok := e.edits.Get(p); ok {
		return id, nil
	}
	if id, ok := e.store.GetBlock(p); ok {
		return id, nil
	}
	return world.BlockAir, ErrNotLoaded
}

// SetBlock applies a single-block player edit. Edits into unloaded
// chunks are buffered and replayed when the chunk generates; edits
// into loaded chunks bump the version and trigger a re-mesh of the
// owning chunk plus any neighbors sharing the touched border.
func (e *Engine) SetBlock(p world.BlockPos, id world.BlockID) error {
	if p.Y < 0 || p.Y >= world.WorldHeight {
		return ErrOutOfRange
	}
	// The bedrock floor is never replaced.
	if p.Y == 0 && id != world.BlockBedrock {
		return ErrProtected
	}
	if cur, err := e.GetBlock(p); err == nil && cur == world.BlockBedrock && id != world.BlockBedrock {
		return ErrProtected
	}

	e.ensureRegion(world.WorldToChunk(p).Region())
	e.edits.Set(p, id)

	if !e.store.SetBlock(p, id) {
		// Not loaded: the overlay is applied at generation time.
		return nil
	}

	coord := world.WorldToChunk(p)
	e.requestRemesh(coord)

	lx, ly, lz := world.WorldToLocal(p)
	max := world.ChunkSize - 1
	if lx == 0 {
		e.requestRemesh(coord.Add(-1, 0, 0))
	} else if lx == max {
		e.requestRemesh(coord.Add(1, 0, 0))
	}
	if ly == 0 {
		e.requestRemesh(coord.Add(0, -1, 0))
	} else if ly == max {
		e.requestRemesh(coord.Add(0, 1, 0))
	}
	if lz == 0 {
		e.requestRemesh(coord.Add(0, 0, -1))
	} else if lz == max {
		e.requestRemesh(coord.Add(0, 0, 1))
	}
	return nil
}

// BlockAt implements physics.BlockSource. Unloaded chunks read as
// stone so collision never falls through the world.
func (e *Engine) BlockAt(p world.BlockPos) world.BlockID {
	id, err := e.GetBlock(p)
	if err != nil {
		return world.BlockStone
	}
	return id
}

// IsSolid answers the collision query for one block cell.
func (e *Engine) IsSolid(p world.BlockPos) bool {
	return physics.SolidAt(e, p)
}

// Raycast walks the grid from origin along dir up to maxDist.
func (e *Engine) Raycast(origin, dir mgl32.Vec3, maxDist float32) (physics.RaycastHit, bool) {
	return physics.Raycast(e, origin, dir, maxDist)
}

// SweepAABB sweeps a box against the solid blocks along one step's
// displacement.
func (e *Engine) SweepAABB(box physics.AABB, vel mgl32.Vec3) (physics.SweepResult, bool) {
	return physics.SweepAABB(e, box, vel)
}

// DrainMeshUpdates returns the meshes finished since the last drain.
func (e *Engine) DrainMeshUpdates() []MeshUpdate {
	out := e.meshUpdates
	e.meshUpdates = nil
	return out
}

// DrainMeshRemovals returns chunks whose meshes should be dropped.
func (e *Engine) DrainMeshRemovals() []world.ChunkCoord {
	out := e.meshRemovals
	e.meshRemovals = nil
	return out
}

// ensureRegion hydrates a region's persisted edits exactly once.
// Region loads are serialized; files are a few KB.
func (e *Engine) ensureRegion(rc world.RegionCoord) {
	e.regionMu.Lock()
	defer e.regionMu.Unlock()
	if e.edits.RegionLoaded(rc) {
		return
	}
	persisted, err := save.LoadRegion(e.cfg.SaveDir, rc)
	if err != nil {
		// A broken file must not block play; the edits it held are
		// lost but the terrain regenerates.
		e.logger.Printf("load region %v: %v", rc, err)
		persisted = map[world.BlockPos]world.BlockID{}
	}
	e.edits.MergeRegion(rc, persisted)
}

// flushRegion persists one region's edits if it has any pending.
func (e *Engine) flushRegion(rc world.RegionCoord) error {
	if !e.edits.IsDirty(rc) {
		return nil
	}
	if err := save.SaveRegion(e.cfg.SaveDir, rc, e.edits.ForRegion(rc)); err != nil {
		// Edits stay in memory and the region stays dirty for the
		// next save cycle.
		return err
	}
	e.edits.ClearDirty(rc)
	return nil
}

// SaveAll flushes every dirty region. The first error is returned but
// the remaining regions are still attempted.
func (e *Engine) SaveAll() error {
	var firstErr error
	for _, rc := range e.edits.DirtyRegions() {
		if err := e.flushRegion(rc); err != nil {
			e.logger.Printf("flush region %v: %v", rc, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
