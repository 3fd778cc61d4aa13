package engine

import (
	"sort"

	"voxcraft/internal/profiling"
	"voxcraft/internal/world"
)

// Per-chunk streaming state machine:
//
//	Absent -> GenQueued -> Generating -> Loaded
//	  -> MeshQueued -> Meshing -> Displayed
//	  -> (edit) -> MeshQueued ...
//	  -> (out of range) -> Absent
//
// Absent chunks have no entry in the state map. Transitions happen on
// the game-loop goroutine; the work itself runs on the pool.
type phase uint8

const (
	phaseGenQueued phase = iota
	phaseGenerating
	phaseLoaded
	phaseMeshQueued
	phaseMeshing
	phaseDisplayed
	// phaseDead parks chunks whose generation kept failing so they do
	// not retry every tick.
	phaseDead
)

const (
	// maxEnqueuePerTick bounds how many new generation targets one
	// tick may discover.
	maxEnqueuePerTick = 64

	// maxDispatchPerTick bounds how many tasks one tick hands to the
	// pool.
	maxDispatchPerTick = 16

	// maxGenRetries bounds generation retries before a chunk is
	// marked dead.
	maxGenRetries = 3
)

type chunkState struct {
	phase   phase
	retries int

	// displayed tracks whether the render backend holds a mesh for
	// this chunk, for removal on unload.
	displayed bool

	// missingAtMesh records which neighbor slabs were absent when the
	// current mesh was built; the seams are re-meshed when those
	// neighbors arrive.
	missingAtMesh [6]bool
}

// scheduler holds the per-chunk states and the precomputed spherical
// target offsets.
type scheduler struct {
	states        map[world.ChunkCoord]*chunkState
	renderRadius  int
	despawnRadius int

	// sphere is every offset within renderRadius (L2, chunk space),
	// nearest first.
	sphere [][3]int
}

func newScheduler(renderRadius, despawnRadius int) *scheduler {
	s := &scheduler{
		states:        make(map[world.ChunkCoord]*chunkState),
		renderRadius:  renderRadius,
		despawnRadius: despawnRadius,
	}
	r := renderRadius
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for dz := -r; dz <= r; dz++ {
				if dx*dx+dy*dy+dz*dz <= r*r {
					s.sphere = append(s.sphere, [3]int{dx, dy, dz})
				}
			}
		}
	}
	sort.Slice(s.sphere, func(i, j int) bool {
		a, b := s.sphere[i], s.sphere[j]
		da := a[0]*a[0] + a[1]*a[1] + a[2]*a[2]
		db := b[0]*b[0] + b[1]*b[1] + b[2]*b[2]
		if da != db {
			return da < db
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		if a[1] != b[1] {
			return a[1] < b[1]
		}
		return a[2] < b[2]
	})
	return s
}

// Tick advances the streaming pipeline by one frame: discover missing
// chunks, install finished work, dispatch queued tasks, evict distant
// chunks. It never blocks on a worker.
func (e *Engine) Tick() {
	defer profiling.Track("engine.Tick")()

	if e.hasPlayer {
		e.enqueueMissing()
	}
	e.drainResults()
	e.dispatch()
	if e.hasPlayer {
		e.evictFar()
	}
}

// enqueueMissing queues generation for absent chunks within the render
// sphere, nearest first, bounded per tick.
func (e *Engine) enqueueMissing() {
	queued := 0
	for _, off := range e.sched.sphere {
		if queued >= maxEnqueuePerTick {
			return
		}
		c := e.playerChunk.Add(off[0], off[1], off[2])
		if c.Y < 0 || c.Y >= world.WorldHeightChunks {
			continue
		}
		if _, ok := e.sched.states[c]; ok {
			continue
		}
		e.sched.states[c] = &chunkState{phase: phaseGenQueued}
		e.queue.push(taskGen, c, e.taskPriority(taskGen, c))
		queued++
	}
}

// taskPriority orders work by squared distance to the player; meshes
// edge out generations at equal distance so edits show up promptly.
func (e *Engine) taskPriority(kind taskKind, c world.ChunkCoord) int {
	p := c.DistSq(e.playerChunk) * 2
	if kind == taskGen {
		p++
	}
	return p
}

// requestRemesh queues a mesh rebuild for a loaded chunk. Requests for
// absent or still-generating chunks are dropped; those chunks mesh
// after they install.
func (e *Engine) requestRemesh(coord world.ChunkCoord) {
	st, ok := e.sched.states[coord]
	if !ok {
		return
	}
	switch st.phase {
	case phaseLoaded, phaseDisplayed, phaseMeshing:
		if e.queue.push(taskMesh, coord, e.taskPriority(taskMesh, coord)) && st.phase != phaseMeshing {
			st.phase = phaseMeshQueued
		}
	}
}

// drainResults installs every finished task without blocking.
func (e *Engine) drainResults() {
	for {
		select {
		case res := <-e.pool.results:
			if res.task.kind == taskGen {
				e.installGen(res)
			} else {
				e.installMesh(res)
			}
		default:
			return
		}
	}
}

// installGen installs a generated chunk, queues its mesh, and re-seams
// neighbors that were previously meshed against air at this border.
func (e *Engine) installGen(res result) {
	coord := res.task.coord
	st, ok := e.sched.states[coord]
	if !ok || st.phase != phaseGenerating {
		// Evicted (or reset) while generating; drop the result.
		return
	}

	if res.err != nil {
		st.retries++
		if st.retries >= maxGenRetries {
			st.phase = phaseDead
			e.logger.Printf("chunk %v dead after %d failed generations: %v", coord, st.retries, res.err)
			return
		}
		e.logger.Printf("chunk %v generation failed (attempt %d): %v", coord, st.retries, res.err)
		st.phase = phaseGenQueued
		e.queue.push(taskGen, coord, e.taskPriority(taskGen, coord))
		return
	}

	// Replay edits buffered while the task ran; the chunk is not yet
	// shared so this write is race-free.
	for p, id := range e.edits.ForChunk(coord) {
		lx, ly, lz := world.WorldToLocal(p)
		res.chunk.Set(lx, ly, lz, id)
	}

	e.store.Put(coord, res.chunk)
	st.phase = phaseLoaded
	e.requestRemesh(coord)

	for i, off := range world.NeighborOffsets {
		nb := coord.Add(off[0], off[1], off[2])
		if nst, ok := e.sched.states[nb]; ok && nst.missingAtMesh[i^1] {
			e.requestRemesh(nb)
		}
	}
}

// installMesh delivers a finished mesh unless it went stale: the chunk
// was edited past the snapshot version or unloaded entirely.
func (e *Engine) installMesh(res result) {
	coord := res.task.coord
	st, ok := e.sched.states[coord]
	if !ok {
		return
	}
	if res.skipped {
		// Chunk vanished between queueing and snapshot.
		return
	}
	if res.err != nil {
		// A panicked mesh build is dropped; the chunk keeps its
		// previous mesh until the next re-mesh request.
		e.logger.Printf("chunk %v mesh failed: %v", coord, res.err)
		return
	}
	current, loaded := e.store.Version(coord)
	if !loaded || res.version < current {
		// Stale: the edit that bumped the version also queued the
		// next mesh.
		return
	}

	e.meshUpdates = append(e.meshUpdates, MeshUpdate{Coord: coord, Mesh: res.mesh})
	e.store.ClearDirty(coord, res.version)
	st.phase = phaseDisplayed
	st.displayed = true
	st.missingAtMesh = res.missing
}

// dispatch hands queued tasks to the pool, closest first, bounded per
// tick and by pool backpressure.
func (e *Engine) dispatch() {
	for i := 0; i < maxDispatchPerTick; i++ {
		t, ok := e.queue.pop()
		if !ok {
			return
		}
		st, ok := e.sched.states[t.coord]
		if !ok {
			continue // evicted while queued
		}
		switch t.kind {
		case taskGen:
			if st.phase != phaseGenQueued {
				continue
			}
		case taskMesh:
			// A re-mesh queued while another mesh was in flight may
			// dispatch after that mesh installed (phase Displayed).
			switch st.phase {
			case phaseLoaded, phaseMeshQueued, phaseMeshing, phaseDisplayed:
			default:
				continue
			}
		}
		if !e.pool.trySubmit(t) {
			e.queue.unpop(t)
			return
		}
		if t.kind == taskGen {
			st.phase = phaseGenerating
		} else {
			st.phase = phaseMeshing
		}
	}
}

// evictFar unloads chunks beyond the despawn radius, then persists
// the regions of unloaded chunks that hold unsaved edits.
func (e *Engine) evictFar() {
	limit := e.sched.despawnRadius * e.sched.despawnRadius
	var flush map[world.RegionCoord]bool

	for coord, st := range e.sched.states {
		if coord.DistSq(e.playerChunk) <= limit {
			continue
		}
		e.store.Remove(coord)
		if rc := coord.Region(); e.edits.IsDirty(rc) {
			if flush == nil {
				flush = make(map[world.RegionCoord]bool)
			}
			flush[rc] = true
		}
		if st.displayed {
			e.meshRemovals = append(e.meshRemovals, coord)
		}
		delete(e.sched.states, coord)
	}

	for rc := range flush {
		if err := e.flushRegion(rc); err != nil {
			e.logger.Printf("flush region %v on unload: %v", rc, err)
		}
	}
}
