package meshing

import (
	"voxcraft/internal/world"
)

// Snapshot is the mesher's input: an isolated copy of one chunk plus
// its six neighbor block arrays, taken under the store lock. The
// mesher never touches the store, so meshing runs lock-free on a
// worker.
//
// Missing neighbors are treated as all-air; the scheduler records the
// mask and re-meshes the chunk when the neighbor arrives.
type Snapshot struct {
	Coord   world.ChunkCoord
	Version uint64

	Center    [world.ChunkVolume]world.BlockID
	Neighbors [6]*[world.ChunkVolume]world.BlockID

	// Missing marks neighbor slots that were not loaded at snapshot
	// time, in world.NeighborOffsets order.
	Missing [6]bool
}

// Take copies a chunk and its neighborhood out of the store. Returns
// false when the chunk is not loaded.
func Take(store *world.ChunkStore, coord world.ChunkCoord) (*Snapshot, bool) {
	n, ok := store.SnapshotNeighborhood(coord)
	if !ok {
		return nil, false
	}
	s := &Snapshot{
		Coord:     coord,
		Version:   n.Version,
		Center:    n.Center,
		Neighbors: n.Neighbors,
	}
	for i, nb := range n.Neighbors {
		s.Missing[i] = nb == nil
	}
	return s, true
}

// At reads a block at local coordinates extended one block past the
// chunk on each axis. Exactly one axis may be out of range; the read
// resolves into the matching neighbor slab, or air when that neighbor
// is missing.
func (s *Snapshot) At(x, y, z int) world.BlockID {
	size := world.ChunkSize
	if x >= 0 && x < size && y >= 0 && y < size && z >= 0 && z < size {
		return s.Center[world.BlockIndex(x, y, z)]
	}

	var slot int
	switch {
	case x >= size:
		slot, x = 0, 0
	case x < 0:
		slot, x = 1, size-1
	case y >= size:
		slot, y = 2, 0
	case y < 0:
		slot, y = 3, size-1
	case z >= size:
		slot, z = 4, 0
	default:
		slot, z = 5, size-1
	}
	nb := s.Neighbors[slot]
	if nb == nil {
		return world.BlockAir
	}
	return nb[world.BlockIndex(x, y, z)]
}
