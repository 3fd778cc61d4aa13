package physics

import (
	"voxcraft/internal/registry"
	"voxcraft/internal/world"
)

// BlockSource answers voxel queries for the physics routines. The
// engine implements it; its contract is to return a conservative
// solid block for unloaded chunks so nothing ever falls through the
// world.
type BlockSource interface {
	BlockAt(p world.BlockPos) world.BlockID
}

// SolidAt reports whether the block cell at a position blocks
// movement.
func SolidAt(src BlockSource, p world.BlockPos) bool {
	return registry.IsSolid(src.BlockAt(p))
}
