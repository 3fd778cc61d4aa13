package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxcraft/internal/registry"
	"voxcraft/internal/world"
)

// RaycastHit describes the first block a ray enters.
type RaycastHit struct {
	Block    world.BlockPos
	ID       world.BlockID
	Normal   [3]int // unit normal of the entered face
	Distance float32
}

// targetable blocks stop the ray. Water and invisible blocks are
// looked through.
func targetable(id world.BlockID) bool {
	if id == world.BlockWater {
		return false
	}
	return registry.KindOf(id) != registry.KindInvisible
}

// Raycast walks the voxel grid cell by cell from origin along dir
// (which need not be normalized) up to maxDist, returning the first
// targetable block together with the face it was entered through.
func Raycast(src BlockSource, origin, dir mgl32.Vec3, maxDist float32) (RaycastHit, bool) {
	d := dir
	if l := d.Len(); l > 0 {
		d = d.Mul(1 / l)
	} else {
		return RaycastHit{}, false
	}

	cell := world.BlockPos{
		X: int(math.Floor(float64(origin.X()))),
		Y: int(math.Floor(float64(origin.Y()))),
		Z: int(math.Floor(float64(origin.Z()))),
	}

	var step [3]int
	var tMax, tDelta [3]float32
	pos := [3]float32{origin.X(), origin.Y(), origin.Z()}
	cellF := [3]int{cell.X, cell.Y, cell.Z}
	dirF := [3]float32{d.X(), d.Y(), d.Z()}

	inf := float32(math.Inf(1))
	for i := 0; i < 3; i++ {
		switch {
		case dirF[i] > 0:
			step[i] = 1
			tMax[i] = (float32(cellF[i]+1) - pos[i]) / dirF[i]
			tDelta[i] = 1 / dirF[i]
		case dirF[i] < 0:
			step[i] = -1
			tMax[i] = (pos[i] - float32(cellF[i])) / -dirF[i]
			tDelta[i] = 1 / -dirF[i]
		default:
			step[i] = 0
			tMax[i] = inf
			tDelta[i] = inf
		}
	}

	// The starting cell has no entry face; report a zero normal if it
	// is already targetable.
	if id := src.BlockAt(cell); targetable(id) {
		return RaycastHit{Block: cell, ID: id}, true
	}

	t := float32(0)
	for t <= maxDist {
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}

		t = tMax[axis]
		if t > maxDist {
			break
		}
		tMax[axis] += tDelta[axis]

		switch axis {
		case 0:
			cell.X += step[0]
		case 1:
			cell.Y += step[1]
		case 2:
			cell.Z += step[2]
		}

		if id := src.BlockAt(cell); targetable(id) {
			hit := RaycastHit{Block: cell, ID: id, Distance: t}
			hit.Normal[axis] = -step[axis]
			return hit, true
		}
	}

	return RaycastHit{}, false
}
