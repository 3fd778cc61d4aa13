package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxcraft/internal/world"
)

// AABB is an axis-aligned box in world space.
type AABB struct {
	Min, Max mgl32.Vec3
}

// Offset translates the box.
func (b AABB) Offset(v mgl32.Vec3) AABB {
	return AABB{Min: b.Min.Add(v), Max: b.Max.Add(v)}
}

// SweepResult reports the earliest contact of a swept box.
// T is the fraction of the displacement at which contact occurs,
// Normal the axis-aligned surface normal of the touched face.
type SweepResult struct {
	T      float32
	Normal [3]int
}

// SweepAABB sweeps the box along vel (one step's displacement) against
// every solid block cell in the broadphase region and returns the
// earliest axis-aligned contact. Axis-by-axis resolution is the
// caller's job.
func SweepAABB(src BlockSource, box AABB, vel mgl32.Vec3) (SweepResult, bool) {
	if vel.Len() == 0 {
		return SweepResult{}, false
	}

	end := box.Offset(vel)
	minX := floorf(min32(box.Min.X(), end.Min.X()))
	minY := floorf(min32(box.Min.Y(), end.Min.Y()))
	minZ := floorf(min32(box.Min.Z(), end.Min.Z()))
	maxX := floorf(max32(box.Max.X(), end.Max.X()))
	maxY := floorf(max32(box.Max.Y(), end.Max.Y()))
	maxZ := floorf(max32(box.Max.Z(), end.Max.Z()))

	best := SweepResult{T: 1}
	found := false

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				if !SolidAt(src, world.BlockPos{X: x, Y: y, Z: z}) {
					continue
				}
				cell := AABB{
					Min: mgl32.Vec3{float32(x), float32(y), float32(z)},
					Max: mgl32.Vec3{float32(x + 1), float32(y + 1), float32(z + 1)},
				}
				if r, ok := sweepOne(box, vel, cell); ok && r.T < best.T {
					best = r
					found = true
				}
			}
		}
	}

	return best, found
}

// sweepOne computes the entry time of a moving box against one static
// cell.
func sweepOne(box AABB, vel mgl32.Vec3, cell AABB) (SweepResult, bool) {
	inf := float32(math.Inf(1))
	var entry, exit [3]float32

	for i := 0; i < 3; i++ {
		v := vel[i]
		switch {
		case v > 0:
			entry[i] = (cell.Min[i] - box.Max[i]) / v
			exit[i] = (cell.Max[i] - box.Min[i]) / v
		case v < 0:
			entry[i] = (cell.Max[i] - box.Min[i]) / v
			exit[i] = (cell.Min[i] - box.Max[i]) / v
		default:
			// Not moving on this axis: must already overlap.
			if box.Max[i] <= cell.Min[i] || box.Min[i] >= cell.Max[i] {
				return SweepResult{}, false
			}
			entry[i] = -inf
			exit[i] = inf
		}
	}

	entryTime := entry[0]
	axis := 0
	for i := 1; i < 3; i++ {
		if entry[i] > entryTime {
			entryTime = entry[i]
			axis = i
		}
	}
	exitTime := min32(exit[0], min32(exit[1], exit[2]))

	if entryTime >= exitTime || entryTime < 0 || entryTime >= 1 {
		return SweepResult{}, false
	}

	r := SweepResult{T: entryTime}
	if vel[axis] > 0 {
		r.Normal[axis] = -1
	} else {
		r.Normal[axis] = 1
	}
	return r, true
}

func floorf(v float32) int {
	return int(math.Floor(float64(v)))
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
