package meshing

import (
	"voxcraft/internal/registry"
	"voxcraft/internal/world"
)

// crossInset pulls the two crossed quads in from the block edges so
// they never poke past the cell.
const crossInset = 0.15

// emitCross emits the X-shaped pair of quads for a cross-kind block
// (tall grass, torches). Both quads are double-sided and go into the
// alpha bucket; neighbors are irrelevant.
func emitCross(b *builder, x, y, z int, block world.BlockID) {
	tile := registry.FaceTexture(block, registry.FaceSouth)
	uv := registry.TileUVs(tile)
	origin := registry.TileOrigin(tile)

	uvBL := [2]float32{uv[0], uv[3]}
	uvBR := [2]float32{uv[2], uv[3]}
	uvTR := [2]float32{uv[2], uv[1]}
	uvTL := [2]float32{uv[0], uv[1]}

	bx, by, bz := float32(x), float32(y), float32(z)
	lo := float32(crossInset)
	hi := float32(1 - crossInset)

	// Uniform upward normal gives the billboard even lighting.
	normal := [3]float32{0, 1, 0}
	const light = 1.0

	q1 := [4][3]float32{
		{bx + lo, by, bz + lo},
		{bx + hi, by, bz + hi},
		{bx + hi, by + 1, bz + hi},
		{bx + lo, by + 1, bz + lo},
	}
	q2 := [4][3]float32{
		{bx + hi, by, bz + lo},
		{bx + lo, by, bz + hi},
		{bx + lo, by + 1, bz + hi},
		{bx + hi, by + 1, bz + lo},
	}

	frontUVs := [4][2]float32{uvBL, uvBR, uvTR, uvTL}
	backUVs := [4][2]float32{uvBR, uvBL, uvTL, uvTR} // mirrored

	emitSide := func(verts *[4][3]float32, uvs *[4][2]float32, front bool) {
		base := b.pushVertex(verts[0], normal, uvs[0], origin, light)
		b.pushVertex(verts[1], normal, uvs[1], origin, light)
		b.pushVertex(verts[2], normal, uvs[2], origin, light)
		b.pushVertex(verts[3], normal, uvs[3], origin, light)
		if front {
			b.alpha = append(b.alpha, base, base+1, base+2, base, base+2, base+3)
		} else {
			b.alpha = append(b.alpha, base, base+2, base+1, base, base+3, base+2)
		}
	}

	emitSide(&q1, &frontUVs, true)
	emitSide(&q1, &backUVs, false)
	emitSide(&q2, &frontUVs, true)
	emitSide(&q2, &backUVs, false)
}
