package meshing

import (
	"voxcraft/internal/profiling"
	"voxcraft/internal/registry"
	"voxcraft/internal/world"
)

// VertexStride is the number of float32 per vertex:
// position(3) + normal(3) + uv(2) + tile origin(2) + sun light(1).
const VertexStride = 11

// Mesh is the renderable output for one chunk. Vertex positions are
// chunk-local; the render backend translates by the chunk origin.
// Indices[:OpaqueIndexCount] is the opaque bucket, the remainder is
// the alpha bucket (water, glass, leaves, cross-billboards).
type Mesh struct {
	Vertices         []float32
	Indices          []uint32
	OpaqueIndexCount uint32
}

// IsEmpty reports whether the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Indices) == 0
}

// faceDir describes one sweep direction for the greedy pass.
type faceDir struct {
	face        registry.Face
	axis        int // swept axis: 0=X, 1=Y, 2=Z
	uAxis       int // mask u axis
	vAxis       int // mask v axis
	backFace    bool
	flipWinding bool
	light       float32 // baked directional sun term
}

var faceDirs = [6]faceDir{
	{face: registry.FaceEast, axis: 0, uAxis: 2, vAxis: 1, backFace: false, flipWinding: true, light: 0.6},
	{face: registry.FaceWest, axis: 0, uAxis: 2, vAxis: 1, backFace: true, flipWinding: true, light: 0.6},
	{face: registry.FaceTop, axis: 1, uAxis: 0, vAxis: 2, backFace: false, flipWinding: true, light: 1.0},
	{face: registry.FaceBottom, axis: 1, uAxis: 0, vAxis: 2, backFace: true, flipWinding: true, light: 0.4},
	{face: registry.FaceSouth, axis: 2, uAxis: 0, vAxis: 1, backFace: false, flipWinding: false, light: 0.8},
	{face: registry.FaceNorth, axis: 2, uAxis: 0, vAxis: 1, backFace: true, flipWinding: false, light: 0.8},
}

// visibleFace decides whether block emits a face against neighbor.
func visibleFace(block, neighbor world.BlockID) bool {
	if registry.IsAir(block) {
		return false
	}
	if !registry.IsSolid(block) && !registry.IsTransparent(block) {
		return false
	}
	if registry.IsAir(neighbor) {
		return true
	}
	if registry.IsSolid(block) && !registry.IsTransparent(block) && registry.IsTransparent(neighbor) {
		return true
	}
	if registry.IsTransparent(block) && block != neighbor {
		return true
	}
	return false
}

// builder accumulates vertices plus separate opaque/alpha index lists.
type builder struct {
	vertices []float32
	opaque   []uint32
	alpha    []uint32
}

func (b *builder) pushVertex(pos [3]float32, normal [3]float32, uv, tile [2]float32, light float32) uint32 {
	idx := uint32(len(b.vertices) / VertexStride)
	b.vertices = append(b.vertices,
		pos[0], pos[1], pos[2],
		normal[0], normal[1], normal[2],
		uv[0], uv[1],
		tile[0], tile[1],
		light,
	)
	return idx
}

func (b *builder) indices(alpha bool) *[]uint32 {
	if alpha {
		return &b.alpha
	}
	return &b.opaque
}

// Build runs greedy meshing over a padded snapshot. The result is a
// pure function of the snapshot: the same input always produces
// byte-identical buffers.
func Build(s *Snapshot) *Mesh {
	defer profiling.Track("meshing.Build")()

	b := &builder{vertices: make([]float32, 0, 4096)}
	size := world.ChunkSize

	blockAt := func(axis, uAxis, vAxis, a, u, v int) world.BlockID {
		var p [3]int
		p[axis] = a
		p[uAxis] = u
		p[vAxis] = v
		return s.Center[world.BlockIndex(p[0], p[1], p[2])]
	}

	for di := range faceDirs {
		d := &faceDirs[di]
		normal := d.face.Normal()
		step := 1
		if d.backFace {
			step = -1
		}

		for slice := 0; slice < size; slice++ {
			// mask[v][u] holds the block id where a face is visible.
			var mask [world.ChunkSize][world.ChunkSize]world.BlockID

			for v := 0; v < size; v++ {
				for u := 0; u < size; u++ {
					block := blockAt(d.axis, d.uAxis, d.vAxis, slice, u, v)
					kind := registry.KindOf(block)
					if kind != registry.KindOpaque && kind != registry.KindTransparent {
						continue
					}
					var np [3]int
					np[d.axis] = slice + step
					np[d.uAxis] = u
					np[d.vAxis] = v
					neighbor := s.At(np[0], np[1], np[2])
					if visibleFace(block, neighbor) {
						mask[v][u] = block
					}
				}
			}

			for v := 0; v < size; v++ {
				u := 0
				for u < size {
					block := mask[v][u]
					if block == world.BlockAir {
						u++
						continue
					}

					var w, h int
					if registry.KindOf(block) == registry.KindTransparent {
						// Merging transparent runs would drop the
						// interior faces between adjacent panes.
						mask[v][u] = world.BlockAir
						w, h = 1, 1
					} else {
						w = 1
						for u+w < size && mask[v][u+w] == block {
							w++
						}
						h = 1
					expand:
						for v+h < size {
							for du := 0; du < w; du++ {
								if mask[v+h][u+du] != block {
									break expand
								}
							}
							h++
						}
						for dv := 0; dv < h; dv++ {
							for du := 0; du < w; du++ {
								mask[v+dv][u+du] = world.BlockAir
							}
						}
					}

					emitQuad(b, d, slice, u, v, w, h, normal, block)
					u += w
				}
			}
		}
	}

	// Cross-billboards are emitted per block, untouched by merging.
	for y := 0; y < size; y++ {
		for z := 0; z < size; z++ {
			for x := 0; x < size; x++ {
				block := s.Center[world.BlockIndex(x, y, z)]
				if registry.KindOf(block) == registry.KindCross {
					emitCross(b, x, y, z, block)
				}
			}
		}
	}

	mesh := &Mesh{
		Vertices:         b.vertices,
		OpaqueIndexCount: uint32(len(b.opaque)),
	}
	mesh.Indices = append(b.opaque, b.alpha...)
	return mesh
}

// emitQuad pushes four vertices and six indices for one merged
// rectangle.
func emitQuad(b *builder, d *faceDir, slice, uStart, vStart, w, h int, normal [3]float32, block world.BlockID) {
	faceOffset := float32(slice)
	if !d.backFace {
		faceOffset = float32(slice + 1)
	}

	u0 := float32(uStart)
	v0 := float32(vStart)
	u1 := float32(uStart + w)
	v1 := float32(vStart + h)

	corner := func(u, v float32) [3]float32 {
		var p [3]float32
		p[d.axis] = faceOffset
		p[d.uAxis] = u
		p[d.vAxis] = v
		return p
	}

	tile := registry.FaceTexture(block, d.face)
	uvs := registry.FaceUVsTiled(tile, w, h)
	uvBL, uvBR, uvTR, uvTL := uvs[0], uvs[1], uvs[2], uvs[3]
	origin := registry.TileOrigin(tile)

	var base uint32
	if d.backFace {
		base = b.pushVertex(corner(u0, v0), normal, uvBL, origin, d.light)
		b.pushVertex(corner(u0, v1), normal, uvTL, origin, d.light)
		b.pushVertex(corner(u1, v1), normal, uvTR, origin, d.light)
		b.pushVertex(corner(u1, v0), normal, uvBR, origin, d.light)
	} else {
		base = b.pushVertex(corner(u0, v0), normal, uvBL, origin, d.light)
		b.pushVertex(corner(u1, v0), normal, uvBR, origin, d.light)
		b.pushVertex(corner(u1, v1), normal, uvTR, origin, d.light)
		b.pushVertex(corner(u0, v1), normal, uvTL, origin, d.light)
	}

	idx := b.indices(registry.KindOf(block) == registry.KindTransparent)
	if d.flipWinding {
		*idx = append(*idx, base, base+2, base+1, base, base+3, base+2)
	} else {
		*idx = append(*idx, base, base+1, base+2, base, base+2, base+3)
	}
}
