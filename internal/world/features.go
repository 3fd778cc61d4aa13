package world

// Feature placement. Trees can straddle chunk boundaries, so every
// chunk scans a padded region around itself for candidate origins and
// writes only the voxels that land inside its own bounds. Adjacent
// chunks recompute the same candidates from the same hashes and write
// their share; no cross-chunk communication happens at generation
// time.

const (
	// treeCellSize partitions the XZ plane into cells that hold at
	// most one tree each, which enforces spacing.
	treeCellSize = 8

	// treePad covers the widest canopy (radius 2) plus one.
	treePad = 3

	oakCanopyRadius   = 2
	birchCanopyRadius = 1
)

// treeCandidate is a deterministic tree origin derived from a cell
// hash.
type treeCandidate struct {
	wx, wz  int
	surface int
	trunk   int
	log     BlockID
	leaves  BlockID
	radius  int
}

// treeAt resolves the candidate for one grid cell, or false when the
// cell rolls no tree or the site cannot host one.
func (g *Generator) treeAt(cellX, cellZ int) (treeCandidate, bool) {
	h := featureHash(cellX, cellZ, g.seed+saltTrees)
	if h%100 >= 35 {
		return treeCandidate{}, false
	}
	wx := cellX*treeCellSize + 2 + int((h>>8)%4)
	wz := cellZ*treeCellSize + 2 + int((h>>16)%4)

	if g.noise.BiomeAt(wx, wz) != BiomePlains {
		return treeCandidate{}, false
	}
	surface := g.noise.SurfaceHeight(wx, wz)
	if surface < SeaLevel {
		return treeCandidate{}, false
	}

	c := treeCandidate{wx: wx, wz: wz, surface: surface}
	if (h>>24)%10 < 3 {
		c.log = BlockBirchLog
		c.leaves = BlockBirchLeaves
		c.trunk = 5 + int((h>>32)%3)
		c.radius = birchCanopyRadius
	} else {
		c.log = BlockOakLog
		c.leaves = BlockOakLeaves
		c.trunk = 5 + int((h>>32)%2)
		c.radius = oakCanopyRadius
	}
	return c, true
}

// placeTrees writes every candidate tree's voxels that fall inside
// this chunk.
func (g *Generator) placeTrees(chunk *Chunk, coord ChunkCoord) {
	origin := coord.Origin()

	cellMinX := FloorDiv(origin.X-treePad, treeCellSize)
	cellMaxX := FloorDiv(origin.X+ChunkSize+treePad-1, treeCellSize)
	cellMinZ := FloorDiv(origin.Z-treePad, treeCellSize)
	cellMaxZ := FloorDiv(origin.Z+ChunkSize+treePad-1, treeCellSize)

	for cz := cellMinZ; cz <= cellMaxZ; cz++ {
		for cx := cellMinX; cx <= cellMaxX; cx++ {
			tree, ok := g.treeAt(cx, cz)
			if !ok {
				continue
			}
			g.writeTree(chunk, origin, tree)
		}
	}
}

// writeTree clips one tree to the chunk bounds.
func (g *Generator) writeTree(chunk *Chunk, origin BlockPos, t treeCandidate) {
	set := func(wx, wy, wz int, id BlockID, onlyAir bool) {
		lx := wx - origin.X
		ly := wy - origin.Y
		lz := wz - origin.Z
		if lx < 0 || lx >= ChunkSize || ly < 0 || ly >= ChunkSize || lz < 0 || lz >= ChunkSize {
			return
		}
		if onlyAir && chunk.Get(lx, ly, lz) != BlockAir {
			return
		}
		chunk.Set(lx, ly, lz, id)
	}

	for dy := 1; dy <= t.trunk; dy++ {
		set(t.wx, t.surface+dy, t.wz, t.log, false)
	}

	for dy := t.trunk - 2; dy <= t.trunk+1; dy++ {
		radius := t.radius
		if dy >= t.trunk {
			radius = 1
		}
		for dz := -radius; dz <= radius; dz++ {
			for dx := -radius; dx <= radius; dx++ {
				// Trim corners for a rounder canopy; never clobber
				// the trunk.
				if dx == 0 && dz == 0 && dy <= t.trunk {
					continue
				}
				if absInt(dx) == radius && absInt(dz) == radius {
					continue
				}
				set(t.wx+dx, t.surface+dy, t.wz+dz, t.leaves, true)
			}
		}
	}
}

// placeTallGrass scatters cross-billboard grass on exposed plains
// surface. Single-block features never straddle, so only owned
// columns are considered.
func (g *Generator) placeTallGrass(chunk *Chunk, coord ChunkCoord, heights *[ChunkSize][ChunkSize]int) {
	origin := coord.Origin()
	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			surface := heights[z][x]
			if surface < SeaLevel {
				continue
			}
			above := surface + 1 - origin.Y
			ground := surface - origin.Y
			if above < 0 || above >= ChunkSize {
				continue
			}
			wx := origin.X + x
			wz := origin.Z + z
			if g.noise.BiomeAt(wx, wz) != BiomePlains {
				continue
			}
			if ground >= 0 && ground < ChunkSize && chunk.Get(x, ground, z) != BlockGrass {
				continue
			}
			if chunk.Get(x, above, z) != BlockAir {
				continue
			}
			if g.noise.GrassScatter(wx, wz) {
				chunk.Set(x, above, z, BlockTallGrass)
			}
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
