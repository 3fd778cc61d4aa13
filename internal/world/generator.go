package world

import (
	"voxcraft/internal/profiling"
)

// Generator produces chunks deterministically from the world seed.
// Generate is a pure function of (seed, coord) apart from the edit
// overlay replayed as the final pass, so any chunk can be built on any
// worker in any order.
type Generator struct {
	seed  int64
	noise *TerrainNoise
	edits *EditStore
}

// NewGenerator creates a generator for a seed. The edit store may be
// nil for edit-free generation (tests, tooling).
func NewGenerator(seed int64, edits *EditStore) *Generator {
	return &Generator{
		seed:  seed,
		noise: NewTerrainNoise(seed),
		edits: edits,
	}
}

// Seed returns the world seed.
func (g *Generator) Seed() int64 { return g.seed }

// Noise exposes the noise layers for feature placement and spawn
// height queries.
func (g *Generator) Noise() *TerrainNoise { return g.noise }

// SurfaceHeight samples the terrain height at a world column.
func (g *Generator) SurfaceHeight(wx, wz int) int {
	return g.noise.SurfaceHeight(wx, wz)
}

// carveable blocks can be replaced by cave air/water.
func carveable(id BlockID) bool {
	switch id {
	case BlockStone, BlockDirt, BlockGrass, BlockSand, BlockSandstone,
		BlockGravel, BlockClay, BlockCoalOre, BlockIronOre, BlockGoldOre, BlockDiamondOre:
		return true
	}
	return false
}

// Generate builds the chunk at a coordinate: bedrock, heightmap
// surface, ores, caves, features, then the player edit overlay.
func (g *Generator) Generate(coord ChunkCoord) *Chunk {
	defer profiling.Track("world.Generate")()

	chunk := NewChunk()
	origin := coord.Origin()

	// Heightmap and biome per column, shared by the later passes.
	var heights [ChunkSize][ChunkSize]int
	var biomes [ChunkSize][ChunkSize]*Biome
	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			wx := origin.X + x
			wz := origin.Z + z
			heights[z][x] = g.noise.SurfaceHeight(wx, wz)
			biomes[z][x] = g.noise.BiomeAt(wx, wz)
		}
	}

	// Terrain fill.
	for y := 0; y < ChunkSize; y++ {
		wy := origin.Y + y
		for z := 0; z < ChunkSize; z++ {
			for x := 0; x < ChunkSize; x++ {
				surface := heights[z][x]
				biome := biomes[z][x]

				var block BlockID
				switch {
				case wy < 0:
					block = BlockAir
				case wy == 0:
					block = BlockBedrock
				case wy > surface:
					if wy <= SeaLevel {
						block = BlockWater
					} else {
						block = BlockAir
					}
				case wy == surface && surface >= SeaLevel:
					block = biome.Surface
				case wy == surface:
					block = biome.Underwater
				case wy > surface-4:
					block = biome.Filler
				default:
					block = BlockStone
				}
				chunk.Set(x, y, z, block)
			}
		}
	}

	// Ores and gravel pockets replace stone; caves carve last so a
	// tunnel can cut through a vein.
	for y := 0; y < ChunkSize; y++ {
		wy := origin.Y + y
		for z := 0; z < ChunkSize; z++ {
			for x := 0; x < ChunkSize; x++ {
				if chunk.Get(x, y, z) != BlockStone {
					continue
				}
				wx := origin.X + x
				wz := origin.Z + z
				if wy < 60 && g.noise.IsGravel(wx, wy, wz) {
					chunk.Set(x, y, z, BlockGravel)
					continue
				}
				if ore, ok := g.noise.OreAt(wx, wy, wz); ok {
					chunk.Set(x, y, z, ore)
				}
			}
		}
	}

	for y := 0; y < ChunkSize; y++ {
		wy := origin.Y + y
		for z := 0; z < ChunkSize; z++ {
			for x := 0; x < ChunkSize; x++ {
				current := chunk.Get(x, y, z)
				if !carveable(current) {
					continue
				}
				wx := origin.X + x
				wz := origin.Z + z
				if !g.noise.IsCave(wx, wy, wz, heights[z][x]) {
					continue
				}
				// Flooded below the water line.
				if wy <= SeaLevel {
					chunk.Set(x, y, z, BlockWater)
				} else {
					chunk.Set(x, y, z, BlockAir)
				}
			}
		}
	}

	// Clay patches replace sand/dirt around the water line.
	for y := 0; y < ChunkSize; y++ {
		wy := origin.Y + y
		if wy < 60 || wy > SeaLevel {
			continue
		}
		for z := 0; z < ChunkSize; z++ {
			for x := 0; x < ChunkSize; x++ {
				current := chunk.Get(x, y, z)
				if current != BlockSand && current != BlockDirt {
					continue
				}
				if g.noise.IsClay(origin.X+x, origin.Z+z) {
					chunk.Set(x, y, z, BlockClay)
				}
			}
		}
	}

	g.placeTrees(chunk, coord)
	g.placeTallGrass(chunk, coord, &heights)

	// Edit overlay last: generation stays idempotent under replay and
	// player edits survive unload.
	if g.edits != nil {
		for p, id := range g.edits.ForChunk(coord) {
			lx, ly, lz := WorldToLocal(p)
			chunk.Set(lx, ly, lz, id)
		}
	}

	chunk.Generated = true
	return chunk
}
