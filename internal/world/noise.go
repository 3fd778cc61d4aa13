package world

import (
	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Per-layer seed salts. Every noise layer must get a distinct salt so
// no two layers ever sample the same field.
const (
	saltHeight      = 0
	saltTemperature = 1
	saltHumidity    = 2
	saltTrees       = 3
	saltCheese      = 10
	saltSpaghettiA  = 20
	saltSpaghettiB  = 21
	saltNoodleA     = 30
	saltNoodleB     = 31
	saltGravel      = 40
	saltClay        = 41
	saltGrass       = 42
	saltOreCoal     = 50
	saltOreIron     = 51
	saltOreGold     = 52
	saltOreDiamond  = 53
)

// Terrain height range and noise frequencies.
const (
	baseHeight      = 70.0
	heightAmplitude = 30.0
	minHeight       = 40
	maxHeight       = 100

	terrainFrequency = 0.005
	biomeFrequency   = 0.002
)

// Cave carving thresholds.
const (
	cheeseThreshold    = 0.32
	spaghettiThreshold = 0.12
	noodleThreshold    = 0.07

	// Caves never open within this many blocks of the surface.
	caveSurfaceMargin = 4
)

const (
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 3
)

// TerrainNoise bundles every noise layer used by generation, all
// derived from a single world seed plus the per-layer salts above.
// Instances are read-only after construction and safe for concurrent
// workers.
type TerrainNoise struct {
	height *perlin.Perlin

	temperature opensimplex.Noise
	humidity    opensimplex.Noise

	caveCheese     *perlin.Perlin
	caveSpaghettiA *perlin.Perlin
	caveSpaghettiB *perlin.Perlin
	caveNoodleA    *perlin.Perlin
	caveNoodleB    *perlin.Perlin

	gravel *perlin.Perlin
	clay   *perlin.Perlin
	grass  *perlin.Perlin

	// Ore order: coal, iron, gold, diamond.
	ores [4]*perlin.Perlin

	seed int64
}

// NewTerrainNoise builds all layers for a world seed.
func NewTerrainNoise(seed int64) *TerrainNoise {
	p := func(salt int64) *perlin.Perlin {
		return perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed+salt)
	}
	return &TerrainNoise{
		height:         p(saltHeight),
		temperature:    opensimplex.New(seed + saltTemperature),
		humidity:       opensimplex.New(seed + saltHumidity),
		caveCheese:     p(saltCheese),
		caveSpaghettiA: p(saltSpaghettiA),
		caveSpaghettiB: p(saltSpaghettiB),
		caveNoodleA:    p(saltNoodleA),
		caveNoodleB:    p(saltNoodleB),
		gravel:         p(saltGravel),
		clay:           p(saltClay),
		grass:          p(saltGrass),
		ores: [4]*perlin.Perlin{
			p(saltOreCoal),
			p(saltOreIron),
			p(saltOreGold),
			p(saltOreDiamond),
		},
		seed: seed,
	}
}

// SurfaceHeight samples the terrain heightmap at a world column.
// The result is clamped to [minHeight, maxHeight].
func (tn *TerrainNoise) SurfaceHeight(wx, wz int) int {
	n := tn.height.Noise2D(float64(wx)*terrainFrequency, float64(wz)*terrainFrequency)
	h := int(baseHeight + n*heightAmplitude)
	if h < minHeight {
		h = minHeight
	}
	if h > maxHeight {
		h = maxHeight
	}
	return h
}

// BiomeAt picks the biome for a world column from the low-frequency
// temperature/humidity pair.
func (tn *TerrainNoise) BiomeAt(wx, wz int) *Biome {
	x := float64(wx) * biomeFrequency
	z := float64(wz) * biomeFrequency
	temp := tn.temperature.Eval2(x, z)
	humid := tn.humidity.Eval2(x, z)
	// Dry heat makes desert; humidity pushes the cutoff up.
	if temp > 0.3+0.2*humid {
		return BiomeDesert
	}
	return BiomePlains
}

// IsCave reports whether the block should be carved. Three independent
// tests: cheese (chambers), spaghetti (tunnels), noodle (thin
// passages). Carving never reaches within caveSurfaceMargin blocks of
// the surface and never touches bedrock.
func (tn *TerrainNoise) IsCave(wx, wy, wz, surface int) bool {
	if wy < 1 || wy > surface-caveSurfaceMargin {
		return false
	}
	x, y, z := float64(wx), float64(wy), float64(wz)

	if tn.caveCheese.Noise3D(x*0.02, y*0.02, z*0.02) > cheeseThreshold {
		return true
	}

	sa := tn.caveSpaghettiA.Noise3D(x*0.04, y*0.04, z*0.04)
	sb := tn.caveSpaghettiB.Noise3D(x*0.04, y*0.04, z*0.04)
	if abs64(sa)+abs64(sb) < spaghettiThreshold {
		return true
	}

	na := tn.caveNoodleA.Noise3D(x*0.08, y*0.08, z*0.08)
	nb := tn.caveNoodleB.Noise3D(x*0.08, y*0.08, z*0.08)
	return abs64(na)+abs64(nb) < noodleThreshold
}

// oreSpec describes one ore layer: its Y band, the depth its
// probability peaks at, and a rarity scale.
type oreSpec struct {
	block BlockID
	index int
	min   int
	max   int
	peak  int
	scale float64
}

// Deepest and rarest first so a diamond position is never claimed by
// coal.
var oreSpecs = [4]oreSpec{
	{block: BlockDiamondOre, index: 3, min: 1, max: 16, peak: 8, scale: 0.35},
	{block: BlockGoldOre, index: 2, min: 1, max: 32, peak: 16, scale: 0.45},
	{block: BlockIronOre, index: 1, min: 2, max: 64, peak: 32, scale: 0.68},
	{block: BlockCoalOre, index: 0, min: 4, max: 128, peak: 96, scale: 0.82},
}

// OreAt determines which ore (if any) replaces stone at a position.
func (tn *TerrainNoise) OreAt(wx, wy, wz int) (BlockID, bool) {
	x, y, z := float64(wx)*0.1, float64(wy)*0.1, float64(wz)*0.1
	for _, spec := range oreSpecs {
		w := triangularWeight(wy, spec.min, spec.max, spec.peak)
		if w <= 0 {
			continue
		}
		density := tn.ores[spec.index].Noise3D(x, y, z)
		if density > 0.55-w*spec.scale*0.45 {
			return spec.block, true
		}
	}
	return BlockAir, false
}

// IsGravel reports whether gravel replaces stone here.
func (tn *TerrainNoise) IsGravel(wx, wy, wz int) bool {
	return tn.gravel.Noise3D(float64(wx)*0.05, float64(wy)*0.05, float64(wz)*0.05) > 0.42
}

// IsClay reports whether clay replaces sand/dirt near the water line.
func (tn *TerrainNoise) IsClay(wx, wz int) bool {
	return tn.clay.Noise2D(float64(wx)*0.08, float64(wz)*0.08) > 0.35
}

// GrassScatter reports whether a plains surface column gets tall grass.
func (tn *TerrainNoise) GrassScatter(wx, wz int) bool {
	return tn.grass.Noise2D(float64(wx)*0.3, float64(wz)*0.3) > 0.28
}

// triangularWeight peaks at 1.0 at peak and falls linearly to zero at
// the band edges; zero outside [min, max].
func triangularWeight(y, min, max, peak int) float64 {
	if y < min || y > max {
		return 0
	}
	fy, fmin, fmax, fpeak := float64(y), float64(min), float64(max), float64(peak)
	if fy <= fpeak {
		return (fy - fmin) / (fpeak - fmin)
	}
	return (fmax - fy) / (fmax - fpeak)
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// featureHash is a SplitMix64-style integer hash over a 2D cell and a
// salt, stable across runs for the same inputs. Drives deterministic
// feature placement.
func featureHash(x, z int, seed int64) uint64 {
	v := uint64(int64(x))*0x9E3779B97F4A7C15 + uint64(int64(z))*0x517CC1B727220A95 + uint64(seed)
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}
