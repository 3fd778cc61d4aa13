package world

// Biome selects the surface materials for a column.
type Biome struct {
	Name string

	// Surface is the top block when the column breaks the water line.
	Surface BlockID
	// Filler fills the few blocks directly under the surface.
	Filler BlockID
	// Underwater is the top block for columns below sea level.
	Underwater BlockID
}

var (
	BiomePlains = &Biome{
		Name:       "plains",
		Surface:    BlockGrass,
		Filler:     BlockDirt,
		Underwater: BlockDirt,
	}
	BiomeDesert = &Biome{
		Name:       "desert",
		Surface:    BlockSand,
		Filler:     BlockSandstone,
		Underwater: BlockSand,
	}
)
