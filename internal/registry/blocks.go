package registry

import (
	"math"

	"voxcraft/internal/world"
)

// Kind is the closed set of render shapes. Keeping this an enum rather
// than polymorphic block behavior keeps the mesher's hot loop
// branch-predictable.
type Kind uint8

const (
	KindInvisible Kind = iota
	KindOpaque
	KindTransparent
	KindCross
)

// Face identifies one side of a block.
type Face int

const (
	FaceEast Face = iota // +X
	FaceWest             // -X
	FaceTop              // +Y
	FaceBottom           // -Y
	FaceSouth            // +Z
	FaceNorth            // -Z
)

// Normal returns the unit face normal.
func (f Face) Normal() [3]float32 {
	switch f {
	case FaceEast:
		return [3]float32{1, 0, 0}
	case FaceWest:
		return [3]float32{-1, 0, 0}
	case FaceTop:
		return [3]float32{0, 1, 0}
	case FaceBottom:
		return [3]float32{0, -1, 0}
	case FaceSouth:
		return [3]float32{0, 0, 1}
	default:
		return [3]float32{0, 0, -1}
	}
}

// Definition holds the immutable properties of one block id.
type Definition struct {
	Name        string
	Solid       bool
	Transparent bool
	Kind        Kind
	BreakTime   float32

	TexTop    uint16
	TexSide   uint16
	TexBottom uint16
}

// Unbreakable is the break time of blocks that cannot be mined.
var Unbreakable = float32(math.Inf(1))

// defs is the full 256-entry table. Unknown ids resolve to the safe
// fallback: solid, opaque, unbreakable.
var defs [256]Definition

func init() {
	fallback := Definition{
		Name:      "unknown",
		Solid:     true,
		Kind:      KindOpaque,
		BreakTime: Unbreakable,
	}
	for i := range defs {
		defs[i] = fallback
	}

	register := func(id world.BlockID, d Definition) {
		defs[id] = d
	}

	register(world.BlockAir, Definition{Name: "air", Transparent: true, Kind: KindInvisible})
	register(world.BlockStone, Definition{Name: "stone", Solid: true, Kind: KindOpaque, BreakTime: 1.5,
		TexTop: 0, TexSide: 0, TexBottom: 0})
	register(world.BlockDirt, Definition{Name: "dirt", Solid: true, Kind: KindOpaque, BreakTime: 0.5,
		TexTop: 1, TexSide: 1, TexBottom: 1})
	register(world.BlockGrass, Definition{Name: "grass", Solid: true, Kind: KindOpaque, BreakTime: 0.6,
		TexTop: 2, TexSide: 3, TexBottom: 1})
	register(world.BlockCobblestone, Definition{Name: "cobblestone", Solid: true, Kind: KindOpaque, BreakTime: 2.0,
		TexTop: 4, TexSide: 4, TexBottom: 4})
	register(world.BlockPlanks, Definition{Name: "planks", Solid: true, Kind: KindOpaque, BreakTime: 2.0,
		TexTop: 5, TexSide: 5, TexBottom: 5})
	register(world.BlockSand, Definition{Name: "sand", Solid: true, Kind: KindOpaque, BreakTime: 0.5,
		TexTop: 6, TexSide: 6, TexBottom: 6})
	register(world.BlockGravel, Definition{Name: "gravel", Solid: true, Kind: KindOpaque, BreakTime: 0.6,
		TexTop: 7, TexSide: 7, TexBottom: 7})
	register(world.BlockOakLog, Definition{Name: "oak_log", Solid: true, Kind: KindOpaque, BreakTime: 2.0,
		TexTop: 8, TexSide: 9, TexBottom: 8})
	register(world.BlockOakLeaves, Definition{Name: "oak_leaves", Solid: true, Transparent: true, Kind: KindTransparent, BreakTime: 0.2,
		TexTop: 10, TexSide: 10, TexBottom: 10})
	register(world.BlockGlass, Definition{Name: "glass", Solid: true, Transparent: true, Kind: KindTransparent, BreakTime: 0.3,
		TexTop: 11, TexSide: 11, TexBottom: 11})
	register(world.BlockCoalOre, Definition{Name: "coal_ore", Solid: true, Kind: KindOpaque, BreakTime: 3.0,
		TexTop: 12, TexSide: 12, TexBottom: 12})
	register(world.BlockIronOre, Definition{Name: "iron_ore", Solid: true, Kind: KindOpaque, BreakTime: 3.0,
		TexTop: 13, TexSide: 13, TexBottom: 13})
	register(world.BlockGoldOre, Definition{Name: "gold_ore", Solid: true, Kind: KindOpaque, BreakTime: 3.0,
		TexTop: 14, TexSide: 14, TexBottom: 14})
	register(world.BlockDiamondOre, Definition{Name: "diamond_ore", Solid: true, Kind: KindOpaque, BreakTime: 5.0,
		TexTop: 15, TexSide: 15, TexBottom: 15})
	register(world.BlockBedrock, Definition{Name: "bedrock", Solid: true, Kind: KindOpaque, BreakTime: Unbreakable,
		TexTop: 16, TexSide: 16, TexBottom: 16})
	register(world.BlockWater, Definition{Name: "water", Transparent: true, Kind: KindTransparent, BreakTime: Unbreakable,
		TexTop: 17, TexSide: 17, TexBottom: 17})
	register(world.BlockTorch, Definition{Name: "torch", Transparent: true, Kind: KindCross, BreakTime: 0.1,
		TexTop: 49, TexSide: 49, TexBottom: 49})
	register(world.BlockSnow, Definition{Name: "snow", Solid: true, Kind: KindOpaque, BreakTime: 0.2,
		TexTop: 23, TexSide: 23, TexBottom: 23})
	register(world.BlockClay, Definition{Name: "clay", Solid: true, Kind: KindOpaque, BreakTime: 0.6,
		TexTop: 24, TexSide: 24, TexBottom: 24})
	register(world.BlockSandstone, Definition{Name: "sandstone", Solid: true, Kind: KindOpaque, BreakTime: 1.5,
		TexTop: 25, TexSide: 27, TexBottom: 26})
	register(world.BlockBirchLog, Definition{Name: "birch_log", Solid: true, Kind: KindOpaque, BreakTime: 2.0,
		TexTop: 28, TexSide: 29, TexBottom: 28})
	register(world.BlockBirchLeaves, Definition{Name: "birch_leaves", Solid: true, Transparent: true, Kind: KindTransparent, BreakTime: 0.2,
		TexTop: 30, TexSide: 30, TexBottom: 30})
	register(world.BlockTallGrass, Definition{Name: "tall_grass", Transparent: true, Kind: KindCross, BreakTime: 0,
		TexTop: 50, TexSide: 50, TexBottom: 50})
}

// Get returns the definition for an id (fallback for unknown ids).
func Get(id world.BlockID) *Definition {
	return &defs[id]
}

// IsAir reports whether the id is the reserved air block.
func IsAir(id world.BlockID) bool {
	return id == world.BlockAir
}

// IsSolid reports whether the block blocks movement.
func IsSolid(id world.BlockID) bool {
	return defs[id].Solid
}

// IsTransparent reports whether light passes through the block.
func IsTransparent(id world.BlockID) bool {
	return defs[id].Transparent
}

// BreakTime returns the seconds needed to break the block by hand.
func BreakTime(id world.BlockID) float32 {
	return defs[id].BreakTime
}

// KindOf returns the render shape of the block.
func KindOf(id world.BlockID) Kind {
	return defs[id].Kind
}

// FaceTexture returns the atlas tile for one face of a block.
func FaceTexture(id world.BlockID, f Face) uint16 {
	d := &defs[id]
	switch f {
	case FaceTop:
		return d.TexTop
	case FaceBottom:
		return d.TexBottom
	default:
		return d.TexSide
	}
}
