package registry

// The texture atlas is a square grid of AtlasTiles x AtlasTiles tiles.
// Greedy quads tile their texture by letting UVs run past a single
// tile and carrying the tile origin as an auxiliary attribute; the
// fragment stage wraps within the cell, which keeps merged quads from
// bleeding into neighboring tiles.

const AtlasTiles = 16

// TileSize is the UV extent of one atlas tile.
const TileSize = 1.0 / float32(AtlasTiles)

// TileUVs returns [uMin, vMin, uMax, vMax] for a tile index.
func TileUVs(tile uint16) [4]float32 {
	col := float32(tile % AtlasTiles)
	row := float32(tile / AtlasTiles)
	uMin := col * TileSize
	vMin := row * TileSize
	return [4]float32{uMin, vMin, uMin + TileSize, vMin + TileSize}
}

// TileOrigin returns the [uMin, vMin] corner of a tile.
func TileOrigin(tile uint16) [2]float32 {
	uv := TileUVs(tile)
	return [2]float32{uv[0], uv[1]}
}

// FaceUVsTiled returns the four UV corners for a quad that repeats the
// tile texture w times along u and h times along v, in the order
// bottom-left, bottom-right, top-right, top-left.
func FaceUVsTiled(tile uint16, w, h int) [4][2]float32 {
	uv := TileUVs(tile)
	uMin, vMin := uv[0], uv[1]
	uMax := uMin + TileSize*float32(w)
	vMax := vMin + TileSize*float32(h)
	return [4][2]float32{
		{uMin, vMax},
		{uMax, vMax},
		{uMax, vMin},
		{uMin, vMin},
	}
}
