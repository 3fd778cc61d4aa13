package main

import (
	"image"
	"image/png"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
	xdraw "golang.org/x/image/draw"

	"voxcraft/internal/registry"
)

// atlasPixels is the edge length the shader's tile math assumes:
// 16x16 tiles of 16px each.
const atlasPixels = registry.AtlasTiles * 16

// loadAtlas uploads the texture atlas. When the PNG is absent the
// binary still runs: a flat-colored placeholder atlas is generated so
// every tile is at least distinguishable.
func loadAtlas(path string) (uint32, error) {
	img := loadAtlasImage(path)

	rgba := image.NewRGBA(image.Rect(0, 0, atlasPixels, atlasPixels))
	xdraw.NearestNeighbor.Scale(rgba, rgba.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, atlasPixels, atlasPixels, 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex, nil
}

func loadAtlasImage(path string) image.Image {
	f, err := os.Open(path)
	if err != nil {
		return placeholderAtlas()
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return placeholderAtlas()
	}
	return img
}

// placeholderAtlas colors each tile from a hash of its index.
func placeholderAtlas() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, atlasPixels, atlasPixels))
	for ty := 0; ty < registry.AtlasTiles; ty++ {
		for tx := 0; tx < registry.AtlasTiles; tx++ {
			idx := uint32(ty*registry.AtlasTiles + tx)
			h := idx*2654435761 + 0x9E3779B9
			r := uint8(80 + h%150)
			g := uint8(80 + (h>>8)%150)
			b := uint8(80 + (h>>16)%150)
			for py := 0; py < 16; py++ {
				for px := 0; px < 16; px++ {
					o := img.PixOffset(tx*16+px, ty*16+py)
					img.Pix[o+0] = r
					img.Pix[o+1] = g
					img.Pix[o+2] = b
					img.Pix[o+3] = 255
				}
			}
		}
	}
	return img
}
