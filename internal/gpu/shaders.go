package gpu

import (
	_ "embed"
	"encoding/binary"
	"math"

	"github.com/SMW-Editor/smw-render"
)

// Embedded WGSL shader sources, compiled at pipeline construction.

//go:embed shaders/tile.wgsl
var tileShaderSource string

//go:embed shaders/palette.wgsl
var paletteShaderSource string

// tileVertexStride is the byte stride of one tile descriptor in the
// instance buffer: a single uint32x4 attribute.
const tileVertexStride = 16

// tileUniformSize is the byte size of the tile Params uniform block.
// Layout: screen_size (vec2<f32>), offset (vec2<f32>), zoom (f32),
// 3 floats of padding to a 16-byte multiple.
const tileUniformSize = 32

// paletteUniformSize is the byte size of the palette Params uniform block.
// Layout: window_base (f32), window_extent (f32), 2 floats of padding.
const paletteUniformSize = 16

// colorTableBytes is the byte size of the color table uniform:
// 256 entries of vec4<f32>.
const colorTableBytes = smwrender.ColorTableSize * 16

// graphicsTableBytes is the byte size of the graphics storage buffer:
// 4096 vec4<u32> records.
const graphicsTableBytes = smwrender.GraphicsTableBytes

// packTileInstances serializes the descriptor stream into instance-buffer
// bytes. Tile is already the wire layout (four little-endian u32), so this
// is a plain word copy.
func packTileInstances(tiles []smwrender.Tile) []byte {
	buf := make([]byte, len(tiles)*tileVertexStride)
	for i, t := range tiles {
		off := i * tileVertexStride
		binary.LittleEndian.PutUint32(buf[off+0:], t[0])
		binary.LittleEndian.PutUint32(buf[off+4:], t[1])
		binary.LittleEndian.PutUint32(buf[off+8:], t[2])
		binary.LittleEndian.PutUint32(buf[off+12:], t[3])
	}
	return buf
}

// makeTileUniform packs the tile Params uniform block.
func makeTileUniform(w, h uint32, u *smwrender.TileUniforms) []byte {
	zoom := u.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	buf := make([]byte, tileUniformSize)
	putFloat32(buf[0:], float32(w))
	putFloat32(buf[4:], float32(h))
	putFloat32(buf[8:], float32(u.OffsetX))
	putFloat32(buf[12:], float32(u.OffsetY))
	putFloat32(buf[16:], float32(zoom))
	// Padding bytes 20..31 remain zero.
	return buf
}

// makePaletteUniform packs the palette Params uniform block from the
// host-resolved view window.
func makePaletteUniform(viewed smwrender.ViewedPalettes) []byte {
	base, extent := viewed.Window()
	buf := make([]byte, paletteUniformSize)
	putFloat32(buf[0:], float32(base))
	putFloat32(buf[4:], float32(extent))
	return buf
}

// packColorTable serializes the color table as 256 straight-alpha
// vec4<f32> entries; premultiplication happens in the fragment stage.
func packColorTable(c *smwrender.ColorTable) []byte {
	buf := make([]byte, colorTableBytes)
	for i := 0; i < smwrender.ColorTableSize; i++ {
		col := c.At(i)
		off := i * 16
		putFloat32(buf[off+0:], float32(col.R))
		putFloat32(buf[off+4:], float32(col.G))
		putFloat32(buf[off+8:], float32(col.B))
		putFloat32(buf[off+12:], float32(col.A))
	}
	return buf
}

func putFloat32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}
