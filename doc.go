// Package smwrender renders SNES-format tile graphics and palettes for
// display inside a ROM-editing tool.
//
// # Overview
//
// The SNES stores 8x8 tiles in a planar 4-bit-per-pixel format: each pixel's
// color index is assembled from one bit in each of four bitplanes, and the
// resulting index addresses a 256-entry color table (16 palette rows of 16
// colors, column 0 of every row meaning "transparent"). smwrender decodes
// this format at draw time, per pixel, so the host never has to convert
// graphics data ahead of rendering.
//
// Two renderers share the decode philosophy:
//   - TileRenderer draws a stream of Tile descriptors, each expanded into a
//     screen-aligned quad whose pixels are decoded from the GraphicsTable
//     and resolved through the ColorTable.
//   - PaletteRenderer draws the ColorTable itself as a 16x16 swatch grid for
//     inspection, optionally restricted to the background or sprite half.
//
// # Quick Start
//
//	gfx := smwrender.NewGraphicsTable()
//	gfx.Upload(vramDump)
//
//	colors := smwrender.NewColorTable()
//	colors.UploadBGR555(cgramDump)
//
//	tr := smwrender.NewTileRenderer()
//	tr.SetTiles(tiles)
//
//	pm := smwrender.NewPixmap(512, 512)
//	tr.Paint(pm.Target(), &smwrender.TileUniforms{
//	    Graphics: gfx,
//	    Colors:   colors,
//	    Zoom:     2,
//	})
//	pm.SavePNG("tiles.png")
//
// # Renderers
//
// The root package renders on the CPU and is always available. GPU rendering
// through gogpu/wgpu is opt-in via blank import:
//
//	import _ "github.com/SMW-Editor/smw-render/gpu"
//
// Both paths produce pixel-identical output; pixels whose decoded color
// index is 0 are left untouched, so the host can compose overlays.
//
// # Coordinate System
//
// Origin (0,0) at top-left, X increases right, Y increases down. Tile
// positions and the pan offset are in pre-zoom pixels; the zoom factor
// scales the whole arrangement.
package smwrender
