package smwrender

import (
	"errors"
	"math"
)

// TileRenderer draws a stream of Tile descriptors. Each descriptor expands
// into one screen-aligned quad of scale*zoom pixels; every covered pixel is
// mapped back onto the source tile's 8x8 grid, decoded from the graphics
// table, and resolved through the color table, with color index 0 leaving
// the target pixel untouched.
//
// The renderer holds only the descriptor stream between draws. It is not
// safe for concurrent use.
type TileRenderer struct {
	tiles []Tile
}

// NewTileRenderer creates a renderer with an empty descriptor stream.
func NewTileRenderer() *TileRenderer {
	return &TileRenderer{}
}

// SetTiles replaces the descriptor stream. The slice is copied.
func (r *TileRenderer) SetTiles(tiles []Tile) {
	r.tiles = append(r.tiles[:0], tiles...)
}

// Tiles returns the current descriptor stream. The slice aliases the
// renderer's copy; callers must not mutate it during a draw.
func (r *TileRenderer) Tiles() []Tile {
	return r.tiles
}

// Paint renders the descriptor stream into the target. A registered GPU
// accelerator is tried first; on ErrFallbackToCPU or any other error the
// CPU path takes over, so Paint fails only on invalid arguments.
func (r *TileRenderer) Paint(target RenderTarget, u *TileUniforms) error {
	if err := target.validate(); err != nil {
		return err
	}
	if err := u.validate(); err != nil {
		return err
	}
	if len(r.tiles) == 0 {
		return nil
	}

	if a := RegisteredAccelerator(); a != nil {
		err := a.RenderTiles(target, r.tiles, u)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrFallbackToCPU) {
			Logger().Warn("tile accelerator failed, using CPU", "accelerator", a.Name(), "error", err)
		}
	}

	r.paintCPU(target, u)
	return nil
}

// paintCPU rasterizes every tile quad, one fragment per covered pixel.
// Fragments sample at pixel centers to stay pixel-identical with the GPU
// rasterizer.
func (r *TileRenderer) paintCPU(target RenderTarget, u *TileUniforms) {
	zoom := u.zoom()
	for _, t := range r.tiles {
		r.paintTile(target, u, t, zoom)
	}
}

func (r *TileRenderer) paintTile(target RenderTarget, u *TileUniforms, t Tile, zoom float64) {
	size := float64(t.Scale()) * zoom
	if size <= 0 {
		// Zero-area quad: a degenerate draw, not an error.
		return
	}

	px, py := t.Pos()
	originX := float64(px)*zoom + u.OffsetX
	originY := float64(py)*zoom + u.OffsetY

	x0 := clampInt(int(math.Floor(originX)), 0, target.Width)
	x1 := clampInt(int(math.Ceil(originX+size)), 0, target.Width)
	y0 := clampInt(int(math.Floor(originY)), 0, target.Height)
	y1 := clampInt(int(math.Ceil(originY+size)), 0, target.Height)

	id := t.TileID()
	rowBase := int(t.PaletteRow()) * PaletteColumns
	flipX, flipY := t.FlipX(), t.FlipY()

	for y := y0; y < y1; y++ {
		v := float64(y) + 0.5 - originY
		if v < 0 || v >= size {
			continue
		}
		iy := texelCoord(v, size)
		if flipY {
			iy = 7 - iy
		}
		for x := x0; x < x1; x++ {
			uu := float64(x) + 0.5 - originX
			if uu < 0 || uu >= size {
				continue
			}
			ix := texelCoord(uu, size)
			if flipX {
				ix = 7 - ix
			}

			idx := u.Graphics.ColorIndexAt(id, ix, iy)
			if idx == 0 {
				continue // transparent: discard, leave the pixel as-is
			}
			target.setPixel(x, y, u.Colors.At(rowBase+int(idx)))
		}
	}
}

// texelCoord maps an interpolated quad coordinate in [0, size) back onto
// the tile's native 8-pixel axis: floor to the covered screen pixel first,
// then rescale, so every screen pixel lands on exactly one texel.
func texelCoord(v, size float64) int {
	c := int(math.Floor(v) * 8 / size)
	if c < 0 {
		return 0
	}
	if c > 7 {
		return 7
	}
	return c
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
