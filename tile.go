package smwrender

// Tile parameter bit layout (the fourth descriptor component).
const (
	// tileParamScaleMask covers the rendered edge length in pre-zoom pixels.
	tileParamScaleMask = 0x00FF

	// tileParamRowShift positions the 4-bit palette row.
	tileParamRowShift = 8
	tileParamRowMask  = 0xF

	// tileParamFlipX mirrors the tile horizontally.
	tileParamFlipX = 1 << 12

	// tileParamFlipY mirrors the tile vertically.
	tileParamFlipY = 1 << 13
)

// Tile is one per-instance tile descriptor: x, y, tile id, params.
// The layout matches the vertex stream consumed by the renderers, so a
// []Tile can be uploaded to the GPU without conversion.
//
// The params component packs, from the low bit up: the quad edge length in
// pre-zoom pixels (low byte), the palette row (4 bits), and the horizontal
// and vertical mirror flags (1 bit each). The tile id component carries
// nothing besides the graphics-table index.
type Tile [4]uint32

// TileParams holds the unpacked per-tile rendering parameters.
type TileParams struct {
	Scale      uint8 // quad edge length in pre-zoom pixels
	PaletteRow uint8 // palette row 0..15
	FlipX      bool  // mirror horizontally
	FlipY      bool  // mirror vertically
}

// NewTile builds a descriptor from a screen position, a graphics-table
// index, and rendering parameters.
func NewTile(x, y int32, tileID uint32, p TileParams) Tile {
	params := uint32(p.Scale) | uint32(p.PaletteRow&tileParamRowMask)<<tileParamRowShift
	if p.FlipX {
		params |= tileParamFlipX
	}
	if p.FlipY {
		params |= tileParamFlipY
	}
	return Tile{uint32(x), uint32(y), tileID, params}
}

// Pos returns the descriptor's screen-space anchor (top-left corner),
// in pre-zoom pixels.
func (t Tile) Pos() (x, y int32) {
	return int32(t[0]), int32(t[1])
}

// TileID returns the graphics-table index.
func (t Tile) TileID() uint32 {
	return t[2]
}

// Scale returns the quad edge length in pre-zoom pixels.
func (t Tile) Scale() uint32 {
	return t[3] & tileParamScaleMask
}

// PaletteRow returns the palette row selecting which 16-entry block of the
// color table resolves this tile's color indices.
func (t Tile) PaletteRow() uint32 {
	return (t[3] >> tileParamRowShift) & tileParamRowMask
}

// FlipX reports whether the tile is mirrored horizontally.
func (t Tile) FlipX() bool {
	return t[3]&tileParamFlipX != 0
}

// FlipY reports whether the tile is mirrored vertically.
func (t Tile) FlipY() bool {
	return t[3]&tileParamFlipY != 0
}

// Params returns the raw packed parameter word.
func (t Tile) Params() uint32 {
	return t[3]
}

// MoveBy translates the descriptor's anchor by (dx, dy) pre-zoom pixels.
func (t *Tile) MoveBy(dx, dy int32) {
	t[0] = uint32(int32(t[0]) + dx)
	t[1] = uint32(int32(t[1]) + dy)
}

// SnapToGrid moves the anchor to the top-left corner of the grid cell it
// falls in. The grid has cells of cellSize pixels and its origin shifted by
// (originX, originY).
func (t *Tile) SnapToGrid(cellSize uint32, originX, originY int32) {
	if cellSize == 0 {
		return
	}
	t[0] = uint32(snapCoord(int32(t[0]), cellSize, originX))
	t[1] = uint32(snapCoord(int32(t[1]), cellSize, originY))
}

func snapCoord(v int32, cell uint32, origin int32) int32 {
	c := int32(cell)
	p := v - origin
	cellCoord := p / c
	if p < 0 && p%c != 0 {
		cellCoord--
	}
	return origin + cellCoord*c
}
