package smwrender

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Graphics and color table dimensions.
const (
	// TileBytes is the size of one 8x8 4bpp tile: four bitplanes,
	// stored as two 16-byte bitplane groups.
	TileBytes = 32

	// GraphicsTableTiles is the tile capacity of the graphics table.
	GraphicsTableTiles = 2048

	// GraphicsTableBytes is the byte size of the graphics table
	// (4096 16-byte records, two per tile).
	GraphicsTableBytes = GraphicsTableTiles * TileBytes

	// ColorTableSize is the number of entries in the color table.
	ColorTableSize = 256

	// PaletteRows and PaletteColumns describe the color table as a grid.
	// Column 0 of every row is the transparent marker and is never drawn.
	PaletteRows    = 16
	PaletteColumns = 16
)

// Table upload errors.
var (
	// ErrGraphicsTooLarge is returned when uploaded graphics data exceeds
	// the table capacity.
	ErrGraphicsTooLarge = errors.New("smwrender: graphics data exceeds table capacity")

	// ErrColorCount is returned when an uploaded palette does not hold
	// exactly 256 colors.
	ErrColorCount = errors.New("smwrender: color table requires exactly 256 entries")
)

// GraphicsTable holds packed planar tile bitmaps, the renderer-side copy of
// console VRAM. The host owns write access: it uploads a consistent snapshot
// with Upload before any draw that depends on changed data, and the
// renderers treat the table as read-only for the duration of a draw. There
// is no partial-update contract.
type GraphicsTable struct {
	data [GraphicsTableBytes]byte
}

// NewGraphicsTable creates an empty graphics table. All-zero tile data
// decodes to color index 0 everywhere, so an empty table renders nothing.
func NewGraphicsTable() *GraphicsTable {
	return &GraphicsTable{}
}

// Upload replaces the table contents wholesale. Data shorter than the table
// leaves the remainder zeroed; longer data is an error.
func (g *GraphicsTable) Upload(data []byte) error {
	if len(data) > GraphicsTableBytes {
		return fmt.Errorf("%w: %d bytes", ErrGraphicsTooLarge, len(data))
	}
	n := copy(g.data[:], data)
	for i := n; i < GraphicsTableBytes; i++ {
		g.data[i] = 0
	}
	return nil
}

// Bytes returns the raw table contents. The slice aliases the table; callers
// must not hold it across an Upload.
func (g *GraphicsTable) Bytes() []byte {
	return g.data[:]
}

// ColorIndexAt decodes the 4-bit color index of pixel (x, y) of the given
// tile. x and y are intra-tile coordinates in [0, 7]; tile ids beyond the
// table capacity wrap, mirroring the console's address truncation.
//
// The planar layout packs one pixel row per 16-bit halfword, two rows per
// 32-bit word: the first 16-byte group carries bitplanes 0 and 1, the
// second group bitplanes 2 and 3. Within a halfword the low byte is the
// even plane and the high byte the odd plane, with bit 7-x selecting
// pixel column x. The four bits are assembled plane 0 first; the order is
// load-bearing, swapping it corrupts every rendered tile.
func (g *GraphicsTable) ColorIndexAt(tileID uint32, x, y int) uint8 {
	y &= 7
	base := int(tileID%GraphicsTableTiles) * TileBytes
	word := (y >> 1) * 4
	shift := uint(y&1) * 16

	h01 := g.word(base+word) >> shift
	h23 := g.word(base+16+word) >> shift

	bit := uint(7 - (x & 7))
	return uint8(h01>>bit&1 |
		(h01>>(bit+8)&1)<<1 |
		(h23>>bit&1)<<2 |
		(h23>>(bit+8)&1)<<3)
}

func (g *GraphicsTable) word(off int) uint32 {
	return binary.LittleEndian.Uint32(g.data[off : off+4])
}

// PackTile4bpp packs 64 color indices (row-major, 4 significant bits each)
// into one tile's planar record. It is the exact inverse of ColorIndexAt
// and exists for synthesizing test and demo graphics.
func PackTile4bpp(indices *[64]uint8) [TileBytes]byte {
	var rec [TileBytes]byte
	for y := 0; y < 8; y++ {
		var p0, p1, p2, p3 byte
		for x := 0; x < 8; x++ {
			idx := indices[y*8+x]
			bit := byte(1) << uint(7-x)
			if idx&1 != 0 {
				p0 |= bit
			}
			if idx&2 != 0 {
				p1 |= bit
			}
			if idx&4 != 0 {
				p2 |= bit
			}
			if idx&8 != 0 {
				p3 |= bit
			}
		}
		rec[y*2] = p0
		rec[y*2+1] = p1
		rec[16+y*2] = p2
		rec[16+y*2+1] = p3
	}
	return rec
}

// ColorTable holds the resolved 256-entry palette, 16 rows of 16 columns,
// addressed as row*16 + index. Like the GraphicsTable it is host-owned and
// replaced wholesale; entry 0 of each row is never sampled by the renderers.
type ColorTable struct {
	colors [ColorTableSize]RGBA
}

// NewColorTable creates a color table with all entries transparent black.
func NewColorTable() *ColorTable {
	return &ColorTable{}
}

// Upload replaces the table with exactly 256 resolved colors.
func (c *ColorTable) Upload(colors []RGBA) error {
	if len(colors) != ColorTableSize {
		return fmt.Errorf("%w: got %d", ErrColorCount, len(colors))
	}
	copy(c.colors[:], colors)
	return nil
}

// UploadBGR555 replaces the table from a raw CGRAM dump: 256 little-endian
// Abgr1555 words (512 bytes), the format the host tool reads out of the
// console's palette memory.
func (c *ColorTable) UploadBGR555(data []byte) error {
	if len(data) != ColorTableSize*2 {
		return fmt.Errorf("%w: got %d bytes", ErrColorCount, len(data))
	}
	for i := range c.colors {
		raw := Abgr1555(binary.LittleEndian.Uint16(data[i*2:]))
		c.colors[i] = raw.RGBA()
	}
	return nil
}

// At returns the color table entry at the given index. Out-of-range indices
// wrap, mirroring the console's 8-bit palette addressing.
func (c *ColorTable) At(i int) RGBA {
	return c.colors[i&(ColorTableSize-1)]
}

// Set replaces a single entry. Intended for hosts that resolve palettes
// incrementally before a wholesale draw; never called during rendering.
func (c *ColorTable) Set(i int, col RGBA) {
	c.colors[i&(ColorTableSize-1)] = col
}
