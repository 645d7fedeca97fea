package smwrender

import (
	"encoding/binary"
	"errors"
	"testing"
)

// testIndices builds a deterministic 64-pixel index pattern covering all
// sixteen values.
func testIndices(seed int) *[64]uint8 {
	var idx [64]uint8
	for i := range idx {
		idx[i] = uint8((i*7 + seed) % 16)
	}
	return &idx
}

func TestPackTileRoundTrip(t *testing.T) {
	g := NewGraphicsTable()

	var data []byte
	for tile := 0; tile < 4; tile++ {
		rec := PackTile4bpp(testIndices(tile * 3))
		data = append(data, rec[:]...)
	}
	if err := g.Upload(data); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	for tile := uint32(0); tile < 4; tile++ {
		want := testIndices(int(tile) * 3)
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				got := g.ColorIndexAt(tile, x, y)
				if got != want[y*8+x] {
					t.Fatalf("tile %d pixel (%d, %d) = %d, want %d",
						tile, x, y, got, want[y*8+x])
				}
			}
		}
	}
}

func TestColorIndexAtPlaneOrder(t *testing.T) {
	// One tile with a single pixel of index 0b1010 at (2, 5): bitplanes 1
	// and 3 carry the bit, planes 0 and 2 stay clear.
	var rec [TileBytes]byte
	rec[5*2+1] = 1 << (7 - 2)    // plane 1, row 5
	rec[16+5*2+1] = 1 << (7 - 2) // plane 3, row 5

	g := NewGraphicsTable()
	if err := g.Upload(rec[:]); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if got := g.ColorIndexAt(0, 2, 5); got != 0b1010 {
		t.Errorf("ColorIndexAt(0, 2, 5) = %#b, want 0b1010", got)
	}
	if got := g.ColorIndexAt(0, 3, 5); got != 0 {
		t.Errorf("neighbor pixel = %d, want 0", got)
	}
}

func TestColorIndexAtWraps(t *testing.T) {
	rec := PackTile4bpp(testIndices(1))
	g := NewGraphicsTable()
	if err := g.Upload(rec[:]); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if g.ColorIndexAt(GraphicsTableTiles, x, y) != g.ColorIndexAt(0, x, y) {
				t.Fatalf("tile id %d must wrap to 0", GraphicsTableTiles)
			}
		}
	}
}

func TestGraphicsUpload(t *testing.T) {
	g := NewGraphicsTable()

	if err := g.Upload(make([]byte, GraphicsTableBytes+1)); !errors.Is(err, ErrGraphicsTooLarge) {
		t.Errorf("oversized upload: err = %v, want ErrGraphicsTooLarge", err)
	}

	// A short upload must zero the remainder of a previously full table.
	full := make([]byte, GraphicsTableBytes)
	for i := range full {
		full[i] = 0xFF
	}
	if err := g.Upload(full); err != nil {
		t.Fatalf("full upload: %v", err)
	}
	if err := g.Upload([]byte{1, 2, 3}); err != nil {
		t.Fatalf("short upload: %v", err)
	}
	b := g.Bytes()
	if b[0] != 1 || b[1] != 2 || b[2] != 3 {
		t.Error("short upload did not copy data")
	}
	for i := 3; i < GraphicsTableBytes; i++ {
		if b[i] != 0 {
			t.Fatalf("byte %d = %#x after short upload, want 0", i, b[i])
		}
	}
}

func TestColorTableUpload(t *testing.T) {
	c := NewColorTable()

	if err := c.Upload(make([]RGBA, 255)); !errors.Is(err, ErrColorCount) {
		t.Errorf("short upload: err = %v, want ErrColorCount", err)
	}

	colors := make([]RGBA, ColorTableSize)
	colors[17] = RGB(0.5, 0.25, 1)
	if err := c.Upload(colors); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if got := c.At(17); got != colors[17] {
		t.Errorf("At(17) = %+v, want %+v", got, colors[17])
	}
}

func TestColorTableUploadBGR555(t *testing.T) {
	c := NewColorTable()

	if err := c.UploadBGR555(make([]byte, 100)); !errors.Is(err, ErrColorCount) {
		t.Errorf("short dump: err = %v, want ErrColorCount", err)
	}

	data := make([]byte, ColorTableSize*2)
	binary.LittleEndian.PutUint16(data[5*2:], 0x7FFF) // entry 5: white
	binary.LittleEndian.PutUint16(data[9*2:], 0x001F) // entry 9: red
	if err := c.UploadBGR555(data); err != nil {
		t.Fatalf("UploadBGR555: %v", err)
	}

	if got := c.At(5); !colorsClose(got, RGBA{1, 1, 1, 1}) {
		t.Errorf("entry 5 = %+v, want white", got)
	}
	if got := c.At(9); !colorsClose(got, RGBA{1, 0, 0, 1}) {
		t.Errorf("entry 9 = %+v, want red", got)
	}
}

func TestColorTableAtWraps(t *testing.T) {
	c := NewColorTable()
	c.Set(3, RGB(1, 0, 0))
	if got := c.At(ColorTableSize + 3); got != c.At(3) {
		t.Errorf("At must wrap 8-bit indices: %+v != %+v", got, c.At(3))
	}
}
