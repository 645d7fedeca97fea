package smwrender

import (
	"bytes"
	"errors"
	"testing"
)

// testClearColor marks untouched pixels in renderer tests.
var testClearColor = RGBA{R: 0.2, G: 0.4, B: 0.6, A: 1}

// newTestTables builds a graphics table whose tile 0 carries the given
// indices, plus a color table where entry i encodes i in its red channel
// so rendered pixels identify their palette index exactly. The half-step
// keeps the encoded byte stable under the renderer's float conversion.
func newTestTables(t *testing.T, indices *[64]uint8) (*GraphicsTable, *ColorTable) {
	t.Helper()

	g := NewGraphicsTable()
	rec := PackTile4bpp(indices)
	if err := g.Upload(rec[:]); err != nil {
		t.Fatalf("Upload graphics: %v", err)
	}

	c := NewColorTable()
	colors := make([]RGBA, ColorTableSize)
	for i := range colors {
		colors[i] = RGBA{R: (float64(i) + 0.5) / 255, G: 1, B: 0, A: 1}
	}
	if err := c.Upload(colors); err != nil {
		t.Fatalf("Upload colors: %v", err)
	}
	return g, c
}

// paletteIndexAt recovers the palette index encoded in a pixel's red
// channel by newTestTables, or -1 for untouched pixels.
func paletteIndexAt(p *Pixmap, x, y int) int {
	c := p.GetPixel(x, y)
	if c.G < 0.9 {
		return -1
	}
	return int(c.R*255 + 0.5)
}

func renderTiles(t *testing.T, p *Pixmap, tiles []Tile, u *TileUniforms) {
	t.Helper()
	r := NewTileRenderer()
	r.SetTiles(tiles)
	p.Clear(testClearColor)
	if err := r.Paint(p.Target(), u); err != nil {
		t.Fatalf("Paint: %v", err)
	}
}

func TestTilePaintValidation(t *testing.T) {
	g, c := newTestTables(t, &[64]uint8{})
	r := NewTileRenderer()
	r.SetTiles([]Tile{NewTile(0, 0, 0, TileParams{Scale: 8})})

	if err := r.Paint(RenderTarget{}, &TileUniforms{Graphics: g, Colors: c}); !errors.Is(err, ErrNilTarget) {
		t.Errorf("empty target: err = %v, want ErrNilTarget", err)
	}

	p := NewPixmap(8, 8)
	if err := r.Paint(p.Target(), &TileUniforms{Colors: c}); !errors.Is(err, ErrNilGraphics) {
		t.Errorf("nil graphics: err = %v, want ErrNilGraphics", err)
	}
	if err := r.Paint(p.Target(), &TileUniforms{Graphics: g}); !errors.Is(err, ErrNilColors) {
		t.Errorf("nil colors: err = %v, want ErrNilColors", err)
	}
}

func TestTileOneToOne(t *testing.T) {
	indices := testIndices(5)
	g, c := newTestTables(t, indices)

	p := NewPixmap(8, 8)
	renderTiles(t, p, []Tile{NewTile(0, 0, 0, TileParams{Scale: 8})},
		&TileUniforms{Graphics: g, Colors: c})

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := int(indices[y*8+x])
			if want == 0 {
				want = -1 // discarded
			}
			if got := paletteIndexAt(p, x, y); got != want {
				t.Fatalf("pixel (%d, %d) = index %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestTilePaletteRowOffset(t *testing.T) {
	// The first two tile rows walk indices 1..15 then 0; with palette
	// row 2 they must resolve through color entries 33..47 and end in a
	// discarded pixel.
	var indices [64]uint8
	for i := 0; i < 16; i++ {
		indices[i] = uint8((i + 1) % 16)
	}
	g, c := newTestTables(t, &indices)

	p := NewPixmap(8, 8)
	renderTiles(t, p, []Tile{NewTile(0, 0, 0, TileParams{Scale: 8, PaletteRow: 2})},
		&TileUniforms{Graphics: g, Colors: c})

	for i := 0; i < 15; i++ {
		x, y := i%8, i/8
		if got := paletteIndexAt(p, x, y); got != 2*PaletteColumns+i+1 {
			t.Errorf("pixel (%d, %d) = index %d, want %d", x, y, got, 2*PaletteColumns+i+1)
		}
	}
	// The trailing index 0 and all rows below stay untouched.
	if got := paletteIndexAt(p, 7, 1); got != -1 {
		t.Errorf("pixel (7, 1) = index %d, want untouched", got)
	}
	if got := paletteIndexAt(p, 0, 2); got != -1 {
		t.Errorf("pixel (0, 2) = index %d, want untouched", got)
	}
}

func TestAllZeroTileDiscardsEverywhere(t *testing.T) {
	g, c := newTestTables(t, &[64]uint8{})

	params := []TileParams{
		{Scale: 8},
		{Scale: 8, FlipX: true},
		{Scale: 8, FlipY: true},
		{Scale: 16, FlipX: true, FlipY: true, PaletteRow: 7},
	}
	zooms := []float64{0, 1, 2, 0.5}

	for _, pr := range params {
		for _, zoom := range zooms {
			p := NewPixmap(32, 32)
			renderTiles(t, p, []Tile{NewTile(4, 4, 0, pr)},
				&TileUniforms{Graphics: g, Colors: c, Zoom: zoom})

			want := p.GetPixel(0, 0)
			for y := 0; y < 32; y++ {
				for x := 0; x < 32; x++ {
					if p.GetPixel(x, y) != want {
						t.Fatalf("params %+v zoom %v: pixel (%d, %d) was written", pr, zoom, x, y)
					}
				}
			}
		}
	}
}

func TestTileFlips(t *testing.T) {
	indices := testIndices(3)
	g, c := newTestTables(t, indices)
	u := &TileUniforms{Graphics: g, Colors: c}

	plain := NewPixmap(8, 8)
	renderTiles(t, plain, []Tile{NewTile(0, 0, 0, TileParams{Scale: 8})}, u)

	flipped := NewPixmap(8, 8)

	renderTiles(t, flipped, []Tile{NewTile(0, 0, 0, TileParams{Scale: 8, FlipX: true})}, u)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if flipped.GetPixel(x, y) != plain.GetPixel(7-x, y) {
				t.Fatalf("FlipX: pixel (%d, %d) is not the mirror of (%d, %d)", x, y, 7-x, y)
			}
		}
	}

	renderTiles(t, flipped, []Tile{NewTile(0, 0, 0, TileParams{Scale: 8, FlipY: true})}, u)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if flipped.GetPixel(x, y) != plain.GetPixel(x, 7-y) {
				t.Fatalf("FlipY: pixel (%d, %d) is not the mirror of (%d, %d)", x, y, x, 7-y)
			}
		}
	}

	renderTiles(t, flipped, []Tile{NewTile(0, 0, 0, TileParams{Scale: 8, FlipX: true, FlipY: true})}, u)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if flipped.GetPixel(x, y) != plain.GetPixel(7-x, 7-y) {
				t.Fatalf("FlipXY: pixel (%d, %d) is not the point reflection of (%d, %d)", x, y, 7-x, 7-y)
			}
		}
	}
}

func TestTileScaleAndZoom(t *testing.T) {
	indices := testIndices(9)
	g, c := newTestTables(t, indices)

	// scale 8, zoom 2: the quad covers 16x16 pixels, each texel a 2x2 block.
	p := NewPixmap(16, 16)
	renderTiles(t, p, []Tile{NewTile(0, 0, 0, TileParams{Scale: 8})},
		&TileUniforms{Graphics: g, Colors: c, Zoom: 2})

	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			want := int(indices[(y/2)*8+x/2])
			if want == 0 {
				want = -1
			}
			if got := paletteIndexAt(p, x, y); got != want {
				t.Fatalf("zoom 2 pixel (%d, %d) = index %d, want %d", x, y, got, want)
			}
		}
	}

	// scale 16 at zoom 1 covers the same footprint.
	p2 := NewPixmap(16, 16)
	renderTiles(t, p2, []Tile{NewTile(0, 0, 0, TileParams{Scale: 16})},
		&TileUniforms{Graphics: g, Colors: c})
	if !bytes.Equal(p.Data(), p2.Data()) {
		t.Error("scale 16 zoom 1 must match scale 8 zoom 2")
	}
}

func TestTileOffsetAndZoomedPosition(t *testing.T) {
	indices := testIndices(2)
	g, c := newTestTables(t, indices)

	// Anchor (4, 0) at zoom 2 lands at screen x 8; offset shifts 3 more.
	p := NewPixmap(32, 16)
	renderTiles(t, p, []Tile{NewTile(4, 0, 0, TileParams{Scale: 8})},
		&TileUniforms{Graphics: g, Colors: c, Zoom: 2, OffsetX: 3, OffsetY: 1})

	reference := NewPixmap(32, 16)
	renderTiles(t, reference, []Tile{NewTile(0, 0, 0, TileParams{Scale: 8})},
		&TileUniforms{Graphics: g, Colors: c, Zoom: 2})

	for y := 1; y < 16; y++ {
		for x := 11; x < 27; x++ {
			if p.GetPixel(x, y) != reference.GetPixel(x-11, y-1) {
				t.Fatalf("pixel (%d, %d) does not match the translated reference", x, y)
			}
		}
	}
}

func TestTileClipping(t *testing.T) {
	indices := testIndices(4)
	g, c := newTestTables(t, indices)

	// A tile hanging off every edge must not panic and must only write
	// inside the target.
	p := NewPixmap(8, 8)
	tiles := []Tile{
		NewTile(-4, -4, 0, TileParams{Scale: 8}),
		NewTile(4, 4, 0, TileParams{Scale: 8}),
		NewTile(-100, 0, 0, TileParams{Scale: 8}),
		NewTile(0, 100, 0, TileParams{Scale: 8}),
	}
	renderTiles(t, p, tiles, &TileUniforms{Graphics: g, Colors: c})

	// Visible quadrant of the first tile: its bottom-right 4x4 texels.
	if got := paletteIndexAt(p, 0, 0); got != int(indices[4*8+4]) && got != -1 {
		t.Errorf("clipped pixel (0, 0) = index %d, want %d or untouched", got, indices[4*8+4])
	}
}

func TestTilePaintIdempotent(t *testing.T) {
	indices := testIndices(11)
	g, c := newTestTables(t, indices)
	u := &TileUniforms{Graphics: g, Colors: c, Zoom: 1.5, OffsetX: 2}
	tiles := []Tile{
		NewTile(0, 0, 0, TileParams{Scale: 8}),
		NewTile(5, 3, 0, TileParams{Scale: 12, FlipX: true, PaletteRow: 4}),
	}

	p := NewPixmap(32, 32)
	renderTiles(t, p, tiles, u)
	first := append([]uint8(nil), p.Data()...)

	r := NewTileRenderer()
	r.SetTiles(tiles)
	if err := r.Paint(p.Target(), u); err != nil {
		t.Fatalf("second Paint: %v", err)
	}
	if !bytes.Equal(first, p.Data()) {
		t.Error("repeated Paint with identical inputs must be byte-identical")
	}
}

func TestTileEmptyStream(t *testing.T) {
	g, c := newTestTables(t, testIndices(0))
	p := NewPixmap(8, 8)
	p.Clear(testClearColor)
	before := append([]uint8(nil), p.Data()...)

	r := NewTileRenderer()
	if err := r.Paint(p.Target(), &TileUniforms{Graphics: g, Colors: c}); err != nil {
		t.Fatalf("Paint: %v", err)
	}
	if !bytes.Equal(before, p.Data()) {
		t.Error("empty stream must not touch the target")
	}
}

func TestSetTilesCopies(t *testing.T) {
	r := NewTileRenderer()
	src := []Tile{NewTile(1, 2, 3, TileParams{Scale: 8})}
	r.SetTiles(src)
	src[0].MoveBy(100, 100)

	x, y := r.Tiles()[0].Pos()
	if x != 1 || y != 2 {
		t.Error("SetTiles must copy the descriptor stream")
	}
}
