package smwrender

import "testing"

func TestNewTileAccessors(t *testing.T) {
	tests := []struct {
		name   string
		x, y   int32
		tileID uint32
		params TileParams
	}{
		{"plain", 8, 16, 42, TileParams{Scale: 8}},
		{"negative pos", -24, -8, 7, TileParams{Scale: 16, PaletteRow: 3}},
		{"flip x", 0, 0, 1, TileParams{Scale: 8, FlipX: true}},
		{"flip y", 0, 0, 1, TileParams{Scale: 8, FlipY: true}},
		{"both flips", 100, 200, 2047, TileParams{Scale: 255, PaletteRow: 15, FlipX: true, FlipY: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile := NewTile(tt.x, tt.y, tt.tileID, tt.params)

			x, y := tile.Pos()
			if x != tt.x || y != tt.y {
				t.Errorf("Pos() = (%d, %d), want (%d, %d)", x, y, tt.x, tt.y)
			}
			if tile.TileID() != tt.tileID {
				t.Errorf("TileID() = %d, want %d", tile.TileID(), tt.tileID)
			}
			if tile.Scale() != uint32(tt.params.Scale) {
				t.Errorf("Scale() = %d, want %d", tile.Scale(), tt.params.Scale)
			}
			if tile.PaletteRow() != uint32(tt.params.PaletteRow) {
				t.Errorf("PaletteRow() = %d, want %d", tile.PaletteRow(), tt.params.PaletteRow)
			}
			if tile.FlipX() != tt.params.FlipX {
				t.Errorf("FlipX() = %v, want %v", tile.FlipX(), tt.params.FlipX)
			}
			if tile.FlipY() != tt.params.FlipY {
				t.Errorf("FlipY() = %v, want %v", tile.FlipY(), tt.params.FlipY)
			}
		})
	}
}

func TestNewTilePaletteRowMasked(t *testing.T) {
	tile := NewTile(0, 0, 0, TileParams{PaletteRow: 0xF2})
	if tile.PaletteRow() != 2 {
		t.Errorf("PaletteRow() = %d, want 2 (masked to 4 bits)", tile.PaletteRow())
	}
}

func TestTileMoveBy(t *testing.T) {
	tile := NewTile(10, 20, 0, TileParams{Scale: 8})
	tile.MoveBy(-15, 5)
	x, y := tile.Pos()
	if x != -5 || y != 25 {
		t.Errorf("after MoveBy: (%d, %d), want (-5, 25)", x, y)
	}
}

func TestTileSnapToGrid(t *testing.T) {
	tests := []struct {
		name             string
		x, y             int32
		cell             uint32
		originX, originY int32
		wantX, wantY     int32
	}{
		{"already aligned", 16, 32, 16, 0, 0, 16, 32},
		{"rounds down", 17, 30, 16, 0, 0, 16, 16},
		{"negative rounds toward -inf", -1, -17, 16, 0, 0, -16, -32},
		{"shifted origin", 10, 10, 16, 4, 4, 4, 4},
		{"shifted origin rounds down", 3, 21, 16, 4, 4, -12, 20},
		{"zero cell is a no-op", 13, 37, 0, 0, 0, 13, 37},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile := NewTile(tt.x, tt.y, 0, TileParams{Scale: 8})
			tile.SnapToGrid(tt.cell, tt.originX, tt.originY)
			x, y := tile.Pos()
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("SnapToGrid(%d, %d, %d) from (%d, %d) = (%d, %d), want (%d, %d)",
					tt.cell, tt.originX, tt.originY, tt.x, tt.y, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestSnapPreservesParams(t *testing.T) {
	tile := NewTile(9, 9, 123, TileParams{Scale: 8, PaletteRow: 5, FlipX: true})
	before := tile[3]
	tile.SnapToGrid(8, 0, 0)
	if tile[3] != before || tile.TileID() != 123 {
		t.Error("SnapToGrid must only touch the position components")
	}
}
