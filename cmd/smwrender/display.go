package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/SMW-Editor/smw-render"
)

const (
	viewerWidth  = 640
	viewerHeight = 480

	panSpeed = 8
	zoomStep = 0.25
	maxZoom  = 16
)

// Viewer is the interactive ebiten front end. It renders the tile sheet
// (or the palette grid, when toggled) into a Pixmap each frame and blits
// the result to the screen.
//
// Controls:
//
//	arrow keys  pan
//	+ / -       zoom
//	P           toggle palette grid
//	Tab         cycle palette view (all / background / sprite)
//	0-9, A-F    select palette row for all tiles
type Viewer struct {
	graphics *smwrender.GraphicsTable
	colors   *smwrender.ColorTable

	tileRenderer    *smwrender.TileRenderer
	paletteRenderer *smwrender.PaletteRenderer

	count, columns int
	paletteRow     uint8

	offsetX, offsetY float64
	zoom             float64

	showPalette bool
	viewed      smwrender.ViewedPalettes

	pixmap *smwrender.Pixmap
	frame  *ebiten.Image
}

// NewViewer creates a viewer over the given tables.
func NewViewer(graphics *smwrender.GraphicsTable, colors *smwrender.ColorTable, count, columns int) *Viewer {
	v := &Viewer{
		graphics:        graphics,
		colors:          colors,
		tileRenderer:    smwrender.NewTileRenderer(),
		paletteRenderer: smwrender.NewPaletteRenderer(),
		count:           count,
		columns:         columns,
		zoom:            2,
		viewed:          smwrender.AllPalettes,
	}
	v.tileRenderer.SetTiles(sheetTiles(count, columns, 0))
	return v
}

// rowKeys maps key presses to palette rows 0-15.
var rowKeys = []ebiten.Key{
	ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
	ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7,
	ebiten.KeyDigit8, ebiten.KeyDigit9,
	ebiten.KeyA, ebiten.KeyB, ebiten.KeyC, ebiten.KeyD, ebiten.KeyE, ebiten.KeyF,
}

// Update handles input. Implements ebiten.Game.
func (v *Viewer) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		v.offsetX += panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		v.offsetX -= panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		v.offsetY += panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		v.offsetY -= panSpeed
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) {
		v.zoom += zoomStep
		if v.zoom > maxZoom {
			v.zoom = maxZoom
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) {
		v.zoom -= zoomStep
		if v.zoom < zoomStep {
			v.zoom = zoomStep
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		v.showPalette = !v.showPalette
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		switch v.viewed {
		case smwrender.AllPalettes:
			v.viewed = smwrender.BackgroundPalettes
		case smwrender.BackgroundPalettes:
			v.viewed = smwrender.SpritePalettes
		default:
			v.viewed = smwrender.AllPalettes
		}
	}

	for row, key := range rowKeys {
		if inpututil.IsKeyJustPressed(key) {
			v.paletteRow = uint8(row)
			v.tileRenderer.SetTiles(sheetTiles(v.count, v.columns, v.paletteRow))
		}
	}
	return nil
}

// Draw renders the current view. Implements ebiten.Game.
func (v *Viewer) Draw(screen *ebiten.Image) {
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	if v.pixmap == nil || v.pixmap.Width() != w || v.pixmap.Height() != h {
		v.pixmap = smwrender.NewPixmap(w, h)
		v.frame = ebiten.NewImage(w, h)
	}

	v.pixmap.Clear(smwrender.RGBA{R: 0.12, G: 0.12, B: 0.14, A: 1})

	var status string
	if v.showPalette {
		err := v.paletteRenderer.Paint(v.pixmap.Target(), &smwrender.PaletteUniforms{
			Colors: v.colors,
			Viewed: v.viewed,
		})
		status = fmt.Sprintf("palette: %s", v.viewed)
		if err != nil {
			status = fmt.Sprintf("palette error: %v", err)
		}
	} else {
		err := v.tileRenderer.Paint(v.pixmap.Target(), &smwrender.TileUniforms{
			Graphics: v.graphics,
			Colors:   v.colors,
			OffsetX:  v.offsetX,
			OffsetY:  v.offsetY,
			Zoom:     v.zoom,
		})
		status = fmt.Sprintf("tiles: row %X  zoom %.2f", v.paletteRow, v.zoom)
		if err != nil {
			status = fmt.Sprintf("tile error: %v", err)
		}
	}

	v.frame.WritePixels(v.pixmap.Data())
	screen.DrawImage(v.frame, nil)
	ebitenutil.DebugPrint(screen, status)
}

// Layout reports the logical screen size. Implements ebiten.Game.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
