// Package main provides the smwrender CLI: render SNES VRAM dumps to PNG
// sheets and inspect palettes interactively.
package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	xdraw "golang.org/x/image/draw"

	"github.com/SMW-Editor/smw-render"
	_ "github.com/SMW-Editor/smw-render/gpu"
)

var (
	// ErrInvalidUpscale indicates the upscale factor is out of valid range.
	ErrInvalidUpscale = errors.New("upscale must be between 1 and 16")

	// ErrUnknownView indicates an unrecognized palette view name.
	ErrUnknownView = errors.New("view must be one of: all, background, sprite")
)

// CLI represents the command-line interface structure.
type CLI struct {
	Tiles   TilesCmd   `cmd:"" help:"Render a VRAM graphics dump to a PNG tile sheet."`
	Palette PaletteCmd `cmd:"" help:"Render a CGRAM palette dump to a PNG swatch grid."`
	View    ViewCmd    `cmd:"" help:"Open an interactive tile sheet viewer."`

	NoGPU bool `help:"Force CPU rendering."`
}

// loadTables reads a raw 4bpp VRAM dump and an optional 512-byte BGR555
// CGRAM dump. An empty vramPath yields demo graphics so the commands work
// without ROM data at hand.
func loadTables(vramPath, cgramPath string) (*smwrender.GraphicsTable, *smwrender.ColorTable, error) {
	graphics := smwrender.NewGraphicsTable()
	if vramPath != "" {
		data, err := os.ReadFile(vramPath)
		if err != nil {
			return nil, nil, fmt.Errorf("read VRAM dump: %w", err)
		}
		if err := graphics.Upload(data); err != nil {
			return nil, nil, err
		}
	} else {
		if err := graphics.Upload(demoGraphics()); err != nil {
			return nil, nil, err
		}
	}

	colors := smwrender.NewColorTable()
	if cgramPath != "" {
		data, err := os.ReadFile(cgramPath)
		if err != nil {
			return nil, nil, fmt.Errorf("read CGRAM dump: %w", err)
		}
		if err := colors.UploadBGR555(data); err != nil {
			return nil, nil, err
		}
	} else {
		if err := colors.Upload(demoColors()); err != nil {
			return nil, nil, err
		}
	}
	return graphics, colors, nil
}

// demoGraphics builds a sheet of procedural tiles so the renderer can be
// exercised without a ROM dump.
func demoGraphics() []byte {
	var out []byte
	var indices [64]uint8
	for t := 0; t < 256; t++ {
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				// Concentric diamond pattern varying per tile; index 0
				// stays transparent.
				d := absInt(x-3) + absInt(y-3) + t
				indices[y*8+x] = uint8(d%15) + 1
			}
		}
		packed := smwrender.PackTile4bpp(&indices)
		out = append(out, packed[:]...)
	}
	return out
}

// demoColors fills the 16x16 grid with per-row hue ramps.
func demoColors() []smwrender.RGBA {
	colors := make([]smwrender.RGBA, smwrender.ColorTableSize)
	for row := 0; row < smwrender.PaletteRows; row++ {
		for col := 0; col < smwrender.PaletteColumns; col++ {
			v := float64(col) / 15
			colors[row*16+col] = smwrender.RGBA{
				R: v * float64(row%4+1) / 4,
				G: v * float64((row+1)%3+1) / 3,
				B: v * float64((row+2)%5+1) / 5,
				A: 1,
			}
		}
	}
	return colors
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// sheetTiles lays out count tiles in a grid of the given column width.
func sheetTiles(count, columns int, paletteRow uint8) []smwrender.Tile {
	tiles := make([]smwrender.Tile, 0, count)
	for i := 0; i < count; i++ {
		x := int32(i%columns) * 8
		y := int32(i/columns) * 8
		tiles = append(tiles, smwrender.NewTile(x, y, uint32(i), smwrender.TileParams{
			Scale:      8,
			PaletteRow: paletteRow,
		}))
	}
	return tiles
}

// writePNG saves the pixmap, optionally upscaled with nearest-neighbor
// sampling to keep pixel edges hard.
func writePNG(p *smwrender.Pixmap, path string, upscale int) error {
	if upscale < 1 || upscale > 16 {
		return fmt.Errorf("%w: got %d", ErrInvalidUpscale, upscale)
	}
	img := p.ToImage()
	if upscale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, p.Width()*upscale, p.Height()*upscale))
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		img = dst
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func parseView(name string) (smwrender.ViewedPalettes, error) {
	switch name {
	case "all":
		return smwrender.AllPalettes, nil
	case "background":
		return smwrender.BackgroundPalettes, nil
	case "sprite":
		return smwrender.SpritePalettes, nil
	default:
		return 0, fmt.Errorf("%w: got %q", ErrUnknownView, name)
	}
}

// TilesCmd renders a VRAM graphics dump to a PNG tile sheet.
type TilesCmd struct {
	Out   string `arg:"" help:"Output PNG path."`
	VRAM  string `type:"existingfile" optional:"" help:"Raw 4bpp VRAM dump (demo graphics if omitted)."`
	CGRAM string `type:"existingfile" optional:"" help:"512-byte BGR555 CGRAM dump (demo palette if omitted)."`

	Count      int   `default:"256" help:"Number of tiles to render."`
	Columns    int   `default:"16" help:"Tiles per sheet row."`
	PaletteRow uint8 `default:"0" help:"Palette row (0-15) applied to every tile."`
	Upscale    int   `default:"1" help:"Integer output upscale factor (1-16)."`
}

// Run executes the tiles command.
func (c *TilesCmd) Run(cli *CLI) error {
	if cli.NoGPU {
		smwrender.CloseAccelerator()
	}
	graphics, colors, err := loadTables(c.VRAM, c.CGRAM)
	if err != nil {
		return err
	}

	rows := (c.Count + c.Columns - 1) / c.Columns
	pixmap := smwrender.NewPixmap(c.Columns*8, rows*8)

	renderer := smwrender.NewTileRenderer()
	renderer.SetTiles(sheetTiles(c.Count, c.Columns, c.PaletteRow))
	if err := renderer.Paint(pixmap.Target(), &smwrender.TileUniforms{
		Graphics: graphics,
		Colors:   colors,
	}); err != nil {
		return fmt.Errorf("render tiles: %w", err)
	}

	if err := writePNG(pixmap, c.Out, c.Upscale); err != nil {
		return err
	}
	fmt.Printf("Wrote %d tiles to %s (%dx%d)\n", c.Count, c.Out,
		pixmap.Width()*c.Upscale, pixmap.Height()*c.Upscale)
	return nil
}

// PaletteCmd renders a CGRAM palette dump to a PNG swatch grid.
type PaletteCmd struct {
	Out   string `arg:"" help:"Output PNG path."`
	CGRAM string `type:"existingfile" optional:"" help:"512-byte BGR555 CGRAM dump (demo palette if omitted)."`

	View    string `default:"all" help:"Palette view: all, background, or sprite."`
	Cell    int    `default:"16" help:"Swatch cell size in pixels."`
	Upscale int    `default:"1" help:"Integer output upscale factor (1-16)."`
}

// Run executes the palette command.
func (c *PaletteCmd) Run(cli *CLI) error {
	if cli.NoGPU {
		smwrender.CloseAccelerator()
	}
	viewed, err := parseView(c.View)
	if err != nil {
		return err
	}
	_, colors, err := loadTables("", c.CGRAM)
	if err != nil {
		return err
	}

	rows := 16
	if viewed != smwrender.AllPalettes {
		rows = 8
	}
	pixmap := smwrender.NewPixmap(16*c.Cell, rows*c.Cell)

	renderer := smwrender.NewPaletteRenderer()
	if err := renderer.Paint(pixmap.Target(), &smwrender.PaletteUniforms{
		Colors: colors,
		Viewed: viewed,
	}); err != nil {
		return fmt.Errorf("render palette: %w", err)
	}

	if err := writePNG(pixmap, c.Out, c.Upscale); err != nil {
		return err
	}
	fmt.Printf("Wrote %s palette view to %s\n", viewed, c.Out)
	return nil
}

// ViewCmd opens the interactive tile sheet viewer.
type ViewCmd struct {
	VRAM  string `type:"existingfile" optional:"" help:"Raw 4bpp VRAM dump (demo graphics if omitted)."`
	CGRAM string `type:"existingfile" optional:"" help:"512-byte BGR555 CGRAM dump (demo palette if omitted)."`

	Count   int `default:"512" help:"Number of tiles to show."`
	Columns int `default:"16" help:"Tiles per sheet row."`
}

// Run executes the view command.
func (c *ViewCmd) Run(cli *CLI) error {
	if cli.NoGPU {
		smwrender.CloseAccelerator()
	}
	graphics, colors, err := loadTables(c.VRAM, c.CGRAM)
	if err != nil {
		return err
	}

	viewer := NewViewer(graphics, colors, c.Count, c.Columns)

	ebiten.SetWindowTitle("smwrender - VRAM viewer")
	ebiten.SetWindowSize(viewerWidth, viewerHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(viewer); err != nil {
		return fmt.Errorf("viewer error: %w", err)
	}
	return nil
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("smwrender"),
		kong.Description("SNES 4bpp tile and palette renderer."),
		kong.UsageOnError(),
	)

	if err := ctx.Run(cli); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
