package smwrender

import "errors"

// PaletteRenderer draws the color table as a swatch grid filling the whole
// target: 16 columns, and 16 or 8 rows depending on the view selector.
// Column 0 is the transparent marker in every row and is never drawn.
type PaletteRenderer struct{}

// NewPaletteRenderer creates a palette renderer.
func NewPaletteRenderer() *PaletteRenderer {
	return &PaletteRenderer{}
}

// Paint renders the palette grid into the target. A registered GPU
// accelerator is tried first, with transparent CPU fallback.
func (r *PaletteRenderer) Paint(target RenderTarget, u *PaletteUniforms) error {
	if err := target.validate(); err != nil {
		return err
	}
	if u.Colors == nil {
		return ErrNilColors
	}

	if a := RegisteredAccelerator(); a != nil {
		err := a.RenderPalette(target, u)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrFallbackToCPU) {
			Logger().Warn("palette accelerator failed, using CPU", "accelerator", a.Name(), "error", err)
		}
	}

	r.paintCPU(target, u)
	return nil
}

func (r *PaletteRenderer) paintCPU(target RenderTarget, u *PaletteUniforms) {
	// The view selector resolves to a texture window once per draw; the
	// per-fragment work below is branch-free on the view mode.
	base, extent := u.Viewed.Window()

	w := float64(target.Width)
	h := float64(target.Height)

	for y := 0; y < target.Height; y++ {
		ty := base + (float64(y)+0.5)/h*extent
		row := gridCoord(ty)
		for x := 0; x < target.Width; x++ {
			col := gridCoord((float64(x) + 0.5) / w)
			if col == 0 {
				continue // reserved transparent column
			}
			target.setPixel(x, y, u.Colors.At(row*PaletteColumns+col))
		}
	}
}

// gridCoord maps a normalized texture coordinate to a palette grid cell.
func gridCoord(t float64) int {
	c := int(t * 16)
	if c < 0 {
		return 0
	}
	if c > 15 {
		return 15
	}
	return c
}
