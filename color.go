package smwrender

import (
	"image/color"
)

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// Transparent is the zero color: fully transparent black.
var Transparent = RGBA{}

// Color converts RGBA to the standard color.Color interface.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

// RGBA implements the color.Color interface (16-bit premultiplied channels).
func (c RGBA) RGBA() (r, g, b, a uint32) {
	r = uint32(clampUnit(c.R*c.A) * 65535)
	g = uint32(clampUnit(c.G*c.A) * 65535)
	b = uint32(clampUnit(c.B*c.A) * 65535)
	a = uint32(clampUnit(c.A) * 65535)
	return
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Transparent
	}
	// Un-premultiply; RGBA stores straight alpha.
	return RGBA{
		R: float64(r) / float64(a),
		G: float64(g) / float64(a),
		B: float64(b) / float64(a),
		A: float64(a) / 65535,
	}
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1.0}
}

// Abgr1555 is a SNES CGRAM color: a little-endian 16-bit word holding
// 5-bit blue, green, and red channels (red in the low bits). Bit 15 is
// unused by the rendering hardware and ignored here; transparency on the
// SNES is positional (color index 0), not a property of the color value.
type Abgr1555 uint16

// RGBA expands the 5-bit channels to an opaque RGBA color.
func (c Abgr1555) RGBA() RGBA {
	return RGBA{
		R: float64(c&0x1F) / 31,
		G: float64((c>>5)&0x1F) / 31,
		B: float64((c>>10)&0x1F) / 31,
		A: 1,
	}
}

// Abgr1555 quantizes the color to the nearest Abgr1555 value.
// The alpha channel is dropped.
func (c RGBA) Abgr1555() Abgr1555 {
	r := uint16(clampUnit(c.R)*31 + 0.5)
	g := uint16(clampUnit(c.G)*31 + 0.5)
	b := uint16(clampUnit(c.B)*31 + 0.5)
	return Abgr1555(r | g<<5 | b<<10)
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
