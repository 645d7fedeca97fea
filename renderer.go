package smwrender

import (
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates the GPU accelerator cannot handle this draw.
// The renderers transparently fall back to CPU rasterization.
var ErrFallbackToCPU = errors.New("smwrender: falling back to CPU rendering")

// Renderer argument errors.
var (
	// ErrNilGraphics is returned when tile uniforms carry no graphics table.
	ErrNilGraphics = errors.New("smwrender: graphics table is nil")

	// ErrNilColors is returned when uniforms carry no color table.
	ErrNilColors = errors.New("smwrender: color table is nil")

	// ErrNilTarget is returned when the render target has no pixel data.
	ErrNilTarget = errors.New("smwrender: render target has no pixel buffer")
)

// RenderTarget provides pixel buffer access for renderer output.
// Data is straight-alpha RGBA, 4 bytes per pixel, laid out row by row with
// the given Stride. Discarded fragments leave the buffer untouched.
type RenderTarget struct {
	Data          []uint8
	Width, Height int
	Stride        int // bytes per row
}

func (t RenderTarget) validate() error {
	if t.Data == nil || t.Width <= 0 || t.Height <= 0 {
		return ErrNilTarget
	}
	return nil
}

// setPixel writes one opaque-ish color with no blending.
func (t RenderTarget) setPixel(x, y int, c RGBA) {
	i := y*t.Stride + x*4
	t.Data[i+0] = uint8(clamp255(c.R * 255))
	t.Data[i+1] = uint8(clamp255(c.G * 255))
	t.Data[i+2] = uint8(clamp255(c.B * 255))
	t.Data[i+3] = uint8(clamp255(c.A * 255))
}

// TileUniforms carries the per-draw inputs of the tile pipeline. The two
// tables must be fully uploaded before Paint; the draw reads them without
// copying. Zoom scales the whole arrangement (positions and quads alike);
// zero means 1. Offset pans the view in post-zoom screen pixels.
type TileUniforms struct {
	Graphics *GraphicsTable
	Colors   *ColorTable

	OffsetX float64
	OffsetY float64
	Zoom    float64
}

func (u *TileUniforms) validate() error {
	if u.Graphics == nil {
		return ErrNilGraphics
	}
	if u.Colors == nil {
		return ErrNilColors
	}
	return nil
}

// zoom returns the effective zoom factor.
func (u *TileUniforms) zoom() float64 {
	if u.Zoom <= 0 {
		return 1
	}
	return u.Zoom
}

// PaletteUniforms carries the per-draw inputs of the palette pipeline.
type PaletteUniforms struct {
	Colors *ColorTable
	Viewed ViewedPalettes
}

// Accelerator is an optional GPU rendering provider.
//
// When registered via RegisterAccelerator, the renderers try the GPU first.
// If the accelerator returns ErrFallbackToCPU or any other error, rendering
// transparently falls back to the CPU path; both paths are pixel-identical.
//
// The canonical implementation lives in the gpu subpackage and registers
// itself on blank import:
//
//	import _ "github.com/SMW-Editor/smw-render/gpu"
type Accelerator interface {
	// Name returns the accelerator name (e.g., "wgpu").
	Name() string

	// Init initializes GPU resources. Called once during registration.
	Init() error

	// Close releases GPU resources.
	Close()

	// RenderTiles draws a descriptor stream into the target.
	RenderTiles(target RenderTarget, tiles []Tile, u *TileUniforms) error

	// RenderPalette draws the palette grid into the target.
	RenderPalette(target RenderTarget, u *PaletteUniforms) error
}

var (
	accelMu sync.RWMutex
	accel   Accelerator
)

// RegisterAccelerator registers a GPU accelerator for optional GPU
// rendering. Only one accelerator can be registered; subsequent calls
// replace (and close) the previous one. The accelerator's Init method is
// called during registration; if it fails, the accelerator is not
// registered and the error is returned.
func RegisterAccelerator(a Accelerator) error {
	if a == nil {
		return errors.New("smwrender: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	propagateLogger(a, Logger())
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// RegisteredAccelerator returns the current GPU accelerator, or nil if none.
func RegisteredAccelerator() Accelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// CloseAccelerator closes and unregisters the current accelerator, if any.
func CloseAccelerator() {
	accelMu.Lock()
	old := accel
	accel = nil
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
}
