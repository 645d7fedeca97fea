package gpu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/SMW-Editor/smw-render"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Accelerator renders tile and palette draws on the GPU via wgpu/hal.
// It implements the smwrender.Accelerator interface.
//
// Draws are serialized under a mutex: the pipelines reuse their offscreen
// textures, and the hal command encoding is not safe for concurrent use on
// one device anyway.
type Accelerator struct {
	mu sync.Mutex

	logger *slog.Logger

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	bufs    *GfxBuffers
	tiles   *TilePipeline
	palette *PalettePipeline
}

var _ smwrender.Accelerator = (*Accelerator)(nil)

// New creates an uninitialized accelerator. GPU resources are allocated by
// Init, which smwrender.RegisterAccelerator calls.
func New() *Accelerator {
	return &Accelerator{logger: smwrender.Logger()}
}

func (a *Accelerator) Name() string { return "wgpu" }

// SetLogger updates the logger used for GPU diagnostics.
func (a *Accelerator) SetLogger(l *slog.Logger) {
	a.mu.Lock()
	a.logger = l
	a.mu.Unlock()
}

// Init opens a GPU device and creates the shared table buffers and both
// pipelines. If no usable adapter exists the error is returned and the
// caller keeps rendering on the CPU.
func (a *Accelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.device != nil {
		return nil
	}

	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("gpu: vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("gpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return fmt.Errorf("gpu: no adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("gpu: open device: %w", err)
	}

	bufs, err := NewGfxBuffers(openDev.Device, openDev.Queue)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return fmt.Errorf("gpu: create table buffers: %w", err)
	}

	a.instance = instance
	a.device = openDev.Device
	a.queue = openDev.Queue
	a.bufs = bufs
	a.tiles = NewTilePipeline(a.device, a.queue)
	a.palette = NewPalettePipeline(a.device, a.queue)

	a.logger.Info("gpu: accelerator initialized",
		slog.String("adapter", selected.Info.Name))
	return nil
}

// Close releases all GPU resources. Safe to call multiple times.
func (a *Accelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tiles != nil {
		a.tiles.Destroy()
		a.tiles = nil
	}
	if a.palette != nil {
		a.palette.Destroy()
		a.palette = nil
	}
	if a.bufs != nil {
		a.bufs.Destroy()
		a.bufs = nil
	}
	if a.device != nil {
		a.device.Destroy()
		a.device = nil
	}
	if a.instance != nil {
		a.instance.Destroy()
		a.instance = nil
	}
	a.queue = nil
}

// RenderTiles draws the descriptor stream on the GPU and reads the result
// back into target.Data. Returns ErrFallbackToCPU when no device is open.
func (a *Accelerator) RenderTiles(target smwrender.RenderTarget, tiles []smwrender.Tile, u *smwrender.TileUniforms) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.device == nil {
		return smwrender.ErrFallbackToCPU
	}

	// The tables are small (64 KiB + 4 KiB); re-uploading per draw is
	// cheaper than tracking CPU-side mutations.
	a.bufs.UploadGraphics(u.Graphics)
	a.bufs.UploadColors(u.Colors)

	a.logger.Debug("gpu: render tiles",
		slog.Int("count", len(tiles)),
		slog.Int("width", target.Width),
		slog.Int("height", target.Height))
	return a.tiles.Render(target, tiles, u, a.bufs)
}

// RenderPalette draws the palette swatch grid on the GPU and reads the
// result back into target.Data. Returns ErrFallbackToCPU when no device is
// open.
func (a *Accelerator) RenderPalette(target smwrender.RenderTarget, u *smwrender.PaletteUniforms) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.device == nil {
		return smwrender.ErrFallbackToCPU
	}

	a.bufs.UploadColors(u.Colors)

	a.logger.Debug("gpu: render palette",
		slog.String("viewed", u.Viewed.String()),
		slog.Int("width", target.Width),
		slog.Int("height", target.Height))
	return a.palette.Render(target, u, a.bufs)
}
