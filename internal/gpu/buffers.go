package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/SMW-Editor/smw-render"
)

// GfxBuffers holds the GPU-resident copies of the two shared resource
// tables. The host replaces their contents wholesale before a draw; the
// pipelines only ever read them. Both buffers are allocated once at
// accelerator construction and live until Close.
type GfxBuffers struct {
	device hal.Device
	queue  hal.Queue

	// graphics is the planar tile data: 4096 vec4<u32> records,
	// bound read-only storage.
	graphics hal.Buffer

	// colors is the resolved palette: 256 vec4<f32> entries, bound uniform.
	colors hal.Buffer
}

// NewGfxBuffers allocates both resource tables on the device.
func NewGfxBuffers(device hal.Device, queue hal.Queue) (*GfxBuffers, error) {
	graphics, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "smw_graphics_table",
		Size:  graphicsTableBytes,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create graphics table: %w", err)
	}

	colors, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "smw_color_table",
		Size:  colorTableBytes,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		device.DestroyBuffer(graphics)
		return nil, fmt.Errorf("create color table: %w", err)
	}

	return &GfxBuffers{device: device, queue: queue, graphics: graphics, colors: colors}, nil
}

// UploadGraphics replaces the GPU graphics table with the host snapshot.
func (b *GfxBuffers) UploadGraphics(g *smwrender.GraphicsTable) {
	b.queue.WriteBuffer(b.graphics, 0, g.Bytes())
}

// UploadColors replaces the GPU color table with the host snapshot.
func (b *GfxBuffers) UploadColors(c *smwrender.ColorTable) {
	b.queue.WriteBuffer(b.colors, 0, packColorTable(c))
}

// Destroy releases both buffers. Safe to call more than once.
func (b *GfxBuffers) Destroy() {
	if b.graphics != nil {
		b.device.DestroyBuffer(b.graphics)
		b.graphics = nil
	}
	if b.colors != nil {
		b.device.DestroyBuffer(b.colors)
		b.colors = nil
	}
}
