package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/SMW-Editor/smw-render"
)

// gpuTimeout bounds the fence wait after a submitted draw.
const gpuTimeout = 5 * time.Second

// offscreen is the render target texture shared by a pipeline's draws:
// single-sample BGRA8 (tile art wants hard pixel edges, so no MSAA),
// recreated whenever the requested dimensions change.
type offscreen struct {
	device hal.Device

	tex  hal.Texture
	view hal.TextureView

	width, height uint32
}

// ensure creates or recreates the texture for the given dimensions.
func (o *offscreen) ensure(device hal.Device, w, h uint32) error {
	if o.width == w && o.height == h && o.tex != nil {
		return nil
	}
	o.device = device
	o.destroy()

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "smw_offscreen",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create offscreen texture: %w", err)
	}
	o.tex = tex

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "smw_offscreen_view",
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		o.destroy()
		return fmt.Errorf("create offscreen view: %w", err)
	}
	o.view = view

	o.width = w
	o.height = h
	return nil
}

func (o *offscreen) destroy() {
	if o.view != nil {
		o.device.DestroyTextureView(o.view)
		o.view = nil
	}
	if o.tex != nil {
		o.device.DestroyTexture(o.tex)
		o.tex = nil
	}
	o.width = 0
	o.height = 0
}

// renderAndReadback encodes one render pass into the offscreen texture
// (cleared to transparent), copies the result to a staging buffer, submits,
// waits, and composites the readback over the caller's RGBA raster.
// Discarded fragments stay transparent in the texture and therefore leave
// target pixels untouched.
func renderAndReadback(
	device hal.Device, queue hal.Queue, o *offscreen,
	record func(rp hal.RenderPassEncoder),
	target smwrender.RenderTarget,
) error {
	w, h := o.width, o.height

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "smw_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("smw_draw"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "smw_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       o.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	record(rp)
	rp.End()

	// The pass leaves the texture in attachment layout; the copy below
	// needs transfer-source. No-op on backends without explicit layouts.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: o.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	// Copy rows aligned to 256 bytes as WebGPU requires.
	bytesPerRow := w * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	stagingBuf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "smw_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(o.tex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: o.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	fence, err := device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer device.DestroyFence(fence)

	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := device.Wait(fence, 1, gpuTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, stagingSize)
	if err := queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}

	compositeBGRAOverRGBA(readback, int(alignedBytesPerRow), target)
	return nil
}

// compositeBGRAOverRGBA blends the premultiplied BGRA readback over the
// straight-alpha RGBA target. Fully transparent source pixels (discards)
// leave the destination untouched; opaque ones replace it.
func compositeBGRAOverRGBA(src []byte, srcStride int, target smwrender.RenderTarget) {
	for y := 0; y < target.Height; y++ {
		srow := src[y*srcStride:]
		drow := target.Data[y*target.Stride:]
		for x := 0; x < target.Width; x++ {
			sa := srow[x*4+3]
			if sa == 0 {
				continue
			}
			sb := srow[x*4+0]
			sg := srow[x*4+1]
			sr := srow[x*4+2]
			if sa == 255 {
				drow[x*4+0] = sr
				drow[x*4+1] = sg
				drow[x*4+2] = sb
				drow[x*4+3] = 255
				continue
			}
			// Source-over with premultiplied source, straight destination.
			da := drow[x*4+3]
			inv := uint32(255 - sa)
			outA := uint32(sa) + uint32(da)*inv/255
			if outA == 0 {
				continue
			}
			blend := func(s uint8, d uint8) uint8 {
				v := uint32(s) + uint32(d)*uint32(da)/255*inv/255
				return uint8(v * 255 / outA)
			}
			drow[x*4+0] = blend(sr, drow[x*4+0])
			drow[x*4+1] = blend(sg, drow[x*4+1])
			drow[x*4+2] = blend(sb, drow[x*4+2])
			drow[x*4+3] = uint8(outA)
		}
	}
}
