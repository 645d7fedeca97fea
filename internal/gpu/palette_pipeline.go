package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/SMW-Editor/smw-render"
)

// PalettePipeline draws the color table as a 16x16 swatch grid covering the
// whole render target. The quad is generated from the vertex index alone,
// so there is no vertex buffer.
type PalettePipeline struct {
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	target offscreen
}

// NewPalettePipeline creates a palette pipeline for the given device and
// queue. GPU objects are created lazily on the first Render call.
func NewPalettePipeline(device hal.Device, queue hal.Queue) *PalettePipeline {
	return &PalettePipeline{
		device: device,
		queue:  queue,
	}
}

// Destroy releases all GPU resources held by the pipeline. Safe to call
// multiple times.
func (p *PalettePipeline) Destroy() {
	p.destroyPipeline()
	p.target.destroy()
}

// Render draws the swatch grid for the viewed palette range into
// target.Data. Column 0 of every row is discarded, leaving those target
// pixels untouched.
func (p *PalettePipeline) Render(target smwrender.RenderTarget, u *smwrender.PaletteUniforms, bufs *GfxBuffers) error {
	w, h := uint32(target.Width), uint32(target.Height) //nolint:gosec // dimensions always fit uint32
	if err := p.ensureReady(w, h); err != nil {
		return err
	}

	uniformData := makePaletteUniform(u.Viewed)
	uniformBuf, err := createAndUploadBuffer(p.device, p.queue, "smw_palette_uniform", uniformData,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	defer p.device.DestroyBuffer(uniformBuf)

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "smw_palette_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: paletteUniformSize,
			}},
			{Binding: 1, Resource: gputypes.BufferBinding{
				Buffer: bufs.colors.NativeHandle(), Offset: 0, Size: colorTableBytes,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer p.device.DestroyBindGroup(bindGroup)

	return renderAndReadback(p.device, p.queue, &p.target, func(rp hal.RenderPassEncoder) {
		rp.SetPipeline(p.pipeline)
		rp.SetBindGroup(0, bindGroup, nil)
		rp.Draw(4, 1, 0, 0)
	}, target)
}

func (p *PalettePipeline) ensureReady(w, h uint32) error {
	if err := p.target.ensure(p.device, w, h); err != nil {
		return fmt.Errorf("ensure texture: %w", err)
	}
	if p.pipeline == nil {
		if err := p.createPipeline(); err != nil {
			return fmt.Errorf("create pipeline: %w", err)
		}
	}
	return nil
}

func (p *PalettePipeline) createPipeline() error {
	shader, err := createShaderModule(p.device, "smw_palette_shader", paletteShaderSource)
	if err != nil {
		return fmt.Errorf("compile palette shader: %w", err)
	}
	p.shader = shader

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "smw_palette_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "smw_palette_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "smw_palette_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatBGRA8Unorm,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	p.pipeline = pipeline

	return nil
}

func (p *PalettePipeline) destroyPipeline() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
