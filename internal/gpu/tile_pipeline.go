package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/SMW-Editor/smw-render"
)

// TilePipeline manages GPU resources for instanced tile rendering.
// Each tile record is one instance; the vertex shader expands it into a
// screen-space quad (4-vertex triangle strip) and the fragment shader
// decodes the planar bitplane data per pixel.
//
// Tile art wants hard pixel edges, so the color attachment is
// single-sample; there is no MSAA resolve step.
type TilePipeline struct {
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	target offscreen
}

// NewTilePipeline creates a tile pipeline for the given device and queue.
// GPU objects are created lazily on the first Render call.
func NewTilePipeline(device hal.Device, queue hal.Queue) *TilePipeline {
	return &TilePipeline{
		device: device,
		queue:  queue,
	}
}

// Destroy releases all GPU resources held by the pipeline. Safe to call
// multiple times.
func (p *TilePipeline) Destroy() {
	p.destroyPipeline()
	p.target.destroy()
}

// Render draws the given tiles into target.Data. Graphics and color table
// contents must already be uploaded into bufs. Tiles whose decoded color
// index is zero are discarded, leaving the corresponding target pixels
// untouched. A nil or empty tile slice is a no-op.
func (p *TilePipeline) Render(target smwrender.RenderTarget, tiles []smwrender.Tile, u *smwrender.TileUniforms, bufs *GfxBuffers) error {
	if len(tiles) == 0 {
		return nil
	}

	w, h := uint32(target.Width), uint32(target.Height) //nolint:gosec // dimensions always fit uint32
	if err := p.ensureReady(w, h); err != nil {
		return err
	}

	instanceData := packTileInstances(tiles)
	instanceCount := uint32(len(tiles)) //nolint:gosec // tile count fits uint32

	instBuf, err := createAndUploadBuffer(p.device, p.queue, "smw_tile_instances", instanceData,
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create instance buffer: %w", err)
	}
	defer p.device.DestroyBuffer(instBuf)

	uniformData := makeTileUniform(w, h, u)
	uniformBuf, err := createAndUploadBuffer(p.device, p.queue, "smw_tile_uniform", uniformData,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	defer p.device.DestroyBuffer(uniformBuf)

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "smw_tile_bind",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: tileUniformSize,
			}},
			{Binding: 1, Resource: gputypes.BufferBinding{
				Buffer: bufs.graphics.NativeHandle(), Offset: 0, Size: graphicsTableBytes,
			}},
			{Binding: 2, Resource: gputypes.BufferBinding{
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
		rp.SetVertexBuffer(0, instBuf, 0)
		rp.Draw(4, instanceCount, 0, 0)
	}, target)
}

// ensureReady creates the offscreen texture and the pipeline if needed.
func (p *TilePipeline) ensureReady(w, h uint32) error {
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

// createPipeline compiles the tile shader and creates the render pipeline
// with premultiplied alpha blending.
func (p *TilePipeline) createPipeline() error {
	shader, err := createShaderModule(p.device, "smw_tile_shader", tileShaderSource)
	if err != nil {
		return fmt.Errorf("compile tile shader: %w", err)
	}
	p.shader = shader

	bindLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "smw_tile_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
			{
				Binding:    2,
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
		Label:            "smw_tile_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "smw_tile_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    tileInstanceLayout(),
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

// destroyPipeline releases pipeline resources in reverse creation order.
func (p *TilePipeline) destroyPipeline() {
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

// tileInstanceLayout returns the instance buffer layout: one uvec4 tile
// record per instance.
func tileInstanceLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: tileVertexStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatUint32x4, Offset: 0, ShaderLocation: 0},
			},
		},
	}
}

// createAndUploadBuffer creates a GPU buffer and uploads data.
func createAndUploadBuffer(device hal.Device, queue hal.Queue, label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	queue.WriteBuffer(buf, 0, data)
	return buf, nil
}
