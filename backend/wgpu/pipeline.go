package wgpu

import (
	_ "embed"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/trapeze"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/textured.wgsl
var texturedShaderWGSL string

// Bind group 0 layout of the textured pipeline. The uniform and texture
// bindings are the trapeze slots; the sampler follows the texture.
const (
	uniformBinding = trapeze.UniformSlot
	textureBinding = trapeze.TextureSlot
	samplerBinding = trapeze.TextureSlot + 1
)

// ValidateShader checks WGSL source by compiling it with naga.
func ValidateShader(source string) error {
	if source == "" {
		return fmt.Errorf("%w: empty source", ErrShaderInvalid)
	}
	if _, err := naga.Compile(source); err != nil {
		return fmt.Errorf("%w: %w", ErrShaderInvalid, err)
	}
	return nil
}

// vertexLayout describes trapeze.Vertex: position, color, texcoord.
func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{{
		ArrayStride: trapeze.VertexStride,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: trapeze.VertexPositionOffset, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x4, Offset: trapeze.VertexColorOffset, ShaderLocation: 1},
			{Format: gputypes.VertexFormatFloat32x2, Offset: trapeze.VertexTexCoordOffset, ShaderLocation: 2},
		},
	}}
}

// Pipeline is the textured, vertex-colored render pipeline together with
// its bind group layout, sampler and the white texture bound for nodes
// without one.
type Pipeline struct {
	dev    *Device
	format gputypes.TextureFormat

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	raw        hal.RenderPipeline
	sampler    hal.Sampler
	white      *Texture
}

// NewPipeline validates the embedded shader and creates the pipeline for
// color targets of the given format.
func NewPipeline(dev *Device, format gputypes.TextureFormat) (*Pipeline, error) {
	if err := ValidateShader(texturedShaderWGSL); err != nil {
		return nil, err
	}
	p := &Pipeline{dev: dev, format: format}
	if err := p.create(); err != nil {
		p.Destroy()
		return nil, err
	}
	slogger().Debug("wgpu: textured pipeline created", "format", format)
	return p, nil
}

func (p *Pipeline) create() error {
	device := p.dev.device

	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "textured_shader",
		Source: hal.ShaderSource{WGSL: texturedShaderWGSL},
	})
	if err != nil {
		return fmt.Errorf("create textured shader: %w", err)
	}
	p.shader = shader

	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "textured_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    uniformBinding,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    textureBinding,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    samplerBinding,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create textured bind layout: %w", err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "textured_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create textured pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "textured_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create textured sampler: %w", err)
	}
	p.sampler = sampler

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "textured_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{{
				Format:    p.format,
				Blend:     &premulBlend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create textured pipeline: %w", err)
	}
	p.raw = pipeline

	white := image.NewRGBA(image.Rect(0, 0, 1, 1))
	white.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	tex, err := p.dev.NewTexture("textured_white", white)
	if err != nil {
		return err
	}
	p.white = tex.(*Texture)
	return nil
}

// Format returns the color target format.
func (p *Pipeline) Format() gputypes.TextureFormat { return p.format }

// newBindGroup binds a uniform region and a texture view with the
// pipeline's sampler.
func (p *Pipeline) newBindGroup(uniforms *Buffer, tex *Texture) (hal.BindGroup, error) {
	return p.dev.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "textured_bind_group",
		Layout: p.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: uniformBinding, Resource: gputypes.BufferBinding{
				Buffer: uniforms.raw.NativeHandle(), Offset: 0, Size: trapeze.UniformSize,
			}},
			{Binding: textureBinding, Resource: gputypes.TextureViewBinding{
				TextureView: tex.view.NativeHandle(),
			}},
			{Binding: samplerBinding, Resource: gputypes.SamplerBinding{
				Sampler: p.sampler.NativeHandle(),
			}},
		},
	})
}

// Destroy releases all pipeline resources in reverse creation order.
// Safe to call multiple times.
func (p *Pipeline) Destroy() {
	device := p.dev.device
	if p.white != nil {
		p.white.Destroy()
		p.white = nil
	}
	if p.raw != nil {
		device.DestroyRenderPipeline(p.raw)
		p.raw = nil
	}
	if p.sampler != nil {
		device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.pipeLayout != nil {
		device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}
