package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// intermediateFormat is the pixel format of every offscreen pass
// target. Half-float keeps blending linear without visible banding.
const intermediateFormat = gputypes.TextureFormatRGBA16Float

// Pipelines holds the compiled pipeline for each pass of a frame.
// Creation is eager: a frame never compiles shaders mid-flight.
type Pipelines struct {
	device hal.Device

	// Shader modules, one per WGSL file.
	fillShader      hal.ShaderModule
	gradientShader  hal.ShaderModule
	blurShader      hal.ShaderModule
	textShader      hal.ShaderModule
	compositeShader hal.ShaderModule
	outputShader    hal.ShaderModule
	blitShader      hal.ShaderModule

	// Bind group layouts.
	viewportLayout hal.BindGroupLayout // single uniform, shared by fill
	gradientLayout hal.BindGroupLayout
	blurLayout     hal.BindGroupLayout
	textLayout     hal.BindGroupLayout
	sampledLayout  hal.BindGroupLayout // texture + sampler (composite)
	outputLayout   hal.BindGroupLayout
	blitLayout     hal.BindGroupLayout

	// Pipeline layouts.
	fillPipeLayout      hal.PipelineLayout
	gradientPipeLayout  hal.PipelineLayout
	blurPipeLayout      hal.PipelineLayout
	textPipeLayout      hal.PipelineLayout
	compositePipeLayout hal.PipelineLayout
	outputPipeLayout    hal.PipelineLayout
	blitPipeLayout      hal.PipelineLayout

	// Pipelines.
	Fill      hal.RenderPipeline
	Gradient  hal.RenderPipeline
	Blur      hal.ComputePipeline
	Text      hal.RenderPipeline
	Composite hal.RenderPipeline
	Output    hal.RenderPipeline
	Blit      hal.RenderPipeline
}

// NewPipelines compiles all pass shaders and builds the pipelines.
// surfaceFormat is the swapchain format the output and blit pipelines
// render into; everything else targets the half-float intermediate.
func NewPipelines(device hal.Device, surfaceFormat gputypes.TextureFormat) (*Pipelines, error) {
	if err := ValidateShaderSources(); err != nil {
		return nil, err
	}

	p := &Pipelines{device: device}
	if err := p.create(surfaceFormat); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *Pipelines) create(surfaceFormat gputypes.TextureFormat) error {
	var err error

	if p.fillShader, err = newShaderModule(p.device, "fill_shader", fillShaderSource); err != nil {
		return err
	}
	if p.gradientShader, err = newShaderModule(p.device, "gradient_shader", gradientShaderSource); err != nil {
		return err
	}
	if p.blurShader, err = newShaderModule(p.device, "blur_shader", blurShaderSource); err != nil {
		return err
	}
	if p.textShader, err = newShaderModule(p.device, "text_shader", textShaderSource); err != nil {
		return err
	}
	if p.compositeShader, err = newShaderModule(p.device, "composite_shader", compositeShaderSource); err != nil {
		return err
	}
	if p.outputShader, err = newShaderModule(p.device, "output_shader", outputShaderSource); err != nil {
		return err
	}
	if p.blitShader, err = newShaderModule(p.device, "blit_shader", blitShaderSource); err != nil {
		return err
	}

	if err = p.createLayouts(); err != nil {
		return err
	}
	return p.createPipelines(surfaceFormat)
}

func (p *Pipelines) createLayouts() error {
	uniform := func(binding uint32, vis gputypes.ShaderStage) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: vis,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		}
	}
	texture := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		}
	}
	sampler := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		}
	}

	var err error
	p.viewportLayout, err = p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "viewport_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			uniform(0, gputypes.ShaderStageVertex|gputypes.ShaderStageFragment),
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create viewport layout: %w", err)
	}

	p.gradientLayout, err = p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "gradient_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			uniform(0, gputypes.ShaderStageVertex|gputypes.ShaderStageFragment),
			uniform(1, gputypes.ShaderStageFragment),
			uniform(2, gputypes.ShaderStageFragment),
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create gradient layout: %w", err)
	}

	p.blurLayout, err = p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "blur_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create blur layout: %w", err)
	}

	p.textLayout, err = p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "text_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			uniform(0, gputypes.ShaderStageVertex),
			texture(1),
			sampler(2),
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create text layout: %w", err)
	}

	p.sampledLayout, err = p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "sampled_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			texture(0),
			sampler(1),
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create sampled layout: %w", err)
	}

	p.outputLayout, err = p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "output_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			uniform(0, gputypes.ShaderStageFragment),
			texture(1),
			sampler(2),
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create output layout: %w", err)
	}

	p.blitLayout, err = p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "blit_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			uniform(0, gputypes.ShaderStageVertex),
			texture(1),
			sampler(2),
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create blit layout: %w", err)
	}

	layouts := []struct {
		label string
		bind  hal.BindGroupLayout
		dst   *hal.PipelineLayout
	}{
		{"fill_pipe_layout", p.viewportLayout, &p.fillPipeLayout},
		{"gradient_pipe_layout", p.gradientLayout, &p.gradientPipeLayout},
		{"blur_pipe_layout", p.blurLayout, &p.blurPipeLayout},
		{"text_pipe_layout", p.textLayout, &p.textPipeLayout},
		{"composite_pipe_layout", p.sampledLayout, &p.compositePipeLayout},
		{"output_pipe_layout", p.outputLayout, &p.outputPipeLayout},
		{"blit_pipe_layout", p.blitLayout, &p.blitPipeLayout},
	}
	for _, l := range layouts {
		pl, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
			Label:            l.label,
			BindGroupLayouts: []hal.BindGroupLayout{l.bind},
		})
		if err != nil {
			return fmt.Errorf("gpu: create %s: %w", l.label, err)
		}
		*l.dst = pl
	}
	return nil
}

func (p *Pipelines) createPipelines(surfaceFormat gputypes.TextureFormat) error {
	premul := gputypes.BlendStatePremultiplied()

	renderPipe := func(label string, layout hal.PipelineLayout, shader hal.ShaderModule,
		buffers []gputypes.VertexBufferLayout, format gputypes.TextureFormat,
		blend *gputypes.BlendState) (hal.RenderPipeline, error) {
		return p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
			Label:  label,
			Layout: layout,
			Vertex: hal.VertexState{
				Module:     shader,
				EntryPoint: "vs_main",
				Buffers:    buffers,
			},
			Fragment: &hal.FragmentState{
				Module:     shader,
				EntryPoint: "fs_main",
				Targets: []gputypes.ColorTargetState{
					{
						Format:    format,
						Blend:     blend,
						WriteMask: gputypes.ColorWriteMaskAll,
					},
				},
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
	}

	var err error
	p.Fill, err = renderPipe("fill_pipeline", p.fillPipeLayout, p.fillShader,
		fillVertexLayout(), intermediateFormat, &premul)
	if err != nil {
		return fmt.Errorf("gpu: create fill pipeline: %w", err)
	}

	p.Gradient, err = renderPipe("gradient_pipeline", p.gradientPipeLayout, p.gradientShader,
		gradientVertexLayout(), intermediateFormat, &premul)
	if err != nil {
		return fmt.Errorf("gpu: create gradient pipeline: %w", err)
	}

	p.Blur, err = p.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "blur_pipeline",
		Layout:  p.blurPipeLayout,
		Compute: hal.ComputeState{Module: p.blurShader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("gpu: create blur pipeline: %w", err)
	}

	p.Text, err = renderPipe("text_pipeline", p.textPipeLayout, p.textShader,
		textVertexLayout(), intermediateFormat, &premul)
	if err != nil {
		return fmt.Errorf("gpu: create text pipeline: %w", err)
	}

	p.Composite, err = renderPipe("composite_pipeline", p.compositePipeLayout, p.compositeShader,
		nil, intermediateFormat, &premul)
	if err != nil {
		return fmt.Errorf("gpu: create composite pipeline: %w", err)
	}

	// Output writes fully covered pixels; no blending.
	p.Output, err = renderPipe("output_pipeline", p.outputPipeLayout, p.outputShader,
		nil, surfaceFormat, nil)
	if err != nil {
		return fmt.Errorf("gpu: create output pipeline: %w", err)
	}

	p.Blit, err = renderPipe("blit_pipeline", p.blitPipeLayout, p.blitShader,
		nil, surfaceFormat, nil)
	if err != nil {
		return fmt.Errorf("gpu: create blit pipeline: %w", err)
	}

	return nil
}

// Destroy releases all pipeline resources in reverse creation order.
// Safe to call on a partially constructed set.
func (p *Pipelines) Destroy() {
	if p.device == nil {
		return
	}

	renderPipes := []hal.RenderPipeline{p.Blit, p.Output, p.Composite, p.Text, p.Gradient, p.Fill}
	for _, rp := range renderPipes {
		if rp != nil {
			p.device.DestroyRenderPipeline(rp)
		}
	}
	p.Blit, p.Output, p.Composite, p.Text, p.Gradient, p.Fill = nil, nil, nil, nil, nil, nil
	if p.Blur != nil {
		p.device.DestroyComputePipeline(p.Blur)
		p.Blur = nil
	}

	pipeLayouts := []*hal.PipelineLayout{
		&p.blitPipeLayout, &p.outputPipeLayout, &p.compositePipeLayout,
		&p.textPipeLayout, &p.blurPipeLayout, &p.gradientPipeLayout, &p.fillPipeLayout,
	}
	for _, pl := range pipeLayouts {
		if *pl != nil {
			p.device.DestroyPipelineLayout(*pl)
			*pl = nil
		}
	}

	bindLayouts := []*hal.BindGroupLayout{
		&p.blitLayout, &p.outputLayout, &p.sampledLayout, &p.textLayout,
		&p.blurLayout, &p.gradientLayout, &p.viewportLayout,
	}
	for _, bl := range bindLayouts {
		if *bl != nil {
			p.device.DestroyBindGroupLayout(*bl)
			*bl = nil
		}
	}

	shaders := []*hal.ShaderModule{
		&p.blitShader, &p.outputShader, &p.compositeShader, &p.textShader,
		&p.blurShader, &p.gradientShader, &p.fillShader,
	}
	for _, s := range shaders {
		if *s != nil {
			p.device.DestroyShaderModule(*s)
			*s = nil
		}
	}
}

// fillVertexLayout describes the fill pass vertex buffer.
func fillVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: fillVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // local
				{Format: gputypes.VertexFormatFloat32, Offset: 16, ShaderLocation: 2},   // shape_kind
				{Format: gputypes.VertexFormatFloat32, Offset: 20, ShaderLocation: 3},   // half_w
				{Format: gputypes.VertexFormatFloat32, Offset: 24, ShaderLocation: 4},   // half_h
				{Format: gputypes.VertexFormatFloat32, Offset: 28, ShaderLocation: 5},   // radius
				{Format: gputypes.VertexFormatFloat32, Offset: 32, ShaderLocation: 6},   // half_stroke
				{Format: gputypes.VertexFormatFloat32x4, Offset: 36, ShaderLocation: 7}, // color
			},
		},
	}
}

// gradientVertexLayout describes the gradient pass vertex buffer:
// bare pixel positions, the rest comes from uniforms.
func gradientVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: 8,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			},
		},
	}
}

// textVertexLayout describes the glyph quad vertex buffer.
func textVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: 32,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // uv
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2}, // color
			},
		},
	}
}
