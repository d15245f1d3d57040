package render

import "fmt"

// ShaderStage values match VkShaderStageFlagBits.
type ShaderStage uint32

const (
	ShaderStageVertex   ShaderStage = 0x01
	ShaderStageFragment ShaderStage = 0x10
)

// Topology values match VkPrimitiveTopology.
type Topology int32

const (
	TopologyPointList     Topology = 0
	TopologyLineList      Topology = 1
	TopologyLineStrip     Topology = 2
	TopologyTriangleList  Topology = 3
	TopologyTriangleStrip Topology = 4
)

// PolygonMode values match VkPolygonMode.
type PolygonMode int32

const (
	PolygonModeFill  PolygonMode = 0
	PolygonModeLine  PolygonMode = 1
	PolygonModePoint PolygonMode = 2
)

// CullMode values match VkCullModeFlagBits.
type CullMode uint32

const (
	CullModeNone  CullMode = 0
	CullModeFront CullMode = 1
	CullModeBack  CullMode = 2
)

// FrontFace values match VkFrontFace.
type FrontFace int32

const (
	FrontFaceCounterClockwise FrontFace = 0
	FrontFaceClockwise        FrontFace = 1
)

// CompareOp values match VkCompareOp.
type CompareOp int32

const (
	CompareOpNever       CompareOp = 0
	CompareOpLess        CompareOp = 1
	CompareOpLessOrEqual CompareOp = 3
	CompareOpAlways      CompareOp = 7
)

// VertexAttribute describes one shader input read from vertex binding 0.
type VertexAttribute struct {
	Location uint32
	Format   Format
	Offset   uint32
}

// VertexLayout describes the single interleaved vertex binding of a pipeline.
type VertexLayout struct {
	Stride     uint32
	Attributes []VertexAttribute
}

// PushConstantRange declares a push constant block visible to the given stages.
type PushConstantRange struct {
	Stages ShaderStage
	Offset uint32
	Size   uint32
}

// PipelineConfig is the fixed-function description of a graphics pipeline.
// Viewport and scissor are always dynamic state.
type PipelineConfig struct {
	VertexShader   ShaderModule
	FragmentShader ShaderModule
	VertexLayout   VertexLayout

	Topology    Topology
	PolygonMode PolygonMode
	CullMode    CullMode
	FrontFace   FrontFace
	LineWidth   float32

	BlendEnable  bool
	DepthTest    bool
	DepthWrite   bool
	DepthCompare CompareOp

	Layout     PipelineLayout
	RenderPass RenderPass
	Subpass    uint32
}

// DefaultPipelineConfig returns an opaque, depth-tested triangle list configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Topology:     TopologyTriangleList,
		PolygonMode:  PolygonModeFill,
		CullMode:     CullModeNone,
		FrontFace:    FrontFaceClockwise,
		LineWidth:    1,
		DepthTest:    true,
		DepthWrite:   true,
		DepthCompare: CompareOpLess,
	}
}

// PipelineBinding couples a fixed shader pair and configuration with the
// pipeline built from them against a FrameChain's render pass.
type PipelineBinding struct {
	name          string
	vertexCode    []uint32
	fragmentCode  []uint32
	pushConstants []PushConstantRange
	configure     func(*PipelineConfig)

	layout   PipelineLayout
	pipeline Pipeline
	format   SwapchainFormat
}

// NewPipelineBinding describes a pipeline without creating any GPU object.
// configure, if non-nil, adjusts the default configuration before each build.
func NewPipelineBinding(name string, vertexCode, fragmentCode []uint32, pushConstants []PushConstantRange, configure func(*PipelineConfig)) *PipelineBinding {
	return &PipelineBinding{
		name:          name,
		vertexCode:    vertexCode,
		fragmentCode:  fragmentCode,
		pushConstants: pushConstants,
		configure:     configure,
	}
}

func (p *PipelineBinding) Name() string { return p.name }

// Built reports whether a pipeline object currently exists.
func (p *PipelineBinding) Built() bool { return p.pipeline != nil }

// Format returns the attachment formats the pipeline was last built against.
func (p *PipelineBinding) Format() SwapchainFormat { return p.format }

// Layout returns the pipeline layout, valid once the binding has been built.
func (p *PipelineBinding) Layout() PipelineLayout { return p.layout }

// Build creates the pipeline for the given render pass, replacing any previous
// pipeline. The caller guarantees the old pipeline is no longer in use.
func (p *PipelineBinding) Build(device Device, pass RenderPass, format SwapchainFormat) error {
	if p.layout == nil {
		layout, err := device.CreatePipelineLayout(p.pushConstants)
		if err != nil {
			return fmt.Errorf("%w: %s: create pipeline layout: %w", ErrPipelineCreationFailed, p.name, err)
		}
		p.layout = layout
	}

	vert, err := device.CreateShaderModule(p.vertexCode)
	if err != nil {
		return fmt.Errorf("%w: %s: create vertex shader module: %w", ErrPipelineCreationFailed, p.name, err)
	}
	defer device.DestroyShaderModule(vert)

	frag, err := device.CreateShaderModule(p.fragmentCode)
	if err != nil {
		return fmt.Errorf("%w: %s: create fragment shader module: %w", ErrPipelineCreationFailed, p.name, err)
	}
	defer device.DestroyShaderModule(frag)

	config := DefaultPipelineConfig()
	if p.configure != nil {
		p.configure(&config)
	}
	config.VertexShader = vert
	config.FragmentShader = frag
	config.Layout = p.layout
	config.RenderPass = pass

	pipeline, err := device.CreateGraphicsPipeline(config)
	if err != nil {
		return fmt.Errorf("%w: %s: create graphics pipeline: %w", ErrPipelineCreationFailed, p.name, err)
	}

	if p.pipeline != nil {
		device.DestroyPipeline(p.pipeline)
	}
	p.pipeline = pipeline
	p.format = format
	return nil
}

// Bind records a pipeline bind into cmd.
func (p *PipelineBinding) Bind(cmd CommandBuffer) {
	if p.pipeline == nil {
		panic(fmt.Sprintf("render: pipeline %q bound before it was built", p.name))
	}
	cmd.BindPipeline(p.pipeline)
}

// Destroy releases the pipeline and its layout.
func (p *PipelineBinding) Destroy(device Device) {
	if p.pipeline != nil {
		device.DestroyPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.layout != nil {
		device.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
}
