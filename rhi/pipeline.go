package rhi

// ShaderStage is a programmable pipeline stage.
type ShaderStage int

// Stages.
const (
	StageVertex ShaderStage = 1 << iota
	StageFragment
	StageCompute
	StageGeometry
)

// ShaderDesc describes a shader to be created from either source text
// (WGSL, compiled by the concrete backend at creation time) or
// precompiled bytecode (SPIR-V). The rhi/wgpu backend accepts only
// Source: it returns kerr.ErrShaderCompile for a desc with an empty
// Source, so no backend in this module consumes Bytecode.
type ShaderDesc struct {
	Stage   ShaderStage
	Entry   string
	Source  string // WGSL source; mutually exclusive with Bytecode.
	Bytecode []byte
}

// Shader is a compiled shader module.
type Shader interface {
	Destroyer

	Stage() ShaderStage
}

// DescriptorType is the type of a binding slot in a RootSignature.
type DescriptorType int

// Descriptor types.
const (
	DescConstantBuffer DescriptorType = iota
	DescShaderResource
	DescUnorderedAccess
	DescSampler
)

// DescriptorBinding describes one binding slot.
type DescriptorBinding struct {
	Type   DescriptorType
	Slot   int
	Stages ShaderStage
	Count  int // array size, 1 for a single binding
}

// RootSignatureDesc describes the descriptor-binding schema shared by
// a pipeline.
type RootSignatureDesc struct {
	Bindings []DescriptorBinding
}

// RootSignature is the descriptor-binding schema shared by a pipeline.
type RootSignature interface {
	Destroyer
}

// VertexFormat describes the format of one vertex attribute.
type VertexFormat int

// Vertex formats.
const (
	VertexFloat32x2 VertexFormat = iota
	VertexFloat32x3
	VertexFloat32x4
	VertexUint32
	VertexUint16x4
)

// VertexInput describes one vertex buffer binding.
type VertexInput struct {
	Slot   int
	Format VertexFormat
	Stride int
}

// Topology is a primitive topology.
type Topology int

// Topologies.
const (
	TopologyTriangleList Topology = iota
	TopologyTriangleStrip
	TopologyLineList
	TopologyPointList
)

// CullMode selects which triangle faces are culled.
type CullMode int

// Cull modes.
const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// FillMode selects the rasterizer's fill mode.
type FillMode int

// Fill modes.
const (
	FillSolid FillMode = iota
	FillWireframe
)

// RasterState is the rasterizer state of a GraphicsPipeline.
type RasterState struct {
	Cull        CullMode
	Fill        FillMode
	DepthClip   bool
	FrontCCW    bool
}

// DepthStencilState is the depth/stencil state of a GraphicsPipeline.
type DepthStencilState struct {
	DepthTest    bool
	DepthWrite   bool
	DepthCompare CompareFunc
}

// BlendFactor is a blend equation operand.
type BlendFactor int

// Blend factors.
const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendInvSrcAlpha
	BlendDstAlpha
	BlendInvDstAlpha
)

// ColorTargetState is the per-target blend state of a GraphicsPipeline.
type ColorTargetState struct {
	Format     Format
	Blend      bool
	SrcFactor  BlendFactor
	DstFactor  BlendFactor
	WriteAll   bool
}

// GraphicsPipelineDesc describes a graphics pipeline. A pipeline is
// bound to exactly one RenderPass's attachment formats, matching spec
// §4.1's "Pipeline creation reads color and depth formats from the
// render system so that multiple passes share attachment formats."
type GraphicsPipelineDesc struct {
	Vertex   Shader
	Fragment Shader
	Root     RootSignature
	Inputs   []VertexInput
	Topology Topology
	Raster   RasterState
	DS       DepthStencilState
	Color    []ColorTargetState
	DepthFmt Format
	Samples  int
}

// GraphicsPipeline is a compiled graphics pipeline state object.
type GraphicsPipeline interface {
	Destroyer
}

// LoadOp is a render-pass attachment load operation.
type LoadOp int

// Load operations.
const (
	LoadDontCare LoadOp = iota
	LoadClear
	LoadLoad
)

// StoreOp is a render-pass attachment store operation.
type StoreOp int

// Store operations.
const (
	StoreDontCare StoreOp = iota
	StoreStore
)

// ClearValue holds the clear color or depth/stencil clear value for
// an attachment whose LoadOp is LoadClear.
type ClearValue struct {
	Color        [4]float32
	Depth        float32
	Stencil      uint32
}

// ColorAttachment describes one color render target.
type ColorAttachment struct {
	View  TextureView
	Load  LoadOp
	Store StoreOp
	Clear ClearValue
}

// DepthAttachment describes the depth/stencil render target.
type DepthAttachment struct {
	View         TextureView
	DepthLoad    LoadOp
	DepthStore   StoreOp
	StencilLoad  LoadOp
	StencilStore StoreOp
	Clear        ClearValue
	ReadOnly     bool
}

// RenderPassDesc describes an immutable render pass: a set of
// attachments with load/store semantics, per spec §3.1/§4.5.
type RenderPassDesc struct {
	Color []ColorAttachment
	Depth *DepthAttachment
}

// RenderPass is an immutable description of attachments ready for
// CommandContext.BeginRenderPass.
type RenderPass interface {
	Destroyer
}
