package rhi

// ResourceState is the unified resource-state enum spec §3.1 calls for:
// a single enum covering every state a buffer or texture can transition
// through, rather than the separate sync-scope/access-scope/layout
// triple the teacher's Vulkan backend tracks internally. The concrete
// backend (rhi/wgpu) maps each ResourceState to whatever combination of
// usage/sync flags the underlying API needs; callers of this package
// never see that mapping.
type ResourceState int

// Resource states, per spec §3.1.
const (
	StateUndefined ResourceState = iota
	StateCommon
	StateVertexOrConstant
	StateIndex
	StateRenderTarget
	StateDepthWrite
	StateDepthRead
	StateShaderResource
	StateUnorderedAccess
	StateCopySrc
	StateCopyDst
	StatePresent
)

func (s ResourceState) String() string {
	switch s {
	case StateUndefined:
		return "undefined"
	case StateCommon:
		return "common"
	case StateVertexOrConstant:
		return "vertex/constant"
	case StateIndex:
		return "index"
	case StateRenderTarget:
		return "render-target"
	case StateDepthWrite:
		return "depth-write"
	case StateDepthRead:
		return "depth-read"
	case StateShaderResource:
		return "shader-resource"
	case StateUnorderedAccess:
		return "unordered-access"
	case StateCopySrc:
		return "copy-src"
	case StateCopyDst:
		return "copy-dst"
	case StatePresent:
		return "present"
	}
	return "invalid"
}

// Aspect identifies a subresource aspect for barriers and views.
type Aspect int

// Aspects.
const (
	AspectColor Aspect = 1 << iota
	AspectDepth
	AspectStencil
	AspectDepthStencil = AspectDepth | AspectStencil
)

// SubresourceRange identifies a contiguous range of mip levels and
// array layers that a barrier or view applies to.
type SubresourceRange struct {
	Aspect     Aspect
	BaseMip    int
	MipCount   int
	BaseLayer  int
	LayerCount int
}

// TextureBarrier transitions a texture subresource from one
// ResourceState to another. Issuing a barrier with Before == After is
// defined to be a no-op (spec §4.1, tested by property 2 in spec §8).
type TextureBarrier struct {
	Texture Texture
	Before  ResourceState
	After   ResourceState
	Range   SubresourceRange
}

// BufferBarrier transitions a whole buffer from one ResourceState to
// another.
type BufferBarrier struct {
	Buffer Buffer
	Before ResourceState
	After  ResourceState
}

// Usage is a bitmask of valid uses for a buffer or texture, matching
// spec §3.1's buffer/texture usage flags.
type Usage int

// Usage flags.
const (
	UsageVertex Usage = 1 << iota
	UsageIndex
	UsageUniform
	UsageStorage
	UsageIndirect
	UsageSampled
	UsageStorageImage
	UsageColorTarget
	UsageDepthTarget
	UsageCube
	UsageCopySrc
	UsageCopyDst
)

// MemoryUsage hints at the memory heap a resource should be allocated
// from.
type MemoryUsage int

// Memory usages.
const (
	// MemoryGPUOnly is fast device-local memory; the CPU cannot map it.
	MemoryGPUOnly MemoryUsage = iota
	// MemoryCPUToGPU is host-visible, device-accessible memory, suited
	// to buffers that are written every frame by the CPU (uniform
	// buffers, staging buffers).
	MemoryCPUToGPU
	// MemoryCPUOnly is host-visible memory used for readback.
	MemoryCPUOnly
)
