package rhi

import "errors"

// ErrResourceCreation is returned by every New*/Create* factory on
// failure, per spec §4.1 ("Fails with ResourceCreationError..."). The
// caller logs and degrades; the RHI never panics across the API
// boundary.
var ErrResourceCreation = errors.New("rhi: resource creation failed")

// BufferDesc describes a buffer to be created.
type BufferDesc struct {
	Size   int64
	Stride int
	Usage  Usage
	Memory MemoryUsage
	// PersistentMap requests that the buffer, once created with
	// Memory == MemoryCPUToGPU, stay permanently mapped for the
	// lifetime of the handle (spec §4.1).
	PersistentMap bool
}

// Buffer is a GPU buffer of fixed size.
type Buffer interface {
	Destroyer

	// Size returns the buffer's size in bytes.
	Size() int64

	// Mapped returns the buffer's persistently-mapped CPU view, or
	// nil if the buffer is not host-visible or was not created with
	// PersistentMap.
	Mapped() []byte

	// Map returns a CPU view of the buffer for the duration between
	// Map and Unmap. Only valid for non-persistently-mapped,
	// host-visible buffers.
	Map() ([]byte, error)

	// Unmap ends a Map'd access.
	Unmap()
}

// TextureDesc describes a texture to be created.
type TextureDesc struct {
	Dim     TextureDim
	Format  Format
	Extent  Dim3D
	Layers  int
	Levels  int
	Samples int
	Usage   Usage
	Memory  MemoryUsage
}

// TextureDim is the dimensionality of a texture.
type TextureDim int

// Texture dimensions.
const (
	Tex2D TextureDim = iota
	Tex2DArray
	TexCube
	Tex3D
)

// Texture is a GPU image.
type Texture interface {
	Destroyer

	Format() Format
	Extent() Dim3D
	Layers() int
	Levels() int
	Samples() int
}

// ViewType is the type of a texture view, mirroring TextureDim plus
// the multisample/array variants spec §3.1 calls out.
type ViewType int

// View types.
const (
	View2D ViewType = iota
	View2DArray
	View2DMS
	View2DMSArray
	ViewCube
	ViewCubeArray
	View3D
)

// TextureViewDesc describes a view over a texture.
type TextureViewDesc struct {
	Texture Texture
	Type    ViewType
	Format  Format
	Range   SubresourceRange
}

// TextureView is a typed view over a subresource range of a Texture.
type TextureView interface {
	Destroyer

	Texture() Texture
}

// Filter is a sampler minification/magnification/mipmap filter.
type Filter int

// Filters.
const (
	FilterNearest Filter = iota
	FilterLinear
)

// AddrMode is a sampler address (wrap) mode.
type AddrMode int

// Address modes.
const (
	AddrWrap AddrMode = iota
	AddrMirror
	AddrClamp
	AddrBorder
)

// BorderColor selects a fixed border color for AddrBorder.
type BorderColor int

// Border colors.
const (
	BorderTransparentBlack BorderColor = iota
	BorderOpaqueBlack
	BorderOpaqueWhite
)

// SamplerDesc describes a sampler to be created.
type SamplerDesc struct {
	Min, Mag, Mipmap    Filter
	AddrU, AddrV, AddrW AddrMode
	Border              BorderColor
	MaxAniso            int
	CompareEnable       bool
	Compare             CompareFunc
	MinLOD, MaxLOD      float32
}

// Sampler is a GPU texture sampler.
type Sampler interface {
	Destroyer
}

// CompareFunc is a comparison function, used by depth tests and
// comparison samplers.
type CompareFunc int

// Comparison functions.
const (
	CompareNever CompareFunc = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)
