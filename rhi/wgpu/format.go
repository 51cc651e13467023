package wgpu

import (
	cgpu "github.com/cogentcore/webgpu/wgpu"

	"github.com/kestrel-engine/kestrel/rhi"
)

func toWGPUFormat(f rhi.Format) cgpu.TextureFormat {
	switch f {
	case rhi.FormatRGBA8Unorm:
		return cgpu.TextureFormatRGBA8Unorm
	case rhi.FormatRGBA8Srgb:
		return cgpu.TextureFormatRGBA8UnormSrgb
	case rhi.FormatBGRA8Unorm:
		return cgpu.TextureFormatBGRA8Unorm
	case rhi.FormatBGRA8Srgb:
		return cgpu.TextureFormatBGRA8UnormSrgb
	case rhi.FormatRG8Unorm:
		return cgpu.TextureFormatRG8Unorm
	case rhi.FormatR8Unorm:
		return cgpu.TextureFormatR8Unorm
	case rhi.FormatRGBA16Float:
		return cgpu.TextureFormatRGBA16Float
	case rhi.FormatRG16Float:
		return cgpu.TextureFormatRG16Float
	case rhi.FormatR16Float:
		return cgpu.TextureFormatR16Float
	case rhi.FormatRGBA32Float:
		return cgpu.TextureFormatRGBA32Float
	case rhi.FormatRG32Float:
		return cgpu.TextureFormatRG32Float
	case rhi.FormatR32Float:
		return cgpu.TextureFormatR32Float
	case rhi.FormatD16Unorm:
		return cgpu.TextureFormatDepth16Unorm
	case rhi.FormatD32Float:
		return cgpu.TextureFormatDepth32Float
	case rhi.FormatD24UnormS8Uint:
		return cgpu.TextureFormatDepth24PlusStencil8
	case rhi.FormatD32FloatS8Uint:
		return cgpu.TextureFormatDepth32FloatStencil8
	}
	return cgpu.TextureFormatUndefined
}

func fromWGPUFormat(f cgpu.TextureFormat) rhi.Format {
	switch f {
	case cgpu.TextureFormatRGBA8Unorm:
		return rhi.FormatRGBA8Unorm
	case cgpu.TextureFormatRGBA8UnormSrgb:
		return rhi.FormatRGBA8Srgb
	case cgpu.TextureFormatBGRA8Unorm:
		return rhi.FormatBGRA8Unorm
	case cgpu.TextureFormatBGRA8UnormSrgb:
		return rhi.FormatBGRA8Srgb
	}
	return rhi.FormatUndefined
}

func toWGPUUsage(u rhi.Usage) cgpu.BufferUsage {
	var out cgpu.BufferUsage
	if u&rhi.UsageVertex != 0 {
		out |= cgpu.BufferUsageVertex
	}
	if u&rhi.UsageIndex != 0 {
		out |= cgpu.BufferUsageIndex
	}
	if u&rhi.UsageUniform != 0 {
		out |= cgpu.BufferUsageUniform
	}
	if u&rhi.UsageStorage != 0 {
		out |= cgpu.BufferUsageStorage
	}
	if u&rhi.UsageIndirect != 0 {
		out |= cgpu.BufferUsageIndirect
	}
	if u&rhi.UsageCopySrc != 0 {
		out |= cgpu.BufferUsageCopySrc
	}
	if u&rhi.UsageCopyDst != 0 {
		out |= cgpu.BufferUsageCopyDst
	}
	return out
}

func toWGPUTextureUsage(u rhi.Usage) cgpu.TextureUsage {
	var out cgpu.TextureUsage
	if u&rhi.UsageSampled != 0 {
		out |= cgpu.TextureUsageTextureBinding
	}
	if u&rhi.UsageStorageImage != 0 {
		out |= cgpu.TextureUsageStorageBinding
	}
	if u&rhi.UsageColorTarget != 0 || u&rhi.UsageDepthTarget != 0 {
		out |= cgpu.TextureUsageRenderAttachment
	}
	if u&rhi.UsageCopySrc != 0 {
		out |= cgpu.TextureUsageCopySrc
	}
	if u&rhi.UsageCopyDst != 0 {
		out |= cgpu.TextureUsageCopyDst
	}
	return out
}

func toWGPUFilter(f rhi.Filter) cgpu.FilterMode {
	if f == rhi.FilterLinear {
		return cgpu.FilterModeLinear
	}
	return cgpu.FilterModeNearest
}

func toWGPUMipmapFilter(f rhi.Filter) cgpu.MipmapFilterMode {
	if f == rhi.FilterLinear {
		return cgpu.MipmapFilterModeLinear
	}
	return cgpu.MipmapFilterModeNearest
}

func toWGPUAddrMode(a rhi.AddrMode) cgpu.AddressMode {
	switch a {
	case rhi.AddrMirror:
		return cgpu.AddressModeMirrorRepeat
	case rhi.AddrClamp:
		return cgpu.AddressModeClampToEdge
	case rhi.AddrBorder:
		// WebGPU has no native border-color clamp; callers needing a
		// hard border fall back to clamp-to-edge, matching the
		// closest WebGPU equivalent.
		return cgpu.AddressModeClampToEdge
	}
	return cgpu.AddressModeRepeat
}

func toWGPUCompare(c rhi.CompareFunc) cgpu.CompareFunction {
	switch c {
	case rhi.CompareLess:
		return cgpu.CompareFunctionLess
	case rhi.CompareEqual:
		return cgpu.CompareFunctionEqual
	case rhi.CompareLessEqual:
		return cgpu.CompareFunctionLessEqual
	case rhi.CompareGreater:
		return cgpu.CompareFunctionGreater
	case rhi.CompareNotEqual:
		return cgpu.CompareFunctionNotEqual
	case rhi.CompareGreaterEqual:
		return cgpu.CompareFunctionGreaterEqual
	case rhi.CompareAlways:
		return cgpu.CompareFunctionAlways
	}
	return cgpu.CompareFunctionNever
}
