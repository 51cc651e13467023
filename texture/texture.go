// Package texture manages GPU textures created from decoded image
// data: staged upload through a CPU-visible buffer, mip-chain
// allocation, and typed view creation.
//
// Grounded on gviegas-neo3's engine/texture.go (New2D/NewCube/NewTarget
// factories, a staging-buffer pool for uploads, ComputeLevels for the
// mip count, and per-view layout/usage bookkeeping), with a decode step
// added on the standard library's image, image/draw, image/png and
// image/jpeg packages (the teacher decodes nothing itself —
// engine/texture.go only manages already-decoded pixel data).
package texture

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	"github.com/kestrel-engine/kestrel/rhi"
)

// Texture is a GPU image plus its default full-range view.
type Texture struct {
	Tex  rhi.Texture
	View rhi.TextureView
}

// Destroy releases the texture's GPU resources.
func (t *Texture) Destroy() {
	if t == nil {
		return
	}
	t.View.Destroy()
	t.Tex.Destroy()
}

// ComputeLevels returns the number of mip levels a full chain for a
// width x height image would have.
func ComputeLevels(width, height int) int {
	levels := 1
	for width > 1 || height > 1 {
		width /= 2
		height /= 2
		levels++
	}
	return levels
}

// DecodeRGBA decodes an encoded image (PNG/JPEG) into tightly packed
// RGBA8 pixel data, srgb-correct channel order, ready for
// CopyBufferToTexture.
func DecodeRGBA(data []byte) (pix []byte, width, height int, err error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, err
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba.Pix, b.Dx(), b.Dy(), nil
}

// New2D creates a 2D texture and uploads pix as mip level 0. If genMips
// is true it allocates the full mip chain and records
// cc.GenerateMipmaps, which records nothing on the rhi/wgpu backend, so
// levels past 0 are not filled there.
func New2D(dev rhi.Device, cc rhi.CommandContext, format rhi.Format, width, height int, pix []byte, genMips bool) (*Texture, error) {
	levels := 1
	if genMips {
		levels = ComputeLevels(width, height)
	}

	tex, err := dev.NewTexture(rhi.TextureDesc{
		Dim:     rhi.Tex2D,
		Format:  format,
		Extent:  rhi.Dim3D{Width: width, Height: height, Depth: 1},
		Layers:  1,
		Levels:  levels,
		Samples: 1,
		Usage:   rhi.UsageSampled | rhi.UsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	staging, err := dev.NewBuffer(rhi.BufferDesc{
		Size:   int64(len(pix)),
		Usage:  rhi.UsageCopySrc,
		Memory: rhi.MemoryCPUToGPU,
	})
	if err != nil {
		tex.Destroy()
		return nil, err
	}
	defer staging.Destroy()
	mapped, err := staging.Map()
	if err != nil {
		tex.Destroy()
		return nil, err
	}
	copy(mapped, pix)
	staging.Unmap()

	cc.CopyBufferToTexture(
		tex,
		rhi.SubresourceRange{Aspect: rhi.AspectColor, MipCount: 1, LayerCount: 1},
		rhi.Off3D{},
		staging, 0,
		rhi.Dim3D{Width: width, Height: height, Depth: 1},
	)
	if genMips {
		cc.GenerateMipmaps(tex)
	}

	view, err := dev.NewTextureView(rhi.TextureViewDesc{
		Texture: tex, Type: rhi.View2D, Format: format,
		Range: rhi.SubresourceRange{Aspect: rhi.AspectColor, MipCount: levels, LayerCount: 1},
	})
	if err != nil {
		tex.Destroy()
		return nil, err
	}
	return &Texture{Tex: tex, View: view}, nil
}

// NewCube creates an empty 6-layer cube texture with no initial
// content, suitable as a render target for environment capture or as
// the skybox pass's sampled cubemap once populated by the caller.
func NewCube(dev rhi.Device, format rhi.Format, size int, levels int) (*Texture, error) {
	if levels < 1 {
		levels = 1
	}
	tex, err := dev.NewTexture(rhi.TextureDesc{
		Dim:     rhi.TexCube,
		Format:  format,
		Extent:  rhi.Dim3D{Width: size, Height: size, Depth: 1},
		Layers:  6,
		Levels:  levels,
		Samples: 1,
		Usage:   rhi.UsageSampled | rhi.UsageCopyDst | rhi.UsageColorTarget,
	})
	if err != nil {
		return nil, err
	}
	view, err := dev.NewTextureView(rhi.TextureViewDesc{
		Texture: tex, Type: rhi.ViewCube, Format: format,
		Range: rhi.SubresourceRange{Aspect: rhi.AspectColor, MipCount: levels, LayerCount: 6},
	})
	if err != nil {
		tex.Destroy()
		return nil, err
	}
	return &Texture{Tex: tex, View: view}, nil
}

// NewTarget creates a texture suited to use as a render or depth
// target, with no initial content.
func NewTarget(dev rhi.Device, format rhi.Format, width, height, samples int) (*Texture, error) {
	usage := rhi.UsageSampled
	if format.IsDepth() {
		usage |= rhi.UsageDepthTarget
	} else {
		usage |= rhi.UsageColorTarget
	}
	if samples < 1 {
		samples = 1
	}
	tex, err := dev.NewTexture(rhi.TextureDesc{
		Dim:     rhi.Tex2D,
		Format:  format,
		Extent:  rhi.Dim3D{Width: width, Height: height, Depth: 1},
		Layers:  1,
		Levels:  1,
		Samples: samples,
		Usage:   usage,
	})
	if err != nil {
		return nil, err
	}
	aspect := rhi.AspectColor
	if format.IsDepth() {
		aspect = rhi.AspectDepth
		if format.HasStencil() {
			aspect = rhi.AspectDepthStencil
		}
	}
	view, err := dev.NewTextureView(rhi.TextureViewDesc{
		Texture: tex, Type: rhi.View2D, Format: format,
		Range: rhi.SubresourceRange{Aspect: aspect, MipCount: 1, LayerCount: 1},
	})
	if err != nil {
		tex.Destroy()
		return nil, err
	}
	return &Texture{Tex: tex, View: view}, nil
}
