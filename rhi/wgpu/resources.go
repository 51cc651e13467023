package wgpu

import (
	"errors"

	cgpu "github.com/cogentcore/webgpu/wgpu"

	"github.com/kestrel-engine/kestrel/rhi"
)

type buffer struct {
	buf      *cgpu.Buffer
	size     int64
	mapped   []byte
	persist  bool
}

func (b *buffer) Destroy() {
	if b == nil || b.buf == nil {
		return
	}
	b.buf.Release()
	b.buf = nil
}

func (b *buffer) Size() int64 { return b.size }

func (b *buffer) Mapped() []byte { return b.mapped }

func (b *buffer) Map() ([]byte, error) {
	if b.persist {
		return b.mapped, nil
	}
	if err := b.buf.MapAsync(cgpu.MapModeWrite, 0, uint64(b.size), func(cgpu.BufferMapAsyncStatus) {}); err != nil {
		return nil, errors.Join(rhi.ErrResourceCreation, err)
	}
	data := b.buf.GetMappedRange(0, uint(b.size))
	return data, nil
}

func (b *buffer) Unmap() {
	if !b.persist {
		b.buf.Unmap()
	}
}

func (d *device) NewBuffer(desc rhi.BufferDesc) (rhi.Buffer, error) {
	usage := toWGPUUsage(desc.Usage)
	mapped := desc.Memory != rhi.MemoryGPUOnly
	if mapped {
		usage |= cgpu.BufferUsageCopyDst
	}

	buf, err := d.device.CreateBufferInit(&cgpu.BufferInitDescriptor{
		Label:    "kestrel buffer",
		Contents: make([]byte, desc.Size),
		Usage:    usage,
	})
	if err != nil {
		d.log.Error("buffer creation failed", "error", err)
		return nil, errors.Join(rhi.ErrResourceCreation, err)
	}

	b := &buffer{buf: buf, size: desc.Size, persist: desc.PersistentMap}
	if desc.PersistentMap && desc.Memory == rhi.MemoryCPUToGPU {
		if mr, err := buf.MapAsync(cgpu.MapModeWrite, 0, uint64(desc.Size), nil); err == nil {
			_ = mr
			b.mapped = buf.GetMappedRange(0, uint(desc.Size))
		}
	}
	return b, nil
}

type texture struct {
	tex     *cgpu.Texture
	format  rhi.Format
	extent  rhi.Dim3D
	layers  int
	levels  int
	samples int
}

func (t *texture) Destroy() {
	if t == nil || t.tex == nil {
		return
	}
	t.tex.Release()
	t.tex = nil
}

func (t *texture) Format() rhi.Format { return t.format }
func (t *texture) Extent() rhi.Dim3D  { return t.extent }
func (t *texture) Layers() int        { return t.layers }
func (t *texture) Levels() int        { return t.levels }
func (t *texture) Samples() int       { return t.samples }

func (d *device) NewTexture(desc rhi.TextureDesc) (rhi.Texture, error) {
	dim := cgpu.TextureDimension2D
	if desc.Dim == rhi.Tex3D {
		dim = cgpu.TextureDimension3D
	}
	layers := desc.Layers
	if layers < 1 {
		layers = 1
	}
	levels := desc.Levels
	if levels < 1 {
		levels = 1
	}
	samples := desc.Samples
	if samples < 1 {
		samples = 1
	}

	tex, err := d.device.CreateTexture(&cgpu.TextureDescriptor{
		Label: "kestrel texture",
		Size: cgpu.Extent3D{
			Width:              uint32(desc.Extent.Width),
			Height:             uint32(desc.Extent.Height),
			DepthOrArrayLayers: uint32(layers * max(desc.Extent.Depth, 1)),
		},
		MipLevelCount: uint32(levels),
		SampleCount:   uint32(samples),
		Dimension:     dim,
		Format:        toWGPUFormat(desc.Format),
		Usage:         toWGPUTextureUsage(desc.Usage),
	})
	if err != nil {
		d.log.Error("texture creation failed", "error", err)
		return nil, errors.Join(rhi.ErrResourceCreation, err)
	}

	return &texture{
		tex: tex, format: desc.Format, extent: desc.Extent,
		layers: layers, levels: levels, samples: samples,
	}, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

type textureView struct {
	view *cgpu.TextureView
	tex  rhi.Texture
}

func (v *textureView) Destroy() {
	if v == nil || v.view == nil {
		return
	}
	v.view.Release()
	v.view = nil
}

func (v *textureView) Texture() rhi.Texture { return v.tex }

func (d *device) NewTextureView(desc rhi.TextureViewDesc) (rhi.TextureView, error) {
	t, ok := desc.Texture.(*texture)
	if !ok {
		return nil, errors.Join(rhi.ErrResourceCreation, errors.New("wgpu: foreign texture handle"))
	}

	aspect := cgpu.TextureAspectAll
	switch {
	case desc.Range.Aspect == rhi.AspectDepth:
		aspect = cgpu.TextureAspectDepthOnly
	case desc.Range.Aspect == rhi.AspectStencil:
		aspect = cgpu.TextureAspectStencilOnly
	}

	view, err := t.tex.CreateView(&cgpu.TextureViewDescriptor{
		Format:          toWGPUFormat(desc.Format),
		BaseMipLevel:    uint32(desc.Range.BaseMip),
		MipLevelCount:   uint32(max(desc.Range.MipCount, 1)),
		BaseArrayLayer:  uint32(desc.Range.BaseLayer),
		ArrayLayerCount: uint32(max(desc.Range.LayerCount, 1)),
		Aspect:          aspect,
	})
	if err != nil {
		return nil, errors.Join(rhi.ErrResourceCreation, err)
	}
	return &textureView{view: view, tex: desc.Texture}, nil
}

type sampler struct {
	s *cgpu.Sampler
}

func (s *sampler) Destroy() {
	if s == nil || s.s == nil {
		return
	}
	s.s.Release()
	s.s = nil
}

func (d *device) NewSampler(desc rhi.SamplerDesc) (rhi.Sampler, error) {
	sd := &cgpu.SamplerDescriptor{
		AddressModeU:  toWGPUAddrMode(desc.AddrU),
		AddressModeV:  toWGPUAddrMode(desc.AddrV),
		AddressModeW:  toWGPUAddrMode(desc.AddrW),
		MagFilter:     toWGPUFilter(desc.Mag),
		MinFilter:     toWGPUFilter(desc.Min),
		MipmapFilter:  toWGPUMipmapFilter(desc.Mipmap),
		LodMinClamp:   desc.MinLOD,
		LodMaxClamp:   desc.MaxLOD,
		MaxAnisotropy: uint16(desc.MaxAniso),
	}
	if desc.CompareEnable {
		sd.Compare = toWGPUCompare(desc.Compare)
	}
	s, err := d.device.CreateSampler(sd)
	if err != nil {
		return nil, errors.Join(rhi.ErrResourceCreation, err)
	}
	return &sampler{s: s}, nil
}
