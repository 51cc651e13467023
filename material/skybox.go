package material

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kestrel-engine/kestrel/rhi"
)

// defaultCubeResolution is the per-face edge length EnsureCubeTextureReady
// converts into when a Skybox doesn't request a specific one, matching
// skybox_material.h's cube_texture_resolution_ default.
const defaultCubeResolution = 512

// Skybox is a cubemap-sampled background material. It can be given a
// cubemap directly via Cube, or an equirectangular Panorama that
// EnsureCubeTextureReady converts to a cube texture on demand (spec
// §3.3/§4.3), caching the result until a new panorama is set.
//
// Grounded on skybox_material.h/.cpp's SkyboxMaterial: panorama_texture_,
// cube_texture_ (cached), cube_texture_dirty_ (true until converted),
// and cube_texture_resolution_.
type Skybox struct {
	Cube      TexRef
	Panorama  TexRef
	Tint      mgl32.Vec3
	Intensity float32

	// CubeResolution is the per-face edge length EnsureCubeTextureReady
	// converts Panorama into; 0 uses defaultCubeResolution.
	CubeResolution int

	cubeTex  rhi.Texture
	cubeView rhi.TextureView
	dirty    bool
}

func (s *Skybox) Kind() Kind { return KindSkybox }

// Textures returns the converted cube view when a panorama has been
// converted, falling back to the directly-assigned Cube otherwise.
func (s *Skybox) Textures() []TexRef {
	if s.cubeView != nil {
		return []TexRef{{View: s.cubeView, Sampler: s.Cube.Sampler, UVSet: s.Cube.UVSet}}
	}
	return []TexRef{s.Cube}
}

func (s *Skybox) Validate() error {
	if s.Cube.View == nil && s.Panorama.View == nil {
		return newErr("skybox requires a cubemap or panorama view")
	}
	if s.Intensity < 0 {
		return newErr("negative intensity")
	}
	return nil
}

func (s *Skybox) Pack() [ParamBlockSize]byte {
	var b [ParamBlockSize]byte
	put3f(b[0:12], s.Tint)
	putf(b[12:16], s.Intensity)
	putu32(b[16:20], uint32(KindSkybox))
	return b
}

// SetPanorama assigns the equirectangular source texture, marking the
// cube texture cache dirty only if the view actually changed (mirrors
// skybox_material.cpp's set_panorama_texture, which skips invalidation
// when the pointer is unchanged).
func (s *Skybox) SetPanorama(ref TexRef) {
	if ref.View == s.Panorama.View {
		return
	}
	s.Panorama = ref
	s.dirty = true
}

// MarkCubeTextureDirty forces the next EnsureCubeTextureReady call to
// reconvert the panorama even if the view hasn't changed.
func (s *Skybox) MarkCubeTextureDirty() { s.dirty = true }

// IsCubeTextureDirty reports whether the cached cube texture needs
// reconversion.
func (s *Skybox) IsCubeTextureDirty() bool { return s.dirty }

// EnsureCubeTextureReady converts Panorama to a cube texture via conv
// if dirty or not yet converted, returning true once a valid cube view
// is bound for sampling. A Skybox with no Panorama set is always
// ready, since it draws the directly-assigned Cube view instead.
//
// Mirrors skybox_component.cpp's per-tick ensure_cube_texture_ready
// call, whose false return skips the draw for that frame.
func (s *Skybox) EnsureCubeTextureReady(cc rhi.CommandContext, conv *CubeConverter) bool {
	if s.Panorama.View == nil {
		return true
	}
	if !s.dirty && s.cubeView != nil {
		return true
	}

	size := s.CubeResolution
	if size == 0 {
		size = defaultCubeResolution
	}
	tex, view, err := conv.Convert(cc, s.Panorama, size)
	if err != nil {
		return false
	}
	s.releaseCubeTexture()
	s.cubeTex, s.cubeView = tex, view
	s.dirty = false
	return true
}

func (s *Skybox) releaseCubeTexture() {
	if s.cubeView != nil {
		s.cubeView.Destroy()
		s.cubeView = nil
	}
	if s.cubeTex != nil {
		s.cubeTex.Destroy()
		s.cubeTex = nil
	}
}

// Destroy releases the cached converted cube texture, if any. Owners
// of a Skybox with a Panorama set must call this before dropping it.
func (s *Skybox) Destroy() { s.releaseCubeTexture() }

// CubeConverter renders a six-face cube texture from an equirectangular
// panorama: one full-screen-triangle render pass per face, each
// binding the panorama as a shader resource and that face's inverse
// view-projection matrix so the fragment shader can reconstruct a
// world-space sample direction per pixel.
//
// Grounded on skybox_material.h's forward-declared PanoramaConverter;
// its GPU implementation isn't present in the original sources (only
// the interface shape — set/ensure/dirty — is), so the render-pass
// structure here follows this module's own pass conventions (rdg-free,
// a plain CommandContext loop) rather than a ported one.
type CubeConverter struct {
	dev      rhi.Device
	pipeline rhi.GraphicsPipeline
	sampler  rhi.Sampler
}

// NewCubeConverter builds a converter that renders each face with
// pipeline, falling back to sampler when a panorama TexRef carries no
// sampler of its own.
func NewCubeConverter(dev rhi.Device, pipeline rhi.GraphicsPipeline, sampler rhi.Sampler) (*CubeConverter, error) {
	return &CubeConverter{dev: dev, pipeline: pipeline, sampler: sampler}, nil
}

// Convert renders panorama into a freshly created size x size cube
// texture and returns it along with a full-cube view for sampling.
// The caller owns the returned texture/view and must destroy them.
func (c *CubeConverter) Convert(cc rhi.CommandContext, panorama TexRef, size int) (rhi.Texture, rhi.TextureView, error) {
	tex, err := c.dev.NewTexture(rhi.TextureDesc{
		Dim: rhi.TexCube, Format: rhi.FormatRGBA16Float,
		Extent: rhi.Dim3D{Width: size, Height: size, Depth: 1},
		Layers: 6, Levels: 1, Samples: 1,
		Usage: rhi.UsageSampled | rhi.UsageColorTarget,
	})
	if err != nil {
		return nil, nil, err
	}

	cubeView, err := c.dev.NewTextureView(rhi.TextureViewDesc{
		Texture: tex, Type: rhi.ViewCube, Format: rhi.FormatRGBA16Float,
		Range: rhi.SubresourceRange{Aspect: rhi.AspectColor, MipCount: 1, LayerCount: 6},
	})
	if err != nil {
		tex.Destroy()
		return nil, nil, err
	}

	// One 256-byte-aligned slice per face, so every face's draw reads
	// its own matrix when the command buffer runs.
	vpBuf, err := c.dev.NewBuffer(rhi.BufferDesc{
		Size: 6 * 256, Usage: rhi.UsageUniform | rhi.UsageCopyDst,
		Memory: rhi.MemoryCPUToGPU, PersistentMap: true,
	})
	if err != nil {
		cubeView.Destroy()
		tex.Destroy()
		return nil, nil, err
	}
	defer vpBuf.Destroy()

	sampler := panorama.Sampler
	if sampler == nil {
		sampler = c.sampler
	}

	for face := 0; face < 6; face++ {
		if err := c.renderFace(cc, tex, vpBuf, panorama.View, sampler, face, size); err != nil {
			cubeView.Destroy()
			tex.Destroy()
			return nil, nil, err
		}
	}

	return tex, cubeView, nil
}

func (c *CubeConverter) renderFace(cc rhi.CommandContext, tex rhi.Texture, vpBuf rhi.Buffer, panorama rhi.TextureView, sampler rhi.Sampler, face, size int) error {
	faceView, err := c.dev.NewTextureView(rhi.TextureViewDesc{
		Texture: tex, Type: rhi.View2D, Format: rhi.FormatRGBA16Float,
		Range: rhi.SubresourceRange{Aspect: rhi.AspectColor, BaseLayer: face, LayerCount: 1, MipCount: 1},
	})
	if err != nil {
		return err
	}
	defer faceView.Destroy()

	ivp := cubeFaceViewProj(face).Inv()
	copy(vpBuf.Mapped()[face*256:], mat4Bytes(ivp))

	rp, err := c.dev.NewRenderPass(rhi.RenderPassDesc{
		Color: []rhi.ColorAttachment{{View: faceView, Load: rhi.LoadClear, Store: rhi.StoreStore}},
	})
	if err != nil {
		return err
	}
	defer rp.Destroy()

	cc.BeginRenderPass(rp)
	cc.BindPipeline(c.pipeline)
	cc.SetViewport(rhi.Viewport{Width: float32(size), Height: float32(size), MaxDepth: 1})
	cc.SetScissor(rhi.Scissor{Width: size, Height: size})
	cc.BindConstantBuffer(0, vpBuf, int64(face*256))
	cc.BindShaderResource(1, panorama)
	cc.BindSampler(2, sampler)
	cc.Draw(3, 1, 0, 0) // full-screen triangle
	cc.EndRenderPass()
	return nil
}

// cubeFaceViewProj returns the view-projection matrix for rendering
// into cube face index face, in the +X,-X,+Y,-Y,+Z,-Z order WebGPU and
// D3D both use for cube array layers.
func cubeFaceViewProj(face int) mgl32.Mat4 {
	var dir, up mgl32.Vec3
	switch face {
	case 0:
		dir, up = mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}
	case 1:
		dir, up = mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}
	case 2:
		dir, up = mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}
	case 3:
		dir, up = mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}
	case 4:
		dir, up = mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}
	default:
		dir, up = mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}
	}
	view := mgl32.LookAtV(mgl32.Vec3{}, dir, up)
	proj := mgl32.Perspective(float32(math.Pi/2), 1, 0.1, 10)
	return proj.Mul4(view)
}

func mat4Bytes(m mgl32.Mat4) []byte {
	var b [64]byte
	for i := 0; i < 16; i++ {
		putf(b[i*4:i*4+4], m[i])
	}
	return b[:]
}
