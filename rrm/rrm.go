// Package rrm is the render resource manager: it owns the GPU-side
// pools a frame draws from — persistently-mapped per-frame constant
// buffers, the material parameter buffer, a shader module cache, and
// the fallback white/black/normal textures every material falls back
// to when a texture slot is unset.
//
// Grounded on gviegas-neo3's engine/storage.go (global buffer-backed
// pool guarded by a mutex, id allocation via a bitmap) and
// engine/texture.go's staging-buffer pool, generalized from a single
// global mesh buffer to the several per-frame resource pools
// SPEC_FULL.md §3.2/§6 calls for.
package rrm

import (
	"context"
	"fmt"
	"sync"

	"github.com/kestrel-engine/kestrel/internal/idpool"
	"github.com/kestrel-engine/kestrel/kconfig"
	"github.com/kestrel-engine/kestrel/kerr"
	"github.com/kestrel-engine/kestrel/klog"
	"github.com/kestrel-engine/kestrel/rhi"
)

// Manager owns the resource pools shared by every render pass for the
// lifetime of the render system.
type Manager struct {
	dev rhi.Device
	log klog.Logger

	mu sync.Mutex

	framesInFlight int

	// objectBuf/materialBuf are persistently-mapped CPU-visible
	// buffers, one per frame-in-flight slice, indexed by
	// kconfig.MaxPerFrameObjectSize/MaxPerFrameResourceSize.
	objectBuf   []rhi.Buffer
	materialBuf []rhi.Buffer
	objectIDs   []idpool.Pool[uint32]
	materialIDs []idpool.Pool[uint32]

	shaders map[string]rhi.Shader

	whiteTex  rhi.Texture
	blackTex  rhi.Texture
	normalTex rhi.Texture
	whiteView rhi.TextureView
	blackView rhi.TextureView
	normalView rhi.TextureView
	defaultSampler rhi.Sampler
}

// ObjectStride is the byte size of one per-drawable constant block,
// matching internal/shader's DrawableLayout in the teacher.
const ObjectStride = 256

// MaterialStride is the byte size of one material's packed parameter
// block.
const MaterialStride = 256

// New creates a Manager's per-frame pools and fallback textures.
func New(dev rhi.Device, cfg kconfig.Config, log klog.Logger) (*Manager, error) {
	if log == nil {
		log = klog.Nop()
	}
	m := &Manager{
		dev:            dev,
		log:            log,
		framesInFlight: cfg.FramesInFlight,
		shaders:        make(map[string]rhi.Shader),
	}

	maxObjects := cfg.MaxObjects
	if maxObjects == 0 {
		maxObjects = kconfig.MaxPerFrameObjectSize
	}
	maxMaterials := cfg.MaxMaterials
	if maxMaterials == 0 {
		maxMaterials = kconfig.MaxPerFrameResourceSize
	}

	for i := 0; i < m.framesInFlight; i++ {
		ob, err := dev.NewBuffer(rhi.BufferDesc{
			Size:          int64(maxObjects * ObjectStride),
			Usage:         rhi.UsageUniform | rhi.UsageCopyDst,
			Memory:        rhi.MemoryCPUToGPU,
			PersistentMap: true,
		})
		if err != nil {
			return nil, err
		}
		mb, err := dev.NewBuffer(rhi.BufferDesc{
			Size:          int64(maxMaterials * MaterialStride),
			Usage:         rhi.UsageUniform | rhi.UsageCopyDst,
			Memory:        rhi.MemoryCPUToGPU,
			PersistentMap: true,
		})
		if err != nil {
			return nil, err
		}
		m.objectBuf = append(m.objectBuf, ob)
		m.materialBuf = append(m.materialBuf, mb)

		var op, mp idpool.Pool[uint32]
		op.Grow((maxObjects + 31) / 32)
		mp.Grow((maxMaterials + 31) / 32)
		m.objectIDs = append(m.objectIDs, op)
		m.materialIDs = append(m.materialIDs, mp)
	}

	if err := m.makeFallbackTextures(); err != nil {
		return nil, err
	}

	return m, nil
}

// AcquireObjectSlot reserves one per-drawable constant block for
// frame index f, failing with kerr.ErrInvariant once
// MAX_PER_FRAME_OBJECT_SIZE drawables have already claimed a slot this
// frame (spec §9 open question: overflow fails the frame rather than
// silently wrapping or truncating, since a dropped slot would corrupt
// every subsequent drawable's index).
func (m *Manager) AcquireObjectSlot(f int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.objectIDs[f].Find()
	if !ok {
		return 0, fmt.Errorf("rrm: per-frame object table full: %w", kerr.ErrInvariant)
	}
	m.objectIDs[f].Acquire(idx)
	return idx, nil
}

// ReleaseObjectSlot returns a slot to frame f's pool. rsys releases a
// frame's slots at the end of the Tick that acquired them; frame f's
// pool is next drawn from only after that slot's fence has been
// waited on.
func (m *Manager) ReleaseObjectSlot(f, idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objectIDs[f].Release(idx)
}

// AcquireMaterialSlot reserves one material parameter block for frame
// index f.
func (m *Manager) AcquireMaterialSlot(f int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.materialIDs[f].Find()
	if !ok {
		return 0, fmt.Errorf("rrm: per-frame resource table full: %w", kerr.ErrInvariant)
	}
	m.materialIDs[f].Acquire(idx)
	return idx, nil
}

func (m *Manager) ReleaseMaterialSlot(f, idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.materialIDs[f].Release(idx)
}

// ObjectBuffer returns frame f's persistently-mapped object buffer and
// view into it for the given slot.
func (m *Manager) ObjectBuffer(f int) rhi.Buffer { return m.objectBuf[f] }

// WriteObject writes data (exactly ObjectStride bytes) at slot idx of
// frame f's object buffer.
func (m *Manager) WriteObject(f, idx int, data []byte) {
	dst := m.objectBuf[f].Mapped()[idx*ObjectStride : (idx+1)*ObjectStride]
	copy(dst, data)
}

// MaterialBuffer returns frame f's persistently-mapped material buffer.
func (m *Manager) MaterialBuffer(f int) rhi.Buffer { return m.materialBuf[f] }

// WriteMaterial writes data (exactly MaterialStride bytes) at slot idx
// of frame f's material buffer.
func (m *Manager) WriteMaterial(f, idx int, data []byte) {
	dst := m.materialBuf[f].Mapped()[idx*MaterialStride : (idx+1)*MaterialStride]
	copy(dst, data)
}

// Shader compiles and caches a shader by cache key (typically a file
// path), returning the cached module on subsequent calls — grounded
// on the teacher's internal/shader package caching compiled code by
// name rather than recompiling per pipeline.
func (m *Manager) Shader(key string, desc rhi.ShaderDesc) (rhi.Shader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.shaders[key]; ok {
		return s, nil
	}
	s, err := m.dev.NewShader(desc)
	if err != nil {
		return nil, err
	}
	m.shaders[key] = s
	return s, nil
}

// makeFallbackTextures builds the 1x1 white/black/normal textures every
// unset material texture slot falls back to, uploading each pixel
// through a staging buffer the same way texture.New2D does (the
// staging buffers are kept alive until the upload command context has
// actually executed on the GPU, unlike New2D's immediate defer, since
// here a single context uploads all three before submission).
func (m *Manager) makeFallbackTextures() error {
	pool, err := m.dev.NewCommandPool()
	if err != nil {
		return err
	}
	defer pool.Destroy()
	cc, err := pool.NewContext()
	if err != nil {
		return err
	}
	defer cc.Destroy()
	if err := cc.Begin(); err != nil {
		return err
	}

	var stagings []rhi.Buffer
	defer func() {
		for _, s := range stagings {
			s.Destroy()
		}
	}()

	mk := func(rgba [4]byte) (rhi.Texture, rhi.TextureView, error) {
		tex, err := m.dev.NewTexture(rhi.TextureDesc{
			Dim: rhi.Tex2D, Format: rhi.FormatRGBA8Unorm,
			Extent: rhi.Dim3D{Width: 1, Height: 1, Depth: 1},
			Layers: 1, Levels: 1, Samples: 1,
			Usage: rhi.UsageSampled | rhi.UsageCopyDst,
		})
		if err != nil {
			return nil, nil, err
		}

		staging, err := m.dev.NewBuffer(rhi.BufferDesc{
			Size: 4, Usage: rhi.UsageCopySrc, Memory: rhi.MemoryCPUToGPU,
		})
		if err != nil {
			tex.Destroy()
			return nil, nil, err
		}
		stagings = append(stagings, staging)
		mapped, err := staging.Map()
		if err != nil {
			tex.Destroy()
			return nil, nil, err
		}
		copy(mapped, rgba[:])
		staging.Unmap()

		cc.CopyBufferToTexture(
			tex, rhi.SubresourceRange{Aspect: rhi.AspectColor, MipCount: 1, LayerCount: 1}, rhi.Off3D{},
			staging, 0, rhi.Dim3D{Width: 1, Height: 1, Depth: 1},
		)

		view, err := m.dev.NewTextureView(rhi.TextureViewDesc{
			Texture: tex, Type: rhi.View2D, Format: rhi.FormatRGBA8Unorm,
			Range: rhi.SubresourceRange{Aspect: rhi.AspectColor, MipCount: 1, LayerCount: 1},
		})
		if err != nil {
			return nil, nil, err
		}
		return tex, view, nil
	}

	if m.whiteTex, m.whiteView, err = mk([4]byte{255, 255, 255, 255}); err != nil {
		return err
	}
	if m.blackTex, m.blackView, err = mk([4]byte{0, 0, 0, 255}); err != nil {
		return err
	}
	if m.normalTex, m.normalView, err = mk([4]byte{128, 128, 255, 255}); err != nil {
		return err
	}

	if err := cc.End(); err != nil {
		return err
	}
	fence, err := m.dev.NewFence(false)
	if err != nil {
		return err
	}
	defer fence.Destroy()
	if err := cc.Execute(context.Background(), nil, nil, fence); err != nil {
		return err
	}
	if _, err := fence.Wait(0); err != nil {
		return err
	}

	m.defaultSampler, err = m.dev.NewSampler(rhi.SamplerDesc{
		Min: rhi.FilterLinear, Mag: rhi.FilterLinear, Mipmap: rhi.FilterLinear,
		AddrU: rhi.AddrWrap, AddrV: rhi.AddrWrap, AddrW: rhi.AddrWrap,
		MaxAniso: 1, MaxLOD: 16,
	})
	return err
}

// WhiteView, BlackView, NormalView return the fallback texture views
// (spec §4.3's material texture defaults). passes binds white for
// every unset PBR slot except the normal map (base color, metal/rough,
// occlusion, emissive) and for NPR base color, normal for an unset PBR
// normal map, and black for an unset skybox cube.
func (m *Manager) WhiteView() rhi.TextureView  { return m.whiteView }
func (m *Manager) BlackView() rhi.TextureView  { return m.blackView }
func (m *Manager) NormalView() rhi.TextureView { return m.normalView }

// DefaultSampler returns the manager's shared trilinear-wrap sampler,
// used by every material that does not request a custom sampler.
func (m *Manager) DefaultSampler() rhi.Sampler { return m.defaultSampler }

// Destroy releases every pool and fallback resource the manager owns.
func (m *Manager) Destroy() {
	for _, b := range m.objectBuf {
		b.Destroy()
	}
	for _, b := range m.materialBuf {
		b.Destroy()
	}
	for _, s := range m.shaders {
		s.Destroy()
	}
	m.whiteView.Destroy()
	m.blackView.Destroy()
	m.normalView.Destroy()
	m.whiteTex.Destroy()
	m.blackTex.Destroy()
	m.normalTex.Destroy()
	m.defaultSampler.Destroy()
}
