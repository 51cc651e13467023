package wgpu

import (
	"errors"

	cgpu "github.com/cogentcore/webgpu/wgpu"

	"github.com/kestrel-engine/kestrel/rhi"
)

type swapchain struct {
	d       *device
	surface *cgpu.Surface
	format  rhi.Format
	width   int
	height  int

	cur     *cgpu.SurfaceTexture
	curView *textureView
}

func (s *swapchain) Destroy() {
	if s.surface != nil {
		s.surface.Unconfigure()
	}
}

func (s *swapchain) Views() []rhi.TextureView {
	if s.curView == nil {
		return nil
	}
	return []rhi.TextureView{s.curView}
}

func (s *swapchain) configure() error {
	caps := s.surface.GetCapabilities(s.d.adapter)
	format := caps.Formats[0]
	s.format = fromWGPUFormat(format)

	s.surface.Configure(s.d.adapter, s.d.device, &cgpu.SurfaceConfiguration{
		Usage:       cgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(s.width),
		Height:      uint32(s.height),
		PresentMode: cgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	})
	return nil
}

// Next acquires the swapchain's current surface texture. WebGPU's
// surface model has exactly one implicit backbuffer rather than an
// explicit n-image pool with acquire semaphores, so index is always 0
// and available is signaled immediately. rsys still passes it to
// Execute as a wait semaphore, which this backend's Execute ignores.
func (s *swapchain) Next(available rhi.Semaphore) (int, error) {
	st, err := s.surface.GetCurrentTexture()
	if err != nil {
		return 0, errors.Join(rhi.ErrSwapchain, err)
	}
	if st.Status != cgpu.SurfaceGetCurrentTextureStatusSuccess {
		return 0, rhi.ErrSwapchain
	}
	view, err := st.Texture.CreateView(nil)
	if err != nil {
		return 0, errors.Join(rhi.ErrResourceCreation, err)
	}
	s.cur = st
	s.curView = &textureView{view: view}
	if sem, ok := available.(*semaphore); ok {
		sem.signal()
	}
	return 0, nil
}

func (s *swapchain) Present(index int, wait []rhi.Semaphore) error {
	if s.cur == nil {
		return rhi.ErrNoBackbuffer
	}
	s.surface.Present()
	s.curView.Destroy()
	s.curView = nil
	s.cur = nil
	return nil
}

func (s *swapchain) Recreate() error {
	return s.configure()
}

func (s *swapchain) Format() rhi.Format { return s.format }

// NewSwapchain implements rhi.Presenter. win must expose a native
// handle pair compatible with cgpu.Instance.CreateSurface; wsi.Window
// satisfies rhi.Window for this purpose.
func (d *device) NewSwapchain(win rhi.Window, imageCount int) (rhi.Swapchain, error) {
	if d.surface == nil {
		return nil, rhi.ErrCannotPresent
	}
	w, h := win.Extent()
	sc := &swapchain{d: d, surface: d.surface, width: w, height: h}
	if err := sc.configure(); err != nil {
		return nil, err
	}
	return sc, nil
}

var _ rhi.Presenter = (*device)(nil)
