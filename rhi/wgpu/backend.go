// Package wgpu is the concrete rhi.Backend for this module, implemented
// on top of github.com/cogentcore/webgpu. It is the only backend
// rhi.Open ever finds unless a caller registers another.
//
// Grounded on Carmen-Shannon-oxy-go's wgpuRendererBackendImpl: instance
// -> adapter -> device -> queue bring-up, surface configuration, and
// the render-pass-descriptor-with-cached-attachments pattern, adapted
// to the rhi package's Destroyer/CommandContext vocabulary instead of
// that engine's bind-group-provider abstraction.
package wgpu

import (
	"errors"
	"runtime"

	cgpu "github.com/cogentcore/webgpu/wgpu"

	"github.com/kestrel-engine/kestrel/kerr"
	"github.com/kestrel-engine/kestrel/klog"
	"github.com/kestrel-engine/kestrel/rhi"
)

func init() {
	rhi.Register(backend{})
}

type backend struct{}

func (backend) Name() string { return "webgpu" }

func (backend) Open() (rhi.Device, error) {
	return Open(nil)
}

// Options configures backend bring-up. A nil Options uses defaults
// (no surface, software fallback disabled).
type Options struct {
	// Surface, when non-nil, is used to pick an adapter compatible
	// with on-screen presentation.
	Surface *cgpu.Surface

	ForceFallbackAdapter bool

	Logger klog.Logger
}

// Open brings up an instance, adapter, and device, returning a Device
// ready to create resources and record commands.
func Open(opts *Options) (rhi.Device, error) {
	if opts == nil {
		opts = &Options{}
	}
	log := opts.Logger
	if log == nil {
		log = klog.Nop()
	}

	// CreateInstance/runtime.LockOSThread per the teacher's bring-up:
	// WebGPU callbacks must run on the thread that created the
	// instance on some platforms.
	runtime.LockOSThread()
	inst := cgpu.CreateInstance(nil)
	if inst == nil {
		return nil, errors.Join(rhi.ErrResourceCreation, errors.New("wgpu: failed to create instance"))
	}

	adapter, err := inst.RequestAdapter(&cgpu.RequestAdapterOptions{
		ForceFallbackAdapter: opts.ForceFallbackAdapter,
		CompatibleSurface:    opts.Surface,
	})
	if err != nil {
		log.Error("wgpu adapter request failed", "error", err)
		return nil, errors.Join(kerr.ErrDeviceLost, err)
	}

	limits := cgpu.DefaultLimits()
	limits.MaxBindGroups = 8

	dev, err := adapter.RequestDevice(&cgpu.DeviceDescriptor{
		Label: "kestrel device",
		RequiredLimits: &cgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		log.Error("wgpu device request failed", "error", err)
		return nil, errors.Join(kerr.ErrDeviceLost, err)
	}

	d := &device{
		log:      log,
		instance: inst,
		adapter:  adapter,
		device:   dev,
		queue:    dev.GetQueue(),
		surface:  opts.Surface,
	}
	return d, nil
}
