package wgpu

import (
	"errors"

	cgpu "github.com/cogentcore/webgpu/wgpu"

	"github.com/kestrel-engine/kestrel/klog"
	"github.com/kestrel-engine/kestrel/rhi"
)

type device struct {
	log      klog.Logger
	instance *cgpu.Instance
	adapter  *cgpu.Adapter
	device   *cgpu.Device
	queue    *cgpu.Queue
	surface  *cgpu.Surface
}

func (d *device) Destroy() {
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

func (d *device) Backend() string { return "webgpu" }

func (d *device) Submit(ctxs []rhi.CommandContext, wait []rhi.Semaphore, signal []rhi.Semaphore, fence rhi.Fence) error {
	for _, c := range ctxs {
		cc, ok := c.(*commandContext)
		if !ok {
			return errors.Join(rhi.ErrResourceCreation, errors.New("wgpu: foreign command context"))
		}
		if err := cc.Execute(nil, wait, signal, fence); err != nil {
			return err
		}
	}
	return nil
}

func (d *device) Limits() rhi.Limits {
	l := d.adapter.GetLimits()
	return rhi.Limits{
		MaxTexture2D:           int(l.Limits.MaxTextureDimension2D),
		MaxTextureCube:         int(l.Limits.MaxTextureDimension2D),
		MaxTexture3D:           int(l.Limits.MaxTextureDimension3D),
		MaxLayers:              int(l.Limits.MaxTextureArrayLayers),
		MaxColorTargets:        8,
		MaxFramebufSize:        [2]int{int(l.Limits.MaxTextureDimension2D), int(l.Limits.MaxTextureDimension2D)},
		MaxViewports:           1,
		MaxVertexInputs:        int(l.Limits.MaxVertexAttributes),
		MaxDescriptorsPerStage: int(l.Limits.MaxBindingsPerBindGroup),
		MaxUniformBufferRange:  int64(l.Limits.MaxUniformBufferBindingSize),
		MaxStorageBufferRange:  int64(l.Limits.MaxStorageBufferBindingSize),
	}
}

var _ rhi.Device = (*device)(nil)
