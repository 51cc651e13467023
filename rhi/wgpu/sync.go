package wgpu

import (
	"sync"

	"github.com/kestrel-engine/kestrel/rhi"
)

// fenceImpl simulates a CPU-waitable fence on top of WebGPU's queue,
// which has no native fence object: Execute calls signal() once the
// command buffer has been submitted, and Wait calls Device.Poll(true,
// ...), which blocks until the GPU has actually finished all submitted
// work, matching the Fence.Wait contract.
type fenceImpl struct {
	d        *device
	mu       sync.Mutex
	signaled bool
}

func (f *fenceImpl) Destroy() {}

func (f *fenceImpl) signal() {
	f.mu.Lock()
	f.signaled = true
	f.mu.Unlock()
}

func (f *fenceImpl) Wait(timeoutNS int64) (bool, error) {
	// Poll(true, ...) blocks the calling thread until all submitted
	// work completes; WebGPU has no per-submission wait handle, so a
	// fence here is really "has everything up to now finished".
	f.d.device.Poll(true, nil)
	f.mu.Lock()
	f.signaled = true
	f.mu.Unlock()
	return true, nil
}

func (f *fenceImpl) Reset() error {
	f.mu.Lock()
	f.signaled = false
	f.mu.Unlock()
	return nil
}

func (f *fenceImpl) Signaled() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signaled, nil
}

func (d *device) NewFence(signaled bool) (rhi.Fence, error) {
	return &fenceImpl{d: d, signaled: signaled}, nil
}

// semaphore is a GPU-GPU ordering hint. WebGPU's single-queue
// submission model orders command buffers implicitly by submission
// order, so this tracks signaled state only for call sites (like the
// swapchain acquire/present pair) that need to reason about it.
type semaphore struct {
	mu       sync.Mutex
	signaled bool
}

func (s *semaphore) Destroy() {}

func (s *semaphore) signal() {
	s.mu.Lock()
	s.signaled = true
	s.mu.Unlock()
}

func (d *device) NewSemaphore() (rhi.Semaphore, error) {
	return &semaphore{}, nil
}
