package rhi

import "errors"

// ErrCannotPresent means the backend or device does not support
// presentation (e.g. an offscreen/headless Device).
var ErrCannotPresent = errors.New("rhi: presentation not supported")

// ErrWindow means a window misconfiguration is preventing a
// presentation operation; the backend may require a visible window to
// create or recreate a swapchain.
var ErrWindow = errors.New("rhi: window-related error")

// ErrCompositor means the platform compositor rejected a presentation
// configuration (e.g. an unsupported alpha or present mode).
var ErrCompositor = errors.New("rhi: compositor-related error")

// ErrSwapchain means window or compositor changes made the swapchain
// unusable; the caller should call Swapchain.Recreate.
var ErrSwapchain = errors.New("rhi: swapchain-related error")

// ErrNoBackbuffer means every backbuffer is currently acquired;
// backbuffers are released by Swapchain.Present.
var ErrNoBackbuffer = errors.New("rhi: all backbuffers in use")

// Window is the minimal surface-providing contract a Presenter needs;
// satisfied by wsi.Window.
type Window interface {
	NativeHandle() (display, window uintptr)
	Extent() (width, height int)
}

// Presenter is implemented by a Device that can create swapchains for
// on-screen presentation.
type Presenter interface {
	// NewSwapchain creates a swapchain of imageCount images for win.
	// Only one swapchain may be associated with a given Window at a
	// time.
	NewSwapchain(win Window, imageCount int) (Swapchain, error)
}

// Swapchain is an n-buffered chain of presentable images. Presentation
// takes effect only once the command context that writes the acquired
// image is submitted, mirroring spec §4.6's frame loop.
type Swapchain interface {
	Destroyer

	// Views returns the swapchain's image views; stable until Destroy
	// or Recreate.
	Views() []TextureView

	// Next acquires the next writable image index, signaling
	// available when the image is ready to be written.
	Next(available Semaphore) (int, error)

	// Present submits the image at index for presentation once every
	// semaphore in wait is signaled.
	Present(index int, wait []Semaphore) error

	// Recreate rebuilds the swapchain in place, e.g. in response to
	// ErrSwapchain or a window resize.
	Recreate() error

	// Format returns the format of the swapchain's image views.
	Format() Format
}
