package rhi

// Fence is a CPU-GPU synchronization primitive: the CPU can wait on it
// to know when submitted GPU work has completed.
type Fence interface {
	Destroyer

	// Wait blocks until the fence is signaled or timeoutNS nanoseconds
	// elapse (0 waits indefinitely). Returns false on timeout.
	Wait(timeoutNS int64) (bool, error)

	// Reset returns the fence to the unsignaled state.
	Reset() error

	// Signaled reports whether the fence is currently signaled, without
	// blocking.
	Signaled() (bool, error)
}

// Semaphore is a GPU-GPU synchronization primitive used to order
// submissions within or across queues (e.g. acquiring a swapchain
// image before a pass that renders into it, per spec §4.1/§4.6).
type Semaphore interface {
	Destroyer
}
