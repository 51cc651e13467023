// Package rhi is the Render Hardware Interface: a backend-agnostic,
// handle-based abstraction over a graphics API, with explicit resource
// lifetimes, transition semantics, and command recording.
//
// Every GPU object is a reference-counted handle with a typed interface
// and a Destroy contract; handles are reference-only, the backend owns
// the underlying allocation. The package defines no concrete backend:
// see rhi/wgpu for the one backend this module ships.
//
// Shaped after gviegas-neo3's driver package (the same Destroyer /
// CmdBuffer / creation-function shape), generalized to the vocabulary
// spec §3.1/§4.1 uses (a single ResourceState enum for barriers rather
// than the teacher's separate Sync/Access/Layout triple).
package rhi

import (
	"errors"
	"strings"
)

// ErrNoBackend means Open found no registered backend matching the
// requested name.
var ErrNoBackend = errors.New("rhi: no backend found")

// Destroyer is implemented by every handle that owns GPU-side state not
// managed by the Go garbage collector.
type Destroyer interface {
	// Destroy releases the underlying resource. It is an error to use
	// the handle afterward. Destroy is idempotent for nil handles.
	Destroy()
}

// Backend is a registered graphics API implementation (there is
// exactly one shipped with this module: rhi/wgpu).
type Backend interface {
	// Name identifies the backend, e.g. "webgpu".
	Name() string

	// Open opens a Device for this backend.
	Open() (Device, error)
}

var backends []Backend

// Register adds b to the set of backends considered by Open.
// Called from backend package init functions (rhi/wgpu's init, for
// instance), mirroring the teacher's driver.Register pattern.
func Register(b Backend) { backends = append(backends, b) }

// Backends returns the currently registered backends.
func Backends() []Backend { return backends }

// Open opens the first registered backend whose name contains the
// given substring (case-sensitive); an empty name matches any backend.
func Open(name string) (Device, error) {
	for _, b := range backends {
		if name == "" || strings.Contains(b.Name(), name) {
			return b.Open()
		}
	}
	return nil, ErrNoBackend
}
