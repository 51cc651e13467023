// Package kerr defines the error taxonomy shared by the render core.
//
// Errors are sentinel values wrapped with context via fmt.Errorf("%w: ...")
// so that callers can test the category with errors.Is while the message
// text stays specific.
package kerr

import "errors"

// Categories, in the order they appear in the error-handling design.
var (
	// ErrDeviceLost means the GPU device was removed or reset.
	// Unrecoverable; the caller should log and terminate.
	ErrDeviceLost = errors.New("device lost")

	// ErrResourceCreation means an RHI factory call failed
	// (bad descriptor, out of memory, incompatible usage flags).
	ErrResourceCreation = errors.New("resource creation failed")

	// ErrShaderCompile means shader compilation or module creation
	// failed. Fatal for the affected pass only.
	ErrShaderCompile = errors.New("shader compile failed")

	// ErrAssetNotFound means the asset system could not resolve
	// a UID or virtual path.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrDeserialization means an asset's on-disk representation
	// could not be parsed.
	ErrDeserialization = errors.New("deserialization error")

	// ErrInvariant means a programming invariant was violated:
	// illegal barrier, pass cycle, missing attachment. Logged as
	// an error; the frame may skip the offending pass.
	ErrInvariant = errors.New("invariant violation")
)

// Is reports whether err ultimately wraps target, using errors.Is.
// Provided so call sites in this module can avoid importing errors
// just for this one check.
func Is(err, target error) bool { return errors.Is(err, target) }
