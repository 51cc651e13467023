// Package material implements the polymorphic PBR/NPR/Skybox material
// model: fixed-size parameter and texture-reference arrays packed into
// one GPU-struct-compatible byte block per material, so every material
// kind shares the same constant-buffer layout regardless of which
// fields it actually uses.
//
// Grounded on gviegas-neo3's engine/material.go (TexRef/BaseColor/
// MetalRough/NormalMap/OcclusionMap/EmissiveMap/PBR/Unlit with a
// shaderLayout() method per variant), generalized to the three
// variants SPEC_FULL.md calls for (PBR, NPR/toon, Skybox) and to a
// plain byte-packing Layout() instead of the teacher's
// internal/shader.MaterialLayout helper type (kept private to this
// package since no other package needs its internal field offsets).
package material

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kestrel-engine/kestrel/kerr"
	"github.com/kestrel-engine/kestrel/rhi"
)

const matPrefix = "material: "

func newErr(reason string) error {
	return errors.Join(kerr.ErrInvariant, errors.New(matPrefix+reason))
}

// UV set selectors, matching TexCoord0/TexCoord1 glTF semantics.
const (
	UVSet0 = iota
	UVSet1
)

// TexRef identifies a texture view, sampler, and UV set used by one
// material slot. A zero-value TexRef (View == nil) means "use the
// render resource manager's fallback texture for this slot".
type TexRef struct {
	View    rhi.TextureView
	Sampler rhi.Sampler
	UVSet   int
}

// AlphaMode controls how a material's alpha channel is interpreted.
type AlphaMode int

// Alpha modes.
const (
	AlphaOpaque AlphaMode = iota
	AlphaBlend
	AlphaMask
)

// Kind identifies which material model a Material packs, matching the
// shader variant selector passed to the fragment shader.
type Kind int

// Material kinds.
const (
	KindPBR Kind = iota
	KindNPR
	KindSkybox
)

// Material is the common interface every material kind implements:
// producing a Kind selector, the texture references the owning pass
// must bind, and a fixed-size packed parameter block for the material
// constant buffer.
type Material interface {
	Kind() Kind
	Textures() []TexRef
	Pack() [ParamBlockSize]byte
	Validate() error
}

// ParamBlockSize is the fixed byte size of every material's packed
// parameter block, matching rrm.MaterialStride.
const ParamBlockSize = 256

// PBR is the default, physically based material model.
type PBR struct {
	BaseColor   TexRef
	BaseFactor  mgl32.Vec4
	MetalRough  TexRef
	Metalness   float32
	Roughness   float32
	Normal      TexRef
	NormalScale float32
	Occlusion   TexRef
	OccStrength float32
	Emissive    TexRef
	EmisFactor  mgl32.Vec3
	AlphaMode   AlphaMode
	AlphaCutoff float32
	DoubleSided bool
}

func (p *PBR) Kind() Kind { return KindPBR }

func (p *PBR) Textures() []TexRef {
	return []TexRef{p.BaseColor, p.MetalRough, p.Normal, p.Occlusion, p.Emissive}
}

func (p *PBR) Validate() error {
	if p.Metalness < 0 || p.Metalness > 1 {
		return newErr("metalness out of [0,1] range")
	}
	if p.Roughness < 0 || p.Roughness > 1 {
		return newErr("roughness out of [0,1] range")
	}
	if p.AlphaMode == AlphaMask && (p.AlphaCutoff < 0 || p.AlphaCutoff > 1) {
		return newErr("alpha cutoff out of [0,1] range")
	}
	return nil
}

func (p *PBR) Pack() [ParamBlockSize]byte {
	var b [ParamBlockSize]byte
	put4f(b[0:16], p.BaseFactor)
	putf(b[16:20], p.Metalness)
	putf(b[20:24], p.Roughness)
	putf(b[24:28], p.NormalScale)
	putf(b[28:32], p.OccStrength)
	put3f(b[32:44], p.EmisFactor)
	putf(b[44:48], p.AlphaCutoff)
	putu32(b[48:52], uint32(KindPBR))
	putu32(b[52:56], alphaFlag(p.AlphaMode, p.DoubleSided))
	return b
}

// NPR is the non-photorealistic (cel/toon) material model: a stepped
// diffuse ramp plus a rim-light term, per SPEC_FULL.md §4.3.
type NPR struct {
	BaseColor   TexRef
	BaseFactor  mgl32.Vec4
	RampSteps   int
	RampSoftness float32
	RimColor    mgl32.Vec3
	RimPower    float32
	OutlineWidth float32
	OutlineColor mgl32.Vec3
	AlphaMode   AlphaMode
	AlphaCutoff float32
	DoubleSided bool
}

func (n *NPR) Kind() Kind          { return KindNPR }
func (n *NPR) Textures() []TexRef  { return []TexRef{n.BaseColor} }

func (n *NPR) Validate() error {
	if n.RampSteps < 1 || n.RampSteps > 8 {
		return newErr("toon ramp steps out of [1,8] range")
	}
	if n.OutlineWidth < 0 {
		return newErr("negative outline width")
	}
	return nil
}

func (n *NPR) Pack() [ParamBlockSize]byte {
	var b [ParamBlockSize]byte
	put4f(b[0:16], n.BaseFactor)
	putu32(b[16:20], uint32(n.RampSteps))
	putf(b[20:24], n.RampSoftness)
	put3f(b[24:36], n.RimColor)
	putf(b[36:40], n.RimPower)
	putf(b[40:44], n.OutlineWidth)
	put3f(b[44:56], n.OutlineColor)
	putu32(b[56:60], uint32(KindNPR))
	putu32(b[60:64], alphaFlag(n.AlphaMode, n.DoubleSided))
	return b
}

// Skybox's full definition, including its panorama-to-cubemap
// conversion, lives in skybox.go.

func alphaFlag(mode AlphaMode, doubleSided bool) uint32 {
	var f uint32
	switch mode {
	case AlphaBlend:
		f |= 1
	case AlphaMask:
		f |= 2
	}
	if doubleSided {
		f |= 4
	}
	return f
}

func putf(dst []byte, v float32)        { binary.LittleEndian.PutUint32(dst, math.Float32bits(v)) }
func putu32(dst []byte, v uint32)       { binary.LittleEndian.PutUint32(dst, v) }
func put3f(dst []byte, v mgl32.Vec3) {
	putf(dst[0:4], v[0])
	putf(dst[4:8], v[1])
	putf(dst[8:12], v[2])
}
func put4f(dst []byte, v mgl32.Vec4) {
	putf(dst[0:4], v[0])
	putf(dst[4:8], v[1])
	putf(dst[8:12], v[2])
	putf(dst[12:16], v[3])
}
