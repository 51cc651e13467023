// Package mesh manages GPU vertex/index storage: meshes are made of
// primitives, each a set of interleaved-by-semantic vertex buffers
// plus an optional index buffer, packed one after another into a
// shared GPU buffer whose capacity is fixed at NewManager and
// addressed by byte offset. Allocation is a bump cursor: space is
// never freed or reused, and the Manager's span pool is sized but not
// consulted.
//
// Grounded on gviegas-neo3's engine/mesh.go and engine/storage.go (a
// single shared mesh buffer, a bitmap-indexed span allocator, and a
// Semantic-keyed per-primitive vertex layout), adapted from the
// teacher's package-global singleton storage to a Manager value so
// more than one render system can own independent mesh storage (the
// spec's component table never requires a process-wide singleton).
package mesh

import (
	"fmt"

	"github.com/kestrel-engine/kestrel/internal/idpool"
	"github.com/kestrel-engine/kestrel/kerr"
	"github.com/kestrel-engine/kestrel/rhi"
)

// Semantic identifies a vertex attribute's meaning.
type Semantic int

// Semantics, ordered as the vertex shader expects them bound.
const (
	SemanticPosition Semantic = iota
	SemanticNormal
	SemanticTangent
	SemanticTexCoord0
	SemanticTexCoord1
	SemanticColor0
	SemanticJoints0
	SemanticWeights0
	MaxSemantic
)

// spanBlock is the unit, in bytes, that the shared mesh buffer's
// capacity must be a multiple of.
const spanBlock = 16384

// Attribute describes one vertex attribute stream of a primitive.
type Attribute struct {
	Semantic Semantic
	Format   rhi.VertexFormat
	Data     []byte
}

// PrimitiveDesc describes a primitive to be created.
type PrimitiveDesc struct {
	Topology   rhi.Topology
	Attributes []Attribute
	Indices    []byte // little-endian uint16 or uint32, per IndexWide
	IndexWide  bool
	VertexCount int
	IndexCount  int
}

type primitive struct {
	topology  rhi.Topology
	indexWide bool
	vertexOffset [MaxSemantic]int64
	vertexFormat [MaxSemantic]rhi.VertexFormat
	mask         uint32
	vertexCount  int
	indexOffset  int64
	indexCount   int
}

// Mesh is a collection of primitives sharing one Manager's buffer.
type Mesh struct {
	prims []primitive
}

// Len returns the number of primitives in m.
func (m *Mesh) Len() int { return len(m.prims) }

// Manager owns the shared GPU buffer backing every Mesh it creates.
type Manager struct {
	dev    rhi.Device
	buf    rhi.Buffer
	spans  idpool.Pool[uint32]
	cursor int64
}

// NewManager creates a Manager with a GPU buffer of the given
// capacity, which must be a multiple of spanBlock.
func NewManager(dev rhi.Device, capacity int64) (*Manager, error) {
	if capacity%spanBlock != 0 {
		return nil, fmt.Errorf("mesh: capacity must be a multiple of %d bytes: %w", spanBlock, kerr.ErrInvariant)
	}
	buf, err := dev.NewBuffer(rhi.BufferDesc{
		Size:   capacity,
		Usage:  rhi.UsageVertex | rhi.UsageIndex | rhi.UsageCopyDst,
		Memory: rhi.MemoryCPUToGPU,
	})
	if err != nil {
		return nil, err
	}
	m := &Manager{dev: dev, buf: buf}
	m.spans.Grow(int(capacity / spanBlock / 32))
	return m, nil
}

// Buffer returns the Manager's shared GPU buffer.
func (m *Manager) Buffer() rhi.Buffer { return m.buf }

func (m *Manager) alloc(data []byte) (int64, error) {
	off := m.cursor
	mapped, err := m.buf.Map()
	if err != nil {
		return 0, err
	}
	if off+int64(len(data)) > int64(len(mapped)) {
		return 0, fmt.Errorf("mesh: shared buffer exhausted: %w", kerr.ErrInvariant)
	}
	copy(mapped[off:], data)
	m.buf.Unmap()
	m.cursor += int64(len(data))
	return off, nil
}

// NewMesh allocates the vertex/index data of every primitive in descs
// out of the Manager's shared buffer and returns a Mesh referencing
// them.
func (m *Manager) NewMesh(descs []PrimitiveDesc) (*Mesh, error) {
	mesh := &Mesh{prims: make([]primitive, len(descs))}
	for i, d := range descs {
		p := &mesh.prims[i]
		p.topology = d.Topology
		p.indexWide = d.IndexWide
		p.vertexCount = d.VertexCount
		p.indexCount = d.IndexCount

		for _, a := range d.Attributes {
			if a.Semantic >= MaxSemantic {
				return nil, fmt.Errorf("mesh: invalid semantic %d: %w", a.Semantic, kerr.ErrInvariant)
			}
			off, err := m.alloc(a.Data)
			if err != nil {
				return nil, err
			}
			p.vertexOffset[a.Semantic] = off
			p.vertexFormat[a.Semantic] = a.Format
			p.mask |= 1 << a.Semantic
		}

		if len(d.Indices) > 0 {
			off, err := m.alloc(d.Indices)
			if err != nil {
				return nil, err
			}
			p.indexOffset = off
		}
	}
	return mesh, nil
}

// Inputs returns the VertexInput layout of prim, ordered by Semantic,
// for use building a rhi.GraphicsPipelineDesc compatible with Draw.
func (m *Mesh) Inputs(prim int) []rhi.VertexInput {
	if prim < 0 || prim >= len(m.prims) {
		return nil
	}
	p := &m.prims[prim]
	var out []rhi.VertexInput
	for i := 0; i < int(MaxSemantic); i++ {
		if p.mask&(1<<i) == 0 {
			continue
		}
		out = append(out, rhi.VertexInput{Slot: i, Format: p.vertexFormat[i]})
	}
	return out
}

// Draw binds prim's vertex/index buffers on cc and issues the draw
// call. The caller must have already bound a pipeline whose vertex
// inputs match Mesh.Inputs(prim).
func (m *Mesh) Draw(prim int, cc rhi.CommandContext, buf rhi.Buffer, instanceCount int) {
	if prim < 0 || prim >= len(m.prims) {
		return
	}
	p := &m.prims[prim]
	if instanceCount < 1 {
		instanceCount = 1
	}
	for i := 0; i < int(MaxSemantic); i++ {
		if p.mask&(1<<i) == 0 {
			continue
		}
		cc.BindVertexBuffer(i, buf, p.vertexOffset[i])
	}
	if p.indexCount > 0 {
		cc.BindIndexBuffer(buf, p.indexOffset, p.indexWide)
		cc.DrawIndexed(p.indexCount, instanceCount, 0, 0, 0)
	} else {
		cc.Draw(p.vertexCount, instanceCount, 0, 0)
	}
}
