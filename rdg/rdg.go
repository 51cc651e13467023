// Package rdg implements the render dependency graph: a per-frame
// declarative graph of transient textures and passes that reads and
// writes them, topologically sorted into an execution order that
// derives each resource's transition barriers from the graph's
// structure; each attachment's load/store ops are the ones its pass
// declares in its Access.
//
// This is a new component: SPEC_FULL.md's §4.5 has no direct teacher
// analogue (gviegas-neo3's engine/renderer.go hand-orders its passes
// and hand-writes each pass's barriers). The graph's attachment/
// load-store vocabulary is grounded on driver/core.go's Attachment/
// Subpass/LoadOp/StoreOp shapes, generalized from the teacher's single
// static render graph into a graph rebuilt fresh every frame.
package rdg

import (
	"fmt"
	"sort"

	"github.com/kestrel-engine/kestrel/kerr"
	"github.com/kestrel-engine/kestrel/rhi"
)

// ResourceHandle identifies a transient or imported resource within
// one Builder's graph.
type ResourceHandle int

// resourceDesc is either a transient texture the graph itself creates
// and destroys, or an imported one (e.g. a swapchain image) the
// caller owns.
type resourceDesc struct {
	name      string
	desc      rhi.TextureDesc
	imported  rhi.Texture
	view      rhi.TextureView
	lastState rhi.ResourceState
}

// PassHandle identifies a pass registered with a Builder.
type PassHandle int

// Access describes how a pass uses one resource.
type Access struct {
	Resource ResourceHandle
	State    rhi.ResourceState
	// Attachment, when true, means this access also describes a
	// render-pass color/depth attachment, using Load/Store/Clear.
	Attachment bool
	Depth      bool
	Load       rhi.LoadOp
	Store      rhi.StoreOp
	Clear      rhi.ClearValue
}

// Execute is the function a pass runs once the graph has placed its
// barriers and, for attachments, begun its render pass.
type Execute func(cc rhi.CommandContext)

type pass struct {
	name    string
	reads   []Access
	writes  []Access
	execute Execute
}

// Builder accumulates resources and passes for one frame, then
// compiles and executes them in dependency order.
type Builder struct {
	dev       rhi.Device
	resources []resourceDesc
	passes    []pass
}

// NewBuilder creates an empty Builder bound to dev for creating
// transient resources.
func NewBuilder(dev rhi.Device) *Builder {
	return &Builder{dev: dev}
}

// ImportTexture registers an externally-owned texture (e.g. the
// current swapchain image) as a graph resource, returning its handle.
func (b *Builder) ImportTexture(name string, tex rhi.Texture, view rhi.TextureView, initial rhi.ResourceState) ResourceHandle {
	b.resources = append(b.resources, resourceDesc{name: name, imported: tex, view: view, lastState: initial})
	return ResourceHandle(len(b.resources) - 1)
}

// CreateTexture registers a transient texture the graph will allocate
// before the first pass that accesses it and free after the last.
func (b *Builder) CreateTexture(name string, desc rhi.TextureDesc) ResourceHandle {
	b.resources = append(b.resources, resourceDesc{name: name, desc: desc, lastState: rhi.StateUndefined})
	return ResourceHandle(len(b.resources) - 1)
}

// AddPass registers a pass that reads and writes the given resources
// and records its work via exec when the graph executes it.
func (b *Builder) AddPass(name string, reads, writes []Access, exec Execute) PassHandle {
	b.passes = append(b.passes, pass{name: name, reads: reads, writes: writes, execute: exec})
	return PassHandle(len(b.passes) - 1)
}

// View returns the texture view for a resource. For a transient
// resource it is nil until Execute has allocated it (i.e. it is valid
// from within an Execute callback); for an imported one it is the view
// given to ImportTexture.
func (b *Builder) View(r ResourceHandle) rhi.TextureView { return b.resources[r].view }

// Texture returns the underlying texture for a resource.
func (b *Builder) Texture(r ResourceHandle) rhi.Texture { return b.resources[r].imported }

// edge records a dependency: "to" must execute after "from" because
// "from" writes a resource "to" reads (or both write the same
// resource).
type edge struct{ from, to int }

// Compile topologically sorts the registered passes by their resource
// dependencies and returns the execution order as pass indices; it
// allocates nothing. Cycles are reported as
// kerr.ErrInvariant (spec §4.5's cycle-detection requirement).
func (b *Builder) Compile() ([]int, error) {
	n := len(b.passes)
	writers := make(map[ResourceHandle][]int)
	readers := make(map[ResourceHandle][]int)
	for i, p := range b.passes {
		for _, w := range p.writes {
			if w.State == rhi.StateDepthRead {
				// A read-only depth attachment orders the pass after the
				// depth's writers without making it a writer itself.
				readers[w.Resource] = append(readers[w.Resource], i)
				continue
			}
			writers[w.Resource] = append(writers[w.Resource], i)
		}
		for _, r := range p.reads {
			readers[r.Resource] = append(readers[r.Resource], i)
		}
	}

	adj := make([][]int, n)
	indeg := make([]int, n)
	addEdge := func(from, to int) {
		if from == to {
			return
		}
		adj[from] = append(adj[from], to)
		indeg[to]++
	}

	for res, rs := range readers {
		for _, r := range rs {
			for _, w := range writers[res] {
				if w != r {
					addEdge(w, r)
				}
			}
		}
	}
	for res, ws := range writers {
		for i := 1; i < len(ws); i++ {
			addEdge(ws[i-1], ws[i])
		}
		_ = res
	}

	var order []int
	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			queue = append(queue, i)
		}
	}
	sort.Ints(queue)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		var next []int
		for _, nb := range adj[cur] {
			indeg[nb]--
			if indeg[nb] == 0 {
				next = append(next, nb)
			}
		}
		sort.Ints(next)
		queue = append(queue, next...)
		sort.Ints(queue)
	}

	if len(order) != n {
		return nil, fmt.Errorf("rdg: cycle detected among %d unresolved passes: %w", n-len(order), kerr.ErrInvariant)
	}
	return order, nil
}

// Execute compiles the graph, allocates transient resources, and
// records every pass's barriers, render-pass begin/end, and callback
// onto cc in dependency order. Transient resources created for this
// execution are destroyed once the frame's command context finishes
// recording (the caller must not access them after Execute returns).
func (b *Builder) Execute(cc rhi.CommandContext) error {
	order, err := b.Compile()
	if err != nil {
		return err
	}

	for i := range b.resources {
		r := &b.resources[i]
		if r.imported != nil || r.view != nil {
			continue
		}
		tex, err := b.dev.NewTexture(r.desc)
		if err != nil {
			return err
		}
		view, err := b.dev.NewTextureView(rhi.TextureViewDesc{
			Texture: tex, Type: rhi.View2D, Format: r.desc.Format,
			Range: rhi.SubresourceRange{Aspect: aspectFor(r.desc.Format), MipCount: 1, LayerCount: 1},
		})
		if err != nil {
			tex.Destroy()
			return err
		}
		r.imported = tex
		r.view = view
	}

	for _, idx := range order {
		p := &b.passes[idx]

		var texBarriers []rhi.TextureBarrier
		apply := func(accs []Access) {
			for _, a := range accs {
				res := &b.resources[a.Resource]
				if res.lastState == a.State {
					continue // barrier elision: no-op transition
				}
				texBarriers = append(texBarriers, rhi.TextureBarrier{
					Texture: res.imported, Before: res.lastState, After: a.State,
					Range: rhi.SubresourceRange{Aspect: aspectFor(res.desc.Format), MipCount: 1, LayerCount: 1},
				})
				res.lastState = a.State
			}
		}
		apply(p.reads)
		apply(p.writes)
		if len(texBarriers) > 0 {
			cc.ResourceBarrier(texBarriers, nil)
		}

		var rpDesc *rhi.RenderPassDesc
		for _, a := range p.writes {
			if !a.Attachment {
				continue
			}
			if rpDesc == nil {
				rpDesc = &rhi.RenderPassDesc{}
			}
			view := b.resources[a.Resource].view
			if a.Depth {
				rpDesc.Depth = &rhi.DepthAttachment{
					View: view, DepthLoad: a.Load, DepthStore: a.Store, Clear: a.Clear,
				}
			} else {
				rpDesc.Color = append(rpDesc.Color, rhi.ColorAttachment{
					View: view, Load: a.Load, Store: a.Store, Clear: a.Clear,
				})
			}
		}

		if rpDesc != nil {
			rp, err := b.dev.NewRenderPass(*rpDesc)
			if err != nil {
				return err
			}
			cc.BeginRenderPass(rp)
			p.execute(cc)
			cc.EndRenderPass()
			rp.Destroy()
		} else {
			p.execute(cc)
		}
	}
	return nil
}

func aspectFor(f rhi.Format) rhi.Aspect {
	if !f.IsDepth() {
		return rhi.AspectColor
	}
	if f.HasStencil() {
		return rhi.AspectDepthStencil
	}
	return rhi.AspectDepth
}
