package rdg

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/kestrel-engine/kestrel/kerr"
	"github.com/kestrel-engine/kestrel/rhi"
)

// TestCompileOrdersAnyAcyclicChain generates a random chain of
// textures, each written by one pass and read by the next, and checks
// that Compile always returns a valid topological order: every pass
// appears after every pass whose output it reads. A chain can never
// cycle by construction, so this also exercises the no-false-cycle
// side of property 3 (spec §8's RDG topology property) across
// many random pass counts and resource names.
func TestCompileOrdersAnyAcyclicChain(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "passes")
		b := &Builder{}

		res := make([]ResourceHandle, n+1)
		for i := range res {
			res[i] = b.CreateTexture("r", rhi.TextureDesc{})
		}
		for i := 0; i < n; i++ {
			b.AddPass("p",
				[]Access{{Resource: res[i], State: rhi.StateShaderResource}},
				[]Access{{Resource: res[i+1], State: rhi.StateRenderTarget}},
				nil)
		}

		order, err := b.Compile()
		if err != nil {
			rt.Fatalf("Compile: %v", err)
		}
		if len(order) != n {
			rt.Fatalf("Compile: order has %d entries, want %d", len(order), n)
		}

		pos := make(map[int]int, n)
		for i, idx := range order {
			pos[idx] = i
		}
		for i := 0; i < n-1; i++ {
			if pos[i] >= pos[i+1] {
				rt.Fatalf("pass %d (pos %d) must precede pass %d (pos %d)", i, pos[i], i+1, pos[i+1])
			}
		}
	})
}

func TestCompileTopologicallySortsByDependency(t *testing.T) {
	b := &Builder{}
	a := b.CreateTexture("a", rhi.TextureDesc{})
	c := b.CreateTexture("c", rhi.TextureDesc{})

	b.AddPass("writeA", nil, []Access{{Resource: a, State: rhi.StateRenderTarget}}, nil)
	b.AddPass("readAwriteC", []Access{{Resource: a, State: rhi.StateShaderResource}},
		[]Access{{Resource: c, State: rhi.StateRenderTarget}}, nil)
	b.AddPass("readC", []Access{{Resource: c, State: rhi.StateShaderResource}}, nil, nil)

	order, err := b.Compile()
	require.NoError(t, err)
	require.Len(t, order, 3)

	pos := make(map[int]int)
	for i, idx := range order {
		pos[idx] = i
	}
	assert.Less(t, pos[0], pos[1])
	assert.Less(t, pos[1], pos[2])
}

func TestCompileDetectsCycles(t *testing.T) {
	b := &Builder{}
	x := b.CreateTexture("x", rhi.TextureDesc{})
	y := b.CreateTexture("y", rhi.TextureDesc{})

	b.AddPass("p0", []Access{{Resource: y, State: rhi.StateShaderResource}},
		[]Access{{Resource: x, State: rhi.StateRenderTarget}}, nil)
	b.AddPass("p1", []Access{{Resource: x, State: rhi.StateShaderResource}},
		[]Access{{Resource: y, State: rhi.StateRenderTarget}}, nil)

	_, err := b.Compile()
	require.Error(t, err)
	assert.True(t, errors.Is(err, kerr.ErrInvariant))
}

type fakeView struct{}

func (fakeView) Destroy()             {}
func (fakeView) Texture() rhi.Texture { return nil }

func TestSameStateAccessElidesBarrier(t *testing.T) {
	b := &Builder{}
	b.resources = append(b.resources, resourceDesc{
		name: "r", view: fakeView{}, lastState: rhi.StateShaderResource,
	})
	r := ResourceHandle(0)

	var recorded []rhi.TextureBarrier
	cc := &fakeCmd{onBarrier: func(tb []rhi.TextureBarrier, _ []rhi.BufferBarrier) {
		recorded = append(recorded, tb...)
	}}

	b.AddPass("noop", []Access{{Resource: r, State: rhi.StateShaderResource}}, nil, func(rhi.CommandContext) {})
	require.NoError(t, b.Execute(cc))
	assert.Empty(t, recorded)
}

// fakeCmd is a minimal rhi.CommandContext stub exercising only the
// methods rdg.Execute calls, enough to test barrier-elision and
// execution order without a real backend.
type fakeCmd struct {
	onBarrier func([]rhi.TextureBarrier, []rhi.BufferBarrier)
}

func (f *fakeCmd) Destroy()                                        {}
func (f *fakeCmd) Begin() error                                    { return nil }
func (f *fakeCmd) End() error                                      { return nil }
func (f *fakeCmd) BeginRenderPass(rhi.RenderPass)                  {}
func (f *fakeCmd) EndRenderPass()                                  {}
func (f *fakeCmd) SetViewport(rhi.Viewport)                        {}
func (f *fakeCmd) SetScissor(rhi.Scissor)                          {}
func (f *fakeCmd) BindPipeline(rhi.GraphicsPipeline)               {}
func (f *fakeCmd) BindVertexBuffer(int, rhi.Buffer, int64)         {}
func (f *fakeCmd) BindIndexBuffer(rhi.Buffer, int64, bool)         {}
func (f *fakeCmd) BindConstantBuffer(int, rhi.Buffer, int64)       {}
func (f *fakeCmd) BindShaderResource(int, rhi.TextureView)         {}
func (f *fakeCmd) BindSampler(int, rhi.Sampler)                    {}
func (f *fakeCmd) Draw(int, int, int, int)                         {}
func (f *fakeCmd) DrawIndexed(int, int, int, int, int)             {}
func (f *fakeCmd) CopyBufferToBuffer(rhi.Buffer, int64, rhi.Buffer, int64, int64) {}
func (f *fakeCmd) CopyBufferToTexture(rhi.Texture, rhi.SubresourceRange, rhi.Off3D, rhi.Buffer, int64, rhi.Dim3D) {
}
func (f *fakeCmd) CopyTextureToTexture(rhi.Texture, rhi.SubresourceRange, rhi.Off3D, rhi.Texture, rhi.SubresourceRange, rhi.Off3D, rhi.Dim3D) {
}
func (f *fakeCmd) GenerateMipmaps(rhi.Texture) {}
func (f *fakeCmd) ResourceBarrier(tb []rhi.TextureBarrier, bb []rhi.BufferBarrier) {
	if f.onBarrier != nil {
		f.onBarrier(tb, bb)
	}
}
func (f *fakeCmd) Execute(ctx context.Context, wait, signal []rhi.Semaphore, fence rhi.Fence) error {
	return nil
}
