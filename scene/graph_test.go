package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatePropagatesParentTransform(t *testing.T) {
	g := NewGraph()
	child := g.NewChild(g.Root(), mgl32.Translate3D(1, 0, 0))
	grandchild := g.NewChild(child, mgl32.Translate3D(0, 2, 0))

	g.SetLocal(g.Root(), mgl32.Translate3D(5, 0, 0))
	g.Update()

	world := g.World(grandchild)
	pos := world.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 6.0, pos.X(), 1e-5)
	assert.InDelta(t, 2.0, pos.Y(), 1e-5)
}

func TestWalkVisitsEveryNode(t *testing.T) {
	g := NewGraph()
	a := g.NewChild(g.Root(), mgl32.Ident4())
	g.NewChild(a, mgl32.Ident4())

	count := 0
	g.Walk(func(id NodeID, world mgl32.Mat4, drawable, light int) { count++ })
	assert.Equal(t, 3, count) // root + a + its child
}

func TestMeshManagerResolveMissing(t *testing.T) {
	mm := NewMeshManager()
	_, _, err := mm.Resolve(Drawable{MeshName: "missing"})
	require.Error(t, err)
}
