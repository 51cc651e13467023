// Package scene implements the scene graph: a hierarchy of transform
// nodes, each optionally carrying a mesh/material attachment or a
// light, plus the MeshManager/LightManager spec §4.8 names as the
// scene's collaborators.
//
// Grounded on gviegas-neo3's node/node.go (a sibling/child linked-list
// graph addressed by small integer Node handles, with a Changed()-
// driven world-transform cache), generalized from the teacher's
// caller-supplied node/data.Interface split into a single Node struct
// this package owns outright, since SPEC_FULL.md's scene graph has no
// external node-type extensibility requirement.
package scene

import "github.com/go-gl/mathgl/mgl32"

// NodeID identifies a node in a Graph. The zero value is invalid.
type NodeID int

// Invalid is the zero NodeID.
const Invalid NodeID = 0

type node struct {
	parent   NodeID
	first    NodeID
	next     NodeID
	local    mgl32.Mat4
	world    mgl32.Mat4
	dirty    bool
	drawable int // index into Graph.drawables, -1 if none
	light    int // index into LightManager, -1 if none
}

// Drawable attaches a mesh primitive and material to a node.
type Drawable struct {
	MeshName     string
	Primitive    int
	MaterialName string
}

// Graph is a scene graph. Create one with NewGraph, which adds the
// root at NodeID(1); the zero value has no root node and is not usable.
type Graph struct {
	nodes     []node
	drawables []Drawable
	root      NodeID
}

// NewGraph creates an empty Graph with a single root node.
func NewGraph() *Graph {
	g := &Graph{}
	g.nodes = append(g.nodes, node{}) // index 0 unused, keeps NodeID(0) invalid
	g.root = g.newNode(Invalid, mgl32.Ident4())
	return g
}

// Root returns the graph's root node.
func (g *Graph) Root() NodeID { return g.root }

func (g *Graph) newNode(parent NodeID, local mgl32.Mat4) NodeID {
	g.nodes = append(g.nodes, node{parent: parent, local: local, dirty: true, drawable: -1, light: -1})
	id := NodeID(len(g.nodes) - 1)
	if parent != Invalid {
		p := &g.nodes[parent]
		n := &g.nodes[id]
		n.next = p.first
		p.first = id
	}
	return id
}

// NewChild creates a new node parented to parent, with the given
// local transform.
func (g *Graph) NewChild(parent NodeID, local mgl32.Mat4) NodeID {
	if parent == Invalid {
		parent = g.root
	}
	return g.newNode(parent, local)
}

// SetLocal replaces a node's local transform and marks it (and its
// subtree, lazily, at the next Update) for world-transform recompute.
func (g *Graph) SetLocal(id NodeID, local mgl32.Mat4) {
	n := &g.nodes[id]
	n.local = local
	n.dirty = true
}

// AttachDrawable attaches a mesh/material drawable to a node.
func (g *Graph) AttachDrawable(id NodeID, d Drawable) {
	g.drawables = append(g.drawables, d)
	g.nodes[id].drawable = len(g.drawables) - 1
}

// AttachLight records which LightManager index a node represents,
// for lights whose position/direction tracks a node's world
// transform.
func (g *Graph) AttachLight(id NodeID, lightIndex int) {
	g.nodes[id].light = lightIndex
}

// World returns a node's cached world transform; valid only after
// Update.
func (g *Graph) World(id NodeID) mgl32.Mat4 { return g.nodes[id].world }

// Update recomputes every dirty node's world transform in parent-to-
// child order, propagating dirtiness down the tree exactly as the
// teacher's Graph.Update does with its Changed() check.
func (g *Graph) Update() {
	rootDirty := g.nodes[g.root].dirty
	g.nodes[g.root].world = g.nodes[g.root].local
	g.nodes[g.root].dirty = false
	g.updateChildren(g.root, rootDirty)
}

func (g *Graph) updateChildren(parent NodeID, parentDirty bool) {
	for c := g.nodes[parent].first; c != Invalid; c = g.nodes[c].next {
		n := &g.nodes[c]
		dirty := parentDirty || n.dirty
		if dirty {
			n.world = g.nodes[parent].world.Mul4(n.local)
			n.dirty = false
		}
		g.updateChildren(c, dirty)
	}
}

// Walk invokes fn for every node in the graph in parent-to-child
// order, passing each node's drawable index (or -1) and light index
// (or -1).
func (g *Graph) Walk(fn func(id NodeID, world mgl32.Mat4, drawable, light int)) {
	g.walk(g.root, fn)
}

func (g *Graph) walk(id NodeID, fn func(NodeID, mgl32.Mat4, int, int)) {
	n := &g.nodes[id]
	fn(id, n.world, n.drawable, n.light)
	for c := n.first; c != Invalid; c = g.nodes[c].next {
		g.walk(c, fn)
	}
}

// Drawable returns the Drawable at index i, as recorded by
// AttachDrawable.
func (g *Graph) Drawable(i int) Drawable { return g.drawables[i] }
