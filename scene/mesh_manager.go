package scene

import (
	"fmt"

	"github.com/kestrel-engine/kestrel/kerr"
	"github.com/kestrel-engine/kestrel/material"
	"github.com/kestrel-engine/kestrel/mesh"
)

// MeshManager resolves the mesh/material names a Graph's Drawables
// reference into loaded *mesh.Mesh and material.Material instances,
// keeping the scene graph itself free of any direct GPU-resource
// reference (so a Graph can be built and traversed before any
// resource is actually loaded, matching the asset system's
// deferred-resolution model in spec §4.9).
type MeshManager struct {
	meshes    map[string]*mesh.Mesh
	materials map[string]material.Material
}

// NewMeshManager creates an empty MeshManager.
func NewMeshManager() *MeshManager {
	return &MeshManager{meshes: map[string]*mesh.Mesh{}, materials: map[string]material.Material{}}
}

// RegisterMesh associates name with m, overwriting any previous
// association.
func (mm *MeshManager) RegisterMesh(name string, m *mesh.Mesh) { mm.meshes[name] = m }

// RegisterMaterial associates name with mat.
func (mm *MeshManager) RegisterMaterial(name string, mat material.Material) {
	mm.materials[name] = mat
}

// Resolve looks up the mesh and material for a Drawable, failing with
// kerr.ErrAssetNotFound if either name is unregistered.
func (mm *MeshManager) Resolve(d Drawable) (*mesh.Mesh, material.Material, error) {
	m, ok := mm.meshes[d.MeshName]
	if !ok {
		return nil, nil, fmt.Errorf("scene: mesh %q not registered: %w", d.MeshName, kerr.ErrAssetNotFound)
	}
	mat, ok := mm.materials[d.MaterialName]
	if !ok {
		return nil, nil, fmt.Errorf("scene: material %q not registered: %w", d.MaterialName, kerr.ErrAssetNotFound)
	}
	return m, mat, nil
}
