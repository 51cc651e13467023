package scene

import "github.com/go-gl/mathgl/mgl32"

// LightKind identifies a light's shape.
type LightKind int

// Light kinds, matching the teacher's SunLight/PointLight/SpotLight.
const (
	LightDirectional LightKind = iota
	LightPoint
	LightSpot
)

// Directional is a sun-like light with no position, only direction.
type Directional struct {
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32

	// CascadeLambda is the practical-split blend factor for this
	// light's shadow cascades: 0 is fully uniform, 1 fully
	// logarithmic. It is stored only: no code in this module computes
	// cascades from it, and nothing sets a default other than the zero
	// value.
	CascadeLambda float32
	CastsShadow   bool
}

// Point is an omnidirectional, positional light with inverse-square
// falloff clamped at Range.
type Point struct {
	Position  mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
	Range     float32
}

// Spot is a positional, conical light.
type Spot struct {
	Position   mgl32.Vec3
	Direction  mgl32.Vec3
	Color      mgl32.Vec3
	Intensity  float32
	Range      float32
	InnerAngle float32
	OuterAngle float32
}

// Light is a light source of one of the three kinds above.
type Light struct {
	Kind        LightKind
	Directional Directional
	Point       Point
	Spot        Spot
}

// LightManager owns the scene's active lights as a plain list. Add
// enforces no cap (kconfig.MaxPointShadowCount is not checked), and no
// render pass in this module reads the list.
type LightManager struct {
	lights []Light
}

// NewLightManager creates an empty LightManager.
func NewLightManager() *LightManager { return &LightManager{} }

// Add appends a light and returns its index.
func (m *LightManager) Add(l Light) int {
	m.lights = append(m.lights, l)
	return len(m.lights) - 1
}

// Remove deletes the light at index i, shifting subsequent indices
// down by one (callers that cache indices across a Remove must
// refetch them).
func (m *LightManager) Remove(i int) {
	if i < 0 || i >= len(m.lights) {
		return
	}
	m.lights = append(m.lights[:i], m.lights[i+1:]...)
}

// Lights returns the current light list.
func (m *LightManager) Lights() []Light { return m.lights }
