package material

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPBRValidate(t *testing.T) {
	p := &PBR{Metalness: 0.5, Roughness: 0.5, AlphaMode: AlphaOpaque}
	require.NoError(t, p.Validate())

	p.Metalness = 1.5
	assert.Error(t, p.Validate())
}

func TestPBRPackRoundTripsFactor(t *testing.T) {
	p := &PBR{BaseFactor: mgl32.Vec4{0.1, 0.2, 0.3, 1}, Metalness: 0.25, Roughness: 0.75}
	require.NoError(t, p.Validate())
	b := p.Pack()
	assert.Equal(t, KindPBR, p.Kind())
	assert.Len(t, p.Textures(), 5)
	assert.NotEqual(t, [ParamBlockSize]byte{}, b)

	f32 := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[off:])) }
	assert.Equal(t, mgl32.Vec4{0.1, 0.2, 0.3, 1}, mgl32.Vec4{f32(0), f32(4), f32(8), f32(12)})
	assert.Equal(t, float32(0.25), f32(16))
	assert.Equal(t, float32(0.75), f32(20))
}

func TestNPRValidateRampSteps(t *testing.T) {
	n := &NPR{RampSteps: 0}
	assert.Error(t, n.Validate())
	n.RampSteps = 3
	assert.NoError(t, n.Validate())
}

func TestSkyboxRequiresCubemap(t *testing.T) {
	s := &Skybox{Intensity: 1}
	assert.Error(t, s.Validate())
}
