package rsys

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/kestrel-engine/kestrel/rhi"
	"github.com/kestrel-engine/kestrel/rrm"
)

func f32At(buf []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
}

func TestPackObjectLaysOutColumnMajor(t *testing.T) {
	world := mgl32.Translate3D(1, 2, 3)
	buf := packObject(world)

	for i, want := range world {
		assert.Equal(t, want, f32At(buf[:], i))
	}
}

func TestPackCameraPlacesViewThenProj(t *testing.T) {
	view := mgl32.Translate3D(1, 0, 0)
	proj := mgl32.Perspective(mgl32.DegToRad(60), 16.0/9.0, 0.1, 100)
	buf := packCamera(view, proj)

	for i, want := range view {
		assert.Equal(t, want, f32At(buf[:], i))
	}
	for i, want := range proj {
		assert.Equal(t, want, f32At(buf[:], 16+i))
	}
}

func TestPackedBlocksFitObjectStride(t *testing.T) {
	assert.LessOrEqual(t, 16*4, rrm.ObjectStride)
	assert.LessOrEqual(t, 2*16*4, rrm.ObjectStride)
}

func TestGBufferDescUsesColorTargetAndSampledUsage(t *testing.T) {
	desc := gbufferDesc(1920, 1080, rhi.FormatRGBA16Float)
	assert.Equal(t, rhi.Tex2D, desc.Dim)
	assert.Equal(t, rhi.FormatRGBA16Float, desc.Format)
	assert.Equal(t, rhi.Dim3D{Width: 1920, Height: 1080, Depth: 1}, desc.Extent)
	assert.Equal(t, 1, desc.Layers)
	assert.Equal(t, 1, desc.Levels)
	assert.Equal(t, 1, desc.Samples)
	assert.NotZero(t, desc.Usage&rhi.UsageColorTarget)
	assert.NotZero(t, desc.Usage&rhi.UsageSampled)
}

func TestPutFloat32RoundTrips(t *testing.T) {
	buf := make([]byte, 4)
	putFloat32(buf, 3.5)
	assert.Equal(t, float32(3.5), f32At(buf, 0))
}
