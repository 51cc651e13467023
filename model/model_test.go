package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/kestrel-engine/kestrel/gltf"
	"github.com/kestrel-engine/kestrel/material"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32le(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}

func TestAccessorBytesTightlyPacksStridedView(t *testing.T) {
	// Two VEC3 float positions interleaved with a 4-byte pad per
	// element (stride 16), as a real exporter with interleaved
	// attributes would emit.
	buf := make([]byte, 32)
	copy(buf[0:], f32le(1))
	copy(buf[4:], f32le(2))
	copy(buf[8:], f32le(3))
	copy(buf[16:], f32le(4))
	copy(buf[20:], f32le(5))
	copy(buf[24:], f32le(6))

	doc := &gltf.GLTF{
		BufferViews: []gltf.BufferView{{Buffer: 0, ByteStride: 16, ByteLength: 32}},
	}
	bv := int64(0)
	a := gltf.Accessor{BufferView: &bv, ComponentType: gltf.FLOAT, Type: gltf.VEC3, Count: 2}

	out, err := accessorBytes(doc, [][]byte{buf}, a)
	require.NoError(t, err)
	require.Len(t, out, 24)

	var got [6]float32
	for i := range got {
		got[i] = math.Float32frombits(binary.LittleEndian.Uint32(out[i*4:]))
	}
	assert.Equal(t, [6]float32{1, 2, 3, 4, 5, 6}, got)
}

func TestTopFourWeightsRenormalizes(t *testing.T) {
	data := make([]byte, 16)
	copy(data[0:], f32le(2))
	copy(data[4:], f32le(1))
	copy(data[8:], f32le(1))
	copy(data[12:], f32le(0))

	out := topFourWeights(data, 1)

	var sum float32
	for i := 0; i < 4; i++ {
		sum += math.Float32frombits(binary.LittleEndian.Uint32(out[i*4:]))
	}
	assert.InDelta(t, 1.0, sum, 1e-6)
}

func TestComponentSizeAndCount(t *testing.T) {
	assert.Equal(t, 4, componentSize(gltf.FLOAT))
	assert.Equal(t, 2, componentSize(gltf.UNSIGNED_SHORT))
	assert.Equal(t, 0, componentSize(9999))
	assert.Equal(t, 3, componentCount(gltf.VEC3))
	assert.Equal(t, 0, componentCount("bogus"))
}

func TestConvertMaterialDefaultsAndOverrides(t *testing.T) {
	cutoff := float32(0.25)
	gm := gltf.Material{
		AlphaMode:   "MASK",
		AlphaCutoff: &cutoff,
		DoubleSided: true,
	}
	mat := convertMaterial(gm)
	pbr, ok := mat.(*material.PBR)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, pbr.BaseFactor)
	assert.InDelta(t, 1.0, pbr.Metalness, 1e-6)
	assert.InDelta(t, 1.0, pbr.Roughness, 1e-6)
	assert.InDelta(t, 0.25, pbr.AlphaCutoff, 1e-6)
	assert.True(t, pbr.DoubleSided)
}
