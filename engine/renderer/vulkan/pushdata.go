package vulkan

import (
	"math"

	gmath "github.com/surfacepm/vkgfx/engine/math"
)

func putFloat32(dst []byte, off int, v float32) {
	bits := math.Float32bits(v)
	dst[off] = byte(bits)
	dst[off+1] = byte(bits >> 8)
	dst[off+2] = byte(bits >> 16)
	dst[off+3] = byte(bits >> 24)
}

// quadToBytes encodes 4 vec2 corners for the fill pipeline's vertex push
// constants (component design §4.5).
func quadToBytes(q gmath.Quad) []byte {
	out := make([]byte, vertexQuadPushSize)
	for i, v := range q {
		putFloat32(out, i*8, v.X)
		putFloat32(out, i*8+4, v.Y)
	}
	return out
}

// quadPairToBytes encodes the textured pipeline's vertex push constants: 4
// target positions followed by 4 source texcoords.
func quadPairToBytes(target, source gmath.Quad) []byte {
	out := make([]byte, texVertexPushSize)
	for i, v := range target {
		putFloat32(out, i*8, v.X)
		putFloat32(out, i*8+4, v.Y)
	}
	base := len(target) * 8
	for i, v := range source {
		putFloat32(out, base+i*8, v.X)
		putFloat32(out, base+i*8+4, v.Y)
	}
	return out
}

// colorToBytes encodes the fill pipeline's fragment push constants: a
// single vec4 sRGB color, linearized in-shader.
func colorToBytes(c gmath.Color) []byte {
	out := make([]byte, fragColorPushSize)
	putFloat32(out, 0, c.R)
	putFloat32(out, 4, c.G)
	putFloat32(out, 8, c.B)
	putFloat32(out, 12, c.A)
	return out
}
