package vulkan

import (
	"encoding/binary"
	"math"
	"testing"

	gmath "github.com/surfacepm/vkgfx/engine/math"
)

func readFloat32(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off : off+4]))
}

func TestQuadToBytesRoundTrips(t *testing.T) {
	q := gmath.Quad{
		{X: -1, Y: -1},
		{X: 1, Y: -1},
		{X: 1, Y: 1},
		{X: -1, Y: 1},
	}
	out := quadToBytes(q)
	if got := uint32(len(out)); got != vertexQuadPushSize {
		t.Fatalf("len(quadToBytes()) = %d, want %d", got, vertexQuadPushSize)
	}
	for i, v := range q {
		if gotX := readFloat32(out, i*8); gotX != v.X {
			t.Fatalf("corner %d X = %v, want %v", i, gotX, v.X)
		}
		if gotY := readFloat32(out, i*8+4); gotY != v.Y {
			t.Fatalf("corner %d Y = %v, want %v", i, gotY, v.Y)
		}
	}
}

func TestQuadPairToBytesLayout(t *testing.T) {
	target := gmath.Quad{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	source := gmath.Quad{{X: 0.1, Y: 0.2}, {X: 0.3, Y: 0.4}, {X: 0.5, Y: 0.6}, {X: 0.7, Y: 0.8}}
	out := quadPairToBytes(target, source)
	if got := uint32(len(out)); got != texVertexPushSize {
		t.Fatalf("len(quadPairToBytes()) = %d, want %d", got, texVertexPushSize)
	}
	for i, v := range target {
		if gotX := readFloat32(out, i*8); gotX != v.X {
			t.Fatalf("target %d X = %v, want %v", i, gotX, v.X)
		}
	}
	base := len(target) * 8
	for i, v := range source {
		if gotX := readFloat32(out, base+i*8); gotX != v.X {
			t.Fatalf("source %d X = %v, want %v", i, gotX, v.X)
		}
		if gotY := readFloat32(out, base+i*8+4); gotY != v.Y {
			t.Fatalf("source %d Y = %v, want %v", i, gotY, v.Y)
		}
	}
}

func TestColorToBytesOrder(t *testing.T) {
	c := gmath.Color{R: 0.1, G: 0.2, B: 0.3, A: 0.4}
	out := colorToBytes(c)
	if got := uint32(len(out)); got != fragColorPushSize {
		t.Fatalf("len(colorToBytes()) = %d, want %d", got, fragColorPushSize)
	}
	want := []float32{c.R, c.G, c.B, c.A}
	for i, w := range want {
		if got := readFloat32(out, i*4); got != w {
			t.Fatalf("channel %d = %v, want %v", i, got, w)
		}
	}
}
