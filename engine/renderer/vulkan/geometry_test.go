package vulkan

import (
	"testing"

	"github.com/surfacepm/vkgfx/engine/math"
)

func TestUnitQuadIsFullClipSpace(t *testing.T) {
	got := unitQuad()
	want := math.FullQuad()
	if got != want {
		t.Fatalf("unitQuad() = %+v, want %+v", got, want)
	}
}

func TestFullQuadForMapsSubrectToTexcoords(t *testing.T) {
	tex := &Image{Width: 200, Height: 100}
	q := fullQuadFor(tex, 50, 25, 100, 50)

	want := math.Quad{
		{X: 0.25, Y: 0.25},
		{X: 0.75, Y: 0.25},
		{X: 0.75, Y: 0.75},
		{X: 0.25, Y: 0.75},
	}
	if q != want {
		t.Fatalf("fullQuadFor() = %+v, want %+v", q, want)
	}
}

func TestFullQuadForWholeImageIsUnitSquare(t *testing.T) {
	tex := &Image{Width: 64, Height: 32}
	q := fullQuadFor(tex, 0, 0, 64, 32)
	want := math.Quad{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 1, Y: 1},
		{X: 0, Y: 1},
	}
	if q != want {
		t.Fatalf("fullQuadFor() = %+v, want %+v", q, want)
	}
}
