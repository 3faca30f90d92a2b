package vulkan

import "github.com/surfacepm/vkgfx/engine/math"

// unitQuad is the full normalized render-target rectangle, used as the
// destination quad when blitting a readback scratch render-target.
func unitQuad() math.Quad {
	return math.FullQuad()
}

// fullQuadFor maps a pixel-space subrectangle (x, y, w, h) of tex into
// texcoord space (both axes 0..1) for use as a CopyTexture source quad.
func fullQuadFor(tex *Image, x, y, w, h int32) math.Quad {
	x0 := float32(x) / float32(tex.Width)
	y0 := float32(y) / float32(tex.Height)
	x1 := float32(x+w) / float32(tex.Width)
	y1 := float32(y+h) / float32(tex.Height)
	return math.Quad{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x1, Y: y1},
		{X: x0, Y: y1},
	}
}
