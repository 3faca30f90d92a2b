// Package math holds the small geometric value types the renderer needs:
// 2D points, sRGB colors, and the four-corner quads that every draw op in
// the component design is expressed in terms of. There is no matrix,
// quaternion, or 3D transform stack here; this backend never transforms
// meshes, it only rasterizes axis-free quads given already in
// render-target-normalized clip space.
package math

// Vec2 is a 2D point or vector, used both for clip-space corner positions
// and texture coordinates.
type Vec2 struct {
	X, Y float32
}

// Quad is four corner points, in the order the component design expects
// them consumed: top-left, top-right, bottom-right, bottom-left. FillRect
// and CopyTexture both address their geometry this way instead of a
// width/height rectangle, so that a "rect" can be skewed or rotated by a
// future caller without changing the wire shape.
type Quad [4]Vec2

// FullQuad returns the quad covering the full [-1, 1] clip-space square,
// the normalized-render-target-space rectangle used by the single-clear
// and fill-atop-clear end-to-end scenarios.
func FullQuad() Quad {
	return Quad{
		{X: -1, Y: -1},
		{X: 1, Y: -1},
		{X: 1, Y: 1},
		{X: -1, Y: 1},
	}
}

// Color is a straight (non-premultiplied) sRGB color with four channels.
// The fragment shader linearizes it; the pipeline's blend state then
// composites as premultiplied alpha (see engine/renderer/vulkan/pipeline.go).
type Color struct {
	R, G, B, A float32
}

// Range is an (offset, size) pair in bytes, used for push-constant layout
// bookkeeping (a pipeline's frag_push_offset) and for staging-buffer
// sub-ranges.
type Range struct {
	Offset uint64
	Size   uint64
}
