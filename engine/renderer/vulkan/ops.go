package vulkan

import "github.com/surfacepm/vkgfx/engine/math"

// Op is one instruction in the ordered sequence passed to Execute
// (component design §4.9). The three concrete kinds below are the
// renderer's entire vocabulary; Op itself is a closed sum type realized as
// an interface with an unexported marker method.
type Op interface {
	isOp()
}

// SyncOp is a no-op marker reserved for future fencing boundaries (§4.9,
// §9 open question: unused by the current protocol).
type SyncOp struct{}

func (SyncOp) isOp() {}

// FillRectOp fills rect (4 corner positions in normalized render-target
// space) with a solid, sRGB color.
type FillRectOp struct {
	Rect  math.Quad
	Color math.Color
}

func (FillRectOp) isOp() {}

// CopyTextureOp samples Source's Tex at the Source quad and blits it into
// the Target quad of the destination framebuffer.
type CopyTextureOp struct {
	Tex    *Image
	Source math.Quad
	Target math.Quad
}

func (CopyTextureOp) isOp() {}
