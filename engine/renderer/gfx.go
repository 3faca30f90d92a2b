// Package renderer defines the backend-agnostic GfxContext surface
// consumed by the compositor (component design §6) and wires it to the
// concrete Vulkan implementation in engine/renderer/vulkan.
package renderer

import (
	"github.com/surfacepm/vkgfx/engine/dmabuf"
	"github.com/surfacepm/vkgfx/engine/math"
	"github.com/surfacepm/vkgfx/engine/renderer/vulkan"
)

// ResetStatus reports a lost-device condition. This backend's GfxContext
// always reports None (component design §6): device-lost is never
// synthesized on the frame path.
type ResetStatus int

// GfxApi names the rendering backend in use, mirroring the gfx_api()
// accessor in the component design's GfxContext contract.
type GfxApi int

const (
	GfxApiVulkan GfxApi = iota
)

// Format describes one FourCC's supported read/write modifiers, as
// returned by GfxContext.Formats.
type Format struct {
	FourCC        uint32
	ReadModifiers []uint64
	WriteModifiers []uint64
}

// GfxTexture and GfxFramebuffer are the polymorphic handle types the
// compositor holds. Both are backed by exactly one concrete type,
// *vulkan.Image, in this single-backend build (component design §9
// "opaque backend casting"): AsImage panics on any other concrete type,
// since that can only happen from a programmer error mixing backends.
type GfxTexture interface {
	gfxHandle()
}

type GfxFramebuffer interface {
	gfxHandle()
}

// vulkanHandle adapts *vulkan.Image to both GfxTexture and GfxFramebuffer;
// a single concrete image may be used in either role depending on how it
// was created (component design §4.4).
type vulkanHandle struct {
	img *vulkan.Image
}

func (vulkanHandle) gfxHandle() {}

// AsImage unwraps a GfxTexture/GfxFramebuffer back to the underlying
// Vulkan image. It panics if h did not originate from this package — per
// §9, a foreign image reaching the Vulkan core is a programmer error, not
// a recoverable condition.
func AsImage(h interface{ gfxHandle() }) *vulkan.Image {
	vh, ok := h.(vulkanHandle)
	if !ok {
		panic("renderer: handle does not belong to the vulkan backend")
	}
	return vh.img
}

// GfxContext is the full external surface of component design §6.
type GfxContext interface {
	ResetStatus() *ResetStatus
	RenderNode() string
	Formats() map[uint32]Format
	DmabufImg(buf *dmabuf.DmaBuf, forRender bool) (GfxTexture, error)
	ShmemTexture(old GfxTexture, pixels []byte, fourCC uint32, width, height, stride uint32) (GfxTexture, error)
	CreateFB(width, height, stride uint32, fourCC uint32) (GfxFramebuffer, error)
	GfxApi() GfxApi
	Execute(fb GfxFramebuffer, ops []vulkan.Op, clear *math.Color) error
	ReadPixels(tex GfxTexture, x, y, w, h, stride int32, fourCC uint32, dst []byte) error
	Teardown()
}

// vulkanContext is the concrete GfxContext implementation.
type vulkanContext struct {
	r *vulkan.Renderer
}

// NewVulkanContext loads a renderer targeting the DRM device at
// drmNodePath. validation enables the Vulkan validation layer when
// JAY_VULKAN_VALIDATION=1 (engine/config).
func NewVulkanContext(drmNodePath string, validation bool, fillVert, fillFrag, texVert, texFrag []uint32) (GfxContext, error) {
	devT, err := vulkan.DevTFromPath(drmNodePath)
	if err != nil {
		return nil, err
	}
	r, err := vulkan.NewRenderer(validation, devT, fillVert, fillFrag, texVert, texFrag)
	if err != nil {
		return nil, err
	}
	return &vulkanContext{r: r}, nil
}

func (c *vulkanContext) ResetStatus() *ResetStatus { return nil }

func (c *vulkanContext) RenderNode() string { return c.r.Dev.RenderNodePath }

func (c *vulkanContext) Formats() map[uint32]Format {
	out := make(map[uint32]Format, len(c.r.Dev.Formats))
	for fourCC, fd := range c.r.Dev.Formats {
		f := Format{FourCC: fourCC}
		for _, m := range fd.Modifiers {
			if m.CanRead() {
				f.ReadModifiers = append(f.ReadModifiers, m.Modifier)
			}
			if m.CanWrite() {
				f.WriteModifiers = append(f.WriteModifiers, m.Modifier)
			}
		}
		out[fourCC] = f
	}
	return out
}

func (c *vulkanContext) DmabufImg(buf *dmabuf.DmaBuf, forRender bool) (GfxTexture, error) {
	img, err := vulkan.ImportDmaBuf(c.r.Dev, buf, forRender)
	if err != nil {
		return nil, err
	}
	return vulkanHandle{img: img}, nil
}

func (c *vulkanContext) ShmemTexture(old GfxTexture, pixels []byte, fourCC uint32, width, height, stride uint32) (GfxTexture, error) {
	var oldImg *vulkan.Image
	if old != nil {
		oldImg = AsImage(old)
	}
	img, err := vulkan.CreateShmTexture(c.r.Dev, oldImg, pixels, fourCC, width, height, stride, false)
	if err != nil {
		return nil, err
	}
	return vulkanHandle{img: img}, nil
}

func (c *vulkanContext) CreateFB(width, height, stride uint32, fourCC uint32) (GfxFramebuffer, error) {
	img, err := vulkan.CreateShmTexture(c.r.Dev, nil, nil, fourCC, width, height, stride, true)
	if err != nil {
		return nil, err
	}
	return vulkanHandle{img: img}, nil
}

func (c *vulkanContext) GfxApi() GfxApi { return GfxApiVulkan }

func (c *vulkanContext) Execute(fb GfxFramebuffer, ops []vulkan.Op, clear *math.Color) error {
	return c.r.Execute(AsImage(fb), ops, clear)
}

func (c *vulkanContext) ReadPixels(tex GfxTexture, x, y, w, h, stride int32, fourCC uint32, dst []byte) error {
	return c.r.ReadPixels(AsImage(tex), x, y, w, h, stride, fourCC, dst)
}

func (c *vulkanContext) Teardown() {
	c.r.Teardown()
}
