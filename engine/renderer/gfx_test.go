package renderer

import (
	"testing"

	"github.com/surfacepm/vkgfx/engine/renderer/vulkan"
)

type foreignHandle struct{}

func (foreignHandle) gfxHandle() {}

func TestAsImagePanicsOnForeignHandle(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("AsImage() did not panic on a foreign handle")
		}
	}()
	AsImage(foreignHandle{})
}

func TestAsImageUnwrapsVulkanHandle(t *testing.T) {
	img := &vulkan.Image{Width: 4, Height: 4}
	h := vulkanHandle{img: img}
	got := AsImage(h)
	if got != img {
		t.Fatalf("AsImage() = %p, want %p", got, img)
	}
}

func TestGfxApiVulkanIsZeroValue(t *testing.T) {
	if GfxApiVulkan != 0 {
		t.Fatalf("GfxApiVulkan = %d, want 0", GfxApiVulkan)
	}
}
