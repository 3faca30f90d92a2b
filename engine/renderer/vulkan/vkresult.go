package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// vkResultError turns a non-success vk.Result into a plain error so it can
// be wrapped by core.Wrap alongside a core.Kind. goki/vulkan returns bare
// vk.Result values rather than errors, unlike most of this codebase's other
// dependencies, so every fallible Vulkan call funnels through here.
func vkResultError(res vk.Result) error {
	return fmt.Errorf("vulkan result %d", res)
}
