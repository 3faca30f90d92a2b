package vulkan

import (
	"strings"
	"testing"

	vk "github.com/goki/vulkan"
)

func TestVkResultErrorIncludesCode(t *testing.T) {
	err := vkResultError(vk.ErrorDeviceLost)
	if err == nil {
		t.Fatalf("vkResultError() returned nil")
	}
	if !strings.Contains(err.Error(), "vulkan result") {
		t.Fatalf("vkResultError().Error() = %q, want it to mention the result", err.Error())
	}
}
