package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/surfacepm/vkgfx/engine/core"
)

// CreateTextureSampler builds the single sampler configuration this
// backend ever needs (component design §4.6): linear filtering, linear
// mipmap mode (though every texture has exactly one mip level), clamp to
// edge, no anisotropy, normalized coordinates, no compare op.
func CreateTextureSampler(dev *Device) (vk.Sampler, error) {
	createInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            vk.SamplerAddressModeClampToEdge,
		AddressModeV:            vk.SamplerAddressModeClampToEdge,
		AddressModeW:            vk.SamplerAddressModeClampToEdge,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		BorderColor:             vk.BorderColorFloatTransparentBlack,
	}
	var sampler vk.Sampler
	if res := vk.CreateSampler(dev.Logical, &createInfo, nil, &sampler); res != vk.Success {
		return nil, core.Wrap(core.ErrCreateSampler, vkResultError(res))
	}
	return sampler, nil
}
