package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/surfacepm/vkgfx/engine/core"
)

// createTextureDescriptorSetLayout builds the texture pipeline's only
// descriptor set layout (component design §4.5): binding 0, a combined
// image sampler, updated per-draw via push descriptors rather than through
// a descriptor pool, hence the push-descriptor-khr flag.
func createTextureDescriptorSetLayout(dev *Device) (vk.DescriptorSetLayout, error) {
	binding := vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
	}
	createInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		Flags:        vk.DescriptorSetLayoutCreateFlags(vk.DescriptorSetLayoutCreatePushDescriptorBitKhr),
		BindingCount: 1,
		PBindings:    []vk.DescriptorSetLayoutBinding{binding},
	}
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(dev.Logical, &createInfo, nil, &layout); res != vk.Success {
		return nil, core.Wrap(core.ErrCreateDescriptorSetLayout, vkResultError(res))
	}
	return layout, nil
}

// pushTextureDescriptor records a push-descriptor-set write binding view
// (at layout SHADER_READ_ONLY_OPTIMAL) and sampler to the texture
// pipeline's set 0, directly into cmd — no descriptor pool or set
// allocation ever occurs.
func pushTextureDescriptor(cmd vk.CommandBuffer, layout vk.PipelineLayout, sampler vk.Sampler, view vk.ImageView) {
	imageInfo := vk.DescriptorImageInfo{
		Sampler:     sampler,
		ImageView:   view,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	}
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstBinding:      0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo:      []vk.DescriptorImageInfo{imageInfo},
	}
	vk.CmdPushDescriptorSetKHR(cmd, vk.PipelineBindPointGraphics, layout, 0, 1, []vk.WriteDescriptorSet{write})
}
