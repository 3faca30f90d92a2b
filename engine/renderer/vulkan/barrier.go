package vulkan

import vk "github.com/goki/vulkan"

// submitBarriers issues a single vkCmdPipelineBarrier2 covering every
// image and buffer barrier given, matching the component design's
// "single command buffer" discipline for each of the three barrier points
// in §4.9 (steps 4, 6 and 11).
func submitBarriers(cmdBuf vk.CommandBuffer, buffers []vk.BufferMemoryBarrier2, images []vk.ImageMemoryBarrier2) {
	if len(buffers) == 0 && len(images) == 0 {
		return
	}
	dep := vk.DependencyInfo{
		SType:                    vk.StructureTypeDependencyInfo,
		BufferMemoryBarrierCount: uint32(len(buffers)),
		PBufferMemoryBarriers:    buffers,
		ImageMemoryBarrierCount:  uint32(len(images)),
		PImageMemoryBarriers:     images,
	}
	vk.CmdPipelineBarrier2KHR(cmdBuf, &dep)
}

// stagingHostWriteBarrier is step 4's per-flush-pair buffer barrier: makes
// the host write into the mapped staging buffer available to the transfer
// copy that reads it (renderer.rs's per-staging-buffer BufferMemoryBarrier2).
func stagingHostWriteBarrier(staging *StagingBuffer) vk.BufferMemoryBarrier2 {
	return vk.BufferMemoryBarrier2{
		SType:               vk.StructureTypeBufferMemoryBarrier2,
		SrcStageMask:        vk.PipelineStageFlags2(vk.PipelineStage2HostBit),
		SrcAccessMask:       vk.AccessFlags2(vk.Access2HostWriteBit),
		DstStageMask:        vk.PipelineStageFlags2(vk.PipelineStage2TransferBit),
		DstAccessMask:       vk.AccessFlags2(vk.Access2TransferReadBit),
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Buffer:              staging.Handle,
		Offset:              0,
		Size:                vk.DeviceSize(staging.Size),
	}
}

func undefinedOr(img *Image, other vk.ImageLayout) vk.ImageLayout {
	if img.IsUndefined {
		return vk.ImageLayoutUndefined
	}
	return other
}

func colorSubresource() vk.ImageSubresourceRange {
	return vk.ImageSubresourceRange{
		AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
		LevelCount: 1,
		LayerCount: 1,
	}
}

// fbAcquireBarrier is execution protocol §4.9 step 4's framebuffer
// transition: ownership transfer from the foreign queue family to
// graphics, old layout UNDEFINED-or-GENERAL depending on is_undefined, new
// layout COLOR_ATTACHMENT_OPTIMAL.
func fbAcquireBarrier(fb *Image, graphicsFamily uint32) vk.ImageMemoryBarrier2 {
	return vk.ImageMemoryBarrier2{
		SType:               vk.StructureTypeImageMemoryBarrier2,
		SrcStageMask:        vk.PipelineStageFlags2(vk.PipelineStage2TopOfPipeBit),
		SrcAccessMask:       0,
		DstStageMask:        vk.PipelineStageFlags2(vk.PipelineStage2ColorAttachmentOutputBit),
		DstAccessMask:       vk.AccessFlags2(vk.Access2ColorAttachmentWriteBit),
		OldLayout:           undefinedOr(fb, vk.ImageLayoutGeneral),
		NewLayout:           vk.ImageLayoutColorAttachmentOptimal,
		SrcQueueFamilyIndex: vk.QueueFamilyForeignExt,
		DstQueueFamilyIndex: graphicsFamily,
		Image:               fb.Handle,
		SubresourceRange:    colorSubresource(),
	}
}

// sampleAcquireBarrier is step 4's per-dma-buf-texture transition: foreign
// to graphics, GENERAL to SHADER_READ_ONLY_OPTIMAL.
func sampleAcquireBarrier(tex *Image, graphicsFamily uint32) vk.ImageMemoryBarrier2 {
	return vk.ImageMemoryBarrier2{
		SType:               vk.StructureTypeImageMemoryBarrier2,
		SrcStageMask:        vk.PipelineStageFlags2(vk.PipelineStage2TopOfPipeBit),
		SrcAccessMask:       0,
		DstStageMask:        vk.PipelineStageFlags2(vk.PipelineStage2FragmentShaderBit),
		DstAccessMask:       vk.AccessFlags2(vk.Access2ShaderSampledReadBit),
		OldLayout:           vk.ImageLayoutGeneral,
		NewLayout:           vk.ImageLayoutShaderReadOnlyOptimal,
		SrcQueueFamilyIndex: vk.QueueFamilyForeignExt,
		DstQueueFamilyIndex: graphicsFamily,
		Image:               tex.Handle,
		SubresourceRange:    colorSubresource(),
	}
}

// flushDstBarrier is step 4's per-flush-pair image transition into
// TRANSFER_DST_OPTIMAL.
func flushDstBarrier(tex *Image) vk.ImageMemoryBarrier2 {
	return vk.ImageMemoryBarrier2{
		SType:         vk.StructureTypeImageMemoryBarrier2,
		SrcStageMask:  vk.PipelineStageFlags2(vk.PipelineStage2TopOfPipeBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags2(vk.PipelineStage2TransferBit),
		DstAccessMask: vk.AccessFlags2(vk.Access2TransferWriteBit),
		OldLayout:     undefinedOr(tex, vk.ImageLayoutShaderReadOnlyOptimal),
		NewLayout:     vk.ImageLayoutTransferDstOptimal,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:            tex.Handle,
		SubresourceRange: colorSubresource(),
	}
}

// flushToShaderReadBarrier is step 6's post-copy transition.
func flushToShaderReadBarrier(tex *Image) vk.ImageMemoryBarrier2 {
	return vk.ImageMemoryBarrier2{
		SType:               vk.StructureTypeImageMemoryBarrier2,
		SrcStageMask:        vk.PipelineStageFlags2(vk.PipelineStage2TransferBit),
		SrcAccessMask:       vk.AccessFlags2(vk.Access2TransferWriteBit),
		DstStageMask:        vk.PipelineStageFlags2(vk.PipelineStage2FragmentShaderBit),
		DstAccessMask:       vk.AccessFlags2(vk.Access2ShaderSampledReadBit),
		OldLayout:           vk.ImageLayoutTransferDstOptimal,
		NewLayout:           vk.ImageLayoutShaderReadOnlyOptimal,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               tex.Handle,
		SubresourceRange:    colorSubresource(),
	}
}

// fbReleaseBarrier is step 11's framebuffer transition back to the foreign
// queue family, GENERAL.
func fbReleaseBarrier(fb *Image, graphicsFamily uint32) vk.ImageMemoryBarrier2 {
	return vk.ImageMemoryBarrier2{
		SType:               vk.StructureTypeImageMemoryBarrier2,
		SrcStageMask:        vk.PipelineStageFlags2(vk.PipelineStage2ColorAttachmentOutputBit),
		SrcAccessMask:       vk.AccessFlags2(vk.Access2ColorAttachmentWriteBit | vk.Access2ColorAttachmentReadBit),
		DstStageMask:        vk.PipelineStageFlags2(vk.PipelineStage2BottomOfPipeBit),
		DstAccessMask:       0,
		OldLayout:           vk.ImageLayoutColorAttachmentOptimal,
		NewLayout:           vk.ImageLayoutGeneral,
		SrcQueueFamilyIndex: graphicsFamily,
		DstQueueFamilyIndex: vk.QueueFamilyForeignExt,
		Image:               fb.Handle,
		SubresourceRange:    colorSubresource(),
	}
}

// sampleReleaseBarrier is step 11's per-sample-texture transition back to
// foreign, GENERAL.
func sampleReleaseBarrier(tex *Image, graphicsFamily uint32) vk.ImageMemoryBarrier2 {
	return vk.ImageMemoryBarrier2{
		SType:               vk.StructureTypeImageMemoryBarrier2,
		SrcStageMask:        vk.PipelineStageFlags2(vk.PipelineStage2FragmentShaderBit),
		SrcAccessMask:       vk.AccessFlags2(vk.Access2ShaderSampledReadBit),
		DstStageMask:        vk.PipelineStageFlags2(vk.PipelineStage2BottomOfPipeBit),
		DstAccessMask:       0,
		OldLayout:           vk.ImageLayoutShaderReadOnlyOptimal,
		NewLayout:           vk.ImageLayoutGeneral,
		SrcQueueFamilyIndex: graphicsFamily,
		DstQueueFamilyIndex: vk.QueueFamilyForeignExt,
		Image:               tex.Handle,
		SubresourceRange:    colorSubresource(),
	}
}
