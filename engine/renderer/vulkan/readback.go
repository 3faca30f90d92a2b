package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/surfacepm/vkgfx/engine/core"
)

// ReadPixels implements component design §4.10. The whole-image fast path
// is a single CopyImageToBuffer blocked on device_wait_idle (logged as a
// slow path per §5); any other rectangle first renders a CopyTexture blit
// into a scratch shm render-target of the requested size, then reads that
// back via the same fast path.
func (r *Renderer) ReadPixels(tex *Image, x, y, w, h, stride int32, fourCC uint32, dst []byte) error {
	if x < 0 || y < 0 || w <= 0 || h <= 0 || stride <= 0 {
		return core.InvalidShmParameters(x, y, w, h, stride)
	}

	wholeImage := x == 0 && y == 0 && uint32(w) == tex.Width && uint32(h) == tex.Height && fourCC == tex.FourCC
	if !wholeImage {
		scratch, err := CreateShmTexture(r.Dev, nil, nil, fourCC, uint32(w), uint32(h), uint32(stride), true)
		if err != nil {
			return err
		}
		defer scratch.Destroy()
		fullSrc := fullQuadFor(tex, x, y, w, h)
		fullDst := unitQuad()
		if err := r.Execute(scratch, []Op{CopyTextureOp{Tex: tex, Source: fullSrc, Target: fullDst}}, nil); err != nil {
			return err
		}
		return r.readbackFastPath(scratch, w, h, stride, dst)
	}
	return r.readbackFastPath(tex, w, h, stride, dst)
}

func (r *Renderer) readbackFastPath(tex *Image, w, h, stride int32, dst []byte) error {
	bpp := int32(bytesPerPixel(r.Dev, tex.FourCC))
	if stride < w*bpp || stride%bpp != 0 {
		return core.New(core.ErrInvalidStride)
	}
	size := int64(stride) * int64(h)
	if size != int64(len(dst)) {
		return core.New(core.ErrInvalidBufferSize)
	}

	staging, err := CreateStagingBuffer(r.Dev, uint64(size))
	if err != nil {
		return err
	}
	defer staging.Destroy()

	cmdBuf, err := r.cmdPool.AllocateBuffer()
	if err != nil {
		return err
	}
	defer r.cmdPool.Release(cmdBuf)

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if res := vk.BeginCommandBuffer(cmdBuf, &beginInfo); res != vk.Success {
		return core.Wrap(core.ErrBeginCommandBuffer, vkResultError(res))
	}

	toTransferSrc := vk.ImageMemoryBarrier2{
		SType:               vk.StructureTypeImageMemoryBarrier2,
		SrcStageMask:        vk.PipelineStageFlags2(vk.PipelineStage2TopOfPipeBit),
		DstStageMask:        vk.PipelineStageFlags2(vk.PipelineStage2TransferBit),
		DstAccessMask:       vk.AccessFlags2(vk.Access2TransferReadBit),
		OldLayout:           vk.ImageLayoutGeneral,
		NewLayout:           vk.ImageLayoutTransferSrcOptimal,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               tex.Handle,
		SubresourceRange:    colorSubresource(),
	}
	submitBarriers(cmdBuf, nil, []vk.ImageMemoryBarrier2{toTransferSrc})

	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{Width: uint32(w), Height: uint32(h), Depth: 1},
		BufferRowLength: uint32(stride) / uint32(bpp),
	}
	vk.CmdCopyImageToBuffer(cmdBuf, tex.Handle, vk.ImageLayoutTransferSrcOptimal, staging.Handle, 1, []vk.BufferImageCopy{region})

	backToGeneral := toTransferSrc
	backToGeneral.OldLayout, backToGeneral.NewLayout = vk.ImageLayoutTransferSrcOptimal, vk.ImageLayoutGeneral
	backToGeneral.SrcStageMask, backToGeneral.SrcAccessMask = vk.PipelineStageFlags2(vk.PipelineStage2TransferBit), vk.AccessFlags2(vk.Access2TransferReadBit)
	backToGeneral.DstStageMask, backToGeneral.DstAccessMask = vk.PipelineStageFlags2(vk.PipelineStage2BottomOfPipeBit), 0
	submitBarriers(cmdBuf, nil, []vk.ImageMemoryBarrier2{backToGeneral})

	if res := vk.EndCommandBuffer(cmdBuf); res != vk.Success {
		return core.Wrap(core.ErrEndCommandBuffer, vkResultError(res))
	}

	cmdInfo := vk.CommandBufferSubmitInfo{SType: vk.StructureTypeCommandBufferSubmitInfo, CommandBuffer: cmdBuf}
	submitInfo := vk.SubmitInfo2{
		SType:                  vk.StructureTypeSubmitInfo2,
		CommandBufferInfoCount: 1,
		PCommandBufferInfos:    []vk.CommandBufferSubmitInfo{cmdInfo},
	}
	if res := vk.QueueSubmit2KHR(r.Dev.GraphicsQueue, 1, []vk.SubmitInfo2{submitInfo}, nil); res != vk.Success {
		return core.Wrap(core.ErrSubmit, vkResultError(res))
	}
	r.waitIdleSlow()

	return staging.Download(func(mapped []byte) { copy(dst, mapped) })
}
