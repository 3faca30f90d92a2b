package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
)

func TestUndefinedOrPicksUndefinedLayout(t *testing.T) {
	img := &Image{IsUndefined: true}
	if got := undefinedOr(img, vk.ImageLayoutGeneral); got != vk.ImageLayoutUndefined {
		t.Fatalf("undefinedOr() = %v, want ImageLayoutUndefined", got)
	}
}

func TestUndefinedOrPicksOtherLayout(t *testing.T) {
	img := &Image{IsUndefined: false}
	if got := undefinedOr(img, vk.ImageLayoutGeneral); got != vk.ImageLayoutGeneral {
		t.Fatalf("undefinedOr() = %v, want ImageLayoutGeneral", got)
	}
}

const testGraphicsFamily = uint32(2)

func TestFbAcquireBarrierTransfersFromForeign(t *testing.T) {
	fb := &Image{IsUndefined: false}
	b := fbAcquireBarrier(fb, testGraphicsFamily)
	if b.SrcQueueFamilyIndex != vk.QueueFamilyForeignExt {
		t.Errorf("SrcQueueFamilyIndex = %v, want QueueFamilyForeignExt", b.SrcQueueFamilyIndex)
	}
	if b.DstQueueFamilyIndex != testGraphicsFamily {
		t.Errorf("DstQueueFamilyIndex = %v, want graphics family %v", b.DstQueueFamilyIndex, testGraphicsFamily)
	}
	if b.NewLayout != vk.ImageLayoutColorAttachmentOptimal {
		t.Errorf("NewLayout = %v, want ColorAttachmentOptimal", b.NewLayout)
	}
	if b.OldLayout != vk.ImageLayoutGeneral {
		t.Errorf("OldLayout = %v, want General for a defined framebuffer", b.OldLayout)
	}
}

func TestFbAcquireBarrierUndefinedFramebuffer(t *testing.T) {
	fb := &Image{IsUndefined: true}
	b := fbAcquireBarrier(fb, testGraphicsFamily)
	if b.OldLayout != vk.ImageLayoutUndefined {
		t.Errorf("OldLayout = %v, want Undefined for an undefined framebuffer", b.OldLayout)
	}
}

func TestFbReleaseBarrierTransfersToForeign(t *testing.T) {
	fb := &Image{}
	b := fbReleaseBarrier(fb, testGraphicsFamily)
	if b.SrcQueueFamilyIndex != testGraphicsFamily {
		t.Errorf("SrcQueueFamilyIndex = %v, want graphics family %v", b.SrcQueueFamilyIndex, testGraphicsFamily)
	}
	if b.DstQueueFamilyIndex != vk.QueueFamilyForeignExt {
		t.Errorf("DstQueueFamilyIndex = %v, want QueueFamilyForeignExt", b.DstQueueFamilyIndex)
	}
	if b.NewLayout != vk.ImageLayoutGeneral {
		t.Errorf("NewLayout = %v, want General", b.NewLayout)
	}
}

func TestSampleAcquireAndReleaseAreInverseTransfers(t *testing.T) {
	tex := &Image{}
	acquire := sampleAcquireBarrier(tex, testGraphicsFamily)
	release := sampleReleaseBarrier(tex, testGraphicsFamily)

	if acquire.SrcQueueFamilyIndex != vk.QueueFamilyForeignExt {
		t.Errorf("acquire.SrcQueueFamilyIndex = %v, want Foreign", acquire.SrcQueueFamilyIndex)
	}
	if acquire.DstQueueFamilyIndex != testGraphicsFamily {
		t.Errorf("acquire.DstQueueFamilyIndex = %v, want graphics family %v", acquire.DstQueueFamilyIndex, testGraphicsFamily)
	}
	if release.SrcQueueFamilyIndex != testGraphicsFamily {
		t.Errorf("release.SrcQueueFamilyIndex = %v, want graphics family %v", release.SrcQueueFamilyIndex, testGraphicsFamily)
	}
	if release.DstQueueFamilyIndex != vk.QueueFamilyForeignExt {
		t.Errorf("release.DstQueueFamilyIndex = %v, want Foreign", release.DstQueueFamilyIndex)
	}
	if acquire.NewLayout != release.OldLayout {
		t.Errorf("acquire.NewLayout %v != release.OldLayout %v", acquire.NewLayout, release.OldLayout)
	}
}

func TestFlushBarriersStayOnGraphicsQueue(t *testing.T) {
	tex := &Image{}
	dst := flushDstBarrier(tex)
	toShader := flushToShaderReadBarrier(tex)

	if dst.SrcQueueFamilyIndex != vk.QueueFamilyIgnored || dst.DstQueueFamilyIndex != vk.QueueFamilyIgnored {
		t.Errorf("flushDstBarrier changes queue family ownership, want none")
	}
	if toShader.OldLayout != dst.NewLayout {
		t.Errorf("toShader.OldLayout %v != dst.NewLayout %v", toShader.OldLayout, dst.NewLayout)
	}
	if toShader.NewLayout != vk.ImageLayoutShaderReadOnlyOptimal {
		t.Errorf("toShader.NewLayout = %v, want ShaderReadOnlyOptimal", toShader.NewLayout)
	}
}

func TestStagingHostWriteBarrierCoversWholeBuffer(t *testing.T) {
	staging := &StagingBuffer{Size: 4096}
	b := stagingHostWriteBarrier(staging)
	if b.SrcStageMask != vk.PipelineStageFlags2(vk.PipelineStage2HostBit) {
		t.Errorf("SrcStageMask = %v, want HostBit", b.SrcStageMask)
	}
	if b.DstStageMask != vk.PipelineStageFlags2(vk.PipelineStage2TransferBit) {
		t.Errorf("DstStageMask = %v, want TransferBit", b.DstStageMask)
	}
	if b.Size != vk.DeviceSize(staging.Size) {
		t.Errorf("Size = %v, want %v", b.Size, staging.Size)
	}
}

func TestSubmitBarriersNoOpOnEmptySlice(t *testing.T) {
	// Must not panic or call into the Vulkan loader when there is nothing to submit.
	submitBarriers(vk.CommandBuffer(nil), nil, nil)
}
