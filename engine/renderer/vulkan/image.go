package vulkan

import (
	"unsafe"

	"github.com/google/uuid"
	vk "github.com/goki/vulkan"

	"github.com/surfacepm/vkgfx/engine/core"
	"github.com/surfacepm/vkgfx/engine/dmabuf"
)

// Image is the single concrete backing for every GfxTexture/GfxFramebuffer
// exposed across the GfxContext boundary (component design §9, "opaque
// backend casting"): dma-buf-imported or shm-uploaded, sampled or
// render-attached, or both.
type Image struct {
	ID uuid.UUID

	dev *Device

	Handle vk.Image
	memory []vk.DeviceMemory // one per dma-buf plane (only memory[0] is bound); one entry for shm images

	SampleView vk.ImageView // valid when the image may be sampled (texture role)
	RenderView vk.ImageView // valid when the image may be rendered into (framebuffer role)

	Width, Height uint32
	FourCC        uint32
	Format        vk.Format
	Modifier      uint64

	// IsUndefined tracks whether the image's Vulkan layout is still
	// VK_IMAGE_LAYOUT_UNDEFINED, per the Storage-layouts step of the
	// execution protocol (§4.9 step 16) and the "undefined first use"
	// scenario (§8).
	IsUndefined bool

	// Shm-backed bookkeeping (nil for pure dma-buf images).
	shm *shmState

	// DmaBuf holds the originating description for planes that must be
	// re-synced via sync-file import/export (nil for shm images).
	DmaBuf *dmabuf.DmaBuf
}

type shmState struct {
	stride  uint32
	staging *StagingBuffer
	toFlush []byte // pending upload bytes, nil once flushed
}

// Stride returns the shm row stride, or 0 for a pure dma-buf image.
func (img *Image) Stride() uint32 {
	if img.shm == nil {
		return 0
	}
	return img.shm.stride
}

// HasPendingUpload reports whether this shm image has bytes queued for
// upload at the next execute that references it.
func (img *Image) HasPendingUpload() bool {
	return img.shm != nil && img.shm.toFlush != nil
}

// ImportDmaBuf implements component design §4.4's dma-buf import path:
// validate plane count and modifier support for the requested usage, then
// build an externally-backed image importing one VkDeviceMemory per plane.
func ImportDmaBuf(dev *Device, buf *dmabuf.DmaBuf, forRender bool) (*Image, error) {
	if buf.Width <= 0 || buf.Height <= 0 {
		return nil, core.New(core.ErrNonPositiveImageSize)
	}
	const maxDim = 1 << 14
	if buf.Width > maxDim || buf.Height > maxDim {
		return nil, core.New(core.ErrImageTooLarge)
	}

	fd, ok := dev.Formats[buf.FourCC]
	if !ok {
		return nil, core.New(core.ErrFormatNotSupported)
	}
	var modInfo *ModifierInfo
	for i := range fd.Modifiers {
		if fd.Modifiers[i].Modifier == buf.Modifier {
			modInfo = &fd.Modifiers[i]
			break
		}
	}
	if modInfo == nil {
		return nil, core.New(core.ErrModifierNotSupported)
	}
	if forRender && !modInfo.CanWrite() {
		return nil, core.New(core.ErrModifierUseNotSupported)
	}
	if !forRender && !modInfo.CanRead() {
		return nil, core.New(core.ErrModifierUseNotSupported)
	}

	if len(buf.Planes) == 0 || len(buf.Planes) > maxDmaBufPlanes {
		return nil, core.New(core.ErrBadPlaneCount)
	}

	planeLayouts := make([]vk.SubresourceLayout, len(buf.Planes))
	for i, p := range buf.Planes {
		planeLayouts[i] = vk.SubresourceLayout{
			Offset:     vk.DeviceSize(p.Offset),
			RowPitch:   vk.DeviceSize(p.Stride),
		}
	}

	modifierExplicit := vk.ImageDrmFormatModifierExplicitCreateInfoEXT{
		SType:                vk.StructureTypeImageDrmFormatModifierExplicitCreateInfoEXT,
		DrmFormatModifier:    buf.Modifier,
		DrmFormatModifierPlaneCount: uint32(len(planeLayouts)),
		PPlaneLayouts:        &planeLayouts[0],
	}
	externalMemInfo := vk.ExternalMemoryImageCreateInfo{
		SType:      vk.StructureTypeExternalMemoryImageCreateInfo,
		PNext:      unsafe.Pointer(&modifierExplicit),
		HandleTypes: vk.ExternalMemoryHandleTypeFlags(vk.ExternalMemoryHandleTypeDmaBufBitExt),
	}

	usage := vk.ImageUsageFlags(vk.ImageUsageSampledBit)
	if forRender {
		usage = vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
	}

	imageInfo := vk.ImageCreateInfo{
		SType:       vk.StructureTypeImageCreateInfo,
		PNext:       unsafe.Pointer(&externalMemInfo),
		ImageType:   vk.ImageType2d,
		Format:      fd.VkFormat,
		Extent:      vk.Extent3D{Width: uint32(buf.Width), Height: uint32(buf.Height), Depth: 1},
		MipLevels:   1,
		ArrayLayers: 1,
		Samples:     vk.SampleCount1Bit,
		Tiling:      vk.ImageTilingDrmFormatModifierExt,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}

	var handle vk.Image
	if res := vk.CreateImage(dev.Logical, &imageInfo, nil, &handle); res != vk.Success {
		return nil, core.Wrap(core.ErrCreateImage, vkResultError(res))
	}

	memories := make([]vk.DeviceMemory, len(buf.Planes))
	for i, p := range buf.Planes {
		mem, err := importPlaneMemory(dev, handle, p.FD)
		if err != nil {
			for j := 0; j < i; j++ {
				vk.FreeMemory(dev.Logical, memories[j], nil)
			}
			vk.DestroyImage(dev.Logical, handle, nil)
			return nil, err
		}
		memories[i] = mem
	}
	if res := vk.BindImageMemory(dev.Logical, handle, memories[0], 0); res != vk.Success {
		for _, m := range memories {
			vk.FreeMemory(dev.Logical, m, nil)
		}
		vk.DestroyImage(dev.Logical, handle, nil)
		return nil, core.Wrap(core.ErrBindImageMemory, vkResultError(res))
	}

	img := &Image{
		ID:          uuid.New(),
		dev:         dev,
		Handle:      handle,
		memory:      memories,
		Width:       uint32(buf.Width),
		Height:      uint32(buf.Height),
		FourCC:      buf.FourCC,
		Format:      fd.VkFormat,
		Modifier:    buf.Modifier,
		IsUndefined: true,
		DmaBuf:      buf,
	}
	if err := img.createViews(forRender, !forRender); err != nil {
		img.Destroy()
		return nil, err
	}
	return img, nil
}

func importPlaneMemory(dev *Device, handle vk.Image, planeFD int) (vk.DeviceMemory, error) {
	fdProps := vk.MemoryFdPropertiesKHR{SType: vk.StructureTypeMemoryFdPropertiesKhr}
	if res := vk.GetMemoryFdPropertiesKHR(dev.Logical, vk.ExternalMemoryHandleTypeDmaBufBitExt, vk.Fd(planeFD), &fdProps); res != vk.Success {
		return nil, core.Wrap(core.ErrMemoryFdProperties, vkResultError(res))
	}
	fdProps.Deref()

	var memReqs vk.MemoryRequirements2
	memReqs.SType = vk.StructureTypeMemoryRequirements2
	imgReqsInfo := vk.ImageMemoryRequirementsInfo2{
		SType: vk.StructureTypeImageMemoryRequirementsInfo2,
		Image: handle,
	}
	vk.GetImageMemoryRequirements2(dev.Logical, &imgReqsInfo, &memReqs)
	memReqs.Deref()
	memReqs.MemoryRequirements.Deref()

	memType, _, err := findMemoryType(dev.Physical, memReqs.MemoryRequirements.MemoryTypeBits&fdProps.MemoryTypeBits, 0)
	if err != nil {
		return nil, core.Wrap(core.ErrMemoryType, err)
	}

	dupFD, err := dupFd(planeFD)
	if err != nil {
		return nil, core.Wrap(core.ErrDupfd, err)
	}

	importInfo := vk.ImportMemoryFdInfoKHR{
		SType:      vk.StructureTypeImportMemoryFdInfoKhr,
		HandleType: vk.ExternalMemoryHandleTypeDmaBufBitExt,
		Fd:         vk.Fd(dupFD),
	}
	dedicatedInfo := vk.MemoryDedicatedAllocateInfo{
		SType: vk.StructureTypeMemoryDedicatedAllocateInfo,
		PNext: unsafe.Pointer(&importInfo),
		Image: handle,
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		PNext:           unsafe.Pointer(&dedicatedInfo),
		AllocationSize:  memReqs.MemoryRequirements.Size,
		MemoryTypeIndex: memType,
	}
	var mem vk.DeviceMemory
	if res := vk.AllocateMemory(dev.Logical, &allocInfo, nil, &mem); res != vk.Success {
		return nil, core.Wrap(core.ErrAllocateMemory, vkResultError(res))
	}
	return mem, nil
}

// CreateShmTexture implements component design §4.4's shm-texture path.
// old, when non-nil and matching dimensions/format/stride, is reused (its
// staging buffer and device image are kept, only the pending upload bytes
// change) rather than reallocated, per the GfxContext.shmem_texture
// contract (§6).
func CreateShmTexture(dev *Device, old *Image, pixels []byte, fourCC uint32, width, height, stride uint32, forRender bool) (*Image, error) {
	fd, ok := dev.Formats[fourCC]
	if !ok {
		return nil, core.New(core.ErrFormatNotSupported)
	}
	if fd.BytesPerPixel == 0 || stride%fd.BytesPerPixel != 0 || stride < width*fd.BytesPerPixel {
		return nil, core.InvalidShmParameters(0, 0, int32(width), int32(height), int32(stride))
	}
	size, overflow := checkedMul(uint64(stride), uint64(height))
	if overflow {
		return nil, core.New(core.ErrShmOverflow)
	}

	if old != nil && old.shm != nil && old.Width == width && old.Height == height &&
		old.FourCC == fourCC && old.shm.stride == stride {
		if pixels != nil {
			old.shm.toFlush = append([]byte(nil), pixels...)
		}
		return old, nil
	}

	hasModifierSupport := false
	for _, m := range fd.Modifiers {
		if (forRender && m.CanWrite()) || (!forRender && m.CanRead()) {
			hasModifierSupport = true
			break
		}
	}
	if !hasModifierSupport {
		return nil, core.New(core.ErrShmNotSupported)
	}

	usage := vk.ImageUsageFlags(vk.ImageUsageSampledBit | vk.ImageUsageTransferDstBit)
	if forRender {
		usage |= vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
	}
	imageInfo := vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        fd.VkFormat,
		Extent:        vk.Extent3D{Width: width, Height: height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	var handle vk.Image
	if res := vk.CreateImage(dev.Logical, &imageInfo, nil, &handle); res != vk.Success {
		return nil, core.Wrap(core.ErrCreateImage, vkResultError(res))
	}

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(dev.Logical, handle, &memReqs)
	memReqs.Deref()
	memType, _, err := findMemoryType(dev.Physical, memReqs.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		vk.DestroyImage(dev.Logical, handle, nil)
		return nil, core.Wrap(core.ErrMemoryType, err)
	}
	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}
	var mem vk.DeviceMemory
	if res := vk.AllocateMemory(dev.Logical, &allocInfo, nil, &mem); res != vk.Success {
		vk.DestroyImage(dev.Logical, handle, nil)
		return nil, core.Wrap(core.ErrAllocateMemory, vkResultError(res))
	}
	if res := vk.BindImageMemory(dev.Logical, handle, mem, 0); res != vk.Success {
		vk.FreeMemory(dev.Logical, mem, nil)
		vk.DestroyImage(dev.Logical, handle, nil)
		return nil, core.Wrap(core.ErrBindImageMemory, vkResultError(res))
	}

	staging, err := CreateStagingBuffer(dev, size)
	if err != nil {
		vk.FreeMemory(dev.Logical, mem, nil)
		vk.DestroyImage(dev.Logical, handle, nil)
		return nil, err
	}

	img := &Image{
		ID:          uuid.New(),
		dev:         dev,
		Handle:      handle,
		memory:      []vk.DeviceMemory{mem},
		Width:       width,
		Height:      height,
		FourCC:      fourCC,
		Format:      fd.VkFormat,
		IsUndefined: true,
		shm: &shmState{
			stride:  stride,
			staging: staging,
		},
	}
	if pixels != nil {
		img.shm.toFlush = append([]byte(nil), pixels...)
	}
	if err := img.createViews(forRender, true); err != nil {
		img.Destroy()
		return nil, err
	}
	return img, nil
}

func checkedMul(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	r := a * b
	return r, r/a != b
}

func (img *Image) createViews(renderView, sampleView bool) error {
	if sampleView {
		v, err := createImageView(img.dev, img.Handle, img.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return err
		}
		img.SampleView = v
	}
	if renderView {
		v, err := createImageView(img.dev, img.Handle, img.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit))
		if err != nil {
			return err
		}
		img.RenderView = v
	}
	return nil
}

func createImageView(dev *Device, handle vk.Image, format vk.Format, aspect vk.ImageAspectFlags) (vk.ImageView, error) {
	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    handle,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     aspect,
			LevelCount:     1,
			LayerCount:     1,
		},
	}
	var view vk.ImageView
	if res := vk.CreateImageView(dev.Logical, &viewInfo, nil, &view); res != vk.Success {
		return nil, core.Wrap(core.ErrCreateImageView, vkResultError(res))
	}
	return view, nil
}

// Destroy releases every Vulkan object owned by the image: views, staging
// buffer (if shm), and per-plane device memory.
func (img *Image) Destroy() {
	if img.SampleView != nil {
		vk.DestroyImageView(img.dev.Logical, img.SampleView, nil)
	}
	if img.RenderView != nil && img.RenderView != img.SampleView {
		vk.DestroyImageView(img.dev.Logical, img.RenderView, nil)
	}
	if img.shm != nil && img.shm.staging != nil {
		img.shm.staging.Destroy()
	}
	vk.DestroyImage(img.dev.Logical, img.Handle, nil)
	for _, m := range img.memory {
		vk.FreeMemory(img.dev.Logical, m, nil)
	}
}
