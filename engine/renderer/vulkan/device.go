package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/surfacepm/vkgfx/engine/core"
)

// requiredDeviceExtensions matches component design §4.2 step 2. Timeline
// semaphores and sampler-ycbcr are probed for but not required; everything
// else here is load-bearing for dma-buf import/export and dynamic
// rendering and its absence fails device construction outright.
var requiredDeviceExtensions = []string{
	"VK_KHR_external_memory_fd",
	"VK_KHR_external_semaphore_fd",
	"VK_KHR_external_fence_fd",
	"VK_EXT_image_drm_format_modifier",
	"VK_KHR_dynamic_rendering",
	"VK_KHR_synchronization2",
	"VK_KHR_push_descriptor",
	"VK_EXT_physical_device_drm",
}

var optionalDeviceExtensions = []string{
	"VK_KHR_timeline_semaphore",
	"VK_KHR_sampler_ycbcr_conversion",
}

// Device owns a physical/logical device pair selected to match a target
// DRM render node, plus the format/modifier table queried from it
// (component design §4.2).
type Device struct {
	Physical vk.PhysicalDevice
	Logical  vk.Device

	GraphicsQueueFamily uint32
	GraphicsQueue       vk.Queue

	RenderNodePath string
	DevT           uint64

	Formats map[uint32]FormatDescriptor

	TimelineSemaphores bool
	SamplerYcbcr       bool
}

// makedev mirrors glibc's makedev(3) encoding, used to compare a
// VkPhysicalDeviceDrmPropertiesEXT (major, minor) pair against the dev_t of
// an already-opened DRM fd.
func makedev(major, minor uint32) uint64 {
	return (uint64(major) << 8) | uint64(minor&0xff) | ((uint64(minor) &^ 0xff) << 12)
}

// NewDevice selects the physical device whose primary or render DRM node
// matches targetDevT, builds a logical device with every required
// extension enabled, and queries its format/modifier table.
func NewDevice(inst *Instance, targetDevT uint64) (*Device, error) {
	var count uint32
	if res := vk.EnumeratePhysicalDevices(inst.Handle, &count, nil); res != vk.Success {
		return nil, core.Wrap(core.ErrEnumeratePhysicalDevices, vkResultError(res))
	}
	phys := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(inst.Handle, &count, phys); res != vk.Success {
		return nil, core.Wrap(core.ErrEnumeratePhysicalDevices, vkResultError(res))
	}

	var chosen vk.PhysicalDevice
	var chosenDrm vk.PhysicalDeviceDrmPropertiesEXT
	found := false
	for _, pd := range phys {
		drmProps := vk.PhysicalDeviceDrmPropertiesEXT{
			SType: vk.StructureTypePhysicalDeviceDrmPropertiesEXT,
		}
		props2 := vk.PhysicalDeviceProperties2{
			SType: vk.StructureTypePhysicalDeviceProperties2,
			PNext: unsafe.Pointer(&drmProps),
		}
		vk.GetPhysicalDeviceProperties2(pd, &props2)
		drmProps.Deref()

		if drmProps.HasPrimary.VkBool() {
			if makedev(uint32(drmProps.PrimaryMajor), uint32(drmProps.PrimaryMinor)) == targetDevT {
				chosen, chosenDrm, found = pd, drmProps, true
				break
			}
		}
		if drmProps.HasRender.VkBool() {
			if makedev(uint32(drmProps.RenderMajor), uint32(drmProps.RenderMinor)) == targetDevT {
				chosen, chosenDrm, found = pd, drmProps, true
				break
			}
		}
	}
	if !found {
		return nil, core.NoDeviceFound(targetDevT)
	}

	var extCount uint32
	if res := vk.EnumerateDeviceExtensionProperties(chosen, "", &extCount, nil); res != vk.Success {
		return nil, core.Wrap(core.ErrDeviceExtensions, vkResultError(res))
	}
	extProps := make([]vk.ExtensionProperties, extCount)
	if res := vk.EnumerateDeviceExtensionProperties(chosen, "", &extCount, extProps); res != vk.Success {
		return nil, core.Wrap(core.ErrDeviceExtensions, vkResultError(res))
	}
	have := make(map[string]bool, len(extProps))
	for i := range extProps {
		extProps[i].Deref()
		have[vk.ToString(extProps[i].ExtensionName[:])] = true
	}

	enabled := make([]string, 0, len(requiredDeviceExtensions)+len(optionalDeviceExtensions))
	for _, ext := range requiredDeviceExtensions {
		if !have[ext] {
			return nil, core.MissingExtension(core.ErrMissingDeviceExtension, ext)
		}
		enabled = append(enabled, ext)
	}
	timelineSemaphores := have["VK_KHR_timeline_semaphore"]
	samplerYcbcr := have["VK_KHR_sampler_ycbcr_conversion"]
	if timelineSemaphores {
		enabled = append(enabled, "VK_KHR_timeline_semaphore")
	}
	if samplerYcbcr {
		enabled = append(enabled, "VK_KHR_sampler_ycbcr_conversion")
	}

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(chosen, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(chosen, &queueFamilyCount, queueFamilies)

	graphicsFamily := uint32(0xffffffff)
	for i := range queueFamilies {
		queueFamilies[i].Deref()
		if vk.QueueFlagBits(queueFamilies[i].QueueFlags)&vk.QueueGraphicsBit != 0 {
			graphicsFamily = uint32(i)
			break
		}
	}
	if graphicsFamily == 0xffffffff {
		return nil, core.New(core.ErrNoGraphicsQueue)
	}

	queuePriority := float32(1.0)
	queueCreateInfo := vk.DeviceQueueCreateInfo{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: graphicsFamily,
		QueueCount:       1,
		PQueuePriorities: []float32{queuePriority},
	}

	dynamicRendering := vk.PhysicalDeviceDynamicRenderingFeatures{
		SType:            vk.StructureTypePhysicalDeviceDynamicRenderingFeatures,
		DynamicRendering: vk.True,
	}
	sync2 := vk.PhysicalDeviceSynchronization2Features{
		SType:            vk.StructureTypePhysicalDeviceSynchronization2Features,
		PNext:            unsafe.Pointer(&dynamicRendering),
		Synchronization2: vk.True,
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		PNext:                   unsafe.Pointer(&sync2),
		QueueCreateInfoCount:    1,
		PQueueCreateInfos:       []vk.DeviceQueueCreateInfo{queueCreateInfo},
		EnabledExtensionCount:   uint32(len(enabled)),
		PpEnabledExtensionNames: vk.SafeStrings(enabled),
	}

	var logical vk.Device
	if res := vk.CreateDevice(chosen, &deviceCreateInfo, nil, &logical); res != vk.Success {
		return nil, core.Wrap(core.ErrCreateDevice, vkResultError(res))
	}

	var queue vk.Queue
	vk.GetDeviceQueue(logical, graphicsFamily, 0, &queue)

	renderNodePath, err := renderNodePathFromDrmProps(chosenDrm)
	if err != nil {
		vk.DestroyDevice(logical, nil)
		return nil, err
	}

	d := &Device{
		Physical:            chosen,
		Logical:             logical,
		GraphicsQueueFamily: graphicsFamily,
		GraphicsQueue:       queue,
		RenderNodePath:      renderNodePath,
		DevT:                targetDevT,
		TimelineSemaphores:  timelineSemaphores,
		SamplerYcbcr:        samplerYcbcr,
	}

	formats, err := queryFormatModifiers(chosen)
	if err != nil {
		vk.DestroyDevice(logical, nil)
		return nil, err
	}
	xrgb, ok := formats[FourCCXRGB8888]
	if !ok || !formatSupportsReadWrite(xrgb) {
		vk.DestroyDevice(logical, nil)
		return nil, core.New(core.ErrXRGB8888)
	}
	d.Formats = formats

	return d, nil
}

func formatSupportsReadWrite(fd FormatDescriptor) bool {
	for _, m := range fd.Modifiers {
		if m.CanRead() && m.CanWrite() {
			return true
		}
	}
	return false
}

func renderNodePathFromDrmProps(drm vk.PhysicalDeviceDrmPropertiesEXT) (string, error) {
	if !drm.HasRender.VkBool() {
		return "", core.New(core.ErrNoRenderNode)
	}
	devT := makedev(uint32(drm.RenderMajor), uint32(drm.RenderMinor))
	path, err := lookupRenderNodePath(devT)
	if err != nil {
		return "", core.Wrap(core.ErrFetchRenderNode, err)
	}
	return path, nil
}

// queryFormatModifiers implements component design §4.2 step 4: for each
// candidate FourCC, enumerate its drm-format-modifier properties and probe
// texture/render support per modifier via
// vkGetPhysicalDeviceImageFormatProperties2 with a
// VkPhysicalDeviceImageDrmFormatModifierInfoEXT chained in.
func queryFormatModifiers(pd vk.PhysicalDevice) (map[uint32]FormatDescriptor, error) {
	result := make(map[uint32]FormatDescriptor, len(candidateFormats))

	for _, cand := range candidateFormats {
		modProps := vk.DrmFormatModifierPropertiesListEXT{
			SType: vk.StructureTypeDrmFormatModifierPropertiesListEXT,
		}
		formatProps2 := vk.FormatProperties2{
			SType: vk.StructureTypeFormatProperties2,
			PNext: unsafe.Pointer(&modProps),
		}
		vk.GetPhysicalDeviceFormatProperties2(pd, cand.VkFormat, &formatProps2)
		modProps.Deref()

		count := modProps.DrmFormatModifierCount
		if count == 0 {
			continue
		}
		entries := make([]vk.DrmFormatModifierPropertiesEXT, count)
		modProps.PDrmFormatModifierProperties = &entries[0]
		vk.GetPhysicalDeviceFormatProperties2(pd, cand.VkFormat, &formatProps2)

		descriptor := FormatDescriptor{
			FourCC:        cand.FourCC,
			VkFormat:      cand.VkFormat,
			BytesPerPixel: cand.BytesPerPixel,
		}

		for i := range entries {
			entries[i].Deref()
			modifier := entries[i].DrmFormatModifier

			texExtent := probeModifierUse(pd, cand.VkFormat, modifier, vk.ImageUsageFlags(vk.ImageUsageSampledBit))
			renderExtent := probeModifierUse(pd, cand.VkFormat, modifier, vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit))
			if texExtent == nil && renderExtent == nil {
				continue
			}
			descriptor.Modifiers = append(descriptor.Modifiers, ModifierInfo{
				Modifier:          modifier,
				TextureMaxExtents: texExtent,
				RenderMaxExtents:  renderExtent,
			})
		}

		result[cand.FourCC] = descriptor
	}

	return result, nil
}

func probeModifierUse(pd vk.PhysicalDevice, format vk.Format, modifier uint64, usage vk.ImageUsageFlags) *Extent {
	modifierInfo := vk.PhysicalDeviceImageDrmFormatModifierInfoEXT{
		SType:                vk.StructureTypePhysicalDeviceImageDrmFormatModifierInfoEXT,
		DrmFormatModifier:    modifier,
		SharingMode:          vk.SharingModeExclusive,
	}
	imageFormatInfo := vk.PhysicalDeviceImageFormatInfo2{
		SType:  vk.StructureTypePhysicalDeviceImageFormatInfo2,
		PNext:  unsafe.Pointer(&modifierInfo),
		Format: format,
		Type:   vk.ImageType2d,
		Tiling: vk.ImageTilingDrmFormatModifierExt,
		Usage:  usage,
	}
	imageFormatProps := vk.ImageFormatProperties2{
		SType: vk.StructureTypeImageFormatProperties2,
	}
	res := vk.GetPhysicalDeviceImageFormatProperties2(pd, &imageFormatInfo, &imageFormatProps)
	if res != vk.Success {
		return nil
	}
	imageFormatProps.Deref()
	imageFormatProps.ImageFormatProperties.Deref()
	ext := imageFormatProps.ImageFormatProperties.MaxExtent
	return &Extent{Width: ext.Width, Height: ext.Height}
}

// Destroy releases the logical device. The physical device handle needs no
// explicit destruction.
func (d *Device) Destroy() {
	vk.DestroyDevice(d.Logical, nil)
}
