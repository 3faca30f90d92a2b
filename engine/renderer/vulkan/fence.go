package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/surfacepm/vkgfx/engine/core"
)

// Fence is an exportable-as-sync-file Vulkan fence, used as the release
// fence of a submitted frame (component design §4.8, §4.9 step 14).
type Fence struct {
	dev    *Device
	Handle vk.Fence
}

// CreateExportableFence allocates a fence with the sync-fd external handle
// type pre-declared, unsignaled.
func CreateExportableFence(dev *Device) (*Fence, error) {
	exportInfo := vk.ExportFenceCreateInfo{
		SType:      vk.StructureTypeExportFenceCreateInfo,
		HandleTypes: vk.ExternalFenceHandleTypeSyncFdBit,
	}
	createInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		PNext: unsafe.Pointer(&exportInfo),
	}
	var handle vk.Fence
	if res := vk.CreateFence(dev.Logical, &createInfo, nil, &handle); res != vk.Success {
		return nil, core.Wrap(core.ErrCreateFence, vkResultError(res))
	}
	return &Fence{dev: dev, Handle: handle}, nil
}

// ExportSyncFile returns a file descriptor representing this fence's
// signal. The fence itself is unaffected and remains valid until Destroy.
func (f *Fence) ExportSyncFile() (int, error) {
	getInfo := vk.FenceGetFdInfoKHR{
		SType:      vk.StructureTypeFenceGetFdInfoKhr,
		Fence:      f.Handle,
		HandleType: vk.ExternalFenceHandleTypeSyncFdBit,
	}
	var fd vk.Fd
	if res := vk.GetFenceFdKHR(f.dev.Logical, &getInfo, &fd); res != vk.Success {
		return -1, core.Wrap(core.ErrExportSyncFile, vkResultError(res))
	}
	return int(fd), nil
}

// Destroy releases the fence.
func (f *Fence) Destroy() {
	vk.DestroyFence(f.dev.Logical, f.Handle, nil)
}
