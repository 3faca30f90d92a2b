package vulkan

import (
	vk "github.com/goki/vulkan"
	"golang.org/x/sys/unix"

	"github.com/surfacepm/vkgfx/engine/core"
	"github.com/surfacepm/vkgfx/engine/dmabuf"
)

// Semaphore is a binary Vulkan semaphore recyclable across frames via the
// "temporary payload" import rule (component design §4.8, §9 "sync-file vs
// semaphore duality"): importing a sync-file sets a temporary payload that
// is consumed by the next wait, after which the semaphore reverts to its
// permanent (initially unsignaled) payload and may be reused.
type Semaphore struct {
	dev    *Device
	Handle vk.Semaphore
}

// CreateSemaphore allocates a fresh binary semaphore with no payload set.
func CreateSemaphore(dev *Device) (*Semaphore, error) {
	createInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	var handle vk.Semaphore
	if res := vk.CreateSemaphore(dev.Logical, &createInfo, nil, &handle); res != vk.Success {
		return nil, core.Wrap(core.ErrCreateSemaphore, vkResultError(res))
	}
	return &Semaphore{dev: dev, Handle: handle}, nil
}

// ImportSyncFile imports fd as this semaphore's temporary payload. fd is
// duplicated first since the import call consumes ownership.
func (s *Semaphore) ImportSyncFile(fd int) error {
	dupFD, err := dupFd(fd)
	if err != nil {
		return core.Wrap(core.ErrDupfd, err)
	}
	importInfo := vk.ImportSemaphoreFdInfoKHR{
		SType:      vk.StructureTypeImportSemaphoreFdInfoKhr,
		Semaphore:  s.Handle,
		Flags:      vk.SemaphoreImportFlags(vk.SemaphoreImportTemporaryBit),
		HandleType: vk.ExternalSemaphoreHandleTypeSyncFdBit,
		Fd:         vk.Fd(dupFD),
	}
	if res := vk.ImportSemaphoreFdKHR(s.dev.Logical, &importInfo); res != vk.Success {
		return core.Wrap(core.ErrImportSyncFile, vkResultError(res))
	}
	return nil
}

// ImportDmaBufReadFence exports a read sync-file from the first plane of
// buf and imports it into s as the wait payload, per execution protocol
// step 13. The other planes of buf are not exported or waited on.
func (s *Semaphore) ImportDmaBufReadFence(buf *dmabuf.DmaBuf) error {
	fd, err := dmabuf.ExportSyncFile(buf.Planes[0].FD, dmabuf.SyncRead)
	if err != nil {
		return core.Wrap(core.ErrIoctlExportSyncFile, err)
	}
	defer unix.Close(fd)
	return s.ImportSyncFile(fd)
}

// ImportDmaBufWriteFence is the write-role equivalent of
// ImportDmaBufReadFence, used for the framebuffer's wait semaphore.
func (s *Semaphore) ImportDmaBufWriteFence(buf *dmabuf.DmaBuf) error {
	fd, err := dmabuf.ExportSyncFile(buf.Planes[0].FD, dmabuf.SyncWrite)
	if err != nil {
		return core.Wrap(core.ErrIoctlExportSyncFile, err)
	}
	defer unix.Close(fd)
	return s.ImportSyncFile(fd)
}

// Destroy releases the semaphore.
func (s *Semaphore) Destroy() {
	vk.DestroySemaphore(s.dev.Logical, s.Handle, nil)
}
