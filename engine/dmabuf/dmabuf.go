// Package dmabuf models the external dma-buf objects the renderer imports
// as images, and the two ioctls used to bridge them to Vulkan's explicit
// semaphore/fence world: DMA_BUF_IOCTL_EXPORT_SYNC_FILE and
// DMA_BUF_IOCTL_IMPORT_SYNC_FILE. Neither ioctl has a wrapper anywhere in
// the reachable ecosystem, so this package talks to the kernel directly
// through golang.org/x/sys/unix's raw ioctl syscall (see DESIGN.md for why
// no third-party library could serve this one corner).
package dmabuf

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/surfacepm/vkgfx/engine/core"
)

// Sync direction flags for the export/import ioctls, as specified by the
// kernel uapi (linux/dma-buf.h).
const (
	SyncRead  uint32 = 1
	SyncWrite uint32 = 2
)

// ioctl request codes computed from the kernel's _IOWR/_IOW encoding of
// DMA_BUF_BASE='b', struct dma_buf_{export,import}_sync_file { u32 flags;
// s32 fd; } (8 bytes). These are stable kernel uapi values, not
// implementation-defined, so hardcoding them here is the idiomatic
// approach taken by every non-cgo Go project that talks to this ioctl.
const (
	ioctlExportSyncFile = 0xc0086202
	ioctlImportSyncFile = 0x40086203
)

type exportSyncFileArg struct {
	Flags uint32
	Fd    int32
}

type importSyncFileArg struct {
	Flags uint32
	Fd    int32
}

// Plane is one (fd, offset, stride) triple of a dma-buf.
type Plane struct {
	FD     int
	Offset uint32
	Stride uint32
}

// DmaBuf is an external buffer shared with the kernel DRM subsystem:
// a DRM FourCC format, a tiling/compression modifier, and 1-4 planes.
type DmaBuf struct {
	Width, Height int32
	FourCC        uint32
	Modifier      uint64
	Planes        []Plane
}

// ExportSyncFile exports a pollable sync-file fd representing the
// completion of the access (read and/or write) described by flags on the
// given plane's dma-buf fd. The caller owns the returned fd and must
// close it once done (normally: after importing it into a Vulkan
// semaphore or fence, see engine/renderer/vulkan/semaphore.go).
func ExportSyncFile(planeFD int, flags uint32) (int, error) {
	arg := exportSyncFileArg{Flags: flags, Fd: -1}
	if err := ioctl(planeFD, ioctlExportSyncFile, &arg); err != nil {
		core.LogError("dmabuf: export_sync_file failed: %v", err)
		return -1, fmt.Errorf("ioctl(DMA_BUF_IOCTL_EXPORT_SYNC_FILE): %w", err)
	}
	return int(arg.Fd), nil
}

// ImportSyncFile imports syncFD (a sync-file obtained from a Vulkan fence
// export) into planeFD's implicit-sync fence for the given access
// direction. Ownership of syncFD is not transferred; the caller must
// close it itself.
func ImportSyncFile(planeFD int, syncFD int, flags uint32) error {
	arg := importSyncFileArg{Flags: flags, Fd: int32(syncFD)}
	if err := ioctl(planeFD, ioctlImportSyncFile, &arg); err != nil {
		core.LogError("dmabuf: import_sync_file failed: %v", err)
		return fmt.Errorf("ioctl(DMA_BUF_IOCTL_IMPORT_SYNC_FILE): %w", err)
	}
	return nil
}

func ioctl(fd int, request uintptr, arg interface{}) error {
	var ptr unsafe.Pointer
	switch v := arg.(type) {
	case *exportSyncFileArg:
		ptr = unsafe.Pointer(v)
	case *importSyncFileArg:
		ptr = unsafe.Pointer(v)
	default:
		return fmt.Errorf("dmabuf: unsupported ioctl argument type %T", arg)
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), request, uintptr(ptr))
	if errno != 0 {
		return os.NewSyscallError("ioctl", errno)
	}
	return nil
}
