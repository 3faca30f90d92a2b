package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/surfacepm/vkgfx/engine/core"
)

// StagingBuffer is a host-visible buffer used to move pixel data across the
// CPU/GPU boundary (component design §4.3). Coherent memory is preferred;
// when the device only offers non-coherent host-visible memory, Upload and
// Download flush/invalidate the mapped range explicitly.
type StagingBuffer struct {
	dev      *Device
	Handle   vk.Buffer
	memory   vk.DeviceMemory
	Size     uint64
	coherent bool
	mapped   unsafe.Pointer
}

// CreateStagingBuffer allocates a host-visible buffer of size bytes usable
// both as a transfer source (download) and destination (upload).
func CreateStagingBuffer(dev *Device, size uint64) (*StagingBuffer, error) {
	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit | vk.BufferUsageTransferDstBit),
		SharingMode: vk.SharingModeExclusive,
	}
	var buf vk.Buffer
	if res := vk.CreateBuffer(dev.Logical, &bufferInfo, nil, &buf); res != vk.Success {
		return nil, core.Wrap(core.ErrCreateBuffer, vkResultError(res))
	}

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(dev.Logical, buf, &memReqs)
	memReqs.Deref()

	coherentFlags := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	memType, coherent, err := findMemoryType(dev.Physical, memReqs.MemoryTypeBits, coherentFlags)
	if err != nil {
		visibleOnly := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)
		memType, coherent, err = findMemoryType(dev.Physical, memReqs.MemoryTypeBits, visibleOnly)
		if err != nil {
			vk.DestroyBuffer(dev.Logical, buf, nil)
			return nil, core.Wrap(core.ErrMemoryType, err)
		}
	}

	allocInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}
	var mem vk.DeviceMemory
	if res := vk.AllocateMemory(dev.Logical, &allocInfo, nil, &mem); res != vk.Success {
		vk.DestroyBuffer(dev.Logical, buf, nil)
		return nil, core.Wrap(core.ErrAllocateMemory2, vkResultError(res))
	}
	if res := vk.BindBufferMemory(dev.Logical, buf, mem, 0); res != vk.Success {
		vk.FreeMemory(dev.Logical, mem, nil)
		vk.DestroyBuffer(dev.Logical, buf, nil)
		return nil, core.Wrap(core.ErrBindBufferMemory, vkResultError(res))
	}

	var mapped unsafe.Pointer
	if res := vk.MapMemory(dev.Logical, mem, 0, vk.DeviceSize(size), 0, &mapped); res != vk.Success {
		vk.FreeMemory(dev.Logical, mem, nil)
		vk.DestroyBuffer(dev.Logical, buf, nil)
		return nil, core.Wrap(core.ErrMapMemory, vkResultError(res))
	}

	return &StagingBuffer{
		dev:      dev,
		Handle:   buf,
		memory:   mem,
		Size:     size,
		coherent: coherent,
		mapped:   mapped,
	}, nil
}

// Bytes returns the raw host mapping. Callers must not retain it past the
// buffer's lifetime.
func (s *StagingBuffer) Bytes() []byte {
	return unsafe.Slice((*byte)(s.mapped), int(s.Size))
}

// Upload invokes write with the raw mapping, then flushes the mapped range
// if the backing memory is non-coherent.
func (s *StagingBuffer) Upload(write func([]byte)) error {
	write(s.Bytes())
	if s.coherent {
		return nil
	}
	return s.flush()
}

// Download invalidates the mapped range (if non-coherent) before invoking
// read with the raw mapping.
func (s *StagingBuffer) Download(read func([]byte)) error {
	if !s.coherent {
		if err := s.invalidate(); err != nil {
			return err
		}
	}
	read(s.Bytes())
	return nil
}

func (s *StagingBuffer) flush() error {
	ranges := []vk.MappedMemoryRange{{
		SType:  vk.StructureTypeMappedMemoryRange,
		Memory: s.memory,
		Offset: 0,
		Size:   vk.DeviceSize(s.Size),
	}}
	if res := vk.FlushMappedMemoryRanges(s.dev.Logical, 1, ranges); res != vk.Success {
		return core.Wrap(core.ErrFlushMemory, vkResultError(res))
	}
	return nil
}

func (s *StagingBuffer) invalidate() error {
	ranges := []vk.MappedMemoryRange{{
		SType:  vk.StructureTypeMappedMemoryRange,
		Memory: s.memory,
		Offset: 0,
		Size:   vk.DeviceSize(s.Size),
	}}
	if res := vk.InvalidateMappedMemoryRanges(s.dev.Logical, 1, ranges); res != vk.Success {
		return core.Wrap(core.ErrFlushMemory, vkResultError(res))
	}
	return nil
}

// Destroy unmaps, frees, and destroys the buffer.
func (s *StagingBuffer) Destroy() {
	vk.UnmapMemory(s.dev.Logical, s.memory)
	vk.FreeMemory(s.dev.Logical, s.memory, nil)
	vk.DestroyBuffer(s.dev.Logical, s.Handle, nil)
}

// findMemoryType picks the first memory type in typeBits whose property
// flags are a superset of want, reporting whether it is host-coherent.
func findMemoryType(pd vk.PhysicalDevice, typeBits uint32, want vk.MemoryPropertyFlags) (uint32, bool, error) {
	var props vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(pd, &props)
	props.Deref()
	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		props.MemoryTypes[i].Deref()
		if typeBits&(1<<i) == 0 {
			continue
		}
		flags := vk.MemoryPropertyFlags(props.MemoryTypes[i].PropertyFlags)
		if flags&want == want {
			coherent := flags&vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit) != 0
			return i, coherent, nil
		}
	}
	return 0, false, core.New(core.ErrMemoryType)
}
