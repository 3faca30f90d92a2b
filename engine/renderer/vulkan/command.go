package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/surfacepm/vkgfx/engine/containers"
	"github.com/surfacepm/vkgfx/engine/core"
)

// CommandPool owns one graphics-family VkCommandPool and a LIFO free-list
// of already-allocated, already-reset primary command buffers (component
// design §4.7, §9 "recycling pools"). AllocateBuffer only calls
// vkAllocateCommandBuffers when the free-list is empty.
type CommandPool struct {
	dev    *Device
	Handle vk.CommandPool
	locks  *lockPool
	free   *containers.Stack[vk.CommandBuffer]
}

// NewCommandPool creates the pool with the transient + reset-command-buffer
// flags: buffers are one-time-submit and individually resettable so they
// can be recycled after their frame's release fence is observed.
func NewCommandPool(dev *Device, locks *lockPool) (*CommandPool, error) {
	createInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit | vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: dev.GraphicsQueueFamily,
	}
	var handle vk.CommandPool
	if res := vk.CreateCommandPool(dev.Logical, &createInfo, nil, &handle); res != vk.Success {
		return nil, core.Wrap(core.ErrAllocateCommandPool, vkResultError(res))
	}
	return &CommandPool{
		dev:    dev,
		Handle: handle,
		locks:  locks,
		free:   containers.NewStack[vk.CommandBuffer](0),
	}, nil
}

// AllocateBuffer pops a recycled buffer off the free-list, or allocates a
// new one if the free-list is empty.
func (p *CommandPool) AllocateBuffer() (vk.CommandBuffer, error) {
	var result vk.CommandBuffer
	err := p.locks.SafeCall(lockCommandPool, func() error {
		if buf, ok := p.free.Pop(); ok {
			result = buf
			return nil
		}
		allocInfo := vk.CommandBufferAllocateInfo{
			SType:              vk.StructureTypeCommandBufferAllocateInfo,
			CommandPool:        p.Handle,
			Level:              vk.CommandBufferLevelPrimary,
			CommandBufferCount: 1,
		}
		buffers := make([]vk.CommandBuffer, 1)
		if res := vk.AllocateCommandBuffers(p.dev.Logical, &allocInfo, buffers); res != vk.Success {
			return core.Wrap(core.ErrAllocateCommandBuffer, vkResultError(res))
		}
		result = buffers[0]
		return nil
	})
	return result, err
}

// Release pushes buf back onto the free-list (execution protocol §4.11
// step 2: done by the release-watcher once the frame's release fence has
// signaled, so the buffer is guaranteed idle).
func (p *CommandPool) Release(buf vk.CommandBuffer) {
	_ = p.locks.SafeCall(lockCommandPool, func() error {
		vk.ResetCommandBuffer(buf, vk.CommandBufferResetFlags(0))
		p.free.Push(buf)
		return nil
	})
}

// Destroy destroys the pool (and with it, every buffer ever allocated from
// it, recycled or not).
func (p *CommandPool) Destroy() {
	vk.DestroyCommandPool(p.dev.Logical, p.Handle, nil)
}
