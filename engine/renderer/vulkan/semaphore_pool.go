package vulkan

import "github.com/surfacepm/vkgfx/engine/containers"

// SemaphorePool is the wait-semaphore counterpart of CommandPool's
// free-list (component design §4.7's pattern, extended to semaphores per
// §9 "recycling pools" and the Resource sharing policy in §5). Binary
// semaphores with a consumed temporary payload are indistinguishable from
// freshly created ones, so they recycle freely once their wait has
// completed.
type SemaphorePool struct {
	dev  *Device
	free *containers.Stack[*Semaphore]
}

func NewSemaphorePool(dev *Device) *SemaphorePool {
	return &SemaphorePool{dev: dev, free: containers.NewStack[*Semaphore](0)}
}

// Acquire pops a recycled semaphore, or creates a new one.
func (p *SemaphorePool) Acquire() (*Semaphore, error) {
	if s, ok := p.free.Pop(); ok {
		return s, nil
	}
	return CreateSemaphore(p.dev)
}

// Release pushes sem back onto the free-list. Callers must only do this
// after the wait that consumed its temporary payload has completed.
func (p *SemaphorePool) Release(sem *Semaphore) {
	p.free.Push(sem)
}

// Destroy destroys every semaphore currently on the free-list. Semaphores
// still referenced by in-flight frames are destroyed as part of those
// frames' teardown instead.
func (p *SemaphorePool) Destroy() {
	for {
		s, ok := p.free.Pop()
		if !ok {
			return
		}
		s.Destroy()
	}
}
