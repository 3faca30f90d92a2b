// Package vulkan implements the Vulkan-backed GfxContext described by the
// rendering core: device selection against a DRM render node, dma-buf and
// shm image import, two fixed pipelines, and the per-frame submission
// protocol that bridges dma-buf implicit sync with explicit Vulkan
// semaphores.
package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"golang.org/x/sys/unix"

	"github.com/surfacepm/vkgfx/engine/core"
	"github.com/surfacepm/vkgfx/engine/dmabuf"
	"github.com/surfacepm/vkgfx/engine/math"
	"github.com/surfacepm/vkgfx/engine/reactor"
)

// pendingFrame is the execution protocol's per-submission bookkeeping
// record (§4.9 step 17): it holds every resource the frame must keep alive
// until its release fence signals, and nothing else reaches back into it.
type pendingFrame struct {
	point           uint64
	cmdBuf          vk.CommandBuffer
	waitSemaphores  []*Semaphore
	stagingBuffers  []*StagingBuffer
	textures        []*Image
	releaseFence    *Fence
	releaseSyncFile int // -1 if export failed
}

// frameMemory is the Shared scratch buffer described in §9: a reusable,
// mutable per-renderer working set cleared at the start of every Execute
// and unconditionally before returning, so partial state from a failed
// attempt never leaks into the next frame.
type frameMemory struct {
	sample       map[*Image]struct{}
	flush        []*flushPair
	flushStaging []*StagingBuffer
	wait         []*Semaphore
	releaseFence *Fence
	releaseFD    int
}

type flushPair struct {
	tex     *Image
	staging *StagingBuffer
}

func (m *frameMemory) reset() {
	m.sample = make(map[*Image]struct{})
	m.flush = nil
	m.flushStaging = nil
	m.wait = nil
	m.releaseFence = nil
	m.releaseFD = -1
}

func (m *frameMemory) isEmpty() bool {
	return len(m.sample) == 0 && len(m.flush) == 0 && len(m.flushStaging) == 0 &&
		len(m.wait) == 0 && m.releaseFence == nil && m.releaseFD == -1
}

// Renderer is the concrete Vulkan GfxContext implementation.
type Renderer struct {
	Instance  *Instance
	Dev       *Device
	Pipelines *Pipelines
	cmdPool   *CommandPool
	semaphores *SemaphorePool
	reactor   *reactor.Reactor
	locks     *lockPool

	pendingFrames map[uint64]*pendingFrame
	lastPoint     uint64

	stats *core.SubmitStats

	mem frameMemory

	// fill and texture pipeline track a bound-pipeline cache across a
	// single Execute call (§4.9 step 9: "only re-bind on change").
	boundPipeline vk.Pipeline
}

// NewRenderer assembles instance, device, pipelines, and pools into a
// ready-to-use renderer. fillVert/fillFrag/texVert/texFrag are the four
// SPIR-V modules of the shader ABI (§6).
func NewRenderer(validation bool, targetDevT uint64, fillVert, fillFrag, texVert, texFrag []uint32) (*Renderer, error) {
	inst, err := NewInstance("vkgfx", validation)
	if err != nil {
		return nil, err
	}
	dev, err := NewDevice(inst, targetDevT)
	if err != nil {
		inst.Destroy()
		return nil, err
	}
	pipelines, err := CreatePipelines(dev, fillVert, fillFrag, texVert, texFrag, dev.Formats[FourCCXRGB8888].VkFormat)
	if err != nil {
		dev.Destroy()
		inst.Destroy()
		return nil, err
	}
	locks := newLockPool()
	cmdPool, err := NewCommandPool(dev, locks)
	if err != nil {
		pipelines.Destroy()
		dev.Destroy()
		inst.Destroy()
		return nil, err
	}
	react, err := reactor.New()
	if err != nil {
		cmdPool.Destroy()
		pipelines.Destroy()
		dev.Destroy()
		inst.Destroy()
		return nil, err
	}

	r := &Renderer{
		Instance:      inst,
		Dev:           dev,
		Pipelines:     pipelines,
		cmdPool:       cmdPool,
		semaphores:    NewSemaphorePool(dev),
		reactor:       react,
		locks:         locks,
		pendingFrames: make(map[uint64]*pendingFrame),
		stats:         &core.SubmitStats{},
	}
	r.mem.reset()
	return r, nil
}

// Execute implements the 17-stage per-frame submission protocol of
// component design §4.9.
//
// When clear is nil the attachment uses LOAD_OP_LOAD even if
// fb.IsUndefined is true; the load is not promoted to a clear, so a first
// render into a never-written framebuffer loads undefined contents.
func (r *Renderer) Execute(fb *Image, ops []Op, clear *math.Color) (err error) {
	clock := core.NewClock()
	clock.Start()
	r.mem.reset()
	defer r.mem.reset()
	defer func() {
		clock.Update()
		r.stats.Observe(clock.Elapsed() / 1e6)
	}()

	// Stage 1: collect memory.
	r.collectMemory(fb, ops)

	// Stage 2: upload shm (allocate fresh staging per flush texture).
	for _, tex := range r.texturesNeedingFlush(ops) {
		staging, uerr := CreateStagingBuffer(r.Dev, uint64(tex.Stride())*uint64(tex.Height))
		if uerr != nil {
			return uerr
		}
		toFlush := tex.shm.toFlush
		if ferr := staging.Upload(func(dst []byte) { copy(dst, toFlush) }); ferr != nil {
			staging.Destroy()
			return ferr
		}
		r.mem.flush = append(r.mem.flush, &flushPair{tex: tex, staging: staging})
		r.mem.flushStaging = append(r.mem.flushStaging, staging)
	}

	// Stage 3: begin command buffer.
	cmdBuf, err := r.cmdPool.AllocateBuffer()
	if err != nil {
		return err
	}
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	if res := vk.BeginCommandBuffer(cmdBuf, &beginInfo); res != vk.Success {
		r.cmdPool.Release(cmdBuf)
		return core.Wrap(core.ErrBeginCommandBuffer, vkResultError(res))
	}

	// Stage 4: initial barriers.
	var barriers []vk.ImageMemoryBarrier2
	barriers = append(barriers, fbAcquireBarrier(fb, r.Dev.GraphicsQueueFamily))
	for tex := range r.mem.sample {
		barriers = append(barriers, sampleAcquireBarrier(tex, r.Dev.GraphicsQueueFamily))
	}
	var bufferBarriers []vk.BufferMemoryBarrier2
	for _, pair := range r.mem.flush {
		barriers = append(barriers, flushDstBarrier(pair.tex))
		bufferBarriers = append(bufferBarriers, stagingHostWriteBarrier(pair.staging))
	}
	submitBarriers(cmdBuf, bufferBarriers, barriers)

	// Stage 5: copy shm -> image.
	for _, pair := range r.mem.flush {
		region := vk.BufferImageCopy{
			BufferOffset:     0,
			BufferRowLength:  pair.tex.Stride() / bytesPerPixel(r.Dev, pair.tex.FourCC),
			BufferImageHeight: 0,
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LayerCount: 1,
			},
			ImageExtent: vk.Extent3D{Width: pair.tex.Width, Height: pair.tex.Height, Depth: 1},
		}
		vk.CmdCopyBufferToImage(cmdBuf, pair.staging.Handle, pair.tex.Handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
	}

	// Stage 6: secondary barriers.
	var secondary []vk.ImageMemoryBarrier2
	for _, pair := range r.mem.flush {
		secondary = append(secondary, flushToShaderReadBarrier(pair.tex))
	}
	if len(secondary) > 0 {
		submitBarriers(cmdBuf, nil, secondary)
	}

	// Stage 7: begin rendering.
	loadOp := vk.AttachmentLoadOpLoad
	var clearValue vk.ClearValue
	if clear != nil {
		loadOp = vk.AttachmentLoadOpClear
		clearValue.SetColor([]float32{clear.R, clear.G, clear.B, clear.A})
	}
	colorAttachment := vk.RenderingAttachmentInfo{
		SType:       vk.StructureTypeRenderingAttachmentInfo,
		ImageView:   fb.RenderView,
		ImageLayout: vk.ImageLayoutGeneral,
		LoadOp:      loadOp,
		StoreOp:     vk.AttachmentStoreOpStore,
		ClearValue:  clearValue,
	}
	renderingInfo := vk.RenderingInfo{
		SType:                vk.StructureTypeRenderingInfo,
		RenderArea:           vk.Rect2D{Extent: vk.Extent2D{Width: fb.Width, Height: fb.Height}},
		LayerCount:           1,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vk.RenderingAttachmentInfo{colorAttachment},
	}
	vk.CmdBeginRenderingKHR(cmdBuf, &renderingInfo)

	// Stage 8: viewport + scissor.
	viewport := vk.Viewport{Width: float32(fb.Width), Height: float32(fb.Height), MinDepth: 0, MaxDepth: 1}
	scissor := vk.Rect2D{Extent: vk.Extent2D{Width: fb.Width, Height: fb.Height}}
	vk.CmdSetViewport(cmdBuf, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(cmdBuf, 0, 1, []vk.Rect2D{scissor})

	// Stage 9: record draws.
	r.boundPipeline = nil
	for _, op := range ops {
		switch o := op.(type) {
		case SyncOp:
			// no-op, reserved for future fencing boundaries
		case FillRectOp:
			r.recordFillRect(cmdBuf, o)
		case CopyTextureOp:
			r.recordCopyTexture(cmdBuf, o)
		default:
			panic(fmt.Sprintf("vulkan: unknown op type %T", op))
		}
	}

	// Stage 10: end rendering.
	vk.CmdEndRenderingKHR(cmdBuf)

	// Stage 11: final barriers.
	var finalBarriers []vk.ImageMemoryBarrier2
	finalBarriers = append(finalBarriers, fbReleaseBarrier(fb, r.Dev.GraphicsQueueFamily))
	for tex := range r.mem.sample {
		finalBarriers = append(finalBarriers, sampleReleaseBarrier(tex, r.Dev.GraphicsQueueFamily))
	}
	submitBarriers(cmdBuf, nil, finalBarriers)

	// Stage 12: end command buffer.
	if res := vk.EndCommandBuffer(cmdBuf); res != vk.Success {
		r.cmdPool.Release(cmdBuf)
		return core.Wrap(core.ErrEndCommandBuffer, vkResultError(res))
	}

	// Stage 13: create wait semaphores.
	for tex := range r.mem.sample {
		if tex.DmaBuf == nil {
			continue
		}
		sem, serr := r.semaphores.Acquire()
		if serr != nil {
			r.cmdPool.Release(cmdBuf)
			return serr
		}
		if ierr := sem.ImportDmaBufReadFence(tex.DmaBuf); ierr != nil {
			core.LogError("vulkan: import read fence failed: %v", ierr)
			r.semaphores.Release(sem)
			continue
		}
		r.mem.wait = append(r.mem.wait, sem)
	}
	if fb.DmaBuf != nil {
		sem, serr := r.semaphores.Acquire()
		if serr != nil {
			r.cmdPool.Release(cmdBuf)
			return serr
		}
		if ierr := sem.ImportDmaBufWriteFence(fb.DmaBuf); ierr != nil {
			core.LogError("vulkan: import write fence failed: %v", ierr)
			r.semaphores.Release(sem)
		} else {
			r.mem.wait = append(r.mem.wait, sem)
		}
	}

	// Stage 14: submit.
	releaseFence, ferr := CreateExportableFence(r.Dev)
	if ferr != nil {
		r.cmdPool.Release(cmdBuf)
		return ferr
	}
	if serr := r.submit(cmdBuf, releaseFence); serr != nil {
		releaseFence.Destroy()
		r.cmdPool.Release(cmdBuf)
		return serr
	}
	r.mem.releaseFence = releaseFence
	r.mem.releaseFD = -1
	if fd, eerr := releaseFence.ExportSyncFile(); eerr == nil {
		r.mem.releaseFD = fd
	} else {
		core.LogError("vulkan: export release sync-file failed, falling back to implicit sync: %v", eerr)
	}

	// Stage 15: import release back into dma-buf planes.
	for tex := range r.mem.sample {
		if tex.DmaBuf == nil || r.mem.releaseFD < 0 {
			continue
		}
		if ierr := dmabuf.ImportSyncFile(tex.DmaBuf.Planes[0].FD, r.mem.releaseFD, dmabuf.SyncWrite); ierr != nil {
			core.LogError("vulkan: import release into texture dmabuf failed: %v", ierr)
		}
	}
	if fb.DmaBuf != nil && r.mem.releaseFD >= 0 {
		if ierr := dmabuf.ImportSyncFile(fb.DmaBuf.Planes[0].FD, r.mem.releaseFD, dmabuf.SyncRead|dmabuf.SyncWrite); ierr != nil {
			core.LogError("vulkan: import release into framebuffer dmabuf failed: %v", ierr)
		}
	}

	// Stage 16: store layouts.
	fb.IsUndefined = false
	for _, pair := range r.mem.flush {
		pair.tex.IsUndefined = false
		pair.tex.shm.toFlush = nil
	}

	// Stage 17: register pending frame.
	r.lastPoint++
	point := r.lastPoint
	frame := &pendingFrame{
		point:           point,
		cmdBuf:          cmdBuf,
		waitSemaphores:  r.mem.wait,
		stagingBuffers:  r.mem.flushStaging,
		textures:        referencedTextures(fb, ops),
		releaseFence:    releaseFence,
		releaseSyncFile: r.mem.releaseFD,
	}
	_ = r.locks.SafeCall(lockPendingFrames, func() error {
		r.pendingFrames[point] = frame
		return nil
	})
	go r.watchRelease(frame)

	return nil
}

func (r *Renderer) collectMemory(fb *Image, ops []Op) {
	for _, op := range ops {
		cp, ok := op.(CopyTextureOp)
		if !ok {
			continue
		}
		if cp.Tex.DmaBuf != nil {
			r.mem.sample[cp.Tex] = struct{}{}
		}
	}
	if fb.DmaBuf != nil {
		r.mem.sample[fb] = struct{}{}
	}
}

func (r *Renderer) texturesNeedingFlush(ops []Op) []*Image {
	seen := make(map[*Image]bool)
	var out []*Image
	for _, op := range ops {
		cp, ok := op.(CopyTextureOp)
		if !ok || cp.Tex.shm == nil || cp.Tex.shm.toFlush == nil || seen[cp.Tex] {
			continue
		}
		seen[cp.Tex] = true
		out = append(out, cp.Tex)
	}
	return out
}

func referencedTextures(fb *Image, ops []Op) []*Image {
	seen := map[*Image]bool{fb: true}
	out := []*Image{fb}
	for _, op := range ops {
		if cp, ok := op.(CopyTextureOp); ok && !seen[cp.Tex] {
			seen[cp.Tex] = true
			out = append(out, cp.Tex)
		}
	}
	return out
}

func bytesPerPixel(dev *Device, fourCC uint32) uint32 {
	if fd, ok := dev.Formats[fourCC]; ok {
		return fd.BytesPerPixel
	}
	return 4
}

func (r *Renderer) recordFillRect(cmdBuf vk.CommandBuffer, op FillRectOp) {
	pipe := r.Pipelines.Fill
	if r.boundPipeline != pipe.Handle {
		vk.CmdBindPipeline(cmdBuf, vk.PipelineBindPointGraphics, pipe.Handle)
		r.boundPipeline = pipe.Handle
	}
	vertexData := quadToBytes(op.Rect)
	vk.CmdPushConstants(cmdBuf, pipe.Layout, vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, uint32(len(vertexData)), unsafe.Pointer(&vertexData[0]))
	colorData := colorToBytes(op.Color)
	vk.CmdPushConstants(cmdBuf, pipe.Layout, vk.ShaderStageFlags(vk.ShaderStageFragmentBit), pipe.FragPushOffset, uint32(len(colorData)), unsafe.Pointer(&colorData[0]))
	vk.CmdDraw(cmdBuf, 4, 1, 0, 0)
}

func (r *Renderer) recordCopyTexture(cmdBuf vk.CommandBuffer, op CopyTextureOp) {
	pipe := r.Pipelines.Texture
	if r.boundPipeline != pipe.Handle {
		vk.CmdBindPipeline(cmdBuf, vk.PipelineBindPointGraphics, pipe.Handle)
		r.boundPipeline = pipe.Handle
	}
	pushTextureDescriptor(cmdBuf, pipe.Layout, r.Pipelines.Sampler, op.Tex.SampleView)
	vertexData := quadPairToBytes(op.Target, op.Source)
	vk.CmdPushConstants(cmdBuf, pipe.Layout, vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, uint32(len(vertexData)), unsafe.Pointer(&vertexData[0]))
	vk.CmdDraw(cmdBuf, 4, 1, 0, 0)
}

func (r *Renderer) submit(cmdBuf vk.CommandBuffer, releaseFence *Fence) error {
	waitInfos := make([]vk.SemaphoreSubmitInfo, len(r.mem.wait))
	for i, sem := range r.mem.wait {
		waitInfos[i] = vk.SemaphoreSubmitInfo{
			SType:     vk.StructureTypeSemaphoreSubmitInfo,
			Semaphore: sem.Handle,
			StageMask: vk.PipelineStageFlags2(vk.PipelineStage2TopOfPipeBit),
		}
	}
	cmdInfo := vk.CommandBufferSubmitInfo{
		SType:         vk.StructureTypeCommandBufferSubmitInfo,
		CommandBuffer: cmdBuf,
	}
	submitInfo := vk.SubmitInfo2{
		SType:                    vk.StructureTypeSubmitInfo2,
		WaitSemaphoreInfoCount:   uint32(len(waitInfos)),
		CommandBufferInfoCount:   1,
		PCommandBufferInfos:      []vk.CommandBufferSubmitInfo{cmdInfo},
	}
	if len(waitInfos) > 0 {
		submitInfo.PWaitSemaphoreInfos = waitInfos
	}
	if res := vk.QueueSubmit2KHR(r.Dev.GraphicsQueue, 1, []vk.SubmitInfo2{submitInfo}, releaseFence.Handle); res != vk.Success {
		return core.Wrap(core.ErrSubmit, vkResultError(res))
	}
	return nil
}

// watchRelease implements the release-watcher task of §4.11.
func (r *Renderer) watchRelease(frame *pendingFrame) {
	if frame.releaseSyncFile >= 0 {
		if err := r.reactor.AwaitReadable(frame.releaseSyncFile); err != nil {
			core.LogError("vulkan: release sync-file wait failed, falling back to device_wait_idle: %v", err)
			r.waitIdleSlow()
		}
		unix.Close(frame.releaseSyncFile)
	} else {
		r.waitIdleSlow()
	}

	r.cmdPool.Release(frame.cmdBuf)
	for _, sem := range frame.waitSemaphores {
		r.semaphores.Release(sem)
	}
	for _, s := range frame.stagingBuffers {
		s.Destroy()
	}
	frame.releaseFence.Destroy()

	_ = r.locks.SafeCall(lockPendingFrames, func() error {
		delete(r.pendingFrames, frame.point)
		return nil
	})
}

func (r *Renderer) waitIdleSlow() {
	clock := core.NewClock()
	clock.Start()
	vk.DeviceWaitIdle(r.Dev.Logical)
	clock.Update()
	core.LogWarn("vulkan: device_wait_idle (slow path) took %.2fms", clock.Elapsed()/1e6)
}

// Teardown implements context teardown (§4.12): if frames remain pending,
// log, block on device_wait_idle, and drop them without waiting on their
// watchers individually (the idle wait already proved GPU completion).
func (r *Renderer) Teardown() {
	_ = r.locks.SafeCall(lockPendingFrames, func() error {
		if len(r.pendingFrames) > 0 {
			core.LogWarn("vulkan: tearing down with %d pending frames", len(r.pendingFrames))
			vk.DeviceWaitIdle(r.Dev.Logical)
			for _, f := range r.pendingFrames {
				r.cmdPool.Release(f.cmdBuf)
				for _, sem := range f.waitSemaphores {
					r.semaphores.Release(sem)
				}
				for _, s := range f.stagingBuffers {
					s.Destroy()
				}
				f.releaseFence.Destroy()
			}
			r.pendingFrames = make(map[uint64]*pendingFrame)
		}
		return nil
	})
	r.reactor.Close()
	r.semaphores.Destroy()
	r.cmdPool.Destroy()
	r.Pipelines.Destroy()
	r.Dev.Destroy()
	r.Instance.Destroy()
}
