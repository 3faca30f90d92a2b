package vulkan

import (
	"testing"

	"github.com/surfacepm/vkgfx/engine/dmabuf"
	"github.com/surfacepm/vkgfx/engine/math"
)

func TestFrameMemoryResetIsEmpty(t *testing.T) {
	var m frameMemory
	m.reset()
	if !m.isEmpty() {
		t.Fatalf("isEmpty() = false right after reset()")
	}
	m.wait = append(m.wait, &Semaphore{})
	if m.isEmpty() {
		t.Fatalf("isEmpty() = true with a pending wait semaphore")
	}
	m.reset()
	if !m.isEmpty() {
		t.Fatalf("isEmpty() = false after a second reset()")
	}
}

func TestCollectMemoryOnlyTracksDmaBufBackedImages(t *testing.T) {
	r := &Renderer{}
	r.mem.reset()

	shmTex := &Image{}
	dmaTex := &Image{DmaBuf: &dmabuf.DmaBuf{}}
	shmFB := &Image{}

	ops := []Op{
		CopyTextureOp{Tex: shmTex},
		CopyTextureOp{Tex: dmaTex},
	}
	r.collectMemory(shmFB, ops)

	if _, ok := r.mem.sample[shmTex]; ok {
		t.Errorf("collectMemory() tracked an shm texture as needing sample barriers")
	}
	if _, ok := r.mem.sample[dmaTex]; !ok {
		t.Errorf("collectMemory() did not track a dma-buf texture")
	}
	if _, ok := r.mem.sample[shmFB]; ok {
		t.Errorf("collectMemory() tracked an shm framebuffer as needing sample barriers")
	}
}

func TestCollectMemoryTracksDmaBufFramebuffer(t *testing.T) {
	r := &Renderer{}
	r.mem.reset()
	fb := &Image{DmaBuf: &dmabuf.DmaBuf{}}
	r.collectMemory(fb, nil)
	if _, ok := r.mem.sample[fb]; !ok {
		t.Errorf("collectMemory() did not track a dma-buf-backed framebuffer")
	}
}

func TestTexturesNeedingFlushDedupesAndSkipsEmpty(t *testing.T) {
	r := &Renderer{}

	withPending := &Image{shm: &shmState{toFlush: []byte{1, 2, 3}}}
	noPending := &Image{shm: &shmState{toFlush: nil}}
	noShm := &Image{}

	ops := []Op{
		CopyTextureOp{Tex: withPending},
		CopyTextureOp{Tex: withPending},
		CopyTextureOp{Tex: noPending},
		CopyTextureOp{Tex: noShm},
		FillRectOp{},
	}
	got := r.texturesNeedingFlush(ops)
	if len(got) != 1 || got[0] != withPending {
		t.Fatalf("texturesNeedingFlush() = %v, want [withPending] deduped once", got)
	}
}

func TestReferencedTexturesIncludesFramebufferAndUniqueTextures(t *testing.T) {
	fb := &Image{}
	texA := &Image{}
	texB := &Image{}

	ops := []Op{
		CopyTextureOp{Tex: texA},
		CopyTextureOp{Tex: texA},
		CopyTextureOp{Tex: texB},
		FillRectOp{},
	}
	got := referencedTextures(fb, ops)
	if len(got) != 3 {
		t.Fatalf("referencedTextures() returned %d images, want 3 (fb, texA, texB)", len(got))
	}
	if got[0] != fb {
		t.Fatalf("referencedTextures()[0] = %v, want fb first", got[0])
	}
}

func TestBytesPerPixelFallsBackToFourWhenUnknown(t *testing.T) {
	dev := &Device{Formats: map[uint32]FormatDescriptor{
		FourCCXRGB8888: {BytesPerPixel: 4},
	}}
	if got := bytesPerPixel(dev, FourCCXRGB8888); got != 4 {
		t.Fatalf("bytesPerPixel(known) = %d, want 4", got)
	}
	if got := bytesPerPixel(dev, 0xdeadbeef); got != 4 {
		t.Fatalf("bytesPerPixel(unknown) = %d, want fallback 4", got)
	}
}

func TestOpsAreDistinguishableOpTypes(t *testing.T) {
	var ops []Op = []Op{
		SyncOp{},
		FillRectOp{Rect: math.FullQuad(), Color: math.Color{A: 1}},
		CopyTextureOp{Tex: &Image{}},
	}
	var fills, copies, syncs int
	for _, op := range ops {
		switch op.(type) {
		case SyncOp:
			syncs++
		case FillRectOp:
			fills++
		case CopyTextureOp:
			copies++
		}
	}
	if syncs != 1 || fills != 1 || copies != 1 {
		t.Fatalf("op type switch miscounted: syncs=%d fills=%d copies=%d", syncs, fills, copies)
	}
}
