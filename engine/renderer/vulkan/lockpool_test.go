package vulkan

import (
	"errors"
	"sync"
	"testing"
)

func TestSafeCallPropagatesError(t *testing.T) {
	p := newLockPool()
	want := errors.New("boom")
	got := p.SafeCall(lockCommandPool, func() error { return want })
	if !errors.Is(got, want) {
		t.Fatalf("SafeCall() error = %v, want %v", got, want)
	}
}

func TestSafeCallSerializesSameGroup(t *testing.T) {
	p := newLockPool()
	var mu sync.Mutex
	active := 0
	maxActive := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.SafeCall(lockCommandPool, func() error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Fatalf("max concurrent SafeCall() in same group = %d, want 1", maxActive)
	}
}

func TestLockForReturnsSameMutexForGroup(t *testing.T) {
	p := newLockPool()
	a := p.lockFor(lockPendingFrames)
	b := p.lockFor(lockPendingFrames)
	if a != b {
		t.Fatalf("lockFor() returned different mutexes for the same group")
	}
	c := p.lockFor(lockCommandPool)
	if a == c {
		t.Fatalf("lockFor() returned the same mutex for different groups")
	}
}
