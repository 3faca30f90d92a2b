package core

import "testing"

func resetSlots() {
	slotOwners = nil
}

func TestAcquireSlotReturnsDistinctIDs(t *testing.T) {
	resetSlots()
	defer resetSlots()

	first := AcquireSlot("a")
	second := AcquireSlot("b")
	if first == second {
		t.Fatalf("AcquireSlot() returned the same id twice: %d", first)
	}
}

func TestReleaseSlotRecyclesLowestID(t *testing.T) {
	resetSlots()
	defer resetSlots()

	a := AcquireSlot("a")
	b := AcquireSlot("b")
	if err := ReleaseSlot(a); err != nil {
		t.Fatalf("ReleaseSlot(%d) error = %v", a, err)
	}
	c := AcquireSlot("c")
	if c != a {
		t.Fatalf("AcquireSlot() after release = %d, want recycled id %d", c, a)
	}
	if b == c {
		t.Fatalf("recycled id collides with still-occupied slot %d", b)
	}
}

func TestReleaseSlotBeforeAnyAcquireErrors(t *testing.T) {
	resetSlots()
	defer resetSlots()

	if err := ReleaseSlot(0); err == nil {
		t.Fatalf("ReleaseSlot() before any Acquire returned nil error")
	}
}

func TestReleaseSlotOutOfRangeErrors(t *testing.T) {
	resetSlots()
	defer resetSlots()

	AcquireSlot("a")
	if err := ReleaseSlot(99999); err == nil {
		t.Fatalf("ReleaseSlot() with out-of-range id returned nil error")
	}
}

func TestAcquireSlotGrowsPastInitialCapacity(t *testing.T) {
	resetSlots()
	defer resetSlots()

	seen := make(map[uint32]bool)
	for i := 0; i < 150; i++ {
		id := AcquireSlot(i)
		if seen[id] {
			t.Fatalf("AcquireSlot() returned duplicate id %d at iteration %d", id, i)
		}
		seen[id] = true
	}
}
