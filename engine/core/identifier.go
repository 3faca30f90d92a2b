package core

import "fmt"

// slotOwners backs a free-slot allocator for small, reused numeric ids,
// e.g. descriptor-set generation counters. Acquired ids are stable until
// explicitly released, at which point the slot is recycled.
var slotOwners []interface{}

// AcquireSlot returns the lowest free slot id, recording owner as its
// occupant, growing the backing slice if every existing slot is taken.
func AcquireSlot(owner interface{}) uint32 {
	if len(slotOwners) == 0 {
		slotOwners = make([]interface{}, 100)
	}
	for i := range slotOwners {
		if slotOwners[i] == nil {
			slotOwners[i] = owner
			return uint32(i)
		}
	}
	slotOwners = append(slotOwners, owner)
	return uint32(len(slotOwners) - 1)
}

// ReleaseSlot frees a slot acquired via AcquireSlot, making it available
// for reuse.
func ReleaseSlot(id uint32) error {
	if len(slotOwners) == 0 {
		return fmt.Errorf("release_slot called before any slot was acquired")
	}
	if id >= uint32(len(slotOwners)) {
		return fmt.Errorf("release_slot: id %d out of range (max=%d)", id, len(slotOwners)-1)
	}
	slotOwners[id] = nil
	return nil
}
