package vulkan

// Size limits for the two fixed pipelines' push-constant ranges. Both
// pipelines' vertex data is 4 corner points; the fill pipeline additionally
// carries a fragment color. These mirror the layout described in the
// component design's Pipeline section and bound the push-constant block
// well under the 128-byte guaranteed minimum Vulkan implementations must
// support.
const (
	vertexQuadPushSize   uint32 = 4 * 2 * 4 // 4 vec2 corners, float32
	texVertexPushSize    uint32 = 4 * 2 * 2 * 4 // 4 vec2 positions + 4 vec2 texcoords
	fragColorPushSize    uint32 = 4 * 4 // vec4 color, float32
	maxDmaBufPlanes      int    = 4
)

// lockGroup names the coarse-grained mutex domains guarded by lockPool.
// This is a deliberate, bounded divergence from the component design's
// "single-threaded, no locking needed" model: release-watcher goroutines
// and the caller's executor goroutine both touch pending-frame state, so
// Go needs a real lock even though the logical ownership discipline is
// still single-writer-at-a-time per resource (see SPEC_FULL.md REDESIGN
// FLAGS).
type lockGroup string

const (
	lockPendingFrames lockGroup = "pending-frames"
	lockCommandPool   lockGroup = "command-pool"
)
