package vulkan

import vk "github.com/goki/vulkan"

// Extent is a 2D pixel bound, used as the per-modifier max_extent for a
// given role (texture or render use).
type Extent struct {
	Width, Height uint32
}

// ModifierInfo is one tiling/compression modifier's support for a format,
// as enumerated from the physical device (device.go's
// queryFormatModifiers). Either extent may be nil, meaning the modifier is
// unusable for that role; a modifier with both nil is dropped entirely
// (component design §4.2 step 4).
type ModifierInfo struct {
	Modifier          uint64
	TextureMaxExtents *Extent
	RenderMaxExtents  *Extent
}

// CanRead reports whether this modifier may back a sampled (texture) image.
func (m ModifierInfo) CanRead() bool { return m.TextureMaxExtents != nil }

// CanWrite reports whether this modifier may back a render-target image.
func (m ModifierInfo) CanWrite() bool { return m.RenderMaxExtents != nil }

// FormatDescriptor is the static-ish per-FourCC table entry described in
// the data model: a Vulkan format, its byte stride per pixel, and the
// modifiers usable with it. It is "static" per device (queried once at
// device construction, see device.go) rather than a global constant table,
// since modifier support is hardware-dependent.
type FormatDescriptor struct {
	FourCC        uint32
	VkFormat      vk.Format
	BytesPerPixel uint32
	Modifiers     []ModifierInfo
}

// DRM FourCC codes for the two formats this backend is required to
// support end-to-end (component design §8 scenarios); additional formats
// may be enumerated by the device but these two are load-bearing.
//
// fourcc('X','R','2','4') and fourcc('A','R','2','4') per the standard
// DRM_FORMAT_* little-endian packing (a | b<<8 | c<<16 | d<<24).
const (
	FourCCXRGB8888 uint32 = 0x34325258
	FourCCARGB8888 uint32 = 0x34325241
)

// candidateFormats lists every FourCC the device enumeration (device.go)
// probes for read/write modifier support. XRGB8888 must end up supporting
// both roles or device construction fails (§4.2 step 4); the rest are
// best-effort.
var candidateFormats = []struct {
	FourCC        uint32
	VkFormat      vk.Format
	BytesPerPixel uint32
}{
	{FourCCXRGB8888, vk.FormatB8g8r8a8Unorm, 4},
	{FourCCARGB8888, vk.FormatB8g8r8a8Unorm, 4},
}
