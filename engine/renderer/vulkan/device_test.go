package vulkan

import "testing"

func TestMakedevMatchesGlibcEncoding(t *testing.T) {
	// /dev/dri/renderD128 is conventionally major 226, minor 128 -> 0xe280.
	if got, want := makedev(226, 128), uint64(0xe280); got != want {
		t.Fatalf("makedev(226, 128) = %#x, want %#x", got, want)
	}
	if got, want := makedev(1, 3), uint64(0x103); got != want {
		t.Fatalf("makedev(1, 3) = %#x, want %#x", got, want)
	}
}

func TestFormatSupportsReadWrite(t *testing.T) {
	readOnly := Extent{Width: 4096, Height: 4096}
	writeOnly := Extent{Width: 4096, Height: 4096}

	cases := []struct {
		name string
		fd   FormatDescriptor
		want bool
	}{
		{"no modifiers", FormatDescriptor{}, false},
		{"read only", FormatDescriptor{Modifiers: []ModifierInfo{{TextureMaxExtents: &readOnly}}}, false},
		{"write only", FormatDescriptor{Modifiers: []ModifierInfo{{RenderMaxExtents: &writeOnly}}}, false},
		{"split across modifiers", FormatDescriptor{Modifiers: []ModifierInfo{
			{TextureMaxExtents: &readOnly},
			{RenderMaxExtents: &writeOnly},
		}}, false},
		{"one modifier both", FormatDescriptor{Modifiers: []ModifierInfo{
			{TextureMaxExtents: &readOnly, RenderMaxExtents: &writeOnly},
		}}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := formatSupportsReadWrite(c.fd); got != c.want {
				t.Errorf("formatSupportsReadWrite() = %v, want %v", got, c.want)
			}
		})
	}
}
