package vulkan

import "testing"

func TestModifierInfoCanReadCanWrite(t *testing.T) {
	cases := []struct {
		name      string
		info      ModifierInfo
		wantRead  bool
		wantWrite bool
	}{
		{"neither", ModifierInfo{}, false, false},
		{"read-only", ModifierInfo{TextureMaxExtents: &Extent{Width: 4096, Height: 4096}}, true, false},
		{"write-only", ModifierInfo{RenderMaxExtents: &Extent{Width: 4096, Height: 4096}}, false, true},
		{"both", ModifierInfo{
			TextureMaxExtents: &Extent{Width: 4096, Height: 4096},
			RenderMaxExtents:  &Extent{Width: 4096, Height: 4096},
		}, true, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.info.CanRead(); got != c.wantRead {
				t.Errorf("CanRead() = %v, want %v", got, c.wantRead)
			}
			if got := c.info.CanWrite(); got != c.wantWrite {
				t.Errorf("CanWrite() = %v, want %v", got, c.wantWrite)
			}
		})
	}
}

func TestFourCCConstantsMatchDRMEncoding(t *testing.T) {
	fourcc := func(a, b, c, d byte) uint32 {
		return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
	}
	if got, want := FourCCXRGB8888, fourcc('X', 'R', '2', '4'); got != want {
		t.Errorf("FourCCXRGB8888 = %#x, want %#x", got, want)
	}
	if got, want := FourCCARGB8888, fourcc('A', 'R', '2', '4'); got != want {
		t.Errorf("FourCCARGB8888 = %#x, want %#x", got, want)
	}
}

func TestCandidateFormatsIncludesRequiredFormats(t *testing.T) {
	seen := map[uint32]bool{}
	for _, f := range candidateFormats {
		seen[f.FourCC] = true
		if f.BytesPerPixel == 0 {
			t.Errorf("FourCC %#x has zero BytesPerPixel", f.FourCC)
		}
	}
	if !seen[FourCCXRGB8888] {
		t.Errorf("candidateFormats missing FourCCXRGB8888")
	}
	if !seen[FourCCARGB8888] {
		t.Errorf("candidateFormats missing FourCCARGB8888")
	}
}
