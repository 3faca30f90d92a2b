package core

import (
	"errors"
	"testing"
)

func TestGfxErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrCreateDevice, cause)

	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false, want true")
	}

	var ge *GfxError
	if !errors.As(err, &ge) {
		t.Fatalf("errors.As into *GfxError failed")
	}
	if ge.Kind != ErrCreateDevice {
		t.Fatalf("Kind = %v, want ErrCreateDevice", ge.Kind)
	}
}

func TestGfxErrorNewHasNoCause(t *testing.T) {
	err := New(ErrNoGraphicsQueue)
	var ge *GfxError
	if !errors.As(err, &ge) {
		t.Fatalf("errors.As into *GfxError failed")
	}
	if ge.Cause != nil {
		t.Fatalf("Cause = %v, want nil", ge.Cause)
	}
	if ge.Error() != ErrNoGraphicsQueue.String() {
		t.Fatalf("Error() = %q, want %q", ge.Error(), ErrNoGraphicsQueue.String())
	}
}

func TestNoDeviceFoundCarriesDevT(t *testing.T) {
	err := NoDeviceFound(0xBEEF)
	var ge *GfxError
	if !errors.As(err, &ge) {
		t.Fatalf("errors.As into *GfxError failed")
	}
	if ge.DevT != 0xBEEF {
		t.Fatalf("DevT = %d, want 0xBEEF", ge.DevT)
	}
	if got, want := ge.Error(), "could not find a vulkan device matching the render node: dev_t=48879"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestMissingExtensionCarriesName(t *testing.T) {
	err := MissingExtension(ErrMissingDeviceExtension, "VK_KHR_push_descriptor")
	var ge *GfxError
	if !errors.As(err, &ge) {
		t.Fatalf("errors.As into *GfxError failed")
	}
	if ge.Extension != "VK_KHR_push_descriptor" {
		t.Fatalf("Extension = %q, want VK_KHR_push_descriptor", ge.Extension)
	}
}

func TestInvalidShmParametersMessage(t *testing.T) {
	err := InvalidShmParameters(1, 2, 3, 4, 5)
	var ge *GfxError
	if !errors.As(err, &ge) {
		t.Fatalf("errors.As into *GfxError failed")
	}
	want := "the shm parameters are invalid: x=1 y=2 width=3 height=4 stride=5"
	if got := ge.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestUnknownKindStringFallback(t *testing.T) {
	var k Kind = 99999
	if got := k.String(); got != "unknown error" {
		t.Fatalf("String() = %q, want %q", got, "unknown error")
	}
}
