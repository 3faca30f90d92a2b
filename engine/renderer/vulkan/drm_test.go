package vulkan

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/surfacepm/vkgfx/engine/core"
)

func TestDevTFromPathMissingFile(t *testing.T) {
	_, err := DevTFromPath(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatalf("DevTFromPath() error = nil, want non-nil")
	}
	var ge *core.GfxError
	if !errors.As(err, &ge) || ge.Kind != core.ErrFstat {
		t.Fatalf("error = %v, want wrapped core.ErrFstat", err)
	}
}

func TestDevTFromPathRegularFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regular-file")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	devT, err := DevTFromPath(path)
	if err != nil {
		t.Fatalf("DevTFromPath() error = %v", err)
	}
	if devT != 0 {
		t.Fatalf("DevTFromPath() on a regular file = %d, want 0", devT)
	}
}

func TestLookupRenderNodePathNotFound(t *testing.T) {
	if _, err := os.Stat("/dev/dri"); err != nil {
		t.Skip("no /dev/dri on this host")
	}
	_, err := lookupRenderNodePath(^uint64(0))
	if err == nil {
		t.Fatalf("lookupRenderNodePath() error = nil, want ErrNoRenderNode")
	}
	var ge *core.GfxError
	if !errors.As(err, &ge) || ge.Kind != core.ErrNoRenderNode {
		t.Fatalf("error = %v, want core.ErrNoRenderNode", err)
	}
}
