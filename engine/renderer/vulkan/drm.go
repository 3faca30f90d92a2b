package vulkan

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/surfacepm/vkgfx/engine/core"
)

// DevTFromPath opens path (a DRM device node, typically /dev/dri/renderD*)
// and returns the dev_t of the character device it names, for comparison
// against a physical device's advertised DRM properties (device.go's
// makedev).
func DevTFromPath(path string) (uint64, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, core.Wrap(core.ErrFstat, err)
	}
	return st.Rdev, nil
}

// lookupRenderNodePath scans /dev/dri for the character device whose dev_t
// matches targetDevT. Used to recover the render-node path of the physical
// device chosen in NewDevice, since VkPhysicalDeviceDrmPropertiesEXT only
// carries major/minor, not a path.
func lookupRenderNodePath(targetDevT uint64) (string, error) {
	entries, err := os.ReadDir("/dev/dri")
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		path := filepath.Join("/dev/dri", entry.Name())
		var st unix.Stat_t
		if err := unix.Stat(path, &st); err != nil {
			continue
		}
		if st.Mode&unix.S_IFMT != unix.S_IFCHR {
			continue
		}
		if st.Rdev == targetDevT {
			return path, nil
		}
	}
	return "", core.New(core.ErrNoRenderNode)
}
