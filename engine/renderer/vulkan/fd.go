package vulkan

import "golang.org/x/sys/unix"

// dupFd duplicates fd with FD_CLOEXEC set. Vulkan takes ownership of fds
// passed to memory/semaphore/fence import calls, so every import duplicates
// the caller's fd first.
func dupFd(fd int) (int, error) {
	return unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0)
}
