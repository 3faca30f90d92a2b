// Package reactor is the Go rendering of the I/O reactor the component
// design assumes: a way to wait until a sync-file fd becomes readable that
// blocks only the waiting goroutine and never busy-polls.
//
// The reference design assumes a cooperative single-threaded async runtime
// where "await readable" is a language-level suspension point. Go has no
// such runtime built in, so this package uses the closest idiomatic
// substitute: one epoll instance, one dedicated poller goroutine, and a
// buffered notification channel per registered fd. A release-watcher
// (engine/renderer/vulkan's pending-frame teardown) calls Await and blocks
// its own goroutine on the returned channel instead of "awaiting" in the
// cooperative sense, which is a goroutine-per-pending-frame design rather
// than a single-stack-per-task one, but preserves the same observable
// behavior: the watcher only wakes when the sync-file is readable, or on
// error, and never busy-polls.
package reactor

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Reactor owns one epoll instance and the goroutine draining it.
type Reactor struct {
	epfd int

	mu      sync.Mutex
	waiters map[int]chan error
	closed  bool
}

// New creates a reactor and starts its poller goroutine. Callers must call
// Close when the reactor is no longer needed (normally: renderer context
// teardown, see engine/renderer/vulkan.Renderer.Teardown).
func New() (*Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll_create1: %w", err)
	}
	r := &Reactor{
		epfd:    epfd,
		waiters: make(map[int]chan error),
	}
	go r.loop()
	return r, nil
}

// AwaitReadable blocks the calling goroutine until fd becomes readable, the
// reactor observes an error on fd, or the reactor is closed. It does not
// take ownership of fd; the caller remains responsible for closing it.
//
// Only one waiter may be registered per fd at a time; this is always true
// in practice since each sync-file fd belongs to exactly one pending
// frame's release-watcher.
func (r *Reactor) AwaitReadable(fd int) error {
	ch := make(chan error, 1)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return fmt.Errorf("reactor: closed")
	}
	r.waiters[fd] = ch
	r.mu.Unlock()

	ev := unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLONESHOT | unix.EPOLLERR | unix.EPOLLHUP,
		Fd:     int32(fd),
	}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		r.mu.Lock()
		delete(r.waiters, fd)
		r.mu.Unlock()
		return fmt.Errorf("epoll_ctl(add, %d): %w", fd, err)
	}

	err := <-ch
	return err
}

func (r *Reactor) loop() {
	events := make([]unix.EpollEvent, 32)
	for {
		n, err := unix.EpollWait(r.epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			r.failAll(err)
			return
		}
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			var notifyErr error
			if events[i].Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
				notifyErr = fmt.Errorf("reactor: fd %d reported EPOLLERR/EPOLLHUP", fd)
			}
			r.notify(fd, notifyErr)
		}
	}
}

func (r *Reactor) notify(fd int, err error) {
	r.mu.Lock()
	ch, ok := r.waiters[fd]
	if ok {
		delete(r.waiters, fd)
	}
	r.mu.Unlock()
	if !ok {
		return
	}
	// Best-effort removal; the fd may already be gone if the caller closed
	// it concurrently with delivery, which is harmless.
	_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	ch <- err
}

func (r *Reactor) failAll(cause error) {
	r.mu.Lock()
	waiters := r.waiters
	r.waiters = make(map[int]chan error)
	r.closed = true
	r.mu.Unlock()

	for _, ch := range waiters {
		ch <- fmt.Errorf("reactor: poller stopped: %w", cause)
	}
}

// Close stops the poller goroutine and fails any outstanding waiters.
func (r *Reactor) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	waiters := r.waiters
	r.waiters = make(map[int]chan error)
	r.mu.Unlock()

	for _, ch := range waiters {
		ch <- fmt.Errorf("reactor: closed")
	}
	return unix.Close(r.epfd)
}
