package reactor

import (
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestAwaitReadableWakesOnWrite(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer r.Close()

	rd, wr, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	defer rd.Close()
	defer wr.Close()

	done := make(chan error, 1)
	go func() { done <- r.AwaitReadable(int(rd.Fd())) }()

	time.Sleep(20 * time.Millisecond)
	if _, err := wr.Write([]byte("x")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("AwaitReadable() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("AwaitReadable did not return after fd became readable")
	}
}

func TestAwaitReadableReportsHangup(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer r.Close()

	rd, wr, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	defer rd.Close()

	done := make(chan error, 1)
	go func() { done <- r.AwaitReadable(int(rd.Fd())) }()

	time.Sleep(20 * time.Millisecond)
	wr.Close()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("AwaitReadable() error = nil, want a hangup error")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("AwaitReadable did not return after writer closed")
	}
}

func TestAwaitReadableOnClosedReactor(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	rd, wr, err := unix.Pipe2(unix.O_CLOEXEC)
	if err != nil {
		t.Fatalf("unix.Pipe2() error = %v", err)
	}
	defer unix.Close(rd)
	defer unix.Close(wr)

	if err := r.AwaitReadable(rd); err == nil {
		t.Fatalf("AwaitReadable() on closed reactor returned nil error")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second Close() error = %v, want nil", err)
	}
}
