//go:build linux

package epoll

import (
	"errors"
	"io"
	"os"
	"sync/atomic"

	"github.com/charisbit/net-rewire/application/network/tun"

	"golang.org/x/sys/unix"
)

// Device wraps a TUN file descriptor switched to non-blocking mode and
// handed back to the Go runtime, so blocked reads and writes park in the
// runtime's epoll-based poller instead of holding a thread.
//
// Close wakes blocked callers immediately. The runtime keeps the descriptor
// open until the last in-flight Read or Write has returned, so a closed
// number is never reused under a running call.
type Device struct {
	file   *os.File
	closed atomic.Bool
}

var _ tun.Device = (*Device)(nil)

// NewDevice takes ownership of f on success: it will close f before returning.
// On error, ownership remains with the caller (f is not closed).
func NewDevice(f *os.File) (*Device, error) {
	if f == nil {
		return nil, errors.New("nil file")
	}
	dup, err := unix.Dup(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(dup, true); err != nil {
		_ = unix.Close(dup)
		return nil, err
	}
	if _, err := unix.FcntlInt(uintptr(dup), unix.F_SETFD, unix.FD_CLOEXEC); err != nil {
		_ = unix.Close(dup)
		return nil, err
	}

	// a non-blocking descriptor is registered with the runtime poller
	file := os.NewFile(uintptr(dup), f.Name())
	_ = f.Close()
	return &Device{file: file}, nil
}

// Read reads a single packet.
func (d *Device) Read(p []byte) (int, error) {
	n, err := d.file.Read(p)
	return n, mapClosed(err)
}

// Write writes one packet. A TUN write either takes the whole packet or fails.
func (d *Device) Write(p []byte) (int, error) {
	n, err := d.file.Write(p)
	return n, mapClosed(err)
}

// Close releases the descriptor. Only the first call does anything.
func (d *Device) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	return d.file.Close()
}

func mapClosed(err error) error {
	if errors.Is(err, os.ErrClosed) || errors.Is(err, unix.EBADF) {
		return io.ErrClosedPipe
	}
	return err
}
