//go:build linux

package epoll

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// socketpairFiles gives two connected datagram endpoints; each Write on one
// side is read as one message on the other, like packets on a TUN fd.
func socketpairFiles(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_SEQPACKET, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	return os.NewFile(uintptr(fds[0]), "a"), os.NewFile(uintptr(fds[1]), "b")
}

func processCPU(t *testing.T) time.Duration {
	t.Helper()
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		t.Fatalf("getrusage: %v", err)
	}
	return time.Duration(ru.Utime.Nano() + ru.Stime.Nano())
}

func TestDevice_ReadWritePackets(t *testing.T) {
	a, b := socketpairFiles(t)
	defer func() { _ = b.Close() }()

	d, err := NewDevice(a)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = d.Close() }()

	if _, err := b.Write([]byte{0x45, 1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 64)
	n, err := d.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf[:n], []byte{0x45, 1, 2, 3}) {
		t.Fatalf("got %x", buf[:n])
	}

	if _, err := d.Write([]byte{0x45, 9}); err != nil {
		t.Fatal(err)
	}
	n, err = b.Read(buf)
	if err != nil || !bytes.Equal(buf[:n], []byte{0x45, 9}) {
		t.Fatalf("peer got %x, %v", buf[:n], err)
	}
}

func TestDevice_IdleReadDoesNotSpin(t *testing.T) {
	a, b := socketpairFiles(t)
	defer func() { _ = b.Close() }()
	d, err := NewDevice(a)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := d.Read(make([]byte, 64))
		done <- err
	}()
	// let the reader park before measuring
	time.Sleep(50 * time.Millisecond)

	before := processCPU(t)
	time.Sleep(500 * time.Millisecond)
	used := processCPU(t) - before

	_ = d.Close()
	<-done

	if used > 150*time.Millisecond {
		t.Fatalf("idle blocked Read used %v of CPU over 500ms", used)
	}
}

func TestDevice_CloseUnblocksReader(t *testing.T) {
	a, b := socketpairFiles(t)
	defer func() { _ = b.Close() }()

	d, err := NewDevice(a)
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := d.Read(make([]byte, 64))
		done <- err
	}()
	time.Sleep(30 * time.Millisecond)
	closedAt := time.Now()
	_ = d.Close()

	select {
	case err := <-done:
		if !errors.Is(err, io.ErrClosedPipe) {
			t.Fatalf("want io.ErrClosedPipe, got %v", err)
		}
		if waited := time.Since(closedAt); waited > 200*time.Millisecond {
			t.Fatalf("reader released %v after close", waited)
		}
	case <-time.After(time.Second):
		t.Fatal("reader not released after close")
	}
}

func TestDevice_ConcurrentCloseWithReaderAndWriter(t *testing.T) {
	a, b := socketpairFiles(t)
	defer func() { _ = b.Close() }()
	d, err := NewDevice(a)
	if err != nil {
		t.Fatal(err)
	}

	readDone := make(chan error, 1)
	go func() {
		buf := make([]byte, 64)
		for {
			if _, err := d.Read(buf); err != nil {
				readDone <- err
				return
			}
		}
	}()
	writeDone := make(chan error, 1)
	go func() {
		for {
			if _, err := d.Write([]byte{0x45, 0}); err != nil {
				writeDone <- err
				return
			}
		}
	}()

	time.Sleep(20 * time.Millisecond)
	_ = d.Close()

	for name, ch := range map[string]chan error{"read": readDone, "write": writeDone} {
		select {
		case err := <-ch:
			if !errors.Is(err, io.ErrClosedPipe) {
				t.Fatalf("%s ended with %v, want io.ErrClosedPipe", name, err)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s not released after close", name)
		}
	}
}

func TestDevice_OperationsAfterClose(t *testing.T) {
	a, b := socketpairFiles(t)
	defer func() { _ = b.Close() }()
	d, err := NewDevice(a)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := d.Write([]byte{1}); !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("write after close: %v", err)
	}
	if _, err := d.Read(make([]byte, 8)); !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("read after close: %v", err)
	}
	if _, err := NewDevice(nil); err == nil {
		t.Fatal("expected error for nil file")
	}
}
