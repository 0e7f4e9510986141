//go:build linux

package ioctl

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const DefaultTunPath = "/dev/net/tun"

// Wrapper attaches to TUN interfaces through the clone device.
type Wrapper struct {
	tunPath string
}

func NewWrapper(tunPath string) Contract {
	if tunPath == "" {
		tunPath = DefaultTunPath
	}
	return &Wrapper{tunPath: tunPath}
}

// CreateTunInterface opens the clone device and binds it to name with
// TUNSETIFF (IFF_TUN | IFF_NO_PI): reads and writes are bare IP packets.
func (w *Wrapper) CreateTunInterface(name string) (*os.File, error) {
	if len(name) >= unix.IFNAMSIZ {
		return nil, fmt.Errorf("interface name %q longer than %d bytes", name, unix.IFNAMSIZ-1)
	}
	f, err := os.OpenFile(w.tunPath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", w.tunPath, err)
	}
	ifr, err := unix.NewIfreq(name)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	ifr.SetUint16(unix.IFF_TUN | unix.IFF_NO_PI)
	if err := unix.IoctlIfreq(int(f.Fd()), unix.TUNSETIFF, ifr); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("TUNSETIFF %s: %w", name, err)
	}
	return f, nil
}

func (w *Wrapper) DetectTunNameFromFd(f *os.File) (string, error) {
	ifr, err := unix.NewIfreq("")
	if err != nil {
		return "", err
	}
	if err := unix.IoctlIfreq(int(f.Fd()), unix.TUNGETIFF, ifr); err != nil {
		return "", fmt.Errorf("TUNGETIFF: %w", err)
	}
	return ifr.Name(), nil
}
