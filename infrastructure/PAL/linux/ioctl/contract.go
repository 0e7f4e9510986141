package ioctl

import (
	"os"
)

type Contract interface {
	CreateTunInterface(name string) (*os.File, error)
	DetectTunNameFromFd(f *os.File) (string, error)
}
