//go:build !windows

package elevation

import "os"

type ProcessElevationImpl struct {
	geteuid func() int
}

func NewProcessElevation() ProcessElevation {
	return &ProcessElevationImpl{geteuid: os.Geteuid}
}

// IsElevated reports root. TUN creation and raw sockets need CAP_NET_ADMIN
// and CAP_NET_RAW, which root always has.
func (p *ProcessElevationImpl) IsElevated() bool {
	return p.geteuid() == 0
}

func (p *ProcessElevationImpl) Hint() string {
	return "Please restart the application with sudo or as root."
}
