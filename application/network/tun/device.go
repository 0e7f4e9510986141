package tun

import (
	"context"
	"net/netip"
)

// Device provides a single and trivial API for any supported virtual interface.
// Read yields one raw IP packet per call; Write injects one raw IP packet.
type Device interface {
	Read(data []byte) (int, error)
	Write(data []byte) (int, error)
	Close() error
}

// Interface is a Device created for one relay session.
type Interface interface {
	Device
	Name() string
	LocalAddr() netip.Prefix
	PeerAddr() netip.Addr
}

// Factory creates a dedicated virtual interface per relay session.
// Close on the returned Interface tears the interface down.
type Factory interface {
	Create(ctx context.Context) (Interface, error)
}
