package interception

import (
	"errors"
	"io"
)

// ErrClosed is wrapped by ReadPacket once the interceptor has been closed.
var ErrClosed = errors.New("interceptor closed")

// Family is the address-family protocol number a packet was tagged with.
type Family int

// Source yields intercepted outbound packets one at a time.
// ReadPacket blocks until a packet is available or the source is closed.
type Source interface {
	ReadPacket(p []byte) (n int, family Family, err error)
}

// Sink hands packets back to the host network stack.
// Passthrough sends an outbound packet on its normal path unchanged;
// Reinject delivers a packet received from the tunnel to the host stack.
// Both preserve submission order.
type Sink interface {
	Passthrough(p []byte, family Family) error
	Reinject(p []byte) error
}

type Interceptor interface {
	Source
	Sink
	io.Closer
}
