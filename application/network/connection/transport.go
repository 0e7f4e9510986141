package connection

import (
	"context"
	"io"
	"net"
)

// Transport is one reliable byte stream carrying length-prefixed frames.
type Transport interface {
	io.ReadWriteCloser
	RemoteAddr() net.Addr
}

// Dialer opens a new Transport towards the relay.
type Dialer interface {
	Dial(ctx context.Context) (Transport, error)
}

// Listener accepts inbound Transports on the relay side.
type Listener interface {
	Accept() (Transport, error)
	Close() error
	Addr() net.Addr
}
