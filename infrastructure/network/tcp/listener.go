package tcp

import (
	"context"
	"net"

	"github.com/charisbit/net-rewire/application/network/connection"

	"golang.org/x/net/netutil"
)

var _ connection.Listener = (*Listener)(nil)

// Listener adapts a net.Listener to connection.Listener.
type Listener struct {
	ln net.Listener
}

// Listen opens a TCP listener. maxConns > 0 caps the number of simultaneously
// open accepted connections; Accept blocks while the cap is reached.
func Listen(ctx context.Context, address string, maxConns int) (*Listener, error) {
	lc := net.ListenConfig{KeepAlive: DefaultKeepAlive}
	ln, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}
	return NewListener(ln, maxConns), nil
}

func NewListener(ln net.Listener, maxConns int) *Listener {
	if maxConns > 0 {
		ln = netutil.LimitListener(ln, maxConns)
	}
	return &Listener{ln: ln}
}

func (l *Listener) Accept() (connection.Transport, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (l *Listener) Close() error {
	return l.ln.Close()
}

func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}
