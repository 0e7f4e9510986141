package tcp

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/charisbit/net-rewire/application/network/connection"
)

const DefaultKeepAlive = 30 * time.Second

var _ connection.Dialer = (*Dialer)(nil)

// ContextDialer is satisfied by *net.Dialer.
type ContextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type Dialer struct {
	address string
	dialer  ContextDialer
}

func NewDialer(address string, timeout time.Duration) *Dialer {
	return &Dialer{
		address: address,
		dialer: &net.Dialer{
			Timeout:   timeout,
			KeepAlive: DefaultKeepAlive,
		},
	}
}

func NewDialerWith(address string, dialer ContextDialer) *Dialer {
	return &Dialer{address: address, dialer: dialer}
}

func (d *Dialer) Dial(ctx context.Context) (connection.Transport, error) {
	conn, err := d.dialer.DialContext(ctx, "tcp", d.address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", d.address, err)
	}
	return conn, nil
}
