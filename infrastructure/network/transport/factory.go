package transport

import (
	"context"
	"fmt"

	"github.com/charisbit/net-rewire/application/network/connection"
	"github.com/charisbit/net-rewire/domain/network/frame"
	"github.com/charisbit/net-rewire/infrastructure/network/tcp"
	"github.com/charisbit/net-rewire/infrastructure/network/ws"
	"github.com/charisbit/net-rewire/infrastructure/settings"
)

// NewDialer returns the agent-side dialer for the endpoint's carrier.
// Framing is identical over every carrier.
func NewDialer(endpoint settings.Endpoint, limit frame.Cap) (connection.Dialer, error) {
	timeout := endpoint.DialTimeoutMs.Or(settings.DefaultDialTimeout)
	switch endpoint.Protocol {
	case settings.TCP:
		return tcp.NewDialer(endpoint.Address, timeout), nil
	case settings.WS:
		return ws.NewDialer(endpoint.Address, endpoint.Path, timeout, limit)
	default:
		return nil, fmt.Errorf("%w: %s", settings.ErrInvalidProtocol, endpoint.Protocol)
	}
}

// Listen opens the relay-side listener. maxConns > 0 caps accepted TCP
// connections at the socket level as well.
func Listen(ctx context.Context, endpoint settings.Endpoint, maxConns int, limit frame.Cap) (connection.Listener, error) {
	switch endpoint.Protocol {
	case settings.TCP:
		ln, err := tcp.Listen(ctx, endpoint.Address, maxConns)
		if err != nil {
			return nil, fmt.Errorf("listen tcp %s: %w", endpoint.Address, err)
		}
		return ln, nil
	case settings.WS:
		ln, err := ws.Listen(ctx, endpoint.Address, endpoint.Path, limit)
		if err != nil {
			return nil, fmt.Errorf("listen ws %s: %w", endpoint.Address, err)
		}
		return ln, nil
	default:
		return nil, fmt.Errorf("%w: %s", settings.ErrInvalidProtocol, endpoint.Protocol)
	}
}
