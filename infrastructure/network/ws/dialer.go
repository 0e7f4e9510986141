package ws

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/charisbit/net-rewire/application/network/connection"
	"github.com/charisbit/net-rewire/domain/network/frame"

	"github.com/coder/websocket"
)

var _ connection.Dialer = (*Dialer)(nil)

type Dialer struct {
	url     string
	timeout time.Duration
	limit   frame.Cap
}

// NewDialer builds a dialer for ws://address/path. A full ws:// or wss:// URL
// in address is used as is.
func NewDialer(address, path string, timeout time.Duration, limit frame.Cap) (*Dialer, error) {
	u, err := buildURL(address, path)
	if err != nil {
		return nil, err
	}
	return &Dialer{url: u, timeout: timeout, limit: limit}, nil
}

func (d *Dialer) Dial(ctx context.Context) (connection.Transport, error) {
	dialCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	c, resp, err := websocket.Dial(dialCtx, d.url, &websocket.DialOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", d.url, err)
	}
	c.SetReadLimit(int64(frame.PrefixSize + d.limit.Int()))

	u, _ := url.Parse(d.url)
	remote, _ := net.ResolveTCPAddr("tcp", hostPort(u))
	var addr net.Addr = &net.TCPAddr{}
	if remote != nil {
		addr = remote
	}
	return newConn(context.Background(), c, addr), nil
}

func (d *Dialer) URL() string {
	return d.url
}

func buildURL(address, path string) (string, error) {
	if address == "" {
		return "", fmt.Errorf("websocket address is empty")
	}
	if u, err := url.Parse(address); err == nil && (u.Scheme == "ws" || u.Scheme == "wss") {
		return u.String(), nil
	}
	if path == "" {
		path = DefaultPath
	}
	u := url.URL{Scheme: "ws", Host: address, Path: path}
	return u.String(), nil
}

func hostPort(u *url.URL) string {
	if u == nil {
		return ""
	}
	if u.Port() != "" {
		return u.Host
	}
	if u.Scheme == "wss" {
		return net.JoinHostPort(u.Hostname(), "443")
	}
	return net.JoinHostPort(u.Hostname(), "80")
}
