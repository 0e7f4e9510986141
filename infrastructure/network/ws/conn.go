package ws

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/charisbit/net-rewire/application/network/connection"

	"github.com/coder/websocket"
)

var _ connection.Transport = (*Conn)(nil)

const closeTimeout = time.Second

// Conn exposes a WebSocket as the framed byte stream used by the tunnel.
// Every Write becomes one binary message; Read drains messages back to back
// so frames may span or share messages without affecting decoding.
type Conn struct {
	ws     *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	cur    io.Reader
	wmu    sync.Mutex
	raddr  net.Addr
	once   sync.Once
}

func newConn(ctx context.Context, c *websocket.Conn, remote net.Addr) *Conn {
	ctx, cancel := context.WithCancel(ctx)
	return &Conn{ws: c, ctx: ctx, cancel: cancel, raddr: remote}
}

func (c *Conn) Write(p []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if len(p) == 0 {
		return 0, nil
	}
	if err := c.ws.Write(c.ctx, websocket.MessageBinary, p); err != nil {
		return 0, mapErr(err)
	}
	return len(p), nil
}

func (c *Conn) Read(p []byte) (int, error) {
	for {
		if c.cur != nil {
			n, err := c.cur.Read(p)
			if errors.Is(err, io.EOF) {
				c.cur = nil
				if n > 0 {
					return n, nil
				}
				continue
			}
			return n, mapErr(err)
		}
		mt, r, err := c.ws.Reader(c.ctx)
		if err != nil {
			return 0, mapErr(err)
		}
		if mt != websocket.MessageBinary {
			_, _ = io.Copy(io.Discard, r)
			continue
		}
		c.cur = r
	}
}

// Close sends a normal closure and cancels pending reads and writes. A peer
// that does not answer the closing handshake within closeTimeout is cut off.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		done := make(chan error, 1)
		go func() { done <- c.ws.Close(websocket.StatusNormalClosure, "") }()
		timer := time.NewTimer(closeTimeout)
		defer timer.Stop()
		select {
		case err = <-done:
		case <-timer.C:
			err = c.ws.CloseNow()
		}
		c.cancel()
	})
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (c *Conn) RemoteAddr() net.Addr {
	if c.raddr != nil {
		return c.raddr
	}
	return &net.TCPAddr{}
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return io.EOF
	}
	return err
}
