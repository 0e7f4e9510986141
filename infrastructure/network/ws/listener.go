//go:build !js

package ws

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charisbit/net-rewire/application/network/connection"
	"github.com/charisbit/net-rewire/domain/network/frame"

	"github.com/coder/websocket"
)

const (
	DefaultPath  = "/tunnel"
	acceptQueue  = 1024
	shutdownWait = 2 * time.Second
)

var _ connection.Listener = (*Listener)(nil)

// Listener serves WebSocket upgrades on path and hands the resulting
// connections out through Accept, so the relay treats them like TCP.
type Listener struct {
	ln     net.Listener
	srv    *http.Server
	queue  chan connection.Transport
	once   sync.Once
	closed chan struct{}
	mark   sync.Once
}

func Listen(ctx context.Context, address, path string, limit frame.Cap) (*Listener, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	return Serve(ctx, ln, path, limit), nil
}

// Serve runs the upgrade handler on an existing listener.
func Serve(ctx context.Context, ln net.Listener, path string, limit frame.Cap) *Listener {
	if path == "" {
		path = DefaultPath
	}
	l := &Listener{
		ln:     ln,
		queue:  make(chan connection.Transport, acceptQueue),
		closed: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			CompressionMode: websocket.CompressionDisabled,
		})
		if err != nil {
			return
		}
		// a message never carries more than one full-size frame
		c.SetReadLimit(int64(frame.PrefixSize + limit.Int()))

		conn := newConn(context.Background(), c, parseTCPAddr(r.RemoteAddr))
		select {
		case l.queue <- conn:
		case <-l.closed:
			_ = c.Close(websocket.StatusGoingAway, "shutting down")
		default:
			_ = c.Close(websocket.StatusTryAgainLater, "accept queue full")
		}
	})

	l.srv = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	serveDone := make(chan struct{})
	go func() {
		_ = l.srv.Serve(ln)
		close(serveDone)
		l.markClosed()
	}()
	go func() {
		select {
		case <-ctx.Done():
			_ = l.Close()
		case <-serveDone:
		}
	}()
	return l
}

func (l *Listener) Accept() (connection.Transport, error) {
	select {
	case c := <-l.queue:
		return c, nil
	case <-l.closed:
		return nil, net.ErrClosed
	}
}

func (l *Listener) Close() error {
	l.once.Do(func() {
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()
		_ = l.srv.Shutdown(shCtx)
		_ = l.ln.Close()
		l.markClosed()
	})
	return nil
}

func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

func (l *Listener) markClosed() {
	l.mark.Do(func() { close(l.closed) })
}

func parseTCPAddr(s string) net.Addr {
	host, port, _ := net.SplitHostPort(s)
	p, _ := strconv.Atoi(port)
	return &net.TCPAddr{IP: net.ParseIP(host), Port: p}
}
