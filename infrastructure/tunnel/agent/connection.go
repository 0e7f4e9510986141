package agent

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/charisbit/net-rewire/application/network/connection"
	"github.com/charisbit/net-rewire/domain/network/frame"
	"github.com/charisbit/net-rewire/infrastructure/network/framing"
)

type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// TunnelConnection is one established stream to the relay. Packets are
// queued by Enqueue and written in order by this connection's writer loop,
// the only caller of Send. Only this connection's inbound loop calls
// Receive, so neither side needs a lock around the codec.
type TunnelConnection struct {
	transport    connection.Transport
	reader       *framing.Reader
	writer       *framing.Writer
	queue        chan []byte
	lastActivity atomic.Int64
	// start of the write in progress, 0 when idle
	sendStarted atomic.Int64

	failed   chan struct{}
	failOnce sync.Once
	failErr  error

	closeOnce sync.Once
}

func newTunnelConnection(t connection.Transport, limit frame.Cap, queueSize int) *TunnelConnection {
	c := &TunnelConnection{
		transport: t,
		reader:    framing.NewReader(t, limit),
		writer:    framing.NewWriter(t, limit),
		queue:     make(chan []byte, queueSize),
		failed:    make(chan struct{}),
	}
	c.touch()
	return c
}

// Enqueue hands packet to the writer loop without blocking. It reports
// false when the queue is full. The connection owns packet afterwards.
func (c *TunnelConnection) Enqueue(packet []byte) bool {
	select {
	case c.queue <- packet:
		return true
	default:
		return false
	}
}

func (c *TunnelConnection) Send(packet []byte) error {
	c.sendStarted.Store(time.Now().UnixNano())
	err := c.writer.WriteFrame(packet)
	c.sendStarted.Store(0)
	if err != nil {
		return err
	}
	c.touch()
	return nil
}

// Stalled reports whether the write in progress started more than d before now.
func (c *TunnelConnection) Stalled(d time.Duration, now time.Time) bool {
	started := c.sendStarted.Load()
	return started != 0 && now.Sub(time.Unix(0, started)) > d
}

// Receive returns the next packet from the relay. The slice is reused by the
// following call.
func (c *TunnelConnection) Receive() ([]byte, error) {
	p, err := c.reader.ReadFrame()
	if err != nil {
		return nil, err
	}
	c.touch()
	return p, nil
}

// Fail records the first I/O error and wakes the supervisor.
func (c *TunnelConnection) Fail(err error) {
	c.failOnce.Do(func() {
		c.failErr = err
		close(c.failed)
	})
}

// Failed is closed once Fail has been called.
func (c *TunnelConnection) Failed() <-chan struct{} {
	return c.failed
}

// Err is valid after Failed is closed.
func (c *TunnelConnection) Err() error {
	return c.failErr
}

func (c *TunnelConnection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.transport.Close()
	})
	return err
}

func (c *TunnelConnection) RemoteAddr() string {
	return c.transport.RemoteAddr().String()
}

func (c *TunnelConnection) LastActivity() time.Time {
	return time.Unix(0, c.lastActivity.Load())
}

func (c *TunnelConnection) touch() {
	c.lastActivity.Store(time.Now().UnixNano())
}
