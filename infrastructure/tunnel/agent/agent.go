package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charisbit/net-rewire/application/logging"
	"github.com/charisbit/net-rewire/application/network/connection"
	"github.com/charisbit/net-rewire/application/network/interception"
	"github.com/charisbit/net-rewire/domain/network/frame"
	"github.com/charisbit/net-rewire/domain/network/packet"
	"github.com/charisbit/net-rewire/infrastructure/network/framing"
	"github.com/charisbit/net-rewire/infrastructure/settings"
	"github.com/charisbit/net-rewire/infrastructure/telemetry/counters"
	"github.com/charisbit/net-rewire/infrastructure/telemetry/trafficstats"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultSendQueueSize    = 256
	DefaultSendStallTimeout = 10 * time.Second
)

var ErrSendStalled = errors.New("tunnel write stalled")

type Config struct {
	Rule           packet.Rule
	ReconnectDelay time.Duration
	FrameCap       frame.Cap
	// SendQueueSize bounds the packets waiting for the tunnel writer.
	SendQueueSize int
	// SendStallTimeout is how long a single tunnel write may block while
	// the queue is full before the connection is dropped.
	SendStallTimeout time.Duration
}

// Agent forwards intercepted packets matching the rule to the relay and
// hands everything else back to the host unchanged. Packets received from
// the relay are reinjected in arrival order.
type Agent struct {
	interceptor interception.Interceptor
	dialer      connection.Dialer
	delay       time.Duration
	limit       frame.Cap
	queueSize   int
	stall       time.Duration
	counters    *counters.Agent
	logger      logging.Logger
	buffers     sync.Pool

	rule    atomic.Pointer[packet.Rule]
	state   atomic.Int32
	current atomic.Pointer[TunnelConnection]
}

func New(
	cfg Config,
	interceptor interception.Interceptor,
	dialer connection.Dialer,
	stats *counters.Agent,
	logger logging.Logger,
) *Agent {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = settings.DefaultReconnectDelay
	}
	if cfg.FrameCap == 0 {
		cfg.FrameCap = frame.MaxSize
	}
	if cfg.SendQueueSize <= 0 {
		cfg.SendQueueSize = DefaultSendQueueSize
	}
	if cfg.SendStallTimeout <= 0 {
		cfg.SendStallTimeout = DefaultSendStallTimeout
	}
	a := &Agent{
		interceptor: interceptor,
		dialer:      dialer,
		delay:       cfg.ReconnectDelay,
		limit:       cfg.FrameCap,
		queueSize:   cfg.SendQueueSize,
		stall:       cfg.SendStallTimeout,
		counters:    stats,
		logger:      logger,
	}
	a.buffers.New = func() any {
		b := make([]byte, a.limit.Int())
		return &b
	}
	a.SetRule(cfg.Rule)
	return a
}

// SetRule replaces the filter. It is safe to call while Run is active.
func (a *Agent) SetRule(rule packet.Rule) {
	a.rule.Store(&rule)
}

func (a *Agent) Rule() packet.Rule {
	return *a.rule.Load()
}

func (a *Agent) State() State {
	return State(a.state.Load())
}

// Connection returns the live tunnel connection, or nil when disconnected.
func (a *Agent) Connection() *TunnelConnection {
	return a.current.Load()
}

// Run blocks until ctx is cancelled or the interceptor fails. On return the
// interceptor and any tunnel connection are closed.
func (a *Agent) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		if err := a.interceptor.Close(); err != nil {
			a.logger.Printf("failed to close interceptor: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		return a.supervise(gctx, g)
	})
	g.Go(func() error {
		return a.outbound(gctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// supervise owns the connection lifecycle. Being a single goroutine, it
// never runs two connects at once.
func (a *Agent) supervise(ctx context.Context, g *errgroup.Group) error {
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			if !a.sleep(ctx) {
				return nil
			}
			a.counters.Reconnects.Add(1)
		}

		a.state.Store(int32(Connecting))
		t, err := a.dialer.Dial(ctx)
		if err != nil {
			a.state.Store(int32(Disconnected))
			if ctx.Err() != nil {
				return nil
			}
			a.counters.ConnectionErrors.Add(1)
			a.logger.Printf("failed to connect to relay: %v, retrying in %s", err, a.delay)
			continue
		}

		conn := newTunnelConnection(t, a.limit, a.queueSize)
		inboundDone := make(chan struct{})
		writerDone := make(chan struct{})
		g.Go(func() error {
			defer close(inboundDone)
			a.inbound(conn)
			return nil
		})
		g.Go(func() error {
			defer close(writerDone)
			a.writeLoop(conn)
			return nil
		})
		a.current.Store(conn)
		a.state.Store(int32(Connected))
		a.logger.Printf("connected to relay %s", conn.RemoteAddr())

		select {
		case <-ctx.Done():
		case <-conn.Failed():
		}

		a.current.Store(nil)
		a.state.Store(int32(Disconnected))
		conn.Fail(ctx.Err())
		_ = conn.Close()
		<-inboundDone
		<-writerDone
		a.drain(conn)

		if ctx.Err() != nil {
			return nil
		}
		a.counters.ConnectionErrors.Add(1)
		a.logger.Printf("relay connection %s lost: %v, reconnecting in %s", conn.RemoteAddr(), conn.Err(), a.delay)
	}
}

func (a *Agent) sleep(ctx context.Context) bool {
	timer := time.NewTimer(a.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// inbound reinjects every packet the relay sends until the connection fails.
func (a *Agent) inbound(conn *TunnelConnection) {
	rec := trafficstats.NewRecorder(trafficstats.Downstream)
	defer rec.Flush()
	for {
		p, err := conn.Receive()
		if err != nil {
			if errors.Is(err, framing.ErrProtocolViolation) {
				a.logger.Printf("relay %s violated framing: %v", conn.RemoteAddr(), err)
			}
			if errors.Is(err, io.EOF) {
				err = fmt.Errorf("relay closed the connection: %w", err)
			}
			conn.Fail(err)
			return
		}
		a.counters.PacketsReceived.Add(1)
		rec.Record(len(p))
		if err := a.interceptor.Reinject(p); err != nil {
			a.counters.ReinjectFailures.Add(1)
			a.logger.Printf("failed to reinject packet: %v", err)
		}
	}
}

// writeLoop sends the packets queued on conn in order until it fails.
func (a *Agent) writeLoop(conn *TunnelConnection) {
	rec := trafficstats.NewRecorder(trafficstats.Upstream)
	defer rec.Flush()
	for {
		select {
		case <-conn.Failed():
			return
		case p := <-conn.queue:
			err := conn.Send(p)
			n := len(p)
			a.release(p)
			if err != nil {
				select {
				case <-conn.Failed():
					// closed underneath us
				default:
					a.counters.TunnelSendFailures.Add(1)
					conn.Fail(fmt.Errorf("send to relay: %w", err))
				}
				return
			}
			a.counters.PacketsTunneled.Add(1)
			rec.Record(n)
		}
	}
}

// drain discards what a lost connection never sent.
func (a *Agent) drain(conn *TunnelConnection) {
	for {
		select {
		case p := <-conn.queue:
			a.counters.TunnelSendFailures.Add(1)
			a.release(p)
		default:
			return
		}
	}
}

// outbound classifies every intercepted packet. It never writes to the
// tunnel itself, so a stalled relay cannot hold up passthrough traffic.
func (a *Agent) outbound(ctx context.Context) error {
	buf := make([]byte, a.limit.Int())

	for {
		n, family, err := a.interceptor.ReadPacket(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, interception.ErrClosed) {
				return fmt.Errorf("interceptor closed unexpectedly: %w", err)
			}
			return fmt.Errorf("read intercepted packet: %w", err)
		}
		p := buf[:n]
		a.counters.PacketsInspected.Add(1)

		if info, ok := packet.Classify(p); ok && a.Rule().Matches(info) {
			a.tunnel(p)
			continue
		}

		if err := a.interceptor.Passthrough(p, family); err != nil {
			a.counters.PassthroughFailures.Add(1)
			continue
		}
		a.counters.PacketsPassedThrough.Add(1)
	}
}

// tunnel queues a copy of p on the live connection. With no connection, or
// with the writer too far behind, the packet is dropped rather than held.
func (a *Agent) tunnel(p []byte) {
	conn := a.current.Load()
	if conn == nil || len(p) == 0 || len(p) > a.limit.Int() {
		a.counters.TunnelSendFailures.Add(1)
		return
	}
	b := a.buffers.Get().(*[]byte)
	pkt := (*b)[:copy(*b, p)]
	if conn.Enqueue(pkt) {
		return
	}
	a.release(pkt)
	a.counters.TunnelSendFailures.Add(1)
	if conn.Stalled(a.stall, time.Now()) {
		conn.Fail(fmt.Errorf("%w: no progress for %s", ErrSendStalled, a.stall))
	}
}

func (a *Agent) release(p []byte) {
	b := p[:cap(p)]
	a.buffers.Put(&b)
}
