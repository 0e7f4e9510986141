package relay

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
	"github.com/charisbit/net-rewire/application/network/tun"
	"github.com/charisbit/net-rewire/domain/network/frame"
	"github.com/charisbit/net-rewire/infrastructure/network/framing"
	"github.com/charisbit/net-rewire/infrastructure/telemetry/counters"
	"github.com/charisbit/net-rewire/infrastructure/telemetry/trafficstats"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	errConnectionClosed = errors.New("agent closed the connection")
	errInterfaceClosed  = errors.New("interface closed")
)

// Session bridges one agent connection to its own virtual interface.
type Session struct {
	id       uuid.UUID
	remote   string
	started  time.Time
	conn     connection.Transport
	limit    frame.Cap
	counters *counters.Relay
	logger   logging.Logger

	state atomic.Int32

	mu  sync.Mutex
	dev tun.Interface

	closeOnce sync.Once
}

func NewSession(conn connection.Transport, limit frame.Cap, stats *counters.Relay, logger logging.Logger) *Session {
	return &Session{
		id:       uuid.New(),
		remote:   conn.RemoteAddr().String(),
		started:  time.Now(),
		conn:     conn,
		limit:    limit,
		counters: stats,
		logger:   logger,
	}
}

func (s *Session) ID() uuid.UUID       { return s.id }
func (s *Session) RemoteAddr() string  { return s.remote }
func (s *Session) Started() time.Time  { return s.started }
func (s *Session) State() SessionState { return SessionState(s.state.Load()) }

// InterfaceName is empty until the interface has been created.
func (s *Session) InterfaceName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return ""
	}
	return s.dev.Name()
}

func (s *Session) transition(to SessionState) error {
	for {
		from := s.State()
		if !canTransition(from, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}
		if s.state.CompareAndSwap(int32(from), int32(to)) {
			return nil
		}
	}
}

// Run creates the session's interface and forwards frames in both
// directions until either side fails or ctx is cancelled. The connection
// and the interface are released before Run returns, on every path.
func (s *Session) Run(ctx context.Context, factory tun.Factory) error {
	dev, err := factory.Create(ctx)
	if err != nil {
		s.close()
		return fmt.Errorf("session %s: create interface: %w", s.id, err)
	}
	s.mu.Lock()
	s.dev = dev
	s.mu.Unlock()

	if err := s.transition(InterfaceReady); err != nil {
		s.close()
		return err
	}
	s.logger.Printf("session %s: %s bridged to %s (%s, peer %s)", s.id, s.remote, dev.Name(), dev.LocalAddr(), dev.PeerAddr())

	if err := s.transition(Bridging); err != nil {
		s.close()
		return err
	}
	err = s.bridge(ctx, dev)
	s.close()
	return err
}

func (s *Session) bridge(ctx context.Context, dev tun.Interface) error {
	g, gctx := errgroup.WithContext(ctx)

	// Closing both handles is what unblocks the directional reads.
	g.Go(func() error {
		<-gctx.Done()
		s.close()
		return nil
	})
	g.Go(func() error {
		return s.toInterface(dev)
	})
	g.Go(func() error {
		return s.toConnection(dev)
	})

	err := g.Wait()
	switch {
	case ctx.Err() != nil,
		errors.Is(err, errConnectionClosed),
		errors.Is(err, errInterfaceClosed):
		return nil
	case errors.Is(err, framing.ErrProtocolViolation):
		s.counters.ProtocolErrors.Add(1)
	}
	return err
}

func (s *Session) toInterface(dev tun.Device) error {
	reader := framing.NewReader(s.conn, s.limit)
	rec := trafficstats.NewRecorder(trafficstats.Upstream)
	defer rec.Flush()
	for {
		p, err := reader.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || s.State() != Bridging {
				return errConnectionClosed
			}
			return fmt.Errorf("read from agent: %w", err)
		}
		if _, err := dev.Write(p); err != nil {
			if s.State() != Bridging {
				return errInterfaceClosed
			}
			return fmt.Errorf("write to interface: %w", err)
		}
		s.counters.FramesToInterface.Add(1)
		rec.Record(len(p))
	}
}

func (s *Session) toConnection(dev tun.Device) error {
	buf := make([]byte, s.limit.Int())
	writer := framing.NewWriter(s.conn, s.limit)
	rec := trafficstats.NewRecorder(trafficstats.Downstream)
	defer rec.Flush()
	for {
		n, err := dev.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) || s.State() != Bridging {
				return errInterfaceClosed
			}
			return fmt.Errorf("read from interface: %w", err)
		}
		if n == 0 {
			continue
		}
		if err := writer.WriteFrame(buf[:n]); err != nil {
			if errors.Is(err, framing.ErrFrameTooLarge) {
				s.logger.Printf("session %s: dropped %d byte packet over frame cap", s.id, n)
				continue
			}
			if s.State() != Bridging {
				return errConnectionClosed
			}
			return fmt.Errorf("write to agent: %w", err)
		}
		s.counters.FramesToConnection.Add(1)
		rec.Record(n)
	}
}

// close moves the session to Closing, releases both handles, then marks it
// Closed. Only the first call does anything.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		_ = s.transition(Closing)
		if err := s.conn.Close(); err != nil {
			s.logger.Printf("session %s: close connection: %v", s.id, err)
		}
		s.mu.Lock()
		dev := s.dev
		s.mu.Unlock()
		if dev != nil {
			if err := dev.Close(); err != nil {
				s.logger.Printf("session %s: close interface %s: %v", s.id, dev.Name(), err)
			}
		}
		_ = s.transition(Closed)
	})
}
