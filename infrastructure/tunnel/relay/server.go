package relay

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/charisbit/net-rewire/application/logging"
	"github.com/charisbit/net-rewire/application/network/connection"
	"github.com/charisbit/net-rewire/application/network/tun"
	"github.com/charisbit/net-rewire/domain/network/frame"
	"github.com/charisbit/net-rewire/infrastructure/telemetry/counters"
)

// acceptBackoff bounds how fast a persistently failing Accept is retried.
const acceptBackoff = 50 * time.Millisecond

type Config struct {
	FrameCap frame.Cap
	// MaxSessions caps concurrent sessions; 0 means unbounded.
	MaxSessions int
}

// Server accepts agent connections and runs one Session per connection.
// Sessions never share mutable state beyond the counters and the repository.
type Server struct {
	listener   connection.Listener
	factory    tun.Factory
	limit      frame.Cap
	slots      chan struct{}
	counters   *counters.Relay
	repository Repository
	logger     logging.Logger
}

func NewServer(
	cfg Config,
	listener connection.Listener,
	factory tun.Factory,
	stats *counters.Relay,
	logger logging.Logger,
) *Server {
	if cfg.FrameCap == 0 {
		cfg.FrameCap = frame.MaxSize
	}
	var slots chan struct{}
	if cfg.MaxSessions > 0 {
		slots = make(chan struct{}, cfg.MaxSessions)
	}
	return &Server{
		listener:   listener,
		factory:    factory,
		limit:      cfg.FrameCap,
		slots:      slots,
		counters:   stats,
		repository: NewConcurrentRepository(NewDefaultRepository()),
		logger:     logger,
	}
}

func (s *Server) Sessions() Repository {
	return s.repository
}

// Serve runs the accept loop until ctx is cancelled, then waits for every
// session to release its resources. A session failure never ends the loop.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Printf("relay listening on %s", s.listener.Addr())

	//using this goroutine to 'unblock' Listener.Accept blocking-call
	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		if !s.acquire(ctx) {
			return nil
		}
		conn, err := s.listener.Accept()
		if ctx.Err() != nil {
			s.release()
			if conn != nil {
				_ = conn.Close()
			}
			return nil
		}
		if err != nil {
			s.release()
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.logger.Printf("failed to accept connection: %v", err)
			if !sleep(ctx, acceptBackoff) {
				return nil
			}
			continue
		}

		session := NewSession(conn, s.limit, s.counters, s.logger)
		s.repository.Add(session)
		s.counters.SessionsAccepted.Add(1)
		s.counters.SessionsActive.Add(1)

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.release()
			s.handle(ctx, session)
		}()
	}
}

func (s *Server) handle(ctx context.Context, session *Session) {
	defer func() {
		s.repository.Delete(session)
		s.counters.SessionsActive.Add(-1)
		s.counters.SessionsClosed.Add(1)
	}()

	if err := session.Run(ctx, s.factory); err != nil {
		s.counters.SessionsFailed.Add(1)
		s.logger.Printf("session %s (%s) failed: %v", session.ID(), session.RemoteAddr(), err)
		return
	}
	s.logger.Printf("session %s (%s) closed", session.ID(), session.RemoteAddr())
}

func (s *Server) acquire(ctx context.Context) bool {
	if s.slots == nil {
		return ctx.Err() == nil
	}
	select {
	case s.slots <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Server) release() {
	if s.slots != nil {
		<-s.slots
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
