package counters

import (
	"fmt"
	"sync/atomic"
)

// Relay counts session lifecycle and forwarding events on the relay. It is
// the only state shared between sessions.
type Relay struct {
	SessionsAccepted   atomic.Uint64
	SessionsActive     atomic.Int64
	SessionsFailed     atomic.Uint64
	SessionsClosed     atomic.Uint64
	FramesToInterface  atomic.Uint64
	FramesToConnection atomic.Uint64
	ProtocolErrors     atomic.Uint64
}

type RelaySnapshot struct {
	SessionsAccepted   uint64
	SessionsActive     int64
	SessionsFailed     uint64
	SessionsClosed     uint64
	FramesToInterface  uint64
	FramesToConnection uint64
	ProtocolErrors     uint64
}

func (r *Relay) Snapshot() RelaySnapshot {
	return RelaySnapshot{
		SessionsAccepted:   r.SessionsAccepted.Load(),
		SessionsActive:     r.SessionsActive.Load(),
		SessionsFailed:     r.SessionsFailed.Load(),
		SessionsClosed:     r.SessionsClosed.Load(),
		FramesToInterface:  r.FramesToInterface.Load(),
		FramesToConnection: r.FramesToConnection.Load(),
		ProtocolErrors:     r.ProtocolErrors.Load(),
	}
}

func (s RelaySnapshot) String() string {
	return fmt.Sprintf(
		"accepted=%d active=%d failed=%d closed=%d to_interface=%d to_connection=%d protocol_errors=%d",
		s.SessionsAccepted, s.SessionsActive, s.SessionsFailed, s.SessionsClosed,
		s.FramesToInterface, s.FramesToConnection, s.ProtocolErrors,
	)
}

func (s RelaySnapshot) Fields() []Field {
	active := uint64(0)
	if s.SessionsActive > 0 {
		active = uint64(s.SessionsActive)
	}
	return []Field{
		{"Sessions accepted", s.SessionsAccepted},
		{"Sessions active", active},
		{"Sessions failed", s.SessionsFailed},
		{"Sessions closed", s.SessionsClosed},
		{"Frames to interface", s.FramesToInterface},
		{"Frames to connection", s.FramesToConnection},
		{"Protocol errors", s.ProtocolErrors},
	}
}
