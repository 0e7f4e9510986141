package counters

import (
	"fmt"
	"sync/atomic"
)

// Agent counts what the endpoint agent did with intercepted packets.
type Agent struct {
	PacketsInspected     atomic.Uint64
	PacketsTunneled      atomic.Uint64
	PacketsPassedThrough atomic.Uint64
	PacketsReceived      atomic.Uint64
	TunnelSendFailures   atomic.Uint64
	ConnectionErrors     atomic.Uint64
	Reconnects           atomic.Uint64
	PassthroughFailures  atomic.Uint64
	ReinjectFailures     atomic.Uint64
}

type AgentSnapshot struct {
	PacketsInspected     uint64
	PacketsTunneled      uint64
	PacketsPassedThrough uint64
	PacketsReceived      uint64
	TunnelSendFailures   uint64
	ConnectionErrors     uint64
	Reconnects           uint64
	PassthroughFailures  uint64
	ReinjectFailures     uint64
}

func (a *Agent) Snapshot() AgentSnapshot {
	return AgentSnapshot{
		PacketsInspected:     a.PacketsInspected.Load(),
		PacketsTunneled:      a.PacketsTunneled.Load(),
		PacketsPassedThrough: a.PacketsPassedThrough.Load(),
		PacketsReceived:      a.PacketsReceived.Load(),
		TunnelSendFailures:   a.TunnelSendFailures.Load(),
		ConnectionErrors:     a.ConnectionErrors.Load(),
		Reconnects:           a.Reconnects.Load(),
		PassthroughFailures:  a.PassthroughFailures.Load(),
		ReinjectFailures:     a.ReinjectFailures.Load(),
	}
}

func (s AgentSnapshot) String() string {
	return fmt.Sprintf(
		"inspected=%d tunneled=%d passed=%d received=%d send_failures=%d conn_errors=%d reconnects=%d passthrough_failures=%d reinject_failures=%d",
		s.PacketsInspected, s.PacketsTunneled, s.PacketsPassedThrough, s.PacketsReceived,
		s.TunnelSendFailures, s.ConnectionErrors, s.Reconnects, s.PassthroughFailures, s.ReinjectFailures,
	)
}

// Fields lists name/value pairs in display order.
func (s AgentSnapshot) Fields() []Field {
	return []Field{
		{"Inspected", s.PacketsInspected},
		{"Tunneled", s.PacketsTunneled},
		{"Passed through", s.PacketsPassedThrough},
		{"Received", s.PacketsReceived},
		{"Send failures", s.TunnelSendFailures},
		{"Connection errors", s.ConnectionErrors},
		{"Reconnects", s.Reconnects},
		{"Passthrough failures", s.PassthroughFailures},
		{"Reinject failures", s.ReinjectFailures},
	}
}

type Field struct {
	Name  string
	Value uint64
}
