package relay

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid session state transition")

type SessionState int32

const (
	Accepted SessionState = iota
	InterfaceReady
	Bridging
	Closing
	Closed
)

func (s SessionState) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case InterfaceReady:
		return "interface-ready"
	case Bridging:
		return "bridging"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// canTransition lists the only legal edges. Every non-terminal state may
// move to Closing; Closed is terminal.
func canTransition(from, to SessionState) bool {
	switch from {
	case Accepted:
		return to == InterfaceReady || to == Closing
	case InterfaceReady:
		return to == Bridging || to == Closing
	case Bridging:
		return to == Closing
	case Closing:
		return to == Closed
	default:
		return false
	}
}
