package packet

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedProtocol = errors.New("unsupported filter protocol")
	ErrInvalidPort         = errors.New("invalid filter port")
)

type Protocol string

const (
	TCP Protocol = "tcp"
)

// Rule selects the packets that are tunneled.
type Rule struct {
	Protocol Protocol
	Port     uint16
}

func NewRule(protocol string, port int) (Rule, error) {
	p := Protocol(strings.ToLower(strings.TrimSpace(protocol)))
	if p != TCP {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnsupportedProtocol, protocol)
	}
	if port < 1 || port > 65535 {
		return Rule{}, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	return Rule{Protocol: p, Port: uint16(port)}, nil
}

// Matches reports whether a classified packet goes through the tunnel.
// A truncated TCP header never matches.
func (r Rule) Matches(info Info) bool {
	if r.Protocol != TCP || !info.IsTCP || info.Truncated() {
		return false
	}
	return info.DestPort == r.Port
}

func (r Rule) String() string {
	return fmt.Sprintf("%s/%d", r.Protocol, r.Port)
}
