package settings

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

var ErrInvalidEndpoint = errors.New("invalid endpoint")

// Endpoint describes where the relay listens or where the agent dials.
type Endpoint struct {
	Protocol      Protocol     `json:"Protocol"`
	Address       string       `json:"Address"`
	Path          string       `json:"Path,omitempty"`
	DialTimeoutMs Milliseconds `json:"DialTimeoutMs,omitempty"`
}

func (e Endpoint) Validate() error {
	switch e.Protocol {
	case TCP:
		if _, _, err := net.SplitHostPort(e.Address); err != nil {
			return fmt.Errorf("%w: address %q: %v", ErrInvalidEndpoint, e.Address, err)
		}
	case WS:
		if strings.HasPrefix(e.Address, "ws://") || strings.HasPrefix(e.Address, "wss://") {
			if _, err := url.Parse(e.Address); err != nil {
				return fmt.Errorf("%w: url %q: %v", ErrInvalidEndpoint, e.Address, err)
			}
		} else if _, _, err := net.SplitHostPort(e.Address); err != nil {
			return fmt.Errorf("%w: address %q: %v", ErrInvalidEndpoint, e.Address, err)
		}
		if e.Path != "" && !strings.HasPrefix(e.Path, "/") {
			return fmt.Errorf("%w: path %q must start with /", ErrInvalidEndpoint, e.Path)
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidProtocol, e.Protocol)
	}
	if e.DialTimeoutMs < 0 {
		return fmt.Errorf("%w: negative dial timeout", ErrInvalidEndpoint)
	}
	return nil
}
