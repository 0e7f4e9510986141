package settings

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrInvalidProtocol = errors.New("invalid protocol")
)

// Protocol specifies the carrier of the framed byte stream
type Protocol int

const (
	UNKNOWN Protocol = iota
	TCP
	WS
)

func (p Protocol) MarshalJSON() ([]byte, error) {
	switch p {
	case UNKNOWN, TCP, WS:
		return json.Marshal(p.String())
	default:
		return nil, ErrInvalidProtocol
	}
}

func (p *Protocol) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UNKNOWN", "":
		*p = UNKNOWN
	case "TCP":
		*p = TCP
	case "WS", "WEBSOCKET":
		*p = WS
	default:
		return ErrInvalidProtocol
	}
	return nil
}

func (p Protocol) String() string {
	switch p {
	case UNKNOWN:
		return "UNKNOWN"
	case TCP:
		return "TCP"
	case WS:
		return "WS"
	default:
		return ErrInvalidProtocol.Error()
	}
}
