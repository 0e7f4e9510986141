package settings

import (
	"github.com/charisbit/net-rewire/domain/network/packet"
)

// Filter selects which outbound packets are tunneled.
type Filter struct {
	Protocol string `json:"Protocol"`
	Port     int    `json:"Port"`
}

func DefaultFilter() Filter {
	return Filter{Protocol: string(packet.TCP), Port: DefaultFilterPort}
}

func (f Filter) Rule() (packet.Rule, error) {
	return packet.NewRule(f.Protocol, f.Port)
}
