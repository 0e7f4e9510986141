package settings

import "time"

const (
	DefaultEthernetMTU = 1500
	MinimumIPv4MTU     = 576

	DefaultFilterPort       = 25
	DefaultReconnectDelay   = 5 * time.Second
	DefaultDialTimeout      = 10 * time.Second
	DefaultStatsInterval    = 10 * time.Second
	DefaultRelayNamePrefix  = "rwtun"
	DefaultRelaySubnet      = "10.8.0.0/16"
	DefaultAgentTunName     = "nrw0"
	DefaultListenAddress    = ":5555"
	DefaultPassthroughMark  = 0x4e52
	maxInterfaceNameLength  = 15
	maxRelayNameIndexDigits = 5
)
