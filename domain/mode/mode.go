package mode

type Mode int

const (
	Unknown Mode = iota
	// Agent runs the endpoint agent next to the intercepted traffic
	Agent
	// Relay runs the relay bridge at the remote edge
	Relay
	// Version prints the build version
	Version
)

func (m Mode) String() string {
	switch m {
	case Agent:
		return "agent"
	case Relay:
		return "relay"
	case Version:
		return "version"
	default:
		return "unknown"
	}
}
