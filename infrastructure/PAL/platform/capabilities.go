package platform

// Caps describes which run modes the current platform supports.
type Caps interface {
	RelaySupported() bool
	AgentSupported() bool
}
