//go:build !linux

package platform

type otherCaps struct{}

func (otherCaps) RelaySupported() bool { return false }
func (otherCaps) AgentSupported() bool { return false }

// Capabilities reports no TUN based modes outside linux.
func Capabilities() Caps { return otherCaps{} }
