//go:build linux

package platform

type linuxCaps struct{}

func (linuxCaps) RelaySupported() bool { return true }
func (linuxCaps) AgentSupported() bool { return true }

// Capabilities returns the platform capabilities for linux.
func Capabilities() Caps { return linuxCaps{} }
