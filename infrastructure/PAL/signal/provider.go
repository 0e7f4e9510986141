package signal

import "os"

// Provider abstracts platform-specific signals
type Provider interface {
	ShutdownSignals() []os.Signal
	// ReloadSignals may be empty where the platform has no reload convention.
	ReloadSignals() []os.Signal
}
