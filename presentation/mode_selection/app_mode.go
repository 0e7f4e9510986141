package mode_selection

import (
	"github.com/charisbit/net-rewire/domain/app"
	"github.com/charisbit/net-rewire/domain/mode"
)

// AppMode resolves the application's runtime mode and its options.
type AppMode interface {
	Mode() (mode.Mode, error)
	// ConfigPath is empty when the default location should be used.
	ConfigPath() string
	UIMode() app.UIMode
}
