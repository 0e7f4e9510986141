//go:build !linux

package relay

import (
	"errors"

	"github.com/charisbit/net-rewire/application/logging"
	"github.com/charisbit/net-rewire/application/network/tun"
	"github.com/charisbit/net-rewire/infrastructure/settings"
)

func newTunFactory(settings.RelayInterface, logging.Logger) (tun.Factory, error) {
	return nil, errors.New("per-session interfaces are only supported on linux")
}
