//go:build linux

package relay

import (
	"github.com/charisbit/net-rewire/application/logging"
	"github.com/charisbit/net-rewire/application/network/tun"
	palRelay "github.com/charisbit/net-rewire/infrastructure/PAL/tunnel/relay"
	"github.com/charisbit/net-rewire/infrastructure/settings"
)

func newTunFactory(cfg settings.RelayInterface, logger logging.Logger) (tun.Factory, error) {
	factory, err := palRelay.NewTunFactory(cfg, logger)
	if err != nil {
		return nil, err
	}
	return factory, nil
}
