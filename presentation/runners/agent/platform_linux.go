//go:build linux

package agent

import (
	"github.com/charisbit/net-rewire/application/network/interception"
	palInterception "github.com/charisbit/net-rewire/infrastructure/PAL/interception"
	"github.com/charisbit/net-rewire/infrastructure/settings"
)

func openInterceptor(iface settings.Interface, mark int) (interception.Interceptor, error) {
	icpt, err := palInterception.Open(iface, mark)
	if err != nil {
		return nil, err
	}
	return icpt, nil
}
