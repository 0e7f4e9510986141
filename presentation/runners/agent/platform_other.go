//go:build !linux

package agent

import (
	"errors"

	"github.com/charisbit/net-rewire/application/network/interception"
	"github.com/charisbit/net-rewire/infrastructure/settings"
)

func openInterceptor(settings.Interface, int) (interception.Interceptor, error) {
	return nil, errors.New("packet interception is only supported on linux")
}
