//go:build linux

package interception

import (
	"fmt"

	"github.com/charisbit/net-rewire/infrastructure/network/ip"
	"github.com/charisbit/net-rewire/infrastructure/settings"

	wgtun "golang.zx2c4.com/wireguard/tun"
)

// Open creates the capture device and the marked raw socket used for
// passthrough. Routes steering traffic into the device are managed outside.
func Open(iface settings.Interface, mark int) (*Interceptor, error) {
	mtu := settings.ResolveMTU(iface.MTU)
	dev, err := wgtun.CreateTUN(iface.Name, mtu)
	if err != nil {
		return nil, fmt.Errorf("create capture device %s: %w", iface.Name, err)
	}
	sender, err := ip.NewRawSender(mark)
	if err != nil {
		_ = dev.Close()
		return nil, err
	}
	return NewInterceptor(dev, sender, mtu), nil
}
